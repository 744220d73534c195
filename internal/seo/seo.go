// Package seo builds head metadata and schema.org JSON-LD payloads.
package seo

import (
	"strings"
)

type OpenGraph struct {
	Title       string
	Description string
	URL         string
	Type        string
	SiteName    string
}

type Twitter struct {
	Card  string
	Title string
}

// Meta is the per-page head block rendered by the layout.
type Meta struct {
	Title       string
	Description string
	Canonical   string
	Robots      string
	OG          OpenGraph
	Twitter     Twitter
	JSONLD      []string
}

// Canonical joins baseURL and an absolute path. The home path maps to the bare
// base URL so canonical links agree with the sitemap.
func Canonical(baseURL, path string) string {
	base := strings.TrimRight(baseURL, "/")
	path = strings.TrimSpace(path)
	if path == "" || path == "/" {
		return base
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + strings.TrimRight(path, "/")
}

// Title formats a page title with the site name suffix.
func Title(page, site string) string {
	page = strings.TrimSpace(page)
	if page == "" || page == site {
		return site
	}
	return page + " | " + site
}

// NewMeta fills a Meta with matching OpenGraph and Twitter values.
func NewMeta(site, title, description, canonical string) Meta {
	full := Title(title, site)
	return Meta{
		Title:       full,
		Description: description,
		Canonical:   canonical,
		OG: OpenGraph{
			Title:       full,
			Description: description,
			URL:         canonical,
			Type:        "website",
			SiteName:    site,
		},
		Twitter: Twitter{Card: "summary", Title: full},
	}
}

// AddJSONLD appends a marshalled schema payload, skipping ones that failed to encode.
func (m *Meta) AddJSONLD(v any) {
	if s := JSON(v); s != "" {
		m.JSONLD = append(m.JSONLD, s)
	}
}
