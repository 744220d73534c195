package sitemap

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"time"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []urlXML `xml:"url"`
}

type urlXML struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// WriteXML encodes entries as a sitemaps.org urlset document.
func WriteXML(w io.Writer, entries []Entry) error {
	doc := urlSet{XMLNS: sitemapNamespace, URLs: make([]urlXML, 0, len(entries))}
	for _, e := range entries {
		item := urlXML{
			Loc:        e.URL,
			ChangeFreq: string(e.ChangeFrequency),
			Priority:   strconv.FormatFloat(e.Priority, 'f', 1, 64),
		}
		if !e.LastModified.IsZero() {
			item.LastMod = e.LastModified.UTC().Format(time.RFC3339)
		}
		doc.URLs = append(doc.URLs, item)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("sitemap: encode xml: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// WriteRobots writes a permissive robots.txt pointing crawlers at the sitemap.
func WriteRobots(w io.Writer, baseURL string) error {
	_, err := fmt.Fprintf(w, "User-agent: *\nAllow: /\nDisallow: /api/\n\nSitemap: %s/sitemap.xml\n", baseURL)
	return err
}
