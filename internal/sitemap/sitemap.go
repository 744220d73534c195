// Package sitemap derives the site's URL inventory from the catalog.
package sitemap

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"finitefield.org/totalcalc-web/internal/catalog"
	"finitefield.org/totalcalc-web/internal/resolver"
)

// ChangeFrequency is the sitemaps.org changefreq value.
type ChangeFrequency string

const (
	Daily   ChangeFrequency = "daily"
	Weekly  ChangeFrequency = "weekly"
	Monthly ChangeFrequency = "monthly"
)

const (
	categoryPriority   = 0.9
	calculatorPriority = 0.8
)

// Entry is one sitemap record. LastModified is the generation time, a coarse
// freshness signal rather than a content-change timestamp.
type Entry struct {
	URL             string          `json:"url"`
	LastModified    time.Time       `json:"lastModified"`
	ChangeFrequency ChangeFrequency `json:"changeFrequency"`
	Priority        float64         `json:"priority"`
}

// StaticPage is a fixed page listed ahead of the catalog.
type StaticPage struct {
	Path            string
	ChangeFrequency ChangeFrequency
	Priority        float64
}

// DefaultStaticPages lists home, about and the legal pages.
var DefaultStaticPages = []StaticPage{
	{Path: "/", ChangeFrequency: Daily, Priority: 1.0},
	{Path: "/about", ChangeFrequency: Monthly, Priority: 0.5},
	{Path: "/privacy", ChangeFrequency: Monthly, Priority: 0.3},
	{Path: "/terms", ChangeFrequency: Monthly, Priority: 0.3},
}

// Option customises a Generator.
type Option func(*Generator)

// WithClock overrides the time source used for LastModified.
func WithClock(clock func() time.Time) Option {
	return func(g *Generator) {
		if clock != nil {
			g.clock = clock
		}
	}
}

// WithStaticPages replaces the static page list.
func WithStaticPages(pages ...StaticPage) Option {
	return func(g *Generator) {
		g.static = append([]StaticPage(nil), pages...)
	}
}

// Generator builds sitemap entries. It holds no mutable state and is safe for
// concurrent use.
type Generator struct {
	catalog *catalog.Catalog
	baseURL string
	clock   func() time.Time
	static  []StaticPage
}

// New validates baseURL and returns a generator over cat.
func New(cat *catalog.Catalog, baseURL string, opts ...Option) (*Generator, error) {
	if cat == nil {
		return nil, errors.New("sitemap: catalog is required")
	}
	base, err := NormalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	g := &Generator{
		catalog: cat,
		baseURL: base,
		clock:   time.Now,
		static:  DefaultStaticPages,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// BaseURL returns the normalised absolute base URL.
func (g *Generator) BaseURL() string { return g.baseURL }

// Generate emits static pages, then categories, then calculators. URLs are
// unique; the first occurrence wins.
func (g *Generator) Generate() []Entry {
	now := g.clock().UTC()
	entries := make([]Entry, 0, len(g.static)+len(g.catalog.Categories())+g.catalog.Len())
	seen := make(map[string]struct{}, cap(entries))
	add := func(path string, freq ChangeFrequency, priority float64) {
		u := g.baseURL + path
		if path == "/" {
			u = g.baseURL
		}
		if _, dup := seen[u]; dup {
			return
		}
		seen[u] = struct{}{}
		entries = append(entries, Entry{
			URL:             u,
			LastModified:    now,
			ChangeFrequency: freq,
			Priority:        priority,
		})
	}

	for _, page := range g.static {
		add(page.Path, page.ChangeFrequency, page.Priority)
	}
	for _, cat := range g.catalog.Categories() {
		add(resolver.CategoryPath(cat), Weekly, categoryPriority)
	}
	for _, calc := range g.catalog.Calculators() {
		add(resolver.CalculatorPath(calc), Weekly, calculatorPriority)
	}
	return entries
}

// NormalizeBaseURL requires an absolute http(s) URL and strips any trailing slash.
func NormalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("sitemap: parse base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("sitemap: base url %q must be absolute http(s)", raw)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return "", fmt.Errorf("sitemap: base url %q must not carry a query or fragment", raw)
	}
	return strings.TrimRight(u.String(), "/"), nil
}
