package content

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"
)

// ErrNotFound indicates a page slug with no markdown source.
var ErrNotFound = errors.New("content: page not found")

//go:embed pages/*.md
var embedded embed.FS

// Page is a rendered static page.
type Page struct {
	Slug        string
	Title       string
	Summary     string
	Description string
	UpdatedAt   time.Time
	HTML        template.HTML
}

type frontMatter struct {
	Title     string `yaml:"title"`
	Summary   string `yaml:"summary"`
	UpdatedAt string `yaml:"updated_at"`
	SEO       struct {
		Description string `yaml:"description"`
	} `yaml:"seo"`
}

// Library holds every static page, rendered once at load time.
type Library struct {
	pages map[string]Page
}

// Default loads the pages bundled with the binary.
func Default() (*Library, error) {
	sub, err := fs.Sub(embedded, "pages")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// Load renders every *.md file at the root of fsys.
func Load(fsys fs.FS) (*Library, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
	)
	policy := bluemonday.UGCPolicy()

	matches, err := fs.Glob(fsys, "*.md")
	if err != nil {
		return nil, err
	}
	lib := &Library{pages: make(map[string]Page, len(matches))}
	for _, name := range matches {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("content: read %s: %w", name, err)
		}
		slug := strings.TrimSuffix(path.Base(name), ".md")
		page, err := renderPage(md, policy, slug, string(raw))
		if err != nil {
			return nil, err
		}
		lib.pages[slug] = page
	}
	return lib, nil
}

// Page returns the page registered under slug.
func (l *Library) Page(slug string) (Page, error) {
	page, ok := l.pages[strings.ToLower(strings.TrimSpace(slug))]
	if !ok {
		return Page{}, fmt.Errorf("%w: %q", ErrNotFound, slug)
	}
	return page, nil
}

// Slugs lists available pages in lexical order.
func (l *Library) Slugs() []string {
	out := make([]string, 0, len(l.pages))
	for slug := range l.pages {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out
}

func renderPage(md goldmark.Markdown, policy *bluemonday.Policy, slug, raw string) (Page, error) {
	fm, body := splitFrontMatter(raw)
	front := frontMatter{}
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return Page{}, fmt.Errorf("content: parse front matter %s: %w", slug, err)
		}
	}

	var buf bytes.Buffer
	if err := md.Convert([]byte(body), &buf); err != nil {
		return Page{}, fmt.Errorf("content: render %s: %w", slug, err)
	}

	page := Page{
		Slug:        slug,
		Title:       strings.TrimSpace(front.Title),
		Summary:     strings.TrimSpace(front.Summary),
		Description: strings.TrimSpace(front.SEO.Description),
		UpdatedAt:   parseDate(front.UpdatedAt),
		HTML:        template.HTML(policy.SanitizeBytes(buf.Bytes())),
	}
	if page.Title == "" {
		page.Title = prettifySlug(slug)
	}
	if page.Description == "" {
		page.Description = page.Summary
	}
	return page, nil
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}

func parseDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006/01/02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func prettifySlug(slug string) string {
	parts := strings.Split(slug, "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}
