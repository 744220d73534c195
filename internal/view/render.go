// Package view renders HTML pages from the embedded template set.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"finitefield.org/totalcalc-web/internal/catalog"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

const layoutFile = "layout.tmpl"

// Options configures a Renderer.
type Options struct {
	// Dev reparses templates from Dir on every render.
	Dev bool
	// Dir is the on-disk template directory used in dev mode.
	Dir    string
	Logger *zap.Logger
}

// Renderer executes named pages inside the shared layout. Each page file is
// parsed together with the layout into its own template set so pages can
// redefine the "content" block independently.
type Renderer struct {
	opts Options

	mu    sync.RWMutex
	pages map[string]*template.Template
}

// New parses the embedded templates and fails on any syntax error.
func New(opts Options) (*Renderer, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	r := &Renderer{opts: opts}
	pages, err := r.parse()
	if err != nil {
		return nil, err
	}
	r.pages = pages
	return r, nil
}

func (r *Renderer) source() fs.FS {
	if r.opts.Dev && r.opts.Dir != "" {
		return os.DirFS(r.opts.Dir)
	}
	sub, _ := fs.Sub(embeddedTemplates, "templates")
	return sub
}

func (r *Renderer) parse() (map[string]*template.Template, error) {
	src := r.source()
	layout, err := template.New(layoutFile).Funcs(funcMap()).ParseFS(src, layoutFile)
	if err != nil {
		return nil, fmt.Errorf("view: parse layout: %w", err)
	}
	files, err := fs.Glob(src, "*.tmpl")
	if err != nil {
		return nil, err
	}
	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		clone, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		t, err := clone.ParseFS(src, file)
		if err != nil {
			return nil, fmt.Errorf("view: parse %s: %w", file, err)
		}
		pages[strings.TrimSuffix(path.Base(file), ".tmpl")] = t
	}
	return pages, nil
}

// Has reports whether a page template exists.
func (r *Renderer) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.pages[name]
	return ok
}

// Render writes page name with the given status. Output is buffered so a
// template error still yields a clean 500.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) error {
	if r.opts.Dev {
		pages, err := r.parse()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return err
		}
		r.mu.Lock()
		r.pages = pages
		r.mu.Unlock()
	}

	r.mu.RLock()
	t, ok := r.pages[name]
	r.mu.RUnlock()
	if !ok {
		err := fmt.Errorf("view: unknown page %q", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return err
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, layoutFile, data); err != nil {
		r.opts.Logger.Error("template exec", zap.String("page", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"year": func() int { return time.Now().Year() },
		// jsonld marks pre-encoded JSON-LD as script content. Payloads come
		// from encoding/json, which escapes <, > and &.
		"jsonld": func(s string) template.JS { return template.JS(s) },
		"colorClass": func(c catalog.Color) string {
			return "accent-" + string(catalog.NormalizeColor(c))
		},
	}
}
