package handlers

import (
	"bytes"
	"net/http"

	"go.uber.org/zap"

	"finitefield.org/totalcalc-web/internal/platform/requestctx"
	"finitefield.org/totalcalc-web/internal/sitemap"
)

// SitemapXML regenerates the sitemap on every request; the catalog is small
// and immutable.
func (s *Site) SitemapXML(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := sitemap.WriteXML(&buf, s.Sitemap.Generate()); err != nil {
		requestctx.Logger(r.Context()).Error("write sitemap", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = buf.WriteTo(w)
}

func (s *Site) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if s.NoIndex {
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /\n"))
		return
	}
	if err := sitemap.WriteRobots(w, s.baseURL); err != nil {
		requestctx.Logger(r.Context()).Warn("write robots", zap.Error(err))
	}
}
