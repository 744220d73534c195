// Package handlers serves the calculator directory over HTTP.
package handlers

import (
	"errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"finitefield.org/totalcalc-web/internal/catalog"
	"finitefield.org/totalcalc-web/internal/content"
	"finitefield.org/totalcalc-web/internal/currency"
	"finitefield.org/totalcalc-web/internal/resolver"
	"finitefield.org/totalcalc-web/internal/sitemap"
	"finitefield.org/totalcalc-web/internal/view"
)

// Deps lists everything the site needs. All fields except Logger are required.
type Deps struct {
	SiteName string
	// NoIndex asks crawlers to skip every page. Set outside production.
	NoIndex bool
	// SecureCookies marks the CSRF cookie Secure.
	SecureCookies bool
	// GAMeasurementID turns on page view analytics when set.
	GAMeasurementID string

	Catalog  *catalog.Catalog
	Resolver *resolver.Resolver
	Sitemap  *sitemap.Generator
	Registry *currency.Registry
	Cookies  *currency.CookieCodec
	Content  *content.Library
	Renderer *view.Renderer
	Logger   *zap.Logger
}

// Site owns the HTTP handlers. Everything it holds is immutable after New, so
// one Site serves all requests concurrently.
type Site struct {
	Deps
	baseURL string
}

// New validates deps.
func New(deps Deps) (*Site, error) {
	switch {
	case deps.Catalog == nil:
		return nil, errors.New("handlers: catalog is required")
	case deps.Resolver == nil:
		return nil, errors.New("handlers: resolver is required")
	case deps.Sitemap == nil:
		return nil, errors.New("handlers: sitemap generator is required")
	case deps.Registry == nil:
		return nil, errors.New("handlers: currency registry is required")
	case deps.Cookies == nil:
		return nil, errors.New("handlers: cookie codec is required")
	case deps.Content == nil:
		return nil, errors.New("handlers: content library is required")
	case deps.Renderer == nil:
		return nil, errors.New("handlers: renderer is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.SiteName == "" {
		deps.SiteName = "TheTotalCalc"
	}
	return &Site{Deps: deps, baseURL: deps.Sitemap.BaseURL()}, nil
}

// Routes mounts every page, feed and API route on r. It only adds a group,
// so callers may register their own routes before or after.
func (s *Site) Routes(r chi.Router) {
	r.Get("/sitemap.xml", s.SitemapXML)
	r.Get("/robots.txt", s.Robots)

	r.Group(func(r chi.Router) {
		r.Use(s.CSRFMiddleware, s.CurrencyMiddleware)
		r.NotFound(s.NotFound)
		r.MethodNotAllowed(s.methodNotAllowed)

		r.Get("/", s.Home)
		r.Get("/about", s.StaticPage("about"))
		r.Get("/privacy", s.StaticPage("privacy"))
		r.Get("/terms", s.StaticPage("terms"))
		r.Get("/{categorySlug}", s.Category)
		r.Get("/calculators/{categoryID}/{slug}", s.Calculator)
		r.Post("/preferences/currency", s.SetCurrency)

		r.Route("/api", func(r chi.Router) {
			r.NotFound(s.apiNotFound)
			r.MethodNotAllowed(s.apiMethodNotAllowed)
			r.Get("/catalog", s.APICatalog)
			r.Get("/catalog/{categoryID}", s.APICategory)
			r.Get("/catalog/{categoryID}/{slug}", s.APICalculator)
			r.Get("/currencies", s.APICurrencies)
			r.Get("/preferences/currency", s.APIGetCurrency)
			r.Put("/preferences/currency", s.APIPutCurrency)
		})
	})
}
