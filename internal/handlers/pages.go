package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"finitefield.org/totalcalc-web/internal/content"
	"finitefield.org/totalcalc-web/internal/nav"
	"finitefield.org/totalcalc-web/internal/platform/requestctx"
	"finitefield.org/totalcalc-web/internal/resolver"
	"finitefield.org/totalcalc-web/internal/seo"
	"finitefield.org/totalcalc-web/internal/view"
)

const homeDescription = "Free online calculators for finance, health, maths, unit conversion and everyday questions."

// Home lists every category with its calculators.
func (s *Site) Home(w http.ResponseWriter, r *http.Request) {
	data := s.baseData(r, "", homeDescription, "/")
	data.SEO.AddJSONLD(seo.WebSite(s.SiteName, s.baseURL))
	data.Categories = s.Catalog.Categories()
	data.Breadcrumbs = nav.Home()
	s.render(w, r, http.StatusOK, "home", data)
}

// StaticPage serves one markdown page from the content library.
func (s *Site) StaticPage(slug string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := s.Content.Page(slug)
		if errors.Is(err, content.ErrNotFound) {
			s.NotFound(w, r)
			return
		}
		if err != nil {
			requestctx.Logger(r.Context()).Error("load page", zap.String("slug", slug), zap.Error(err))
			s.renderError(w, r, http.StatusInternalServerError, "This page is unavailable.")
			return
		}
		path := "/" + page.Slug
		data := s.baseData(r, page.Title, page.Description, path)
		data.Page = &page
		data.Breadcrumbs = nav.Page(path, page.Title)
		data.SEO.AddJSONLD(s.breadcrumbJSONLD(data.Breadcrumbs))
		s.render(w, r, http.StatusOK, "page", data)
	}
}

// Category lists the calculators of the category routed at /{categorySlug}.
func (s *Site) Category(w http.ResponseWriter, r *http.Request) {
	page, err := s.Resolver.CategoryPage(chi.URLParam(r, "categorySlug"))
	if err != nil {
		s.NotFound(w, r)
		return
	}
	path := resolver.CategoryPath(page.Category)
	data := s.baseData(r, page.Category.Name, page.Category.Description, path)
	data.Category = &page.Category
	data.Calculators = page.Calculators
	data.Breadcrumbs = nav.Category(page.Category)

	urls := make([]string, 0, len(page.Calculators))
	for _, calc := range page.Calculators {
		urls = append(urls, seo.Canonical(s.baseURL, resolver.CalculatorPath(calc)))
	}
	data.SEO.AddJSONLD(s.breadcrumbJSONLD(data.Breadcrumbs))
	data.SEO.AddJSONLD(seo.CollectionPage(page.Category.Name, page.Category.Description, data.SEO.Canonical, urls))
	s.render(w, r, http.StatusOK, "category", data)
}

// Calculator renders /calculators/{categoryID}/{slug}.
func (s *Site) Calculator(w http.ResponseWriter, r *http.Request) {
	page, err := s.Resolver.CalculatorPage(chi.URLParam(r, "categoryID"), chi.URLParam(r, "slug"))
	if err != nil {
		s.NotFound(w, r)
		return
	}
	calc := page.Calculator
	path := resolver.CalculatorPath(calc)
	data := s.baseData(r, calc.Name, calc.Description, path)
	data.Category = &page.Category
	data.Calculator = &calc
	data.Breadcrumbs = nav.Calculator(page.Category, calc)
	data.SEO.AddJSONLD(s.breadcrumbJSONLD(data.Breadcrumbs))
	data.SEO.AddJSONLD(seo.WebApplication(calc.Name, calc.Description, data.SEO.Canonical, page.Category.Name))
	s.render(w, r, http.StatusOK, "calculator", data)
}

// NotFound renders the HTML 404 page.
func (s *Site) NotFound(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusNotFound, "We could not find a calculator at this address.")
}

func (s *Site) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusMethodNotAllowed, "This address does not accept that request.")
}

func (s *Site) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := s.baseData(r, http.StatusText(status), "", r.URL.Path)
	data.SEO.Canonical = ""
	data.SEO.OG.URL = ""
	data.SEO.Robots = "noindex"
	data.Status = status
	data.Message = message
	s.render(w, r, status, "error", data)
}

func (s *Site) baseData(r *http.Request, title, description, path string) view.Data {
	meta := seo.NewMeta(s.SiteName, title, description, seo.Canonical(s.baseURL, path))
	if s.NoIndex {
		meta.Robots = "noindex, nofollow"
	}
	return view.Data{
		SiteName:   s.SiteName,
		Path:       r.URL.Path,
		SEO:        meta,
		Analytics:  view.Analytics{GA4MeasurementID: s.GAMeasurementID},
		Nav:        nav.Build(r.URL.Path, s.Catalog.Categories()),
		Currency:   s.preferences(r.Context()).Preferred(),
		Currencies: s.Registry.Currencies(),
		CSRFToken:  csrfToken(r.Context()),
	}
}

func (s *Site) breadcrumbJSONLD(crumbs []nav.Crumb) map[string]any {
	items := make([]seo.BreadcrumbItem, 0, len(crumbs))
	for _, c := range crumbs {
		items = append(items, seo.BreadcrumbItem{Name: c.Label, Item: seo.Canonical(s.baseURL, c.Href)})
	}
	return seo.BreadcrumbList(items)
}

func (s *Site) render(w http.ResponseWriter, r *http.Request, status int, name string, data view.Data) {
	if err := s.Renderer.Render(w, status, name, data); err != nil {
		requestctx.Logger(r.Context()).Error("render page", zap.String("page", name), zap.Error(err))
	}
}
