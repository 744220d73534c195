package view

import (
	"finitefield.org/totalcalc-web/internal/catalog"
	"finitefield.org/totalcalc-web/internal/content"
	"finitefield.org/totalcalc-web/internal/currency"
	"finitefield.org/totalcalc-web/internal/nav"
	"finitefield.org/totalcalc-web/internal/seo"
)

// Data is the view model shared by every page. Page-specific fields are left
// zero when a template does not use them.
type Data struct {
	SiteName  string
	Path      string
	SEO       seo.Meta
	Analytics Analytics

	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb

	CSRFToken string

	Currency   currency.Config
	Currencies []currency.Config

	Categories  []catalog.Category
	Category    *catalog.Category
	Calculators []catalog.Calculator
	Calculator  *catalog.Calculator
	Page        *content.Page

	Status  int
	Message string
}

// Analytics holds client instrumentation surfaced to the layout.
type Analytics struct {
	GA4MeasurementID string
}
