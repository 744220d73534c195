package nav

import (
	"strings"

	"finitefield.org/totalcalc-web/internal/catalog"
	"finitefield.org/totalcalc-web/internal/resolver"
)

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href   string
	Label  string
	Color  catalog.Color
	Active bool
}

// Crumb represents a breadcrumb entry.
type Crumb struct {
	Href   string
	Label  string
	Active bool
}

// Build renders one item per category, marking the one that owns currentPath.
// A category is active on its own page and on any of its calculator pages.
func Build(currentPath string, categories []catalog.Category) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	currentPath = trimSlash(currentPath)
	items := make([]RenderedItem, 0, len(categories))
	for _, c := range categories {
		href := resolver.CategoryPath(c)
		items = append(items, RenderedItem{
			Href:   href,
			Label:  c.Name,
			Color:  c.Color,
			Active: currentPath == href || strings.HasPrefix(currentPath, "/"+resolver.CalculatorsPrefix+"/"+c.ID+"/"),
		})
	}
	return items
}

// Home is the breadcrumb trail for the landing page.
func Home() []Crumb {
	return []Crumb{{Href: "/", Label: "Home", Active: true}}
}

// Page is the trail for a static page such as /about.
func Page(href, label string) []Crumb {
	return []Crumb{
		{Href: "/", Label: "Home"},
		{Href: href, Label: label, Active: true},
	}
}

// Category is the trail Home > Category.
func Category(c catalog.Category) []Crumb {
	return Page(resolver.CategoryPath(c), c.Name)
}

// Calculator is the trail Home > Category > Calculator.
func Calculator(c catalog.Category, calc catalog.Calculator) []Crumb {
	return []Crumb{
		{Href: "/", Label: "Home"},
		{Href: resolver.CategoryPath(c), Label: c.Name},
		{Href: resolver.CalculatorPath(calc), Label: calc.Name, Active: true},
	}
}

func trimSlash(p string) string {
	if len(p) > 1 {
		return strings.TrimRight(p, "/")
	}
	return p
}
