// Package resolver maps route identifiers onto catalog entries for the page
// layer. Lookups are exact; there is no fuzzy matching.
package resolver

import (
	"errors"
	"fmt"
	"strings"

	"finitefield.org/totalcalc-web/internal/catalog"
)

// CalculatorsPrefix is the first path segment of every calculator page.
const CalculatorsPrefix = "calculators"

// ErrNotFound is returned for identifiers that do not resolve. It wraps
// catalog.ErrNotFound.
var ErrNotFound = fmt.Errorf("resolver: %w", catalog.ErrNotFound)

// CategoryPage is everything a category listing renders.
type CategoryPage struct {
	Category    catalog.Category
	Calculators []catalog.Calculator
}

// CalculatorPage is everything a single calculator page renders.
type CalculatorPage struct {
	Category   catalog.Category
	Calculator catalog.Calculator
}

// MatchKind classifies a resolved path.
type MatchKind int

const (
	MatchCategory MatchKind = iota + 1
	MatchCalculator
)

// Match is the outcome of Resolve.
type Match struct {
	Kind     MatchKind
	Category CategoryPage
	Page     CalculatorPage
}

// Resolver answers page lookups against an immutable catalog.
type Resolver struct {
	catalog *catalog.Catalog
}

// New returns a resolver over cat.
func New(cat *catalog.Catalog) *Resolver {
	return &Resolver{catalog: cat}
}

// CategoryPage resolves a category by its route slug. Calculators keep
// declaration order.
func (r *Resolver) CategoryPage(routeSlug string) (CategoryPage, error) {
	cat, err := r.catalog.CategoryBySlug(routeSlug)
	if err != nil {
		return CategoryPage{}, wrapNotFound(err)
	}
	return CategoryPage{Category: cat, Calculators: cat.Calculators}, nil
}

// CategoryPageByID resolves a category by its ID.
func (r *Resolver) CategoryPageByID(id string) (CategoryPage, error) {
	cat, err := r.catalog.Category(id)
	if err != nil {
		return CategoryPage{}, wrapNotFound(err)
	}
	return CategoryPage{Category: cat, Calculators: cat.Calculators}, nil
}

// CalculatorPage resolves the (category, slug) routing key.
func (r *Resolver) CalculatorPage(categoryID, slug string) (CalculatorPage, error) {
	calc, err := r.catalog.Calculator(categoryID, slug)
	if err != nil {
		return CalculatorPage{}, wrapNotFound(err)
	}
	cat, err := r.catalog.Category(calc.Category)
	if err != nil {
		return CalculatorPage{}, wrapNotFound(err)
	}
	return CalculatorPage{Category: cat, Calculator: calc}, nil
}

// Resolve decomposes a site path: "/{category-route}" or
// "/calculators/{category}/{slug}". A single trailing slash is tolerated.
func (r *Resolver) Resolve(path string) (Match, error) {
	trimmed := strings.TrimPrefix(path, "/")
	trimmed = strings.TrimSuffix(trimmed, "/")
	if trimmed == "" {
		return Match{}, fmt.Errorf("%w: path %q", ErrNotFound, path)
	}
	parts := strings.Split(trimmed, "/")
	switch {
	case len(parts) == 1 && parts[0] != CalculatorsPrefix:
		page, err := r.CategoryPage(parts[0])
		if err != nil {
			return Match{}, err
		}
		return Match{Kind: MatchCategory, Category: page}, nil
	case len(parts) == 3 && parts[0] == CalculatorsPrefix:
		page, err := r.CalculatorPage(parts[1], parts[2])
		if err != nil {
			return Match{}, err
		}
		return Match{Kind: MatchCalculator, Page: page}, nil
	}
	return Match{}, fmt.Errorf("%w: path %q", ErrNotFound, path)
}

// CategoryPath is the site path of a category listing.
func CategoryPath(cat catalog.Category) string {
	return "/" + cat.Slug
}

// CalculatorPath is the site path of a calculator page.
func CalculatorPath(calc catalog.Calculator) string {
	return "/" + CalculatorsPrefix + "/" + calc.Category + "/" + calc.Slug
}

func wrapNotFound(err error) error {
	if errors.Is(err, catalog.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
