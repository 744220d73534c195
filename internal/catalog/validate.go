package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// reservedSlugs are top-level paths owned by fixed routes; a category mounted
// at one of them would be unreachable.
var reservedSlugs = map[string]struct{}{
	"about":       {},
	"privacy":     {},
	"terms":       {},
	"calculators": {},
	"api":         {},
	"assets":      {},
	"healthz":     {},
	"preferences": {},
	"sitemap.xml": {},
	"robots.txt":  {},
}

// IsReservedSlug reports whether slug collides with a fixed site route.
func IsReservedSlug(slug string) bool {
	_, ok := reservedSlugs[strings.ToLower(slug)]
	return ok
}

func validate(categories []Category) []string {
	var problems []string
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	categoryIDs := make(map[string]int, len(categories))
	categorySlugs := make(map[string]int, len(categories))
	for i, cat := range categories {
		if !slugPattern.MatchString(cat.ID) {
			report("category[%d]: id %q is not a url-safe identifier", i, cat.ID)
		} else if prev, dup := categoryIDs[cat.ID]; dup {
			report("category[%d]: id %q already used by category[%d]", i, cat.ID, prev)
		} else {
			categoryIDs[cat.ID] = i
		}

		switch {
		case !slugPattern.MatchString(cat.Slug):
			report("category %q: slug %q is not url-safe", cat.ID, cat.Slug)
		case IsReservedSlug(cat.Slug):
			report("category %q: slug %q is reserved", cat.ID, cat.Slug)
		default:
			if prev, dup := categorySlugs[cat.Slug]; dup {
				report("category %q: slug %q already used by category[%d]", cat.ID, cat.Slug, prev)
			} else {
				categorySlugs[cat.Slug] = i
			}
		}

		if strings.TrimSpace(cat.Name) == "" {
			report("category %q: name is required", cat.ID)
		}
		if !cat.Color.Valid() {
			report("category %q: color %q is not in the palette", cat.ID, cat.Color)
		}
	}

	calculatorIDs := make(map[string]string)
	for _, cat := range categories {
		slugs := make(map[string]struct{}, len(cat.Calculators))
		for j, calc := range cat.Calculators {
			label := fmt.Sprintf("calculator %s[%d]", cat.ID, j)

			if !slugPattern.MatchString(calc.ID) {
				report("%s: id %q is not a url-safe identifier", label, calc.ID)
			} else if owner, dup := calculatorIDs[calc.ID]; dup {
				report("%s: id %q already used in category %q", label, calc.ID, owner)
			} else {
				calculatorIDs[calc.ID] = cat.ID
			}

			if !slugPattern.MatchString(calc.Slug) {
				report("%s: slug %q is not url-safe", label, calc.Slug)
			} else if _, dup := slugs[calc.Slug]; dup {
				report("%s: slug %q duplicated within category", label, calc.Slug)
			} else {
				slugs[calc.Slug] = struct{}{}
			}

			if _, ok := categoryIDs[calc.Category]; !ok {
				report("%s: category %q does not exist", label, calc.Category)
			} else if calc.Category != cat.ID {
				report("%s: category %q does not match owning category %q", label, calc.Category, cat.ID)
			}

			if strings.TrimSpace(calc.Name) == "" {
				report("%s: name is required", label)
			}
		}
	}
	return problems
}
