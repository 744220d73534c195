// Package catalog holds the canonical, immutable registry of calculator
// categories and calculators served by the directory site.
package catalog

// Category groups calculators under a route segment.
type Category struct {
	ID          string       `json:"id"`
	Slug        string       `json:"slug"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Color       Color        `json:"color"`
	Calculators []Calculator `json:"calculators"`
}

// Calculator is a single tool. Category is a lookup key into the owning
// category, not an owning link.
type Calculator struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Category    string `json:"category"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       Color  `json:"color"`
}

// Key returns the routing key of the calculator.
func (c Calculator) Key() Key {
	return Key{Category: c.Category, Slug: c.Slug}
}

// Key is the (category, slug) pair that uniquely identifies a calculator page.
type Key struct {
	Category string
	Slug     string
}

// Catalog is the validated catalog. It is never mutated after New returns, so
// it can be shared by any number of goroutines.
type Catalog struct {
	categories []Category
	byID       map[string]int
	bySlug     map[string]int
	byKey      map[Key]calculatorRef
	total      int
}

type calculatorRef struct {
	category int
	index    int
}

// New validates the declared categories and builds the catalog. Any violation
// is reported as a *ConfigError; callers must treat it as fatal.
func New(categories []Category) (*Catalog, error) {
	normalized := make([]Category, len(categories))
	for i, cat := range categories {
		normalized[i] = cloneCategory(cat)
		for j := range normalized[i].Calculators {
			normalized[i].Calculators[j].Color = NormalizeColor(normalized[i].Calculators[j].Color)
		}
	}

	if problems := validate(normalized); len(problems) > 0 {
		return nil, &ConfigError{problems: problems}
	}

	c := &Catalog{
		categories: normalized,
		byID:       make(map[string]int, len(normalized)),
		bySlug:     make(map[string]int, len(normalized)),
		byKey:      make(map[Key]calculatorRef),
	}
	for i, cat := range normalized {
		c.byID[cat.ID] = i
		c.bySlug[cat.Slug] = i
		for j, calc := range cat.Calculators {
			c.byKey[calc.Key()] = calculatorRef{category: i, index: j}
		}
		c.total += len(cat.Calculators)
	}
	return c, nil
}

// Categories lists categories in declaration order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, 0, len(c.categories))
	for _, cat := range c.categories {
		out = append(out, cloneCategory(cat))
	}
	return out
}

// Category finds a category by ID.
func (c *Catalog) Category(id string) (Category, error) {
	idx, ok := c.byID[id]
	if !ok {
		return Category{}, notFound("category", id)
	}
	return cloneCategory(c.categories[idx]), nil
}

// CategoryBySlug finds a category by its route slug.
func (c *Catalog) CategoryBySlug(slug string) (Category, error) {
	idx, ok := c.bySlug[slug]
	if !ok {
		return Category{}, notFound("category slug", slug)
	}
	return cloneCategory(c.categories[idx]), nil
}

// Calculators flattens the catalog: category order, then in-category order.
func (c *Catalog) Calculators() []Calculator {
	out := make([]Calculator, 0, c.total)
	for _, cat := range c.categories {
		out = append(out, cat.Calculators...)
	}
	return out
}

// Calculator finds a calculator by its routing key.
func (c *Catalog) Calculator(category, slug string) (Calculator, error) {
	ref, ok := c.byKey[Key{Category: category, Slug: slug}]
	if !ok {
		return Calculator{}, notFound("calculator", category+"/"+slug)
	}
	return c.categories[ref.category].Calculators[ref.index], nil
}

// Len reports the number of calculators across all categories.
func (c *Catalog) Len() int { return c.total }

func cloneCategory(src Category) Category {
	cp := src
	if src.Calculators != nil {
		cp.Calculators = make([]Calculator, len(src.Calculators))
		copy(cp.Calculators, src.Calculators)
	}
	return cp
}
