package domain

import "sort"

// Food is one nutrition catalog entry. Nutrient and price figures are per 100 g.
type Food struct {
	Name     string
	Price    float64 `validate:"gte=0"`
	Energy   float64 `validate:"gte=0"`
	Carbs    float64 `validate:"gte=0"`
	Protein  float64 `validate:"gte=0"`
	Fat      float64 `validate:"gte=0"`
	Category Category
	MaxGrams float64 `validate:"gt=0"`
	Dessert  bool
}

// Catalog is the read-only set of foods plus the category views the model
// builder needs. Build it once with NewCatalog and share it freely.
type Catalog struct {
	foods      map[string]Food
	names      []string
	byCategory map[Category][]string
	desserts   []string
}

// NewCatalog indexes foods by name. Later duplicates replace earlier ones.
func NewCatalog(foods []Food) *Catalog {
	c := &Catalog{
		foods:      make(map[string]Food, len(foods)),
		byCategory: make(map[Category][]string),
	}
	for _, f := range foods {
		c.foods[f.Name] = f
	}
	c.names = make([]string, 0, len(c.foods))
	for name := range c.foods {
		c.names = append(c.names, name)
	}
	sort.Strings(c.names)

	for _, name := range c.names {
		f := c.foods[name]
		c.byCategory[f.Category] = append(c.byCategory[f.Category], name)
		if f.Dessert {
			c.desserts = append(c.desserts, name)
		}
	}
	return c
}

// Has reports whether the catalog contains a food with the given name.
func (c *Catalog) Has(name string) bool {
	_, ok := c.foods[name]
	return ok
}

// HasAll reports whether every named food is present.
func (c *Catalog) HasAll(names ...string) bool {
	for _, n := range names {
		if !c.Has(n) {
			return false
		}
	}
	return true
}

// Food returns the named food.
func (c *Catalog) Food(name string) (Food, bool) {
	f, ok := c.foods[name]
	return f, ok
}

// Names returns all food names in sorted order.
func (c *Catalog) Names() []string { return c.names }

// Len returns the number of foods.
func (c *Catalog) Len() int { return len(c.names) }

// InCategory returns the sorted names of foods tagged with cat.
func (c *Catalog) InCategory(cat Category) []string { return c.byCategory[cat] }

// Desserts returns foods flagged as dessert-eligible.
func (c *Catalog) Desserts() []string { return c.desserts }

// FruitOrDessert returns the union of fruit and dessert foods without duplicates.
func (c *Catalog) FruitOrDessert() []string {
	seen := make(map[string]bool)
	var out []string
	for _, n := range c.InCategory(CategoryFruit) {
		seen[n] = true
		out = append(out, n)
	}
	for _, n := range c.desserts {
		if !seen[n] {
			out = append(out, n)
		}
	}
	return out
}
