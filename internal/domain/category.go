package domain

import (
	"fmt"
	"strings"
)

// Category is one of the 15 food-group tags used by the nutrition catalog.
// Values follow the numbering of the source tables (1..15).
type Category int

const (
	CategoryCereals Category = iota + 1
	CategoryDairy
	CategoryEggs
	CategorySugars
	CategoryFats
	CategoryVegetables
	CategoryLegumes
	CategoryFruit
	CategoryNuts
	CategoryMeat
	CategoryMeatProducts
	CategoryFish
	CategoryShellfish
	CategoryCondiments
	CategoryBeverages
)

type categoryInfo struct {
	label string
	slug  string
}

var categoryTable = map[Category]categoryInfo{
	CategoryCereals:      {"Cereales y derivados", "cereals"},
	CategoryDairy:        {"Leche y productos lácteos", "dairy"},
	CategoryEggs:         {"Huevos", "eggs"},
	CategorySugars:       {"Azúcares y dulces", "sugars"},
	CategoryFats:         {"Aceites y grasas", "fats"},
	CategoryVegetables:   {"Verduras y hortalizas", "vegetables"},
	CategoryLegumes:      {"Legumbres", "legumes"},
	CategoryFruit:        {"Frutas", "fruit"},
	CategoryNuts:         {"Frutos secos", "nuts"},
	CategoryMeat:         {"Carnes", "meat"},
	CategoryMeatProducts: {"Productos cárnicos", "meat_products"},
	CategoryFish:         {"Pescados", "fish"},
	CategoryShellfish:    {"Crustáceos y moluscos", "shellfish"},
	CategoryCondiments:   {"Condimentos y aperitivos", "condiments"},
	CategoryBeverages:    {"Bebidas", "beverages"},
}

var (
	categoryByLabel = make(map[string]Category, len(categoryTable))
	categoryBySlug  = make(map[string]Category, len(categoryTable))
)

func init() {
	for c, info := range categoryTable {
		categoryByLabel[info.label] = c
		categoryBySlug[info.slug] = c
	}
}

// AllCategories lists every category in table order.
func AllCategories() []Category {
	out := make([]Category, 0, len(categoryTable))
	for c := CategoryCereals; c <= CategoryBeverages; c++ {
		out = append(out, c)
	}
	return out
}

// ParseCategoryLabel resolves a catalog label ("Frutas") by exact match.
func ParseCategoryLabel(label string) (Category, error) {
	c, ok := categoryByLabel[label]
	if !ok {
		return 0, fmt.Errorf("unknown category %q", label)
	}
	return c, nil
}

// ParseCategorySlug resolves a configuration slug ("fruit"), case-insensitively.
func ParseCategorySlug(slug string) (Category, error) {
	c, ok := categoryBySlug[strings.ToLower(strings.TrimSpace(slug))]
	if !ok {
		return 0, fmt.Errorf("unknown category %q", slug)
	}
	return c, nil
}

// Label returns the catalog label of the category.
func (c Category) Label() string {
	if info, ok := categoryTable[c]; ok {
		return info.label
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

func (c Category) String() string {
	if info, ok := categoryTable[c]; ok {
		return info.slug
	}
	return fmt.Sprintf("category_%d", int(c))
}

// Valid reports whether c is one of the 15 enumerated tags.
func (c Category) Valid() bool {
	_, ok := categoryTable[c]
	return ok
}
