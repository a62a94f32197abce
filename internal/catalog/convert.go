package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/climbdiet/internal/domain"
)

// ErrInvalidCatalog is returned when a catalog file fails validation.
var ErrInvalidCatalog = errors.New("invalid catalog")

// ConvertFoods transforms a validated FoodSchema into a domain catalog.
// Call ValidateFoodSchema first; ConvertFoods assumes the schema is valid.
func ConvertFoods(schema FoodSchema) *domain.Catalog {
	foods := make([]domain.Food, 0, len(schema))
	for _, name := range sortedKeys(schema) {
		food, _ := decodeFood(name, schema[name])
		foods = append(foods, food)
	}
	return domain.NewCatalog(foods)
}

// ConvertRecipes transforms a validated RecipeSchema into a recipe book.
// Call ValidateRecipeSchema first; ConvertRecipes assumes the schema is valid.
func ConvertRecipes(schema RecipeSchema) *domain.RecipeBook {
	bySlot := make(map[domain.Slot][]domain.Recipe, len(schema))
	for key, list := range schema {
		slot, err := domain.ParseSlot(key)
		if err != nil {
			continue
		}
		recipes := make([]domain.Recipe, 0, len(list))
		for _, rec := range list {
			r := domain.Recipe{
				Name:        strings.TrimSpace(rec.Name),
				Ingredients: make(map[string]domain.IngredientBounds, len(rec.Ingredients)),
			}
			for food, pair := range rec.Ingredients {
				b, _ := decodeBounds(food, pair)
				r.Ingredients[food] = b
			}
			recipes = append(recipes, r)
		}
		bySlot[slot] = recipes
	}
	return domain.NewRecipeBook(bySlot)
}

// LoadCatalog reads, validates and converts a nutrition catalog file.
func LoadCatalog(path string) (*domain.Catalog, error) {
	schema, err := LoadFoodSchema(path)
	if err != nil {
		return nil, err
	}
	if errs := ValidateFoodSchema(schema); len(errs) > 0 {
		return nil, JoinErrors(path, errs)
	}
	return ConvertFoods(schema), nil
}

// LoadRecipeBook reads, validates and converts a recipe catalog file.
// Ingredients are checked against foods.
func LoadRecipeBook(path string, foods *domain.Catalog) (*domain.RecipeBook, error) {
	schema, err := LoadRecipeSchema(path)
	if err != nil {
		return nil, err
	}
	if errs := ValidateRecipeSchema(schema, foods); len(errs) > 0 {
		return nil, JoinErrors(path, errs)
	}
	return ConvertRecipes(schema), nil
}

// JoinErrors renders a validation error list as one ErrInvalidCatalog error.
func JoinErrors(source string, errs []error) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d errors):", source, len(errs))
	for _, e := range errs {
		fmt.Fprintf(&b, "\n  - %s", e.Error())
	}
	return fmt.Errorf("%w: %s", ErrInvalidCatalog, b.String())
}
