package catalog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/alexanderramin/climbdiet/internal/domain"
)

var validate = validator.New()

// fieldKeys maps domain field names back to catalog keys for error messages.
var fieldKeys = map[string]string{
	"Price":    KeyPrice,
	"Energy":   KeyEnergy,
	"Carbs":    KeyCarbs,
	"Protein":  KeyProtein,
	"Fat":      KeyFat,
	"MaxGrams": KeyMaxGrams,
	"Min":      "min",
	"Max":      "max",
}

// ValidateFoodSchema checks a nutrition catalog before conversion.
// Returns every error found, in food-name order.
func ValidateFoodSchema(schema FoodSchema) []error {
	var errs []error
	if len(schema) == 0 {
		return []error{fmt.Errorf("foods: catalog is empty")}
	}
	for _, name := range sortedKeys(schema) {
		food, decodeErrs := decodeFood(name, schema[name])
		errs = append(errs, decodeErrs...)
		if len(decodeErrs) > 0 {
			continue
		}
		errs = append(errs, structErrors(fmt.Sprintf("foods[%q]", name), food)...)
	}
	return errs
}

// ValidateRecipeSchema checks a recipe catalog against the nutrition catalog
// it will be combined with. A nil catalog skips the ingredient existence check.
func ValidateRecipeSchema(schema RecipeSchema, foods *domain.Catalog) []error {
	var errs []error
	seen := make(map[domain.Slot]bool)

	for _, key := range sortedKeys(schema) {
		slot, err := domain.ParseSlot(key)
		if err != nil {
			errs = append(errs, fmt.Errorf("recipes.%s: %w", key, err))
			continue
		}
		if len(schema[key]) > 0 {
			seen[slot] = true
		}
		for i, rec := range schema[key] {
			path := fmt.Sprintf("recipes.%s[%d]", key, i)
			if len(rec.Ingredients) == 0 {
				errs = append(errs, fmt.Errorf("%s.ingredientes: at least one ingredient is required", path))
				continue
			}
			for _, food := range sortedKeys(rec.Ingredients) {
				ipath := fmt.Sprintf("%s.ingredientes[%q]", path, food)
				bounds, boundErrs := decodeBounds(ipath, rec.Ingredients[food])
				errs = append(errs, boundErrs...)
				if len(boundErrs) == 0 {
					errs = append(errs, structErrors(ipath, bounds)...)
				}
				if foods != nil && !foods.Has(food) {
					errs = append(errs, fmt.Errorf("%s: food not in nutrition catalog", ipath))
				}
			}
		}
	}

	for _, slot := range domain.MealSlots {
		if !seen[slot] {
			errs = append(errs, fmt.Errorf("recipes.%s: at least one recipe is required", slot))
		}
	}
	return errs
}

func decodeFood(name string, rec FoodRecord) (domain.Food, []error) {
	var errs []error
	path := fmt.Sprintf("foods[%q]", name)

	num := func(key string, n Numeric) float64 {
		v, err := n.Float()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s.%s: %w", path, key, err))
		}
		return v
	}

	food := domain.Food{
		Name:     name,
		Price:    num(KeyPrice, rec.Price),
		Energy:   num(KeyEnergy, rec.Energy),
		Carbs:    num(KeyCarbs, rec.Carbs),
		Protein:  num(KeyProtein, rec.Protein),
		Fat:      num(KeyFat, rec.Fat),
		MaxGrams: num(KeyMaxGrams, rec.MaxGrams),
		Dessert:  rec.Extra == DessertMarker,
	}
	if rec.Category == "" {
		errs = append(errs, fmt.Errorf("%s.%s: is required", path, KeyCategory))
	} else if cat, err := domain.ParseCategoryLabel(rec.Category); err != nil {
		errs = append(errs, fmt.Errorf("%s.%s: %w", path, KeyCategory, err))
	} else {
		food.Category = cat
	}
	return food, errs
}

func decodeBounds(path string, pair []Numeric) (domain.IngredientBounds, []error) {
	if len(pair) != 2 {
		return domain.IngredientBounds{}, []error{fmt.Errorf("%s: expected [min, max], got %d values", path, len(pair))}
	}
	var errs []error
	lo, err := pair[0].Float()
	if err != nil {
		errs = append(errs, fmt.Errorf("%s.min: %w", path, err))
	}
	hi, err := pair[1].Float()
	if err != nil {
		errs = append(errs, fmt.Errorf("%s.max: %w", path, err))
	}
	return domain.IngredientBounds{Min: lo, Max: hi}, errs
}

// structErrors runs the validator tags of v and renders failures with
// catalog field names.
func structErrors(path string, v any) []error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []error{fmt.Errorf("%s: %w", path, err)}
	}
	out := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		key := domain.CoalesceStr(fieldKeys[fe.Field()], fe.Field())
		out = append(out, fmt.Errorf("%s.%s: %s", path, key, ruleText(fe)))
	}
	return out
}

func ruleText(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("must be >= %s, got %v", fe.Param(), fe.Value())
	case "gt":
		return fmt.Sprintf("must be > %s, got %v", fe.Param(), fe.Value())
	case "gtefield":
		return fmt.Sprintf("must be >= %s, got %v", fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
