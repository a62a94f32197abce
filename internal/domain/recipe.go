package domain

import "sort"

// DefaultRecipeName is shown for recipes without a display name.
const DefaultRecipeName = "Receta sin nombre"

// IngredientBounds is the gram range an ingredient takes when its recipe is chosen.
type IngredientBounds struct {
	Min float64 `validate:"gte=0"`
	Max float64 `validate:"gtefield=Min"`
}

// Recipe is a template for one meal slot. Choosing it is all-or-nothing per day;
// each ingredient then gets a quantity within its bounds.
type Recipe struct {
	Slot        Slot
	Index       int
	Name        string
	Ingredients map[string]IngredientBounds
}

// DisplayName returns the recipe name or the placeholder for unnamed recipes.
func (r Recipe) DisplayName() string {
	return CoalesceStr(r.Name, DefaultRecipeName)
}

// IngredientNames returns the ingredient identifiers in sorted order.
func (r Recipe) IngredientNames() []string {
	names := make([]string, 0, len(r.Ingredients))
	for n := range r.Ingredients {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Uses reports whether food is one of the recipe's ingredients.
func (r Recipe) Uses(food string) bool {
	_, ok := r.Ingredients[food]
	return ok
}

// RecipeBook groups recipes by slot, keeping catalog order within a slot.
type RecipeBook struct {
	bySlot map[Slot][]Recipe
}

// NewRecipeBook builds a book from per-slot lists. Recipe indexes are
// reassigned to match their position in the slot list.
func NewRecipeBook(bySlot map[Slot][]Recipe) *RecipeBook {
	b := &RecipeBook{bySlot: make(map[Slot][]Recipe, len(bySlot))}
	for slot, list := range bySlot {
		out := make([]Recipe, len(list))
		for i, r := range list {
			r.Slot = slot
			r.Index = i
			out[i] = r
		}
		b.bySlot[slot] = out
	}
	return b
}

// Recipes returns the recipes offered for slot.
func (b *RecipeBook) Recipes(slot Slot) []Recipe {
	if b == nil {
		return nil
	}
	return b.bySlot[slot]
}

// Recipe returns the recipe at index in slot.
func (b *RecipeBook) Recipe(slot Slot, index int) (Recipe, bool) {
	list := b.Recipes(slot)
	if index < 0 || index >= len(list) {
		return Recipe{}, false
	}
	return list[index], true
}

// Count returns the total number of recipes across all slots.
func (b *RecipeBook) Count() int {
	if b == nil {
		return 0
	}
	n := 0
	for _, list := range b.bySlot {
		n += len(list)
	}
	return n
}

// Containing returns every recipe, across all meal slots, that uses food.
func (b *RecipeBook) Containing(food string) []Recipe {
	var out []Recipe
	for _, slot := range MealSlots {
		for _, r := range b.Recipes(slot) {
			if r.Uses(food) {
				out = append(out, r)
			}
		}
	}
	return out
}

// CoalesceStr returns the first non-empty string from vals.
func CoalesceStr(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
