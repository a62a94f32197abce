package diet

import (
	"math"

	"github.com/alexanderramin/climbdiet/internal/milp"
)

// recipeRules is step (h). A chosen recipe puts each ingredient inside its
// bounds, an unchosen one zeroes them. Every slot gets a recipe each day, a
// food inside a chosen recipe cannot also be an extra that day, and a recipe
// is spaced out over the week.
func (bd *build) recipeRules() {
	m := bd.Model
	pol := bd.policy

	for _, k := range bd.Vars.Ingredient.Keys() {
		r, _ := bd.recipes.Recipe(k.Slot, k.Recipe)
		b := r.Ingredients[k.Food]
		f := bd.food(k.Food)
		q := bd.Vars.Ingredient.at(k)
		x := bd.Vars.Recipe.at(k.RecipeKey())

		var hi milp.Expr
		hi.Add(q, 1).Add(x, -math.Min(b.Max, f.MaxGrams))
		m.AddConstraint(label("ingredient_max", k.Food, k.Slot, k.Recipe, k.Day), hi, milp.LE, 0)
		if b.Min > 0 {
			var lo milp.Expr
			lo.Add(q, 1).Add(x, -b.Min)
			m.AddConstraint(label("ingredient_min", k.Food, k.Slot, k.Recipe, k.Day), lo, milp.GE, 0)
		}
		if !pol.IsAllowed(k.Slot, f.Category) {
			m.AddConstraint(label("ingredient_allowed", k.Food, k.Slot, k.Recipe, k.Day), milp.Sum(q), milp.EQ, 0)
		}
	}

	for _, d := range bd.Shape.DayNumbers() {
		for _, slot := range bd.Shape.Slots {
			var e milp.Expr
			for _, r := range bd.recipes.Recipes(slot) {
				e.Add(bd.Vars.Recipe.at(RecipeKey{Slot: slot, Recipe: r.Index, Day: d}), 1)
			}
			m.AddConstraint(label("recipe_per_slot", slot, d), e, milp.GE, 1)
		}

		for _, name := range bd.foods.Names() {
			containing := bd.recipes.Containing(name)
			if len(containing) == 0 {
				continue
			}
			limit := bd.food(name).MaxGrams
			for _, slot := range bd.Shape.Slots {
				var e milp.Expr
				e.Add(bd.Vars.Quantity.at(FoodKey{Food: name, Slot: slot, Day: d}), 1)
				for _, r := range containing {
					e.Add(bd.Vars.Recipe.at(RecipeKey{Slot: r.Slot, Recipe: r.Index, Day: d}), limit)
				}
				m.AddConstraint(label("extra_vs_recipe", name, slot, d), e, milp.LE, limit)
			}
		}
	}

	days := bd.Shape.DayNumbers()
	starts := bd.Shape.Windows(pol.WindowSize)
	for _, slot := range bd.Shape.Slots {
		for _, r := range bd.recipes.Recipes(slot) {
			var week milp.Expr
			for _, d := range days {
				week.Add(bd.Vars.Recipe.at(RecipeKey{Slot: slot, Recipe: r.Index, Day: d}), 1)
			}
			m.AddConstraint(label("recipe_weekly", slot, r.Index), week, milp.LE, float64(pol.RecipeMaxDays))

			for _, start := range starts {
				var e milp.Expr
				for _, d := range span(start, pol.WindowSize) {
					e.Add(bd.Vars.Recipe.at(RecipeKey{Slot: slot, Recipe: r.Index, Day: d}), 1)
				}
				m.AddConstraint(label("recipe_window", slot, r.Index, start), e, milp.LE, float64(pol.RecipeWindowMax))
			}
		}
	}
}
