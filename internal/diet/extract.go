package diet

import (
	"github.com/alexanderramin/climbdiet/internal/domain"
	"github.com/alexanderramin/climbdiet/internal/solver"
)

// Quantities below this are solver noise and never reach a diet.
const noise = 1e-6

// Diet is a solved plan: what to eat, when, and what it costs.
type Diet struct {
	Variant domain.Variant
	Days    []Day
	Cost    float64
}

// Day is one day of a diet, numbered from 1.
type Day struct {
	Number int
	Meals  []Meal
}

// Meal is what is eaten in one slot. Foods holds free-standing portions,
// which the recipe formulation calls extras.
type Meal struct {
	Slot    domain.Slot
	Recipes []ChosenRecipe
	Foods   []Portion
	Totals  Nutrients
}

// ChosenRecipe is a recipe picked for a meal with the grams of each ingredient.
type ChosenRecipe struct {
	Index       int
	Name        string
	Ingredients []Portion
}

// Portion is an amount of one food in grams.
type Portion struct {
	Food  string
	Grams float64
}

// Nutrients are totals over a set of portions.
type Nutrients struct {
	Kcal    float64
	Carbs   float64
	Protein float64
	Fat     float64
}

func (n *Nutrients) add(f domain.Food, grams float64) {
	k := grams / 100
	n.Kcal += f.Energy * k
	n.Carbs += f.Carbs * k
	n.Protein += f.Protein * k
	n.Fat += f.Fat * k
}

// Plus returns the sum of n and o.
func (n Nutrients) Plus(o Nutrients) Nutrients {
	return Nutrients{
		Kcal:    n.Kcal + o.Kcal,
		Carbs:   n.Carbs + o.Carbs,
		Protein: n.Protein + o.Protein,
		Fat:     n.Fat + o.Fat,
	}
}

// Totals sums the nutrients of every meal of the day.
func (d Day) Totals() Nutrients {
	var n Nutrients
	for _, m := range d.Meals {
		n = n.Plus(m.Totals)
	}
	return n
}

// Portions returns every portion of the meal, recipe ingredients first.
func (m Meal) Portions() []Portion {
	var out []Portion
	for _, r := range m.Recipes {
		out = append(out, r.Ingredients...)
	}
	return append(out, m.Foods...)
}

// Empty reports whether nothing is eaten in the meal.
func (m Meal) Empty() bool { return len(m.Recipes) == 0 && len(m.Foods) == 0 }

// Extract reads an optimal solution of p into a diet. Non-optimal solutions
// are refused with solver.ErrNoSolution; their values are never read.
func Extract(p *Plan, sol *solver.Solution) (*Diet, error) {
	values, err := sol.Values()
	if err != nil {
		return nil, err
	}
	if len(values) != p.Model.NumVars() {
		return nil, solver.ErrNoSolution
	}

	out := &Diet{Variant: p.Shape.Variant, Cost: sol.Objective}
	for _, d := range p.Shape.DayNumbers() {
		day := Day{Number: d}
		for _, slot := range p.Shape.Slots {
			meal := Meal{Slot: slot}
			if p.Shape.Recipes {
				for _, r := range p.recipes.Recipes(slot) {
					x := p.Vars.Recipe.at(RecipeKey{Slot: slot, Recipe: r.Index, Day: d})
					if values[x] < 0.5 {
						continue
					}
					chosen := ChosenRecipe{Index: r.Index, Name: r.DisplayName()}
					for _, name := range r.IngredientNames() {
						q := p.Vars.Ingredient.at(IngredientKey{Food: name, Slot: slot, Recipe: r.Index, Day: d})
						if g := values[q]; g > noise {
							chosen.Ingredients = append(chosen.Ingredients, Portion{Food: name, Grams: g})
							meal.Totals.add(p.food(name), g)
						}
					}
					meal.Recipes = append(meal.Recipes, chosen)
				}
			}
			for _, name := range p.foods.Names() {
				q := p.Vars.Quantity.at(FoodKey{Food: name, Slot: slot, Day: d})
				if g := values[q]; g > noise {
					meal.Foods = append(meal.Foods, Portion{Food: name, Grams: g})
					meal.Totals.add(p.food(name), g)
				}
			}
			day.Meals = append(day.Meals, meal)
		}
		out.Days = append(out.Days, day)
	}
	return out, nil
}

func (p *Plan) food(name string) domain.Food {
	f, _ := p.foods.Food(name)
	return f
}
