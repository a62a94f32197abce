// Package diet turns a food catalog, an optional recipe book and the policy
// table into a MILP model, and reads solved models back into diets.
package diet

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/alexanderramin/climbdiet/internal/domain"
	"github.com/alexanderramin/climbdiet/internal/milp"
	"github.com/alexanderramin/climbdiet/internal/policy"
)

var (
	// ErrEmptyCatalog is returned when there are no foods to choose from.
	ErrEmptyCatalog = errors.New("nutrition catalog is empty")
	// ErrMissingRecipes is returned when a recipe formulation lacks recipes
	// for a meal slot.
	ErrMissingRecipes = errors.New("recipe catalog incomplete")
	// ErrUnknownIngredient is returned when a recipe names a food that is not
	// in the nutrition catalog.
	ErrUnknownIngredient = errors.New("recipe ingredient not in nutrition catalog")
)

// Vars holds the typed variable stores of a plan. Stores a variant does not
// use are empty.
type Vars struct {
	// Quantity is grams per food, slot and day. In the recipe formulation
	// these are the free-standing extras.
	Quantity *VarSet[FoodKey]
	// Presence marks a food as eaten in a slot.
	Presence *VarSet[FoodKey]
	// Category marks a category as claimed in a slot, which gates its quota.
	Category *VarSet[CategoryKey]
	// DayUse marks a food as eaten at all on a day.
	DayUse *VarSet[FoodDayKey]
	// Recipe marks a recipe as chosen for a slot on a day.
	Recipe *VarSet[RecipeKey]
	// Ingredient is grams of an ingredient inside a chosen recipe.
	Ingredient *VarSet[IngredientKey]
}

// Plan is a built model together with everything needed to interpret its
// solution.
type Plan struct {
	Model *milp.Model
	Shape Shape
	Vars  Vars
	// Gap is the relative MIP gap the policy asks for this variant.
	Gap float64
	// Skipped lists optional rules left out because their foods are missing.
	Skipped []string

	foods   *domain.Catalog
	recipes *domain.RecipeBook
	policy  *policy.Policy
}

// Foods returns the catalog the plan was built from.
func (p *Plan) Foods() *domain.Catalog { return p.foods }

// Recipes returns the recipe book the plan was built from, nil unless the
// shape has recipes.
func (p *Plan) Recipes() *domain.RecipeBook { return p.recipes }

// Builder assembles plans. It is safe to reuse across variants.
type Builder struct {
	foods   *domain.Catalog
	recipes *domain.RecipeBook
	policy  *policy.Policy
	log     *zap.Logger
}

// NewBuilder returns a builder over foods and recipes. recipes may be nil
// for formulations without a recipe layer; a nil policy means the default
// table and a nil logger discards output.
func NewBuilder(foods *domain.Catalog, recipes *domain.RecipeBook, pol *policy.Policy, log *zap.Logger) *Builder {
	if pol == nil {
		pol = policy.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{foods: foods, recipes: recipes, policy: pol, log: log}
}

// build carries the plan under construction through the pipeline steps.
type build struct {
	*Plan
	log *zap.Logger
}

// Build assembles the model of variant v. Steps run in a fixed order:
// variables, objective, nutrient windows, linking, quotas, daily rules,
// weekly rules, recipe rules.
func (b *Builder) Build(v domain.Variant) (*Plan, error) {
	shape, err := ShapeFor(v, b.policy)
	if err != nil {
		return nil, err
	}
	if b.foods == nil || b.foods.Len() == 0 {
		return nil, ErrEmptyCatalog
	}
	if shape.Recipes {
		if err := b.checkRecipes(); err != nil {
			return nil, err
		}
	}

	p := &Plan{
		Model:  milp.NewModel(fmt.Sprintf("climbdiet_%s", v)),
		Shape:  shape,
		Gap:    b.policy.Gap(v),
		foods:  b.foods,
		policy: b.policy,
		Vars: Vars{
			Quantity:   newVarSet[FoodKey](),
			Presence:   newVarSet[FoodKey](),
			Category:   newVarSet[CategoryKey](),
			DayUse:     newVarSet[FoodDayKey](),
			Recipe:     newVarSet[RecipeKey](),
			Ingredient: newVarSet[IngredientKey](),
		},
	}
	if shape.Recipes {
		p.recipes = b.recipes
	}
	bd := &build{Plan: p, log: b.log.With(zap.String("variant", string(v)))}

	bd.declareVars()
	bd.setObjective()
	bd.nutrientWindows()
	if shape.Presence {
		bd.linkPresence()
		bd.categoryQuotas()
		bd.dailyRules()
	}
	if shape.DayPresence {
		bd.linkDayUse()
		bd.weeklyCaps()
		bd.spacingWindows()
	}
	if shape.Recipes {
		bd.recipeRules()
	}

	bd.log.Info("model built",
		zap.String("stats", p.Model.Stats().String()),
		zap.Int("skipped_rules", len(p.Skipped)))
	return p, nil
}

func (b *Builder) checkRecipes() error {
	for _, slot := range domain.MealSlots {
		list := b.recipes.Recipes(slot)
		if len(list) == 0 {
			return fmt.Errorf("%w: no recipes for %s", ErrMissingRecipes, slot)
		}
		for _, r := range list {
			for _, name := range r.IngredientNames() {
				if !b.foods.Has(name) {
					return fmt.Errorf("%w: %s in %s recipe %q", ErrUnknownIngredient, name, slot, r.DisplayName())
				}
			}
		}
	}
	return nil
}

// skip records an optional rule that was left out.
func (bd *build) skip(rule, reason string) {
	bd.Skipped = append(bd.Skipped, rule+": "+reason)
	bd.log.Warn("rule skipped", zap.String("rule", rule), zap.String("reason", reason))
}

// declareVars is step (a).
func (bd *build) declareVars() {
	m := bd.Model
	for _, d := range bd.Shape.DayNumbers() {
		for _, slot := range bd.Shape.Slots {
			for _, name := range bd.foods.Names() {
				k := FoodKey{Food: name, Slot: slot, Day: d}
				bd.Vars.Quantity.put(k, m.Continuous(label("q", name, slot, d), math.Inf(1)))
				if bd.Shape.Presence {
					bd.Vars.Presence.put(k, m.Binary(label("y", name, slot, d)))
				}
			}
			if bd.Shape.Presence {
				for _, cat := range bd.policy.TrackedCategories() {
					k := CategoryKey{Category: cat, Slot: slot, Day: d}
					bd.Vars.Category.put(k, m.Binary(label("c", cat, slot, d)))
				}
			}
			if bd.Shape.Recipes {
				for _, r := range bd.recipes.Recipes(slot) {
					rk := RecipeKey{Slot: slot, Recipe: r.Index, Day: d}
					bd.Vars.Recipe.put(rk, m.Binary(label("x", slot, r.Index, d)))
					for _, name := range r.IngredientNames() {
						ik := IngredientKey{Food: name, Slot: slot, Recipe: r.Index, Day: d}
						bd.Vars.Ingredient.put(ik, m.Continuous(label("qr", name, slot, r.Index, d), r.Ingredients[name].Max))
					}
				}
			}
		}
		if bd.Shape.DayPresence {
			for _, name := range bd.foods.Names() {
				k := FoodDayKey{Food: name, Day: d}
				bd.Vars.DayUse.put(k, m.Binary(label("z", name, d)))
			}
		}
	}
}

// setObjective is step (b): total cost, prices being per 100 g.
func (bd *build) setObjective() {
	var obj milp.Expr
	for _, k := range bd.Vars.Quantity.Keys() {
		obj.Add(bd.Vars.Quantity.at(k), bd.food(k.Food).Price/100)
	}
	for _, k := range bd.Vars.Ingredient.Keys() {
		obj.Add(bd.Vars.Ingredient.at(k), bd.food(k.Food).Price/100)
	}
	bd.Model.Minimize(obj)
}

// grams sums weight(food)·grams over every quantity eaten in slot on day,
// recipe ingredients included, for foods accepted by keep.
func (bd *build) grams(slot domain.Slot, day int, keep func(domain.Food) bool, weight func(domain.Food) float64) milp.Expr {
	var e milp.Expr
	for _, name := range bd.foods.Names() {
		f := bd.food(name)
		if keep != nil && !keep(f) {
			continue
		}
		e.Add(bd.Vars.Quantity.at(FoodKey{Food: name, Slot: slot, Day: day}), weight(f))
	}
	if !bd.Shape.Recipes {
		return e
	}
	for _, r := range bd.recipes.Recipes(slot) {
		for _, name := range r.IngredientNames() {
			f := bd.food(name)
			if keep != nil && !keep(f) {
				continue
			}
			e.Add(bd.Vars.Ingredient.at(IngredientKey{Food: name, Slot: slot, Recipe: r.Index, Day: day}), weight(f))
		}
	}
	return e
}

func unit(domain.Food) float64 { return 1 }

func inCategory(cat domain.Category) func(domain.Food) bool {
	return func(f domain.Food) bool { return f.Category == cat }
}

func among(names []string) func(domain.Food) bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(f domain.Food) bool { return set[f.Name] }
}
