package diet

import (
	"github.com/alexanderramin/climbdiet/internal/milp"
	"github.com/alexanderramin/climbdiet/internal/policy"
)

// uses returns every binary that marks food as eaten on day: its per-slot
// presence and, with recipes, the selection of any recipe containing it.
func (bd *build) uses(food string, day int) []milp.Var {
	var out []milp.Var
	for _, slot := range bd.Shape.Slots {
		out = append(out, bd.Vars.Presence.at(FoodKey{Food: food, Slot: slot, Day: day}))
	}
	if bd.Shape.Recipes {
		for _, r := range bd.recipes.Containing(food) {
			out = append(out, bd.Vars.Recipe.at(RecipeKey{Slot: r.Slot, Recipe: r.Index, Day: day}))
		}
	}
	return out
}

// linkDayUse is the first part of step (g): z is 1 exactly when the food is
// used somewhere that day.
func (bd *build) linkDayUse() {
	m := bd.Model
	for _, k := range bd.Vars.DayUse.Keys() {
		z := bd.Vars.DayUse.at(k)
		uses := bd.uses(k.Food, k.Day)
		for i, u := range uses {
			var e milp.Expr
			e.Add(u, 1).Add(z, -1)
			m.AddConstraint(label("day_use", k.Food, k.Day, i), e, milp.LE, 0)
		}
		e := milp.Sum(z)
		for _, u := range uses {
			e.Add(u, -1)
		}
		m.AddConstraint(label("day_use_any", k.Food, k.Day), e, milp.LE, 0)
	}
}

func (bd *build) daysOf(food string, days []int) milp.Expr {
	var e milp.Expr
	for _, d := range days {
		e.Add(bd.Vars.DayUse.at(FoodDayKey{Food: food, Day: d}), 1)
	}
	return e
}

// weeklyCaps bounds on how many days of the horizon each food appears, and
// the day-uses of whole categories.
func (bd *build) weeklyCaps() {
	m := bd.Model
	pol := bd.policy
	mode := pol.CapMode(bd.Shape.Variant)
	days := bd.Shape.DayNumbers()

	for _, name := range bd.foods.Names() {
		limited := pol.IsLimited(bd.food(name).Category)
		free := pol.IsUnlimited(name)
		e := bd.daysOf(name, days)
		if limited {
			m.AddConstraint(label("weekly_limited", name), e, milp.LE, float64(pol.LimitedDays))
		}
		if free || (limited && mode == policy.CapExclusive) {
			continue
		}
		m.AddConstraint(label("weekly", name), e, milp.LE, float64(pol.DefaultDays))
	}

	for _, c := range pol.DayUseCaps {
		foods := bd.foods.InCategory(c.Category)
		if len(foods) == 0 {
			continue
		}
		var e milp.Expr
		for _, name := range foods {
			e.AddExpr(bd.daysOf(name, days), 1)
		}
		m.AddConstraint(label("day_uses", c.Category), e, milp.LE, float64(c.Max))
	}
}

// spacingWindows limits appearances inside every run of WindowSize
// consecutive days. Limited foods that are also on the allow-list still get
// the limited window.
func (bd *build) spacingWindows() {
	m := bd.Model
	pol := bd.policy
	starts := bd.Shape.Windows(pol.WindowSize)
	for _, name := range bd.foods.Names() {
		limited := pol.IsLimited(bd.food(name).Category)
		free := pol.IsUnlimited(name)
		for _, start := range starts {
			e := bd.daysOf(name, span(start, pol.WindowSize))
			if limited {
				m.AddConstraint(label("window_limited", name, start), e, milp.LE, float64(pol.LimitedWindowMax))
			}
			if !free {
				m.AddConstraint(label("window", name, start), e, milp.LE, float64(pol.DefaultWindowMax))
			}
		}
	}
}

func span(start, size int) []int {
	out := make([]int, size)
	for i := range out {
		out[i] = start + i
	}
	return out
}
