package diet

import (
	"strings"

	"github.com/alexanderramin/climbdiet/internal/domain"
	"github.com/alexanderramin/climbdiet/internal/milp"
)

// linkPresence is step (d). A food eaten in a slot is eaten in a serving of
// at least ServingMin grams and at most its daily maximum; a food whose
// category the slot does not allow is fixed at zero.
func (bd *build) linkPresence() {
	m := bd.Model
	pol := bd.policy
	for _, k := range bd.Vars.Quantity.Keys() {
		f := bd.food(k.Food)
		q := bd.Vars.Quantity.at(k)
		y := bd.Vars.Presence.at(k)

		if !pol.IsAllowed(k.Slot, f.Category) {
			m.AddConstraint(label("allowed", k.Food, k.Slot, k.Day), milp.Sum(q), milp.EQ, 0)
		}
		var lo milp.Expr
		lo.Add(q, 1).Add(y, -pol.ServingMin)
		m.AddConstraint(label("serving_min", k.Food, k.Slot, k.Day), lo, milp.GE, 0)

		var hi milp.Expr
		hi.Add(q, 1).Add(y, -f.MaxGrams)
		m.AddConstraint(label("serving_max", k.Food, k.Slot, k.Day), hi, milp.LE, 0)
	}
}

// categoryQuotas is step (e). Quotas bind only when the slot claims the
// category; exclusive pairs cannot both be claimed in one slot.
func (bd *build) categoryQuotas() {
	m := bd.Model
	pol := bd.policy
	for _, d := range bd.Shape.DayNumbers() {
		for _, slot := range bd.Shape.Slots {
			for _, q := range pol.Quotas {
				c := bd.Vars.Category.at(CategoryKey{Category: q.Category, Slot: slot, Day: d})
				total := bd.grams(slot, d, inCategory(q.Category), unit)
				if q.Min > 0 {
					e := total.Scaled(1)
					e.Add(c, -q.Min)
					m.AddConstraint(label("quota_min", q.Category, slot, d), e, milp.GE, 0)
				}
				if q.Bounded() {
					e := total.Scaled(1)
					e.Add(c, -q.Max)
					m.AddConstraint(label("quota_max", q.Category, slot, d), e, milp.LE, 0)
				}
			}
			for _, pair := range pol.Exclusive {
				a := bd.Vars.Category.at(CategoryKey{Category: pair[0], Slot: slot, Day: d})
				b := bd.Vars.Category.at(CategoryKey{Category: pair[1], Slot: slot, Day: d})
				m.AddConstraint(label("exclusive", pair[0], pair[1], slot, d), milp.Sum(a, b), milp.LE, 1)
			}
		}
	}
}

// dailyRules is step (f): no food in two slots of a day, slot counts per
// category, and the fixed menu conventions.
func (bd *build) dailyRules() {
	m := bd.Model
	pol := bd.policy

	beverages := len(pol.Beverages) > 0 && bd.foods.HasAll(pol.Beverages...)
	if len(pol.Beverages) > 0 && !beverages {
		bd.skip("beverages", "missing "+strings.Join(missing(bd.foods, pol.Beverages), ", "))
	}
	var staples []string
	for _, name := range pol.Staples {
		if bd.foods.Has(name) {
			staples = append(staples, name)
		}
	}
	if absent := missing(bd.foods, pol.Staples); len(absent) > 0 {
		bd.skip("staples", "missing "+strings.Join(absent, ", "))
	}
	sweet := among(bd.foods.FruitOrDessert())

	for _, d := range bd.Shape.DayNumbers() {
		for _, name := range bd.foods.Names() {
			var e milp.Expr
			for _, slot := range bd.Shape.Slots {
				e.Add(bd.Vars.Presence.at(FoodKey{Food: name, Slot: slot, Day: d}), 1)
			}
			m.AddConstraint(label("once_a_day", name, d), e, milp.LE, 1)
		}

		for _, r := range pol.SlotCounts {
			var e milp.Expr
			for _, slot := range bd.Shape.Slots {
				e.Add(bd.Vars.Category.at(CategoryKey{Category: r.Category, Slot: slot, Day: d}), 1)
			}
			sense := milp.LE
			if r.AtLeast {
				sense = milp.GE
			}
			m.AddConstraint(label("slot_count", r.Category, d), e, sense, float64(r.Count))
		}

		if beverages {
			e := bd.grams(pol.BeverageSlot, d, among(pol.Beverages), unit)
			m.AddConstraint(label("beverages", pol.BeverageSlot, d), e, milp.GE, pol.BeverageMin)
		}

		// Only free-standing portions are banned; a recipe may still use a staple.
		for _, slot := range pol.StapleSlots {
			for _, name := range staples {
				q := bd.Vars.Quantity.at(FoodKey{Food: name, Slot: slot, Day: d})
				m.AddConstraint(label("staple", name, slot, d), milp.Sum(q), milp.EQ, 0)
			}
		}

		for _, slot := range pol.DessertSlots {
			e := bd.grams(slot, d, sweet, unit)
			m.AddConstraint(label("dessert", slot, d), e, milp.GE, pol.DessertMin)
		}
	}
}

func missing(c *domain.Catalog, names []string) []string {
	var out []string
	for _, n := range names {
		if !c.Has(n) {
			out = append(out, n)
		}
	}
	return out
}
