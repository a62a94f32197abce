package diet

import (
	"github.com/alexanderramin/climbdiet/internal/domain"
	"github.com/alexanderramin/climbdiet/internal/milp"
)

// nutrientWindows is step (c): every slot of every day stays inside its share
// of the daily kcal band, and each macro inside its share of the slot's band.
func (bd *build) nutrientWindows() {
	pol := bd.policy
	kpg := pol.KcalPerGram
	for _, d := range bd.Shape.DayNumbers() {
		for _, slot := range bd.Shape.Slots {
			lo, hi := pol.SlotKcal(slot)
			share := pol.SlotMacros(slot)

			bd.window("kcal", slot, d, lo, hi, func(f domain.Food) float64 { return f.Energy / 100 })
			bd.window("carbs", slot, d, share.Carbs*lo, share.Carbs*hi,
				func(f domain.Food) float64 { return f.Carbs * kpg.Carbs / 100 })
			bd.window("protein", slot, d, share.Protein*lo, share.Protein*hi,
				func(f domain.Food) float64 { return f.Protein * kpg.Protein / 100 })
			bd.window("fat", slot, d, share.Fat*lo, share.Fat*hi,
				func(f domain.Food) float64 { return f.Fat * kpg.Fat / 100 })
		}
	}
}

func (bd *build) window(nutrient string, slot domain.Slot, day int, lo, hi float64, weight func(domain.Food) float64) {
	e := bd.grams(slot, day, nil, weight)
	bd.Model.AddConstraint(label(nutrient+"_min", slot, day), e, milp.GE, lo)
	bd.Model.AddConstraint(label(nutrient+"_max", slot, day), e, milp.LE, hi)
}
