package diet

import (
	"fmt"

	"github.com/alexanderramin/climbdiet/internal/domain"
	"github.com/alexanderramin/climbdiet/internal/policy"
)

// Shape is the index space of a formulation. The four variants share one
// constraint generator; everything that differs between them is in here.
type Shape struct {
	Variant domain.Variant
	Slots   []domain.Slot
	Days    int
	// Presence adds per-slot food and category binaries with the rules
	// that hang off them.
	Presence bool
	// DayPresence adds per-day food binaries and the weekly rules.
	DayPresence bool
	// Recipes adds recipe selection; per-slot foods become extras.
	Recipes bool
}

// ShapeFor returns the shape of variant v under pol.
func ShapeFor(v domain.Variant, pol *policy.Policy) (Shape, error) {
	switch v {
	case domain.VariantDaily:
		return Shape{Variant: v, Slots: []domain.Slot{domain.SlotDay}, Days: 1}, nil
	case domain.VariantSlots:
		return Shape{Variant: v, Slots: domain.MealSlots, Days: 1, Presence: true}, nil
	case domain.VariantWeekly:
		return Shape{Variant: v, Slots: domain.MealSlots, Days: pol.Horizon, Presence: true, DayPresence: true}, nil
	case domain.VariantRecipes:
		return Shape{
			Variant:     v,
			Slots:       domain.MealSlots,
			Days:        pol.Horizon,
			Presence:    true,
			DayPresence: true,
			Recipes:     true,
		}, nil
	default:
		return Shape{}, fmt.Errorf("unknown variant %q", v)
	}
}

// DayNumbers returns 1..Days.
func (s Shape) DayNumbers() []int {
	out := make([]int, s.Days)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// Windows returns the first day of every run of size consecutive days.
// It is empty when the horizon is shorter than size.
func (s Shape) Windows(size int) []int {
	var out []int
	for d := 1; d+size-1 <= s.Days; d++ {
		out = append(out, d)
	}
	return out
}
