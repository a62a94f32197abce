// Package policy holds the modeling constants of the diet formulations.
// Variant differences live here as data; the model builder reads them and
// never hardcodes a number.
package policy

import (
	"fmt"
	"math"

	"github.com/alexanderramin/climbdiet/internal/domain"
)

// WeeklyCapMode controls how the per-food weekly caps combine for foods in a
// limited category.
type WeeklyCapMode string

const (
	// CapStacked emits the limited-category cap and the default cap
	// independently; a limited food gets both.
	CapStacked WeeklyCapMode = "stacked"
	// CapExclusive emits the default cap only for foods outside the limited
	// categories.
	CapExclusive WeeklyCapMode = "exclusive"
)

// Macros holds one value per macronutrient.
type Macros struct {
	Carbs   float64 `yaml:"carbs"`
	Protein float64 `yaml:"protein"`
	Fat     float64 `yaml:"fat"`
}

// Sum returns Carbs + Protein + Fat.
func (m Macros) Sum() float64 { return m.Carbs + m.Protein + m.Fat }

// Quota bounds the grams of one category in a slot, enforced only when the
// slot's category-presence binary is 1. Max <= 0 means no upper bound.
type Quota struct {
	Category domain.Category
	Min      float64
	Max      float64
}

// Bounded reports whether the quota has an upper bound.
func (q Quota) Bounded() bool { return q.Max > 0 }

// SlotCountRule limits how many slots of a day may claim a category.
type SlotCountRule struct {
	Category domain.Category
	AtLeast  bool
	Count    int
}

// DayUseCap caps the total day-presence of a category's foods over the horizon.
type DayUseCap struct {
	Category domain.Category
	Max      int
}

// Policy is the full table of modeling constants.
type Policy struct {
	KcalMin float64
	KcalMax float64

	KcalShare     map[domain.Slot]float64
	MacroShare    map[domain.Slot]Macros
	DayMacroShare Macros
	KcalPerGram   Macros

	Allowed map[domain.Slot][]domain.Category

	ServingMin float64
	Quotas     []Quota
	// Exclusive lists category pairs whose presence binaries may not both be 1
	// in the same slot.
	Exclusive  [][2]domain.Category
	SlotCounts []SlotCountRule

	Beverages    []string
	BeverageMin  float64
	BeverageSlot domain.Slot
	Staples      []string
	StapleSlots  []domain.Slot
	DessertSlots []domain.Slot
	DessertMin   float64

	Horizon           int
	LimitedCategories []domain.Category
	LimitedDays       int
	DefaultDays       int
	Unlimited         []string
	DayUseCaps        []DayUseCap

	WindowSize       int
	LimitedWindowMax int
	DefaultWindowMax int

	RecipeMaxDays   int
	RecipeWindowMax int

	MIPGap          map[domain.Variant]float64
	WeeklyCaps      map[domain.Variant]WeeklyCapMode
	ReportThreshold float64
}

// Default returns the reference constants table.
func Default() *Policy {
	mainMeal := []domain.Category{
		domain.CategoryCereals, domain.CategoryDairy, domain.CategoryEggs,
		domain.CategorySugars, domain.CategoryFats, domain.CategoryVegetables,
		domain.CategoryLegumes, domain.CategoryFruit, domain.CategoryMeat,
		domain.CategoryFish, domain.CategoryShellfish, domain.CategoryCondiments,
		domain.CategoryBeverages,
	}
	light := []domain.Category{
		domain.CategoryCereals, domain.CategoryDairy, domain.CategoryEggs,
		domain.CategorySugars, domain.CategoryFats, domain.CategoryFruit,
		domain.CategoryMeatProducts,
	}
	snack := append(append([]domain.Category{}, light...), domain.CategoryNuts)

	return &Policy{
		KcalMin: 2900,
		KcalMax: 3100,
		KcalShare: map[domain.Slot]float64{
			domain.SlotBreakfast: 0.20,
			domain.SlotLunch:     0.40,
			domain.SlotSnack:     0.10,
			domain.SlotDinner:    0.30,
		},
		MacroShare: map[domain.Slot]Macros{
			domain.SlotBreakfast: {Carbs: 0.50, Protein: 0.25, Fat: 0.25},
			domain.SlotLunch:     {Carbs: 0.35, Protein: 0.40, Fat: 0.25},
			domain.SlotSnack:     {Carbs: 0.40, Protein: 0.30, Fat: 0.30},
			domain.SlotDinner:    {Carbs: 0.40, Protein: 0.30, Fat: 0.30},
		},
		DayMacroShare: Macros{Carbs: 0.40, Protein: 0.30, Fat: 0.30},
		KcalPerGram:   Macros{Carbs: 4, Protein: 4, Fat: 9},
		Allowed: map[domain.Slot][]domain.Category{
			domain.SlotBreakfast: light,
			domain.SlotLunch:     mainMeal,
			domain.SlotSnack:     snack,
			domain.SlotDinner:    append([]domain.Category{}, mainMeal...),
		},
		ServingMin: 20,
		Quotas: []Quota{
			{Category: domain.CategoryFruit, Min: 150},
			{Category: domain.CategoryVegetables, Min: 80, Max: 250},
			{Category: domain.CategoryLegumes, Max: 100},
			{Category: domain.CategoryMeat, Max: 250},
			{Category: domain.CategoryFish, Max: 200},
			{Category: domain.CategoryDairy, Max: 200},
			{Category: domain.CategorySugars, Max: 35},
		},
		Exclusive: [][2]domain.Category{{domain.CategoryMeat, domain.CategoryFish}},
		SlotCounts: []SlotCountRule{
			{Category: domain.CategoryFruit, AtLeast: true, Count: 3},
			{Category: domain.CategoryVegetables, AtLeast: true, Count: 2},
			{Category: domain.CategoryLegumes, Count: 1},
			{Category: domain.CategorySugars, Count: 1},
		},
		Beverages:    []string{"leche desnatada", "café"},
		BeverageMin:  200,
		BeverageSlot: domain.SlotBreakfast,
		Staples:      []string{"arroz", "pasta", "quinoa"},
		StapleSlots:  []domain.Slot{domain.SlotBreakfast, domain.SlotSnack},
		DessertSlots: []domain.Slot{domain.SlotLunch, domain.SlotDinner},
		DessertMin:   150,
		Horizon:      7,
		LimitedCategories: []domain.Category{
			domain.CategoryVegetables, domain.CategoryLegumes, domain.CategoryFruit,
			domain.CategoryMeat, domain.CategoryFish,
		},
		LimitedDays: 2,
		DefaultDays: 4,
		Unlimited:   []string{"leche desnatada", "pasta", "huevo", "yogur", "pan blanco", "pan integral"},
		DayUseCaps: []DayUseCap{
			{Category: domain.CategoryLegumes, Max: 3},
			{Category: domain.CategorySugars, Max: 2},
		},
		WindowSize:       3,
		LimitedWindowMax: 1,
		DefaultWindowMax: 2,
		RecipeMaxDays:    2,
		RecipeWindowMax:  1,
		MIPGap: map[domain.Variant]float64{
			domain.VariantDaily:   0,
			domain.VariantSlots:   0,
			domain.VariantWeekly:  0.028,
			domain.VariantRecipes: 0.03,
		},
		WeeklyCaps: map[domain.Variant]WeeklyCapMode{
			domain.VariantWeekly:  CapStacked,
			domain.VariantRecipes: CapExclusive,
		},
		ReportThreshold: 0.1,
	}
}

// SlotKcal returns the [lower, upper] kcal band of a slot. SlotDay gets the
// full daily band.
func (p *Policy) SlotKcal(slot domain.Slot) (float64, float64) {
	share := 1.0
	if slot != domain.SlotDay {
		share = p.KcalShare[slot]
	}
	return share * p.KcalMin, share * p.KcalMax
}

// SlotMacros returns the macro shares applied to a slot's kcal band.
func (p *Policy) SlotMacros(slot domain.Slot) Macros {
	if slot == domain.SlotDay {
		return p.DayMacroShare
	}
	return p.MacroShare[slot]
}

// IsAllowed reports whether foods of cat may be eaten in slot.
// Every category is allowed in the day aggregate.
func (p *Policy) IsAllowed(slot domain.Slot, cat domain.Category) bool {
	if slot == domain.SlotDay {
		return true
	}
	for _, c := range p.Allowed[slot] {
		if c == cat {
			return true
		}
	}
	return false
}

// IsLimited reports whether cat is subject to the limited weekly caps.
func (p *Policy) IsLimited(cat domain.Category) bool {
	for _, c := range p.LimitedCategories {
		if c == cat {
			return true
		}
	}
	return false
}

// IsUnlimited reports whether food is on the repeat-freely allow-list.
func (p *Policy) IsUnlimited(food string) bool {
	for _, n := range p.Unlimited {
		if n == food {
			return true
		}
	}
	return false
}

// TrackedCategories returns the categories that get per-slot presence binaries,
// in quota order followed by any category only named by other rules.
func (p *Policy) TrackedCategories() []domain.Category {
	seen := make(map[domain.Category]bool)
	var out []domain.Category
	add := func(c domain.Category) {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for _, q := range p.Quotas {
		add(q.Category)
	}
	for _, pair := range p.Exclusive {
		add(pair[0])
		add(pair[1])
	}
	for _, r := range p.SlotCounts {
		add(r.Category)
	}
	return out
}

// Gap returns the relative MIP gap configured for v.
func (p *Policy) Gap(v domain.Variant) float64 { return p.MIPGap[v] }

// CapMode returns the weekly-cap combination mode for v, stacked when unset.
func (p *Policy) CapMode(v domain.Variant) WeeklyCapMode {
	if m, ok := p.WeeklyCaps[v]; ok {
		return m
	}
	return CapStacked
}

// Validate checks internal consistency and returns every problem found.
func (p *Policy) Validate() []error {
	var errs []error
	if p.KcalMin <= 0 || p.KcalMax < p.KcalMin {
		errs = append(errs, fmt.Errorf("kcal: band [%g, %g] must be positive and ordered", p.KcalMin, p.KcalMax))
	}
	var shareSum float64
	for _, slot := range domain.MealSlots {
		share, ok := p.KcalShare[slot]
		if !ok {
			errs = append(errs, fmt.Errorf("slots.%s.kcal_share: is required", slot))
			continue
		}
		if share < 0 || share > 1 {
			errs = append(errs, fmt.Errorf("slots.%s.kcal_share: %g not in [0, 1]", slot, share))
		}
		shareSum += share
	}
	if math.Abs(shareSum-1) > 1e-9 && len(errs) == 0 {
		errs = append(errs, fmt.Errorf("slots: kcal shares sum to %g, expected 1", shareSum))
	}
	for _, slot := range domain.MealSlots {
		errs = append(errs, validateMacros(fmt.Sprintf("slots.%s", slot), p.MacroShare[slot])...)
	}
	errs = append(errs, validateMacros("day", p.DayMacroShare)...)

	if p.ServingMin < 0 {
		errs = append(errs, fmt.Errorf("serving_min: must be >= 0, got %g", p.ServingMin))
	}
	for _, q := range p.Quotas {
		if q.Min < 0 || (q.Bounded() && q.Max < q.Min) {
			errs = append(errs, fmt.Errorf("quotas.%s: invalid range [%g, %g]", q.Category, q.Min, q.Max))
		}
	}
	if p.Horizon < 1 {
		errs = append(errs, fmt.Errorf("horizon: must be >= 1, got %d", p.Horizon))
	}
	if p.WindowSize < 1 {
		errs = append(errs, fmt.Errorf("window_size: must be >= 1, got %d", p.WindowSize))
	}
	for v, gap := range p.MIPGap {
		if gap < 0 || gap >= 1 {
			errs = append(errs, fmt.Errorf("mip_gap.%s: %g not in [0, 1)", v, gap))
		}
	}
	for v, mode := range p.WeeklyCaps {
		if mode != CapStacked && mode != CapExclusive {
			errs = append(errs, fmt.Errorf("weekly_cap_mode.%s: unknown mode %q", v, mode))
		}
	}
	if p.ReportThreshold < 0 {
		errs = append(errs, fmt.Errorf("report_threshold: must be >= 0, got %g", p.ReportThreshold))
	}
	return errs
}

func validateMacros(path string, m Macros) []error {
	var errs []error
	for _, f := range []struct {
		name string
		v    float64
	}{{"carbs", m.Carbs}, {"protein", m.Protein}, {"fat", m.Fat}} {
		if f.v < 0 || f.v > 1 {
			errs = append(errs, fmt.Errorf("%s.%s: %g not in [0, 1]", path, f.name, f.v))
		}
	}
	if len(errs) == 0 && math.Abs(m.Sum()-1) > 1e-9 {
		errs = append(errs, fmt.Errorf("%s: macro shares sum to %g, expected 1", path, m.Sum()))
	}
	return errs
}
