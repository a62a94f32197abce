package domain

import "fmt"

// Variant selects one of the four diet formulations.
type Variant string

const (
	// VariantDaily is a single-day aggregate with no meal split.
	VariantDaily Variant = "daily"
	// VariantSlots splits one day into four meals.
	VariantSlots Variant = "slots"
	// VariantWeekly plans four meals over a seven-day week with repetition limits.
	VariantWeekly Variant = "weekly"
	// VariantRecipes is the weekly plan built from recipes plus free-standing extras.
	VariantRecipes Variant = "recipes"
)

// Variants lists the formulations in increasing complexity.
var Variants = []Variant{VariantDaily, VariantSlots, VariantWeekly, VariantRecipes}

// ValidVariants is the canonical set of accepted variant strings.
var ValidVariants = map[string]bool{
	"daily": true, "slots": true, "weekly": true, "recipes": true,
}

// Description is a one-line summary for menus and help text.
func (v Variant) Description() string {
	switch v {
	case VariantDaily:
		return "one day, nutrient totals only"
	case VariantSlots:
		return "one day split into four meals"
	case VariantWeekly:
		return "seven days of meals with repetition limits"
	case VariantRecipes:
		return "seven days of recipes plus extras"
	default:
		return "unknown variant"
	}
}

// NeedsRecipes reports whether the variant consumes the recipe catalog.
func (v Variant) NeedsRecipes() bool { return v == VariantRecipes }

// RunStatus is the terminal outcome of a solve run.
type RunStatus string

const (
	RunOptimal    RunStatus = "optimal"
	RunInfeasible RunStatus = "infeasible"
	RunOther      RunStatus = "other"
)

// ParseVariant validates a variant string.
func ParseVariant(s string) (Variant, error) {
	if !ValidVariants[s] {
		return "", fmt.Errorf("unknown variant %q (expected daily, slots, weekly or recipes)", s)
	}
	return Variant(s), nil
}
