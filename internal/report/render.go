package report

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/climbdiet/internal/diet"
	"github.com/alexanderramin/climbdiet/internal/domain"
)

// DefaultThreshold hides portions of a tenth of a gram or less.
const DefaultThreshold = 0.1

// Header opens every plain report.
const Header = "Dieta óptima encontrada:"

// Render writes d in the plain report grammar. Portions at or below
// threshold grams are left out.
func Render(d *diet.Diet, threshold float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", Header)

	switch d.Variant {
	case domain.VariantDaily:
		for _, day := range d.Days {
			for _, m := range day.Meals {
				writePortions(&b, "  ", Visible(m.Portions(), threshold))
			}
		}
	case domain.VariantSlots:
		for _, day := range d.Days {
			for _, m := range day.Meals {
				fmt.Fprintf(&b, "\n%s:\n", m.Slot.Title())
				writePortions(&b, "  ", Visible(m.Portions(), threshold))
			}
		}
	case domain.VariantRecipes:
		for _, day := range d.Days {
			fmt.Fprintf(&b, "\nDía: %d\n", day.Number)
			renderRecipeDay(&b, day, threshold)
		}
	default:
		for _, day := range d.Days {
			fmt.Fprintf(&b, "\nDía: %d\n", day.Number)
			for _, m := range day.Meals {
				fmt.Fprintf(&b, "  %s:\n", m.Slot.Title())
				writePortions(&b, "    ", Visible(m.Portions(), threshold))
			}
		}
	}

	fmt.Fprintf(&b, "\nCoste total: %.2f €\n", d.Cost)
	return b.String()
}

// Recipe days list every chosen recipe first, then the extras of each slot.
func renderRecipeDay(b *strings.Builder, day diet.Day, threshold float64) {
	for _, m := range day.Meals {
		for _, r := range m.Recipes {
			fmt.Fprintf(b, "\n%s: %s\n", m.Slot.Title(), r.Name)
			writeRecipePortions(b, Visible(r.Ingredients, threshold))
		}
	}
	for _, m := range day.Meals {
		extras := Visible(m.Foods, threshold)
		if len(extras) == 0 {
			continue
		}
		fmt.Fprintf(b, "\n%s extra:\n", m.Slot.Title())
		writeRecipePortions(b, extras)
	}
}

func writePortions(b *strings.Builder, indent string, ps []diet.Portion) {
	for _, p := range ps {
		fmt.Fprintf(b, "%s%s: %.2f g\n", indent, p.Food, p.Grams)
	}
}

func writeRecipePortions(b *strings.Builder, ps []diet.Portion) {
	for _, p := range ps {
		fmt.Fprintf(b, "  - %s: %.2fg\n", p.Food, p.Grams)
	}
}

// Visible returns the portions above threshold grams, in order.
func Visible(ps []diet.Portion, threshold float64) []diet.Portion {
	var out []diet.Portion
	for _, p := range ps {
		if p.Grams > threshold {
			out = append(out, p)
		}
	}
	return out
}
