package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/climbdiet/internal/diet"
	"github.com/alexanderramin/climbdiet/internal/domain"
	"github.com/alexanderramin/climbdiet/internal/report"
)

// DietView controls the styled diet rendering. A zero KcalMax hides the
// energy bar.
type DietView struct {
	Threshold float64
	KcalMin   float64
	KcalMax   float64
}

const bandWidth = 20

// FormatDiet renders a diet for the terminal: one tree per day with meal
// energy and food grams, the day's totals against the energy band, and the
// cost. Portions at or below the threshold are hidden as in the plain report.
func FormatDiet(d *diet.Diet, view DietView) string {
	var b strings.Builder
	b.WriteString(Header("Dieta óptima") + "\n\n")

	for _, day := range d.Days {
		if len(d.Days) > 1 {
			b.WriteString(StyleHeader.Render(fmt.Sprintf("Día %d", day.Number)) + "\n")
		}
		b.WriteString(RenderTree(dayTree(d.Variant, day, view.Threshold)))
		b.WriteString(dayTotals(day.Totals(), view) + "\n\n")
	}

	b.WriteString(fmt.Sprintf("%s %s\n", Bold("Coste total:"), StyleGreen.Render(fmt.Sprintf("%.2f €", d.Cost))))
	return b.String()
}

func dayTree(v domain.Variant, day diet.Day, threshold float64) []TreeItem {
	var items []TreeItem
	for _, m := range day.Meals {
		var children []TreeItem
		for _, r := range m.Recipes {
			for _, p := range report.Visible(r.Ingredients, threshold) {
				children = append(children, TreeItem{Title: p.Food, Level: 1, Detail: FormatGrams(p.Grams)})
			}
		}
		for _, p := range report.Visible(m.Foods, threshold) {
			children = append(children, TreeItem{
				Title:  p.Food,
				Level:  1,
				Detail: FormatGrams(p.Grams),
				Extra:  v == domain.VariantRecipes,
			})
		}
		if len(children) == 0 {
			continue
		}
		children[len(children)-1].IsLast = true

		heading := m.Slot.Title()
		if len(m.Recipes) > 0 {
			names := make([]string, len(m.Recipes))
			for i, r := range m.Recipes {
				names[i] = r.Name
			}
			heading += ": " + strings.Join(names, ", ")
		}
		items = append(items, TreeItem{Title: heading, Detail: fmt.Sprintf("%.0f kcal", m.Totals.Kcal)})
		items = append(items, children...)
	}
	return items
}

func dayTotals(n diet.Nutrients, view DietView) string {
	macros := Dim(fmt.Sprintf("HC %.0f g · P %.0f g · G %.0f g", n.Carbs, n.Protein, n.Fat))
	if view.KcalMax <= 0 {
		return fmt.Sprintf("%s %.0f  %s", Dim("kcal"), n.Kcal, macros)
	}
	return fmt.Sprintf("%s %s  %s", Dim("kcal"), RenderBand(n.Kcal, view.KcalMin, view.KcalMax, bandWidth), macros)
}
