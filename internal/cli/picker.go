package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/climbdiet/internal/cli/formatter"
	"github.com/alexanderramin/climbdiet/internal/domain"
)

// huhTheme applies the formatter palette to huh forms.
func huhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// variantOptions lists the formulations in increasing complexity.
func variantOptions() []huh.Option[domain.Variant] {
	opts := make([]huh.Option[domain.Variant], 0, len(domain.Variants))
	for _, v := range domain.Variants {
		label := fmt.Sprintf("%-8s %s", v, formatter.Dim(v.Description()))
		opts = append(opts, huh.NewOption(label, v))
	}
	return opts
}

func variantForm(value *domain.Variant) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[domain.Variant]().
				Title("Diet formulation").
				Description("Larger formulations take longer to solve").
				Options(variantOptions()...).
				Value(value),
		),
	).WithTheme(huhTheme()).WithShowHelp(false)
}

func pickVariant(ctx context.Context) (domain.Variant, error) {
	v := domain.VariantDaily
	if err := variantForm(&v).RunWithContext(ctx); err != nil {
		return "", fmt.Errorf("choosing variant: %w", err)
	}
	return v, nil
}
