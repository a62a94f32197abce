package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/alexanderramin/climbdiet/internal/config"
	"github.com/alexanderramin/climbdiet/internal/domain"
	"github.com/alexanderramin/climbdiet/internal/service"
)

// variantValue is a pflag.Value restricted to the known formulations.
type variantValue domain.Variant

var _ pflag.Value = (*variantValue)(nil)

func (v *variantValue) String() string { return string(*v) }

func (v *variantValue) Set(s string) error {
	parsed, err := domain.ParseVariant(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return err
	}
	*v = variantValue(parsed)
	return nil
}

func (v *variantValue) Type() string { return "variant" }

// inputFlags are the flags shared by solve, validate and export.
type inputFlags struct {
	variant variantValue
	foods   string
	recipes string
	policy  string
}

func (f *inputFlags) register(fs *pflag.FlagSet, cfg config.Config) {
	fs.Var(&f.variant, "variant", "Diet formulation: daily, slots, weekly or recipes")
	fs.StringVar(&f.foods, "foods", cfg.FoodsPath, "Nutrition catalog JSON file")
	fs.StringVar(&f.recipes, "recipes", cfg.RecipesPath, "Recipe catalog JSON file (recipes variant)")
	fs.StringVar(&f.policy, "policy", cfg.PolicyPath, "YAML file overriding the modeling constants")
}

// request resolves the variant, asking for it in an interactive terminal
// when the flag was not given.
func (f *inputFlags) request(ctx context.Context, app *App) (service.Request, error) {
	v := domain.Variant(f.variant)
	if v == "" {
		if !app.interactive() {
			return service.Request{}, fmt.Errorf("--variant is required (one of daily, slots, weekly, recipes)")
		}
		pick := app.PickVariant
		if pick == nil {
			pick = pickVariant
		}
		var err error
		if v, err = pick(ctx); err != nil {
			return service.Request{}, err
		}
	}
	return service.Request{
		Variant:     v,
		FoodsPath:   f.foods,
		RecipesPath: f.recipes,
		PolicyPath:  f.policy,
	}, nil
}
