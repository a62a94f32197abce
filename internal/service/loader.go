package service

import (
	"context"
	"fmt"

	"github.com/alexanderramin/climbdiet/internal/catalog"
	"github.com/alexanderramin/climbdiet/internal/policy"
)

// FileLoader reads catalogs and policy from disk. The recipe file is only
// read for variants that use it.
type FileLoader struct{}

func (FileLoader) Load(ctx context.Context, req Request) (*Inputs, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pol, err := policy.Load(req.PolicyPath)
	if err != nil {
		return nil, err
	}
	foods, err := catalog.LoadCatalog(req.FoodsPath)
	if err != nil {
		return nil, fmt.Errorf("loading foods: %w", err)
	}
	in := &Inputs{Foods: foods, Policy: pol}
	if req.Variant.NeedsRecipes() {
		if in.Recipes, err = catalog.LoadRecipeBook(req.RecipesPath, foods); err != nil {
			return nil, fmt.Errorf("loading recipes: %w", err)
		}
	}
	return in, nil
}

// StaticLoader serves inputs already in memory.
type StaticLoader struct {
	Inputs Inputs
}

func (l StaticLoader) Load(ctx context.Context, req Request) (*Inputs, error) {
	in := l.Inputs
	if in.Policy == nil {
		in.Policy = policy.Default()
	}
	if !req.Variant.NeedsRecipes() {
		in.Recipes = nil
	}
	return &in, nil
}
