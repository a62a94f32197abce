package diet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/climbdiet/internal/domain"
	"github.com/alexanderramin/climbdiet/internal/milp"
	"github.com/alexanderramin/climbdiet/internal/testutil"
)

func recipeBook() *domain.RecipeBook {
	type ib = domain.IngredientBounds
	return domain.NewRecipeBook(map[domain.Slot][]domain.Recipe{
		domain.SlotBreakfast: {
			{Name: "tostada con fruta", Ingredients: map[string]ib{"carb_desayuno": {Min: 50, Max: 200}, "fruta_a": {Min: 100, Max: 150}}},
			{Name: "verde", Ingredients: map[string]ib{"verdura_a": {Min: 50, Max: 100}}},
		},
		domain.SlotLunch: {
			{Name: "tortilla", Ingredients: map[string]ib{"prot_comida": {Min: 100, Max: 600}}},
		},
		domain.SlotSnack: {
			{Ingredients: map[string]ib{"fruta_c": {Max: 200}}},
		},
		domain.SlotDinner: {
			{Name: "ensalada", Ingredients: map[string]ib{"verdura_b": {Min: 80, Max: 900}, "carb_cena": {Min: 20, Max: 100}}},
		},
	})
}

func TestBuild_RecipesStores(t *testing.T) {
	foods := testutil.SlotsCatalog()
	plan, err := NewBuilder(foods, recipeBook(), nil, nil).Build(domain.VariantRecipes)
	require.NoError(t, err)

	assert.Equal(t, 5*7, plan.Vars.Recipe.Len())
	assert.Equal(t, 7*7, plan.Vars.Ingredient.Len())
	assert.Equal(t, foods.Len()*4*7, plan.Vars.Quantity.Len())
	assert.Equal(t, foods.Len()*7, plan.Vars.DayUse.Len())
	assert.InDelta(t, 0.03, plan.Gap, 1e-12)
	assert.NotNil(t, plan.Recipes())

	ik := IngredientKey{Food: "fruta_a", Slot: domain.SlotBreakfast, Recipe: 0, Day: 4}
	q, ok := plan.Vars.Ingredient.Get(ik)
	require.True(t, ok)
	assert.InDelta(t, 150, plan.Model.Var(q).Upper, 1e-12)
}

func TestBuild_RecipeRules(t *testing.T) {
	plan, err := NewBuilder(testutil.SlotsCatalog(), recipeBook(), nil, nil).Build(domain.VariantRecipes)
	require.NoError(t, err)
	names := constraintNames(plan.Model)

	t.Run("ingredient bounds", func(t *testing.T) {
		hi := names["ingredient_max[fruta_a,desayuno,0,1]"]
		require.Len(t, hi.Expr.Terms, 2)
		assert.InDelta(t, -150, hi.Expr.Terms[1].Coef, 1e-12)

		// The food maximum is tighter than the recipe bound.
		veg := names["ingredient_max[verdura_b,cena,0,1]"]
		assert.InDelta(t, -500, veg.Expr.Terms[1].Coef, 1e-12)

		assert.Contains(t, names, "ingredient_min[fruta_a,desayuno,0,1]")
		assert.NotContains(t, names, "ingredient_min[fruta_c,merienda,0,1]")
		assert.Contains(t, names, "ingredient_allowed[verdura_a,desayuno,1,1]")
		assert.NotContains(t, names, "ingredient_allowed[verdura_b,cena,0,1]")
	})

	t.Run("one recipe per slot", func(t *testing.T) {
		c := names["recipe_per_slot[desayuno,3]"]
		assert.Equal(t, milp.GE, c.Sense)
		assert.Len(t, c.Expr.Terms, 2)
	})

	t.Run("weekly spacing", func(t *testing.T) {
		assert.InDelta(t, 2, names["recipe_weekly[comida,0]"].RHS, 1e-12)
		for start := 1; start <= 5; start++ {
			assert.InDelta(t, 1, names[label("recipe_window", domain.SlotLunch, 0, start)].RHS, 1e-12)
		}
	})

	t.Run("day use counts recipe selections", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			assert.Contains(t, names, label("day_use", "fruta_a", 2, i))
		}
		assert.NotContains(t, names, label("day_use", "fruta_a", 2, 5))
		assert.Len(t, names["day_use_any[fruta_a,2]"].Expr.Terms, 6)
		assert.Len(t, names["day_use_any[fruta_b,2]"].Expr.Terms, 5)
	})

	t.Run("dessert counts ingredients", func(t *testing.T) {
		// Three fruit extras at dinner; the dinner recipe has no fruit.
		assert.Len(t, names["dessert[cena,1]"].Expr.Terms, 3)
		assert.Len(t, names["quota_min[vegetables,cena,1]"].Expr.Terms, 2+1+1)
	})
}

func TestBuild_ChosenRecipeBlocksExtras(t *testing.T) {
	plan, err := NewBuilder(testutil.SlotsCatalog(), recipeBook(), nil, nil).Build(domain.VariantRecipes)
	require.NoError(t, err)

	var rows []milp.Constraint
	for _, c := range plan.Model.Constraints() {
		if c.Name == "extra_vs_recipe[fruta_a,merienda,3]" {
			rows = append(rows, c)
		}
	}
	require.Len(t, rows, 1)
	row := rows[0]
	assert.InDelta(t, 500, row.RHS, 1e-12)

	values := make([]float64, plan.Model.NumVars())
	x := plan.Vars.Recipe.at(RecipeKey{Slot: domain.SlotBreakfast, Recipe: 0, Day: 3})
	extra := plan.Vars.Quantity.at(FoodKey{Food: "fruta_a", Slot: domain.SlotSnack, Day: 3})

	values[extra] = 50
	assert.GreaterOrEqual(t, row.Slack(values), 0.0)

	values[x] = 1
	assert.Less(t, row.Slack(values), 0.0)

	values[extra] = 0
	assert.GreaterOrEqual(t, row.Slack(values), 0.0)
}

func TestBuild_StaplesBanExtrasOnly(t *testing.T) {
	foods := append(testutil.SlotsCatalogFoods(), testutil.NewTestFood("pasta", testutil.WithMacros(75, 12, 1.5)))
	book := domain.NewRecipeBook(map[domain.Slot][]domain.Recipe{
		domain.SlotBreakfast: {{Name: "pasta dulce", Ingredients: map[string]domain.IngredientBounds{"pasta": {Min: 50, Max: 100}}}},
		domain.SlotLunch:     {{Ingredients: map[string]domain.IngredientBounds{"prot_comida": {Max: 100}}}},
		domain.SlotSnack:     {{Ingredients: map[string]domain.IngredientBounds{"fruta_c": {Max: 100}}}},
		domain.SlotDinner:    {{Ingredients: map[string]domain.IngredientBounds{"carb_cena": {Max: 100}}}},
	})
	plan, err := NewBuilder(domain.NewCatalog(foods), book, nil, nil).Build(domain.VariantRecipes)
	require.NoError(t, err)

	names := constraintNames(plan.Model)
	staple := names["staple[pasta,desayuno,1]"]
	require.Len(t, staple.Expr.Terms, 1)
	assert.Equal(t, plan.Vars.Quantity.at(FoodKey{Food: "pasta", Slot: domain.SlotBreakfast, Day: 1}), staple.Expr.Terms[0].Var)
	assert.NotContains(t, names, "ingredient_allowed[pasta,desayuno,0,1]")
}
