package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/climbdiet/internal/domain"
)

func validRecord(category string) FoodRecord {
	return FoodRecord{
		Price:    Num(0.5),
		Energy:   Num(100),
		Carbs:    Num(10),
		Protein:  Num(5),
		Fat:      Num(2),
		Category: category,
		MaxGrams: Num(200),
	}
}

func errStrings(errs []error) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}

func TestValidateFoodSchema_Valid(t *testing.T) {
	schema := FoodSchema{
		"manzana":  validRecord("Frutas"),
		"lentejas": validRecord("Legumbres"),
	}
	assert.Empty(t, ValidateFoodSchema(schema))
}

func TestValidateFoodSchema_Empty(t *testing.T) {
	errs := ValidateFoodSchema(FoodSchema{})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "catalog is empty")
}

func TestValidateFoodSchema_CollectsAllErrors(t *testing.T) {
	badCategory := validRecord("Golosinas")
	badNumber := validRecord("Frutas")
	badNumber.Energy = NumText("mucho")
	missing := validRecord("Frutas")
	missing.Fat = Numeric{}
	negative := validRecord("Frutas")
	negative.Price = Num(-1)
	zeroMax := validRecord("Frutas")
	zeroMax.MaxGrams = Num(0)

	errs := ValidateFoodSchema(FoodSchema{
		"a": badCategory,
		"b": badNumber,
		"c": missing,
		"d": negative,
		"e": zeroMax,
	})
	msgs := errStrings(errs)
	require.Len(t, msgs, 5)
	assert.Equal(t, `foods["a"].Categoría: unknown category "Golosinas"`, msgs[0])
	assert.Equal(t, `foods["b"].Energía (Kcal): invalid number "mucho"`, msgs[1])
	assert.Equal(t, `foods["c"].Lípidos totales (g): is required`, msgs[2])
	assert.Contains(t, msgs[3], `foods["d"].Precio (€/100g): must be >= 0`)
	assert.Contains(t, msgs[4], `foods["e"].Máximo (g/día): must be > 0`)
}

func TestValidateFoodSchema_RejectsNonFiniteNumbers(t *testing.T) {
	nanPrice := validRecord("Frutas")
	nanPrice.Price = NumText("NaN")
	infMax := validRecord("Frutas")
	infMax.MaxGrams = NumText("Inf")

	errs := ValidateFoodSchema(FoodSchema{"a": nanPrice, "b": infMax})
	msgs := errStrings(errs)
	require.Len(t, msgs, 2)
	assert.Equal(t, `foods["a"].Precio (€/100g): invalid number "NaN"`, msgs[0])
	assert.Equal(t, `foods["b"].Máximo (g/día): invalid number "Inf"`, msgs[1])
}

func TestValidateFoodSchema_MissingCategory(t *testing.T) {
	errs := ValidateFoodSchema(FoodSchema{"x": validRecord("")})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "Categoría: is required")
}

func recipe(name string, ingredients map[string][2]float64) RecipeRecord {
	r := RecipeRecord{Name: name, Ingredients: map[string][]Numeric{}}
	for food, b := range ingredients {
		r.Ingredients[food] = []Numeric{Num(b[0]), Num(b[1])}
	}
	return r
}

func fullRecipeSchema() RecipeSchema {
	return RecipeSchema{
		"desayuno": {recipe("Tostada", map[string][2]float64{"pan": {50, 100}})},
		"comida":   {recipe("Arroz", map[string][2]float64{"arroz": {80, 120}})},
		"merienda": {recipe("", map[string][2]float64{"yogur": {125, 125}})},
		"cena":     {recipe("Ensalada", map[string][2]float64{"lechuga": {50, 150}})},
	}
}

func recipeFoods() *domain.Catalog {
	return domain.NewCatalog([]domain.Food{
		{Name: "pan", Category: domain.CategoryCereals, MaxGrams: 200},
		{Name: "arroz", Category: domain.CategoryCereals, MaxGrams: 150},
		{Name: "yogur", Category: domain.CategoryDairy, MaxGrams: 250},
		{Name: "lechuga", Category: domain.CategoryVegetables, MaxGrams: 300},
	})
}

func TestValidateRecipeSchema_Valid(t *testing.T) {
	assert.Empty(t, ValidateRecipeSchema(fullRecipeSchema(), recipeFoods()))
}

func TestValidateRecipeSchema_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(RecipeSchema)
		want   string
	}{
		{
			name:   "unknown slot",
			mutate: func(s RecipeSchema) { s["almuerzo"] = s["comida"] },
			want:   `recipes.almuerzo: unknown slot "almuerzo"`,
		},
		{
			name:   "missing slot",
			mutate: func(s RecipeSchema) { delete(s, "cena") },
			want:   "recipes.cena: at least one recipe is required",
		},
		{
			name: "min above max",
			mutate: func(s RecipeSchema) {
				s["comida"] = []RecipeRecord{recipe("", map[string][2]float64{"arroz": {150, 100}})}
			},
			want: `recipes.comida[0].ingredientes["arroz"].max: must be >= Min`,
		},
		{
			name: "wrong arity",
			mutate: func(s RecipeSchema) {
				s["comida"] = []RecipeRecord{{Ingredients: map[string][]Numeric{"arroz": {Num(1)}}}}
			},
			want: `recipes.comida[0].ingredientes["arroz"]: expected [min, max], got 1 values`,
		},
		{
			name: "unknown food",
			mutate: func(s RecipeSchema) {
				s["cena"] = []RecipeRecord{recipe("", map[string][2]float64{"tofu": {50, 100}})}
			},
			want: `recipes.cena[0].ingredientes["tofu"]: food not in nutrition catalog`,
		},
		{
			name: "no ingredients",
			mutate: func(s RecipeSchema) {
				s["cena"] = append(s["cena"], RecipeRecord{Name: "vacía"})
			},
			want: "recipes.cena[1].ingredientes: at least one ingredient is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema := fullRecipeSchema()
			tt.mutate(schema)
			msgs := errStrings(ValidateRecipeSchema(schema, recipeFoods()))
			require.NotEmpty(t, msgs)
			found := false
			for _, m := range msgs {
				if strings.HasPrefix(m, tt.want) {
					found = true
				}
			}
			assert.True(t, found, "expected %q in %v", tt.want, msgs)
		})
	}
}

func TestValidateRecipeSchema_NilCatalogSkipsExistence(t *testing.T) {
	schema := fullRecipeSchema()
	schema["cena"] = []RecipeRecord{recipe("", map[string][2]float64{"tofu": {50, 100}})}
	assert.Empty(t, ValidateRecipeSchema(schema, nil))
}
