package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSlot(t *testing.T) {
	tests := []struct {
		in      string
		want    Slot
		wantErr bool
	}{
		{"desayuno", SlotBreakfast, false},
		{" Comida ", SlotLunch, false},
		{"MERIENDA", SlotSnack, false},
		{"cena", SlotDinner, false},
		{"día", 0, true},
		{"almuerzo", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSlot(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookupSlot(t *testing.T) {
	for _, s := range append([]Slot{SlotDay}, MealSlots...) {
		got, err := LookupSlot(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := LookupSlot("brunch")
	assert.Error(t, err)
}

func TestSlotTitle(t *testing.T) {
	assert.Equal(t, "Desayuno", SlotBreakfast.Title())
	assert.Equal(t, "Día", SlotDay.Title())
	assert.Equal(t, "slot_9", Slot(9).String())
}

func TestParseVariant(t *testing.T) {
	for _, v := range Variants {
		got, err := ParseVariant(string(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.NotEqual(t, "unknown variant", v.Description())
	}
	_, err := ParseVariant("monthly")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "monthly")
	assert.True(t, VariantRecipes.NeedsRecipes())
	assert.False(t, VariantWeekly.NeedsRecipes())
}

func TestCategorySlugs(t *testing.T) {
	all := AllCategories()
	require.Len(t, all, 15)
	for _, c := range all {
		assert.True(t, c.Valid())
		bySlug, err := ParseCategorySlug(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, bySlug)
		byLabel, err := ParseCategoryLabel(c.Label())
		require.NoError(t, err)
		assert.Equal(t, c, byLabel)
	}
	assert.False(t, Category(0).Valid())
	_, err := ParseCategoryLabel("frutas")
	assert.Error(t, err, "labels match exactly")
}

func TestRecipeBook(t *testing.T) {
	book := NewRecipeBook(map[Slot][]Recipe{
		SlotLunch: {
			{Name: "lentejas", Ingredients: map[string]IngredientBounds{"lenteja": {Max: 100}, "arroz": {Max: 50}}},
			{Ingredients: map[string]IngredientBounds{"pollo": {Min: 100, Max: 200}}},
		},
	})
	r, ok := book.Recipe(SlotLunch, 1)
	require.True(t, ok)
	assert.Equal(t, 1, r.Index)
	assert.Equal(t, SlotLunch, r.Slot)
	assert.Equal(t, DefaultRecipeName, r.DisplayName())
	assert.True(t, r.Uses("pollo"))

	first, _ := book.Recipe(SlotLunch, 0)
	assert.Equal(t, []string{"arroz", "lenteja"}, first.IngredientNames())

	_, ok = book.Recipe(SlotLunch, 2)
	assert.False(t, ok)
	assert.Empty(t, book.Recipes(SlotDinner))

	var none *RecipeBook
	assert.Nil(t, none.Recipes(SlotLunch))
}

func TestRun(t *testing.T) {
	r := &Run{
		ID: "5f0c2a9e-0d1b-4bd7-9a63-7c1a0e1d2f3a",
		Quantities: []RunQuantity{
			{Day: 1, Slot: SlotLunch, Food: "arroz", Grams: 80},
			{Day: 1, Slot: SlotLunch, Recipe: "paella", Food: "gamba", Grams: 40.5},
		},
	}
	assert.Equal(t, "5f0c2a9e", r.ShortID())
	assert.InDelta(t, 120.5, r.TotalGrams(), 1e-12)
	assert.Equal(t, "abc", (&Run{ID: "abc"}).ShortID())
}
