package testutil

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/alexanderramin/climbdiet/internal/domain"
)

// Food options
type FoodOption func(*domain.Food)

func WithPrice(p float64) FoodOption {
	return func(f *domain.Food) {
		f.Price = p
	}
}

// WithMacros sets grams per 100 g and derives energy at 4/4/9 kcal per gram.
func WithMacros(carbs, protein, fat float64) FoodOption {
	return func(f *domain.Food) {
		f.Carbs = carbs
		f.Protein = protein
		f.Fat = fat
		f.Energy = 4*carbs + 4*protein + 9*fat
	}
}

func WithCategory(c domain.Category) FoodOption {
	return func(f *domain.Food) {
		f.Category = c
	}
}

func WithMaxGrams(g float64) FoodOption {
	return func(f *domain.Food) {
		f.MaxGrams = g
	}
}

func AsDessert() FoodOption {
	return func(f *domain.Food) {
		f.Dessert = true
	}
}

func NewTestFood(name string, opts ...FoodOption) domain.Food {
	f := domain.Food{
		Name:     name,
		Price:    1,
		Category: domain.CategoryCereals,
		MaxGrams: 500,
	}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// MacroCatalog has one pure food per macronutrient plus an expensive mixed
// food that no optimal daily diet uses. At the default policy the cheapest
// day is 290 g harina, 217.5 g clara and 96.67 g aceite for 8.2167 €.
func MacroCatalog() *domain.Catalog {
	return domain.NewCatalog([]domain.Food{
		NewTestFood("harina", WithMacros(100, 0, 0), WithPrice(1)),
		NewTestFood("clara", WithMacros(0, 100, 0), WithPrice(2), WithCategory(domain.CategoryEggs)),
		NewTestFood("aceite", WithMacros(0, 0, 100), WithPrice(1), WithCategory(domain.CategoryFats)),
		NewTestFood("turrón", WithMacros(50, 10, 30), WithPrice(50), WithCategory(domain.CategorySugars), AsDessert()),
	})
}

// SlotFoods returns the names of the pure carb, protein and fat foods that
// SlotsCatalog reserves for slot.
func SlotFoods(slot domain.Slot) (carb, protein, fat string) {
	return "carb_" + slot.String(), "prot_" + slot.String(), "fat_" + slot.String()
}

// SlotsCatalog has a pure food per macro for each meal slot, three
// zero-calorie fruits and two zero-calorie vegetables. It has no beverages
// and no staples.
func SlotsCatalog() *domain.Catalog {
	return domain.NewCatalog(SlotsCatalogFoods())
}

// SlotsCatalogFoods returns the foods of SlotsCatalog for tests that extend it.
func SlotsCatalogFoods() []domain.Food {
	var foods []domain.Food
	for _, slot := range domain.MealSlots {
		carb, protein, fat := SlotFoods(slot)
		foods = append(foods,
			NewTestFood(carb, WithMacros(25, 0, 0), WithMaxGrams(1000)),
			NewTestFood(protein, WithMacros(0, 25, 0), WithMaxGrams(1000), WithCategory(domain.CategoryEggs)),
			NewTestFood(fat, WithMacros(0, 0, 10), WithMaxGrams(1000), WithCategory(domain.CategoryFats)),
		)
	}
	for _, name := range []string{"fruta_a", "fruta_b", "fruta_c"} {
		foods = append(foods, NewTestFood(name, WithCategory(domain.CategoryFruit)))
	}
	for _, name := range []string{"verdura_a", "verdura_b"} {
		foods = append(foods, NewTestFood(name, WithCategory(domain.CategoryVegetables)))
	}
	return foods
}

// RandomCatalog generates n foods with plausible names and nutrient figures.
// The same seed always yields the same catalog.
func RandomCatalog(seed int64, n int) *domain.Catalog {
	faker := gofakeit.New(seed)
	cats := domain.AllCategories()
	foods := make([]domain.Food, 0, n)
	for i := 0; i < n; i++ {
		cat := cats[faker.IntRange(0, len(cats)-1)]
		var base string
		switch cat {
		case domain.CategoryFruit:
			base = faker.Fruit()
		case domain.CategoryVegetables:
			base = faker.Vegetable()
		case domain.CategorySugars:
			base = faker.Dessert()
		default:
			base = faker.Noun()
		}
		foods = append(foods, NewTestFood(fmt.Sprintf("%s %d", base, i),
			WithCategory(cat),
			WithPrice(faker.Float64Range(0.05, 3)),
			WithMacros(faker.Float64Range(0, 80), faker.Float64Range(0, 40), faker.Float64Range(0, 40)),
			WithMaxGrams(float64(faker.IntRange(50, 400))),
			func(f *domain.Food) { f.Dessert = faker.IntRange(0, 9) == 0 },
		))
	}
	return domain.NewCatalog(foods)
}

// RandomRecipeBook generates perSlot recipes for every meal slot, each with
// one to three distinct ingredients drawn from foods. Every tenth recipe is
// left unnamed.
func RandomRecipeBook(seed int64, foods *domain.Catalog, perSlot int) *domain.RecipeBook {
	faker := gofakeit.New(seed)
	names := foods.Names()
	bySlot := make(map[domain.Slot][]domain.Recipe)
	count := 0
	for _, slot := range domain.MealSlots {
		for r := 0; r < perSlot; r++ {
			rec := domain.Recipe{Ingredients: make(map[string]domain.IngredientBounds)}
			if count%10 != 9 {
				rec.Name = faker.Lunch()
			}
			count++
			k := faker.IntRange(1, 3)
			for len(rec.Ingredients) < k && len(rec.Ingredients) < len(names) {
				name := names[faker.IntRange(0, len(names)-1)]
				lo := faker.Float64Range(0, 50)
				rec.Ingredients[name] = domain.IngredientBounds{Min: lo, Max: lo + faker.Float64Range(10, 150)}
			}
			bySlot[slot] = append(bySlot[slot], rec)
		}
	}
	return domain.NewRecipeBook(bySlot)
}
