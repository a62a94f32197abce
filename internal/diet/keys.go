package diet

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/climbdiet/internal/domain"
	"github.com/alexanderramin/climbdiet/internal/milp"
)

// FoodKey indexes a food in one slot of one day. Days are numbered from 1.
type FoodKey struct {
	Food string
	Slot domain.Slot
	Day  int
}

// FoodDayKey indexes a food on one day.
type FoodDayKey struct {
	Food string
	Day  int
}

// CategoryKey indexes a category in one slot of one day.
type CategoryKey struct {
	Category domain.Category
	Slot     domain.Slot
	Day      int
}

// RecipeKey indexes a recipe by its position in the slot's list.
type RecipeKey struct {
	Slot   domain.Slot
	Recipe int
	Day    int
}

// IngredientKey indexes one ingredient of one recipe on one day.
type IngredientKey struct {
	Food   string
	Slot   domain.Slot
	Recipe int
	Day    int
}

// RecipeKey returns the key of the recipe the ingredient belongs to.
func (k IngredientKey) RecipeKey() RecipeKey {
	return RecipeKey{Slot: k.Slot, Recipe: k.Recipe, Day: k.Day}
}

// VarSet maps composite keys to model variables and remembers insertion
// order, so iteration is as deterministic as construction.
type VarSet[K comparable] struct {
	index map[K]milp.Var
	keys  []K
}

func newVarSet[K comparable]() *VarSet[K] {
	return &VarSet[K]{index: make(map[K]milp.Var)}
}

func (s *VarSet[K]) put(k K, v milp.Var) {
	if _, dup := s.index[k]; dup {
		panic(fmt.Sprintf("diet: duplicate variable key %v", k))
	}
	s.index[k] = v
	s.keys = append(s.keys, k)
}

// Get returns the variable stored under k.
func (s *VarSet[K]) Get(k K) (milp.Var, bool) {
	if s == nil {
		return 0, false
	}
	v, ok := s.index[k]
	return v, ok
}

// at is Get for keys the builder itself declared.
func (s *VarSet[K]) at(k K) milp.Var {
	v, ok := s.index[k]
	if !ok {
		panic(fmt.Sprintf("diet: no variable for key %v", k))
	}
	return v
}

// Keys returns the keys in insertion order.
func (s *VarSet[K]) Keys() []K {
	if s == nil {
		return nil
	}
	return s.keys
}

// Len returns the number of variables in the set.
func (s *VarSet[K]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// label builds names such as "kcal_min[desayuno,3]".
func label(rule string, parts ...any) string {
	var b strings.Builder
	b.WriteString(rule)
	b.WriteByte('[')
	for i, p := range parts {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprint(&b, p)
	}
	b.WriteByte(']')
	return b.String()
}
