package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/climbdiet/internal/domain"
)

// Run options
type RunOption func(*domain.Run)

func WithRunID(id string) RunOption {
	return func(r *domain.Run) {
		r.ID = id
	}
}

func WithVariant(v domain.Variant) RunOption {
	return func(r *domain.Run) {
		r.Variant = v
	}
}

func WithCreatedAt(t time.Time) RunOption {
	return func(r *domain.Run) {
		r.CreatedAt = t
	}
}

// WithoutSolution marks the run infeasible and clears its cost and quantities.
func WithoutSolution(reason string) RunOption {
	return func(r *domain.Run) {
		r.Status = domain.RunInfeasible
		r.Reason = reason
		r.Cost = nil
		r.Quantities = nil
		r.Report = ""
	}
}

func WithQuantities(qs ...domain.RunQuantity) RunOption {
	return func(r *domain.Run) {
		r.Quantities = qs
	}
}

// NewTestRun returns an optimal daily run with two quantities.
func NewTestRun(opts ...RunOption) *domain.Run {
	cost := 8.22
	r := &domain.Run{
		ID:             uuid.New().String(),
		Variant:        domain.VariantDaily,
		Status:         domain.RunOptimal,
		Cost:           &cost,
		Bound:          cost,
		Nodes:          1,
		Elapsed:        12 * time.Millisecond,
		NumVars:        4,
		NumConstraints: 8,
		FoodsPath:      "data/foods.json",
		Skipped:        []string{"beverages: missing agua, leche"},
		Report:         "\nDieta óptima encontrada:\n  harina: 290.00 g\n",
		CreatedAt:      time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Quantities: []domain.RunQuantity{
			{Day: 1, Slot: domain.SlotDay, Food: "harina", Grams: 290},
			{Day: 1, Slot: domain.SlotDay, Food: "aceite", Grams: 96.67},
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}
