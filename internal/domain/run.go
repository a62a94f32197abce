package domain

import "time"

// Run is one recorded solve: what was asked, how the solver ended and, for
// optimal runs, the quantities of the diet it found.
type Run struct {
	ID             string
	Variant        Variant
	Status         RunStatus
	Reason         string
	Cost           *float64
	Bound          float64
	Gap            float64
	Nodes          int
	Elapsed        time.Duration
	NumVars        int
	NumConstraints int
	FoodsPath      string
	RecipesPath    string
	Skipped        []string
	Report         string
	CreatedAt      time.Time
	Quantities     []RunQuantity
}

// RunQuantity is one reported amount of a run. Recipe is empty for
// free-standing portions.
type RunQuantity struct {
	Day    int
	Slot   Slot
	Recipe string
	Food   string
	Grams  float64
}

// ShortID is the prefix shown in run listings.
func (r *Run) ShortID() string {
	if len(r.ID) > 8 {
		return r.ID[:8]
	}
	return r.ID
}

// TotalGrams sums every quantity of the run.
func (r *Run) TotalGrams() float64 {
	var g float64
	for _, q := range r.Quantities {
		g += q.Grams
	}
	return g
}
