package milp

import (
	"fmt"
	"math"
)

// Violation is one failed check of a candidate assignment.
type Violation struct {
	// Constraint is the constraint index, or -1 for a variable check.
	Constraint int
	Name       string
	Detail     string
	Amount     float64
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s (by %g)", v.Name, v.Detail, v.Amount)
}

// Evaluate returns the left-hand side of every constraint at values.
func (m *Model) Evaluate(values []float64) []float64 {
	out := make([]float64, len(m.constraints))
	for i, c := range m.constraints {
		out[i] = c.Expr.Value(values)
	}
	return out
}

// ObjectiveValue evaluates the objective at values.
func (m *Model) ObjectiveValue(values []float64) float64 {
	return m.objective.Value(values)
}

// Violations checks bounds, integrality and every constraint at values with
// absolute tolerance tol. An empty result means values is feasible.
func (m *Model) Violations(values []float64, tol float64) []Violation {
	var out []Violation
	if len(values) != len(m.vars) {
		return []Violation{{
			Constraint: -1,
			Name:       m.Name,
			Detail:     fmt.Sprintf("expected %d values, got %d", len(m.vars), len(values)),
			Amount:     math.Abs(float64(len(m.vars) - len(values))),
		}}
	}
	for i, v := range m.vars {
		x := values[i]
		if x < v.Lower-tol {
			out = append(out, Violation{-1, v.Name, fmt.Sprintf("below lower bound %g", v.Lower), v.Lower - x})
		}
		if x > v.Upper+tol {
			out = append(out, Violation{-1, v.Name, fmt.Sprintf("above upper bound %g", v.Upper), x - v.Upper})
		}
		if v.Kind == Binary {
			if frac := math.Abs(x - math.Round(x)); frac > tol {
				out = append(out, Violation{-1, v.Name, "not integral", frac})
			}
		}
	}
	for i, c := range m.constraints {
		if s := c.Slack(values); s < -tol {
			out = append(out, Violation{
				Constraint: i,
				Name:       c.Name,
				Detail:     fmt.Sprintf("%g %s %g", c.Expr.Value(values), c.Sense, c.RHS),
				Amount:     -s,
			})
		}
	}
	return out
}
