// Package milp describes mixed-integer linear programs independently of any
// solver: variables with bounds, linear constraints and a minimisation
// objective.
package milp

import (
	"fmt"
	"math"
)

// Var identifies a variable by its position in the model.
type Var int

// Kind is the domain of a variable.
type Kind int

const (
	Continuous Kind = iota
	Binary
)

func (k Kind) String() string {
	if k == Binary {
		return "binary"
	}
	return "continuous"
}

// Sense is the comparison of a constraint.
type Sense int

const (
	LE Sense = iota
	GE
	EQ
)

func (s Sense) String() string {
	switch s {
	case LE:
		return "<="
	case GE:
		return ">="
	default:
		return "="
	}
}

// VarInfo describes one variable.
type VarInfo struct {
	Name  string
	Kind  Kind
	Lower float64
	Upper float64
}

// Constraint is Expr Sense RHS. The expression's constant is part of the
// left-hand side.
type Constraint struct {
	Name  string
	Expr  Expr
	Sense Sense
	RHS   float64
}

// Slack returns how far the constraint is from being violated at values;
// negative means violated. Equalities return minus the absolute residual.
func (c Constraint) Slack(values []float64) float64 {
	lhs := c.Expr.Value(values)
	switch c.Sense {
	case LE:
		return c.RHS - lhs
	case GE:
		return lhs - c.RHS
	default:
		return -math.Abs(lhs - c.RHS)
	}
}

// Model is a minimisation MILP under construction.
type Model struct {
	Name        string
	vars        []VarInfo
	constraints []Constraint
	objective   Expr
}

// NewModel returns an empty model.
func NewModel(name string) *Model {
	return &Model{Name: name}
}

// AddVar declares a variable and returns its handle.
func (m *Model) AddVar(name string, kind Kind, lower, upper float64) Var {
	if kind == Binary {
		lower, upper = math.Max(lower, 0), math.Min(upper, 1)
	}
	m.vars = append(m.vars, VarInfo{Name: name, Kind: kind, Lower: lower, Upper: upper})
	return Var(len(m.vars) - 1)
}

// Continuous declares a variable in [0, upper]. Pass math.Inf(1) for no
// upper bound.
func (m *Model) Continuous(name string, upper float64) Var {
	return m.AddVar(name, Continuous, 0, upper)
}

// Binary declares a 0/1 variable.
func (m *Model) Binary(name string) Var {
	return m.AddVar(name, Binary, 0, 1)
}

// Var returns the description of v.
func (m *Model) Var(v Var) VarInfo { return m.vars[v] }

// Vars returns every variable in declaration order.
func (m *Model) Vars() []VarInfo { return m.vars }

// NumVars returns the number of variables.
func (m *Model) NumVars() int { return len(m.vars) }

// SetBounds replaces the bounds of v.
func (m *Model) SetBounds(v Var, lower, upper float64) {
	m.vars[v].Lower = lower
	m.vars[v].Upper = upper
}

// Fix pins v to value.
func (m *Model) Fix(v Var, value float64) { m.SetBounds(v, value, value) }

// AddConstraint appends expr sense rhs and returns its index.
func (m *Model) AddConstraint(name string, expr Expr, sense Sense, rhs float64) int {
	m.constraints = append(m.constraints, Constraint{Name: name, Expr: expr, Sense: sense, RHS: rhs})
	return len(m.constraints) - 1
}

// Constraints returns every constraint in emission order.
func (m *Model) Constraints() []Constraint { return m.constraints }

// NumConstraints returns the number of constraints.
func (m *Model) NumConstraints() int { return len(m.constraints) }

// Minimize sets the objective.
func (m *Model) Minimize(expr Expr) { m.objective = expr }

// Objective returns the objective expression.
func (m *Model) Objective() Expr { return m.objective }

// Stats summarises model size.
type Stats struct {
	Vars        int
	Binaries    int
	Constraints int
	NonZeros    int
}

// Stats counts variables, binaries, constraints and constraint coefficients.
func (m *Model) Stats() Stats {
	s := Stats{Vars: len(m.vars), Constraints: len(m.constraints)}
	for _, v := range m.vars {
		if v.Kind == Binary {
			s.Binaries++
		}
	}
	for _, c := range m.constraints {
		s.NonZeros += c.Expr.Len()
	}
	return s
}

func (s Stats) String() string {
	return fmt.Sprintf("%d vars (%d binary), %d constraints, %d nonzeros", s.Vars, s.Binaries, s.Constraints, s.NonZeros)
}
