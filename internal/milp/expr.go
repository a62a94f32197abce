package milp

import "sort"

// Term is one coefficient-variable product.
type Term struct {
	Var  Var
	Coef float64
}

// Expr is a linear expression: Σ coef·var + Constant.
// The zero value is the empty expression.
type Expr struct {
	Terms    []Term
	Constant float64
}

// Sum builds an expression adding every variable with coefficient 1.
func Sum(vars ...Var) Expr {
	e := Expr{Terms: make([]Term, 0, len(vars))}
	for _, v := range vars {
		e.Terms = append(e.Terms, Term{Var: v, Coef: 1})
	}
	return e
}

// Add appends coef·v and returns e for chaining.
func (e *Expr) Add(v Var, coef float64) *Expr {
	e.Terms = append(e.Terms, Term{Var: v, Coef: coef})
	return e
}

// AddExpr appends every term of o scaled by k, and k times its constant.
func (e *Expr) AddExpr(o Expr, k float64) *Expr {
	for _, t := range o.Terms {
		e.Terms = append(e.Terms, Term{Var: t.Var, Coef: k * t.Coef})
	}
	e.Constant += k * o.Constant
	return e
}

// AddConstant adds c to the constant part.
func (e *Expr) AddConstant(c float64) *Expr {
	e.Constant += c
	return e
}

// Scaled returns a copy of e multiplied by k.
func (e Expr) Scaled(k float64) Expr {
	out := Expr{Terms: make([]Term, len(e.Terms)), Constant: k * e.Constant}
	for i, t := range e.Terms {
		out.Terms[i] = Term{Var: t.Var, Coef: k * t.Coef}
	}
	return out
}

// Len returns the number of terms, duplicates included.
func (e Expr) Len() int { return len(e.Terms) }

// Value evaluates e at values, indexed by Var.
func (e Expr) Value(values []float64) float64 {
	sum := e.Constant
	for _, t := range e.Terms {
		sum += t.Coef * values[t.Var]
	}
	return sum
}

// Normalized merges duplicate variables, drops zero coefficients and sorts
// terms by variable.
func (e Expr) Normalized() Expr {
	acc := make(map[Var]float64, len(e.Terms))
	for _, t := range e.Terms {
		acc[t.Var] += t.Coef
	}
	out := Expr{Constant: e.Constant, Terms: make([]Term, 0, len(acc))}
	for v, c := range acc {
		if c != 0 {
			out.Terms = append(out.Terms, Term{Var: v, Coef: c})
		}
	}
	sort.Slice(out.Terms, func(i, j int) bool { return out.Terms[i].Var < out.Terms[j].Var })
	return out
}
