package solver

import (
	"fmt"
	"math"

	"github.com/alexanderramin/climbdiet/internal/milp"
)

const (
	fixTol      = 1e-9
	feasTol     = 1e-7
	maxPresolve = 50
)

type relaxStatus int

const (
	relaxOptimal relaxStatus = iota
	relaxInfeasible
	relaxUnbounded
	relaxNumerical
	relaxTooLarge
)

// row is a constraint with its constant folded into the right-hand side.
type row struct {
	terms []milp.Term
	sense milp.Sense
	rhs   float64
}

// problem is the solver-side view of a model: normalised rows and objective,
// plus variable kinds for integrality handling.
type problem struct {
	n        int
	rows     []row
	obj      []float64
	objConst float64
	binary   []bool
	lower    []float64
	upper    []float64
}

func newProblem(m *milp.Model) (*problem, error) {
	p := &problem{
		n:      m.NumVars(),
		obj:    make([]float64, m.NumVars()),
		binary: make([]bool, m.NumVars()),
		lower:  make([]float64, m.NumVars()),
		upper:  make([]float64, m.NumVars()),
	}
	for i, v := range m.Vars() {
		if math.IsInf(v.Lower, -1) || math.IsNaN(v.Lower) || math.IsNaN(v.Upper) {
			return nil, fmt.Errorf("%w: variable %s needs a finite lower bound", ErrUnsupported, v.Name)
		}
		p.binary[i] = v.Kind == milp.Binary
		p.lower[i] = v.Lower
		p.upper[i] = v.Upper
	}
	obj := m.Objective().Normalized()
	p.objConst = obj.Constant
	for _, t := range obj.Terms {
		p.obj[t.Var] = t.Coef
	}
	for _, c := range m.Constraints() {
		e := c.Expr.Normalized()
		p.rows = append(p.rows, row{terms: e.Terms, sense: c.Sense, rhs: c.RHS - e.Constant})
	}
	return p, nil
}

type relaxation struct {
	status relaxStatus
	x      []float64
	obj    float64
}

// tighten applies single-free-variable rows as bounds until nothing changes.
// It returns false when the bounds become inconsistent.
func (p *problem) tighten(l, u []float64) bool {
	for pass := 0; pass < maxPresolve; pass++ {
		changed := false
		for _, r := range p.rows {
			free := -1
			nfree := 0
			resid := r.rhs
			for _, t := range r.terms {
				if u[t.Var]-l[t.Var] <= fixTol {
					resid -= t.Coef * l[t.Var]
					continue
				}
				nfree++
				free = int(t.Var)
			}
			switch nfree {
			case 0:
				if !constantRowHolds(r.sense, resid) {
					return false
				}
			case 1:
				var a float64
				for _, t := range r.terms {
					if int(t.Var) == free {
						a = t.Coef
					}
				}
				if p.bound(free, a, r.sense, resid, l, u) {
					changed = true
				}
				if l[free] > u[free]+feasTol {
					return false
				}
			}
		}
		if !changed {
			return true
		}
	}
	return true
}

// bound tightens variable j from a·x_j sense r. Reports whether a bound moved.
func (p *problem) bound(j int, a float64, sense milp.Sense, r float64, l, u []float64) bool {
	if a == 0 {
		return false
	}
	v := r / a
	upperFrom := (sense == milp.LE && a > 0) || (sense == milp.GE && a < 0) || sense == milp.EQ
	lowerFrom := (sense == milp.GE && a > 0) || (sense == milp.LE && a < 0) || sense == milp.EQ

	moved := false
	if upperFrom {
		nu := v
		if p.binary[j] {
			nu = math.Floor(v + feasTol)
		}
		if nu < u[j]-fixTol {
			u[j] = nu
			moved = true
		}
	}
	if lowerFrom {
		nl := v
		if p.binary[j] {
			nl = math.Ceil(v - feasTol)
		}
		if nl > l[j]+fixTol {
			l[j] = nl
			moved = true
		}
	}
	if moved && math.Abs(u[j]-l[j]) <= feasTol {
		u[j] = l[j]
	}
	return moved
}

func constantRowHolds(sense milp.Sense, resid float64) bool {
	tol := feasTol * math.Max(1, math.Abs(resid))
	switch sense {
	case milp.LE:
		return resid >= -tol
	case milp.GE:
		return resid <= tol
	default:
		return math.Abs(resid) <= tol
	}
}

// relaxer solves the LP relaxations of one branch-and-bound run. It keeps
// the last tableau so that each node starts from its predecessor's basis.
type relaxer struct {
	p        *problem
	maxCells int
	tb       *tableau
}

// solve computes the LP relaxation under bounds lower/upper. A warm start
// that fails the accuracy check is retried on a refactored basis, then from
// scratch, before the node is given up as numerically unsolvable.
func (rx *relaxer) solve(lower, upper []float64) relaxation {
	l := append([]float64(nil), lower...)
	u := append([]float64(nil), upper...)
	if !rx.p.tighten(l, u) {
		return relaxation{status: relaxInfeasible}
	}
	for j := range l {
		if l[j] > u[j]+feasTol {
			return relaxation{status: relaxInfeasible}
		}
		if l[j] > u[j] {
			u[j] = l[j]
		}
	}
	if len(rx.p.rows) == 0 {
		return rx.p.boundsOnly(l, u)
	}

	st := relaxNumerical
	if rx.tb != nil {
		st = rx.tb.checked(rx.tb.warm(l, u))
		if st == relaxNumerical && rx.tb.refactor() {
			st = rx.tb.checked(rx.tb.warm(l, u))
		}
	}
	if st == relaxNumerical {
		tb, cold := coldStart(rx.p, l, u, rx.maxCells)
		if cold == relaxTooLarge {
			return relaxation{status: relaxTooLarge}
		}
		// Only an optimal cold start leaves artificials pinned and the basis
		// dual feasible.
		st = tb.checked(cold)
		rx.tb = nil
		if st == relaxOptimal {
			rx.tb = tb
		}
	}
	if st != relaxOptimal {
		if st == relaxNumerical {
			rx.tb = nil
		}
		return relaxation{status: st}
	}

	x := make([]float64, rx.p.n)
	obj := rx.p.objConst
	for j := range x {
		x[j] = math.Min(math.Max(rx.tb.val[j], l[j]), u[j])
		obj += rx.p.obj[j] * x[j]
	}
	return relaxation{status: relaxOptimal, x: x, obj: obj}
}

func (tb *tableau) checked(st relaxStatus) relaxStatus {
	if st == relaxOptimal && !tb.accurate() {
		return relaxNumerical
	}
	return st
}

// boundsOnly solves a problem without rows: each variable sits on the bound
// its cost prefers.
func (p *problem) boundsOnly(l, u []float64) relaxation {
	x := make([]float64, p.n)
	obj := p.objConst
	for j := range x {
		x[j] = l[j]
		if p.obj[j] < 0 {
			if math.IsInf(u[j], 1) {
				return relaxation{status: relaxUnbounded}
			}
			x[j] = u[j]
		}
		obj += p.obj[j] * x[j]
	}
	return relaxation{status: relaxOptimal, x: x, obj: obj}
}
