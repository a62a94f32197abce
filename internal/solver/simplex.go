package solver

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/alexanderramin/climbdiet/internal/milp"
)

const (
	pivotTol   = 1e-9
	dualTol    = 1e-9
	accuracy   = 1e-6
	blandAfter = 50
)

// tableau is a bounded-variable simplex over A·x + s = b with one slack per
// row. Slack bounds carry the row sense: [0,∞) for <=, (-∞,0] for >= and
// [0,0] for =. Columns are structural, then slacks, then the artificials a
// cold start adds; artificials are pinned at zero once phase one ends.
//
// The basis outlives a single solve: branch-and-bound nodes only tighten
// variable bounds, which keeps the previous optimum dual feasible, so the
// next node restarts with the dual simplex instead of from scratch.
type tableau struct {
	p    *problem
	m    int
	ncol int
	// orig is [A I R | b]; t is B⁻¹ times orig.
	orig *mat.Dense
	t    *mat.Dense
	// d holds the reduced costs of cost under the current basis.
	d     []float64
	cost  []float64
	basis []int
	// pos is the row a column is basic in, or -1.
	pos   []int
	lo    []float64
	hi    []float64
	val   []float64
	upper []bool
	nz    []int
}

func slackBounds(s milp.Sense) (float64, float64) {
	switch s {
	case milp.LE:
		return 0, math.Inf(1)
	case milp.GE:
		return math.Inf(-1), 0
	default:
		return 0, 0
	}
}

func tolFor(bound float64) float64 {
	return feasTol * math.Max(1, math.Abs(bound))
}

// coldStart builds a tableau on the slack basis, adding an artificial column
// for every row whose slack cannot absorb the residual at the lower bounds.
// That basis is diagonal, so it is never singular. Phase one drives the
// artificials out; phase two optimises the objective.
func coldStart(p *problem, l, u []float64, maxCells int) (*tableau, relaxStatus) {
	m, n := len(p.rows), p.n
	resid := make([]float64, m)
	parked := make([]float64, m)
	sign := make([]float64, m)
	nart := 0
	scale := 1.0
	for i, r := range p.rows {
		res := r.rhs
		for _, t := range r.terms {
			res -= t.Coef * l[t.Var]
		}
		sl, su := slackBounds(r.sense)
		sv := math.Min(math.Max(res, sl), su)
		resid[i], parked[i] = res, sv
		if math.Abs(res-sv) > tolFor(r.rhs) {
			sign[i] = 1
			if res < sv {
				sign[i] = -1
			}
			nart++
		}
		scale = math.Max(scale, math.Abs(r.rhs))
	}

	ncol := n + m + nart
	if maxCells > 0 && m*(ncol+1) > maxCells {
		return nil, relaxTooLarge
	}

	tb := &tableau{
		p:     p,
		m:     m,
		ncol:  ncol,
		orig:  mat.NewDense(m, ncol+1, nil),
		d:     make([]float64, ncol),
		cost:  make([]float64, ncol),
		basis: make([]int, m),
		pos:   make([]int, ncol),
		lo:    make([]float64, ncol),
		hi:    make([]float64, ncol),
		val:   make([]float64, ncol),
		upper: make([]bool, ncol),
	}
	for j := range tb.pos {
		tb.pos[j] = -1
	}
	for j := 0; j < n; j++ {
		tb.lo[j], tb.hi[j], tb.val[j] = l[j], u[j], l[j]
	}

	art := n + m
	for i, r := range p.rows {
		row := tb.orig.RawRowView(i)
		for _, t := range r.terms {
			row[t.Var] += t.Coef
		}
		s := n + i
		row[s] = 1
		row[ncol] = r.rhs
		tb.lo[s], tb.hi[s] = slackBounds(r.sense)

		if sign[i] == 0 {
			tb.basis[i] = s
			tb.val[s] = resid[i]
			continue
		}
		row[art] = sign[i]
		tb.val[s] = parked[i]
		tb.upper[s] = parked[i] == tb.hi[s] && tb.lo[s] < tb.hi[s]
		tb.lo[art], tb.hi[art] = 0, math.Inf(1)
		tb.val[art] = math.Abs(resid[i] - parked[i])
		tb.basis[i] = art
		art++
	}
	for i, k := range tb.basis {
		tb.pos[k] = i
	}

	// B is diagonal with entries 1 or sign, so B⁻¹·orig only flips rows.
	tb.t = mat.DenseCopyOf(tb.orig)
	for i := range p.rows {
		if sign[i] < 0 {
			floats.Scale(-1, tb.t.RawRowView(i))
		}
	}

	if nart > 0 {
		for k := n + m; k < ncol; k++ {
			tb.cost[k] = 1
		}
		tb.price()
		if st := tb.primal(); st != relaxOptimal {
			return tb, relaxNumerical
		}
		var infeasibility float64
		for k := n + m; k < ncol; k++ {
			infeasibility += tb.val[k]
		}
		if infeasibility > 1e-7*scale {
			return tb, relaxInfeasible
		}
		for k := n + m; k < ncol; k++ {
			tb.cost[k] = 0
			tb.hi[k] = 0
			if tb.pos[k] < 0 {
				tb.val[k] = 0
				tb.upper[k] = false
			}
		}
	}

	copy(tb.cost, p.obj)
	tb.price()
	return tb, tb.primal()
}

// warm re-optimises under new structural bounds from the current basis.
func (tb *tableau) warm(l, u []float64) relaxStatus {
	for j := 0; j < tb.p.n; j++ {
		tb.lo[j], tb.hi[j] = l[j], u[j]
	}
	tb.price()
	for j := 0; j < tb.p.n; j++ {
		if tb.pos[j] >= 0 {
			continue
		}
		// Park every nonbasic column on the bound its reduced cost prefers.
		switch {
		case tb.hi[j]-tb.lo[j] <= fixTol:
			tb.upper[j] = false
		case tb.d[j] < -dualTol:
			if math.IsInf(tb.hi[j], 1) {
				return relaxNumerical
			}
			tb.upper[j] = true
		case tb.d[j] > dualTol, math.IsInf(tb.hi[j], 1):
			tb.upper[j] = false
		}
		tb.val[j] = tb.lo[j]
		if tb.upper[j] {
			tb.val[j] = tb.hi[j]
		}
	}
	tb.refresh()
	if st := tb.dual(); st != relaxOptimal {
		return st
	}
	return tb.primal()
}

// refactor rebuilds t from the original columns of the current basis with
// an LU factorisation, discarding the error pivots have accumulated.
func (tb *tableau) refactor() bool {
	b := mat.NewDense(tb.m, tb.m, nil)
	col := make([]float64, tb.m)
	for i, k := range tb.basis {
		mat.Col(col, k, tb.orig)
		b.SetCol(i, col)
	}
	var lu mat.LU
	lu.Factorize(b)
	if err := lu.SolveTo(tb.t, false, tb.orig); err != nil {
		return false
	}
	for i, k := range tb.basis {
		for r := 0; r < tb.m; r++ {
			v := 0.0
			if r == i {
				v = 1
			}
			tb.t.Set(r, k, v)
		}
	}
	tb.price()
	tb.refresh()
	return true
}

// price recomputes the reduced costs d = cost - cost_B·t.
func (tb *tableau) price() {
	copy(tb.d, tb.cost)
	for i, k := range tb.basis {
		if c := tb.cost[k]; c != 0 {
			floats.AddScaled(tb.d, -c, tb.t.RawRowView(i)[:tb.ncol])
		}
	}
	for _, k := range tb.basis {
		tb.d[k] = 0
	}
}

// refresh recomputes the basic values from the nonbasic ones.
func (tb *tableau) refresh() {
	tb.nz = tb.nz[:0]
	for j := 0; j < tb.ncol; j++ {
		if tb.pos[j] < 0 && tb.val[j] != 0 {
			tb.nz = append(tb.nz, j)
		}
	}
	for i, k := range tb.basis {
		row := tb.t.RawRowView(i)
		v := row[tb.ncol]
		for _, j := range tb.nz {
			v -= row[j] * tb.val[j]
		}
		tb.val[k] = v
	}
}

func (tb *tableau) pivot(r, j int) {
	rowR := tb.t.RawRowView(r)
	floats.Scale(1/rowR[j], rowR)
	rowR[j] = 1
	for i := 0; i < tb.m; i++ {
		if i == r {
			continue
		}
		row := tb.t.RawRowView(i)
		if f := row[j]; f != 0 {
			floats.AddScaled(row, -f, rowR)
			row[j] = 0
		}
	}
	if f := tb.d[j]; f != 0 {
		floats.AddScaled(tb.d, -f, rowR[:tb.ncol])
	}
	tb.d[j] = 0

	leaving := tb.basis[r]
	tb.pos[leaving] = -1
	tb.basis[r] = j
	tb.pos[j] = r
}

// park makes k nonbasic at one of its bounds.
func (tb *tableau) park(k int, toUpper bool) {
	tb.upper[k] = toUpper && tb.lo[k] < tb.hi[k]
	tb.val[k] = tb.lo[k]
	if toUpper {
		tb.val[k] = tb.hi[k]
	}
}

func (tb *tableau) movable(j int) bool {
	return tb.pos[j] < 0 && tb.hi[j]-tb.lo[j] > fixTol
}

// direction is +1 for a nonbasic column that can only rise, -1 otherwise.
func (tb *tableau) direction(j int) float64 {
	if tb.upper[j] {
		return -1
	}
	return 1
}

func (tb *tableau) maxIter() int {
	return 20*(tb.m+tb.ncol) + 100
}

// primal runs the primal simplex from a primal feasible basis. Pricing is
// Dantzig's rule, falling back to Bland's after a run of degenerate steps.
func (tb *tableau) primal() relaxStatus {
	degenerate := 0
	for iter := 0; iter < tb.maxIter(); iter++ {
		j := tb.entering(degenerate >= blandAfter)
		if j < 0 {
			return relaxOptimal
		}
		dir := tb.direction(j)
		r, step, flip := tb.ratio(j, dir)
		if r < 0 && !flip {
			return relaxUnbounded
		}
		if step <= 1e-12 {
			degenerate++
		} else {
			degenerate = 0
		}
		if flip {
			tb.park(j, !tb.upper[j])
		} else {
			leaving := tb.basis[r]
			rising := dir*tb.t.At(r, j) < 0
			tb.pivot(r, j)
			tb.park(leaving, rising)
		}
		tb.refresh()
	}
	return relaxNumerical
}

func (tb *tableau) entering(bland bool) int {
	best, score := -1, 0.0
	for j := 0; j < tb.ncol; j++ {
		if !tb.movable(j) {
			continue
		}
		dj := tb.d[j]
		if (!tb.upper[j] && dj < -dualTol) || (tb.upper[j] && dj > dualTol) {
			if bland {
				return j
			}
			if a := math.Abs(dj); a > score {
				best, score = j, a
			}
		}
	}
	return best
}

// ratio is a two-pass Harris ratio test for moving column j in direction
// dir. It reports the leaving row, the step, and whether j instead just
// moves to its opposite bound.
func (tb *tableau) ratio(j int, dir float64) (int, float64, bool) {
	rng := tb.hi[j] - tb.lo[j]
	limit := rng
	for i, k := range tb.basis {
		a := -dir * tb.t.At(i, j)
		switch {
		case a < -pivotTol && !math.IsInf(tb.lo[k], -1):
			limit = math.Min(limit, (tb.val[k]-tb.lo[k]+tolFor(tb.lo[k]))/-a)
		case a > pivotTol && !math.IsInf(tb.hi[k], 1):
			limit = math.Min(limit, (tb.hi[k]-tb.val[k]+tolFor(tb.hi[k]))/a)
		}
	}
	if math.IsInf(limit, 1) {
		return -1, 0, false
	}
	if rng <= limit {
		return -1, rng, true
	}

	r, best, step := -1, 0.0, 0.0
	for i, k := range tb.basis {
		a := -dir * tb.t.At(i, j)
		var s float64
		switch {
		case a < -pivotTol && !math.IsInf(tb.lo[k], -1):
			s = (tb.val[k] - tb.lo[k]) / -a
		case a > pivotTol && !math.IsInf(tb.hi[k], 1):
			s = (tb.hi[k] - tb.val[k]) / a
		default:
			continue
		}
		if s <= limit && math.Abs(a) > best {
			r, best, step = i, math.Abs(a), math.Max(s, 0)
		}
	}
	return r, step, false
}

// dual runs the dual simplex from a dual feasible basis until every basic
// column is back inside its bounds.
func (tb *tableau) dual() relaxStatus {
	for iter := 0; iter < tb.maxIter(); iter++ {
		r, below := tb.leaving()
		if r < 0 {
			return relaxOptimal
		}
		j := tb.dualEntering(r, below)
		if j < 0 {
			return relaxInfeasible
		}
		k := tb.basis[r]
		tb.pivot(r, j)
		tb.park(k, !below)
		tb.refresh()
	}
	return relaxNumerical
}

// leaving picks the basic column furthest outside its bounds.
func (tb *tableau) leaving() (int, bool) {
	r, below, worst := -1, false, 0.0
	for i, k := range tb.basis {
		v := tb.val[k]
		if gap := tb.lo[k] - v; gap > tolFor(tb.lo[k]) && gap > worst {
			r, below, worst = i, true, gap
		}
		if gap := v - tb.hi[k]; gap > tolFor(tb.hi[k]) && gap > worst {
			r, below, worst = i, false, gap
		}
	}
	return r, below
}

// dualEntering is the Harris dual ratio test on row r. When no column can
// move the leaving variable back toward its bounds, the node is infeasible.
func (tb *tableau) dualEntering(r int, below bool) int {
	row := tb.t.RawRowView(r)
	want := 1.0
	if !below {
		want = -1
	}
	// x_B(r) moves by -row[j]·dir per unit of column j.
	eligible := func(j int) bool {
		return tb.movable(j) && -row[j]*tb.direction(j)*want > pivotTol
	}
	reduced := func(j int) float64 {
		return math.Max(0, tb.d[j]*tb.direction(j))
	}

	limit := math.Inf(1)
	for j := 0; j < tb.ncol; j++ {
		if eligible(j) {
			limit = math.Min(limit, (reduced(j)+dualTol)/math.Abs(row[j]))
		}
	}
	if math.IsInf(limit, 1) {
		return -1
	}
	best, bestA := -1, 0.0
	for j := 0; j < tb.ncol; j++ {
		if !eligible(j) {
			continue
		}
		a := math.Abs(row[j])
		if reduced(j)/a <= limit && a > bestA {
			best, bestA = j, a
		}
	}
	return best
}

// accurate checks the current point against the original rows and bounds.
func (tb *tableau) accurate() bool {
	n := tb.p.n
	for i, r := range tb.p.rows {
		lhs := tb.val[n+i]
		for _, t := range r.terms {
			lhs += t.Coef * tb.val[t.Var]
		}
		if math.Abs(lhs-r.rhs) > accuracy*math.Max(1, math.Abs(r.rhs)) {
			return false
		}
	}
	for j := 0; j < tb.ncol; j++ {
		v := tb.val[j]
		if v < tb.lo[j]-accuracy*math.Max(1, math.Abs(tb.lo[j])) ||
			v > tb.hi[j]+accuracy*math.Max(1, math.Abs(tb.hi[j])) {
			return false
		}
	}
	return true
}
