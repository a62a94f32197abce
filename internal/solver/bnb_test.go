package solver

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/climbdiet/internal/milp"
)

func knapsack() (*milp.Model, []milp.Var) {
	m := milp.NewModel("knapsack")
	a, b, c := m.Binary("a"), m.Binary("b"), m.Binary("c")
	var w milp.Expr
	w.Add(a, 2).Add(b, 3).Add(c, 1)
	m.AddConstraint("weight", w, milp.LE, 5)
	var obj milp.Expr
	obj.Add(a, -5).Add(b, -4).Add(c, -3)
	m.Minimize(obj)
	return m, []milp.Var{a, b, c}
}

func TestSolve_Knapsack(t *testing.T) {
	m, vars := knapsack()
	sol, err := NewBranchAndBound().Solve(context.Background(), m)
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, -9, sol.Objective, 1e-6)
	assert.LessOrEqual(t, sol.Bound, sol.Objective+1e-9)
	assert.Greater(t, sol.Nodes, 1)

	want := []float64{1, 1, 0}
	for i, v := range vars {
		got, err := sol.Value(v)
		require.NoError(t, err)
		assert.InDelta(t, want[i], got, 1e-9)
	}
	values, err := sol.Values()
	require.NoError(t, err)
	assert.Empty(t, m.Violations(values, 1e-6))
}

func TestSolve_ContinuousLP(t *testing.T) {
	// Three pure-macro foods: the cheapest feasible point sits at every
	// lower macro bound.
	m := milp.NewModel("macros")
	c := m.Continuous("carbs", math.Inf(1))
	p := m.Continuous("protein", math.Inf(1))
	f := m.Continuous("fat", math.Inf(1))

	var kcal milp.Expr
	kcal.Add(c, 4).Add(p, 4).Add(f, 9)
	m.AddConstraint("kcal_lo", kcal, milp.GE, 2900)
	m.AddConstraint("kcal_hi", kcal, milp.LE, 3100)
	for _, r := range []struct {
		v      milp.Var
		k      float64
		lo, hi float64
	}{
		{c, 4, 1160, 1240},
		{p, 4, 870, 930},
		{f, 9, 870, 930},
	} {
		var e milp.Expr
		e.Add(r.v, r.k)
		m.AddConstraint("lo", e, milp.GE, r.lo)
		m.AddConstraint("hi", e, milp.LE, r.hi)
	}
	var obj milp.Expr
	obj.Add(c, 0.01).Add(p, 0.02).Add(f, 0.01)
	m.Minimize(obj)

	sol, err := NewBranchAndBound().Solve(context.Background(), m)
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, sol.Status)
	assert.Equal(t, 1, sol.Nodes)
	assert.InDelta(t, 8.216667, sol.Objective, 1e-5)

	got, err := sol.Value(c)
	require.NoError(t, err)
	assert.InDelta(t, 290, got, 1e-6)
	got, err = sol.Value(f)
	require.NoError(t, err)
	assert.InDelta(t, 96.6667, got, 1e-3)
}

func TestSolve_Equality(t *testing.T) {
	m := milp.NewModel("eq")
	x := m.Continuous("x", 10)
	y := m.Continuous("y", 10)
	var e milp.Expr
	e.Add(x, 1).Add(y, 1)
	m.AddConstraint("sum", e, milp.EQ, 3)
	var obj milp.Expr
	obj.Add(x, 1).Add(y, 2)
	m.Minimize(obj)

	sol, err := NewBranchAndBound().Solve(context.Background(), m)
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, 3, sol.Objective, 1e-9)
}

func TestSolve_ShiftedLowerBounds(t *testing.T) {
	m := milp.NewModel("shift")
	x := m.AddVar("x", milp.Continuous, 2, 8)
	y := m.AddVar("y", milp.Continuous, 1, math.Inf(1))
	var e milp.Expr
	e.Add(x, 1).Add(y, 1)
	m.AddConstraint("cover", e, milp.GE, 6)
	var obj milp.Expr
	obj.Add(x, 3).Add(y, 1).AddConstant(10)
	m.Minimize(obj)

	sol, err := NewBranchAndBound().Solve(context.Background(), m)
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, sol.Status)
	// x at its lower bound 2, y covers the rest.
	assert.InDelta(t, 10+6+4, sol.Objective, 1e-9)
}

func TestSolve_Infeasible(t *testing.T) {
	t.Run("contradicting rows", func(t *testing.T) {
		m := milp.NewModel("inf")
		x := m.Continuous("x", math.Inf(1))
		y := m.Continuous("y", math.Inf(1))
		var e milp.Expr
		e.Add(x, 1).Add(y, 1)
		m.AddConstraint("ge", e, milp.GE, 5)
		m.AddConstraint("le", e, milp.LE, 3)
		m.Minimize(milp.Sum(x))

		sol, err := NewBranchAndBound().Solve(context.Background(), m)
		require.NoError(t, err)
		assert.Equal(t, StatusInfeasible, sol.Status)
		_, err = sol.Value(x)
		assert.True(t, errors.Is(err, ErrNoSolution))
		_, err = sol.Values()
		assert.True(t, errors.Is(err, ErrNoSolution))
	})

	t.Run("empty expression", func(t *testing.T) {
		m := milp.NewModel("empty")
		m.Continuous("x", 1)
		m.AddConstraint("need", milp.Expr{}, milp.GE, 150)
		sol, err := NewBranchAndBound().Solve(context.Background(), m)
		require.NoError(t, err)
		assert.Equal(t, StatusInfeasible, sol.Status)
		assert.Equal(t, 1, sol.Nodes)
	})

	t.Run("binary bound", func(t *testing.T) {
		m := milp.NewModel("bin")
		b := m.Binary("b")
		var e milp.Expr
		e.Add(b, 2)
		m.AddConstraint("half", e, milp.EQ, 1)
		sol, err := NewBranchAndBound().Solve(context.Background(), m)
		require.NoError(t, err)
		assert.Equal(t, StatusInfeasible, sol.Status)
	})
}

func TestSolve_Unbounded(t *testing.T) {
	m := milp.NewModel("unbounded")
	x := m.Continuous("x", math.Inf(1))
	var obj milp.Expr
	obj.Add(x, -1)
	m.Minimize(obj)

	sol, err := NewBranchAndBound().Solve(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, StatusOther, sol.Status)
	assert.Equal(t, "unbounded relaxation", sol.Reason)
	assert.False(t, sol.Optimal())
}

func TestSolve_Limits(t *testing.T) {
	t.Run("node limit", func(t *testing.T) {
		m, _ := knapsack()
		sol, err := NewBranchAndBound().Solve(context.Background(), m, WithNodeLimit(1))
		require.NoError(t, err)
		assert.Equal(t, StatusOther, sol.Status)
		assert.Equal(t, "node limit 1 reached", sol.Reason)
		assert.Equal(t, 1, sol.Nodes)
		_, ok := sol.Incumbent()
		assert.False(t, ok)
	})

	t.Run("node limit keeps incumbent", func(t *testing.T) {
		// Root b=2/3, then b=1 gives a=1/2, then a=b=1 is integral at -9.
		// The open b=0 branch still carries the root bound -32/3.
		m, _ := knapsack()
		sol, err := NewBranchAndBound().Solve(context.Background(), m, WithNodeLimit(3))
		require.NoError(t, err)
		assert.Equal(t, StatusOther, sol.Status)
		assert.Equal(t, "node limit 3 reached", sol.Reason)

		x, ok := sol.Incumbent()
		require.True(t, ok)
		assert.Equal(t, []float64{1, 1, 0}, x)
		assert.InDelta(t, -9, sol.Objective, 1e-9)
		assert.InDelta(t, -32.0/3, sol.Bound, 1e-6)
		assert.InDelta(t, (32.0/3-9)/9, sol.IncumbentGap(), 1e-6)
		assert.True(t, math.IsNaN(sol.Gap()))

		_, err = sol.Values()
		assert.True(t, errors.Is(err, ErrNoSolution))
	})

	t.Run("cancelled", func(t *testing.T) {
		m, _ := knapsack()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		sol, err := NewBranchAndBound().Solve(ctx, m)
		require.NoError(t, err)
		assert.Equal(t, StatusOther, sol.Status)
		assert.Contains(t, sol.Reason, "cancelled")
		assert.Zero(t, sol.Nodes)
	})

	t.Run("time limit", func(t *testing.T) {
		m, _ := knapsack()
		sol, err := NewBranchAndBound(WithTimeLimit(time.Nanosecond)).Solve(context.Background(), m)
		require.NoError(t, err)
		// The deadline may or may not pass before the first node.
		if sol.Status == StatusOther {
			assert.Contains(t, sol.Reason, "time limit")
		}
	})

	t.Run("too large", func(t *testing.T) {
		m, _ := knapsack()
		_, err := NewBranchAndBound().Solve(context.Background(), m, WithMaxCells(1))
		assert.True(t, errors.Is(err, ErrModelTooLarge))
	})
}

func TestSolve_UnsupportedFreeVariable(t *testing.T) {
	m := milp.NewModel("free")
	m.AddVar("x", milp.Continuous, math.Inf(-1), math.Inf(1))
	_, err := NewBranchAndBound().Solve(context.Background(), m)
	assert.True(t, errors.Is(err, ErrUnsupported))
}

func TestSolve_GapStillFeasible(t *testing.T) {
	m, _ := knapsack()
	sol, err := NewBranchAndBound().Solve(context.Background(), m, WithRelGap(0.5))
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, sol.Status)
	values, err := sol.Values()
	require.NoError(t, err)
	assert.Empty(t, m.Violations(values, 1e-6))
	assert.LessOrEqual(t, sol.Objective, -9*0.5)
}

// Random binary covering problems checked against exhaustive enumeration.
func TestSolve_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 25; trial++ {
		n := 3 + rng.Intn(4)
		m := milp.NewModel("random")
		vars := make([]milp.Var, n)
		cost := make([]float64, n)
		for i := range vars {
			vars[i] = m.Binary("b")
			cost[i] = float64(1 + rng.Intn(9))
		}
		type rowSpec struct {
			w   []float64
			rhs float64
		}
		var rows []rowSpec
		for r := 0; r < 2; r++ {
			w := make([]float64, n)
			var e milp.Expr
			total := 0.0
			for i := range w {
				w[i] = float64(rng.Intn(5))
				total += w[i]
				e.Add(vars[i], w[i])
			}
			rhs := math.Floor(total / 2)
			rows = append(rows, rowSpec{w: w, rhs: rhs})
			m.AddConstraint("cover", e, milp.GE, rhs)
		}
		var obj milp.Expr
		for i, v := range vars {
			obj.Add(v, cost[i])
		}
		m.Minimize(obj)

		best := math.Inf(1)
		for mask := 0; mask < 1<<n; mask++ {
			ok := true
			for _, r := range rows {
				s := 0.0
				for i := 0; i < n; i++ {
					if mask&(1<<i) != 0 {
						s += r.w[i]
					}
				}
				if s < r.rhs {
					ok = false
				}
			}
			if !ok {
				continue
			}
			c := 0.0
			for i := 0; i < n; i++ {
				if mask&(1<<i) != 0 {
					c += cost[i]
				}
			}
			best = math.Min(best, c)
		}

		sol, err := NewBranchAndBound().Solve(context.Background(), m)
		require.NoError(t, err)
		require.Equal(t, StatusOptimal, sol.Status, "trial %d", trial)
		assert.InDelta(t, best, sol.Objective, 1e-6, "trial %d", trial)
	}
}

func TestSolution_Gap(t *testing.T) {
	s := NewOptimal(10, []float64{1})
	assert.InDelta(t, 0, s.Gap(), 1e-12)
	s.Bound = 9
	assert.InDelta(t, 0.1, s.Gap(), 1e-12)
	assert.True(t, math.IsNaN((&Solution{}).Gap()))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "optimal", StatusOptimal.String())
	assert.Equal(t, "infeasible", StatusInfeasible.String())
	assert.Equal(t, "other", StatusOther.String())
}

// Re-solving a relaxation from the previous basis gives the same answer as
// building it from scratch, across a chain of bound changes.
func TestRelaxer_WarmStartMatchesColdStart(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 25; trial++ {
		m := milp.NewModel("lp")
		n := 4 + rng.Intn(5)
		vars := make([]milp.Var, n)
		x0 := make([]float64, n)
		var obj milp.Expr
		for i := range vars {
			vars[i] = m.Continuous("x", 10)
			x0[i] = rng.Float64() * 10
			obj.Add(vars[i], rng.Float64()*4-1)
		}
		m.Minimize(obj)
		for r := 0; r < 3+rng.Intn(4); r++ {
			var e milp.Expr
			lhs := 0.0
			for i, v := range vars {
				if rng.Intn(2) == 0 {
					continue
				}
				c := float64(rng.Intn(9) - 3)
				e.Add(v, c)
				lhs += c * x0[i]
			}
			switch rng.Intn(3) {
			case 0:
				m.AddConstraint("le", e, milp.LE, lhs+rng.Float64()*5)
			case 1:
				m.AddConstraint("ge", e, milp.GE, lhs-rng.Float64()*5)
			default:
				m.AddConstraint("eq", e, milp.EQ, lhs)
			}
		}

		p, err := newProblem(m)
		require.NoError(t, err)
		rx := &relaxer{p: p}
		lower := append([]float64(nil), p.lower...)
		upper := append([]float64(nil), p.upper...)
		for step := 0; step < 8; step++ {
			j := rng.Intn(n)
			if rng.Intn(2) == 0 {
				upper[j] = lower[j] + (upper[j]-lower[j])*rng.Float64()
			} else {
				lower[j] += (upper[j] - lower[j]) * rng.Float64()
			}

			warm := rx.solve(lower, upper)
			cold := (&relaxer{p: p}).solve(lower, upper)
			require.Equal(t, cold.status, warm.status, "trial %d step %d", trial, step)
			if cold.status != relaxOptimal {
				continue
			}
			assert.InDelta(t, cold.obj, warm.obj, 1e-6*math.Max(1, math.Abs(cold.obj)), "trial %d step %d", trial, step)
			assert.Empty(t, m.Violations(warm.x, 1e-4), "trial %d step %d", trial, step)
			for k := range warm.x {
				assert.GreaterOrEqual(t, warm.x[k], lower[k]-1e-9)
				assert.LessOrEqual(t, warm.x[k], upper[k]+1e-9)
			}
		}
	}
}
