package solver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/alexanderramin/climbdiet/internal/milp"
)

const intTol = 1e-6

// BranchAndBound is an in-process MILP solver: LP relaxations by a
// bounded-variable simplex warm-started from node to node, depth-first
// branching on the most fractional binary. The tableau is dense, so it suits
// small catalogs; large weekly models are meant to be exported in LP format
// and solved externally.
type BranchAndBound struct {
	defaults Options
}

// NewBranchAndBound returns a solver whose defaults can be overridden per call.
func NewBranchAndBound(opts ...Option) *BranchAndBound {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &BranchAndBound{defaults: o}
}

type node struct {
	lower []float64
	upper []float64
	depth int
	// bound is the parent's relaxation objective, a lower bound for the node.
	bound float64
}

// Solve runs branch-and-bound on m.
func (b *BranchAndBound) Solve(ctx context.Context, m *milp.Model, opts ...Option) (*Solution, error) {
	o := b.defaults
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	log := o.Logger.With(zap.String("model", m.Name))

	start := time.Now()
	p, err := newProblem(m)
	if err != nil {
		return nil, err
	}
	if o.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.TimeLimit)
		defer cancel()
	}

	sol := &Solution{Status: StatusOther, Objective: math.NaN(), Bound: math.Inf(-1)}
	rx := &relaxer{p: p, maxCells: o.MaxCells}
	incumbent := math.Inf(1)
	var best []float64
	rootBound := math.Inf(-1)
	// dropped is the lowest bound among nodes abandoned after a numerical
	// failure; they may still hide a better diet.
	dropped := math.Inf(1)
	stack := []node{{lower: p.lower, upper: p.upper, bound: math.Inf(-1)}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			sol.Reason = stopReason(err, o.TimeLimit)
			break
		}
		if o.NodeLimit > 0 && sol.Nodes >= o.NodeLimit {
			sol.Reason = fmt.Sprintf("node limit %d reached", o.NodeLimit)
			break
		}
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.bound >= incumbent-pruneMargin(incumbent, o.RelGap) {
			continue
		}
		sol.Nodes++

		r := rx.solve(n.lower, n.upper)
		switch r.status {
		case relaxTooLarge:
			return nil, fmt.Errorf("%w: %s", ErrModelTooLarge, m.Stats())
		case relaxInfeasible:
			continue
		case relaxUnbounded:
			sol.Reason = "unbounded relaxation"
			stack = nil
			continue
		case relaxNumerical:
			if sol.Nodes == 1 {
				sol.Reason = "numerical failure in root relaxation"
				stack = nil
				continue
			}
			log.Debug("dropping node after numerical failure",
				zap.Int("depth", n.depth),
				zap.Float64("bound", n.bound))
			dropped = math.Min(dropped, n.bound)
			continue
		}
		if sol.Nodes == 1 {
			rootBound = r.obj
			log.Debug("root relaxation", zap.Float64("bound", r.obj))
		}
		if r.obj >= incumbent-pruneMargin(incumbent, o.RelGap) {
			continue
		}

		j, frac := mostFractional(p, r.x)
		if j < 0 {
			incumbent = r.obj
			best = r.x
			for k := range best {
				if p.binary[k] {
					best[k] = math.Round(best[k])
				}
			}
			log.Debug("new incumbent", zap.Float64("objective", incumbent), zap.Int("nodes", sol.Nodes))
			continue
		}

		down := node{lower: n.lower, upper: withBound(n.upper, j, 0), depth: n.depth + 1, bound: r.obj}
		up := node{lower: withBound(n.lower, j, 1), upper: n.upper, depth: n.depth + 1, bound: r.obj}
		// Explore the nearer rounding first.
		if frac >= 0.5 {
			stack = append(stack, down, up)
		} else {
			stack = append(stack, up, down)
		}
		if sol.Nodes%1000 == 0 {
			log.Debug("branch-and-bound progress",
				zap.Int("nodes", sol.Nodes),
				zap.Int("open", len(stack)),
				zap.Float64("incumbent", incumbent))
		}
	}

	sol.Elapsed = time.Since(start)
	proven := math.Min(incumbent, dropped)
	for _, n := range stack {
		proven = math.Min(proven, n.bound)
	}
	if best != nil {
		sol.Objective = m.ObjectiveValue(best)
		sol.incumbent = best
	}
	switch {
	case sol.Reason != "":
		sol.Status = StatusOther
		if best != nil {
			sol.Bound = proven
		}
	case dropped < incumbent-pruneMargin(incumbent, o.RelGap):
		sol.Status = StatusOther
		sol.Reason = "numerical failure in a subproblem"
		if best != nil {
			sol.Bound = proven
		}
	case best == nil:
		sol.Status = StatusInfeasible
	default:
		sol.Status = StatusOptimal
		sol.Bound = math.Min(rootBound, sol.Objective)
		sol.values = best
	}
	log.Info("solve finished",
		zap.String("status", sol.Status.String()),
		zap.Float64("objective", sol.Objective),
		zap.Float64("bound", sol.Bound),
		zap.Int("nodes", sol.Nodes),
		zap.Duration("elapsed", sol.Elapsed),
		zap.String("reason", sol.Reason))
	return sol, nil
}

func stopReason(err error, limit time.Duration) string {
	if errors.Is(err, context.DeadlineExceeded) && limit > 0 {
		return fmt.Sprintf("time limit %s reached", limit)
	}
	return "cancelled: " + err.Error()
}

// pruneMargin is how much better than the incumbent a bound must be for the
// node to be explored. The floor absorbs rounding in relaxation objectives.
func pruneMargin(incumbent, gap float64) float64 {
	if math.IsInf(incumbent, 1) {
		return 0
	}
	return math.Max(1e-6*math.Max(1, math.Abs(incumbent)), gap*math.Abs(incumbent))
}

// mostFractional returns the binary whose relaxed value is closest to 0.5,
// with that value, or -1 if every binary is integral.
func mostFractional(p *problem, x []float64) (int, float64) {
	best, bestDist := -1, 0.0
	var bestVal float64
	for j, isBin := range p.binary {
		if !isBin {
			continue
		}
		f := x[j] - math.Floor(x[j])
		dist := math.Min(f, 1-f)
		if dist > intTol && dist > bestDist {
			best, bestDist, bestVal = j, dist, f
		}
	}
	return best, bestVal
}

func withBound(src []float64, j int, v float64) []float64 {
	out := append([]float64(nil), src...)
	out[j] = v
	return out
}
