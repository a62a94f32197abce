// Package solver runs optimisation over milp models and reports a status
// plus, only when optimal, the value of every variable.
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

var (
	// ErrNoSolution is returned when reading values from a non-optimal run.
	ErrNoSolution = errors.New("no optimal solution available")
	// ErrModelTooLarge is returned when a relaxation exceeds the dense matrix
	// budget of the in-process solver. Export the model and use an external
	// MILP solver instead.
	ErrModelTooLarge = errors.New("model too large for in-process solver")
	// ErrUnsupported is returned for models outside the solver's class.
	ErrUnsupported = errors.New("unsupported model")
)

// Status is the terminal outcome of a solve.
type Status int

const (
	StatusOther Status = iota
	StatusOptimal
	StatusInfeasible
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	default:
		return "other"
	}
}

// Solver solves a model.
type Solver interface {
	Solve(ctx context.Context, m *milp.Model, opts ...Option) (*Solution, error)
}

// Options configures a solve.
type Options struct {
	// RelGap is the relative MIP gap: a node is pruned when its bound cannot
	// improve the incumbent by more than RelGap·|incumbent|.
	RelGap float64
	// NodeLimit stops the search after this many nodes; 0 means no limit.
	NodeLimit int
	// TimeLimit stops the search after this long; 0 means no limit.
	TimeLimit time.Duration
	// MaxCells bounds rows×columns of any dense relaxation.
	MaxCells int
	Logger   *zap.Logger
}

// Option mutates Options.
type Option func(*Options)

// WithRelGap sets the relative MIP gap.
func WithRelGap(gap float64) Option {
	return func(o *Options) { o.RelGap = gap }
}

// WithNodeLimit caps the number of branch-and-bound nodes.
func WithNodeLimit(n int) Option {
	return func(o *Options) { o.NodeLimit = n }
}

// WithTimeLimit caps wall-clock solve time.
func WithTimeLimit(d time.Duration) Option {
	return func(o *Options) { o.TimeLimit = d }
}

// WithMaxCells sets the dense relaxation budget.
func WithMaxCells(n int) Option {
	return func(o *Options) { o.MaxCells = n }
}

// WithLogger sets the logger used for progress output.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// DefaultOptions returns exact search with no limits.
func DefaultOptions() Options {
	return Options{
		MaxCells: 25_000_000,
		Logger:   zap.NewNop(),
	}
}

// Solution is the outcome of a solve. Values are only readable when Status
// is StatusOptimal; a search stopped early may still carry an incumbent.
type Solution struct {
	Status Status
	// Objective is the value of the optimum, or of the incumbent when the
	// search stopped early with one. NaN otherwise.
	Objective float64
	// Bound is the best proven lower bound on the objective.
	Bound   float64
	Nodes   int
	Elapsed time.Duration
	// Reason explains a StatusOther outcome.
	Reason    string
	values    []float64
	incumbent []float64
}

// Optimal reports whether values may be read.
func (s *Solution) Optimal() bool { return s != nil && s.Status == StatusOptimal }

// Value returns the solved value of v.
func (s *Solution) Value(v milp.Var) (float64, error) {
	if !s.Optimal() {
		return 0, ErrNoSolution
	}
	if int(v) < 0 || int(v) >= len(s.values) {
		return 0, fmt.Errorf("variable %d out of range", v)
	}
	return s.values[v], nil
}

// Values returns a copy of every solved value, indexed by milp.Var.
func (s *Solution) Values() ([]float64, error) {
	if !s.Optimal() {
		return nil, ErrNoSolution
	}
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out, nil
}

// Incumbent returns a copy of the best feasible assignment found, also when
// the search stopped before proving it optimal.
func (s *Solution) Incumbent() ([]float64, bool) {
	if s == nil || s.incumbent == nil {
		return nil, false
	}
	out := make([]float64, len(s.incumbent))
	copy(out, s.incumbent)
	return out, true
}

// Gap returns the relative gap between objective and bound.
func (s *Solution) Gap() float64 {
	if !s.Optimal() {
		return math.NaN()
	}
	return relGap(s.Objective, s.Bound)
}

// IncumbentGap is the gap the search actually proved for its incumbent,
// whatever the status. NaN without an incumbent or a finite bound.
func (s *Solution) IncumbentGap() float64 {
	if s == nil || s.incumbent == nil {
		return math.NaN()
	}
	return relGap(s.Objective, s.Bound)
}

func relGap(objective, bound float64) float64 {
	if math.IsInf(bound, 0) || math.IsNaN(bound) || math.IsNaN(objective) {
		return math.NaN()
	}
	den := math.Max(math.Abs(objective), 1e-10)
	return math.Max(0, objective-bound) / den
}

// NewOptimal builds an optimal solution from known values. Adapters wrapping
// external solvers use it to report their results.
func NewOptimal(objective float64, values []float64) *Solution {
	return &Solution{Status: StatusOptimal, Objective: objective, Bound: objective, values: values, incumbent: values}
}

// NewStopped builds the outcome of a search that ended early with an
// incumbent whose optimality was not proven.
func NewStopped(reason string, objective, bound float64, incumbent []float64) *Solution {
	return &Solution{Status: StatusOther, Reason: reason, Objective: objective, Bound: bound, incumbent: incumbent}
}
