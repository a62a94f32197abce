package service

import (
	"context"
	"io"
	"time"

	"github.com/alexanderramin/climbdiet/internal/diet"
	"github.com/alexanderramin/climbdiet/internal/domain"
	"github.com/alexanderramin/climbdiet/internal/milp"
	"github.com/alexanderramin/climbdiet/internal/policy"
	"github.com/alexanderramin/climbdiet/internal/solver"
)

// Request names a variant and the files it is built from. An empty
// PolicyPath means the built-in policy.
type Request struct {
	Variant     domain.Variant
	FoodsPath   string
	RecipesPath string
	PolicyPath  string
}

// SolveRequest adds solver limits to a Request. A nil Gap uses the
// policy's gap for the variant.
type SolveRequest struct {
	Request
	Gap       *float64
	NodeLimit int
	TimeLimit time.Duration
}

// Inputs are the loaded catalogs and policy. Recipes is nil unless the
// variant needs them.
type Inputs struct {
	Foods   *domain.Catalog
	Recipes *domain.RecipeBook
	Policy  *policy.Policy
}

// SolveResult carries everything a solve produced. Diet and Report are only
// set when the solve was optimal; Run is nil when no history is kept.
type SolveResult struct {
	Plan     *diet.Plan
	Policy   *policy.Policy
	Solution *solver.Solution
	Diet     *diet.Diet
	Report   string
	Run      *domain.Run
}

// Summary describes validated inputs and the model they produce.
type Summary struct {
	Variant    domain.Variant
	Foods      int
	Recipes    int
	ByCategory map[domain.Category]int
	Stats      milp.Stats
	Skipped    []string
}

type InputLoader interface {
	Load(ctx context.Context, req Request) (*Inputs, error)
}

type PlanService interface {
	Solve(ctx context.Context, req SolveRequest) (*SolveResult, error)
	Validate(ctx context.Context, req Request) (*Summary, error)
	Export(ctx context.Context, req Request, w io.Writer) (milp.Stats, error)
}

type RunService interface {
	List(ctx context.Context, limit int) ([]*domain.Run, error)
	Get(ctx context.Context, idPrefix string) (*domain.Run, error)
	Delete(ctx context.Context, idPrefix string) error
}
