package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Observe(t *testing.T) {
	r := NewRecorder()
	cost := 8.22

	r.Observe(Solve{Variant: "daily", Status: "optimal", Elapsed: 3 * time.Millisecond, Nodes: 1, Vars: 4, Constraints: 8, Cost: &cost})
	r.Observe(Solve{Variant: "weekly", Status: "infeasible", Elapsed: time.Second, Nodes: 40, Vars: 900, Constraints: 2000,
		Skipped: []string{"beverages: missing café", "staples: missing quinoa"}})
	r.Observe(Solve{Variant: "daily", Status: "optimal", Nodes: 1, Cost: &cost})

	assert.InDelta(t, 2, testutil.ToFloat64(r.solves.WithLabelValues("daily", "optimal")), 1e-12)
	assert.InDelta(t, 1, testutil.ToFloat64(r.solves.WithLabelValues("weekly", "infeasible")), 1e-12)
	assert.InDelta(t, 8.22, testutil.ToFloat64(r.cost.WithLabelValues("daily")), 1e-12)
	assert.InDelta(t, 2000, testutil.ToFloat64(r.modelRows.WithLabelValues("weekly")), 1e-12)
	assert.InDelta(t, 2, testutil.ToFloat64(r.skipped.WithLabelValues("weekly")), 1e-12)
	assert.Equal(t, 2, testutil.CollectAndCount(r.duration))
	assert.Greater(t, testutil.ToFloat64(r.lastSuccess), 0.0)

	// No cost series exists for a variant that never solved optimally.
	assert.Equal(t, 1, testutil.CollectAndCount(r.cost))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.Observe(Solve{Variant: "slots", Status: "other"})

	path := filepath.Join(t.TempDir(), "climbdiet.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `climbdiet_solves_total{status="other",variant="slots"} 1`)

	assert.NoError(t, r.WriteTextfile(""))
	assert.Error(t, r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom")))
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() { r.Observe(Solve{Variant: "daily"}) })
	assert.NoError(t, r.WriteTextfile("/nonexistent/x.prom"))
}
