package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alexanderramin/climbdiet/internal/domain"
)

func TestHumanTimestampFrom(t *testing.T) {
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input time.Time
		want  string
	}{
		{"just now", now.Add(-20 * time.Second), "Just now"},
		{"minutes", now.Add(-5 * time.Minute), "5m ago"},
		{"hours", now.Add(-3 * time.Hour), "3h ago"},
		{"yesterday", now.Add(-30 * time.Hour), "Yesterday"},
		{"older", time.Date(2025, 9, 30, 8, 0, 0, 0, time.UTC), "Sep 30, 2025"},
		{"future same day", now.Add(time.Hour), "Today"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HumanTimestampFrom(tt.input, now))
		})
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "<1ms"},
		{999 * time.Microsecond, "<1ms"},
		{42 * time.Millisecond, "42ms"},
		{2500 * time.Millisecond, "2.5s"},
		{61 * time.Second, "1m01s"},
		{12*time.Minute + 30*time.Second, "12m30s"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatElapsed(tt.in))
		})
	}
}

func TestFormatCostAndGrams(t *testing.T) {
	assert.Equal(t, "--", FormatCost(nil))
	c := 12.345
	assert.Equal(t, "12.35 €", FormatCost(&c))
	assert.Equal(t, "96.7 g", FormatGrams(96.666667))
	assert.Equal(t, "2.80%", FormatGap(0.028))
}

func TestTruncID(t *testing.T) {
	assert.Equal(t, "3f2a9c1e", stripANSI(TruncID("3f2a9c1e-7b44-4c1d")))
	assert.Equal(t, "abc", stripANSI(TruncID("abc")))
}

func TestStatusIndicator(t *testing.T) {
	assert.Equal(t, "● OPTIMAL", stripANSI(StatusIndicator(domain.RunOptimal)))
	assert.Equal(t, "● INFEASIBLE", stripANSI(StatusIndicator(domain.RunInfeasible)))
	assert.Equal(t, "● STOPPED", stripANSI(StatusIndicator(domain.RunOther)))
}

func TestRenderTableAligned(t *testing.T) {
	out := stripANSI(RenderTableAligned(
		[]string{"FOOD", "GRAMS"},
		[][]string{{"harina", "290.0"}, {"aceite", "96.7"}},
		map[int]bool{1: true},
	))
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Equal(t, []string{
		"FOOD    GRAMS",
		"──────  ─────",
		"harina  290.0",
		"aceite   96.7",
	}, lines)

	assert.Empty(t, RenderTable(nil, nil))
}

func TestRenderTree(t *testing.T) {
	out := stripANSI(RenderTree([]TreeItem{
		{Title: "Comida: guiso", Detail: "1240 kcal"},
		{Title: "lentejas", Level: 1, Detail: "120.0 g"},
		{Title: "pan", Level: 1, IsLast: true, Extra: true, Detail: "40.0 g"},
	}))
	assert.Equal(t,
		"Comida: guiso  1240 kcal\n"+
			"├─ lentejas    120.0 g\n"+
			"└─ + pan       40.0 g\n", out)
	assert.Empty(t, RenderTree(nil))
}
