package formatter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/climbdiet/internal/domain"
	"github.com/alexanderramin/climbdiet/internal/milp"
	"github.com/alexanderramin/climbdiet/internal/service"
	"github.com/alexanderramin/climbdiet/internal/solver"
)

// FormatRuns renders the run history as a table, newest first as given.
func FormatRuns(runs []*domain.Run, now time.Time) string {
	if len(runs) == 0 {
		return Dim("No runs recorded yet. Solve a diet to start the history.") + "\n"
	}

	headers := []string{"ID", "VARIANT", "STATUS", "COST", "NODES", "TIME", "WHEN"}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			TruncID(r.ID),
			VariantBadge(r.Variant),
			StatusColor(r.Status).Render(string(r.Status)),
			FormatCost(r.Cost),
			strconv.Itoa(r.Nodes),
			FormatElapsed(r.Elapsed),
			Dim(HumanTimestampFrom(r.CreatedAt, now)),
		})
	}
	return RenderTableAligned(headers, rows, map[int]bool{3: true, 4: true, 5: true})
}

// FormatRun renders one stored run: its facts in a box, the rules that were
// skipped, then the plain report when a diet was found.
func FormatRun(r *domain.Run, now time.Time) string {
	var facts []string
	add := func(k, v string) {
		facts = append(facts, fmt.Sprintf("%s %s", Dim(fmt.Sprintf("%-8s", k)), v))
	}
	add("Variant", VariantBadge(r.Variant)+Dim(" "+r.Variant.Description()))
	add("Status", StatusIndicator(r.Status))
	if r.Reason != "" {
		add("Reason", r.Reason)
	}
	add("Cost", FormatCost(r.Cost))
	if r.Status == domain.RunOptimal {
		add("Gap", FormatGap(r.Gap))
	}
	add("Nodes", strconv.Itoa(r.Nodes))
	add("Solve", FormatElapsed(r.Elapsed))
	add("Model", fmt.Sprintf("%d vars, %d constraints", r.NumVars, r.NumConstraints))
	add("Foods", r.FoodsPath)
	if r.RecipesPath != "" {
		add("Recipes", r.RecipesPath)
	}
	add("When", HumanTimestampFrom(r.CreatedAt, now)+Dim(" "+r.CreatedAt.Format(time.RFC3339)))

	var b strings.Builder
	b.WriteString(RenderBox("Run "+r.ShortID(), strings.Join(facts, "\n")))
	b.WriteString("\n")
	b.WriteString(formatSkipped(r.Skipped))
	if r.Report == "" {
		b.WriteString("\n" + Dim("No diet recorded for this run.") + "\n")
	} else {
		b.WriteString(r.Report)
	}
	return b.String()
}

// FormatSummary renders the outcome of validating inputs.
func FormatSummary(sum *service.Summary) string {
	var b strings.Builder
	b.WriteString(Header("Inputs valid") + "\n\n")
	b.WriteString(fmt.Sprintf("%s %s%s\n", Dim("Variant"), VariantBadge(sum.Variant), Dim(" "+sum.Variant.Description())))
	b.WriteString(fmt.Sprintf("%s %d\n", Dim("Foods  "), sum.Foods))
	if sum.Variant.NeedsRecipes() {
		b.WriteString(fmt.Sprintf("%s %d\n", Dim("Recipes"), sum.Recipes))
	}
	b.WriteString("\n")

	var rows [][]string
	for _, c := range domain.AllCategories() {
		if n := sum.ByCategory[c]; n > 0 {
			rows = append(rows, []string{c.Label(), strconv.Itoa(n)})
		}
	}
	b.WriteString(RenderTableAligned([]string{"CATEGORY", "FOODS"}, rows, map[int]bool{1: true}))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s\n", Dim("Model"), sum.Stats.String()))
	b.WriteString(formatSkipped(sum.Skipped))
	return b.String()
}

// FormatSolveLine summarises a finished solve on one line.
func FormatSolveLine(sol *solver.Solution, stats milp.Stats) string {
	status := domain.RunOther
	switch sol.Status {
	case solver.StatusOptimal:
		status = domain.RunOptimal
	case solver.StatusInfeasible:
		status = domain.RunInfeasible
	}
	parts := []string{
		StatusColor(status).Render(sol.Status.String()),
		Dim(fmt.Sprintf("%d nodes", sol.Nodes)),
		Dim(FormatElapsed(sol.Elapsed)),
		Dim(fmt.Sprintf("%d vars, %d constraints", stats.Vars, stats.Constraints)),
	}
	if g := sol.Gap(); !math.IsNaN(g) {
		parts = append(parts, Dim("gap "+FormatGap(g)))
	} else if _, ok := sol.Incumbent(); ok {
		part := fmt.Sprintf("incumbent %.2f", sol.Objective)
		if g := sol.IncumbentGap(); !math.IsNaN(g) {
			part += ", proven gap " + FormatGap(g)
		}
		parts = append(parts, Dim(part))
	}
	if sol.Reason != "" {
		parts = append(parts, StyleYellow.Render(sol.Reason))
	}
	return strings.Join(parts, Dim(" · ")) + "\n"
}

func formatSkipped(skipped []string) string {
	if len(skipped) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n" + StyleYellowBold.Render("Skipped rules") + "\n")
	for _, s := range skipped {
		b.WriteString(StyleYellow.Render("  • ") + s + "\n")
	}
	return b.String()
}
