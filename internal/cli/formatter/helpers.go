package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/climbdiet/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		inner := titleRendered + "\n\n" + content
		return boxStyle.Render(inner)
	}

	return boxStyle.Render(content)
}

// HumanDateFrom returns "Today", "Yesterday" or a short absolute date,
// judged against now.
func HumanDateFrom(t, now time.Time) string {
	t = t.In(now.Location())
	y1, m1, d1 := now.Date()
	y2, m2, d2 := t.Date()

	if y1 == y2 && m1 == m2 && d1 == d2 {
		return "Today"
	}
	y3, m3, d3 := now.AddDate(0, 0, -1).Date()
	if y2 == y3 && m2 == m3 && d2 == d3 {
		return "Yesterday"
	}
	return t.Format("Jan 2, 2006")
}

// HumanTimestampFrom returns how long before now t happened, falling back
// to the date after a day.
func HumanTimestampFrom(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < 0:
		return HumanDateFrom(t, now)
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return HumanDateFrom(t, now)
	}
}

// VariantBadge returns the purple variant label.
func VariantBadge(v domain.Variant) string {
	if v == "" {
		return StyleDim.Render("--")
	}
	return StylePurple.Render(string(v))
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// FormatGrams renders a quantity with one decimal, e.g. "96.7 g".
func FormatGrams(g float64) string {
	return fmt.Sprintf("%.1f g", g)
}

// FormatCost renders a cost in euros, or "--" when there is none.
func FormatCost(cost *float64) string {
	if cost == nil {
		return "--"
	}
	return fmt.Sprintf("%.2f €", *cost)
}

// FormatElapsed renders a solve time at a useful precision.
func FormatElapsed(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return "<1ms"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		m := int(d.Minutes())
		s := int(d.Seconds()) - 60*m
		return fmt.Sprintf("%dm%02ds", m, s)
	}
}

// FormatGap renders a relative gap as a percentage.
func FormatGap(gap float64) string {
	return fmt.Sprintf("%.2f%%", gap*100)
}
