package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TreeItem is one line of a tree display.
type TreeItem struct {
	Title  string
	Level  int
	IsLast bool
	// Detail is shown as a right-aligned badge.
	Detail string
	// Extra marks free-standing foods next to a recipe.
	Extra bool
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
)

// RenderTree renders items as an indented tree with box-drawing connectors.
// Level 0 items are headings; detail badges line up in one column.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	type line struct {
		content string
		badge   string
	}
	lines := make([]line, len(items))
	widest := 0

	for i, item := range items {
		var prefix string
		if item.Level > 0 {
			prefix = strings.Repeat(treePipe, item.Level-1)
			if item.IsLast {
				prefix += treeCorner
			} else {
				prefix += treeBranch
			}
		}

		title := item.Title
		switch {
		case item.Level == 0:
			title = StyleBold.Render(title)
		case item.Extra:
			title = StyleYellow.Render("+ ") + title
		}
		lines[i].content = Dim(prefix) + title
		if item.Detail != "" {
			lines[i].badge = StyleBlue.Render(item.Detail)
		}
		if w := lipgloss.Width(lines[i].content); w > widest {
			widest = w
		}
	}

	var b strings.Builder
	for _, l := range lines {
		if l.badge == "" {
			b.WriteString(l.content + "\n")
			continue
		}
		pad := max(widest-lipgloss.Width(l.content), 0)
		b.WriteString(l.content + strings.Repeat(" ", pad) + "  " + l.badge + "\n")
	}
	return b.String()
}
