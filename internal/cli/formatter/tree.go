package formatter

import "strings"

// TreeItem is one line of a tree display. Items are given in depth-first
// order; Level 0 is a root.
type TreeItem struct {
	Title  string
	Level  int
	IsLast bool
	// Detail is rendered dim after the title, e.g. a creation date.
	Detail string
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeBlank  = "   "
)

// RenderTree renders items as an indented tree with box-drawing connectors.
// An ancestor that was the last of its siblings leaves a blank column
// instead of a pipe.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	// lastAt[l] records whether the most recent item at level l closed its
	// sibling group.
	var lastAt []bool
	var b strings.Builder
	for _, item := range items {
		for len(lastAt) <= item.Level {
			lastAt = append(lastAt, false)
		}
		lastAt[item.Level] = item.IsLast

		var prefix strings.Builder
		for l := 1; l < item.Level; l++ {
			if lastAt[l] {
				prefix.WriteString(treeBlank)
			} else {
				prefix.WriteString(treePipe)
			}
		}
		if item.Level > 0 {
			if item.IsLast {
				prefix.WriteString(treeCorner)
			} else {
				prefix.WriteString(treeBranch)
			}
		}

		title := item.Title
		if item.Level == 0 {
			title = StyleBold.Render(title)
		}
		b.WriteString(StyleDim.Render(prefix.String()) + title)
		if item.Detail != "" {
			b.WriteString("  " + Dim(item.Detail))
		}
		b.WriteString("\n")
	}
	return b.String()
}
