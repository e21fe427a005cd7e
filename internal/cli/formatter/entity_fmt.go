package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/atelier/internal/domain"
)

// EntityTable renders one collection as an ID / text / created table.
// Entities without a creation time (the relational store keeps none) show
// a dim dash.
func EntityTable(kind domain.Kind, items []*domain.Entity) string {
	if len(items) == 0 {
		return Dim(fmt.Sprintf("No %s.", kind.Plural())) + "\n"
	}

	heading := "NAME"
	if kind == domain.KindNote {
		heading = "NOTE"
	}
	rows := make([][]string, 0, len(items))
	for _, e := range items {
		rows = append(rows, []string{StyleDim.Render(e.ID), e.Text, CreatedLabel(e.CreatedAt)})
	}
	return RenderTable([]string{"ID", heading, "CREATED"}, rows)
}

// CreatedLabel is a short human-friendly form of a creation time.
func CreatedLabel(t time.Time) string {
	if t.IsZero() {
		return Dim("-")
	}
	return HumanTimestampFrom(t, time.Now())
}

// HumanTimestampFrom renders t relative to now: minutes and hours for the
// last day, then Yesterday, then a calendar date.
func HumanTimestampFrom(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < 0:
		return t.Format("Jan 2, 2006")
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 48*time.Hour:
		return "Yesterday"
	}
	return t.Format("Jan 2, 2006")
}

// Truncate shortens s to width runes, marking the cut with an ellipsis.
func Truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
