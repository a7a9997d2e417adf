// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-studio/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}
	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintResume outputs a summary of a stored resume: identity, status and section sizes.
func (p *Printer) PrintResume(doc *types.Resume) {
	if doc == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "ID:        %d\n", doc.ID)
	fmt.Fprintf(&sb, "Status:    %s (%s)\n", doc.Status, doc.Privacy)
	if doc.User != nil {
		fmt.Fprintf(&sb, "Owner:     %s\n", doc.User.Username)
	}
	if doc.Template != "" {
		fmt.Fprintf(&sb, "Template:  %s\n", doc.Template)
	}
	pd := doc.PersonalDetails
	if name := strings.TrimSpace(pd.FirstName + " " + pd.LastName); name != "" {
		fmt.Fprintf(&sb, "Name:      %s\n", name)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Education: %d  Work: %d  Projects: %d\n", len(doc.Education), len(doc.WorkExperience), len(doc.Projects))
	fmt.Fprintf(&sb, "Skills:    %d  Awards: %d", len(doc.Skills), len(doc.Awards))

	if len(doc.Skills) > 0 {
		sb.WriteString("\n\n")
		count := min(len(doc.Skills), maxItemsToShow)
		names := make([]string, 0, count)
		for _, s := range doc.Skills[:count] {
			names = append(names, s.SkillName)
		}
		sb.WriteString("• " + strings.Join(names, ", "))
		if len(doc.Skills) > maxItemsToShow {
			fmt.Fprintf(&sb, "\n  ... and %d more", len(doc.Skills)-maxItemsToShow)
		}
	}
	if doc.ViewsCount != nil {
		fmt.Fprintf(&sb, "\n\nViews: %d  Downloads: %d  Favorites: %d", deref(doc.ViewsCount), deref(doc.DownloadsCount), deref(doc.FavoriteCount))
	}

	p.printBox(strings.ToUpper(doc.Title), sb.String())
}

// PrintFieldErrors outputs the field errors blocking a status transition.
func (p *Printer) PrintFieldErrors(target types.Status, fields []types.FieldError) {
	if len(fields) == 0 {
		p.printBox("VALIDATION", fmt.Sprintf("✓ ready to save as %s", target))
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d issue(s) blocking %s:\n", len(fields), target)
	for _, f := range fields {
		fmt.Fprintf(&sb, "\n✗ %s\n  %s", f.Field, f.Message)
	}
	p.printBox("VALIDATION", sb.String())
}

// PrintStats outputs engagement totals.
func (p *Printer) PrintStats(stats *types.UserStats) {
	if stats == nil {
		return
	}
	p.printBox("ENGAGEMENT", fmt.Sprintf("Views:     %d\nDownloads: %d\nFavorites: %d", stats.Views, stats.Downloads, stats.Favorites))
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
