package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/remotefocus/internal/focus"
	"github.com/1broseidon/remotefocus/internal/platform"
)

var (
	sourceStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	handleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(12).Align(lipgloss.Right)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// filterListings keeps windows whose title contains substr (case-insensitive).
func filterListings(listings []focus.Listing, substr string) []focus.Listing {
	if substr == "" {
		return listings
	}
	needle := strings.ToLower(substr)
	out := make([]focus.Listing, 0, len(listings))
	for _, l := range listings {
		kept := focus.Listing{Source: l.Source, Err: l.Err}
		for _, w := range l.Windows {
			if strings.Contains(strings.ToLower(w.Title), needle) {
				kept.Windows = append(kept.Windows, w)
			}
		}
		out = append(out, kept)
	}
	return out
}

// renderWindows formats one block per source: a header line, then one row
// per window with its handle and title.
func renderWindows(listings []focus.Listing, sourceName func(platform.Source) string) string {
	var b strings.Builder
	for i, l := range listings {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sourceStyle.Render(fmt.Sprintf("%s (%d)", sourceName(l.Source), len(l.Windows))))
		b.WriteString("\n")
		if l.Err != nil {
			b.WriteString("  " + errorStyle.Render("error: "+l.Err.Error()) + "\n")
			continue
		}
		if len(l.Windows) == 0 {
			b.WriteString("  " + dimStyle.Render("no windows") + "\n")
			continue
		}
		for _, w := range l.Windows {
			b.WriteString(handleStyle.Render(fmt.Sprintf("0x%x", uint64(w.Handle))))
			b.WriteString("  ")
			b.WriteString(w.Title)
			b.WriteString("\n")
		}
	}
	return b.String()
}
