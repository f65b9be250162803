package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/openkraft/fixloop/internal/domain"
)

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle          = lipgloss.NewStyle().Foreground(dim).Italic(true)
)

// RenderAnalyzers lists registered descriptors grouped by category.
func RenderAnalyzers(infos []domain.AnalyzerInfo) string {
	var b strings.Builder

	var categories []string
	byCategory := make(map[string][]domain.AnalyzerInfo)
	for _, info := range infos {
		c := info.Descriptor.Category
		if c == "" {
			c = "other"
		}
		if _, ok := byCategory[c]; !ok {
			categories = append(categories, c)
		}
		byCategory[c] = append(byCategory[c], info)
	}

	for _, c := range categories {
		items := byCategory[c]
		b.WriteString("\n")
		fmt.Fprintf(&b, "  %s %s\n",
			sectionHeaderStyle.Render(c),
			dimStyle.Render(fmt.Sprintf("(%d)", len(items))),
		)
		for _, info := range items {
			renderAnalyzer(&b, info)
		}
	}

	b.WriteString("\n")
	b.WriteString("  " + hintStyle.Render("Use fixer_map and fix_map in .fixloop.yaml to resolve competing fixes."))
	b.WriteString("\n")
	return b.String()
}

func renderAnalyzer(b *strings.Builder, info domain.AnalyzerInfo) {
	d := info.Descriptor
	icon := passStyle.Render("●")
	switch {
	case !info.Enabled:
		icon = skipStyle.Render("○")
	case len(info.Fixers) == 0:
		icon = warnStyle.Render("●")
	}

	line := fmt.Sprintf("    %s %s %s  %s", icon, padRight(d.ID, 16), severityTag(d.DefaultSeverity), faintStyle.Render(d.Title))
	b.WriteString(line + "\n")

	switch {
	case !info.Enabled:
		b.WriteString("        " + skipStyle.Render("disabled by configuration") + "\n")
	case len(info.Fixers) == 0:
		b.WriteString("        " + dimStyle.Render("no fixer") + "\n")
	default:
		b.WriteString("        " + fileStyle.Render("fixed by "+strings.Join(info.Fixers, ", ")) + "\n")
	}
}
