package tui

import (
	"fmt"
	"strings"

	"github.com/openkraft/fixloop/internal/domain"
)

const graphMaxRows = 40

// RenderGraph lists projects in the order a run fixes them, with their
// in-module coupling and whether the configuration selects them.
func RenderGraph(order []domain.Project, modulePath string, cfg domain.FixConfig) string {
	if len(order) == 0 {
		return "\n  " + dimStyle.Render("No packages found.") + "\n\n"
	}

	importedBy := make(map[string]int, len(order))
	edges := 0
	for _, p := range order {
		for _, imp := range p.Imports {
			importedBy[imp]++
			edges++
		}
	}
	skipped := 0
	for _, p := range order {
		if !cfg.IncludesProject(p.ID) {
			skipped++
		}
	}

	var b strings.Builder

	// ── Header box ──
	title := headerStyle.Render("Fix Order")
	modLine := titleStyle.Render(modulePath)
	stats := dimStyle.Render(counts.Sprintf("%d packages  ·  %d edges  ·  %d skipped", len(order), edges, skipped))
	b.WriteString(boxStyle.Render(title + "\n\n" + modLine + "\n" + stats))
	b.WriteString("\n\n")

	// ── Table ──
	hdrLine := fmt.Sprintf("  %4s  %-40s %3s %3s", "#", "Package", "Ca", "Ce")
	b.WriteString(titleStyle.Render(hdrLine) + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 56)) + "\n")

	shown := min(len(order), graphMaxRows)
	for i, p := range order[:shown] {
		name := truncateOrPad(stripModulePrefix(p.ID, modulePath), 40)
		styled := dimStyle.Render(name)
		marker := ""
		if !cfg.IncludesProject(p.ID) {
			styled = skipStyle.Render(name)
			marker = "  " + skipStyle.Render("skipped")
		}
		fmt.Fprintf(&b, "  %4d  %s %3d %3d%s\n", i+1, styled, importedBy[p.ID], len(p.Imports), marker)
	}

	if remaining := len(order) - shown; remaining > 0 {
		b.WriteString(faintStyle.Render(fmt.Sprintf("  (%d more packages)\n", remaining)))
	}

	b.WriteString("\n")
	return b.String()
}

func truncateOrPad(s string, width int) string {
	if len(s) > width {
		return s[:width-1] + "…"
	}
	return padRight(s, width)
}

func stripModulePrefix(pkg, modulePath string) string {
	if modulePath == "" {
		return pkg
	}
	trimmed := strings.TrimPrefix(pkg, modulePath+"/")
	if trimmed == pkg {
		// Might be the root module itself.
		if pkg == modulePath {
			return "./"
		}
		return pkg
	}
	return trimmed
}
