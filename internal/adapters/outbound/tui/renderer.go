package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/openkraft/fixloop/internal/domain"
)

// ── Claude-inspired warm palette ──
var (
	accent    = lipgloss.Color("#D97706") // amber
	fg        = lipgloss.Color("#E8E6E3") // warm light gray
	dim       = lipgloss.Color("#6B7280") // muted gray
	faint     = lipgloss.Color("#3F3F46") // very dim
	success   = lipgloss.Color("#22C55E") // green
	danger    = lipgloss.Color("#EF4444") // red
	warning   = lipgloss.Color("#F59E0B") // amber-yellow
	info      = lipgloss.Color("#8B949E") // soft blue-gray
	skipColor = lipgloss.Color("#4B5563") // dark gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	skipStyle     = lipgloss.NewStyle().Foreground(skipColor)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	infoTagStyle  = lipgloss.NewStyle().Foreground(info)
	fileStyle     = lipgloss.NewStyle().Foreground(dim)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// counts formats numbers with thousands separators.
var counts = message.NewPrinter(language.English)

// RenderSolution formats the outcome of a whole run.
func RenderSolution(r *domain.SolutionFixResult) string {
	var b strings.Builder

	// ── Header ──
	title := headerStyle.Render("fixloop")
	root := dimStyle.Render(r.Root)
	if r.CommitHash != "" {
		root += "  " + faintStyle.Render(short(r.CommitHash))
	}
	totals := passStyle.Render(counts.Sprintf("%d fixed", r.FixedCount())) +
		dimStyle.Render("  ·  ") +
		warnStyle.Render(counts.Sprintf("%d unfixed", r.UnfixedCount())) +
		dimStyle.Render("  ·  ") +
		skipStyle.Render(counts.Sprintf("%d unfixable", r.UnfixableCount()))
	elapsed := dimStyle.Render(fmt.Sprintf("%s, %d projects", duration(r.Elapsed), len(r.Projects)))

	b.WriteString(boxStyle.Render(title + "\n" + root + "\n\n" + totals + "\n" + elapsed))
	b.WriteString("\n\n")

	// ── Projects ──
	for i, p := range r.Projects {
		renderProject(&b, r.Root, p)
		if i < len(r.Projects)-1 {
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString("  " + separatorLine)
	b.WriteString("\n\n")

	switch {
	case r.Halted:
		b.WriteString("  " + failStyle.Render("Run halted on a compiler error.") + "\n")
	case r.Failed():
		b.WriteString("  " + warnStyle.Render("Some projects did not converge.") + "\n")
	case r.FixedCount() == 0:
		b.WriteString("  " + dimStyle.Render("Nothing to fix.") + "\n")
	default:
		b.WriteString("  " + passStyle.Render("Done.") + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

// RenderProject formats the outcome of one project.
func RenderProject(root string, p domain.ProjectFixResult) string {
	var b strings.Builder
	renderProject(&b, root, p)
	return b.String()
}

func renderProject(b *strings.Builder, root string, p domain.ProjectFixResult) {
	name := titleStyle.Render(padRight(projectName(p.Project), 32))
	meta := dimStyle.Render(fmt.Sprintf("%s  %s", kindLabel(p), duration(p.Elapsed)))
	fmt.Fprintf(b, "  %s %s %s\n", kindIcon(p.Kind), name, meta)

	switch p.Kind {
	case domain.ProjectNoFixers:
		fmt.Fprintf(b, "    %s\n", faintStyle.Render("analyzers without fixers: "+strings.Join(p.Analyzers, ", ")))
	case domain.ProjectNoFixableAnalyzers:
		fmt.Fprintf(b, "    %s\n", faintStyle.Render("fixers without analyzers: "+strings.Join(p.Fixers, ", ")))
	}

	renderCounts(b, "fixed", passStyle, p.Fixed)
	renderCounts(b, "unfixed", warnStyle, p.Unfixed)
	renderCounts(b, "unfixable", skipStyle, p.Unfixable)

	if p.Loop != nil {
		renderDiagnostics(b, root, "Infinite loop detected. Diagnostics", p.Loop.Diagnostics)
		renderDiagnostics(b, root, "Previous diagnostics", p.Loop.PreviousDiagnostics)
	}
}

func renderCounts(b *strings.Builder, label string, style lipgloss.Style, ds []domain.Diagnostic) {
	if len(ds) == 0 {
		return
	}
	fmt.Fprintf(b, "    %s %s\n", style.Render(label), dimStyle.Render(counts.Sprintf("(%d)", len(ds))))
	for _, g := range domain.CountByDescriptor(ds) {
		fmt.Fprintf(b, "      %s  %s %s\n",
			style.Render(padLeft(counts.Sprintf("%d", g.Count), 7)),
			padRight(g.ID, 24),
			faintStyle.Render(g.Title))
	}
}

func renderDiagnostics(b *strings.Builder, root, title string, ds []domain.Diagnostic) {
	fmt.Fprintf(b, "    %s %s\n", warnTagStyle.Render(title), dimStyle.Render(counts.Sprintf("(%d)", len(ds))))
	for _, d := range ds {
		loc := d.Location
		loc.File = relPath(root, loc.File)
		fmt.Fprintf(b, "      %s %s\n", severityTag(d.Severity), fileStyle.Render(loc.String()))
		fmt.Fprintf(b, "            %s %s\n", d.ID, dimStyle.Render(d.Message))
	}
}

func kindIcon(kind domain.ProjectFixKind) string {
	switch kind {
	case domain.ProjectSuccess:
		return passStyle.Render("●")
	case domain.ProjectCompilerError:
		return failStyle.Render("●")
	case domain.ProjectInfiniteLoop:
		return warnStyle.Render("●")
	default:
		return skipStyle.Render("○")
	}
}

func kindLabel(p domain.ProjectFixResult) string {
	switch p.Kind {
	case domain.ProjectSuccess:
		return fmt.Sprintf("%d iterations", p.Iterations)
	case domain.ProjectNoAnalyzers:
		return "no analyzers"
	case domain.ProjectNoFixers:
		return "no fixers"
	case domain.ProjectNoFixableAnalyzers:
		return "no fixable analyzers"
	case domain.ProjectCompilerError:
		return "compiler error"
	case domain.ProjectInfiniteLoop:
		return fmt.Sprintf("infinite loop after %d iterations", p.Iterations)
	default:
		return string(p.Kind)
	}
}

func severityTag(severity domain.Severity) string {
	switch severity {
	case domain.SeverityError:
		return errorTagStyle.Render("error")
	case domain.SeverityWarning:
		return warnTagStyle.Render("warn ")
	default:
		return infoTagStyle.Render("info ")
	}
}

func projectName(p domain.Project) string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

func relPath(root, path string) string {
	if root == "" || path == "" {
		return path
	}
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return path
}

func short(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}

func duration(d time.Duration) string {
	if d < time.Millisecond {
		return d.String()
	}
	return d.Round(time.Millisecond).String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
