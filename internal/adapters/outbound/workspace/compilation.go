package workspace

import (
	"bytes"
	"go/token"
	"os"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/openkraft/fixloop/internal/domain"
)

// Compilation is a type-checked package at one workspace version.
type Compilation struct {
	project     domain.Project
	version     int
	pkg         *packages.Package
	docs        map[string][]byte
	diagnostics []domain.Diagnostic
}

var _ domain.Compilation = (*Compilation)(nil)

func newCompilation(project domain.Project, version int, pkg *packages.Package, overlay map[string][]byte) *Compilation {
	c := &Compilation{
		project: project,
		version: version,
		pkg:     pkg,
		docs:    make(map[string][]byte),
	}

	files := pkg.CompiledGoFiles
	if len(files) == 0 {
		files = pkg.GoFiles
	}
	for _, f := range files {
		if content, ok := overlay[f]; ok {
			c.docs[f] = content
			continue
		}
		if content, err := os.ReadFile(f); err == nil {
			c.docs[f] = content
		}
	}

	for _, e := range pkg.Errors {
		c.diagnostics = append(c.diagnostics, c.compilerDiagnostic(e))
	}
	return c
}

func (c *Compilation) Project() domain.Project { return c.project }
func (c *Compilation) Version() int            { return c.version }

func (c *Compilation) Diagnostics() []domain.Diagnostic { return c.diagnostics }

func (c *Compilation) Document(path string) ([]byte, bool) {
	content, ok := c.docs[path]
	return content, ok
}

// Package returns the type-checked package for analyzers.
func (c *Compilation) Package() *packages.Package { return c.pkg }

// Fset returns the file set positions of the package refer to.
func (c *Compilation) Fset() *token.FileSet { return c.pkg.Fset }

// Location converts a token range of this compilation into a domain location.
func (c *Compilation) Location(pos, end token.Pos) domain.Location {
	fset := c.pkg.Fset
	if !pos.IsValid() {
		return domain.Location{}
	}
	if !end.IsValid() {
		end = pos
	}
	start, stop := fset.Position(pos), fset.Position(end)
	return domain.Location{
		File: start.Filename,
		Span: domain.Span{
			Start:       start.Offset,
			End:         stop.Offset,
			StartLine:   start.Line,
			StartColumn: start.Column,
			EndLine:     stop.Line,
			EndColumn:   stop.Column,
		},
	}
}

// Offset converts a token position into a file name and byte offset.
func (c *Compilation) Offset(pos token.Pos) (string, int, bool) {
	tf := c.pkg.Fset.File(pos)
	if tf == nil {
		return "", 0, false
	}
	return tf.Name(), tf.Offset(pos), true
}

// compilerDescriptor returns the descriptor of compiler errors of a kind.
func compilerDescriptor(id, title string) domain.Descriptor {
	return domain.Descriptor{
		ID:              id,
		Title:           title,
		Category:        "compiler",
		DefaultSeverity: domain.SeverityError,
		CustomTags:      []string{domain.TagCompiler},
	}
}

func (c *Compilation) compilerDiagnostic(e packages.Error) domain.Diagnostic {
	id, title := compilerID(e)
	d := domain.Diagnostic{
		ID:         id,
		Severity:   domain.SeverityError,
		Message:    e.Msg,
		Descriptor: compilerDescriptor(id, title),
	}

	file, line, col, ok := parsePos(e.Pos)
	if !ok {
		return d
	}
	d.Location.File = file
	d.Location.Span.StartLine, d.Location.Span.EndLine = line, line
	d.Location.Span.StartColumn, d.Location.Span.EndColumn = col, col
	if content, ok := c.docs[file]; ok {
		off := offsetOf(content, line, col)
		d.Location.Span.Start, d.Location.Span.End = off, off
	}
	return d
}

// CompilerIDs lists the ids of compiler diagnostics.
func CompilerIDs() []string {
	return []string{
		"compile/Error",
		"compile/ListError",
		"compile/ParseError",
		"compile/TypeError",
		"compile/UnusedImport",
		"compile/UnusedVariable",
	}
}

func compilerID(e packages.Error) (string, string) {
	switch e.Kind {
	case packages.ListError:
		return "compile/ListError", "package could not be listed"
	case packages.ParseError:
		return "compile/ParseError", "syntax error"
	case packages.TypeError:
		switch {
		case strings.Contains(e.Msg, "declared and not used"):
			return "compile/UnusedVariable", "variable declared and not used"
		case strings.Contains(e.Msg, "imported and not used"):
			return "compile/UnusedImport", "package imported and not used"
		}
		return "compile/TypeError", "type error"
	default:
		return "compile/Error", "compiler error"
	}
}

// parsePos splits "file:line:col" or "file:line".
func parsePos(pos string) (string, int, int, bool) {
	if pos == "" || pos == "-" {
		return "", 0, 0, false
	}
	parts := strings.Split(pos, ":")
	nums := make([]int, 0, 2)
	for len(parts) > 1 && len(nums) < 2 {
		n, err := strconv.Atoi(parts[len(parts)-1])
		if err != nil {
			break
		}
		nums = append([]int{n}, nums...)
		parts = parts[:len(parts)-1]
	}
	if len(nums) == 0 {
		return "", 0, 0, false
	}
	file := strings.Join(parts, ":")
	if len(nums) == 1 {
		return file, nums[0], 1, true
	}
	return file, nums[0], nums[1], true
}

// offsetOf converts a 1-based line and column into a byte offset.
func offsetOf(content []byte, line, col int) int {
	off := 0
	for l := 1; l < line; l++ {
		i := bytes.IndexByte(content[off:], '\n')
		if i < 0 {
			return len(content)
		}
		off += i + 1
	}
	off += col - 1
	return min(max(off, 0), len(content))
}
