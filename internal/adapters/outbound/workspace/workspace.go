// Package workspace implements the versioned source tree of a Go module.
// Edits land in an in-memory overlay that go/packages type-checks against, so
// nothing touches the disk until Flush.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"go/format"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"

	"golang.org/x/tools/go/packages"

	"github.com/openkraft/fixloop/internal/domain"
)

var (
	// ErrConflictingEdits is returned when edits of one operation overlap.
	ErrConflictingEdits = errors.New("conflicting edits")
	// ErrStaleEdit is returned when an edit does not fit the current file content.
	ErrStaleEdit = errors.New("edit does not match current file content")
)

const (
	graphMode = packages.NeedName | packages.NeedFiles | packages.NeedImports | packages.NeedModule

	compileMode = graphMode | packages.NeedCompiledGoFiles | packages.NeedSyntax |
		packages.NeedTypes | packages.NeedTypesInfo | packages.NeedTypesSizes
)

// Workspace is a Go module loaded with go/packages. A project is a package.
type Workspace struct {
	root     string
	patterns []string

	mu       sync.Mutex
	version  int
	overlay  map[string][]byte
	projects []domain.Project
	module   string
	compiled map[string]*Compilation
}

var _ domain.Workspace = (*Workspace)(nil)

// New creates a workspace rooted at dir. patterns default to "./...".
func New(dir string, patterns ...string) (*Workspace, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	return &Workspace{
		root:     root,
		patterns: patterns,
		overlay:  make(map[string][]byte),
		compiled: make(map[string]*Compilation),
	}, nil
}

// Root returns the absolute module directory.
func (w *Workspace) Root() string { return w.root }

// ModulePath returns the path of the main module, once Projects has run.
func (w *Workspace) ModulePath() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.module
}

func (w *Workspace) Version() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.version
}

// Projects lists the packages matched by the workspace patterns together with
// their in-module imports. The graph is loaded once.
func (w *Workspace) Projects(ctx context.Context) ([]domain.Project, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.projects != nil {
		return w.projects, nil
	}

	pkgs, err := packages.Load(w.config(ctx, graphMode), w.patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}

	inModule := make(map[string]bool, len(pkgs))
	for _, p := range pkgs {
		inModule[p.PkgPath] = true
	}

	projects := make([]domain.Project, 0, len(pkgs))
	for _, p := range pkgs {
		if p.PkgPath == "" {
			continue
		}
		if w.module == "" && p.Module != nil {
			w.module = p.Module.Path
		}
		var imports []string
		for path := range p.Imports {
			if inModule[path] {
				imports = append(imports, path)
			}
		}
		sort.Strings(imports)
		projects = append(projects, domain.Project{
			ID:      p.PkgPath,
			Name:    w.projectName(p),
			Dir:     packageDir(p),
			Imports: imports,
		})
	}
	w.projects = projects
	return projects, nil
}

// Compile type-checks the latest snapshot of a package. Compilations are
// cached per version, so repeated reads between edits are free.
func (w *Workspace) Compile(ctx context.Context, projectID string) (domain.Compilation, error) {
	w.mu.Lock()
	version := w.version
	if c, ok := w.compiled[projectID]; ok && c.version == version {
		w.mu.Unlock()
		return c, nil
	}
	overlay := make(map[string][]byte, len(w.overlay))
	for k, v := range w.overlay {
		overlay[k] = v
	}
	w.mu.Unlock()

	cfg := w.config(ctx, compileMode)
	cfg.Overlay = overlay

	pkgs, err := packages.Load(cfg, projectID)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", projectID, err)
	}
	idx := slices.IndexFunc(pkgs, func(p *packages.Package) bool { return p.PkgPath == projectID })
	if idx < 0 {
		return nil, fmt.Errorf("compiling %s: package not found", projectID)
	}
	pkg := pkgs[idx]

	c := newCompilation(domain.Project{
		ID:   pkg.PkgPath,
		Name: w.projectName(pkg),
		Dir:  packageDir(pkg),
	}, version, pkg, overlay)

	w.mu.Lock()
	if w.version == version {
		w.compiled[projectID] = c
	}
	w.mu.Unlock()
	return c, nil
}

// Apply commits every edit of op or none of them.
func (w *Workspace) Apply(ctx context.Context, op domain.Operation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	byFile := make(map[string][]domain.TextEdit)
	for _, e := range op.Edits {
		file := w.abs(e.File)
		e.File = file
		byFile[file] = append(byFile[file], e)
	}

	staged := make(map[string][]byte, len(byFile))
	for file, edits := range byFile {
		content, err := w.read(file)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrStaleEdit, file, err)
		}
		out, err := applyEdits(content, edits)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		staged[file] = out
	}

	for file, content := range staged {
		w.overlay[file] = content
	}
	w.version++
	clear(w.compiled)
	return nil
}

// Changed returns the files modified since the workspace was loaded.
func (w *Workspace) Changed() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	files := make([]string, 0, len(w.overlay))
	for f := range w.overlay {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// Flush writes every modified file back to disk, keeping file modes. Go files
// are gofmt-ed first; a file that does not parse is written as is.
func (w *Workspace) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for file, content := range w.overlay {
		if filepath.Ext(file) == ".go" {
			if formatted, err := format.Source(content); err == nil {
				content = formatted
			}
		}
		mode := fs.FileMode(0o644)
		if info, err := os.Stat(file); err == nil {
			mode = info.Mode().Perm()
		}
		if err := os.WriteFile(file, content, mode); err != nil {
			return fmt.Errorf("writing %s: %w", file, err)
		}
	}
	return nil
}

// read returns the current content of a file: the overlay when it was edited,
// the disk otherwise. Callers hold w.mu.
func (w *Workspace) read(file string) ([]byte, error) {
	if content, ok := w.overlay[file]; ok {
		return content, nil
	}
	return os.ReadFile(file)
}

func (w *Workspace) abs(file string) string {
	if filepath.IsAbs(file) {
		return filepath.Clean(file)
	}
	return filepath.Join(w.root, file)
}

func (w *Workspace) config(ctx context.Context, mode packages.LoadMode) *packages.Config {
	return &packages.Config{
		Context: ctx,
		Dir:     w.root,
		Mode:    mode,
		Tests:   false,
	}
}

func (w *Workspace) projectName(p *packages.Package) string {
	dir := packageDir(p)
	if dir == "" {
		return p.PkgPath
	}
	rel, err := filepath.Rel(w.root, dir)
	if err != nil || rel == "." {
		return p.Name
	}
	return filepath.ToSlash(rel)
}

func packageDir(p *packages.Package) string {
	if len(p.GoFiles) > 0 {
		return filepath.Dir(p.GoFiles[0])
	}
	return ""
}
