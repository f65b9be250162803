// Package runner assembles a fix run from its adapters. The CLI and the MCP
// server both drive fixes through it.
package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/sahilm/fuzzy"

	"github.com/openkraft/fixloop/internal/adapters/outbound/analysis"
	"github.com/openkraft/fixloop/internal/adapters/outbound/config"
	"github.com/openkraft/fixloop/internal/adapters/outbound/fixers"
	"github.com/openkraft/fixloop/internal/adapters/outbound/gitinfo"
	"github.com/openkraft/fixloop/internal/adapters/outbound/workspace"
	"github.com/openkraft/fixloop/internal/application"
	"github.com/openkraft/fixloop/internal/domain"
	"github.com/openkraft/fixloop/internal/logging"
)

// FixerName is the name of the built-in fixer in fixer_map entries.
const FixerName = "fixloop.suggested"

// Builtins returns the analyzers and fixers shipped with fixloop.
func Builtins() ([]domain.Analyzer, []domain.Fixer) {
	as := analysis.Builtins()
	return analysis.Ports(as), []domain.Fixer{fixers.New(FixerName, analysis.IDs(as)...)}
}

// Options controls one run.
type Options struct {
	Path string
	// ConfigFile overrides the configuration lookup in Path.
	ConfigFile string
	// Override adjusts the loaded configuration, e.g. from flags.
	Override     func(*domain.FixConfig)
	DryRun       bool
	RequireClean bool
}

// LoadConfig reads the configuration for the module at root and applies
// override. The result is validated.
func LoadConfig(root, file string, override func(*domain.FixConfig)) (domain.FixConfig, error) {
	loader := config.New()
	var (
		cfg domain.FixConfig
		err error
	)
	if file != "" {
		cfg, err = loader.LoadFile(file)
	} else {
		cfg, err = loader.Load(root)
	}
	if err != nil {
		return domain.FixConfig{}, err
	}
	if override != nil {
		override(&cfg)
		if err := cfg.Validate(); err != nil {
			return domain.FixConfig{}, fmt.Errorf("invalid options: %w", err)
		}
	}
	return cfg, nil
}

// Run fixes the module at opts.Path and, unless DryRun is set, writes the
// changed files back.
func Run(ctx context.Context, opts Options) (*domain.SolutionFixResult, error) {
	log := logging.FromContext(ctx)

	path := opts.Path
	if path == "" {
		path = "."
	}
	root, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := LoadConfig(root, opts.ConfigFile, opts.Override)
	if err != nil {
		return nil, err
	}

	analyzers, fxs := Builtins()
	for _, u := range UnknownIDs(cfg, KnownIDs(analyzers)) {
		if u.Suggestion != "" {
			log.Warn("unknown diagnostic id", "id", u.ID, "did_you_mean", u.Suggestion)
		} else {
			log.Warn("unknown diagnostic id", "id", u.ID)
		}
	}

	git := gitinfo.New()
	var commit string
	if git.IsGitRepo(root) {
		if opts.RequireClean && !opts.DryRun {
			if err := git.RequireClean(root); err != nil {
				return nil, err
			}
		}
		if commit, err = git.CommitHash(root); err != nil {
			log.Debug("no commit hash", "err", err)
		}
	}

	ws, err := workspace.New(root)
	if err != nil {
		return nil, err
	}
	result, err := application.NewFixService(ws, analyzers, fxs, cfg).FixSolution(ctx)
	if err != nil {
		return nil, err
	}
	result.Root = root
	result.CommitHash = commit
	result.Changed = ws.Changed()

	if opts.DryRun {
		log.Info("dry run: nothing written", "changed", len(result.Changed))
		return result, nil
	}
	if err := ws.Flush(); err != nil {
		return result, err
	}
	log.Info("wrote changes", "files", len(result.Changed))
	return result, nil
}

// KnownIDs returns every id a configuration may refer to.
func KnownIDs(analyzers []domain.Analyzer) []string {
	ids := workspace.CompilerIDs()
	for _, a := range analyzers {
		for _, d := range a.SupportedDescriptors() {
			ids = append(ids, d.ID)
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

// Unknown is a configured id no analyzer reports.
type Unknown struct {
	ID         string
	Suggestion string
}

// UnknownIDs lists configured ids missing from known, each with the closest
// known id when one matches.
func UnknownIDs(cfg domain.FixConfig, known []string) []Unknown {
	var out []Unknown
	for _, id := range cfg.KnownIDs() {
		if slices.Contains(known, id) {
			continue
		}
		u := Unknown{ID: id}
		if matches := fuzzy.Find(id, known); len(matches) > 0 {
			u.Suggestion = matches[0].Str
		}
		out = append(out, u)
	}
	return out
}
