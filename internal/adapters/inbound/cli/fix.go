package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openkraft/fixloop/internal/adapters/inbound/runner"
	"github.com/openkraft/fixloop/internal/adapters/outbound/config"
	"github.com/openkraft/fixloop/internal/adapters/outbound/tui"
	"github.com/openkraft/fixloop/internal/domain"
)

var (
	errHalted       = errors.New("fix run halted on a compiler error")
	errNotConverged = errors.New("some packages did not converge")
)

func newFixCmd() *cobra.Command {
	var (
		dryRun         bool
		jsonOutput     bool
		requireClean   bool
		configFile     string
		severity       string
		batchSize      int
		maxIterations  int
		ignoreCompiler bool
		override       domain.FixConfig
	)

	cmd := &cobra.Command{
		Use:   "fix [path]",
		Short: "Apply analyzer fixes until the module converges",
		Long: "Analyze every package of the module in dependency order and apply the fixes analyzers suggest, " +
			"one diagnostic id at a time, until no fixable diagnostic is left. " +
			"Exits non-zero when a compiler error halts the run or a package loops without converging.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var minSeverity domain.Severity
			if cmd.Flags().Changed("severity") {
				s, err := domain.ParseSeverity(severity)
				if err != nil {
					return err
				}
				minSeverity = s
			}

			flags := cmd.Flags()
			result, err := runner.Run(cmd.Context(), runner.Options{
				Path:         projectPath(args),
				ConfigFile:   configFile,
				DryRun:       dryRun,
				RequireClean: requireClean,
				Override: func(cfg *domain.FixConfig) {
					*cfg = config.Merge(*cfg, override)
					if flags.Changed("severity") {
						cfg.Severity = minSeverity
					}
					if flags.Changed("batch-size") {
						cfg.BatchSize = batchSize
					}
					if flags.Changed("max-iterations") {
						cfg.MaxIterations = maxIterations
					}
					if flags.Changed("ignore-compiler-errors") {
						cfg.IgnoreCompilerErrors = ignoreCompiler
					}
				},
			})
			if err != nil {
				return fmt.Errorf("fix failed: %w", err)
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderSolution(result))
			}

			switch {
			case result.Halted:
				return errHalted
			case result.Failed():
				return errNotConverged
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute fixes without writing files")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVar(&requireClean, "require-clean", false, "Refuse to write into a git worktree with uncommitted changes")
	cmd.Flags().StringVar(&configFile, "config", "", "Config file (defaults to .fixloop.yaml or .fixloop.toml in the module)")
	cmd.Flags().StringVar(&severity, "severity", "info", "Minimum severity to fix (hidden, info, warning, error)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Maximum diagnostics fixed per iteration, 0 for no limit")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "Maximum iterations per package, 0 for no limit")
	cmd.Flags().BoolVar(&ignoreCompiler, "ignore-compiler-errors", false, "Keep fixing packages that do not compile")
	cmd.Flags().StringSliceVar(&override.IgnoredDiagnosticIDs, "ignore", nil, "Diagnostic ids to leave alone (added to the config)")
	cmd.Flags().StringSliceVar(&override.SupportedDiagnosticIDs, "only", nil, "Only fix these diagnostic ids (replaces the config)")
	cmd.Flags().StringSliceVar(&override.Projects.Include, "include-project", nil, "Package patterns to fix (replaces the config)")
	cmd.Flags().StringSliceVar(&override.Projects.Exclude, "exclude-project", nil, "Package patterns to skip (added to the config)")

	return cmd
}
