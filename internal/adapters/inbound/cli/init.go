package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/openkraft/fixloop/internal/adapters/outbound/config"
	"github.com/openkraft/fixloop/internal/domain"
)

func newInitCmd() *cobra.Command {
	var (
		severity string
		force    bool
	)

	configFileName := config.FileNames[0]

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Generate a " + configFileName + " configuration file",
		Long:  "Create a " + configFileName + " with the default settings and every option documented.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(projectPath(args))
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			dest := filepath.Join(absPath, configFileName)

			if !force {
				if _, err := os.Stat(dest); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", configFileName)
				}
			}

			sev, err := domain.ParseSeverity(severity)
			if err != nil {
				return err
			}

			if err := os.WriteFile(dest, []byte(generateConfig(sev)), 0o644); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", configFileName)
			return nil
		},
	}

	cmd.Flags().StringVar(&severity, "severity", "info", "Minimum severity to fix (hidden, info, warning, error)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing "+configFileName)

	return cmd
}

func generateConfig(severity domain.Severity) string {
	cfg := domain.DefaultConfig()
	cfg.Severity = severity

	return fmt.Sprintf(`# fixloop configuration
# See: https://github.com/openkraft/fixloop

# Diagnostics below this severity are left alone.
severity: %s

# Diagnostics fixed per iteration of one id; 0 fixes all of them at once.
batch_size: %d

# Iterations per package before giving up; 0 means no limit.
max_iterations: %d

# Keep fixing packages that do not compile.
ignore_compiler_errors: %t

# ignored_diagnostic_ids:
#   - initialism

# supported_diagnostic_ids:
#   - assign

# ignored_compiler_diagnostic_ids:
#   - compile/UnusedImport

# fixable_one_by_one:
#   - timeformat

# fixer_map:
#   assign: fixloop.suggested

# fix_map:
#   assign: assign.0

# projects:
#   include:
#     - example.com/m/internal/*
#   exclude:
#     - example.com/m/internal/generated
`, cfg.Severity, cfg.BatchSize, cfg.MaxIterations, cfg.IgnoreCompilerErrors)
}
