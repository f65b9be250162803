package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/openkraft/fixloop/internal/adapters/inbound/runner"
	"github.com/openkraft/fixloop/internal/adapters/outbound/tui"
	"github.com/openkraft/fixloop/internal/application"
)

func newAnalyzersCmd() *cobra.Command {
	var (
		jsonOutput bool
		configFile string
	)

	cmd := &cobra.Command{
		Use:   "analyzers [path]",
		Short: "List analyzers and the fixers that handle them",
		Long:  "List every built-in analyzer with its diagnostic id, default severity and fixers, and whether the module's configuration enables it.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(projectPath(args))
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			cfg, err := runner.LoadConfig(absPath, configFile, nil)
			if err != nil {
				return err
			}

			analyzers, fixers := runner.Builtins()
			infos := application.Catalog(analyzers, fixers, cfg)

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderAnalyzers(infos))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&configFile, "config", "", "Config file (defaults to .fixloop.yaml or .fixloop.toml in the module)")

	return cmd
}
