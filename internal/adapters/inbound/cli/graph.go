package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/openkraft/fixloop/internal/adapters/inbound/runner"
	"github.com/openkraft/fixloop/internal/adapters/outbound/tui"
	"github.com/openkraft/fixloop/internal/adapters/outbound/workspace"
	"github.com/openkraft/fixloop/internal/domain"
)

func newGraphCmd() *cobra.Command {
	var (
		jsonOutput bool
		configFile string
	)

	cmd := &cobra.Command{
		Use:   "graph [path]",
		Short: "Show the order in which packages are fixed",
		Long:  "Load the module's import graph and list its packages in the dependency order a fix run visits them, with their coupling and whether the configuration skips them.",
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

			ws, err := workspace.New(absPath)
			if err != nil {
				return err
			}
			projects, err := ws.Projects(cmd.Context())
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}
			order, err := domain.TopoSort(projects)
			if err != nil {
				return err
			}

			if jsonOutput {
				return renderGraphJSON(cmd, order, ws.ModulePath(), cfg)
			}

			fmt.Fprint(cmd.OutOrStdout(), tui.RenderGraph(order, ws.ModulePath(), cfg))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the fix order as JSON")
	cmd.Flags().StringVar(&configFile, "config", "", "Config file (defaults to .fixloop.yaml or .fixloop.toml in the module)")
	return cmd
}

type graphJSONOutput struct {
	ModulePath string        `json:"module_path"`
	Packages   int           `json:"packages"`
	Edges      int           `json:"edges"`
	Skipped    int           `json:"skipped"`
	Order      []packageJSON `json:"order"`
}

type packageJSON struct {
	Package string   `json:"package"`
	Dir     string   `json:"dir"`
	Ca      int      `json:"ca"`
	Ce      int      `json:"ce"`
	Imports []string `json:"imports"`
	Skipped bool     `json:"skipped"`
}

func renderGraphJSON(cmd *cobra.Command, order []domain.Project, modulePath string, cfg domain.FixConfig) error {
	importedBy := make(map[string]int, len(order))
	for _, p := range order {
		for _, imp := range p.Imports {
			importedBy[imp]++
		}
	}

	out := graphJSONOutput{
		ModulePath: modulePath,
		Packages:   len(order),
		Order:      make([]packageJSON, 0, len(order)),
	}
	for _, p := range order {
		imports := p.Imports
		if imports == nil {
			imports = []string{}
		}
		skipped := !cfg.IncludesProject(p.ID)
		if skipped {
			out.Skipped++
		}
		out.Edges += len(p.Imports)
		out.Order = append(out.Order, packageJSON{
			Package: p.ID,
			Dir:     p.Dir,
			Ca:      importedBy[p.ID],
			Ce:      len(p.Imports),
			Imports: imports,
			Skipped: skipped,
		})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
