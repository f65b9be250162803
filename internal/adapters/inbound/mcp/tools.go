package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/openkraft/fixloop/internal/adapters/inbound/runner"
	"github.com/openkraft/fixloop/internal/adapters/outbound/config"
	"github.com/openkraft/fixloop/internal/adapters/outbound/workspace"
	"github.com/openkraft/fixloop/internal/application"
	"github.com/openkraft/fixloop/internal/domain"
)

// registerTools registers all fixloop MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string) {
	// 1. fixloop_fix
	s.AddTool(
		mcplib.NewTool("fixloop_fix",
			mcplib.WithDescription("Run analyzers and apply their fixes until the module converges. Returns the per-package results as JSON."),
			mcplib.WithBoolean("dry_run", mcplib.Description("Compute fixes without writing files")),
			mcplib.WithString("severity", mcplib.Description("Minimum severity to fix: hidden, info, warning or error")),
			mcplib.WithString("only", mcplib.Description("Comma-separated diagnostic ids to fix, all others are left alone")),
			mcplib.WithString("ignore", mcplib.Description("Comma-separated diagnostic ids to leave alone")),
		),
		handleFix(projectPath),
	)

	// 2. fixloop_list_analyzers
	s.AddTool(
		mcplib.NewTool("fixloop_list_analyzers",
			mcplib.WithDescription("List the registered analyzers, their diagnostic ids and the fixers that handle them"),
		),
		handleListAnalyzers(projectPath),
	)

	// 3. fixloop_fix_order
	s.AddTool(
		mcplib.NewTool("fixloop_fix_order",
			mcplib.WithDescription("List the packages of the module in the order a fix run visits them"),
		),
		handleFixOrder(projectPath),
	)
}

func handleFix(projectPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		args := request.GetArguments()
		dryRun, _ := args["dry_run"].(bool)
		severity, _ := args["severity"].(string)
		only, _ := args["only"].(string)
		ignore, _ := args["ignore"].(string)

		var override domain.FixConfig
		var minSeverity *domain.Severity
		if severity != "" {
			s, err := domain.ParseSeverity(severity)
			if err != nil {
				return errorResult(err.Error()), nil
			}
			minSeverity = &s
		}
		override.SupportedDiagnosticIDs = splitList(only)
		override.IgnoredDiagnosticIDs = splitList(ignore)

		result, err := runner.Run(ctx, runner.Options{
			Path:   projectPath,
			DryRun: dryRun,
			Override: func(cfg *domain.FixConfig) {
				*cfg = config.Merge(*cfg, override)
				if minSeverity != nil {
					cfg.Severity = *minSeverity
				}
			},
		})
		if err != nil {
			return errorResult(fmt.Sprintf("fix failed: %v", err)), nil
		}
		return jsonResult(result)
	}
}

func handleListAnalyzers(projectPath string) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		infos, err := catalog(projectPath)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(infos)
	}
}

type fixOrderEntry struct {
	Package string   `json:"package"`
	Dir     string   `json:"dir"`
	Imports []string `json:"imports,omitempty"`
	Skipped bool     `json:"skipped"`
}

func handleFixOrder(projectPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		root, err := filepath.Abs(projectPath)
		if err != nil {
			return errorResult(fmt.Sprintf("resolving path: %v", err)), nil
		}
		cfg, err := runner.LoadConfig(root, "", nil)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		ws, err := workspace.New(root)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		projects, err := ws.Projects(ctx)
		if err != nil {
			return errorResult(fmt.Sprintf("loading packages failed: %v", err)), nil
		}
		order, err := domain.TopoSort(projects)
		if err != nil {
			return errorResult(err.Error()), nil
		}

		out := make([]fixOrderEntry, 0, len(order))
		for _, p := range order {
			out = append(out, fixOrderEntry{
				Package: p.ID,
				Dir:     p.Dir,
				Imports: p.Imports,
				Skipped: !cfg.IncludesProject(p.ID),
			})
		}
		return jsonResult(out)
	}
}

// catalog describes the built-in analyzers under the configuration found at
// projectPath.
func catalog(projectPath string) ([]domain.AnalyzerInfo, error) {
	root, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := runner.LoadConfig(root, "", nil)
	if err != nil {
		return nil, err
	}
	analyzers, fixers := runner.Builtins()
	return application.Catalog(analyzers, fixers, cfg), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// jsonResult marshals v to indented JSON and returns it as a text content result.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns an error result with IsError set.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
