package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/openkraft/fixloop/internal/adapters/inbound/runner"
)

const (
	analyzersURI = "fixloop://analyzers"
	configURI    = "fixloop://config"
)

// registerResources registers all fixloop MCP resources on the given server.
func registerResources(s *server.MCPServer, projectPath string) {
	// 1. fixloop://analyzers - registered analyzers and fixers
	s.AddResource(
		mcplib.NewResource(
			analyzersURI,
			"Analyzers",
			mcplib.WithResourceDescription("Registered analyzers, their diagnostic ids and fixers"),
			mcplib.WithMIMEType("application/json"),
		),
		handleAnalyzersResource(projectPath),
	)

	// 2. fixloop://config - effective configuration
	s.AddResource(
		mcplib.NewResource(
			configURI,
			"Configuration",
			mcplib.WithResourceDescription("Effective fix configuration of the module, defaults included"),
			mcplib.WithMIMEType("application/json"),
		),
		handleConfigResource(projectPath),
	)
}

func handleAnalyzersResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		infos, err := catalog(projectPath)
		if err != nil {
			return nil, err
		}
		return jsonContents(analyzersURI, infos)
	}
}

func handleConfigResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		root, err := filepath.Abs(projectPath)
		if err != nil {
			return nil, fmt.Errorf("resolving path: %w", err)
		}
		cfg, err := runner.LoadConfig(root, "", nil)
		if err != nil {
			return nil, err
		}
		return jsonContents(configURI, cfg)
	}
}

func jsonContents(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
