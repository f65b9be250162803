package mcp

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates an MCP server exposing the fix engine for the module at
// projectPath.
func NewServer(projectPath, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"fixloop",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, projectPath)
	registerResources(s, projectPath)

	return s
}
