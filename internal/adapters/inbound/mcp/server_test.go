package mcp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcpadapter "github.com/openkraft/fixloop/internal/adapters/inbound/mcp"
)

func TestNewServer(t *testing.T) {
	s := mcpadapter.NewServer(".", "test")
	require.NotNil(t, s)
}

func TestServerHasTools(t *testing.T) {
	s := mcpadapter.NewServer(".", "test")
	require.NotNil(t, s)

	tools := s.ListTools()
	require.NotNil(t, tools)

	expectedTools := []string{
		"fixloop_fix",
		"fixloop_list_analyzers",
		"fixloop_fix_order",
	}

	for _, name := range expectedTools {
		_, exists := tools[name]
		assert.True(t, exists, "tool %q should be registered", name)
	}

	assert.Len(t, tools, len(expectedTools), "should have exactly %d tools", len(expectedTools))
}
