package cli_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkraft/fixloop/internal/domain"
)

const selfAssign = `package p

func bump(n int) int {
	n = n
	return n + 1
}
`

func TestFixCmd_InvalidSeverity(t *testing.T) {
	_, _, err := run(t, "fix", t.TempDir(), "--severity", "loud")
	assert.Error(t, err)
}

func TestFixCmd_ConflictingFlags(t *testing.T) {
	_, _, err := run(t, "fix", t.TempDir(), "--only", "assign", "--ignore", "assign")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both ignored and supported")
}

func TestFixCmd_DryRunJSON(t *testing.T) {
	if testing.Short() {
		t.Skip("loads packages with the go command")
	}
	dir := writeModule(t, map[string]string{"p.go": selfAssign})

	out, _, err := run(t, "-q", "fix", dir, "--dry-run", "--json", "--only", "assign")
	require.NoError(t, err)

	var result domain.SolutionFixResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Projects, 1)
	assert.Equal(t, domain.ProjectSuccess, result.Projects[0].Kind)
	assert.Equal(t, 1, result.FixedCount())
	assert.Equal(t, []string{filepath.Join(result.Root, "p.go")}, result.Changed)

	onDisk, err := os.ReadFile(filepath.Join(dir, "p.go"))
	require.NoError(t, err)
	assert.Equal(t, selfAssign, string(onDisk))
}

func TestFixCmd_WritesAndRenders(t *testing.T) {
	if testing.Short() {
		t.Skip("loads packages with the go command")
	}
	dir := writeModule(t, map[string]string{"p.go": selfAssign})

	out, _, err := run(t, "-q", "fix", dir, "--only", "assign")
	require.NoError(t, err)
	assert.Contains(t, out, "fixloop")
	assert.Contains(t, out, "Done.")

	onDisk, err := os.ReadFile(filepath.Join(dir, "p.go"))
	require.NoError(t, err)
	assert.NotContains(t, string(onDisk), "n = n")
}

func TestFixCmd_CompilerErrorFails(t *testing.T) {
	if testing.Short() {
		t.Skip("loads packages with the go command")
	}
	dir := writeModule(t, map[string]string{
		"p.go": "package p\n\nfunc f() int {\n\tx := 1\n\tx = x\n\treturn y\n}\n",
	})

	out, _, err := run(t, "-q", "fix", dir, "--dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compiler error")
	assert.Contains(t, out, "Run halted on a compiler error.")
}
