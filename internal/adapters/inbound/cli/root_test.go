package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkraft/fixloop/internal/adapters/inbound/cli"
)

// run executes the root command and returns what it wrote to stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := cli.NewRootCmdForTest()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeModule(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	files["go.mod"] = "module example.com/m\n\ngo 1.22\n"
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestVersionCmd(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "fixloop dev")
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := cli.NewRootCmdForTest()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"version", "fix", "analyzers", "graph", "init", "mcp"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_VerbosityFlags(t *testing.T) {
	root := cli.NewRootCmdForTest()
	root.SetArgs([]string{"-vv", "version"})
	root.SetOut(new(bytes.Buffer))
	var sub *cobra.Command
	root.PersistentPostRun = func(cmd *cobra.Command, _ []string) { sub = cmd }
	require.NoError(t, root.Execute())

	require.NotNil(t, sub)
	v, err := root.PersistentFlags().GetCount("verbose")
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.NotNil(t, sub.Context())
}
