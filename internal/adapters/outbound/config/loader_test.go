package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/openkraft/fixloop/internal/adapters/outbound/config"
	"github.com/openkraft/fixloop/internal/domain"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoader_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := appconfig.New().Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}

func TestLoader_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".fixloop.yaml", `
severity: warning
ignored_diagnostic_ids: [timeformat]
fixer_map:
  assign: fixloop.suggested
fix_map:
  stringintconv: stringintconv.0
batch_size: 25
projects:
  exclude: ["example.com/m/internal/gen/*"]
`)

	cfg, err := appconfig.New().Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.SeverityWarning, cfg.Severity)
	assert.Equal(t, []string{"timeformat"}, cfg.IgnoredDiagnosticIDs)
	assert.Equal(t, "fixloop.suggested", cfg.FixerMap["assign"])
	assert.Equal(t, "stringintconv.0", cfg.FixMap["stringintconv"])
	assert.Equal(t, 25, cfg.BatchSize)
	assert.Zero(t, cfg.MaxIterations)
	assert.Equal(t, []string{"example.com/m/internal/gen/*"}, cfg.Projects.Exclude)
}

func TestLoader_OmittedSeverityKeepsDefault(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".fixloop.yaml", "batch_size: 3\n")

	cfg, err := appconfig.New().Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.SeverityInfo, cfg.Severity)
}

func TestLoader_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".fixloop.yaml", "")

	cfg, err := appconfig.New().Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}

func TestLoader_ValidTOML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".fixloop.toml", `
severity = "error"
supported_diagnostic_ids = ["assign", "initialism"]
max_iterations = 5

[fixer_map]
assign = "fixloop.suggested"

[projects]
include = ["example.com/m/*"]
`)

	cfg, err := appconfig.New().Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.SeverityError, cfg.Severity)
	assert.Equal(t, []string{"assign", "initialism"}, cfg.SupportedDiagnosticIDs)
	assert.Equal(t, 5, cfg.MaxIterations)
	assert.Equal(t, "fixloop.suggested", cfg.FixerMap["assign"])
	assert.Equal(t, []string{"example.com/m/*"}, cfg.Projects.Include)
}

func TestLoader_YAMLWinsOverTOML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".fixloop.yaml", "batch_size: 1\n")
	writeConfig(t, dir, ".fixloop.toml", "batch_size = 2\n")

	cfg, err := appconfig.New().Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.BatchSize)
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"invalid yaml", ".fixloop.yaml", "{{{invalid yaml", "parsing .fixloop.yaml"},
		{"unknown yaml key", ".fixloop.yaml", "batchsize: 3\n", "parsing .fixloop.yaml"},
		{"unknown severity", ".fixloop.yaml", "severity: loud\n", "unknown severity"},
		{"unknown toml key", ".fixloop.toml", "batchsize = 3\n", "unknown keys: batchsize"},
		{"invalid config", ".fixloop.yaml", "ignored_diagnostic_ids: [assign]\nsupported_diagnostic_ids: [assign]\n", "invalid .fixloop.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.file, tt.content)

			_, err := appconfig.New().Load(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFile_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "fixloop.json", "{}")

	_, err := appconfig.New().LoadFile(filepath.Join(dir, "fixloop.json"))
	assert.ErrorContains(t, err, `unsupported config format ".json"`)
}

func TestMerge(t *testing.T) {
	base := domain.DefaultConfig()
	base.IgnoredDiagnosticIDs = []string{"timeformat"}
	base.SupportedDiagnosticIDs = []string{"assign", "initialism"}
	base.Projects.Exclude = []string{"a/*"}

	got := appconfig.Merge(base, domain.FixConfig{
		IgnoredDiagnosticIDs:   []string{"sigchanyzer"},
		SupportedDiagnosticIDs: []string{"assign"},
		Projects:               domain.ProjectFilter{Include: []string{"b/*"}, Exclude: []string{"c/*"}},
	})

	assert.Equal(t, []string{"timeformat", "sigchanyzer"}, got.IgnoredDiagnosticIDs)
	assert.Equal(t, []string{"assign"}, got.SupportedDiagnosticIDs)
	assert.Equal(t, []string{"b/*"}, got.Projects.Include)
	assert.Equal(t, []string{"a/*", "c/*"}, got.Projects.Exclude)
	assert.Equal(t, []string{"timeformat"}, base.IgnoredDiagnosticIDs)
}
