package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkraft/fixloop/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := domain.DefaultConfig()
	assert.Equal(t, domain.SeverityInfo, cfg.Severity)
	assert.Zero(t, cfg.BatchSize)
	assert.Zero(t, cfg.MaxIterations)
	require.NoError(t, cfg.Validate())
}

func TestIsSupportedDiagnostic(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Severity = domain.SeverityWarning
	cfg.IgnoredDiagnosticIDs = []string{"ignored"}

	assert.True(t, cfg.IsSupportedDiagnostic(domain.Diagnostic{ID: "a", Severity: domain.SeverityWarning}))
	assert.False(t, cfg.IsSupportedDiagnostic(domain.Diagnostic{ID: "a", Severity: domain.SeverityInfo}))
	assert.False(t, cfg.IsSupportedDiagnostic(domain.Diagnostic{ID: "ignored", Severity: domain.SeverityError}))

	cfg.SupportedDiagnosticIDs = []string{"only"}
	assert.False(t, cfg.IsSupportedDiagnostic(domain.Diagnostic{ID: "a", Severity: domain.SeverityError}))
	assert.True(t, cfg.IsSupportedDiagnostic(domain.Diagnostic{ID: "only", Severity: domain.SeverityError}))
}

func TestIncludesProject(t *testing.T) {
	cfg := domain.DefaultConfig()
	assert.True(t, cfg.IncludesProject("example.com/m/internal/a"))

	cfg.Projects.Exclude = []string{"example.com/m/internal/*"}
	assert.False(t, cfg.IncludesProject("example.com/m/internal/a"))
	assert.True(t, cfg.IncludesProject("example.com/m/cmd"))

	cfg.Projects.Include = []string{"example.com/m/pkg/*"}
	assert.False(t, cfg.IncludesProject("example.com/m/cmd"))
	assert.True(t, cfg.IncludesProject("example.com/m/pkg/util"))
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *domain.FixConfig)
		errMsg string
	}{
		{"bad severity", func(c *domain.FixConfig) { c.Severity = 9 }, "unknown severity"},
		{"ignored and supported", func(c *domain.FixConfig) {
			c.IgnoredDiagnosticIDs = []string{"a"}
			c.SupportedDiagnosticIDs = []string{"a"}
		}, "both ignored and supported"},
		{"empty id", func(c *domain.FixConfig) { c.FixableOneByOne = []string{""} }, "fixable_one_by_one[0]"},
		{"empty fixer", func(c *domain.FixConfig) { c.FixerMap = map[string]string{"a": ""} }, "fixer_map"},
		{"bad glob", func(c *domain.FixConfig) { c.Projects.Include = []string{"["} }, "invalid project pattern"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestKnownIDs(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.IgnoredDiagnosticIDs = []string{"b"}
	cfg.FixerMap = map[string]string{"a": "f"}
	cfg.FixMap = map[string]string{"a": "k", "c": "k"}
	assert.Equal(t, []string{"a", "b", "c"}, cfg.KnownIDs())
}
