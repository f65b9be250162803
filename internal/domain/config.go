package domain

import (
	"fmt"
	"path"
	"slices"
)

// ProjectFilter selects projects by glob patterns over project ids.
type ProjectFilter struct {
	Include []string `yaml:"include" toml:"include" json:"include,omitempty"`
	Exclude []string `yaml:"exclude" toml:"exclude" json:"exclude,omitempty"`
}

// FixConfig holds engine configuration loaded from .fixloop.yaml or .fixloop.toml.
type FixConfig struct {
	Severity                     Severity          `yaml:"severity"                        toml:"severity"                        json:"severity"`
	IgnoredDiagnosticIDs         []string          `yaml:"ignored_diagnostic_ids"          toml:"ignored_diagnostic_ids"          json:"ignored_diagnostic_ids,omitempty"`
	SupportedDiagnosticIDs       []string          `yaml:"supported_diagnostic_ids"        toml:"supported_diagnostic_ids"        json:"supported_diagnostic_ids,omitempty"`
	IgnoredCompilerDiagnosticIDs []string          `yaml:"ignored_compiler_diagnostic_ids" toml:"ignored_compiler_diagnostic_ids" json:"ignored_compiler_diagnostic_ids,omitempty"`
	IgnoreCompilerErrors         bool              `yaml:"ignore_compiler_errors"          toml:"ignore_compiler_errors"          json:"ignore_compiler_errors"`
	FixerMap                     map[string]string `yaml:"fixer_map"                       toml:"fixer_map"                       json:"fixer_map,omitempty"`
	FixMap                       map[string]string `yaml:"fix_map"                         toml:"fix_map"                         json:"fix_map,omitempty"`
	FixableOneByOne              []string          `yaml:"fixable_one_by_one"              toml:"fixable_one_by_one"              json:"fixable_one_by_one,omitempty"`
	BatchSize                    int               `yaml:"batch_size"                      toml:"batch_size"                      json:"batch_size"`
	MaxIterations                int               `yaml:"max_iterations"                  toml:"max_iterations"                  json:"max_iterations"`
	Projects                     ProjectFilter     `yaml:"projects"                        toml:"projects"                        json:"projects"`
}

// DefaultConfig fixes everything at info severity and above, with no batch or
// iteration limit.
func DefaultConfig() FixConfig {
	return FixConfig{Severity: SeverityInfo}
}

// IsSupportedDiagnostic reports whether d passes the severity threshold and
// the id allow/deny lists.
func (c FixConfig) IsSupportedDiagnostic(d Diagnostic) bool {
	return d.Severity >= c.Severity && c.IsSupportedID(d.ID)
}

// IsSupportedID applies the allow/deny lists only.
func (c FixConfig) IsSupportedID(id string) bool {
	if slices.Contains(c.IgnoredDiagnosticIDs, id) {
		return false
	}
	return len(c.SupportedDiagnosticIDs) == 0 || slices.Contains(c.SupportedDiagnosticIDs, id)
}

// IsIgnoredCompilerID reports whether a compiler diagnostic id never blocks fixing.
func (c FixConfig) IsIgnoredCompilerID(id string) bool {
	return slices.Contains(c.IgnoredCompilerDiagnosticIDs, id)
}

// IsFixableOneByOne reports whether id may be fixed one occurrence at a time
// without a batch provider.
func (c FixConfig) IsFixableOneByOne(id string) bool {
	return slices.Contains(c.FixableOneByOne, id)
}

// IncludesProject applies the project filter. Exclusion wins over inclusion.
func (c FixConfig) IncludesProject(id string) bool {
	for _, pattern := range c.Projects.Exclude {
		if ok, _ := path.Match(pattern, id); ok {
			return false
		}
	}
	if len(c.Projects.Include) == 0 {
		return true
	}
	for _, pattern := range c.Projects.Include {
		if ok, _ := path.Match(pattern, id); ok {
			return true
		}
	}
	return false
}

// Validate checks the config for invalid values and returns a descriptive error.
func (c FixConfig) Validate() error {
	// 1. severity must be a known level
	if c.Severity < SeverityHidden || c.Severity > SeverityError {
		return fmt.Errorf("unknown severity %d", c.Severity)
	}

	// 2. an id cannot be both ignored and explicitly supported
	for _, id := range c.IgnoredDiagnosticIDs {
		if slices.Contains(c.SupportedDiagnosticIDs, id) {
			return fmt.Errorf("diagnostic %q is both ignored and supported", id)
		}
	}

	// 3. ids must not be empty
	lists := map[string][]string{
		"ignored_diagnostic_ids":          c.IgnoredDiagnosticIDs,
		"supported_diagnostic_ids":        c.SupportedDiagnosticIDs,
		"ignored_compiler_diagnostic_ids": c.IgnoredCompilerDiagnosticIDs,
		"fixable_one_by_one":              c.FixableOneByOne,
	}
	for name, ids := range lists {
		for i, id := range ids {
			if id == "" {
				return fmt.Errorf("%s[%d] must not be empty", name, i)
			}
		}
	}

	// 4. map entries need both sides
	maps := map[string]map[string]string{"fixer_map": c.FixerMap, "fix_map": c.FixMap}
	for name, m := range maps {
		for k, v := range m {
			if k == "" || v == "" {
				return fmt.Errorf("%s entry %q=%q must have a diagnostic id and a value", name, k, v)
			}
		}
	}

	// 5. project patterns must be valid globs
	for _, pattern := range slices.Concat(c.Projects.Include, c.Projects.Exclude) {
		if _, err := path.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid project pattern %q: %w", pattern, err)
		}
	}

	return nil
}

// KnownIDs returns every diagnostic id the configuration refers to.
func (c FixConfig) KnownIDs() []string {
	ids := slices.Concat(c.IgnoredDiagnosticIDs, c.SupportedDiagnosticIDs, c.FixableOneByOne)
	for id := range c.FixerMap {
		ids = append(ids, id)
	}
	for id := range c.FixMap {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}
