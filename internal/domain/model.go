package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Severity orders diagnostics from least to most important.
type Severity int

const (
	SeverityHidden Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

var severityNames = [...]string{"hidden", "info", "warning", "error"}

func (s Severity) String() string {
	if s >= 0 && int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "unknown"
}

// ParseSeverity converts a case-insensitive severity name.
func ParseSeverity(name string) (Severity, error) {
	for i, n := range severityNames {
		if strings.EqualFold(name, n) {
			return Severity(i), nil
		}
	}
	return 0, fmt.Errorf("unknown severity %q (valid: hidden, info, warning, error)", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	v, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Span is a byte range inside a file together with its 1-based line/column bounds.
type Span struct {
	Start       int `json:"start"`
	End         int `json:"end"`
	StartLine   int `json:"start_line"`
	StartColumn int `json:"start_column"`
	EndLine     int `json:"end_line"`
	EndColumn   int `json:"end_column"`
}

// Location identifies where a diagnostic was reported.
type Location struct {
	File string `json:"file"`
	Span Span   `json:"span"`
}

func (l Location) String() string {
	if l.File == "" {
		return "<no location>"
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Span.StartLine, l.Span.StartColumn)
}

// TagCompiler marks descriptors whose diagnostics come from the compiler rather
// than from an analyzer.
const TagCompiler = "Compiler"

// Descriptor is the static metadata of a defect class.
type Descriptor struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Category        string   `json:"category,omitempty"`
	DefaultSeverity Severity `json:"default_severity"`
	CustomTags      []string `json:"custom_tags,omitempty"`
}

// IsCompiler reports whether the descriptor belongs to a compiler diagnostic.
func (d Descriptor) IsCompiler() bool {
	return slices.Contains(d.CustomTags, TagCompiler)
}

// TextEdit replaces the byte range [Start, End) of File with NewText.
type TextEdit struct {
	File    string `json:"file"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	NewText string `json:"new_text"`
}

// SuggestedFix is a fix proposal attached to a diagnostic by the analyzer
// that reported it.
type SuggestedFix struct {
	Message string     `json:"message"`
	Edits   []TextEdit `json:"edits"`
}

// Diagnostic is one reported occurrence of a descriptor. Values are produced
// fresh by every analysis and are never mutated.
type Diagnostic struct {
	ID         string         `json:"id"`
	Severity   Severity       `json:"severity"`
	Location   Location       `json:"location"`
	Message    string         `json:"message"`
	Descriptor Descriptor     `json:"-"`
	Fixes      []SuggestedFix `json:"-"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s %s: %s", d.Location, d.Severity, d.ID, d.Message)
}

// Project is a compilation unit of the solution graph.
type Project struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Dir     string   `json:"dir"`
	Imports []string `json:"imports,omitempty"`
}
