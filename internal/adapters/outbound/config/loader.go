package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/openkraft/fixloop/internal/domain"
)

// FileNames are the configuration files looked up in the module root, in
// order of precedence.
var FileNames = []string{".fixloop.yaml", ".fixloop.yml", ".fixloop.toml"}

// Loader reads fixloop configuration files.
type Loader struct{}

// New creates a Loader.
func New() *Loader { return &Loader{} }

// Load reads the first configuration file found in dir.
// Returns DefaultConfig if there is none.
func (l *Loader) Load(dir string) (domain.FixConfig, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return domain.FixConfig{}, err
		}
		return l.LoadFile(path)
	}
	return domain.DefaultConfig(), nil
}

// LoadFile reads one configuration file. The format follows the extension.
// Keys the file leaves out keep their default value.
func (l *Loader) LoadFile(path string) (domain.FixConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.FixConfig{}, err
	}
	name := filepath.Base(path)

	cfg := domain.DefaultConfig()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = decodeYAML(data, &cfg)
	case ".toml":
		err = decodeTOML(data, &cfg)
	default:
		return domain.FixConfig{}, fmt.Errorf("%s: unsupported config format %q", name, ext)
	}
	if err != nil {
		return domain.FixConfig{}, fmt.Errorf("parsing %s: %w", name, err)
	}

	// Validate the file on its own: typos must not be hidden by flags.
	if err := cfg.Validate(); err != nil {
		return domain.FixConfig{}, fmt.Errorf("invalid %s: %w", name, err)
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *domain.FixConfig) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func decodeTOML(data []byte, cfg *domain.FixConfig) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// Merge overlays command-line lists on top of a loaded config. Ignored ids and
// excluded projects add to the file; supported ids and included projects
// replace it. Scalars are applied by the caller since their zero value is
// meaningful.
func Merge(base, override domain.FixConfig) domain.FixConfig {
	result := base
	if len(override.IgnoredDiagnosticIDs) > 0 {
		result.IgnoredDiagnosticIDs = append(append([]string(nil), base.IgnoredDiagnosticIDs...), override.IgnoredDiagnosticIDs...)
	}
	if len(override.SupportedDiagnosticIDs) > 0 {
		result.SupportedDiagnosticIDs = override.SupportedDiagnosticIDs
	}
	if len(override.Projects.Include) > 0 {
		result.Projects.Include = override.Projects.Include
	}
	if len(override.Projects.Exclude) > 0 {
		result.Projects.Exclude = append(append([]string(nil), base.Projects.Exclude...), override.Projects.Exclude...)
	}
	return result
}
