package evolution

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-widgetschema/pkg/schema"
)

// MigrationSpec is the declarative form of a migration as written in an
// evolution file. Steps run in field order: type renames, key renames, then
// defaults.
type MigrationSpec struct {
	RenameTypes map[string]string `yaml:"renameTypes,omitempty"`
	RenameKeys  map[string]string `yaml:"renameKeys,omitempty"`
	SetDefaults map[string]any    `yaml:"setDefaults,omitempty"`
}

type configFile struct {
	CurrentVersion    string                   `yaml:"currentVersion"`
	SupportedVersions []string                 `yaml:"supportedVersions"`
	Migrations        map[string]MigrationSpec `yaml:"migrations"`
	Deprecations      map[string]Deprecation   `yaml:"deprecations"`
}

// LoadConfigFile reads an evolution YAML file.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("evolution: read %s: %w", path, err)
	}
	cfg, err := LoadConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%w (file %s)", err, path)
	}
	return cfg, nil
}

// LoadConfig parses an evolution YAML document into a validated Config.
func LoadConfig(data []byte) (Config, error) {
	var file configFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Config{}, fmt.Errorf("evolution: parse config: %w", err)
	}

	cfg := Config{
		CurrentVersion:    file.CurrentVersion,
		SupportedVersions: file.SupportedVersions,
		Deprecations:      file.Deprecations,
	}
	if len(file.Migrations) > 0 {
		cfg.Migrations = make(map[string]Migration, len(file.Migrations))
		for from, spec := range file.Migrations {
			cfg.Migrations[strings.TrimSpace(from)] = spec.Compile()
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Compile turns the declarative steps into a Migration.
func (s MigrationSpec) Compile() Migration {
	renameTypes := copyStrings(s.RenameTypes)
	renameKeys := copyStrings(s.RenameKeys)
	defaults, _ := schema.NormalizeYAML(s.SetDefaults).(map[string]any)

	return func(widget schema.WidgetSchema) (schema.WidgetSchema, error) {
		out := widget.Clone()
		if renamed, ok := renameTypes[out.Type]; ok && strings.TrimSpace(renamed) != "" {
			out.Type = renamed
		}
		if len(renameKeys) == 0 && len(defaults) == 0 {
			return out, nil
		}

		payload := schema.CloneMap(out.Payload())
		if payload == nil {
			payload = make(map[string]any)
		}
		for from, to := range renameKeys {
			value, ok := payload[from]
			if !ok {
				continue
			}
			if _, taken := payload[to]; taken {
				return widget, fmt.Errorf("rename %q to %q: target key already present", from, to)
			}
			delete(payload, from)
			payload[to] = value
		}
		for key, value := range defaults {
			if existing, ok := payload[key]; ok && existing != nil {
				continue
			}
			payload[key] = schema.CloneValue(value)
		}
		return out.WithPayload(payload), nil
	}
}

func copyStrings(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
