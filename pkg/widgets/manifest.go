package widgets

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-widgetschema/pkg/contract"
	"github.com/goliatone/go-widgetschema/pkg/registry"
	"github.com/goliatone/go-widgetschema/pkg/schema"
)

// ManifestWidget is one widget declaration inside a manifest document.
type ManifestWidget struct {
	ID               string                `json:"id" yaml:"id"`
	Capabilities     registry.Capabilities `json:"capabilities" yaml:"capabilities"`
	Required         []string              `json:"required" yaml:"required"`
	FallbackWidgetID string                `json:"fallbackWidgetId" yaml:"fallbackWidgetId"`
	JSONSchema       map[string]any        `json:"jsonSchema" yaml:"jsonSchema"`
}

type manifestDocument struct {
	Widgets []ManifestWidget `json:"widgets" yaml:"widgets"`
}

// LoadManifest walks fsys and builds registrations from every JSON/YAML
// manifest found. Files are visited in lexical order; an ID declared twice is
// an error.
func LoadManifest(fsys fs.FS) ([]registry.Registration, error) {
	if fsys == nil {
		return nil, nil
	}

	var paths []string
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isManifestFile(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var out []registry.Registration
	seen := make(map[string]string)
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("widgets: read %s: %w", path, err)
		}
		doc, err := parseManifest(data, path)
		if err != nil {
			return nil, err
		}
		for _, widget := range doc.Widgets {
			id := strings.TrimSpace(widget.ID)
			if id == "" {
				return nil, fmt.Errorf("widgets: file %s declares a widget without id", path)
			}
			if prev, exists := seen[id]; exists {
				return nil, fmt.Errorf("widgets: duplicate widget %q (files %s and %s)", id, prev, path)
			}
			seen[id] = path

			reg, err := widget.Registration()
			if err != nil {
				return nil, fmt.Errorf("widgets: %s: %w", path, err)
			}
			out = append(out, reg)
		}
	}
	return out, nil
}

// Registration converts the manifest entry, compiling its contracts.
func (w ManifestWidget) Registration() (registry.Registration, error) {
	reg := registry.Registration{
		ID:               strings.TrimSpace(w.ID),
		Capabilities:     w.Capabilities,
		FallbackWidgetID: strings.TrimSpace(w.FallbackWidgetID),
	}

	var contracts []registry.Contract
	if len(w.Required) > 0 {
		contracts = append(contracts, contract.RequiredKeys{Keys: w.Required})
	}
	if len(w.JSONSchema) > 0 {
		compiled, err := contract.NewJSONSchemaFromMap(w.JSONSchema)
		if err != nil {
			return registry.Registration{}, fmt.Errorf("widget %q: %w", reg.ID, err)
		}
		contracts = append(contracts, compiled)
	}
	switch len(contracts) {
	case 0:
	case 1:
		reg.Contract = contracts[0]
	default:
		reg.Contract = contract.All(contracts...)
	}
	return reg, nil
}

// RegisterManifest loads manifests from fsys into reg.
func RegisterManifest(reg *registry.Registry, fsys fs.FS) error {
	registrations, err := LoadManifest(fsys)
	if err != nil {
		return err
	}
	for _, r := range registrations {
		if err := reg.Register(r); err != nil {
			return err
		}
	}
	return nil
}

func parseManifest(data []byte, path string) (manifestDocument, error) {
	var doc manifestDocument
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return doc, fmt.Errorf("widgets: parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return doc, fmt.Errorf("widgets: parse %s: %w", path, err)
		}
		for idx := range doc.Widgets {
			if normalized, ok := schema.NormalizeYAML(doc.Widgets[idx].JSONSchema).(map[string]any); ok && len(normalized) > 0 {
				doc.Widgets[idx].JSONSchema = normalized
			}
		}
	}
	return doc, nil
}

func isManifestFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
