package testsupport

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-widgetschema/pkg/schema"
)

// Scenario is a processing fixture: an input schema and the expected outcome.
type Scenario struct {
	Name   string
	Input  schema.WidgetSchema
	Expect Expectation
}

// Expectation describes what processing Input must produce.
type Expectation struct {
	Schema       schema.WidgetSchema
	FallbackUsed bool
	Strategy     string
	ErrorPaths   []string
}

type scenarioFile struct {
	Input  any `yaml:"input"`
	Expect struct {
		Schema       any      `yaml:"schema"`
		FallbackUsed bool     `yaml:"fallbackUsed"`
		Strategy     string   `yaml:"strategy"`
		ErrorPaths   []string `yaml:"errorPaths"`
	} `yaml:"expect"`
}

// MustLoadScenarios loads every *.yaml scenario under dir, sorted by name.
func MustLoadScenarios(t *testing.T, dir string) []Scenario {
	t.Helper()

	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		t.Fatalf("glob scenarios: %v", err)
	}
	if len(paths) == 0 {
		t.Fatalf("no scenarios found in %s", dir)
	}
	sort.Strings(paths)

	out := make([]Scenario, 0, len(paths))
	for _, path := range paths {
		scenario, err := LoadScenario(path)
		if err != nil {
			t.Fatalf("load scenario: %v", err)
		}
		out = append(out, scenario)
	}
	return out
}

// LoadScenario reads a single scenario without requiring testing.T, allowing
// callers to wire fixtures in setup functions.
func LoadScenario(path string) (Scenario, error) {
	if path == "" {
		return Scenario{}, errors.New("testsupport: scenario path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("testsupport: read scenario: %w", err)
	}

	var file scenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Scenario{}, fmt.Errorf("testsupport: parse scenario %s: %w", path, err)
	}

	input, err := toWidget(file.Input)
	if err != nil {
		return Scenario{}, fmt.Errorf("testsupport: scenario %s input: %w", path, err)
	}
	expected, err := toWidget(file.Expect.Schema)
	if err != nil {
		return Scenario{}, fmt.Errorf("testsupport: scenario %s expect: %w", path, err)
	}

	name := filepath.Base(path)
	return Scenario{
		Name:  name[:len(name)-len(filepath.Ext(name))],
		Input: input,
		Expect: Expectation{
			Schema:       expected,
			FallbackUsed: file.Expect.FallbackUsed,
			Strategy:     file.Expect.Strategy,
			ErrorPaths:   file.Expect.ErrorPaths,
		},
	}, nil
}

func toWidget(raw any) (schema.WidgetSchema, error) {
	if raw == nil {
		return schema.WidgetSchema{}, nil
	}
	data, err := json.Marshal(schema.NormalizeYAML(raw))
	if err != nil {
		return schema.WidgetSchema{}, err
	}
	return schema.Decode(data, schema.FormatJSON)
}

// CompareSchema returns a diff between two schemas, treating nil and empty
// collections as equal.
func CompareSchema(want, got schema.WidgetSchema) string {
	return cmp.Diff(want, got, cmpopts.EquateEmpty())
}

// Normalize round-trips a schema through JSON so values built in Go compare
// equal to values decoded from fixtures ([]string becomes []any, ints become
// float64).
func Normalize(t *testing.T, widget schema.WidgetSchema) schema.WidgetSchema {
	t.Helper()

	data, err := json.Marshal(widget)
	if err != nil {
		t.Fatalf("marshal schema: %v", err)
	}
	out, err := schema.Decode(data, schema.FormatJSON)
	if err != nil {
		t.Fatalf("decode schema: %v", err)
	}
	return out
}
