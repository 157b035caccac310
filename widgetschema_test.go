package widgetschema_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	widgetschema "github.com/goliatone/go-widgetschema"
	"github.com/goliatone/go-widgetschema/pkg/evolution"
	"github.com/goliatone/go-widgetschema/pkg/processor"
	"github.com/goliatone/go-widgetschema/pkg/registry"
	"github.com/goliatone/go-widgetschema/pkg/testsupport"
)

func newScenarioProcessor(t *testing.T) *processor.Processor {
	t.Helper()

	cfg, err := evolution.LoadConfigFile(filepath.Join("testdata", "evolution.yaml"))
	if err != nil {
		t.Fatalf("load evolution: %v", err)
	}
	p, err := widgetschema.NewProcessor(
		widgetschema.WithEvolution(cfg),
		widgetschema.WithManifest(os.DirFS(filepath.Join("testdata", "widgets"))),
	)
	if err != nil {
		t.Fatalf("new processor: %v", err)
	}
	return p
}

func TestProcess_Scenarios(t *testing.T) {
	p := newScenarioProcessor(t)

	for _, scenario := range testsupport.MustLoadScenarios(t, filepath.Join("testdata", "scenarios")) {
		scenario := scenario
		t.Run(scenario.Name, func(t *testing.T) {
			result := p.Process(scenario.Input)

			if result.FallbackUsed != scenario.Expect.FallbackUsed {
				t.Fatalf("fallbackUsed: want %v, got %v (strategy %q)", scenario.Expect.FallbackUsed, result.FallbackUsed, result.Strategy)
			}
			if result.Strategy != scenario.Expect.Strategy {
				t.Fatalf("strategy: want %q, got %q", scenario.Expect.Strategy, result.Strategy)
			}

			var paths []string
			for _, issue := range result.Validation.Errors {
				paths = append(paths, issue.Path)
			}
			if diff := cmp.Diff(scenario.Expect.ErrorPaths, paths, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("error paths mismatch (-want +got):\n%s", diff)
			}

			got := testsupport.Normalize(t, result.ProcessedSchema)
			if diff := testsupport.CompareSchema(scenario.Expect.Schema, got); diff != "" {
				t.Fatalf("processed schema mismatch (-want +got):\n%s", diff)
			}

			if !p.Registry().Has(result.ProcessedSchema.Type) {
				t.Fatalf("processed type %q is not registered", result.ProcessedSchema.Type)
			}

			again := p.Process(result.ProcessedSchema)
			if again.FallbackUsed {
				t.Fatalf("reprocessing must be stable, got strategy %q", again.Strategy)
			}
			if diff := testsupport.CompareSchema(got, testsupport.Normalize(t, again.ProcessedSchema)); diff != "" {
				t.Fatalf("reprocessing changed schema (-first +second):\n%s", diff)
			}
		})
	}
}

func TestNewProcessor_RejectsRegistryWithoutSentinels(t *testing.T) {
	_, err := widgetschema.NewProcessor(widgetschema.WithRegistry(registry.New()))
	if err == nil {
		t.Fatalf("expected sentinel error")
	}
}

func TestProcess_Shortcut(t *testing.T) {
	result, err := widgetschema.Process(widgetschema.WidgetSchema{Type: "card", Config: map[string]any{"title": "x"}})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.FallbackUsed || result.ProcessedSchema.Version != evolution.DefaultVersion {
		t.Fatalf("unexpected result: %+v", result)
	}
}
