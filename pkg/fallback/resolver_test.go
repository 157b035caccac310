package fallback_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-widgetschema/pkg/contract"
	"github.com/goliatone/go-widgetschema/pkg/evolution"
	"github.com/goliatone/go-widgetschema/pkg/fallback"
	"github.com/goliatone/go-widgetschema/pkg/registry"
	"github.com/goliatone/go-widgetschema/pkg/schema"
	"github.com/goliatone/go-widgetschema/pkg/validation"
)

type harness struct {
	validator *validation.Validator
	resolver  *fallback.Resolver
}

func newHarness(t *testing.T, opts ...fallback.Option) harness {
	t.Helper()
	reg := registry.New()
	reg.MustRegister(registry.Registration{ID: registry.TextWidget})
	reg.MustRegister(registry.Registration{ID: registry.ErrorWidget})
	reg.MustRegister(registry.Registration{ID: "Card"})
	reg.MustRegister(registry.Registration{
		ID:               "metric",
		Contract:         contract.RequiredKeys{Keys: []string{"value", "unit"}},
		FallbackWidgetID: "Card",
	})
	reg.MustRegister(registry.Registration{
		ID:       "gauge",
		Contract: contract.RequiredKeys{Keys: []string{"max"}},
	})

	cfg := evolution.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}
	v := validation.New(reg, cfg)
	return harness{validator: v, resolver: fallback.New(reg, v, cfg, opts...)}
}

func (h harness) resolve(widget schema.WidgetSchema) fallback.Outcome {
	return h.resolver.Resolve(fallback.Input{Schema: widget, Validation: h.validator.Validate(widget)})
}

func TestResolve_CorrectedSchemaFirst(t *testing.T) {
	h := newHarness(t)
	out := h.resolve(schema.WidgetSchema{
		Type:     "cardwidget",
		Version:  "1.0",
		Config:   map[string]any{"title": "x"},
		Fallback: &schema.FallbackSpec{Type: registry.TextWidget},
	})
	if out.Strategy != fallback.StrategyCorrected || out.Schema.Type != "Card" {
		t.Fatalf("expected corrected Card, got %s/%s", out.Strategy, out.Schema.Type)
	}
}

func TestResolve_ExplicitFallback(t *testing.T) {
	h := newHarness(t)
	out := h.resolve(schema.WidgetSchema{
		Type:     "Unknown",
		ID:       "w1",
		Fallback: &schema.FallbackSpec{Type: "Card", Config: map[string]any{"title": "x"}},
	})

	want := schema.WidgetSchema{
		Type:     "Card",
		ID:       "w1",
		Version:  "1.0",
		Config:   map[string]any{"title": "x"},
		Metadata: &schema.Metadata{Attributes: map[string]any{"fallbackReason": "explicit"}},
	}
	if out.Strategy != fallback.StrategyExplicit {
		t.Fatalf("expected explicit strategy, got %s", out.Strategy)
	}
	if diff := cmp.Diff(want, out.Schema); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_ExplicitFallbackToUnregisteredTypeIsSkipped(t *testing.T) {
	h := newHarness(t)
	out := h.resolve(schema.WidgetSchema{
		Type:     "Unknown",
		Config:   map[string]any{"title": "hello"},
		Fallback: &schema.FallbackSpec{Type: "Missing"},
	})
	if out.Strategy != fallback.StrategyText {
		t.Fatalf("expected text strategy, got %s", out.Strategy)
	}
}

func TestResolve_RegisteredFallbackSimplifiesPayload(t *testing.T) {
	h := newHarness(t)
	out := h.resolve(schema.WidgetSchema{
		Type: "metric",
		Config: map[string]any{
			"title":  "Revenue",
			"value":  42.0,
			"series": []any{1.0, 2.0},
		},
	})

	if out.Strategy != fallback.StrategyRegistered {
		t.Fatalf("expected registered strategy, got %s", out.Strategy)
	}
	want := map[string]any{"title": "Revenue", "value": 42.0}
	if diff := cmp.Diff(want, out.Schema.Config); diff != "" {
		t.Fatalf("simplified config mismatch (-want +got):\n%s", diff)
	}
	if out.Schema.Type != "Card" {
		t.Fatalf("expected Card, got %s", out.Schema.Type)
	}
}

func TestResolve_TextFallbackStripsMarkup(t *testing.T) {
	h := newHarness(t)
	out := h.resolve(schema.WidgetSchema{
		Type:   "gauge",
		Config: map[string]any{"description": "<b>Quick</b> note & more"},
	})

	if out.Strategy != fallback.StrategyText || out.Schema.Type != registry.TextWidget {
		t.Fatalf("expected text-widget, got %s/%s", out.Strategy, out.Schema.Type)
	}
	if out.Schema.Content != "Quick note & more" {
		t.Fatalf("unexpected content %q", out.Schema.Content)
	}
	if reason, _ := out.Schema.Attribute(fallback.ReasonAttribute); reason != fallback.StrategyText {
		t.Fatalf("unexpected reason %v", reason)
	}
}

func TestResolve_TextFallbackStripsEscapedMarkup(t *testing.T) {
	cases := []struct {
		name   string
		config map[string]any
		want   string
	}{
		{
			name:   "escaped tags",
			config: map[string]any{"description": "&lt;b&gt;Revenue&lt;/b&gt; &amp; costs"},
			want:   "Revenue & costs",
		},
		{
			name:   "double escaped tags",
			config: map[string]any{"description": "&amp;lt;i&amp;gt;Quarterly&amp;lt;/i&amp;gt;"},
			want:   "Quarterly",
		},
		{
			name: "escaped script is dropped entirely",
			config: map[string]any{
				"title":       "&lt;script&gt;alert(1)&lt;/script&gt;",
				"description": "Summary",
			},
			want: "Summary",
		},
		{
			name:   "literal angle bracket survives as text",
			config: map[string]any{"text": "a < b"},
			want:   "a < b",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			out := h.resolve(schema.WidgetSchema{Type: "gauge", Config: tc.config})

			if out.Strategy != fallback.StrategyText {
				t.Fatalf("expected text strategy, got %s", out.Strategy)
			}
			if out.Schema.Content != tc.want {
				t.Fatalf("content: want %q, got %q", tc.want, out.Schema.Content)
			}
			if diff := cmp.Diff(map[string]any{"text": tc.want}, out.Schema.Config); diff != "" {
				t.Fatalf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolve_TerminalErrorWidget(t *testing.T) {
	h := newHarness(t)
	out := h.resolve(schema.WidgetSchema{
		Type:     "Unknown",
		Config:   map[string]any{},
		Fallback: &schema.FallbackSpec{ErrorDisplay: "message"},
	})

	if out.Strategy != fallback.StrategyTerminal || out.Schema.Type != registry.ErrorWidget {
		t.Fatalf("expected error-widget, got %s/%s", out.Strategy, out.Schema.Type)
	}
	want := map[string]any{
		"originalType": "Unknown",
		"errors":       []any{`widget type "Unknown" is not registered`},
		"errorDisplay": "message",
	}
	if diff := cmp.Diff(want, out.Schema.Config); diff != "" {
		t.Fatalf("error widget config mismatch (-want +got):\n%s", diff)
	}
	if !h.validator.Validate(out.Schema).Valid {
		t.Fatalf("terminal widget must validate")
	}
}

func TestResolve_TerminalDevModeIncludesDiagnostics(t *testing.T) {
	h := newHarness(t, fallback.WithDevMode(true))
	out := h.resolve(schema.WidgetSchema{Type: "Unknown", Fallback: &schema.FallbackSpec{ErrorDisplay: "bogus"}})

	if out.Schema.Config["errorDisplay"] != fallback.DisplayPlaceholder {
		t.Fatalf("unknown display modes default to placeholder, got %v", out.Schema.Config["errorDisplay"])
	}
	diagnostics, ok := out.Schema.Config["diagnostics"].([]any)
	if !ok || len(diagnostics) != 1 {
		t.Fatalf("expected diagnostics, got %#v", out.Schema.Config["diagnostics"])
	}
	entry := diagnostics[0].(map[string]any)
	if entry["path"] != "type" || entry["severity"] != "error" {
		t.Fatalf("unexpected diagnostic entry %#v", entry)
	}
}

func TestResolve_CandidateFailingValidationFallsThrough(t *testing.T) {
	h := newHarness(t)
	// the explicit target fails its own contract, so the cascade continues
	out := h.resolve(schema.WidgetSchema{
		Type:     "Unknown",
		Config:   map[string]any{"text": "still readable"},
		Fallback: &schema.FallbackSpec{Type: "gauge", Config: map[string]any{}},
	})
	if out.Strategy != fallback.StrategyText || out.Schema.Content != "still readable" {
		t.Fatalf("expected text fallback, got %s %#v", out.Strategy, out.Schema.Content)
	}
}

func TestTerminal_NeverEmptyMessages(t *testing.T) {
	h := newHarness(t)
	out := h.resolver.Terminal(schema.WidgetSchema{Type: "card"}, nil)
	errs, _ := out.Config["errors"].([]any)
	if len(errs) == 0 {
		t.Fatalf("terminal widget must carry at least one message")
	}
}

func TestStrategies_Order(t *testing.T) {
	h := newHarness(t)
	want := []string{"corrected", "explicit", "registered", "text", "error"}
	if diff := cmp.Diff(want, h.resolver.Strategies()); diff != "" {
		t.Fatalf("strategy order mismatch (-want +got):\n%s", diff)
	}
}
