package fallback

import (
	"strings"

	"github.com/goliatone/go-widgetschema/pkg/evolution"
	"github.com/goliatone/go-widgetschema/pkg/registry"
	"github.com/goliatone/go-widgetschema/pkg/schema"
	"github.com/goliatone/go-widgetschema/pkg/validation"
)

// Strategy names, also recorded as metadata.attributes.fallbackReason on the
// schemas they build.
const (
	StrategyCorrected  = "corrected"
	StrategyExplicit   = "explicit"
	StrategyRegistered = "registered"
	StrategyText       = "text"
	StrategyTerminal   = "error"
)

// ReasonAttribute is the metadata attribute carrying the strategy name.
const ReasonAttribute = "fallbackReason"

// Input is what the cascade works from: the migrated schema and the
// validation result that rejected it.
type Input struct {
	Schema     schema.WidgetSchema
	Validation validation.Result
}

// Outcome is the first successful strategy's schema.
type Outcome struct {
	Schema   schema.WidgetSchema
	Strategy string
}

// Strategy tries to build a replacement schema. ok is false on no match.
type Strategy struct {
	Name  string
	Apply func(in Input) (schema.WidgetSchema, bool)
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithDevMode includes full diagnostics in the terminal error widget.
func WithDevMode(enabled bool) Option {
	return func(r *Resolver) {
		r.devMode = enabled
	}
}

// Resolver runs the ordered cascade.
type Resolver struct {
	registry   *registry.Registry
	validator  *validation.Validator
	version    string
	devMode    bool
	strategies []Strategy
}

// New constructs a resolver. Candidates from the non-terminal strategies must
// pass validator before they are accepted, so a resolved schema re-validates
// cleanly.
func New(reg *registry.Registry, validator *validation.Validator, cfg evolution.Config, opts ...Option) *Resolver {
	r := &Resolver{
		registry:  reg,
		validator: validator,
		version:   cfg.CurrentVersion,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	r.strategies = []Strategy{
		{Name: StrategyCorrected, Apply: r.corrected},
		{Name: StrategyExplicit, Apply: r.explicit},
		{Name: StrategyRegistered, Apply: r.registered},
		{Name: StrategyText, Apply: r.text},
	}
	return r
}

// Strategies lists the strategy names in cascade order, terminal included.
func (r *Resolver) Strategies() []string {
	names := make([]string, 0, len(r.strategies)+1)
	for _, s := range r.strategies {
		names = append(names, s.Name)
	}
	return append(names, StrategyTerminal)
}

// Resolve returns the first strategy output that matches and validates.
func (r *Resolver) Resolve(in Input) Outcome {
	for _, strategy := range r.strategies {
		candidate, ok := strategy.Apply(in)
		if !ok {
			continue
		}
		if r.validator != nil && !r.validator.Validate(candidate).Valid {
			continue
		}
		return Outcome{Schema: candidate, Strategy: strategy.Name}
	}
	return Outcome{Schema: r.terminal(in), Strategy: StrategyTerminal}
}

func (r *Resolver) corrected(in Input) (schema.WidgetSchema, bool) {
	if in.Validation.Corrected == nil {
		return schema.WidgetSchema{}, false
	}
	return in.Validation.Corrected.Clone(), true
}

func (r *Resolver) explicit(in Input) (schema.WidgetSchema, bool) {
	spec := in.Schema.Fallback
	if spec == nil {
		return schema.WidgetSchema{}, false
	}
	target := strings.TrimSpace(spec.Type)
	if target == "" || target == in.Schema.Type || !r.registry.Has(target) {
		return schema.WidgetSchema{}, false
	}
	out := r.derive(in.Schema, target, StrategyExplicit)
	out.Config = schema.CloneMap(spec.Config)
	out.Props = schema.CloneMap(spec.Props)
	return out, true
}

// simplifiedKeys are the payload keys any renderer is expected to understand.
var simplifiedKeys = []string{"title", "subtitle", "text", "description", "value"}

func (r *Resolver) registered(in Input) (schema.WidgetSchema, bool) {
	reg, ok := r.registry.Lookup(in.Schema.Type)
	if !ok || reg.FallbackWidgetID == "" || reg.FallbackWidgetID == in.Schema.Type {
		return schema.WidgetSchema{}, false
	}
	if !r.registry.Has(reg.FallbackWidgetID) {
		return schema.WidgetSchema{}, false
	}

	payload := in.Schema.Payload()
	simplified := make(map[string]any)
	for _, key := range simplifiedKeys {
		if value, ok := payload[key]; ok && value != nil {
			simplified[key] = schema.CloneValue(value)
		}
	}

	out := r.derive(in.Schema, reg.FallbackWidgetID, StrategyRegistered)
	out.Config = simplified
	return out, true
}

// textKeys are checked in order for a human-readable string.
var textKeys = []string{"title", "text", "description"}

func (r *Resolver) text(in Input) (schema.WidgetSchema, bool) {
	payload := in.Schema.Payload()
	for _, key := range textKeys {
		raw, ok := payload[key].(string)
		if !ok {
			continue
		}
		content := plainText(raw)
		if content == "" {
			continue
		}
		out := r.derive(in.Schema, registry.TextWidget, StrategyText)
		out.Content = content
		out.Config = map[string]any{"text": content}
		return out, true
	}
	return schema.WidgetSchema{}, false
}

// derive starts a replacement schema that keeps the original identity and
// metadata but none of its payload, children or fallback declaration.
func (r *Resolver) derive(original schema.WidgetSchema, widgetType, reason string) schema.WidgetSchema {
	out := schema.WidgetSchema{
		Type:    widgetType,
		ID:      original.ID,
		Version: r.version,
	}
	if original.Metadata != nil {
		out.Metadata = original.Clone().Metadata
	}
	return out.WithAttribute(ReasonAttribute, reason)
}
