package processor

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goliatone/go-widgetschema/pkg/evolution"
	"github.com/goliatone/go-widgetschema/pkg/fallback"
	"github.com/goliatone/go-widgetschema/pkg/registry"
	"github.com/goliatone/go-widgetschema/pkg/schema"
	"github.com/goliatone/go-widgetschema/pkg/validation"
)

// Result is what the rendering layer receives. ProcessedSchema always names a
// registered type.
type Result struct {
	ProcessedSchema schema.WidgetSchema `json:"processedSchema"`
	Validation      validation.Result   `json:"validation"`
	FallbackUsed    bool                `json:"fallbackUsed"`
	Strategy        string              `json:"strategy,omitempty"`
}

// Observer receives every Result, typically for metrics.
type Observer interface {
	ObserveProcessing(Result)
}

// ObserverFunc adapts a function into an Observer.
type ObserverFunc func(Result)

// ObserveProcessing implements Observer.
func (f ObserverFunc) ObserveProcessing(r Result) {
	if f != nil {
		f(r)
	}
}

// Option customises the processor configuration.
type Option func(*Processor)

// WithLogger injects the structured logger shared by the pipeline stages.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// WithDevMode exposes full diagnostics inside terminal error widgets.
func WithDevMode(enabled bool) Option {
	return func(p *Processor) {
		p.devMode = enabled
	}
}

// WithObserver registers observers notified after every Process call.
func WithObserver(observers ...Observer) Option {
	return func(p *Processor) {
		for _, o := range observers {
			if o != nil {
				p.observers = append(p.observers, o)
			}
		}
	}
}

// Processor orchestrates migration, validation and fallback resolution. It
// holds no per-call state and is safe for concurrent use once built.
type Processor struct {
	registry  *registry.Registry
	config    evolution.Config
	logger    *slog.Logger
	devMode   bool
	observers []Observer

	migrator  *evolution.Migrator
	validator *validation.Validator
	resolver  *fallback.Resolver
}

// New builds a processor. It fails fast when a sentinel widget type is missing
// from reg or the version contract is invalid; both are boot-time faults.
func New(reg *registry.Registry, cfg evolution.Config, options ...Option) (*Processor, error) {
	if reg == nil {
		return nil, fmt.Errorf("processor: registry is required")
	}
	if err := reg.RequireSentinels(); err != nil {
		return nil, fmt.Errorf("processor: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("processor: %w", err)
	}

	p := &Processor{
		registry: reg,
		config:   cfg,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(p)
	}
	p.applyDefaults()
	return p, nil
}

// MustNew panics when New fails. Intended for init-time wiring.
func MustNew(reg *registry.Registry, cfg evolution.Config, options ...Option) *Processor {
	p, err := New(reg, cfg, options...)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Processor) applyDefaults() {
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	p.migrator = evolution.NewMigrator(p.config, evolution.WithLogger(p.logger))
	p.validator = validation.New(p.registry, p.config)
	p.resolver = fallback.New(p.registry, p.validator, p.config, fallback.WithDevMode(p.devMode))
}

// Registry exposes the registry the processor resolves against, so renderers
// dispatch on the same registrations.
func (p *Processor) Registry() *registry.Registry {
	return p.registry
}

// Validate runs migration and validation without the fallback cascade.
func (p *Processor) Validate(widget schema.WidgetSchema) (validation.Result, error) {
	migrated, err := p.migrator.Migrate(widget)
	if err != nil {
		return validation.Result{}, err
	}
	return p.validator.Validate(migrated), nil
}

// Process turns a raw schema into a renderable one. It never panics for a
// decoded schema and always returns a result.
func (p *Processor) Process(widget schema.WidgetSchema) (result Result) {
	defer func() {
		if recovered := recover(); recovered != nil {
			p.logger.Error("widget processing panicked",
				"type", widget.Type,
				"id", widget.ID,
				"panic", fmt.Sprint(recovered),
			)
			issue := schema.NewError("", "internal error while processing widget")
			result = p.terminal(widget, validation.Result{Errors: []schema.Issue{issue}})
		}
		p.notify(result)
	}()

	return p.process(widget)
}

func (p *Processor) process(widget schema.WidgetSchema) Result {
	if strings.TrimSpace(widget.Type) == "" {
		invalid := p.validator.Validate(widget)
		return p.terminal(widget, invalid)
	}

	migrated, err := p.migrator.Migrate(widget)
	if err != nil {
		p.logger.Warn("schema migration failed",
			"type", widget.Type,
			"id", widget.ID,
			"version", widget.Version,
			"error", err,
		)
		issue := schema.NewError("version", "schema could not be migrated to the current version")
		return p.terminal(widget, validation.Result{Errors: []schema.Issue{issue}})
	}

	result := p.validator.Validate(migrated)
	if result.Valid {
		return Result{ProcessedSchema: migrated, Validation: result}
	}

	outcome := p.resolver.Resolve(fallback.Input{Schema: migrated, Validation: result})
	p.logger.Info("widget schema degraded",
		"type", migrated.Type,
		"id", migrated.ID,
		"strategy", outcome.Strategy,
		"resolvedType", outcome.Schema.Type,
		"errors", len(result.Errors),
	)
	return Result{
		ProcessedSchema: outcome.Schema,
		Validation:      result,
		FallbackUsed:    true,
		Strategy:        outcome.Strategy,
	}
}

func (p *Processor) terminal(widget schema.WidgetSchema, result validation.Result) Result {
	result.Valid = false
	return Result{
		ProcessedSchema: p.resolver.Terminal(widget, result.Issues()),
		Validation:      result,
		FallbackUsed:    true,
		Strategy:        fallback.StrategyTerminal,
	}
}

func (p *Processor) notify(result Result) {
	for _, o := range p.observers {
		func() {
			defer func() {
				if recovered := recover(); recovered != nil {
					p.logger.Error("processing observer panicked", "panic", fmt.Sprint(recovered))
				}
			}()
			o.ObserveProcessing(result)
		}()
	}
}
