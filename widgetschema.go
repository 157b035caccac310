// Package widgetschema turns agent-emitted widget schemas into renderable
// ones. The root package exposes a one-call constructor over the registry,
// evolution, validation, fallback and processor packages.
package widgetschema

import (
	"io/fs"

	"github.com/goliatone/go-widgetschema/pkg/evolution"
	"github.com/goliatone/go-widgetschema/pkg/processor"
	"github.com/goliatone/go-widgetschema/pkg/registry"
	"github.com/goliatone/go-widgetschema/pkg/schema"
	"github.com/goliatone/go-widgetschema/pkg/widgets"
)

// WidgetSchema aliases schema.WidgetSchema for callers importing the root
// package only.
type WidgetSchema = schema.WidgetSchema

// FallbackSpec aliases schema.FallbackSpec.
type FallbackSpec = schema.FallbackSpec

// Result aliases processor.Result.
type Result = processor.Result

// Option customises NewProcessor.
type Option func(*settings)

type settings struct {
	registry  *registry.Registry
	evolution *evolution.Config
	manifests []fs.FS
	options   []processor.Option
}

// WithRegistry replaces the built-in registry. The registry must still
// contain the text-widget and error-widget sentinels.
func WithRegistry(reg *registry.Registry) Option {
	return func(s *settings) {
		s.registry = reg
	}
}

// WithEvolution supplies the version contract.
func WithEvolution(cfg evolution.Config) Option {
	return func(s *settings) {
		s.evolution = &cfg
	}
}

// WithManifest registers widgets declared in manifest files found in fsys.
func WithManifest(fsys fs.FS) Option {
	return func(s *settings) {
		if fsys != nil {
			s.manifests = append(s.manifests, fsys)
		}
	}
}

// WithProcessorOptions forwards options to processor.New.
func WithProcessorOptions(options ...processor.Option) Option {
	return func(s *settings) {
		s.options = append(s.options, options...)
	}
}

// NewProcessor builds a processor over the built-in widgets (or the supplied
// registry), any manifests, and the default version contract unless one is
// given. Errors are boot-time configuration faults.
func NewProcessor(options ...Option) (*processor.Processor, error) {
	s := settings{}
	for _, opt := range options {
		if opt != nil {
			opt(&s)
		}
	}

	reg := s.registry
	if reg == nil {
		reg = widgets.NewRegistry()
	}
	for _, fsys := range s.manifests {
		if err := widgets.RegisterManifest(reg, fsys); err != nil {
			return nil, err
		}
	}

	cfg := evolution.DefaultConfig()
	if s.evolution != nil {
		cfg = *s.evolution
	}
	return processor.New(reg, cfg, s.options...)
}

// Process builds a default processor and processes a single schema. Hosts
// processing many schemas should keep a processor from NewProcessor instead.
func Process(widget WidgetSchema, options ...Option) (Result, error) {
	p, err := NewProcessor(options...)
	if err != nil {
		return Result{}, err
	}
	return p.Process(widget), nil
}
