package widgets

import (
	"github.com/goliatone/go-widgetschema/pkg/contract"
	"github.com/goliatone/go-widgetschema/pkg/registry"
)

// Built-in widget identifiers.
const (
	WidgetText   = registry.TextWidget
	WidgetError  = registry.ErrorWidget
	WidgetCard   = "card"
	WidgetList   = "list"
	WidgetMetric = "metric"
	WidgetChart  = "chart"
	WidgetTable  = "table"
)

// Builtins returns the default registrations, sentinels first.
func Builtins() []registry.Registration {
	return []registry.Registration{
		{
			ID:           WidgetText,
			Capabilities: registry.Capabilities{Tags: []string{"text"}},
		},
		{
			ID:           WidgetError,
			Capabilities: registry.Capabilities{Tags: []string{"diagnostic"}},
		},
		{
			ID:           WidgetCard,
			Capabilities: registry.Capabilities{AcceptsChildren: true, Tags: []string{"layout"}},
		},
		{
			ID:               WidgetList,
			Capabilities:     registry.Capabilities{AcceptsChildren: true, Tags: []string{"collection"}},
			Contract:         contract.RequiredKeys{Keys: []string{"items"}},
			FallbackWidgetID: WidgetText,
		},
		{
			ID:               WidgetMetric,
			Capabilities:     registry.Capabilities{Tags: []string{"data"}},
			Contract:         contract.RequiredKeys{Keys: []string{"value"}},
			FallbackWidgetID: WidgetCard,
		},
		{
			ID:               WidgetChart,
			Capabilities:     registry.Capabilities{Interactive: true, Tags: []string{"data"}},
			Contract:         contract.RequiredKeys{Keys: []string{"series"}},
			FallbackWidgetID: WidgetCard,
		},
		{
			ID:               WidgetTable,
			Capabilities:     registry.Capabilities{Interactive: true, Tags: []string{"data", "collection"}},
			Contract:         contract.RequiredKeys{Keys: []string{"columns", "rows"}},
			FallbackWidgetID: WidgetCard,
		},
	}
}

// RegisterBuiltins adds the built-in registrations to reg.
func RegisterBuiltins(reg *registry.Registry) error {
	for _, r := range Builtins() {
		if err := reg.Register(r); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry constructs a registry with the built-in widgets registered.
func NewRegistry() *registry.Registry {
	reg := registry.New()
	if err := RegisterBuiltins(reg); err != nil {
		panic(err)
	}
	return reg
}
