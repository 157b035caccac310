package registry

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-widgetschema/pkg/schema"
)

// Sentinel widget types the fallback cascade depends on.
const (
	TextWidget  = "text-widget"
	ErrorWidget = "error-widget"
)

// ErrSentinelMissing is returned by RequireSentinels when a sentinel type has
// not been registered.
var ErrSentinelMissing = errors.New("registry: sentinel widget not registered")

// Contract is the per-type validation contract applied to a schema whose type
// is registered.
type Contract interface {
	Check(widget schema.WidgetSchema) []schema.Issue
}

// ContractFunc adapts a function into a Contract.
type ContractFunc func(widget schema.WidgetSchema) []schema.Issue

// Check implements Contract.
func (f ContractFunc) Check(widget schema.WidgetSchema) []schema.Issue {
	if f == nil {
		return nil
	}
	return f(widget)
}

// Capabilities describe what a widget renderer can handle.
type Capabilities struct {
	AcceptsChildren bool     `json:"acceptsChildren,omitempty" yaml:"acceptsChildren,omitempty"`
	Interactive     bool     `json:"interactive,omitempty" yaml:"interactive,omitempty"`
	Tags            []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Registration is the bundle a widget implementation contributes.
type Registration struct {
	ID               string
	Capabilities     Capabilities
	Contract         Contract
	FallbackWidgetID string
}

// Registry stores registrations by type identifier and remembers the order in
// which identifiers were first registered.
type Registry struct {
	mu            sync.RWMutex
	registrations map[string]Registration
	order         []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		registrations: make(map[string]Registration),
	}
}

// Register stores a registration by ID. The last write for an ID wins; the ID
// keeps the position of its first registration.
func (r *Registry) Register(reg Registration) error {
	if r == nil {
		return errors.New("registry: nil registry")
	}
	id := strings.TrimSpace(reg.ID)
	if id == "" {
		return errors.New("registry: registration id is required")
	}
	reg.ID = id
	reg.FallbackWidgetID = strings.TrimSpace(reg.FallbackWidgetID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.registrations[id]; !exists {
		r.order = append(r.order, id)
	}
	r.registrations[id] = reg
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(reg Registration) {
	if err := r.Register(reg); err != nil {
		panic(err)
	}
}

// Lookup returns the registration for a widget type.
func (r *Registry) Lookup(widgetType string) (Registration, bool) {
	if r == nil {
		return Registration{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.registrations[widgetType]
	return reg, ok
}

// Has reports whether a widget type is registered.
func (r *Registry) Has(widgetType string) bool {
	_, ok := r.Lookup(widgetType)
	return ok
}

// FindSimilar suggests a registered ID for an unknown type. A match is a
// case-insensitive substring containment in either direction; the first match
// in registration order wins. The result is a hint only.
func (r *Registry) FindSimilar(widgetType string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(widgetType))
	if r == nil || needle == "" {
		return "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		candidate := strings.ToLower(id)
		if strings.Contains(needle, candidate) || strings.Contains(candidate, needle) {
			return id, true
		}
	}
	return "", false
}

// List returns registered IDs in registration order.
func (r *Registry) List() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.order...)
}

// RequireSentinels fails unless both sentinel widget types are registered.
// Hosts call it at boot; a failure is a configuration fault.
func (r *Registry) RequireSentinels() error {
	var missing []string
	for _, id := range []string{TextWidget, ErrorWidget} {
		if !r.Has(id) {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrSentinelMissing, strings.Join(missing, ", "))
	}
	return nil
}
