package schema

import "sort"

// WidgetSchema is the declarative description of one widget instance as
// emitted by the upstream agent. Values are treated as immutable by the
// processing pipeline; every step works on a Clone.
type WidgetSchema struct {
	Type     string         `json:"type" yaml:"type"`
	ID       string         `json:"id,omitempty" yaml:"id,omitempty"`
	Version  string         `json:"version,omitempty" yaml:"version,omitempty"`
	Data     any            `json:"data,omitempty" yaml:"data,omitempty"`
	Content  any            `json:"content,omitempty" yaml:"content,omitempty"`
	Config   map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
	Props    map[string]any `json:"props,omitempty" yaml:"props,omitempty"`
	Children []WidgetSchema `json:"children,omitempty" yaml:"children,omitempty"`
	Fallback *FallbackSpec  `json:"fallback,omitempty" yaml:"fallback,omitempty"`
	Metadata *Metadata      `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// FallbackSpec is the agent-declared degrade path for a schema.
type FallbackSpec struct {
	Type         string         `json:"type,omitempty" yaml:"type,omitempty"`
	Config       map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
	Props        map[string]any `json:"props,omitempty" yaml:"props,omitempty"`
	ErrorDisplay string         `json:"errorDisplay,omitempty" yaml:"errorDisplay,omitempty"`
}

// Metadata carries free-form annotations. Attributes is where the fallback
// resolver records fallbackReason.
type Metadata struct {
	Attributes map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Source     string         `json:"source,omitempty" yaml:"source,omitempty"`
	Tags       []string       `json:"tags,omitempty" yaml:"tags,omitempty"`
}

const (
	PayloadConfig = "config"
	PayloadProps  = "props"
)

// Payload returns the configuration payload: Config when present, otherwise
// Props.
func (s WidgetSchema) Payload() map[string]any {
	if s.Config != nil {
		return s.Config
	}
	return s.Props
}

// PayloadKey names the field Payload reads from.
func (s WidgetSchema) PayloadKey() string {
	if s.Config == nil && s.Props != nil {
		return PayloadProps
	}
	return PayloadConfig
}

// WithPayload returns a copy whose configuration payload is replaced, keeping
// the field the schema already used.
func (s WidgetSchema) WithPayload(payload map[string]any) WidgetSchema {
	out := s.Clone()
	if out.PayloadKey() == PayloadProps {
		out.Props = payload
		return out
	}
	out.Config = payload
	return out
}

// Attribute reads a metadata attribute.
func (s WidgetSchema) Attribute(key string) (any, bool) {
	if s.Metadata == nil || s.Metadata.Attributes == nil {
		return nil, false
	}
	value, ok := s.Metadata.Attributes[key]
	return value, ok
}

// WithAttribute returns a copy with a metadata attribute set.
func (s WidgetSchema) WithAttribute(key string, value any) WidgetSchema {
	out := s.Clone()
	if out.Metadata == nil {
		out.Metadata = &Metadata{}
	}
	if out.Metadata.Attributes == nil {
		out.Metadata.Attributes = make(map[string]any)
	}
	out.Metadata.Attributes[key] = value
	return out
}

// Clone returns a deep copy of the schema.
func (s WidgetSchema) Clone() WidgetSchema {
	out := s
	out.Data = CloneValue(s.Data)
	out.Content = CloneValue(s.Content)
	out.Config = CloneMap(s.Config)
	out.Props = CloneMap(s.Props)
	if s.Children != nil {
		out.Children = make([]WidgetSchema, len(s.Children))
		for idx, child := range s.Children {
			out.Children[idx] = child.Clone()
		}
	}
	if s.Fallback != nil {
		fb := *s.Fallback
		fb.Config = CloneMap(s.Fallback.Config)
		fb.Props = CloneMap(s.Fallback.Props)
		out.Fallback = &fb
	}
	if s.Metadata != nil {
		meta := *s.Metadata
		meta.Attributes = CloneMap(s.Metadata.Attributes)
		if s.Metadata.Tags != nil {
			meta.Tags = append([]string(nil), s.Metadata.Tags...)
		}
		out.Metadata = &meta
	}
	return out
}

// CloneMap deep-copies a JSON-like map. Nil stays nil.
func CloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = CloneValue(value)
	}
	return out
}

// CloneValue deep-copies maps and slices inside a JSON-like value. Scalars and
// unknown types are returned as is.
func CloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return CloneMap(typed)
	case []any:
		if typed == nil {
			return typed
		}
		out := make([]any, len(typed))
		for idx, item := range typed {
			out[idx] = CloneValue(item)
		}
		return out
	case []string:
		if typed == nil {
			return typed
		}
		return append([]string(nil), typed...)
	default:
		return value
	}
}

// SortedKeys returns the map keys in lexical order.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
