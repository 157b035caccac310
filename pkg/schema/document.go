package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the serialisation of a raw schema document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Document wraps the raw schema payload and its origin.
type Document struct {
	source Source
	format Format
	raw    []byte
}

// NewDocument constructs a Document wrapper while validating the inputs. The
// format is inferred from the source location and falls back to sniffing the
// payload.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema: source is required")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return Document{}, errors.New("schema: raw document is empty")
	}

	clone := append([]byte(nil), raw...)
	return Document{source: src, format: detectFormat(src.Location(), clone), raw: clone}, nil
}

// MustNewDocument panics if the document cannot be created. Useful for tests.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source {
	return d.source
}

// Format reports the detected serialisation.
func (d Document) Format() Format {
	return d.format
}

// Raw returns a defensive copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Widget decodes the document into a WidgetSchema.
func (d Document) Widget() (WidgetSchema, error) {
	widget, err := Decode(d.raw, d.format)
	if err != nil {
		return WidgetSchema{}, fmt.Errorf("schema: decode %s: %w", d.Location(), err)
	}
	return widget, nil
}

// DecodeFile reads and decodes a JSON or YAML schema file.
func DecodeFile(path string) (WidgetSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return WidgetSchema{}, fmt.Errorf("schema: read %s: %w", path, err)
	}
	doc, err := NewDocument(SourceFromFile(path), data)
	if err != nil {
		return WidgetSchema{}, err
	}
	return doc.Widget()
}

// DecodeFS reads and decodes a schema stored in fsys.
func DecodeFS(fsys fs.FS, name string) (WidgetSchema, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return WidgetSchema{}, fmt.Errorf("schema: read %s: %w", name, err)
	}
	doc, err := NewDocument(SourceFromFS(name), data)
	if err != nil {
		return WidgetSchema{}, err
	}
	return doc.Widget()
}

// Decode parses a JSON or YAML payload. YAML input is routed through JSON so
// both formats produce the same value shapes (float64 numbers, map[string]any
// objects).
func Decode(data []byte, format Format) (WidgetSchema, error) {
	var out WidgetSchema
	switch format {
	case FormatYAML:
		var root yaml.Node
		if err := yaml.Unmarshal(data, &root); err != nil {
			return out, fmt.Errorf("parse yaml: %w", err)
		}
		versionsAsStrings(&root)
		var raw any
		if root.Kind != 0 {
			if err := root.Decode(&raw); err != nil {
				return out, fmt.Errorf("parse yaml: %w", err)
			}
		}
		converted, err := json.Marshal(NormalizeYAML(raw))
		if err != nil {
			return out, fmt.Errorf("convert yaml: %w", err)
		}
		data = converted
	case FormatJSON, "":
	default:
		return out, fmt.Errorf("unsupported format %q", format)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("parse json: %w", err)
	}
	return out, nil
}

// NormalizeYAML converts YAML-decoded values into JSON-compatible shapes.
func NormalizeYAML(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = NormalizeYAML(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[fmt.Sprint(key)] = NormalizeYAML(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, item := range typed {
			out[idx] = NormalizeYAML(item)
		}
		return out
	default:
		return value
	}
}

// versionsAsStrings retags unquoted numeric `version: 0.9` scalars on the
// widget tree as strings, keeping the literal text so "1.0" stays "1.0".
// Payload maps are left alone.
func versionsAsStrings(node *yaml.Node) {
	switch node.Kind {
	case yaml.DocumentNode:
		for _, child := range node.Content {
			versionsAsStrings(child)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			switch key.Value {
			case "version":
				if value.Kind == yaml.ScalarNode {
					switch value.ShortTag() {
					case "!!int", "!!float":
						value.Tag = "!!str"
						value.Style = yaml.DoubleQuotedStyle
					}
				}
			case "children":
				if value.Kind == yaml.SequenceNode {
					for _, child := range value.Content {
						versionsAsStrings(child)
					}
				}
			}
		}
	}
}

func detectFormat(location string, raw []byte) Format {
	switch strings.ToLower(filepath.Ext(location)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}
