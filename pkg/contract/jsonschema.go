package contract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/goliatone/go-widgetschema/internal/pathutil"
	"github.com/goliatone/go-widgetschema/pkg/schema"
)

var (
	printer     = message.NewPrinter(language.English)
	resourceSeq atomic.Uint64
)

// JSONSchema validates the configuration payload against a compiled JSON
// Schema document. Each leaf cause becomes an error-grade issue.
type JSONSchema struct {
	compiled *jsonschema.Schema
}

// NewJSONSchema compiles a JSON Schema document supplied as raw JSON.
func NewJSONSchema(raw []byte) (*JSONSchema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("contract: unmarshal json schema: %w", err)
	}

	url := fmt.Sprintf("widget-contract-%d.json", resourceSeq.Add(1))
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("contract: add json schema resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("contract: compile json schema: %w", err)
	}
	return &JSONSchema{compiled: compiled}, nil
}

// NewJSONSchemaFromMap compiles a JSON Schema held as a decoded map, as found
// in widget manifests.
func NewJSONSchemaFromMap(doc map[string]any) (*JSONSchema, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("contract: marshal json schema: %w", err)
	}
	return NewJSONSchema(raw)
}

// Check implements registry.Contract.
func (c *JSONSchema) Check(widget schema.WidgetSchema) []schema.Issue {
	if c == nil || c.compiled == nil {
		return nil
	}
	root := widget.PayloadKey()

	payload := widget.Payload()
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return []schema.Issue{schema.NewError(root, fmt.Sprintf("payload is not serialisable: %v", err))}
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return []schema.Issue{schema.NewError(root, fmt.Sprintf("payload is not valid json: %v", err))}
	}

	err = c.compiled.Validate(inst)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []schema.Issue{schema.NewError(root, err.Error())}
	}

	var issues []schema.Issue
	collectCauses(root, ve, &issues)
	if len(issues) == 0 {
		issues = append(issues, schema.NewError(root, ve.Error()))
	}
	return dedupe(issues)
}

func collectCauses(root string, ve *jsonschema.ValidationError, issues *[]schema.Issue) {
	if len(ve.Causes) > 0 {
		for _, cause := range ve.Causes {
			collectCauses(root, cause, issues)
		}
		return
	}
	if ve.ErrorKind == nil {
		return
	}
	keyword := ""
	if kw := ve.ErrorKind.KeywordPath(); len(kw) > 0 {
		keyword = kw[len(kw)-1]
	}
	switch keyword {
	case "", "oneOf", "allOf", "$ref":
		return
	}
	*issues = append(*issues, schema.NewError(
		pathutil.FromSegments(root, ve.InstanceLocation),
		ve.ErrorKind.LocalizedString(printer),
	))
}

func dedupe(issues []schema.Issue) []schema.Issue {
	seen := make(map[string]struct{}, len(issues))
	out := issues[:0]
	for _, issue := range issues {
		key := issue.Path + "|" + issue.Message
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, issue)
	}
	return out
}
