package validation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-widgetschema/internal/pathutil"
	"github.com/goliatone/go-widgetschema/pkg/contract"
	"github.com/goliatone/go-widgetschema/pkg/evolution"
	"github.com/goliatone/go-widgetschema/pkg/registry"
	"github.com/goliatone/go-widgetschema/pkg/schema"
)

const typePath = "type"

// Validator checks schemas against a registry and the version contract.
type Validator struct {
	registry *registry.Registry
	config   evolution.Config
	depKeys  []string
}

// New constructs a validator. The deprecation keys are sorted once so
// warnings come out in a stable order.
func New(reg *registry.Registry, cfg evolution.Config) *Validator {
	keys := make([]string, 0, len(cfg.Deprecations))
	for key := range cfg.Deprecations {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return &Validator{registry: reg, config: cfg, depKeys: keys}
}

// Validate checks widget and its children. The corrected schema is only
// offered when the single error is an unregistered type with a suggestion.
func (v *Validator) Validate(widget schema.WidgetSchema) Result {
	result := v.check(widget)
	result.add(v.deprecations(widget)...)
	result.Valid = len(result.Errors) == 0

	if len(result.Errors) == 1 {
		only := result.Errors[0]
		if only.Path == typePath && only.SuggestedFix != "" {
			corrected := widget.Clone()
			corrected.Type = only.SuggestedFix
			result.Corrected = &corrected
		}
	}
	return result
}

func (v *Validator) check(widget schema.WidgetSchema) Result {
	var result Result

	widgetType := widget.Type
	switch {
	case strings.TrimSpace(widgetType) == "":
		result.add(schema.NewError(typePath, "widget type is required"))
	case widgetType == registry.ErrorWidget:
		// always renderable; the cascade must never loop on it
	default:
		if reg, ok := v.registry.Lookup(widgetType); ok {
			result.add(contract.NullLeaves{}.Check(widget)...)
			if reg.Contract != nil {
				result.add(reg.Contract.Check(widget)...)
			}
		} else {
			issue := schema.NewError(typePath, fmt.Sprintf("widget type %q is not registered", widgetType))
			if suggestion, ok := v.registry.FindSimilar(widgetType); ok {
				issue.SuggestedFix = suggestion
			}
			result.add(issue)
		}
	}

	if version := strings.TrimSpace(widget.Version); version != "" && !v.config.IsCurrent(version) {
		message := fmt.Sprintf("schema version %q is not supported; current version is %q", version, v.config.CurrentVersion)
		if v.config.Supports(version) {
			message = fmt.Sprintf("schema version %q is not the current version %q", version, v.config.CurrentVersion)
		}
		result.add(schema.NewWarning("version", message))
	}

	for idx, child := range widget.Children {
		prefix := pathutil.Index("children", idx)
		childResult := v.check(child)
		for _, issue := range childResult.Issues() {
			issue.Path = pathutil.Prefix(prefix, issue.Path)
			result.add(issue)
		}
	}
	return result
}

// deprecations scans the serialised schema for deprecated feature keys. The
// match is a plain substring test, so a key inside unrelated string content
// also triggers a warning.
func (v *Validator) deprecations(widget schema.WidgetSchema) []schema.Issue {
	if len(v.depKeys) == 0 {
		return nil
	}
	raw, err := json.Marshal(widget)
	if err != nil {
		return nil
	}
	serialised := string(raw)

	var issues []schema.Issue
	for _, key := range v.depKeys {
		if !strings.Contains(serialised, key) {
			continue
		}
		dep := v.config.Deprecations[key]
		message := strings.TrimSpace(dep.Message)
		if message == "" {
			message = fmt.Sprintf("%s is deprecated", key)
		}
		issue := schema.NewWarning(key, message)
		if dep.Replacement != "" {
			issue.SuggestedFix = fmt.Sprintf("use %s instead", dep.Replacement)
		}
		issues = append(issues, issue)
	}
	return issues
}
