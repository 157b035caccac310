package fallback

import (
	"strings"

	"github.com/goliatone/go-widgetschema/pkg/registry"
	"github.com/goliatone/go-widgetschema/pkg/schema"
)

// Error display modes understood by error-widget renderers.
const (
	DisplayPlaceholder = "placeholder"
	DisplayMessage     = "message"
	DisplayHidden      = "hidden"
)

const genericFailure = "widget could not be rendered"

// Terminal builds the error widget directly. The processor uses it when the
// pipeline itself fails before the cascade can run.
func (r *Resolver) Terminal(original schema.WidgetSchema, issues []schema.Issue) schema.WidgetSchema {
	var in Input
	in.Schema = original
	for _, issue := range issues {
		if issue.Severity == schema.SeverityError {
			in.Validation.Errors = append(in.Validation.Errors, issue)
			continue
		}
		in.Validation.Warnings = append(in.Validation.Warnings, issue)
	}
	return r.terminal(in)
}

func (r *Resolver) terminal(in Input) schema.WidgetSchema {
	messages := make([]any, 0, len(in.Validation.Errors))
	for _, issue := range in.Validation.Errors {
		if msg := strings.TrimSpace(issue.Message); msg != "" {
			messages = append(messages, msg)
		}
	}
	if len(messages) == 0 {
		messages = append(messages, genericFailure)
	}

	config := map[string]any{
		"originalType": in.Schema.Type,
		"errors":       messages,
		"errorDisplay": displayMode(in.Schema.Fallback),
	}
	if r.devMode {
		config["diagnostics"] = issueMaps(in.Validation.Errors)
		if len(in.Validation.Warnings) > 0 {
			config["warnings"] = issueMaps(in.Validation.Warnings)
		}
	}

	out := r.derive(in.Schema, registry.ErrorWidget, StrategyTerminal)
	out.Config = config
	return out
}

func displayMode(spec *schema.FallbackSpec) string {
	if spec == nil {
		return DisplayPlaceholder
	}
	switch mode := strings.ToLower(strings.TrimSpace(spec.ErrorDisplay)); mode {
	case DisplayPlaceholder, DisplayMessage, DisplayHidden:
		return mode
	default:
		return DisplayPlaceholder
	}
}

func issueMaps(issues []schema.Issue) []any {
	out := make([]any, 0, len(issues))
	for _, issue := range issues {
		entry := map[string]any{
			"path":     issue.Path,
			"message":  issue.Message,
			"severity": string(issue.Severity),
		}
		if issue.SuggestedFix != "" {
			entry["suggestedFix"] = issue.SuggestedFix
		}
		out = append(out, entry)
	}
	return out
}
