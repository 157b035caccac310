package validation

import "github.com/goliatone/go-widgetschema/pkg/schema"

// Result is the outcome of validating one schema tree.
type Result struct {
	Valid     bool                 `json:"valid"`
	Errors    []schema.Issue       `json:"errors,omitempty"`
	Warnings  []schema.Issue       `json:"warnings,omitempty"`
	Corrected *schema.WidgetSchema `json:"corrected,omitempty"`
}

// Issues returns errors followed by warnings.
func (r Result) Issues() []schema.Issue {
	out := make([]schema.Issue, 0, len(r.Errors)+len(r.Warnings))
	out = append(out, r.Errors...)
	return append(out, r.Warnings...)
}

// Messages returns the error messages in order.
func (r Result) Messages() []string {
	out := make([]string, 0, len(r.Errors))
	for _, issue := range r.Errors {
		out = append(out, issue.Message)
	}
	return out
}

func (r *Result) add(issues ...schema.Issue) {
	for _, issue := range issues {
		if issue.Severity == schema.SeverityError {
			r.Errors = append(r.Errors, issue)
			continue
		}
		r.Warnings = append(r.Warnings, issue)
	}
}
