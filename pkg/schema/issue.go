package schema

// Severity grades a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single validation finding. Path uses dotted notation with
// indexed segments, e.g. children[1].config.items[0].
type Issue struct {
	Path         string   `json:"path"`
	Message      string   `json:"message"`
	Severity     Severity `json:"severity"`
	SuggestedFix string   `json:"suggestedFix,omitempty"`
}

// NewError is shorthand for an error-grade issue.
func NewError(path, message string) Issue {
	return Issue{Path: path, Message: message, Severity: SeverityError}
}

// NewWarning is shorthand for a warning-grade issue.
func NewWarning(path, message string) Issue {
	return Issue{Path: path, Message: message, Severity: SeverityWarning}
}
