package contract

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-widgetschema/internal/pathutil"
	"github.com/goliatone/go-widgetschema/pkg/registry"
	"github.com/goliatone/go-widgetschema/pkg/schema"
)

// NullLeaves reports every nil leaf under the configuration payload as a
// warning. Maps and slices are walked recursively in key order.
type NullLeaves struct{}

// Check implements registry.Contract.
func (NullLeaves) Check(widget schema.WidgetSchema) []schema.Issue {
	payload := widget.Payload()
	if len(payload) == 0 {
		return nil
	}
	var issues []schema.Issue
	walkNulls(widget.PayloadKey(), payload, &issues)
	return issues
}

func walkNulls(path string, value any, issues *[]schema.Issue) {
	switch typed := value.(type) {
	case nil:
		*issues = append(*issues, schema.NewWarning(path, "value is null or missing"))
	case map[string]any:
		for _, key := range schema.SortedKeys(typed) {
			walkNulls(pathutil.Join(path, key), typed[key], issues)
		}
	case []any:
		for idx, item := range typed {
			walkNulls(pathutil.Index(path, idx), item, issues)
		}
	}
}

// RequiredKeys demands the listed top-level payload keys be present and
// non-nil.
type RequiredKeys struct {
	Keys []string
}

// Check implements registry.Contract.
func (c RequiredKeys) Check(widget schema.WidgetSchema) []schema.Issue {
	if len(c.Keys) == 0 {
		return nil
	}
	payload := widget.Payload()
	root := widget.PayloadKey()

	var issues []schema.Issue
	for _, key := range c.Keys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if value, ok := payload[key]; ok && value != nil {
			continue
		}
		issues = append(issues, schema.NewError(pathutil.Join(root, key), fmt.Sprintf("%s is required", key)))
	}
	return issues
}

// All runs contracts in order and concatenates their issues.
func All(contracts ...registry.Contract) registry.Contract {
	list := make([]registry.Contract, 0, len(contracts))
	for _, c := range contracts {
		if c != nil {
			list = append(list, c)
		}
	}
	return registry.ContractFunc(func(widget schema.WidgetSchema) []schema.Issue {
		var issues []schema.Issue
		for _, c := range list {
			issues = append(issues, c.Check(widget)...)
		}
		return issues
	})
}
