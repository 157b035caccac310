package fallback

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// maxUnescapeRounds bounds how many layers of entity encoding are peeled off.
const maxUnescapeRounds = 4

// plainText strips markup from agent-supplied text so the generic text widget
// only ever carries readable content. Entities are decoded before sanitising,
// so escaped markup is stripped rather than revived. The result is a fixed
// point: decoding it again and sanitising yields the same text. Input that is
// still changing after maxUnescapeRounds is returned in its escaped form.
func plainText(raw string) string {
	text := strings.TrimSpace(raw)
	for round := 0; round < maxUnescapeRounds; round++ {
		if text == "" {
			return ""
		}
		next := strings.TrimSpace(html.UnescapeString(textSanitizer().Sanitize(html.UnescapeString(text))))
		if next == text {
			return text
		}
		text = next
	}
	return strings.TrimSpace(textSanitizer().Sanitize(html.UnescapeString(text)))
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
