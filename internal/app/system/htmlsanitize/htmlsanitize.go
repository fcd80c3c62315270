// Package htmlsanitize strips markup from admin-supplied free text
// (document titles, descriptions, group names) before it is stored.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Sanitize removes all HTML from the input, returning trimmed plain
// text.
func Sanitize(s string) string {
	return strings.TrimSpace(policy.Sanitize(s))
}
