// Package htmlsanitize strips dangerous markup from user-supplied
// free text before it is stored (mentor remarks, meeting notes) or
// embedded into outgoing email bodies.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugc    = bluemonday.UGCPolicy()
	strict = bluemonday.StrictPolicy()
)

// Sanitize keeps user-generated-content-safe HTML (paragraphs,
// emphasis, safe links) and removes scripts, event handlers, and
// javascript: URLs. Used for mentor remarks, where light formatting
// is allowed to survive.
func Sanitize(s string) string {
	return ugc.Sanitize(s)
}

// Strict strips all markup, returning plain text. Used for fields
// that are stored and rendered as text, like meeting report notes.
func Strict(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}
