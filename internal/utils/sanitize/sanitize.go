package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict is a cached bluemonday policy that removes all HTML tags and attributes.
// It's safe for concurrent use as bluemonday.Policy is read-only after build.
// WARNING: Never call mutating helpers (e.g. AddAttr, AllowElements) on this policy
// after initialization as it would create a data race.
var strict = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true) // Prevents word concatenation
	return p
}()

// Clean strips all HTML from a user-supplied display string and normalizes
// whitespace. Profile fields (fullName in particular) must pass through
// Clean before hitting the DB; repositories assume already-sanitized input.
//
// Examples:
//   - "<script>alert('xss')</script>Jane" -> "Jane"
//   - "  Jane   Doe  " -> "Jane Doe"
//   - "&nbsp;Jane" -> "Jane"
func Clean(s string) string {
	sanitized := strict.Sanitize(s)
	sanitized = strings.TrimSpace(sanitized)

	// Unescape HTML entities so &amp; etc. survive as plain characters
	sanitized = html.UnescapeString(sanitized)

	// Normalize non-breaking spaces, then collapse runs of whitespace
	sanitized = strings.ReplaceAll(sanitized, "\u00a0", " ")
	sanitized = strings.Join(strings.Fields(sanitized), " ")

	return sanitized
}
