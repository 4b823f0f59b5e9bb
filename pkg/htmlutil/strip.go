package htmlutil

import (
	"regexp"
)

// tagPattern matches HTML-like tags, including self-closing tags. This is a
// deliberate pattern match rather than a full HTML parse: tags are removed
// verbatim, their content is kept, and unmatched angle brackets pass through.
var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripTags removes all HTML-like tags from a string. Surrounding content
// is left exactly as written, so "word<br/>break" becomes "wordbreak".
func StripTags(html string) string {
	return tagPattern.ReplaceAllString(html, "")
}
