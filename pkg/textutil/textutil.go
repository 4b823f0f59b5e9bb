package textutil

import (
	"regexp"
	"strings"
)

var (
	bracketGroupPattern = regexp.MustCompile(`\[.*?\]`)
	parenGroupPattern   = regexp.MustCompile(`\(.*?\)`)
	specialCharPattern  = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	multiSpacePattern   = regexp.MustCompile(`\s{2,}`)
	whitespaceRunPattern = regexp.MustCompile(`\s+`)
)

// Clean sanitizes raw metadata text for display and for use as a
// deduplication key. It strips bracketed and parenthetical groups, removes
// punctuation and special characters (keeping letters, digits, and
// whitespace), normalizes the "Volumen" marker to "Vol.", and collapses
// repeated spaces. Pure, deterministic; empty input yields empty output.
func Clean(text string) string {
	text = bracketGroupPattern.ReplaceAllString(text, "")
	text = parenGroupPattern.ReplaceAllString(text, "")
	text = specialCharPattern.ReplaceAllString(text, "")
	// Runs after the punctuation pass so the trailing period survives.
	text = strings.ReplaceAll(text, "Volumen", "Vol.")
	text = multiSpacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// StripGroups removes bracketed and parenthetical groups and trims the
// edges, leaving every other character intact. Extraction applies this to
// the raw title so downstream lookups never see release tags like
// "(Special Edition)" or "[EPUB]".
func StripGroups(text string) string {
	text = bracketGroupPattern.ReplaceAllString(text, "")
	text = parenGroupPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// PathSegment converts already-cleaned text into a value safe to use as a
// directory or file name segment: whitespace runs become single underscores
// and edges are trimmed. It does not re-run the cleaning pass; callers must
// Clean first.
func PathSegment(text string) string {
	text = strings.TrimSpace(text)
	return whitespaceRunPattern.ReplaceAllString(text, "_")
}

// TruncateSegment bounds a path segment to at most n runes, trimming any
// trailing underscore left by the cut.
func TruncateSegment(segment string, n int) string {
	runes := []rune(segment)
	if len(runes) <= n {
		return segment
	}
	return strings.TrimRight(string(runes[:n]), "_")
}
