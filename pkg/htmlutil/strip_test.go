package htmlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripTags(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text untouched",
			input:    "A quiet story about books.",
			expected: "A quiet story about books.",
		},
		{
			name:     "paragraph tags removed, content kept",
			input:    "<p>First line. </p><p>Second line.</p>",
			expected: "First line. Second line.",
		},
		{
			name:     "attributes removed with tag",
			input:    `<div class="synopsis">An orphan finds a library.</div>`,
			expected: "An orphan finds a library.",
		},
		{
			name:     "tag removed verbatim, no space inserted",
			input:    "word<br/>break",
			expected: "wordbreak",
		},
		{
			name:     "unmatched bracket passes through",
			input:    "rating < 5 stars",
			expected: "rating < 5 stars",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripTags(tt.input))
		})
	}
}
