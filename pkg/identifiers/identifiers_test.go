package identifiers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeISBN(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "urn prefix and hyphens",
			input:    "urn:isbn:978-0-306-40615-7",
			expected: "9780306406157",
		},
		{
			name:     "plain isbn prefix",
			input:    "isbn:9780140328721",
			expected: "9780140328721",
		},
		{
			name:     "uppercase scheme",
			input:    "ISBN 0-19-852663-6",
			expected: "0198526636",
		},
		{
			name:     "isbn10 with x checksum",
			input:    "097522980x",
			expected: "097522980X",
		},
		{
			name:     "garbage stripped",
			input:    "calibre:12345",
			expected: "12345",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeISBN(tt.input))
		})
	}
}

func TestValidateISBN13(t *testing.T) {
	assert.True(t, ValidateISBN13("9780306406157"))
	assert.True(t, ValidateISBN13("9780140328721"))
	assert.False(t, ValidateISBN13("9780306406158"), "bad checksum")
	assert.False(t, ValidateISBN13("030640615"), "wrong length")
	assert.False(t, ValidateISBN13("97803064061x7"), "non-digit")
	assert.False(t, ValidateISBN13(""))
}

func TestExtractISBN13s(t *testing.T) {
	values := []string{
		"urn:uuid:12345678-1234-1234-1234-123456789012",
		"urn:isbn:978-0-306-40615-7",
		"isbn:not-a-number",
		"9780140328721", // valid but no isbn marker, skipped by the heuristic
		"ISBN 9788445071410",
	}

	assert.Equal(t, []string{"9780306406157", "9788445071410"}, ExtractISBN13s(values))
	assert.Empty(t, ExtractISBN13s(nil))
	assert.Empty(t, ExtractISBN13s([]string{"urn:uuid:abc"}))
}

func TestHasRegistrationGroup(t *testing.T) {
	assert.True(t, HasRegistrationGroup("9788445071410", []string{"84"}))
	assert.False(t, HasRegistrationGroup("9780306406157", []string{"84"}))
	assert.False(t, HasRegistrationGroup("9788445071410", nil))
	assert.False(t, HasRegistrationGroup("978", []string{"84"}))
}

func TestPreferEdition(t *testing.T) {
	flagged := []string{"84"}

	t.Run("non-flagged edition preferred", func(t *testing.T) {
		got := PreferEdition([]string{"9788445071410", "9780306406157"}, flagged)
		assert.Equal(t, "9780306406157", got)
	})

	t.Run("flagged edition used when alone", func(t *testing.T) {
		got := PreferEdition([]string{"9788445071410"}, flagged)
		assert.Equal(t, "9788445071410", got)
	})

	t.Run("first wins when none flagged", func(t *testing.T) {
		got := PreferEdition([]string{"9780306406157", "9780140328721"}, flagged)
		assert.Equal(t, "9780306406157", got)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", PreferEdition(nil, flagged))
	})
}
