package identifiers

import (
	"strings"
	"unicode"
)

// NormalizeISBN strips the prefixes and separators publishers embed in
// identifier values ("urn:isbn:...", hyphenated groups) down to the bare
// digit string.
func NormalizeISBN(value string) string {
	value = strings.TrimSpace(value)
	lower := strings.ToLower(value)
	lower = strings.ReplaceAll(lower, "urn:", "")
	lower = strings.ReplaceAll(lower, "isbn:", "")
	lower = strings.ReplaceAll(lower, "isbn", "")
	lower = strings.ReplaceAll(lower, "-", "")

	// Keep only digits and X (ISBN-10 checksum character).
	var result strings.Builder
	for _, r := range lower {
		if unicode.IsDigit(r) || r == 'x' {
			result.WriteRune(r)
		}
	}
	return strings.ToUpper(result.String())
}

// ValidateISBN13 validates an ISBN-13 checksum.
// ISBN-13 uses alternating weights of 1 and 3.
func ValidateISBN13(isbn string) bool {
	if len(isbn) != 13 {
		return false
	}

	var sum int
	for i, r := range isbn {
		if !unicode.IsDigit(r) {
			return false
		}
		digit := int(r - '0')
		if i%2 == 0 {
			sum += digit
		} else {
			sum += digit * 3
		}
	}
	return sum%10 == 0
}

// ExtractISBN13s scans raw identifier values for ISBN candidates and returns
// every one that validates as an ISBN-13, in input order. The scan is a
// substring check on "isbn" rather than a scheme match: publisher metadata is
// too inconsistently formatted for anything stricter.
func ExtractISBN13s(values []string) []string {
	var isbns []string
	for _, value := range values {
		if !strings.Contains(strings.ToLower(value), "isbn") {
			continue
		}
		candidate := NormalizeISBN(value)
		if ValidateISBN13(candidate) {
			isbns = append(isbns, candidate)
		}
	}
	return isbns
}

// HasRegistrationGroup reports whether a normalized ISBN-13 carries one of
// the given registration groups (the digits after the 978/979 prefix that
// identify a country or language market).
func HasRegistrationGroup(isbn string, groups []string) bool {
	if len(isbn) != 13 {
		return false
	}
	body := isbn[3:]
	for _, group := range groups {
		if strings.HasPrefix(body, group) {
			return true
		}
	}
	return false
}

// PreferEdition picks the ISBN to use for an external lookup. When several
// editions of the same work are present and one carries a flagged regional
// registration group, a non-flagged edition wins so the lookup returns the
// original-language title. A flagged edition is still used when it is the
// only candidate.
func PreferEdition(isbns []string, flaggedGroups []string) string {
	if len(isbns) == 0 {
		return ""
	}
	for _, isbn := range isbns {
		if !HasRegistrationGroup(isbn, flaggedGroups) {
			return isbn
		}
	}
	return isbns[0]
}
