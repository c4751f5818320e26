// Package email holds the string-level rules for invitee emails: splitting raw
// input into candidates, the email-shape check, and display-name derivation.
package email

import (
	"regexp"
	"strings"
	"unicode"
)

// shapePattern accepts local@domain.tld where no part contains whitespace or '@'.
var shapePattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidShape reports whether s looks like an email address.
func IsValidShape(s string) bool {
	return shapePattern.MatchString(s)
}

// Normalize is the comparison form used for deduplication and membership.
func Normalize(s string) string {
	return strings.ToLower(s)
}

// DeriveNameFromEmail guesses first and last names from the local part.
func DeriveNameFromEmail(email string) (string, string) {
	localPart := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		localPart = email[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})

	if len(parts) == 0 {
		return "Learner", "Learner"
	}

	first := capitalize(parts[0])
	last := ""
	if len(parts) > 1 {
		last = capitalize(parts[len(parts)-1])
	}

	return first, last
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
