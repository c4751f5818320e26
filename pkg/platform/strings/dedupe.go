// Package strings provides string manipulation utilities.
package strings

import (
	"strings"
)

// DedupeAndTrim trims each value and drops blanks and exact repeats, keeping
// first-seen order. Comparison is case-sensitive, so "A@x.com" and "a@x.com"
// both survive; case-insensitive matching is the validator's job.
//
//	DedupeAndTrim([]string{" a@x.com ", "b@x.com", "a@x.com", ""})
//	// []string{"a@x.com", "b@x.com"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}
