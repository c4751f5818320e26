package email

import "strings"

// LineSeparator is the separator used by every text and CSV input path.
const LineSeparator = "\n"

// Parse splits raw on sep, trims each piece, and drops empty ones.
// Order is preserved and nothing is deduplicated.
func Parse(raw, sep string) []string {
	if raw == "" {
		return []string{}
	}
	var pieces []string
	if sep == "" {
		pieces = []string{raw}
	} else {
		pieces = strings.Split(raw, sep)
	}
	out := make([]string, 0, len(pieces))
	for _, p := range pieces {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ParseLines is Parse with the newline separator.
func ParseLines(raw string) []string {
	return Parse(raw, LineSeparator)
}
