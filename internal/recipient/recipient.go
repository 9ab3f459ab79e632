// Package recipient normalizes raw recipient text into an ordered address list.
package recipient

import "strings"

// Parse splits raw recipient text on commas, semicolons and newlines,
// trims each segment and drops empty ones. First-occurrence order is
// preserved and duplicates pass through untouched; address syntax is not
// validated here; the transport reports failures per recipient.
func Parse(raw string) []string {
	normalized := strings.NewReplacer(";", ",", "\r\n", ",", "\n", ",").Replace(raw)

	parts := strings.Split(normalized, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
