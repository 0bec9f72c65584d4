// Package strings provides string list helpers for configuration parsing.
package strings

import (
	"strings"
)

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element. Order is preserved.
//
//	DedupeAndTrim([]string{"  foo ", "bar", "foo", "", "  "})
//	// Returns: []string{"foo", "bar"}
func DedupeAndTrim(values []string) []string {
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

// SplitList splits a comma-separated setting such as CORS_ALLOWED_ORIGINS
// into distinct trimmed entries.
func SplitList(s string) []string {
	return DedupeAndTrim(strings.Split(s, ","))
}
