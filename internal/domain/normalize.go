package domain

import "strings"

// NormalizeUsername trims whitespace and lowercases a username so lookups and
// join rows agree on one canonical form.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeTitle trims leading/trailing whitespace and collapses internal
// whitespace runs.
func NormalizeTitle(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
