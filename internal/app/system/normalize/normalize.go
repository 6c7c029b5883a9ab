// Package normalize canonicalizes user-entered identity fields once, at the
// boundary, so stored form and lookup form always agree.
package normalize

import "strings"

// Email trims and lowercases an email address. Both storage and lookups go
// through this, which keeps the unique index on users.email meaningful.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name collapses internal whitespace and trims a display name.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
