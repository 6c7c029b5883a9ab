// Package sanitize strips dangerous markup from note fields before they are
// persisted. Titles allow no HTML at all; content keeps the safe
// user-generated subset (links, emphasis, lists) and drops scripts.
package sanitize

import "github.com/microcosm-cc/bluemonday"

var (
	strict = bluemonday.StrictPolicy()
	ugc    = bluemonday.UGCPolicy()
)

// Title removes all HTML from a note title.
func Title(s string) string {
	return strict.Sanitize(s)
}

// Content filters note content through the UGC policy. Plain text passes
// through unchanged.
func Content(s string) string {
	return ugc.Sanitize(s)
}
