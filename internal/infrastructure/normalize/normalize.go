// Package normalize collapses extracted document text into a canonical
// whitespace form before chunking.
package normalize

import (
	"regexp"
	"strings"
)

var (
	newlineRuns = regexp.MustCompile(`\n{3,}`)
	spaceRuns   = regexp.MustCompile(` {2,}`)
)

// Text collapses runs of 3+ newlines to exactly two, runs of 2+ spaces to
// one, and strips leading/trailing whitespace. Idempotent.
func Text(s string) string {
	s = newlineRuns.ReplaceAllString(s, "\n\n")
	s = spaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
