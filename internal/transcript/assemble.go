// Package transcript joins recognized speech segments into one query.
package transcript

import "strings"

// Assemble joins final segments with single spaces, collapsing any whitespace
// the recognizer left inside or around them.
func Assemble(finalSegments []string) string {
	if len(finalSegments) == 0 {
		return ""
	}
	return strings.Join(strings.Fields(strings.Join(finalSegments, " ")), " ")
}
