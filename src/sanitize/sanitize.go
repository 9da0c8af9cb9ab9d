// Package sanitize cleans raw job logs before they are embedded in
// collector events. GitHub log archives carry terminal colour codes and
// Windows line endings from the runner; neither is useful once indexed.
package sanitize

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
)

// TruncationMarker is appended to logs cut by Truncate.
const TruncationMarker = "\n... [truncated %d bytes]"

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// StripANSI removes ANSI escape sequences, including APC markers emitted by
// some runners.
func StripANSI(s string) string {
	return ansi.Strip(s)
}

// Clean strips escape sequences, normalizes line endings and drops trailing
// newlines.
func Clean(s string) string {
	s = StripANSI(s)
	s = lineEndings.Replace(s)
	return strings.TrimRight(s, "\n")
}

// Truncate limits s to maxBytes, cutting on a rune boundary. The marker
// counts against the limit; when the limit cannot hold it, the text is cut
// without one. A maxBytes of zero or less disables the limit.
func Truncate(s string, maxBytes int) string {
	if maxBytes <= 0 || len(s) <= maxBytes {
		return s
	}

	cut := runeBoundary(s, maxBytes)
	marker := fmt.Sprintf(TruncationMarker, len(s)-cut)
	for cut+len(marker) > maxBytes {
		if len(marker) > maxBytes {
			return s[:runeBoundary(s, maxBytes)]
		}
		cut = runeBoundary(s, maxBytes-len(marker))
		marker = fmt.Sprintf(TruncationMarker, len(s)-cut)
	}

	return s[:cut] + marker
}

// runeBoundary returns the largest rune start at or before n.
func runeBoundary(s string, n int) int {
	for n > 0 && n < len(s) && !utf8.RuneStart(s[n]) {
		n--
	}
	return n
}
