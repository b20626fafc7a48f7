// Package score extracts signed comment scores from rendered vote counters.
package score

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	numberRe = regexp.MustCompile(`[+-]?\d+`)

	// Vote counters render negative values with a typographic dash.
	minusReplacer = strings.NewReplacer("–", "-", "−", "-")
)

// Parse returns the first signed integer in text, or 0 when text is empty
// or holds no number.
func Parse(text string) int {
	n, _ := Extract(text)
	return n
}

// Extract is Parse but reports whether a number was found, so callers can
// tell an explicit zero from a missing score.
func Extract(text string) (int, bool) {
	if text == "" {
		return 0, false
	}
	m := numberRe.FindString(minusReplacer.Replace(text))
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}
