package render

import (
	"time"

	"github.com/dustin/go-humanize"
)

// Age describes how long ago t was, e.g. "3 minutes ago". The zero time
// renders as "never".
func Age(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

// Count renders n with thousands separators.
func Count(n int) string {
	return humanize.Comma(int64(n))
}
