package score

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"plain", "12", 12},
		{"plus", "+3", 3},
		{"ascii minus", "-5", -5},
		{"en dash", "–5", -5},
		{"unicode minus", "−7", -7},
		{"letters", "abc", 0},
		{"surrounded", "  score: +42 votes", 42},
		{"first wins", "4 and 9", 4},
		{"overflow", "99999999999999999999999", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.in))
		})
	}
}

func TestParseDashEquivalence(t *testing.T) {
	assert.Equal(t, Parse("-5"), Parse("–5"))
}

func TestExtractDistinguishesZero(t *testing.T) {
	n, ok := Extract("0")
	assert.True(t, ok)
	assert.Zero(t, n)

	n, ok = Extract("n/a")
	assert.False(t, ok)
	assert.Zero(t, n)
}

func TestParseRoundTripsIntegers(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(-100000, 100000).Draw(t, "n")
		prefix := rapid.StringMatching(`[a-z ]{0,5}`).Draw(t, "prefix")
		if got := Parse(prefix + strconv.Itoa(n)); got != n {
			t.Fatalf("Parse(%q) = %d, want %d", prefix+strconv.Itoa(n), got, n)
		}
	})
}

func TestParseNeverPanics(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		Parse(rapid.String().Draw(t, "text"))
	})
}
