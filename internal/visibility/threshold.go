// Package visibility derives which comments are shown, collapsed or
// highlighted for a score threshold.
package visibility

import "strconv"

// Threshold is the minimum score to show. The zero value means no filter.
type Threshold struct {
	score int
	set   bool
}

// Unset returns the no-filter threshold.
func Unset() Threshold {
	return Threshold{}
}

// At returns a threshold at score.
func At(score int) Threshold {
	return Threshold{score: score, set: true}
}

// IsSet reports whether a filter is active.
func (t Threshold) IsSet() bool {
	return t.set
}

// Score returns the threshold score and whether it is set.
func (t Threshold) Score() (int, bool) {
	return t.score, t.set
}

// Passes reports whether a comment with score satisfies the threshold.
func (t Threshold) Passes(score int) bool {
	return !t.set || score >= t.score
}

// Toggle returns the threshold after selecting score: selecting the active
// score clears the filter.
func (t Threshold) Toggle(score int) Threshold {
	if t.set && t.score == score {
		return Unset()
	}
	return At(score)
}

func (t Threshold) String() string {
	if !t.set {
		return "none"
	}
	return ">=" + strconv.Itoa(t.score)
}
