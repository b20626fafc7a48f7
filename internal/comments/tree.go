// Package comments builds the comment tree and score histogram of a page.
package comments

import (
	"sort"
	"strconv"

	"github.com/fragmede/habrscore/internal/dom"
)

// Comment is one comment of the page. Item is the list item holding the
// comment and its replies; Element is the comment body inside it, nil when
// the item has none. The tree never changes shape after it is built.
type Comment struct {
	Item      dom.Node
	Element   dom.Node
	ScoreText string
	Score     int
	Children  []*Comment
}

// Forest is the ordered list of top-level comments.
type Forest []*Comment

// Count returns the number of comments at every depth.
func (f Forest) Count() int {
	n := 0
	f.Walk(func(*Comment, int) { n++ })
	return n
}

// Walk visits every comment depth-first in document order.
func (f Forest) Walk(fn func(c *Comment, depth int)) {
	var walk func(list []*Comment, depth int)
	walk = func(list []*Comment, depth int) {
		for _, c := range list {
			fn(c, depth)
			walk(c.Children, depth+1)
		}
	}
	walk(f, 0)
}

// Histogram counts comments per score.
type Histogram map[int]int

// Add records one comment with the given score.
func (h Histogram) Add(score int) {
	h[score]++
}

// Total returns the number of recorded comments.
func (h Histogram) Total() int {
	n := 0
	for _, c := range h {
		n += c
	}
	return n
}

// Bucket is one histogram entry.
type Bucket struct {
	Score int `json:"score"`
	Count int `json:"count"`
}

// Label is the bucket as displayed: the score, with the count in
// parentheses when more than one comment has it.
func (b Bucket) Label() string {
	s := strconv.Itoa(b.Score)
	if b.Count > 1 {
		s += "(" + strconv.Itoa(b.Count) + ")"
	}
	return s
}

// Sorted returns the buckets by score, highest first.
func (h Histogram) Sorted() []Bucket {
	buckets := make([]Bucket, 0, len(h))
	for s, c := range h {
		buckets = append(buckets, Bucket{Score: s, Count: c})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Score > buckets[j].Score
	})
	return buckets
}
