package commentview

import (
	"strings"

	"github.com/fragmede/habrscore/internal/comments"
	"github.com/fragmede/habrscore/internal/layout"
	"github.com/fragmede/habrscore/internal/visibility"
)

// FlattenForest converts the comment forest into a flat list for display.
// Top-level comments hidden by the filter are dropped with their replies.
// Body holds the raw message markup; it is rendered to text by the view.
func FlattenForest(forest comments.Forest, engine *visibility.Engine, l layout.Layout) []FlatComment {
	var result []FlatComment

	var walk func(c *comments.Comment, depth, parent int)
	walk = func(c *comments.Comment, depth, parent int) {
		state := engine.Inspect(c, depth == 0)
		if state.Hidden {
			return
		}
		idx := len(result)
		fc := FlatComment{
			Comment: c,
			Depth:   depth,
			Parent:  parent,
			State:   state,
			Header:  c.ScoreText,
		}
		if c.Element != nil {
			if head := c.Element.First(l.Selectors.CommentHead); head != nil {
				fc.Header = collapseSpace(strings.ReplaceAll(head.Text(), l.Labels.Expand, ""))
			}
			if msg := c.Element.First(l.Selectors.Message); msg != nil {
				fc.Body = msg.HTML()
			}
		}
		result = append(result, fc)
		for _, child := range c.Children {
			walk(child, depth+1, idx)
		}
	}

	for _, c := range forest {
		walk(c, 0, -1)
	}
	return result
}

// Expanded counts the comments whose body is on display.
func Expanded(list []FlatComment) int {
	n := 0
	for _, fc := range list {
		if !fc.State.Collapsed {
			n++
		}
	}
	return n
}

// FindNextSiblingIndex returns the index of the next comment at the same depth.
func FindNextSiblingIndex(list []FlatComment, currentIdx int) int {
	if currentIdx < 0 || currentIdx >= len(list) {
		return -1
	}
	depth := list[currentIdx].Depth
	for i := currentIdx + 1; i < len(list); i++ {
		if list[i].Depth < depth {
			return -1 // Went up in tree, no more siblings.
		}
		if list[i].Depth == depth {
			return i
		}
	}
	return -1
}

// FindNextExpandedIndex returns the index of the next comment after
// currentIdx whose body is shown, or -1.
func FindNextExpandedIndex(list []FlatComment, currentIdx int) int {
	for i := currentIdx + 1; i < len(list); i++ {
		if !list[i].State.Collapsed {
			return i
		}
	}
	return -1
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
