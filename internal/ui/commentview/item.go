package commentview

import (
	"github.com/fragmede/habrscore/internal/comments"
	"github.com/fragmede/habrscore/internal/visibility"
)

// FlatComment is a comment flattened from the tree for display.
type FlatComment struct {
	Comment *comments.Comment
	Depth   int
	// Parent is the index of the parent comment in the flat list, or -1.
	Parent int
	State  visibility.State
	Header string
	Body   string
}
