package comments

import (
	"github.com/fragmede/habrscore/internal/dom"
	"github.com/fragmede/habrscore/internal/layout"
)

// AddOpenLink inserts a hidden expand link after the comment's nav region.
// Clicking it expands that one comment and suppresses navigation.
func AddOpenLink(creator dom.Creator, comment dom.Node, l layout.Layout) dom.Node {
	link := creator.Create("a", l.Labels.Expand, l.Classes.OpenComment, l.Classes.Hide)
	link.SetAttr("href", "#")
	link.SetAttr("style", "margin-left: 10px")
	link.OnClick(func() bool {
		Toggle(comment, l, true)
		return false
	})

	if nav := comment.First(l.Selectors.CommentNav); nav != nil {
		nav.After(link)
	} else {
		comment.Append(link)
	}
	return link
}

// Toggle expands or collapses a single comment: message, footer and reply
// form are shown when expanded and the expand link is shown when collapsed.
func Toggle(comment dom.Node, l layout.Layout, expanded bool) {
	if comment == nil {
		return
	}
	hide := l.Classes.Hide
	for _, sel := range []string{l.Selectors.Message, l.Selectors.Footer, l.Selectors.ReplyForm} {
		if el := comment.First(sel); el != nil {
			el.ToggleClass(hide, !expanded)
		}
	}
	if link := OpenLink(comment, l); link != nil {
		link.ToggleClass(hide, expanded)
	}
}

// OpenLink returns the comment's expand link, or nil before it is added.
func OpenLink(comment dom.Node, l layout.Layout) dom.Node {
	if comment == nil {
		return nil
	}
	return comment.First("." + l.Classes.OpenComment)
}
