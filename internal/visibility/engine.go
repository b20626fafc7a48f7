package visibility

import (
	"github.com/fragmede/habrscore/internal/comments"
	"github.com/fragmede/habrscore/internal/dom"
	"github.com/fragmede/habrscore/internal/layout"
	"github.com/fragmede/habrscore/internal/score"
)

// Engine applies thresholds to a page. It keeps no state between calls;
// everything it decides is written to the document.
type Engine struct {
	root   dom.Node
	layout layout.Layout
}

// NewEngine creates an engine over the document rooted at root.
func NewEngine(root dom.Node, l layout.Layout) *Engine {
	return &Engine{root: root, layout: l}
}

// result summarizes a list of sibling comments.
type result struct {
	// anyPasses: some comment in the list or below it passes.
	anyPasses bool
	// directPasses: some comment in the list itself passes.
	directPasses bool
}

// Apply recomputes the state of every comment in forest.
func (e *Engine) Apply(forest comments.Forest, t Threshold) {
	e.apply(forest, t, true)
}

func (e *Engine) apply(list []*comments.Comment, t Threshold, top bool) result {
	var res result
	for _, c := range list {
		passes := t.Passes(c.Score)
		if head := e.head(c); head != nil {
			head.ToggleClass(e.layout.Classes.Highlight, t.IsSet() && passes)
		}

		children := e.apply(c.Children, t, false)
		comments.Toggle(c.Element, e.layout, passes || children.directPasses)

		if top && c.Item != nil {
			c.Item.ToggleClass(e.layout.Classes.Hide, !(passes || children.anyPasses))
		}

		res.directPasses = res.directPasses || passes
		res.anyPasses = res.anyPasses || passes || children.anyPasses
	}
	return res
}

// HighlightBuckets marks the rendered score buckets at or above the
// threshold. Clearing the threshold clears every mark.
func (e *Engine) HighlightBuckets(t Threshold) {
	cls := e.layout.Classes
	for _, a := range e.root.All("." + cls.Scores + " a") {
		n, ok := score.Extract(a.Text())
		a.ToggleClass(cls.Highlight, ok && t.IsSet() && t.Passes(n))
	}
}

// State is the presentation state of one comment as written to the page.
type State struct {
	// Hidden is set on top-level comments removed by the filter.
	Hidden bool
	// Collapsed comments show only their header and an expand link.
	Collapsed   bool
	Highlighted bool
}

// Inspect reads the state of c back from the document. top must be true
// for top-level comments, whose item carries the hidden flag.
func (e *Engine) Inspect(c *comments.Comment, top bool) State {
	cls := e.layout.Classes
	var s State
	if top && c.Item != nil {
		s.Hidden = c.Item.HasClass(cls.Hide)
	}
	if link := comments.OpenLink(c.Element, e.layout); link != nil {
		s.Collapsed = !link.HasClass(cls.Hide)
	}
	if head := e.head(c); head != nil {
		s.Highlighted = head.HasClass(cls.Highlight)
	}
	return s
}

func (e *Engine) head(c *comments.Comment) dom.Node {
	if c.Element == nil {
		return nil
	}
	return c.Element.First(e.layout.Selectors.CommentHead)
}
