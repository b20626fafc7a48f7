// Package presenter renders the score histogram as selectable buckets and
// owns the active threshold.
package presenter

import (
	"strconv"

	"github.com/fragmede/habrscore/internal/comments"
	"github.com/fragmede/habrscore/internal/dom"
	"github.com/fragmede/habrscore/internal/layout"
	"github.com/fragmede/habrscore/internal/visibility"
)

// Presenter renders buckets into the page and applies the filter when one
// is selected.
type Presenter struct {
	creator   dom.Creator
	root      dom.Node
	layout    layout.Layout
	engine    *visibility.Engine
	forest    comments.Forest
	buckets   []comments.Bucket
	threshold visibility.Threshold
	onChange  func(visibility.Threshold)
}

// New creates a presenter for forest.
func New(creator dom.Creator, root dom.Node, l layout.Layout, engine *visibility.Engine, forest comments.Forest) *Presenter {
	return &Presenter{
		creator: creator,
		root:    root,
		layout:  l,
		engine:  engine,
		forest:  forest,
	}
}

// OnChange registers a callback run after every threshold change.
func (p *Presenter) OnChange(fn func(visibility.Threshold)) {
	p.onChange = fn
}

// Render inserts the scores block into the page and returns it. Nothing is
// inserted for an empty histogram.
func (p *Presenter) Render(hist comments.Histogram) dom.Node {
	p.buckets = hist.Sorted()
	if len(p.buckets) == 0 {
		return nil
	}

	cls := p.layout.Classes
	block := p.creator.Create("div", "", cls.Scores)
	block.Append(p.creator.CreateText(p.layout.Labels.Scores))
	for _, b := range p.buckets {
		score := b.Score
		a := p.creator.Create("a", strconv.Itoa(score), bucketClasses(cls, score)...)
		a.SetAttr("href", "#")
		a.SetAttr("style", "padding-right: 2px; padding-left: 3px")
		a.OnClick(func() bool {
			p.Select(score)
			return false
		})
		block.Append(a)
		if b.Count > 1 {
			block.Append(p.creator.CreateText("(" + strconv.Itoa(b.Count) + ") "))
		} else {
			block.Append(p.creator.CreateText(" "))
		}
	}
	p.mount(block)
	return block
}

// mount attaches the block under the comments title, falling back to the
// comment list's parent and then the page root.
func (p *Presenter) mount(block dom.Node) {
	sel := p.layout.Selectors
	if title := p.root.First(sel.CommentTitle); title != nil {
		title.Append(block)
		return
	}
	if list := p.root.First(sel.ListComments); list != nil {
		if parent := list.Parent(); parent != nil {
			parent.Append(block)
			return
		}
	}
	p.root.Append(block)
}

// bucketClasses returns the counter class plus the sign class of score.
func bucketClasses(cls layout.Classes, score int) []string {
	var out []string
	if cls.Counter != "" {
		out = append(out, cls.Counter)
	}
	switch {
	case score < 0:
		out = append(out, cls.Negative)
	case score > 0:
		out = append(out, cls.Positive)
	}
	return out
}

// Select toggles the threshold at score and reapplies the filter to the
// whole forest.
func (p *Presenter) Select(score int) visibility.Threshold {
	p.threshold = p.threshold.Toggle(score)
	p.refresh()
	return p.threshold
}

// Clear removes the filter.
func (p *Presenter) Clear() {
	p.threshold = visibility.Unset()
	p.refresh()
}

func (p *Presenter) refresh() {
	p.engine.Apply(p.forest, p.threshold)
	p.engine.HighlightBuckets(p.threshold)
	if p.onChange != nil {
		p.onChange(p.threshold)
	}
}

// Threshold returns the active threshold.
func (p *Presenter) Threshold() visibility.Threshold {
	return p.threshold
}

// Buckets returns the rendered buckets, highest score first.
func (p *Presenter) Buckets() []comments.Bucket {
	return p.buckets
}

// Forest returns the comments the presenter filters.
func (p *Presenter) Forest() comments.Forest {
	return p.forest
}
