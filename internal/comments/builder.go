package comments

import (
	"github.com/fragmede/habrscore/internal/dom"
	"github.com/fragmede/habrscore/internal/layout"
	"github.com/fragmede/habrscore/internal/score"
)

// Builder parses comment lists into a Forest.
type Builder struct {
	creator dom.Creator
	layout  layout.Layout
}

// NewBuilder creates a builder that attaches expand links made by creator.
func NewBuilder(creator dom.Creator, l layout.Layout) *Builder {
	return &Builder{creator: creator, layout: l}
}

// Build parses the comment items directly under container, recursing into
// nested lists. Every visited comment is counted in hist and its body gets
// an expand link. An item without a body scores 0 and gets no link. A nil
// container or one without items yields an empty forest.
func (b *Builder) Build(container dom.Node, hist Histogram) Forest {
	if container == nil {
		return nil
	}
	sel := b.layout.Selectors
	items := container.Children(sel.ItemComment)
	forest := make(Forest, 0, len(items))
	for _, item := range items {
		c := &Comment{Item: item}
		if body := b.own(item, sel.Comment); body != nil {
			c.Element = body
			AddOpenLink(b.creator, body, b.layout)
			if el := body.First(sel.Score); el != nil {
				c.ScoreText = el.Text()
			}
		}
		c.Score = score.Parse(c.ScoreText)
		hist.Add(c.Score)

		c.Children = b.Build(b.nestedContainer(item), hist)
		forest = append(forest, c)
	}
	return forest
}

// own returns the first descendant of node matching selector that is not
// part of a reply, in document order.
func (b *Builder) own(node dom.Node, selector string) dom.Node {
	for _, child := range node.Children("*") {
		if child.Matches(b.layout.Selectors.ItemComment) {
			continue
		}
		if child.Matches(selector) {
			return child
		}
		if found := b.own(child, selector); found != nil {
			return found
		}
	}
	return nil
}

// nestedContainer returns where an item's replies live. Layouts without a
// nested-comments container keep replies directly under the item.
func (b *Builder) nestedContainer(item dom.Node) dom.Node {
	if !b.layout.HasNested() {
		return item
	}
	return item.First(b.layout.Selectors.Nested)
}
