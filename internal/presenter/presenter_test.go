package presenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/habrscore/internal/comments"
	"github.com/fragmede/habrscore/internal/dom"
	"github.com/fragmede/habrscore/internal/layout"
	"github.com/fragmede/habrscore/internal/testutil"
	"github.com/fragmede/habrscore/internal/visibility"
)

func setup(t *testing.T, page string, l layout.Layout) (*dom.Document, *Presenter, comments.Histogram) {
	t.Helper()
	doc, err := dom.ParseString(page)
	require.NoError(t, err)
	hist := comments.Histogram{}
	forest := comments.NewBuilder(doc, l).Build(doc.Root().First(l.Selectors.ListComments), hist)
	engine := visibility.NewEngine(doc.Root(), l)
	return doc, New(doc, doc.Root(), l, engine, forest), hist
}

func TestRenderLabels(t *testing.T) {
	l := layout.DesktopLayout()
	doc, p, hist := setup(t, testutil.DesktopPage(testutil.Flat(3, -1, 3, 0)), l)

	block := p.Render(hist)
	require.NotNil(t, block)
	assert.Equal(t, l.Labels.Scores+"3(2) 0 -1", block.Text())

	title := doc.Root().First(l.Selectors.CommentTitle)
	assert.NotNil(t, title.First("."+l.Classes.Scores), "block is mounted under the title")

	anchors := block.All("a")
	require.Len(t, anchors, 3)
	assert.True(t, anchors[0].HasClass(l.Classes.Positive))
	assert.False(t, anchors[1].HasClass(l.Classes.Positive))
	assert.False(t, anchors[1].HasClass(l.Classes.Negative))
	assert.True(t, anchors[2].HasClass(l.Classes.Negative))

	assert.Equal(t, []comments.Bucket{{Score: 3, Count: 2}, {Score: 0, Count: 1}, {Score: -1, Count: 1}}, p.Buckets())
}

func TestRenderSingleCountHasNoSuffix(t *testing.T) {
	_, p, hist := setup(t, testutil.DesktopPage(testutil.Flat(3)), layout.DesktopLayout())
	block := p.Render(hist)
	require.NotNil(t, block)
	assert.Equal(t, "3", block.All("a")[0].Text())
	assert.NotContains(t, block.Text(), "(")
}

func TestRenderEmptyHistogram(t *testing.T) {
	l := layout.DesktopLayout()
	doc, p, hist := setup(t, testutil.EmptyDesktopPage(), l)
	assert.Nil(t, p.Render(hist))
	assert.Nil(t, doc.Root().First("."+l.Classes.Scores))
}

func TestRenderMobileCounterClass(t *testing.T) {
	l := layout.MobileLayout()
	_, p, hist := setup(t, testutil.MobilePage(testutil.Flat(-2)), l)
	a := p.Render(hist).All("a")[0]
	assert.True(t, a.HasClass(l.Classes.Counter))
	assert.True(t, a.HasClass(l.Classes.Negative))
}

func TestRenderFallsBackWithoutTitle(t *testing.T) {
	l := layout.DesktopLayout()
	page := `<html><body><div id="wrap"><ul class="content-list_comments">` +
		`<li class="content-list__item_comment"><div class="comment"><span class="js-score">2</span></div></li>` +
		`</ul></div></body></html>`
	doc, p, hist := setup(t, page, l)
	p.Render(hist)
	assert.NotNil(t, doc.Root().First("#wrap > ."+l.Classes.Scores))
}

func TestClickTogglesThreshold(t *testing.T) {
	l := layout.DesktopLayout()
	doc, p, hist := setup(t, testutil.DesktopPage(testutil.Flat(5, -2, 0)), l)
	block := p.Render(hist)
	five := block.All("a")[0]

	var changes []visibility.Threshold
	p.OnChange(func(th visibility.Threshold) { changes = append(changes, th) })

	assert.False(t, doc.Click(five))
	assert.Equal(t, visibility.At(5), p.Threshold())
	assert.True(t, five.HasClass(l.Classes.Highlight))
	assert.True(t, p.Forest()[1].Item.HasClass(l.Classes.Hide))

	assert.False(t, doc.Click(five))
	assert.False(t, p.Threshold().IsSet())
	assert.False(t, five.HasClass(l.Classes.Highlight))
	assert.False(t, p.Forest()[1].Item.HasClass(l.Classes.Hide))

	assert.Equal(t, []visibility.Threshold{visibility.At(5), visibility.Unset()}, changes)
}

func TestSelectDifferentScoreReplacesThreshold(t *testing.T) {
	_, p, hist := setup(t, testutil.DesktopPage(testutil.Flat(5, -2, 0)), layout.DesktopLayout())
	p.Render(hist)

	p.Select(5)
	assert.Equal(t, visibility.At(0), p.Select(0))
	p.Clear()
	assert.False(t, p.Threshold().IsSet())
}
