package visibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/fragmede/habrscore/internal/comments"
	"github.com/fragmede/habrscore/internal/dom"
	"github.com/fragmede/habrscore/internal/layout"
	"github.com/fragmede/habrscore/internal/testutil"
)

type fixture struct {
	doc    *dom.Document
	forest comments.Forest
	hist   comments.Histogram
	engine *Engine
}

func newFixture(t require.TestingT, page string, l layout.Layout) fixture {
	doc, err := dom.ParseString(page)
	require.NoError(t, err)
	hist := comments.Histogram{}
	forest := comments.NewBuilder(doc, l).Build(doc.Root().First(l.Selectors.ListComments), hist)
	return fixture{doc: doc, forest: forest, hist: hist, engine: NewEngine(doc.Root(), l)}
}

func desktop(t require.TestingT, threads ...testutil.Thread) fixture {
	return newFixture(t, testutil.DesktopPage(threads), layout.DesktopLayout())
}

// states returns the state of every comment in walk order.
func (f fixture) states() []State {
	var out []State
	f.forest.Walk(func(c *comments.Comment, depth int) {
		out = append(out, f.engine.Inspect(c, depth == 0))
	})
	return out
}

func TestThresholdToggle(t *testing.T) {
	th := Unset()
	assert.False(t, th.IsSet())
	assert.True(t, th.Passes(-100))

	th = th.Toggle(5)
	s, ok := th.Score()
	assert.True(t, ok)
	assert.Equal(t, 5, s)
	assert.True(t, th.Passes(5))
	assert.False(t, th.Passes(4))

	assert.Equal(t, At(3), th.Toggle(3))
	assert.Equal(t, Unset(), th.Toggle(5))
	assert.Equal(t, ">=5", th.String())
	assert.Equal(t, "none", Unset().String())
}

func TestApplyFlatScenario(t *testing.T) {
	f := desktop(t, testutil.Flat(5, -2, 0)...)
	assert.Equal(t, comments.Histogram{5: 1, -2: 1, 0: 1}, f.hist)

	f.engine.Apply(f.forest, At(5))

	assert.Equal(t, []State{
		{Highlighted: true},
		{Hidden: true, Collapsed: true},
		{Hidden: true, Collapsed: true},
	}, f.states())
}

func TestApplyKeepsAncestorReachable(t *testing.T) {
	f := desktop(t, testutil.T(1, testutil.T(10)))
	f.engine.Apply(f.forest, At(10))

	parent := f.engine.Inspect(f.forest[0], true)
	child := f.engine.Inspect(f.forest[0].Children[0], false)

	assert.False(t, parent.Hidden, "a descendant passes")
	assert.False(t, parent.Collapsed, "a direct child passes")
	assert.False(t, parent.Highlighted)
	assert.Equal(t, State{Highlighted: true}, child)
}

func TestApplyDeepDescendant(t *testing.T) {
	f := desktop(t, testutil.T(1, testutil.T(2, testutil.T(9))))
	f.engine.Apply(f.forest, At(9))

	assert.Equal(t, []State{
		{Collapsed: true},
		{},
		{Highlighted: true},
	}, f.states())
}

func TestApplyNestedFailingNodesCollapseOnly(t *testing.T) {
	f := desktop(t, testutil.T(7, testutil.T(-3)))
	f.engine.Apply(f.forest, At(7))

	child := f.forest[0].Children[0]
	assert.Equal(t, State{Collapsed: true}, f.engine.Inspect(child, false))
	l := layout.DesktopLayout()
	assert.False(t, child.Item.HasClass(l.Classes.Hide), "nested items stay in place")
	for _, sel := range []string{l.Selectors.Message, l.Selectors.Footer, l.Selectors.ReplyForm} {
		assert.True(t, child.Element.First(sel).HasClass(l.Classes.Hide), sel)
	}
}

func TestApplyUnsetClearsEverything(t *testing.T) {
	f := desktop(t, testutil.T(1, testutil.T(10)), testutil.T(-4))
	initial := f.states()

	f.engine.Apply(f.forest, At(10))
	f.engine.Apply(f.forest, Unset())

	assert.Equal(t, initial, f.states())
	for _, s := range f.states() {
		assert.Equal(t, State{}, s)
	}
}

func TestApplyMobile(t *testing.T) {
	f := newFixture(t, testutil.MobilePage([]testutil.Thread{
		testutil.T(1, testutil.T(10)),
		testutil.T(2),
	}), layout.MobileLayout())
	f.engine.Apply(f.forest, At(10))

	assert.Equal(t, []State{
		{},
		{Highlighted: true},
		{Hidden: true, Collapsed: true},
	}, f.states())
}

func TestApplyBodylessTopLevelItem(t *testing.T) {
	l := layout.DesktopLayout()
	f := desktop(t, testutil.T(5), testutil.Bodyless())
	f.engine.Apply(f.forest, At(5))

	list := f.doc.Root().First(l.Selectors.ListComments)
	assert.False(t, list.HasClass(l.Classes.Hide), "the comment list stays visible")
	assert.True(t, f.forest[1].Item.HasClass(l.Classes.Hide))
	assert.False(t, f.forest[0].Item.HasClass(l.Classes.Hide))
	assert.Equal(t, []State{
		{Highlighted: true},
		{Hidden: true},
	}, f.states())

	f.engine.Apply(f.forest, Unset())
	assert.False(t, f.forest[1].Item.HasClass(l.Classes.Hide))
}

func TestApplyBodylessItemWithPassingReply(t *testing.T) {
	f := desktop(t, testutil.Bodyless(testutil.T(7)), testutil.T(1))
	f.engine.Apply(f.forest, At(7))

	assert.Equal(t, []State{
		{},
		{Highlighted: true},
		{Hidden: true, Collapsed: true},
	}, f.states())
}

func TestHighlightBuckets(t *testing.T) {
	l := layout.DesktopLayout()
	doc, err := dom.ParseString(`<div class="` + l.Classes.Scores + `">Scores <a>5</a> <a>0</a> <a>-2</a></div>`)
	require.NoError(t, err)
	e := NewEngine(doc.Root(), l)
	anchors := doc.Root().All("a")

	e.HighlightBuckets(At(0))
	assert.True(t, anchors[0].HasClass(l.Classes.Highlight))
	assert.True(t, anchors[1].HasClass(l.Classes.Highlight))
	assert.False(t, anchors[2].HasClass(l.Classes.Highlight))

	e.HighlightBuckets(Unset())
	for _, a := range anchors {
		assert.False(t, a.HasClass(l.Classes.Highlight))
	}
}

func TestToggleIsInvolution(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		threads := testutil.ThreadsGen().Draw(rt, "threads")
		f := newFixture(rt, testutil.DesktopPage(threads), layout.DesktopLayout())
		start := rapid.IntRange(-6, 6).Draw(rt, "start")
		x := rapid.IntRange(-6, 6).Draw(rt, "x")

		th := Unset()
		if rapid.Bool().Draw(rt, "filtered") {
			th = At(start)
		}
		f.engine.Apply(f.forest, th)
		before := f.states()

		th = th.Toggle(x)
		f.engine.Apply(f.forest, th)
		th = th.Toggle(x)
		f.engine.Apply(f.forest, th)

		// Selecting x twice lands on the unfiltered state unless x was
		// already the active threshold, in which case it lands back on it.
		if th.IsSet() {
			assert.Equal(rt, At(x), th)
		} else {
			f2 := newFixture(rt, testutil.DesktopPage(threads), layout.DesktopLayout())
			f2.engine.Apply(f2.forest, Unset())
			before = f2.states()
		}
		assert.Equal(rt, before, f.states())
	})
}

// expanded returns the walk indexes of comments a reader can see in full.
func (f fixture) expanded() map[int]bool {
	out := make(map[int]bool)
	i := 0
	var walk func(list []*comments.Comment, top bool, hidden bool)
	walk = func(list []*comments.Comment, top bool, hidden bool) {
		for _, c := range list {
			s := f.engine.Inspect(c, top)
			h := hidden || s.Hidden
			if !h && !s.Collapsed {
				out[i] = true
			}
			i++
			walk(c.Children, false, h)
		}
	}
	walk(f.forest, true, false)
	return out
}

func TestRaisingThresholdNeverShowsMore(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		threads := testutil.ThreadsGen().Draw(rt, "threads")
		f := newFixture(rt, testutil.DesktopPage(threads), layout.DesktopLayout())
		t1 := rapid.IntRange(-6, 6).Draw(rt, "t1")
		t2 := rapid.IntRange(t1, 7).Draw(rt, "t2")

		f.engine.Apply(f.forest, At(t1))
		low := f.expanded()
		f.engine.Apply(f.forest, At(t2))
		high := f.expanded()

		for i := range high {
			if !low[i] {
				rt.Fatalf("comment %d visible at >=%d but not at >=%d", i, t2, t1)
			}
		}
	})
}
