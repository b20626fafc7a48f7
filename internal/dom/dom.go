// Package dom exposes a parsed HTML page through the small set of
// operations the comment filter needs: selector queries, class toggling,
// element insertion and click handlers.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ClickFunc handles a click on an element. Returning false suppresses the
// element's default navigation.
type ClickFunc func() bool

// Node is an element of a live document. Mutations are visible to every
// other Node that refers to the same element.
type Node interface {
	// First returns the first descendant matching selector, or nil.
	First(selector string) Node
	// All returns every descendant matching selector in document order.
	All(selector string) []Node
	// Children returns the immediate children matching selector.
	Children(selector string) []Node
	Parent() Node
	// Text returns the trimmed text content of the element.
	Text() string
	// Matches reports whether the element itself matches selector.
	Matches(selector string) bool
	// HTML returns the rendered inner HTML.
	HTML() string
	Attr(key string) string
	SetAttr(key, val string)
	HasClass(class string) bool
	ToggleClass(class string, on bool)
	// After inserts sibling immediately after this element.
	After(sibling Node)
	Append(child Node)
	OnClick(fn ClickFunc)
}

// Creator builds detached nodes that can be attached with After or Append.
type Creator interface {
	Create(tag, text string, classes ...string) Node
	CreateText(text string) Node
}

// Document is a parsed HTML page. It is not safe for concurrent use.
type Document struct {
	root      *html.Node
	selectors map[string]cascadia.Sel
	handlers  map[*html.Node][]ClickFunc
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	return &Document{
		root:      root,
		selectors: make(map[string]cascadia.Sel),
		handlers:  make(map[*html.Node][]ClickFunc),
	}, nil
}

// ParseString parses an HTML document held in memory.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Root returns the document node.
func (d *Document) Root() Node {
	return d.wrap(d.root)
}

// Create builds a detached element with the given text and classes.
func (d *Document) Create(tag, text string, classes ...string) Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	if len(classes) > 0 {
		n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: strings.Join(classes, " ")})
	}
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	return d.wrap(n)
}

// CreateText builds a detached text node.
func (d *Document) CreateText(text string) Node {
	return d.wrap(&html.Node{Type: html.TextNode, Data: text})
}

// Click runs the handlers registered on node and reports whether default
// navigation should proceed.
func (d *Document) Click(node Node) bool {
	e, ok := node.(*element)
	if !ok || e.doc != d {
		return true
	}
	proceed := true
	for _, fn := range d.handlers[e.n] {
		if !fn() {
			proceed = false
		}
	}
	return proceed
}

// Render writes the document back out as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// compile caches parsed selectors. Invalid or empty selectors match nothing.
func (d *Document) compile(selector string) cascadia.Sel {
	if sel, ok := d.selectors[selector]; ok {
		return sel
	}
	var sel cascadia.Sel
	if selector != "" {
		if parsed, err := cascadia.Parse(selector); err == nil {
			sel = parsed
		}
	}
	d.selectors[selector] = sel
	return sel
}

func (d *Document) wrap(n *html.Node) Node {
	if n == nil {
		return nil
	}
	return &element{doc: d, n: n}
}

type element struct {
	doc *Document
	n   *html.Node
}

func (e *element) First(selector string) Node {
	sel := e.doc.compile(selector)
	if sel == nil {
		return nil
	}
	return e.doc.wrap(cascadia.Query(e.n, sel))
}

func (e *element) All(selector string) []Node {
	sel := e.doc.compile(selector)
	if sel == nil {
		return nil
	}
	matches := cascadia.QueryAll(e.n, sel)
	nodes := make([]Node, 0, len(matches))
	for _, m := range matches {
		nodes = append(nodes, e.doc.wrap(m))
	}
	return nodes
}

func (e *element) Children(selector string) []Node {
	sel := e.doc.compile(selector)
	if sel == nil {
		return nil
	}
	var nodes []Node
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && sel.Match(c) {
			nodes = append(nodes, e.doc.wrap(c))
		}
	}
	return nodes
}

func (e *element) Parent() Node {
	return e.doc.wrap(e.n.Parent)
}

func (e *element) Text() string {
	var sb strings.Builder
	collectText(e.n, &sb)
	return strings.TrimSpace(sb.String())
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}

func (e *element) Matches(selector string) bool {
	sel := e.doc.compile(selector)
	return sel != nil && e.n.Type == html.ElementNode && sel.Match(e.n)
}

func (e *element) HTML() string {
	var buf bytes.Buffer
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return buf.String()
		}
	}
	return buf.String()
}

func (e *element) Attr(key string) string {
	for _, a := range e.n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func (e *element) SetAttr(key, val string) {
	for i, a := range e.n.Attr {
		if a.Key == key {
			e.n.Attr[i].Val = val
			return
		}
	}
	e.n.Attr = append(e.n.Attr, html.Attribute{Key: key, Val: val})
}

func (e *element) HasClass(class string) bool {
	for _, c := range strings.Fields(e.Attr("class")) {
		if c == class {
			return true
		}
	}
	return false
}

func (e *element) ToggleClass(class string, on bool) {
	if class == "" || e.n.Type != html.ElementNode {
		return
	}
	fields := strings.Fields(e.Attr("class"))
	kept := fields[:0]
	for _, c := range fields {
		if c != class {
			kept = append(kept, c)
		}
	}
	if on {
		kept = append(kept, class)
	}
	e.SetAttr("class", strings.Join(kept, " "))
}

func (e *element) After(sibling Node) {
	s, ok := sibling.(*element)
	if !ok || e.n.Parent == nil {
		return
	}
	detach(s.n)
	e.n.Parent.InsertBefore(s.n, e.n.NextSibling)
}

func (e *element) Append(child Node) {
	c, ok := child.(*element)
	if !ok {
		return
	}
	detach(c.n)
	e.n.AppendChild(c.n)
}

func (e *element) OnClick(fn ClickFunc) {
	e.doc.handlers[e.n] = append(e.doc.handlers[e.n], fn)
}

func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}
