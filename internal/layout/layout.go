// Package layout holds the selector and class tables for the desktop and
// mobile variants of the comment pages.
package layout

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Variant identifies a page layout.
type Variant string

const (
	Desktop Variant = "desktop"
	Mobile  Variant = "mobile"
	Auto    Variant = "auto"
)

const mobileHost = "m.habr.com"

// Selectors locate page regions. An empty Nested means the layout has no
// dedicated nested-comments container and items are recursed into directly.
type Selectors struct {
	CommentHead  string `yaml:"comment_head"`
	CommentTitle string `yaml:"comment_title"`
	CommentNav   string `yaml:"comment_nav"`
	ListComments string `yaml:"list_comments"`
	Message      string `yaml:"message"`
	Footer       string `yaml:"footer"`
	ReplyForm    string `yaml:"reply_form"`
	ItemComment  string `yaml:"item_comment"`
	Comment      string `yaml:"comment"`
	Score        string `yaml:"score"`
	Nested       string `yaml:"nested"`
	OpenComments string `yaml:"open_comments"`
}

// Classes are the class names toggled or attached by the filter.
type Classes struct {
	Negative    string `yaml:"negative"`
	Positive    string `yaml:"positive"`
	Counter     string `yaml:"counter"`
	Highlight   string `yaml:"highlight"`
	Hide        string `yaml:"hide"`
	OpenComment string `yaml:"open_comment"`
	Scores      string `yaml:"scores"`
}

// Labels are the visible strings of inserted controls.
type Labels struct {
	Scores string `yaml:"scores"`
	Expand string `yaml:"expand"`
}

// Layout is resolved once at startup and not modified afterwards.
type Layout struct {
	Variant   Variant   `yaml:"variant"`
	Selectors Selectors `yaml:"selectors"`
	Classes   Classes   `yaml:"classes"`
	Labels    Labels    `yaml:"labels"`
}

const (
	highlightClass   = "habr-comments-hightlight"
	hideClass        = "habr-comments-hide"
	openCommentClass = "habr-comments-open-comment"
	scoresClass      = "habr-comments-scores"
)

var defaultLabels = Labels{
	Scores: "Оценки ",
	Expand: "раскрыть",
}

// DesktopLayout returns the table for habr.com.
func DesktopLayout() Layout {
	return Layout{
		Variant: Desktop,
		Selectors: Selectors{
			CommentHead:  ".comment__head",
			CommentTitle: ".comments-section__head",
			CommentNav:   ".inline-list_comment-nav",
			ListComments: ".content-list_comments",
			Message:      ".comment__message",
			Footer:       ".comment__footer",
			ReplyForm:    ".comment__reply-form",
			ItemComment:  ".content-list__item_comment",
			Comment:      ".comment",
			Score:        ".js-score",
			Nested:       ".content-list_nested-comments",
			OpenComments: "a.tm-article-comments",
		},
		Classes: Classes{
			Negative:    "voting-wjt__counter_negative",
			Positive:    "voting-wjt__counter_positive",
			Highlight:   highlightClass,
			Hide:        hideClass,
			OpenComment: openCommentClass,
			Scores:      scoresClass,
		},
		Labels: defaultLabels,
	}
}

// MobileLayout returns the table for m.habr.com.
func MobileLayout() Layout {
	return Layout{
		Variant: Mobile,
		Selectors: Selectors{
			CommentHead:  ".tm-comment__header",
			CommentTitle: ".tm-article-comments__title",
			CommentNav:   ".tm-comment-head__datetime",
			ListComments: ".tm-article-comments__inner",
			Message:      ".tm-comment-body__content",
			Footer:       ".comment__footer",
			ReplyForm:    ".comment__reply-form",
			ItemComment:  ".tm-comment",
			Comment:      ".tm-comment__comment",
			Score:        ".tm-comment-head__score",
			OpenComments: "a.tm-article-comments",
		},
		Classes: Classes{
			Negative:    "tm-comment-head-score_negative",
			Positive:    "tm-comment-head-score_positive",
			Counter:     "tm-comment-head-score",
			Highlight:   highlightClass,
			Hide:        hideClass,
			OpenComment: openCommentClass,
			Scores:      scoresClass,
		},
		Labels: defaultLabels,
	}
}

// For returns the layout of a variant. Auto and unknown values select desktop.
func For(v Variant) Layout {
	if v == Mobile {
		return MobileLayout()
	}
	return DesktopLayout()
}

// ForHost picks the variant from a page host.
func ForHost(host string) Layout {
	if strings.EqualFold(host, mobileHost) {
		return MobileLayout()
	}
	return DesktopLayout()
}

// Resolve picks the layout for a page address. A forced variant other than
// Auto wins over the host.
func Resolve(pageURL string, forced Variant) Layout {
	if forced == Desktop || forced == Mobile {
		return For(forced)
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return DesktopLayout()
	}
	return ForHost(u.Hostname())
}

// HasNested reports whether nested comments live in a dedicated container.
func (l Layout) HasNested() bool {
	return l.Selectors.Nested != ""
}

// SelectorNames lists the yaml names of the selectors in table order.
var SelectorNames = []string{
	"comment_head",
	"comment_title",
	"comment_nav",
	"list_comments",
	"message",
	"footer",
	"reply_form",
	"item_comment",
	"comment",
	"score",
	"nested",
	"open_comments",
}

// Lookup returns a selector by its yaml name.
func (s Selectors) Lookup(name string) (string, bool) {
	switch name {
	case "comment_head":
		return s.CommentHead, true
	case "comment_title":
		return s.CommentTitle, true
	case "comment_nav":
		return s.CommentNav, true
	case "list_comments":
		return s.ListComments, true
	case "message":
		return s.Message, true
	case "footer":
		return s.Footer, true
	case "reply_form":
		return s.ReplyForm, true
	case "item_comment":
		return s.ItemComment, true
	case "comment":
		return s.Comment, true
	case "score":
		return s.Score, true
	case "nested":
		return s.Nested, true
	case "open_comments":
		return s.OpenComments, true
	}
	return "", false
}

// overrides holds the raw per-variant sections so that keys missing from
// the file keep their built-in values.
type overrides struct {
	Desktop yaml.Node `yaml:"desktop"`
	Mobile  yaml.Node `yaml:"mobile"`
}

// LoadOverrides applies a YAML override file to base. The file has
// optional "desktop" and "mobile" sections; only the section matching the
// base variant is applied. Nested can be cleared by setting it to "".
func LoadOverrides(r io.Reader, base Layout) (Layout, error) {
	var doc overrides
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return base, fmt.Errorf("decoding layout overrides: %w", err)
	}

	section := doc.Desktop
	if base.Variant == Mobile {
		section = doc.Mobile
	}
	if section.Kind == 0 {
		return base, nil
	}

	merged := base
	if err := section.Decode(&merged); err != nil {
		return base, fmt.Errorf("merging %s layout: %w", base.Variant, err)
	}
	merged.Variant = base.Variant
	return merged, nil
}

// LoadOverridesFile is LoadOverrides over a file path. An empty path
// returns base unchanged.
func LoadOverridesFile(path string, base Layout) (Layout, error) {
	if path == "" {
		return base, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return base, fmt.Errorf("opening layout overrides: %w", err)
	}
	defer f.Close()
	return LoadOverrides(f, base)
}
