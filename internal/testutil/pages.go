// Package testutil generates comment pages for tests.
package testutil

import (
	"fmt"
	"strconv"
	"strings"

	"pgregory.net/rapid"
)

// Thread describes one comment and its replies. An empty ScoreText renders
// the comment without a score counter; NoBody renders only the item and its
// replies.
type Thread struct {
	ScoreText string
	NoBody    bool
	Replies   []Thread
}

// Bodyless builds an item without a comment body.
func Bodyless(replies ...Thread) Thread {
	return Thread{NoBody: true, Replies: replies}
}

// T builds a thread with an integer score.
func T(score int, replies ...Thread) Thread {
	s := strconv.Itoa(score)
	if score > 0 {
		s = "+" + s
	}
	return Thread{ScoreText: s, Replies: replies}
}

// Flat builds top-level threads without replies.
func Flat(scores ...int) []Thread {
	threads := make([]Thread, 0, len(scores))
	for _, s := range scores {
		threads = append(threads, T(s))
	}
	return threads
}

// Count returns the number of comments in threads at every depth.
func Count(threads []Thread) int {
	n := 0
	for _, t := range threads {
		n += 1 + Count(t.Replies)
	}
	return n
}

// DesktopPage renders threads with the habr.com markup.
func DesktopPage(threads []Thread) string {
	var sb strings.Builder
	sb.WriteString(`<html><body><div class="comments-section">`)
	sb.WriteString(`<header class="comments-section__head"><h2>Комментарии</h2></header>`)
	sb.WriteString(`<ul class="content-list content-list_comments">`)
	writeDesktop(&sb, threads, "c")
	sb.WriteString(`</ul></div></body></html>`)
	return sb.String()
}

func writeDesktop(sb *strings.Builder, threads []Thread, prefix string) {
	for i, t := range threads {
		id := fmt.Sprintf("%s%d", prefix, i)
		fmt.Fprintf(sb, `<li class="content-list__item content-list__item_comment" id="%s">`, id)
		if !t.NoBody {
			sb.WriteString(`<div class="comment"><div class="comment__head">`)
			sb.WriteString(`<span class="user-info">user</span>`)
			sb.WriteString(`<ul class="inline-list inline-list_comment-nav"><li>#</li></ul>`)
			if t.ScoreText != "" {
				fmt.Fprintf(sb, `<div class="voting-wjt"><span class="voting-wjt__counter js-score">%s</span></div>`, t.ScoreText)
			}
			sb.WriteString(`</div>`)
			fmt.Fprintf(sb, `<div class="comment__message">message %s</div>`, id)
			sb.WriteString(`<div class="comment__footer">reply</div>`)
			sb.WriteString(`<div class="comment__reply-form"></div>`)
			sb.WriteString(`</div>`)
		}
		sb.WriteString(`<ul class="content-list content-list_nested-comments">`)
		writeDesktop(sb, t.Replies, id+"-")
		sb.WriteString(`</ul></li>`)
	}
}

// MobilePage renders threads with the m.habr.com markup, where replies sit
// directly inside their parent item.
func MobilePage(threads []Thread) string {
	var sb strings.Builder
	sb.WriteString(`<html><body><a class="tm-article-comments" href="#comments">Comments</a>`)
	sb.WriteString(`<div class="tm-article-comments-section">`)
	sb.WriteString(`<h2 class="tm-article-comments__title">Комментарии</h2>`)
	sb.WriteString(`<div class="tm-article-comments__inner">`)
	writeMobile(&sb, threads, "c")
	sb.WriteString(`</div></div></body></html>`)
	return sb.String()
}

func writeMobile(sb *strings.Builder, threads []Thread, prefix string) {
	for i, t := range threads {
		id := fmt.Sprintf("%s%d", prefix, i)
		fmt.Fprintf(sb, `<section class="tm-comment" id="%s">`, id)
		if !t.NoBody {
			sb.WriteString(`<div class="tm-comment__comment"><header class="tm-comment__header">`)
			if t.ScoreText != "" {
				fmt.Fprintf(sb, `<span class="tm-comment-head__score">%s</span>`, t.ScoreText)
			}
			sb.WriteString(`<a class="tm-comment-head__datetime" href="#">now</a></header>`)
			fmt.Fprintf(sb, `<div class="tm-comment-body__content">message %s</div>`, id)
			sb.WriteString(`<div class="comment__footer">reply</div>`)
			sb.WriteString(`</div>`)
		}
		writeMobile(sb, t.Replies, id+"-")
		sb.WriteString(`</section>`)
	}
}

// EmptyDesktopPage is a desktop page whose comments have not rendered yet.
func EmptyDesktopPage() string {
	return DesktopPage(nil)
}

// ThreadsGen generates forests up to three levels deep with small scores.
func ThreadsGen() *rapid.Generator[[]Thread] {
	return rapid.Custom(func(t *rapid.T) []Thread {
		return drawThreads(t, 0, "t")
	})
}

func drawThreads(t *rapid.T, depth int, label string) []Thread {
	max := 4
	if depth >= 3 {
		max = 0
	}
	n := rapid.IntRange(0, max).Draw(t, label+"n")
	threads := make([]Thread, 0, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("%s.%d", label, i)
		score := rapid.IntRange(-5, 5).Draw(t, name)
		threads = append(threads, T(score, drawThreads(t, depth+1, name)...))
	}
	return threads
}
