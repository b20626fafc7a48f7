package render

import (
	"strings"
	"unicode/utf8"

	xhtml "golang.org/x/net/html"
)

// CommentToText converts comment markup to wrapped plain text. Comments use
// <p>, <br>, <a>, <i>/<em>, <b>/<strong>, <code>, <pre><code>, <blockquote>
// and HTML entities.
func CommentToText(raw string, width int) string {
	if raw == "" {
		return ""
	}

	tokenizer := xhtml.NewTokenizer(strings.NewReader(raw))
	var sb strings.Builder
	var inPre, inCode bool
	var quoteDepth int
	var anchorURL string

	for {
		tt := tokenizer.Next()
		switch tt {
		case xhtml.ErrorToken:
			text := strings.TrimLeft(sb.String(), "\n")
			return wrapText(strings.TrimRight(text, " \t\n"), width)

		case xhtml.StartTagToken:
			t := tokenizer.Token()
			switch t.Data {
			case "p", "div":
				if sb.Len() > 0 {
					sb.WriteString("\n\n")
				}
			case "br":
				sb.WriteString("\n")
			case "blockquote":
				quoteDepth++
				sb.WriteString("\n> ")
			case "i", "em":
				sb.WriteString("*")
			case "b", "strong":
				sb.WriteString("**")
			case "code":
				if !inPre {
					sb.WriteString("`")
				}
				inCode = true
			case "pre":
				inPre = true
				sb.WriteString("\n")
			case "a":
				for _, attr := range t.Attr {
					if attr.Key == "href" {
						anchorURL = attr.Val
					}
				}
			}

		case xhtml.SelfClosingTagToken:
			if tokenizer.Token().Data == "br" {
				sb.WriteString("\n")
			}

		case xhtml.EndTagToken:
			t := tokenizer.Token()
			switch t.Data {
			case "blockquote":
				if quoteDepth > 0 {
					quoteDepth--
				}
				sb.WriteString("\n")
			case "i", "em":
				sb.WriteString("*")
			case "b", "strong":
				sb.WriteString("**")
			case "code":
				if !inPre {
					sb.WriteString("`")
				}
				inCode = false
			case "pre":
				inPre = false
				sb.WriteString("\n")
			case "a":
				if anchorURL != "" {
					text := strings.TrimSpace(sb.String())
					// Only append URL if it differs from the link text.
					if anchorURL != "#" && !strings.HasSuffix(text, anchorURL) {
						sb.WriteString(" [")
						sb.WriteString(anchorURL)
						sb.WriteString("]")
					}
				}
				anchorURL = ""
			}

		case xhtml.TextToken:
			text := tokenizer.Token().Data
			if inPre {
				// Preserve whitespace in pre blocks, indent with 4 spaces.
				lines := strings.Split(text, "\n")
				for i, line := range lines {
					if i > 0 {
						sb.WriteString("\n")
					}
					if line != "" {
						sb.WriteString("    ")
						sb.WriteString(line)
					}
				}
			} else if inCode {
				sb.WriteString(text)
			} else {
				if quoteDepth > 0 {
					text = strings.ReplaceAll(text, "\n", "\n> ")
				}
				sb.WriteString(text)
			}
		}
	}
}

// wrapText performs simple word wrapping to the given width.
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	var result strings.Builder
	for _, paragraph := range strings.Split(text, "\n") {
		if strings.HasPrefix(paragraph, "    ") {
			// Don't wrap code blocks.
			result.WriteString(paragraph)
			result.WriteString("\n")
			continue
		}
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}
		lineLen := 0
		for i, word := range words {
			wlen := utf8.RuneCountInString(word)
			if i > 0 && lineLen+1+wlen > width {
				result.WriteString("\n")
				lineLen = 0
			} else if i > 0 {
				result.WriteString(" ")
				lineLen++
			}
			result.WriteString(word)
			lineLen += wlen
		}
		result.WriteString("\n")
	}
	return strings.TrimRight(result.String(), "\n")
}
