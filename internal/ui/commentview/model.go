package commentview

import (
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/habrscore/internal/comments"
	"github.com/fragmede/habrscore/internal/render"
	"github.com/fragmede/habrscore/internal/session"
	"github.com/fragmede/habrscore/internal/ui/messages"
	"github.com/fragmede/habrscore/internal/visibility"
)

var (
	depthColors = []lipgloss.Color{
		"#5E8EAD", "#828282", "#00BFFF", "#32CD32", "#FFD700", "#FF69B4", "#9370DB", "#20B2AA",
	}

	commentHeadStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5E8EAD")).Bold(true)
	commentHighStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#FFF3C4")).Bold(true)
	commentMetaStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	commentSelStyle   = lipgloss.NewStyle().Background(lipgloss.Color("#333333"))
	positiveStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C9A27")).Bold(true)
	negativeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#D04E4E")).Bold(true)
	neutralStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	bucketCursorStyle = lipgloss.NewStyle().Reverse(true)
	bucketActiveStyle = lipgloss.NewStyle().Underline(true)
	titleStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Padding(0, 1)
	scoresStyle       = lipgloss.NewStyle().Padding(0, 1)
	separatorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
)

const scrollStep = 3

type commentOffset struct {
	startLine int
	endLine   int
}

// Model is the comment tree view with its score histogram.
type Model struct {
	viewport    viewport.Model
	session     *session.Session
	title       string
	placeholder string
	comments    []FlatComment
	offsets     []commentOffset
	selectedIdx int
	bucketIdx   int
	width       int
	height      int
}

// New creates an empty comment view.
func New() Model {
	vp := viewport.New(0, 0)
	vp.SetContent("Loading...")
	return Model{viewport: vp, placeholder: "  Loading comments..."}
}

// SetSession shows the comments of an initialized session.
func (m *Model) SetSession(s *session.Session, title string) {
	m.session = s
	m.title = title
	m.selectedIdx = 0
	m.bucketIdx = 0
	m.resizeViewport()
	m.Rebuild()
	m.viewport.GotoTop()
}

// SetPlaceholder sets the text shown while there is nothing to display.
func (m *Model) SetPlaceholder(text, title string) {
	m.placeholder = "  " + text
	if title != "" {
		m.title = title
	}
	if m.session == nil {
		m.rebuildContent()
	}
}

// SetSize updates viewport dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w
	m.resizeViewport()
	m.rebuildContent()
}

func (m *Model) resizeViewport() {
	headerLines := strings.Count(m.renderHeader(), "\n") + 1
	m.viewport.Height = m.height - headerLines
	if m.viewport.Height < 1 {
		m.viewport.Height = 1
	}
}

// Comments returns the comments currently listed.
func (m Model) Comments() []FlatComment {
	return m.comments
}

// Selected returns the index of the selected comment.
func (m Model) Selected() int {
	return m.selectedIdx
}

// Bucket returns the index of the bucket under the cursor.
func (m Model) Bucket() int {
	return m.bucketIdx
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.session == nil {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(keyMsg, keys.Down):
		if m.selectedIdx >= 0 && m.selectedIdx < len(m.offsets) {
			off := m.offsets[m.selectedIdx]
			viewBottom := m.viewport.YOffset + m.viewport.Height
			if off.endLine >= viewBottom {
				// Comment extends below viewport, scroll within it.
				m.viewport.SetYOffset(m.viewport.YOffset + scrollStep)
				return m, nil
			}
		}
		if m.selectedIdx < len(m.comments)-1 {
			m.selectedIdx++
			m.rebuildContent()
			m.scrollToCursor()
		}
		return m, nil
	case key.Matches(keyMsg, keys.Up):
		if m.selectedIdx >= 0 && m.selectedIdx < len(m.offsets) {
			off := m.offsets[m.selectedIdx]
			if off.startLine < m.viewport.YOffset {
				newOff := m.viewport.YOffset - scrollStep
				if newOff < off.startLine {
					newOff = off.startLine
				}
				m.viewport.SetYOffset(newOff)
				return m, nil
			}
		}
		if m.selectedIdx > 0 {
			m.selectedIdx--
			m.rebuildContent()
			m.scrollToCursor()
		}
		return m, nil
	case key.Matches(keyMsg, keys.Parent):
		if m.selectedIdx < len(m.comments) {
			if p := m.comments[m.selectedIdx].Parent; p >= 0 {
				m.moveTo(p)
			}
		}
		return m, nil
	case key.Matches(keyMsg, keys.NextSib):
		if idx := FindNextSiblingIndex(m.comments, m.selectedIdx); idx >= 0 {
			m.moveTo(idx)
		}
		return m, nil
	case key.Matches(keyMsg, keys.NextShown):
		if idx := FindNextExpandedIndex(m.comments, m.selectedIdx); idx >= 0 {
			m.moveTo(idx)
		}
		return m, nil
	case key.Matches(keyMsg, keys.Home):
		m.selectedIdx = 0
		m.rebuildContent()
		m.viewport.GotoTop()
		return m, nil
	case key.Matches(keyMsg, keys.End):
		if len(m.comments) > 0 {
			m.selectedIdx = len(m.comments) - 1
			m.rebuildContent()
			m.viewport.GotoBottom()
		}
		return m, nil
	case key.Matches(keyMsg, keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	case key.Matches(keyMsg, keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(keyMsg, keys.BucketLeft):
		if m.bucketIdx > 0 {
			m.bucketIdx--
			m.resizeViewport()
		}
		return m, nil
	case key.Matches(keyMsg, keys.BucketRight):
		if m.bucketIdx < len(m.buckets())-1 {
			m.bucketIdx++
			m.resizeViewport()
		}
		return m, nil
	case key.Matches(keyMsg, keys.Select):
		buckets := m.buckets()
		if m.bucketIdx >= len(buckets) {
			return m, nil
		}
		t := m.session.Presenter().Select(buckets[m.bucketIdx].Score)
		m.Rebuild()
		return m, thresholdChanged(t)
	case key.Matches(keyMsg, keys.Clear):
		p := m.session.Presenter()
		if !p.Threshold().IsSet() {
			return m, nil
		}
		p.Clear()
		m.Rebuild()
		return m, thresholdChanged(p.Threshold())
	case key.Matches(keyMsg, keys.Expand):
		if m.selectedIdx >= len(m.comments) {
			return m, nil
		}
		c := m.comments[m.selectedIdx].Comment
		link := comments.OpenLink(c.Element, m.session.Layout())
		if link == nil || !m.comments[m.selectedIdx].State.Collapsed {
			return m, nil
		}
		m.session.Document().Click(link)
		m.Rebuild()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func thresholdChanged(t visibility.Threshold) tea.Cmd {
	return func() tea.Msg { return messages.ThresholdChangedMsg{Threshold: t} }
}

func (m *Model) moveTo(idx int) {
	m.selectedIdx = idx
	m.rebuildContent()
	m.scrollToCursor()
}

func (m Model) buckets() []comments.Bucket {
	if m.session == nil || m.session.Presenter() == nil {
		return nil
	}
	return m.session.Presenter().Buckets()
}

// Rebuild re-reads comment state from the document.
func (m *Model) Rebuild() {
	if m.session == nil || !m.session.Initialized() {
		m.comments = nil
		m.rebuildContent()
		return
	}
	var selected *comments.Comment
	if m.selectedIdx >= 0 && m.selectedIdx < len(m.comments) {
		selected = m.comments[m.selectedIdx].Comment
	}
	m.comments = FlattenForest(m.session.Forest(), m.session.Engine(), m.session.Layout())

	// Keep the cursor on the same comment when it is still listed.
	m.selectedIdx = 0
	for i, fc := range m.comments {
		if fc.Comment == selected {
			m.selectedIdx = i
			break
		}
	}
	m.rebuildContent()
	m.scrollToCursor()
}

// View renders the comment view.
func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), m.viewport.View())
}

func (m *Model) rebuildContent() {
	if len(m.comments) == 0 {
		m.offsets = nil
		m.viewport.SetContent(m.placeholder)
		return
	}

	var sb strings.Builder
	m.offsets = make([]commentOffset, len(m.comments))
	availWidth := m.width - 4
	if availWidth < 20 {
		availWidth = 20
	}
	expandHint := "[" + m.session.Layout().Labels.Expand + "]"

	lineCount := 0
	for i, fc := range m.comments {
		startLine := lineCount
		indent := int(math.Min(float64(fc.Depth*2), 30))
		indentStr := strings.Repeat(" ", indent)

		barColor := depthColors[fc.Depth%len(depthColors)]
		selected := i == m.selectedIdx
		if selected {
			barColor = "#FF6600"
		}
		bar := lipgloss.NewStyle().Foreground(barColor).Render("│")

		header := scoreStyle(fc.Comment.Score).Render(scoreText(fc.Comment)) + " "
		if fc.State.Highlighted {
			header += commentHighStyle.Render(fc.Header)
		} else {
			header += commentHeadStyle.Render(fc.Header)
		}
		if fc.State.Collapsed {
			header += " " + commentMetaStyle.Render(expandHint)
		}

		headerLine := indentStr + bar + " " + header
		if selected {
			headerLine = commentSelStyle.Render(headerLine)
		}
		sb.WriteString(headerLine + "\n")
		lineCount++

		if !fc.State.Collapsed {
			bodyWidth := availWidth - indent - 4
			if bodyWidth < 20 {
				bodyWidth = 20
			}
			for _, line := range strings.Split(render.CommentToText(fc.Body, bodyWidth), "\n") {
				bodyLine := indentStr + bar + " " + line
				if selected {
					bodyLine = commentSelStyle.Render(bodyLine)
				}
				sb.WriteString(bodyLine + "\n")
				lineCount++
			}
		}
		sb.WriteString("\n")
		lineCount++

		m.offsets[i] = commentOffset{startLine: startLine, endLine: lineCount - 1}
	}

	m.viewport.SetContent(sb.String())
}

func scoreText(c *comments.Comment) string {
	if c.ScoreText == "" {
		return "0"
	}
	return c.ScoreText
}

func scoreStyle(score int) lipgloss.Style {
	switch {
	case score > 0:
		return positiveStyle
	case score < 0:
		return negativeStyle
	}
	return neutralStyle
}

func (m *Model) scrollToCursor() {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.offsets) {
		return
	}
	off := m.offsets[m.selectedIdx]
	if off.startLine < m.viewport.YOffset || off.startLine >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(off.startLine)
	}
}

func (m Model) renderHeader() string {
	var parts []string
	if m.title != "" {
		parts = append(parts, titleStyle.Render(m.title))
	}
	if line := m.renderScores(); line != "" {
		parts = append(parts, scoresStyle.Render(line))
	}
	parts = append(parts, separatorStyle.Render(strings.Repeat("─", m.width)))
	parts = append(parts, commentMetaStyle.Render(helpLine()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderScores draws the histogram the way it is mounted on the page:
// the label followed by one entry per distinct score.
func (m Model) renderScores() string {
	buckets := m.buckets()
	if len(buckets) == 0 {
		return ""
	}
	t := m.session.Presenter().Threshold()
	var sb strings.Builder
	sb.WriteString(m.session.Layout().Labels.Scores)
	for i, b := range buckets {
		label := scoreStyle(b.Score).Render(b.Label())
		if t.IsSet() && t.Passes(b.Score) {
			label = bucketActiveStyle.Render(b.Label())
		}
		if i == m.bucketIdx {
			label = bucketCursorStyle.Render(b.Label())
		}
		sb.WriteString(label)
		sb.WriteString(" ")
	}
	return strings.TrimRight(sb.String(), " ")
}

func joinSpaced(parts []string) string {
	return strings.Join(parts, "  ")
}
