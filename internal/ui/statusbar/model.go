package statusbar

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/habrscore/internal/render"
	"github.com/fragmede/habrscore/internal/visibility"
)

var (
	barStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#FFFFFF"))

	layoutStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#5E8EAD")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1)

	filterStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#6C9A27")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1)

	countStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#555555")).
			Foreground(lipgloss.Color("#CCCCCC")).
			Padding(0, 1)

	statusTextStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#AAAAAA")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#8B0000")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1)

	retryStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#B8860B")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1)
)

// Model is the status bar at the bottom of the screen.
type Model struct {
	width      int
	layout     string
	threshold  visibility.Threshold
	shown      int
	total      int
	fetchedAt  time.Time
	retrying   bool
	statusText string
	isError    bool
}

// New creates a new status bar.
func New(layout string) Model {
	return Model{layout: layout}
}

// SetSize sets the width.
func (m *Model) SetSize(w int) {
	m.width = w
}

// SetThreshold sets the active filter.
func (m *Model) SetThreshold(t visibility.Threshold) {
	m.threshold = t
}

// SetCounts sets how many comments are expanded out of the total.
func (m *Model) SetCounts(shown, total int) {
	m.shown = shown
	m.total = total
}

// SetFetched records when the displayed page was fetched.
func (m *Model) SetFetched(t time.Time) {
	m.fetchedAt = t
}

// SetRetrying shows the retry indicator while comments are pending.
func (m *Model) SetRetrying(retrying bool) {
	m.retrying = retrying
}

// SetStatus sets a temporary status message.
func (m *Model) SetStatus(text string, isError bool) {
	m.statusText = text
	m.isError = isError
}

// Status returns the current status message.
func (m Model) Status() string {
	return m.statusText
}

// Update is a no-op for the status bar.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the status bar.
func (m Model) View() string {
	left := layoutStyle.Render(m.layout)
	if m.threshold.IsSet() {
		left += filterStyle.Render(m.threshold.String())
	}
	if m.total > 0 {
		left += countStyle.Render(render.Count(m.shown) + "/" + render.Count(m.total))
	}

	var right string
	if m.retrying {
		right += retryStyle.Render("WAITING")
	}
	if m.statusText != "" {
		if m.isError {
			right += errorStyle.Render(m.statusText)
		} else {
			right += statusTextStyle.Render(m.statusText)
		}
	}
	right += statusTextStyle.Render("fetched " + render.Age(m.fetchedAt))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	mid := barStyle.Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, left, mid, right)
}
