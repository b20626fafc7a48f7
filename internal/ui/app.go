package ui

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/habrscore/internal/config"
	"github.com/fragmede/habrscore/internal/fetch"
	"github.com/fragmede/habrscore/internal/layout"
	"github.com/fragmede/habrscore/internal/session"
	"github.com/fragmede/habrscore/internal/ui/commentview"
	"github.com/fragmede/habrscore/internal/ui/messages"
	"github.com/fragmede/habrscore/internal/ui/statusbar"
)

// App is the root Bubble Tea model. It owns the page session and drives
// its initialization: the page is loaded once, and while the comment
// section is empty a retry is armed and the page is reloaded on every tick
// until comments appear.
type App struct {
	commentView commentview.Model
	statusBar   statusbar.Model

	cfg     config.Config
	loader  *fetch.Loader
	layout  layout.Layout
	target  string
	logger  *slog.Logger
	session *session.Session

	loading bool
	ticking bool

	width  int
	height int
}

// NewApp creates the root application model for the page at target.
func NewApp(cfg config.Config, loader *fetch.Loader, target string, l layout.Layout, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		commentView: commentview.New(),
		statusBar:   statusbar.New(string(l.Variant)),
		cfg:         cfg,
		loader:      loader,
		layout:      l,
		target:      target,
		logger:      logger,
	}
}

// Session returns the current page session, nil before the first load.
func (a *App) Session() *session.Session {
	return a.session
}

// Init starts loading the page.
func (a *App) Init() tea.Cmd {
	return a.load(false, false)
}

func (a *App) load(refresh, retry bool) tea.Cmd {
	a.loading = true
	loader := a.loader
	target := a.target
	timeout := a.cfg.FetchTimeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		page, doc, err := loader.LoadDocument(ctx, target, refresh)
		return messages.PageLoadedMsg{Page: page, Doc: doc, Err: err, Retry: retry}
	}
}

func (a *App) tick() tea.Cmd {
	if a.ticking {
		return nil
	}
	a.ticking = true
	return tea.Tick(a.cfg.RetryInterval, func(time.Time) tea.Msg {
		return messages.RetryTickMsg{}
	})
}

func status(text string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return messages.StatusMsg{Text: text, IsError: isError}
	}
}

// Update handles all messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.commentView.SetSize(msg.Width, msg.Height-1) // Reserve 1 line for status bar.
		a.statusBar.SetSize(msg.Width)
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, Keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, Keys.Refresh):
			if a.loading {
				return a, nil
			}
			if err := a.loader.Invalidate(a.target); err != nil {
				a.logger.Warn("invalidating page", slog.String("error", err.Error()))
			}
			a.session = nil
			return a, tea.Batch(status("Refreshing...", false), a.load(true, false))
		case key.Matches(msg, Keys.Comments):
			return a, a.armRetry()
		}

	case messages.PageLoadedMsg:
		return a, a.pageLoaded(msg)

	case messages.RetryTickMsg:
		a.ticking = false
		if a.session == nil || a.session.Initialized() || !a.session.Retrying() || a.loading {
			return a, nil
		}
		return a, a.load(true, true)

	case messages.ThresholdChangedMsg:
		a.statusBar.SetThreshold(msg.Threshold)
		a.updateCounts()
		return a, nil

	case messages.StatusMsg:
		a.statusBar.SetStatus(msg.Text, msg.IsError)
	}

	var cmd tea.Cmd
	a.commentView, cmd = a.commentView.Update(msg)
	cmds = append(cmds, cmd)
	a.updateCounts()

	a.statusBar, cmd = a.statusBar.Update(msg)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

// armRetry starts waiting for comments that have not rendered yet. On the
// mobile layout this goes through the page's comment link.
func (a *App) armRetry() tea.Cmd {
	s := a.session
	if s == nil || s.Initialized() {
		return nil
	}
	doc := s.Document()
	if link := doc.Root().First(a.layout.Selectors.OpenComments); link != nil && a.layout.Variant == layout.Mobile {
		doc.Click(link)
	} else {
		s.ArmRetry()
	}
	if !s.Retrying() {
		return nil
	}
	a.statusBar.SetRetrying(true)
	tick := a.tick()
	if tick == nil {
		return nil
	}
	return tea.Batch(status("Waiting for comments...", false), tick)
}

func (a *App) pageLoaded(msg messages.PageLoadedMsg) tea.Cmd {
	a.loading = false
	if msg.Err != nil {
		a.logger.Error("loading page", slog.String("target", a.target), slog.String("error", msg.Err.Error()))
		a.statusBar.SetStatus("Error: "+msg.Err.Error(), true)
		if a.session == nil {
			a.commentView.SetPlaceholder("Error loading page: "+msg.Err.Error(), "")
		}
		if msg.Retry && a.session != nil && a.session.Retrying() {
			return a.tick()
		}
		return nil
	}

	if a.session == nil {
		a.session = session.New(msg.Doc, a.layout, a.logger)
	} else {
		a.session.Attach(msg.Doc)
	}
	a.statusBar.SetFetched(msg.Page.FetchedAt)

	if a.session.TryInit() {
		a.statusBar.SetRetrying(false)
		a.statusBar.SetThreshold(a.session.Presenter().Threshold())
		a.statusBar.SetStatus(strconv.Itoa(a.session.Forest().Count())+" comments", false)
		a.commentView.SetSession(a.session, msg.Page.Title)
		a.updateCounts()
		return nil
	}
	if a.session.Retrying() {
		return a.tick()
	}
	a.commentView.SetPlaceholder("No comments on the page yet. Press c to wait for them.", msg.Page.Title)
	a.statusBar.SetStatus("No comments", false)
	return nil
}

func (a *App) updateCounts() {
	if a.session == nil || !a.session.Initialized() {
		return
	}
	list := a.commentView.Comments()
	a.statusBar.SetCounts(commentview.Expanded(list), a.session.Forest().Count())
}

// View renders the application.
func (a *App) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, a.commentView.View(), a.statusBar.View())
}
