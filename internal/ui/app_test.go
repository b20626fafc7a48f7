package ui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/habrscore/internal/api"
	"github.com/fragmede/habrscore/internal/config"
	"github.com/fragmede/habrscore/internal/fetch"
	"github.com/fragmede/habrscore/internal/layout"
	"github.com/fragmede/habrscore/internal/testutil"
	"github.com/fragmede/habrscore/internal/ui/messages"
	"github.com/fragmede/habrscore/internal/visibility"
)

func newApp(t *testing.T, page string, l layout.Layout) (*App, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "article.html")
	require.NoError(t, os.WriteFile(path, []byte(page), 0o644))

	cfg := config.Default()
	cfg.RetryInterval = 10 * time.Millisecond
	loader := fetch.NewLoader(api.NewClient(), nil, time.Minute, nil)
	app := NewApp(cfg, loader, path, l, nil)
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return app, path
}

// run executes cmd and feeds the resulting messages back into the app.
func run(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			run(t, app, c)
		}
		return
	}
	if msg == nil {
		return
	}
	_, next := app.Update(msg)
	run(t, app, next)
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestAppInitializesFromPage(t *testing.T) {
	app, _ := newApp(t, testutil.DesktopPage(testutil.Flat(5, -2, 0)), layout.DesktopLayout())
	run(t, app, app.Init())

	s := app.Session()
	require.NotNil(t, s)
	assert.True(t, s.Initialized())
	assert.Len(t, s.Presenter().Buckets(), 3)
	assert.Contains(t, app.View(), "Оценки")
	assert.Equal(t, "3 comments", app.statusBar.Status())
}

func TestAppFilterUpdatesStatusBar(t *testing.T) {
	app, _ := newApp(t, testutil.DesktopPage(testutil.Flat(5, -2, 0)), layout.DesktopLayout())
	run(t, app, app.Init())

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(t, app, cmd)

	assert.Equal(t, visibility.At(5), app.Session().Presenter().Threshold())
	assert.Contains(t, app.statusBar.View(), ">=5")
	assert.Contains(t, app.statusBar.View(), "1/3")
}

func TestAppWaitsForComments(t *testing.T) {
	app, path := newApp(t, testutil.EmptyDesktopPage(), layout.DesktopLayout())
	run(t, app, app.Init())

	s := app.Session()
	require.NotNil(t, s)
	assert.False(t, s.Initialized())
	assert.False(t, s.Retrying())
	assert.Equal(t, "No comments", app.statusBar.Status())

	_, cmd := app.Update(keyPress("c"))
	require.NotNil(t, cmd, "retry tick scheduled")
	assert.True(t, s.Retrying())

	// A second request while waiting does not start another timer.
	_, again := app.Update(keyPress("c"))
	assert.Nil(t, again)

	// Still empty on the first tick.
	_, cmd = app.Update(messages.RetryTickMsg{})
	require.NotNil(t, cmd)
	msg := cmd()
	_, next := app.Update(msg)
	assert.False(t, s.Initialized())
	require.NotNil(t, next, "rescheduled")

	require.NoError(t, os.WriteFile(path, []byte(testutil.DesktopPage(testutil.Flat(1, 2))), 0o644))
	_, cmd = app.Update(messages.RetryTickMsg{})
	run(t, app, cmd)

	assert.Same(t, s, app.Session())
	assert.True(t, s.Initialized())
	assert.False(t, s.Retrying())
	assert.Len(t, app.commentView.Comments(), 2)
}

func TestAppMobileCommentLinkArmsRetry(t *testing.T) {
	app, _ := newApp(t, testutil.MobilePage(nil), layout.MobileLayout())
	run(t, app, app.Init())

	_, cmd := app.Update(keyPress("c"))
	assert.NotNil(t, cmd)
	assert.True(t, app.Session().Retrying())
}

func TestAppLoadError(t *testing.T) {
	app := NewApp(config.Default(), fetch.NewLoader(api.NewClient(), nil, time.Minute, nil),
		filepath.Join(t.TempDir(), "missing.html"), layout.DesktopLayout(), nil)
	run(t, app, app.Init())

	assert.Nil(t, app.Session())
	assert.Contains(t, app.statusBar.Status(), "page not found")
}

func TestAppRefreshStartsNewSession(t *testing.T) {
	app, _ := newApp(t, testutil.DesktopPage(testutil.Flat(1)), layout.DesktopLayout())
	run(t, app, app.Init())
	first := app.Session()

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	run(t, app, cmd)

	require.NotNil(t, app.Session())
	assert.NotSame(t, first, app.Session())
	assert.NotEqual(t, first.ID, app.Session().ID)
	assert.True(t, app.Session().Initialized())
}

// statuses executes the commands in cmd without feeding them back and
// returns the status messages among the results.
func statuses(cmd tea.Cmd) []messages.StatusMsg {
	if cmd == nil {
		return nil
	}
	var out []messages.StatusMsg
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			out = append(out, statuses(c)...)
		}
	case messages.StatusMsg:
		out = append(out, msg)
	}
	return out
}

func TestAppRefreshReportsStatus(t *testing.T) {
	app, _ := newApp(t, testutil.DesktopPage(testutil.Flat(1)), layout.DesktopLayout())
	run(t, app, app.Init())

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	got := statuses(cmd)
	require.Len(t, got, 1)
	assert.Equal(t, "Refreshing...", got[0].Text)
	assert.False(t, got[0].IsError)

	app.Update(got[0])
	assert.Equal(t, "Refreshing...", app.statusBar.Status())
}

func TestAppWaitingReportsStatus(t *testing.T) {
	app, _ := newApp(t, testutil.EmptyDesktopPage(), layout.DesktopLayout())
	run(t, app, app.Init())

	_, cmd := app.Update(keyPress("c"))
	got := statuses(cmd)
	require.Len(t, got, 1)
	assert.Equal(t, "Waiting for comments...", got[0].Text)

	app.Update(got[0])
	assert.Equal(t, "Waiting for comments...", app.statusBar.Status())
	assert.Contains(t, app.statusBar.View(), "WAITING")
}
