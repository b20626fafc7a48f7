// Package session holds the per-page state of the comment filter: the
// one-way initialization latch and the retry that waits for comments to
// render.
package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fragmede/habrscore/internal/comments"
	"github.com/fragmede/habrscore/internal/dom"
	"github.com/fragmede/habrscore/internal/layout"
	"github.com/fragmede/habrscore/internal/presenter"
	"github.com/fragmede/habrscore/internal/visibility"
)

// Session is the state of one page view. It is driven from a single event
// loop and is not safe for concurrent use.
type Session struct {
	ID     uuid.UUID
	layout layout.Layout
	logger *slog.Logger

	doc         *dom.Document
	initialized bool
	retrying    bool
	attempts    int

	forest    comments.Forest
	hist      comments.Histogram
	engine    *visibility.Engine
	presenter *presenter.Presenter
}

// New creates a session over doc. On layouts with an "open comments" link
// the link arms the retry when clicked.
func New(doc *dom.Document, l layout.Layout, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New()
	s := &Session{
		ID:     id,
		layout: l,
		logger: logger.With(slog.String("page_view", id.String()), slog.String("layout", string(l.Variant))),
	}
	s.Attach(doc)
	return s
}

// Attach replaces the document with a fresh load of the same page. It is
// ignored once the session is initialized.
func (s *Session) Attach(doc *dom.Document) {
	if s.initialized || doc == nil {
		return
	}
	s.doc = doc
	if s.layout.Variant == layout.Mobile {
		if link := doc.Root().First(s.layout.Selectors.OpenComments); link != nil {
			link.OnClick(func() bool {
				s.ArmRetry()
				return true
			})
		}
	}
}

// TryInit builds the comment tree and renders the histogram. It returns
// false while the page has no comments yet and is a no-op returning true
// once a build succeeded.
func (s *Session) TryInit() bool {
	if s.initialized {
		return true
	}
	if s.doc == nil {
		return false
	}
	s.attempts++

	root := s.doc.Root()
	hist := comments.Histogram{}
	forest := comments.NewBuilder(s.doc, s.layout).Build(root.First(s.layout.Selectors.ListComments), hist)
	if len(forest) == 0 {
		s.logger.Debug("comments not ready", slog.Int("attempt", s.attempts))
		return false
	}

	s.initialized = true
	s.retrying = false
	s.forest = forest
	s.hist = hist
	s.engine = visibility.NewEngine(root, s.layout)
	s.presenter = presenter.New(s.doc, root, s.layout, s.engine, forest)
	s.presenter.OnChange(func(t visibility.Threshold) {
		s.logger.Info("threshold changed", slog.String("threshold", t.String()))
	})
	s.presenter.Render(hist)

	s.logger.Info("comments initialized",
		slog.Int("top_level", len(forest)),
		slog.Int("total", forest.Count()),
		slog.Int("buckets", len(hist)),
		slog.Int("attempt", s.attempts))
	return true
}

// ArmRetry starts retrying initialization on the retry interval. It has no
// effect after initialization.
func (s *Session) ArmRetry() {
	if s.initialized || s.retrying {
		return
	}
	s.retrying = true
	s.logger.Debug("retry armed")
}

// Retrying reports whether the retry timer should keep firing.
func (s *Session) Retrying() bool {
	return s.retrying
}

// Initialized reports whether the comment tree has been built.
func (s *Session) Initialized() bool {
	return s.initialized
}

// Reloader fetches a fresh copy of the page.
type Reloader func(ctx context.Context) (*dom.Document, error)

// RetryEvery attempts initialization immediately and then on every tick of
// interval, reloading the page before each retry, until it succeeds or ctx
// is done. Reload errors are logged and retried on the next tick.
func (s *Session) RetryEvery(ctx context.Context, interval time.Duration, reload Reloader) error {
	if s.TryInit() {
		return nil
	}
	s.ArmRetry()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.retrying = false
			return ctx.Err()
		case <-ticker.C:
		}
		if reload != nil {
			doc, err := reload(ctx)
			if err != nil {
				s.logger.Warn("reloading page", slog.String("error", err.Error()))
				continue
			}
			s.Attach(doc)
		}
		if s.TryInit() {
			return nil
		}
	}
}

// Document returns the page.
func (s *Session) Document() *dom.Document {
	return s.doc
}

// Layout returns the selector table in use.
func (s *Session) Layout() layout.Layout {
	return s.layout
}

// Forest returns the comment tree, empty before initialization.
func (s *Session) Forest() comments.Forest {
	return s.forest
}

// Histogram returns the score histogram, nil before initialization.
func (s *Session) Histogram() comments.Histogram {
	return s.hist
}

// Engine returns the visibility engine, nil before initialization.
func (s *Session) Engine() *visibility.Engine {
	return s.engine
}

// Presenter returns the bucket presenter, nil before initialization.
func (s *Session) Presenter() *presenter.Presenter {
	return s.presenter
}
