// Package fetch loads article pages from the network, the page cache or
// the local filesystem.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fragmede/habrscore/internal/api"
	"github.com/fragmede/habrscore/internal/cache"
	"github.com/fragmede/habrscore/internal/dom"
)

// ErrNotFound is returned for local targets that do not exist.
var ErrNotFound = errors.New("page not found")

// Loader resolves a target (URL or file path) to a page.
type Loader struct {
	client *api.Client
	cache  *cache.DB
	ttl    time.Duration
	logger *slog.Logger
}

// NewLoader creates a loader. db may be nil to disable caching.
func NewLoader(client *api.Client, db *cache.DB, ttl time.Duration, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{client: client, cache: db, ttl: ttl, logger: logger}
}

// IsRemote reports whether target is an http(s) URL.
func IsRemote(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}

// Load returns the page for target. Fresh cached copies are used unless
// refresh is set; a stale copy is returned when the network fails.
func (l *Loader) Load(ctx context.Context, target string, refresh bool) (*api.Page, error) {
	if !IsRemote(target) {
		return loadFile(target)
	}

	var stale *api.Page
	if l.cache != nil && !refresh {
		page, fresh, err := l.cache.GetPage(target, l.ttl)
		if err != nil {
			l.logger.Warn("reading page cache", slog.String("url", target), slog.String("error", err.Error()))
		}
		if page != nil && fresh {
			l.logger.Debug("page cache hit", slog.String("url", target))
			return page, nil
		}
		stale = page
	}

	page, err := l.client.GetPage(ctx, target)
	if err != nil {
		if stale != nil {
			l.logger.Warn("using stale page", slog.String("url", target), slog.String("error", err.Error()))
			return stale, nil
		}
		return nil, err
	}
	if l.cache != nil {
		if err := l.cache.PutPage(page); err != nil {
			l.logger.Warn("writing page cache", slog.String("url", target), slog.String("error", err.Error()))
		}
	}
	return page, nil
}

// LoadDocument loads target and parses it.
func (l *Loader) LoadDocument(ctx context.Context, target string, refresh bool) (*api.Page, *dom.Document, error) {
	page, err := l.Load(ctx, target, refresh)
	if err != nil {
		return nil, nil, err
	}
	doc, err := dom.Parse(bytes.NewReader(page.HTML))
	if err != nil {
		return nil, nil, err
	}
	return page, doc, nil
}

// LoadAll loads many targets. Local files and fresh cache entries are read
// directly; the remaining URLs are fetched concurrently. Results keep the
// input order and a failed target has a nil page and its error at the same
// index.
func (l *Loader) LoadAll(ctx context.Context, targets []string) ([]*api.Page, []error) {
	pages := make([]*api.Page, len(targets))
	errs := make([]error, len(targets))

	var remote []string
	var remoteIdx []int
	for i, target := range targets {
		if !IsRemote(target) {
			pages[i], errs[i] = loadFile(target)
			continue
		}
		if l.cache != nil {
			page, fresh, err := l.cache.GetPage(target, l.ttl)
			if err == nil && page != nil && fresh {
				pages[i] = page
				continue
			}
		}
		remote = append(remote, target)
		remoteIdx = append(remoteIdx, i)
	}
	if len(remote) == 0 {
		return pages, errs
	}

	fetched, fetchErrs := l.client.BatchGetPages(ctx, remote)
	for j, i := range remoteIdx {
		pages[i], errs[i] = fetched[j], fetchErrs[j]
		if fetched[j] == nil || l.cache == nil {
			continue
		}
		if err := l.cache.PutPage(fetched[j]); err != nil {
			l.logger.Warn("writing page cache", slog.String("url", remote[j]), slog.String("error", err.Error()))
		}
	}
	l.logger.Debug("batch load", slog.Int("targets", len(targets)), slog.Int("fetched", len(remote)))
	return pages, errs
}

// Invalidate drops target from the cache.
func (l *Loader) Invalidate(target string) error {
	if l.cache == nil || !IsRemote(target) {
		return nil
	}
	return l.cache.InvalidatePage(target)
}

func loadFile(path string) (*api.Page, error) {
	path = strings.TrimPrefix(path, "file://")
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	u := &url.URL{Scheme: "file", Path: abs}
	return &api.Page{
		URL:       path,
		Title:     api.ExtractTitle(body, u),
		HTML:      body,
		FetchedAt: info.ModTime(),
	}, nil
}
