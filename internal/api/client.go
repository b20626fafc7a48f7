package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	readability "github.com/go-shiori/go-readability"
	"golang.org/x/sync/errgroup"
)

const (
	defaultTimeout       = 10 * time.Second
	defaultMaxConcurrent = 4
	defaultUserAgent     = "habrscore/1.0"
)

// maxPageSize bounds the size of a fetched page.
var maxPageSize int64 = 16 << 20

// ErrPageTooLarge is returned for a page body over the size limit.
var ErrPageTooLarge = errors.New("page too large")

// Client fetches article pages.
type Client struct {
	http          *http.Client
	userAgent     string
	maxConcurrent int
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithMaxConcurrent limits parallel fetches in BatchGetPages.
func WithMaxConcurrent(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxConcurrent = n
		}
	}
}

// NewClient creates a page client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:          &http.Client{Timeout: defaultTimeout},
		userAgent:     defaultUserAgent,
		maxConcurrent: defaultMaxConcurrent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetPage downloads an article page.
func (c *Client) GetPage(ctx context.Context, pageURL string) (*Page, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing url %q: %w", pageURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, pageURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", pageURL, err)
	}
	if int64(len(body)) > maxPageSize {
		return nil, fmt.Errorf("%s: %w (limit %d bytes)", pageURL, ErrPageTooLarge, maxPageSize)
	}

	page := &Page{
		URL:       pageURL,
		Host:      u.Hostname(),
		HTML:      body,
		FetchedAt: time.Now(),
	}
	page.Title = ExtractTitle(body, u)
	return page, nil
}

// BatchGetPages fetches pages concurrently. Results keep the input order;
// failed fetches are nil and their errors are returned in errs at the same
// index.
func (c *Client) BatchGetPages(ctx context.Context, urls []string) ([]*Page, []error) {
	pages := make([]*Page, len(urls))
	errs := make([]error, len(urls))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrent)

	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			page, err := c.GetPage(ctx, u)
			mu.Lock()
			pages[i], errs[i] = page, err
			mu.Unlock()
			// Non-fatal: one bad page should not cancel the others.
			return nil
		})
	}
	_ = g.Wait()
	return pages, errs
}

// ExtractTitle returns the article title of an HTML page, or "" when none
// can be found.
func ExtractTitle(body []byte, pageURL *url.URL) string {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return ""
	}
	return article.Title
}
