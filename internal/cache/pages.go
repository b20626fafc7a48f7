package cache

import (
	"database/sql"
	"time"

	"github.com/fragmede/habrscore/internal/api"
)

// GetPage retrieves a cached page. Returns (page, isFresh, error).
// isFresh indicates whether the page is within its TTL.
// Returns nil page on cache miss.
func (d *DB) GetPage(url string, ttl time.Duration) (*api.Page, bool, error) {
	row := d.db.QueryRow(`SELECT url, host, title, html, fetched_at FROM pages WHERE url = ?`, url)

	var page api.Page
	var title sql.NullString
	var fetchedAt int64
	err := row.Scan(&page.URL, &page.Host, &title, &page.HTML, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	page.Title = title.String
	page.FetchedAt = time.Unix(fetchedAt, 0)

	isFresh := time.Since(page.FetchedAt) < ttl
	return &page, isFresh, nil
}

// PutPage stores a page in the cache.
func (d *DB) PutPage(page *api.Page) error {
	fetchedAt := page.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	_, err := d.db.Exec(`INSERT OR REPLACE INTO pages (url, host, title, html, fetched_at) VALUES (?, ?, ?, ?, ?)`,
		page.URL, page.Host, nullStr(page.Title), page.HTML, fetchedAt.Unix())
	return err
}

// InvalidatePage drops a cached page so the next load refetches it.
func (d *DB) InvalidatePage(url string) error {
	_, err := d.db.Exec(`DELETE FROM pages WHERE url = ?`, url)
	return err
}

// PruneOlderThan removes pages fetched before cutoff.
func (d *DB) PruneOlderThan(cutoff time.Time) (int64, error) {
	res, err := d.db.Exec(`DELETE FROM pages WHERE fetched_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
