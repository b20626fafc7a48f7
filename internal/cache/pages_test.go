package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/habrscore/internal/api"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPageRoundTrip(t *testing.T) {
	db := openTemp(t)
	page := &api.Page{
		URL:       "https://habr.com/ru/articles/1/",
		Host:      "habr.com",
		Title:     "Title",
		HTML:      []byte("<html></html>"),
		FetchedAt: time.Now(),
	}
	require.NoError(t, db.PutPage(page))

	got, fresh, err := db.GetPage(page.URL, time.Minute)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, fresh)
	assert.Equal(t, page.HTML, got.HTML)
	assert.Equal(t, "Title", got.Title)
	assert.Equal(t, "habr.com", got.Host)
}

func TestGetPageMissAndStale(t *testing.T) {
	db := openTemp(t)
	got, fresh, err := db.GetPage("https://habr.com/none", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, fresh)

	old := &api.Page{URL: "u", Host: "h", HTML: []byte("x"), FetchedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, db.PutPage(old))
	got, fresh, err = db.GetPage("u", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, fresh)
	assert.Empty(t, got.Title)
}

func TestInvalidateAndPrune(t *testing.T) {
	db := openTemp(t)
	require.NoError(t, db.PutPage(&api.Page{URL: "a", Host: "h", HTML: []byte("a")}))
	require.NoError(t, db.PutPage(&api.Page{URL: "b", Host: "h", HTML: []byte("b"), FetchedAt: time.Now().Add(-48 * time.Hour)}))

	require.NoError(t, db.InvalidatePage("a"))
	got, _, err := db.GetPage("a", time.Hour)
	require.NoError(t, err)
	assert.Nil(t, got)

	n, err := db.PruneOlderThan(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
