package cache

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCacheDB(t *testing.T) *CacheDB {
	t.Helper()

	db, err := NewCacheDB(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	for _, schema := range AllCacheSchemas {
		require.NoError(t, db.CreateTable(schema))
	}
	return db
}

func setupGlobalCache(t *testing.T) {
	t.Helper()

	viper.Reset()
	viper.Set("cache.dbfile", filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, ResetGlobalCache())
	t.Cleanup(func() {
		_ = ResetGlobalCache()
		viper.Reset()
	})
}

func TestSetAndGet(t *testing.T) {
	db := setupCacheDB(t)

	require.NoError(t, db.Set("douban_book_cache", "2567698", `{"title":"三体"}`))

	data, hit, err := db.Get("douban_book_cache", "2567698", time.Hour)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, `{"title":"三体"}`, data)
}

func TestGetMiss(t *testing.T) {
	db := setupCacheDB(t)

	_, hit, err := db.Get("douban_book_cache", "missing", time.Hour)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestGetExpired(t *testing.T) {
	db := setupCacheDB(t)

	require.NoError(t, db.Set("douban_search_cache", "key", "data"))

	// Zero TTL makes every entry stale
	_, hit, err := db.Get("douban_search_cache", "key", 0)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestInvalidTableName(t *testing.T) {
	db := setupCacheDB(t)

	err := db.Set("evil_table; DROP TABLE douban_book_cache", "key", "data")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cache table name")

	_, _, err = db.Get("nope", "key", time.Hour)
	assert.Error(t, err)
}

func TestInvalidateSource(t *testing.T) {
	db := setupCacheDB(t)

	require.NoError(t, db.Set("douban_search_cache", "a", "1"))
	require.NoError(t, db.Set("douban_search_cache", "b", "2"))

	deleted, err := db.InvalidateSource("douban_search_cache")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, hit, err := db.Get("douban_search_cache", "a", time.Hour)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheExists(t *testing.T) {
	db := setupCacheDB(t)

	assert.False(t, db.CacheExists("douban_cover_cache", "123"))
	require.NoError(t, db.Exec(
		"INSERT INTO douban_cover_cache (subject_id, cover_url) VALUES (?, ?)",
		"123", "https://img.example/cover.jpg"))

	var url string
	row := db.QueryRow("SELECT cover_url FROM douban_cover_cache WHERE subject_id = ?", "123")
	require.NoError(t, row.Scan(&url))
	assert.Equal(t, "https://img.example/cover.jpg", url)
}

type cachedPayload struct {
	Value string `json:"value"`
}

func TestGetOrFetch(t *testing.T) {
	setupGlobalCache(t)

	fetches := 0
	fetch := func() (*cachedPayload, error) {
		fetches++
		return &cachedPayload{Value: "fetched"}, nil
	}

	result, fromCache, err := GetOrFetch("douban_book_cache", "key", fetch)
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, "fetched", result.Value)

	result, fromCache, err = GetOrFetch("douban_book_cache", "key", fetch)
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.Equal(t, "fetched", result.Value)
	assert.Equal(t, 1, fetches)
}

func TestGetOrFetchError(t *testing.T) {
	setupGlobalCache(t)

	_, _, err := GetOrFetch("douban_book_cache", "key", func() (*cachedPayload, error) {
		return nil, errors.New("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestGetOrFetchWithPolicySkipsEmpty(t *testing.T) {
	setupGlobalCache(t)

	fetches := 0
	fetch := func() (*cachedPayload, error) {
		fetches++
		return &cachedPayload{}, nil
	}
	notEmpty := func(p *cachedPayload) bool { return p != nil && p.Value != "" }

	_, fromCache, err := GetOrFetchWithPolicy("douban_search_cache", "key", fetch, notEmpty)
	require.NoError(t, err)
	assert.False(t, fromCache)

	// Empty result was not cached, so the second call fetches again
	_, fromCache, err = GetOrFetchWithPolicy("douban_search_cache", "key", fetch, notEmpty)
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, 2, fetches)
}
