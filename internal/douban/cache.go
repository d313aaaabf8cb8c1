package douban

import (
	"context"
	"strings"

	"github.com/lepinkainen/doubanmeta/internal/cache"
	"github.com/lepinkainen/doubanmeta/internal/metadata"
)

// CachedSearch runs a search through the response cache. Empty result sets
// are not cached so a transient miss doesn't stick for the full TTL.
func (c *Client) CachedSearch(ctx context.Context, query string) ([]SearchResult, bool, error) {
	key := normalizeQuery(query)
	return cache.GetOrFetchWithPolicy(
		"douban_search_cache",
		key,
		func() ([]SearchResult, error) { return c.Search(ctx, query) },
		func(results []SearchResult) bool { return len(results) > 0 },
	)
}

// CachedFetchBook fetches a detail page through the response cache.
func (c *Client) CachedFetchBook(ctx context.Context, subjectID string) (*metadata.Book, bool, error) {
	return cache.GetOrFetch(
		"douban_book_cache",
		subjectID,
		func() (*metadata.Book, error) { return c.FetchBook(ctx, subjectID) },
	)
}

// normalizeQuery canonicalizes a query for use as a cache key.
func normalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
