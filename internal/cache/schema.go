package cache

// SQL schemas for cache tables.
// Response caches use "cache_key" as the primary key column; the mapping
// tables carry typed columns because they are queried by value.

// DoubanSearchCacheSchema defines the schema for Douban search result cache
const DoubanSearchCacheSchema = `
CREATE TABLE IF NOT EXISTS douban_search_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_douban_search_cached_at ON douban_search_cache(cached_at);
`

// DoubanBookCacheSchema defines the schema for Douban detail-page cache
const DoubanBookCacheSchema = `
CREATE TABLE IF NOT EXISTS douban_book_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_douban_book_cached_at ON douban_book_cache(cached_at);
`

// DoubanISBNCacheSchema defines the schema for ISBN → Douban subject ID mappings
const DoubanISBNCacheSchema = `
CREATE TABLE IF NOT EXISTS douban_isbn_cache (
	isbn TEXT PRIMARY KEY NOT NULL,
	subject_id TEXT NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_douban_isbn_subject ON douban_isbn_cache(subject_id);
`

// DoubanCoverCacheSchema defines the schema for subject ID → cover URL mappings
const DoubanCoverCacheSchema = `
CREATE TABLE IF NOT EXISTS douban_cover_cache (
	subject_id TEXT PRIMARY KEY NOT NULL,
	cover_url TEXT NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_douban_cover_cached_at ON douban_cover_cache(cached_at);
`

// AllCacheSchemas contains all cache table schemas for easy initialization
var AllCacheSchemas = []string{
	DoubanSearchCacheSchema,
	DoubanBookCacheSchema,
	DoubanISBNCacheSchema,
	DoubanCoverCacheSchema,
}

// ValidCacheTableNames is the whitelist of allowed cache table names
// Used to prevent SQL injection when interpolating table names
var ValidCacheTableNames = map[string]bool{
	"douban_search_cache": true,
	"douban_book_cache":   true,
	"douban_isbn_cache":   true,
	"douban_cover_cache":  true,
}
