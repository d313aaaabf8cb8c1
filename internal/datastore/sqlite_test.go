package datastore

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/doubanmeta/internal/metadata"
)

func testBook() *metadata.Book {
	return &metadata.Book{
		Title:     "三体",
		Subtitle:  "地球往事三部曲之一",
		Authors:   []string{"刘慈欣"},
		Publisher: "重庆出版社",
		Tags:      []string{"科幻", "中国"},
		Rating:    4.45,
		PubDate:   time.Date(2008, 1, 15, 0, 0, 0, 0, time.UTC),
		Pages:     302,
		ISBN:      "9787536692930",
		SubjectID: "2567698",
		CoverURL:  "https://img9.doubanio.com/s2768378.jpg",
	}
}

func TestStoreBooksSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "books.db")
	store := NewSQLiteStore(dbPath)

	require.NoError(t, StoreBooks(store, []*metadata.Book{testBook()}))

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var title, authors, pubdate string
	var pages int
	row := db.QueryRow("SELECT title, authors, pubdate, pages FROM books WHERE douban_id = ?", "2567698")
	require.NoError(t, row.Scan(&title, &authors, &pubdate, &pages))

	assert.Equal(t, "三体", title)
	assert.Equal(t, "刘慈欣", authors)
	assert.Equal(t, "2008-01-15", pubdate)
	assert.Equal(t, 302, pages)
}

func TestStoreBooksUpsert(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "books.db")

	book := testBook()
	require.NoError(t, StoreBooks(NewSQLiteStore(dbPath), []*metadata.Book{book}))

	book.Pages = 999
	require.NoError(t, StoreBooks(NewSQLiteStore(dbPath), []*metadata.Book{book}))

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var count, pages int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM books").Scan(&count))
	require.NoError(t, db.QueryRow("SELECT pages FROM books WHERE douban_id = ?", "2567698").Scan(&pages))
	assert.Equal(t, 1, count)
	assert.Equal(t, 999, pages)
}

func TestBatchInsertEmpty(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "books.db"))
	require.NoError(t, store.Connect())
	defer func() { _ = store.Close() }()

	assert.NoError(t, store.BatchInsert(DefaultDatabase, BooksTable, nil))
}

func TestRecordFromBook(t *testing.T) {
	record := RecordFromBook(testBook())
	assert.Equal(t, "三体", record["title"])
	assert.Equal(t, "科幻, 中国", record["tags"])
	assert.Equal(t, "2008-01-15", record["pubdate"])
	assert.Equal(t, 4.45, record["rating"])

	// Zero pubdate stays empty instead of year one
	record = RecordFromBook(&metadata.Book{Title: "x", SubjectID: "1"})
	assert.Equal(t, "", record["pubdate"])
}
