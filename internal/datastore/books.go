package datastore

import (
	"strings"

	"github.com/lepinkainen/doubanmeta/internal/metadata"
)

// DefaultDatabase is the database name used for Datasette inserts.
const DefaultDatabase = "doubanmeta"

// BooksTable is the table identified book records are written to.
const BooksTable = "books"

// BookSchema defines the local SQLite table for identified books.
const BookSchema = `
CREATE TABLE IF NOT EXISTS books (
	douban_id TEXT PRIMARY KEY NOT NULL,
	title TEXT NOT NULL,
	subtitle TEXT,
	authors TEXT,
	translators TEXT,
	publisher TEXT,
	producer TEXT,
	series TEXT,
	tags TEXT,
	rating REAL,
	pubdate TEXT,
	pages INTEGER,
	price TEXT,
	isbn TEXT,
	description TEXT,
	cover_url TEXT
);
`

// RecordFromBook flattens a metadata record into a row for storage.
// Multi-valued fields are joined with commas since both backends want
// flat columns.
func RecordFromBook(book *metadata.Book) map[string]any {
	pubdate := ""
	if !book.PubDate.IsZero() {
		pubdate = book.PubDate.Format("2006-01-02")
	}

	return map[string]any{
		"douban_id":   book.SubjectID,
		"title":       book.Title,
		"subtitle":    book.Subtitle,
		"authors":     strings.Join(book.Authors, ", "),
		"translators": strings.Join(book.Translators, ", "),
		"publisher":   book.Publisher,
		"producer":    book.Producer,
		"series":      book.Series,
		"tags":        strings.Join(book.Tags, ", "),
		"rating":      book.Rating,
		"pubdate":     pubdate,
		"pages":       book.Pages,
		"price":       book.Price,
		"isbn":        book.ISBN,
		"description": book.Description,
		"cover_url":   book.CoverURL,
	}
}

// StoreBooks writes book records through any Store implementation.
func StoreBooks(store Store, books []*metadata.Book) error {
	if len(books) == 0 {
		return nil
	}

	if err := store.Connect(); err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.CreateTable(BookSchema); err != nil {
		return err
	}

	records := make([]map[string]any, 0, len(books))
	for _, book := range books {
		records = append(records, RecordFromBook(book))
	}
	return store.BatchInsert(DefaultDatabase, BooksTable, records)
}
