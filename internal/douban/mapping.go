package douban

import (
	"database/sql"
	"errors"
	"log/slog"

	"github.com/lepinkainen/doubanmeta/internal/cache"
	"github.com/lepinkainen/doubanmeta/internal/metadata"
)

// Identifier mappings persist across runs so a book identified once by ISBN
// never needs another search, and covers can be fetched without re-parsing
// the detail page.

// SaveISBNMapping records that an ISBN resolves to a Douban subject ID.
func SaveISBNMapping(isbn, subjectID string) error {
	db, err := cache.GetGlobalCache()
	if err != nil {
		return err
	}
	return db.Exec(`
		INSERT OR REPLACE INTO douban_isbn_cache (isbn, subject_id, cached_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
	`, isbn, subjectID)
}

// SubjectIDForISBN looks up the cached subject ID for an ISBN.
func SubjectIDForISBN(isbn string) (string, bool) {
	db, err := cache.GetGlobalCache()
	if err != nil {
		return "", false
	}

	var subjectID string
	row := db.QueryRow("SELECT subject_id FROM douban_isbn_cache WHERE isbn = ?", isbn)
	if err := row.Scan(&subjectID); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("ISBN mapping lookup failed", "isbn", isbn, "error", err)
		}
		return "", false
	}
	return subjectID, true
}

// SaveCoverMapping records the cover URL for a subject ID.
func SaveCoverMapping(subjectID, coverURL string) error {
	db, err := cache.GetGlobalCache()
	if err != nil {
		return err
	}
	return db.Exec(`
		INSERT OR REPLACE INTO douban_cover_cache (subject_id, cover_url, cached_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
	`, subjectID, coverURL)
}

// CoverURLForSubject looks up the cached cover URL for a subject ID.
func CoverURLForSubject(subjectID string) (string, bool) {
	db, err := cache.GetGlobalCache()
	if err != nil {
		return "", false
	}

	var coverURL string
	row := db.QueryRow("SELECT cover_url FROM douban_cover_cache WHERE subject_id = ?", subjectID)
	if err := row.Scan(&coverURL); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("Cover mapping lookup failed", "subject_id", subjectID, "error", err)
		}
		return "", false
	}
	return coverURL, true
}

// recordMappings persists the identifier and cover mappings for a book.
// Failures are logged but never fail the lookup itself.
func recordMappings(book *metadata.Book) {
	for _, isbn := range book.AllISBNs {
		if err := SaveISBNMapping(isbn, book.SubjectID); err != nil {
			slog.Warn("Failed to save ISBN mapping", "isbn", isbn, "subject_id", book.SubjectID, "error", err)
		}
	}
	if book.CoverURL != "" {
		if err := SaveCoverMapping(book.SubjectID, book.CoverURL); err != nil {
			slog.Warn("Failed to save cover mapping", "subject_id", book.SubjectID, "error", err)
		}
	}
}
