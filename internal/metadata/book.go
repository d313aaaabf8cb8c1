// Package metadata defines the normalized book record produced by lookups
// and the helpers used to validate and normalize its fields.
package metadata

import (
	"strings"
	"time"
)

// Book is the normalized metadata record for a single book edition.
type Book struct {
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle,omitempty"`
	Authors     []string  `json:"authors"`
	Translators []string  `json:"translators,omitempty"`
	Publisher   string    `json:"publisher,omitempty"`
	Producer    string    `json:"producer,omitempty"`
	Series      string    `json:"series,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Rating      float64   `json:"rating,omitempty"` // 0-5 scale
	PubDate     time.Time `json:"pubdate,omitempty"`
	Pages       int       `json:"pages,omitempty"`
	Price       string    `json:"price,omitempty"`
	ISBN        string    `json:"isbn,omitempty"`
	AllISBNs    []string  `json:"all_isbns,omitempty"`
	SubjectID   string    `json:"douban_id,omitempty"`
	Description string    `json:"description,omitempty"`
	CoverURL    string    `json:"cover_url,omitempty"`

	// Relevance is the position of the record in the search results that
	// produced it. Lower is more relevant.
	Relevance int `json:"relevance"`
}

// DisplayTitle returns the title with the subtitle appended when requested.
func (b *Book) DisplayTitle(includeSubtitle bool) string {
	if !includeSubtitle || b.Subtitle == "" {
		return b.Title
	}
	return b.Title + ": " + b.Subtitle
}

// HasCover reports whether the record carries a real cover URL.
func (b *Book) HasCover() bool {
	return b.CoverURL != ""
}

// PrimaryAuthor returns the first author, or empty string.
func (b *Book) PrimaryAuthor() string {
	if len(b.Authors) == 0 {
		return ""
	}
	return b.Authors[0]
}

// Year returns the publication year, or 0 when the pubdate is unset.
func (b *Book) Year() int {
	if b.PubDate.IsZero() {
		return 0
	}
	return b.PubDate.Year()
}

// SetISBNs records the valid ISBN candidates on the book. The longest valid
// candidate becomes the primary ISBN, which prefers ISBN-13 over ISBN-10
// when both appear on a detail page.
func (b *Book) SetISBNs(candidates []string) {
	var valid []string
	for _, c := range candidates {
		if isbn := ValidateISBN(c); isbn != "" {
			valid = append(valid, isbn)
		}
	}
	if len(valid) == 0 {
		return
	}
	primary := valid[0]
	for _, isbn := range valid[1:] {
		if len(isbn) > len(primary) {
			primary = isbn
		}
	}
	b.ISBN = primary
	b.AllISBNs = valid
}

// CleanTitle trims surrounding whitespace and the decorative quotes Douban
// wraps some titles in.
func CleanTitle(title string) string {
	title = strings.TrimSpace(title)
	title = strings.Trim(title, "《》“”\"")
	return strings.TrimSpace(title)
}
