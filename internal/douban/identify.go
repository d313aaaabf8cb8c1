package douban

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	douerrors "github.com/lepinkainen/doubanmeta/internal/errors"
	"github.com/lepinkainen/doubanmeta/internal/metadata"
)

// defaultMaxResults caps how many detail pages one identify run fetches.
// Each page is a separate request against an unfriendly rate limit, so the
// cap stays small.
const defaultMaxResults = 5

// Identify resolves a request into metadata records, ordered by search
// relevance. A known subject ID or a cached ISBN mapping skips the search
// entirely. Detail pages are fetched sequentially; a single bad candidate
// is logged and skipped rather than failing the whole lookup.
func (c *Client) Identify(ctx context.Context, req IdentifyRequest) ([]*metadata.Book, error) {
	if subjectID := c.knownSubjectID(req); subjectID != "" {
		book, err := c.bookBySubjectID(ctx, subjectID, 0)
		if err != nil {
			return nil, err
		}
		return []*metadata.Book{book}, nil
	}

	results, err := c.searchCandidates(ctx, req)
	if err != nil {
		return nil, err
	}

	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	books := make([]*metadata.Book, 0, len(results))
	for _, result := range results {
		if err := ctx.Err(); err != nil {
			return books, err
		}

		book, err := c.bookBySubjectID(ctx, result.SubjectID, result.Relevance)
		if err != nil {
			if douerrors.IsThrottled(err) {
				// Once throttled, further requests only dig the hole deeper
				return books, err
			}
			slog.Warn("Skipping candidate", "subject_id", result.SubjectID, "title", result.Title, "error", err)
			continue
		}
		books = append(books, book)
	}

	if len(books) == 0 {
		query, _ := BuildQuery(req)
		return nil, douerrors.NewNotFoundError(query)
	}
	return books, nil
}

// knownSubjectID returns a subject ID when the request already identifies
// one, either directly or through the ISBN mapping cache.
func (c *Client) knownSubjectID(req IdentifyRequest) string {
	if req.SubjectID != "" {
		return req.SubjectID
	}
	if isbn := metadata.ValidateISBN(req.ISBN); isbn != "" {
		if subjectID, ok := SubjectIDForISBN(isbn); ok {
			slog.Debug("ISBN resolved from mapping cache", "isbn", isbn, "subject_id", subjectID)
			return subjectID
		}
	}
	return ""
}

// searchCandidates runs the search, falling back to a title and author
// query when an identifier search comes up empty. Stale or mistyped ISBNs
// shouldn't block finding the book by name.
func (c *Client) searchCandidates(ctx context.Context, req IdentifyRequest) ([]SearchResult, error) {
	query, err := BuildQuery(req)
	if err != nil {
		return nil, err
	}

	results, _, err := c.CachedSearch(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(results) > 0 {
		return results, nil
	}

	if metadata.ValidateISBN(req.ISBN) != "" && req.Title != "" {
		fallback := IdentifyRequest{Title: req.Title, Authors: req.Authors}
		fallbackQuery, ferr := BuildQuery(fallback)
		if ferr != nil || fallbackQuery == query {
			return results, nil
		}
		slog.Info("No results for identifier, retrying with title search", "query", fallbackQuery)
		results, _, err = c.CachedSearch(ctx, fallbackQuery)
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// bookBySubjectID fetches one book through the cache and persists its
// identifier mappings.
func (c *Client) bookBySubjectID(ctx context.Context, subjectID string, relevance int) (*metadata.Book, error) {
	book, fromCache, err := c.CachedFetchBook(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, fmt.Errorf("no metadata for subject %s", subjectID)
	}
	book.Relevance = relevance
	if !fromCache {
		recordMappings(book)
	}
	return book, nil
}

// IsNoResult reports whether an identify error means "nothing matched"
// rather than a transport or parse failure.
func IsNoResult(err error) bool {
	return douerrors.IsNotFound(err) || errors.Is(err, ErrEmptyQuery)
}
