package douban

import (
	"net/url"
	"strings"

	"github.com/lepinkainen/doubanmeta/internal/metadata"
)

// BuildQuery constructs the search query string for a request.
// An ISBN wins outright when present since it identifies one edition;
// otherwise the query is built from title and author tokens.
// Returns ErrEmptyQuery when nothing usable is available.
func BuildQuery(req IdentifyRequest) (string, error) {
	if isbn := metadata.ValidateISBN(req.ISBN); isbn != "" {
		return isbn, nil
	}

	tokens := queryTokens(req)
	if len(tokens) == 0 {
		return "", ErrEmptyQuery
	}
	return strings.Join(tokens, " "), nil
}

// queryTokens returns the title and author tokens for a free-text search.
func queryTokens(req IdentifyRequest) []string {
	var tokens []string
	tokens = append(tokens, metadata.TitleTokens(req.Title)...)
	tokens = append(tokens, metadata.AuthorTokens(req.Authors)...)
	return tokens
}

// searchURL builds the full search endpoint URL for a query.
func (c *Client) searchURL(query string) string {
	params := url.Values{}
	params.Set("t", "book")
	params.Set("p", "0")
	params.Set("q", query)
	return c.searchBaseURL + "?" + params.Encode()
}
