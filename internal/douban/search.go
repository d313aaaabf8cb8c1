package douban

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
)

// The search endpoint hands back HTML snippets, one per result. Each snippet
// carries exactly one anchor with the detail link and the display title.
var (
	resultAnchorRe = regexp.MustCompile(`<a[^>]+href="([^"]+)"[^>]+title="([^"]*)"`)
	subjectIDRe    = regexp.MustCompile(`subject/(\d+)`)
)

// Search queries the Douban search endpoint and returns candidate books
// in relevance order. Entries without a title or a subject ID are dropped.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	requestURL := c.searchURL(query)
	slog.Debug("Searching Douban", "query", query, "url", requestURL)

	var resp searchResponse
	if err := c.getJSON(ctx, requestURL, &resp); err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		result, ok := parseSearchItem(item)
		if !ok {
			continue
		}
		result.Relevance = len(results)
		results = append(results, result)
	}

	slog.Debug("Search complete", "query", query, "candidates", len(results), "total", resp.Total)
	return results, nil
}

// parseSearchItem extracts the candidate from one search-result snippet.
func parseSearchItem(item string) (SearchResult, bool) {
	m := resultAnchorRe.FindStringSubmatch(item)
	if m == nil {
		return SearchResult{}, false
	}

	href, title := m[1], m[2]
	if title == "" {
		// A result with no title is useless for matching
		return SearchResult{}, false
	}

	detailURL := resolveDetailURL(href)
	id := subjectIDRe.FindStringSubmatch(detailURL)
	if id == nil {
		return SearchResult{}, false
	}

	return SearchResult{
		SubjectID: id[1],
		Title:     title,
		DetailURL: detailURL,
	}, true
}

// resolveDetailURL unwraps Douban's link2 redirect URLs, which carry the
// real destination percent-encoded in a "url" query parameter.
func resolveDetailURL(href string) string {
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := parsed.Query().Get("url"); target != "" {
		return target
	}
	return href
}
