package douban

// SearchResult is one entry from the Douban search endpoint: a candidate
// book with its catalog identity, before the detail page has been fetched.
type SearchResult struct {
	SubjectID string `json:"subject_id"`
	Title     string `json:"title"`
	DetailURL string `json:"detail_url"`
	// Relevance is the zero-based position in the search response.
	// Lower is better; Douban orders results by match quality.
	Relevance int `json:"relevance"`
}

// searchResponse is the raw JSON payload from www.douban.com/j/search.
// Each item is a fragment of HTML markup, not structured data.
type searchResponse struct {
	Items []string `json:"items"`
	Total int      `json:"total"`
	More  bool     `json:"more"`
}

// IdentifyRequest describes what is known about a book before lookup.
// Any combination of fields may be set; identifiers beat title searches.
type IdentifyRequest struct {
	Title     string
	Authors   []string
	ISBN      string
	SubjectID string
	// MaxResults caps how many detail pages are fetched. Zero means
	// the default limit.
	MaxResults int
}
