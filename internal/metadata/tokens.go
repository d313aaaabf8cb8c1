package metadata

import (
	"regexp"
	"strings"
)

var (
	bracketedRe   = regexp.MustCompile(`[([{].*?[)\]}]`)
	tokenSplitRe  = regexp.MustCompile(`[\s,;:!?.]+`)
	titleNoise    = map[string]bool{"a": true, "an": true, "the": true, "and": true, "&": true}
	authorNoiseRe = regexp.MustCompile(`(?i)\bet\s+al\.?\b`)
)

// TitleTokens splits a title into search tokens. Bracketed qualifiers like
// "(Chinese Edition)" are stripped, punctuation is treated as a separator
// and common English articles are dropped when other tokens remain. CJK
// titles pass through as-is since they contain no separators to split on.
func TitleTokens(title string) []string {
	title = bracketedRe.ReplaceAllString(title, " ")

	var tokens []string
	for _, tok := range tokenSplitRe.Split(title, -1) {
		tok = strings.Trim(tok, `"'`+"`”“")
		if tok == "" {
			continue
		}
		tokens = append(tokens, tok)
	}

	// Only drop noise words when something else would survive.
	var filtered []string
	for _, tok := range tokens {
		if !titleNoise[strings.ToLower(tok)] {
			filtered = append(filtered, tok)
		}
	}
	if len(filtered) > 0 {
		return filtered
	}
	return tokens
}

// AuthorTokens splits the first author into search tokens. Comma-reversed
// names ("Liu, Cixin") are restored to natural order and "et al" markers
// are removed.
func AuthorTokens(authors []string) []string {
	if len(authors) == 0 {
		return nil
	}
	author := authorNoiseRe.ReplaceAllString(authors[0], " ")

	if idx := strings.Index(author, ","); idx >= 0 {
		last := strings.TrimSpace(author[:idx])
		first := strings.TrimSpace(author[idx+1:])
		author = strings.TrimSpace(first + " " + last)
	}

	var tokens []string
	for _, tok := range tokenSplitRe.Split(author, -1) {
		tok = strings.Trim(tok, `"'`+"`")
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}
