package obsidian

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	hyphenRunRe  = regexp.MustCompile(`-+`)
)

// NormalizeTag normalizes a tag for use in note frontmatter: leading #
// stripped, whitespace converted to hyphens, & replaced with "and",
// repeated hyphens collapsed. Case and / hierarchy are preserved.
// Returns empty string when nothing survives.
func NormalizeTag(tag string) string {
	tag = strings.TrimSpace(tag)
	tag = strings.TrimPrefix(tag, "#")
	tag = strings.TrimSpace(tag)

	if tag == "" {
		return ""
	}

	tag = strings.ReplaceAll(tag, "&", "and")
	tag = strings.ReplaceAll(tag, "#", "")
	tag = whitespaceRe.ReplaceAllString(tag, "-")
	tag = hyphenRunRe.ReplaceAllString(tag, "-")
	tag = strings.Trim(tag, "-")

	return tag
}

// TagSet provides tag collection with automatic normalization and deduplication.
type TagSet struct {
	tags map[string]bool
}

// NewTagSet creates a new TagSet for collecting tags.
func NewTagSet() *TagSet {
	return &TagSet{tags: make(map[string]bool)}
}

// Add adds a tag to the set after normalization.
// Empty tags and duplicates are automatically filtered.
func (ts *TagSet) Add(tag string) {
	if normalized := NormalizeTag(tag); normalized != "" {
		ts.tags[normalized] = true
	}
}

// AddAll adds every tag in the slice.
func (ts *TagSet) AddAll(tags []string) {
	for _, tag := range tags {
		ts.Add(tag)
	}
}

// AddIf conditionally adds a tag if the condition is true.
func (ts *TagSet) AddIf(condition bool, tag string) {
	if condition {
		ts.Add(tag)
	}
}

// AddFormat adds a formatted tag (like fmt.Sprintf).
func (ts *TagSet) AddFormat(format string, args ...any) {
	ts.Add(fmt.Sprintf(format, args...))
}

// GetSorted returns all tags as a sorted slice.
func (ts *TagSet) GetSorted() []string {
	result := make([]string, 0, len(ts.tags))
	for tag := range ts.tags {
		result = append(result, tag)
	}
	sort.Strings(result)
	return result
}

// MergeTags combines two tag slices into a sorted, deduplicated,
// normalized result. Used when refreshing a note that already carries
// user-added tags.
func MergeTags(existing, added []string) []string {
	set := NewTagSet()
	set.AddAll(existing)
	set.AddAll(added)
	return set.GetSorted()
}

// TagsFromAny safely extracts a string slice from a polymorphic YAML value.
// YAML unmarshaling can produce []interface{} or []string, this handles both.
func TagsFromAny(val any) []string {
	switch v := val.(type) {
	case []string:
		result := make([]string, 0, len(v))
		for _, s := range v {
			if s != "" {
				result = append(result, s)
			}
		}
		return result
	case []any:
		result := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok && str != "" {
				result = append(result, str)
			}
		}
		return result
	}
	return []string{}
}
