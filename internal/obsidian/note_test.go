package obsidian

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMarkdown(t *testing.T) {
	content := []byte(`---
title: 三体
douban_id: "2567698"
rating: 4.45
tags: [douban/book, sci-fi]
---

Body text here.
`)

	note, err := ParseMarkdown(content)
	require.NoError(t, err)

	assert.Equal(t, "三体", note.Frontmatter.GetString("title"))
	assert.Equal(t, "2567698", note.Frontmatter.GetString("douban_id"))
	assert.InDelta(t, 4.45, note.Frontmatter.GetFloat("rating"), 0.001)
	assert.Equal(t, []string{"douban/book", "sci-fi"}, note.Frontmatter.GetStringArray("tags"))
	assert.Equal(t, "Body text here.\n", note.Body)
}

func TestParseMarkdownNoFrontmatter(t *testing.T) {
	note, err := ParseMarkdown([]byte("Just body content"))
	require.NoError(t, err)
	assert.Empty(t, note.Frontmatter.Keys())
	assert.Equal(t, "Just body content", note.Body)
}

func TestParseMarkdownUnterminatedFrontmatter(t *testing.T) {
	note, err := ParseMarkdown([]byte("---\ntitle: x\nno closing"))
	require.NoError(t, err)
	assert.Empty(t, note.Frontmatter.Keys())
}

func TestBuildSortsKeysAndFlowsTags(t *testing.T) {
	note := &Note{Frontmatter: NewFrontmatter(), Body: "Body\n"}
	note.Frontmatter.Set("title", "三体")
	note.Frontmatter.Set("authors", []string{"刘慈欣"})
	note.Frontmatter.Set("tags", []string{"douban/book", "sci-fi"})

	out, err := note.Build()
	require.NoError(t, err)

	expected := `---
authors:
    - 刘慈欣
tags: [douban/book, sci-fi]
title: 三体
---
Body
`
	assert.Equal(t, expected, string(out))
}

func TestBuildRoundTrip(t *testing.T) {
	note := &Note{Frontmatter: NewFrontmatter(), Body: "Text\n"}
	note.Frontmatter.Set("isbn", "9787536692930")
	note.Frontmatter.Set("pages", 302)

	out, err := note.Build()
	require.NoError(t, err)

	parsed, err := ParseMarkdown(out)
	require.NoError(t, err)
	assert.Equal(t, "9787536692930", parsed.Frontmatter.GetString("isbn"))
	assert.Equal(t, 302, parsed.Frontmatter.GetInt("pages"))
	assert.Equal(t, "Text\n", parsed.Body)
}

func TestFrontmatterDelete(t *testing.T) {
	fm := NewFrontmatter()
	fm.Set("a", 1)
	fm.Set("b", 2)
	fm.Delete("a")
	assert.Equal(t, []string{"b"}, fm.Keys())
	_, ok := fm.Get("a")
	assert.False(t, ok)
}

func TestNormalizeTag(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"#科幻", "科幻"},
		{"science fiction", "science-fiction"},
		{"rock & roll", "rock-and-roll"},
		{"douban/book", "douban/book"},
		{"--weird---tag--", "weird-tag"},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeTag(tt.input), "input %q", tt.input)
	}
}

func TestTagSet(t *testing.T) {
	set := NewTagSet()
	set.Add("douban/book")
	set.Add("科幻")
	set.Add("科幻") // duplicate
	set.Add("")
	set.AddIf(true, "fiction")
	set.AddIf(false, "skipped")
	set.AddFormat("rating/%d", 4)

	assert.Equal(t, []string{"douban/book", "fiction", "rating/4", "科幻"}, set.GetSorted())
}

func TestMergeTags(t *testing.T) {
	merged := MergeTags([]string{"existing", "both"}, []string{"both", "new tag"})
	assert.Equal(t, []string{"both", "existing", "new-tag"}, merged)
}
