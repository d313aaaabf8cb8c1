package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"colon", "三体: 地球往事", "三体 - 地球往事"},
		{"fullwidth colon", "三体：地球往事", "三体 - 地球往事"},
		{"slashes", "Fate/Zero", "Fate-Zero"},
		{"backslash", `a\b`, "a-b"},
		{"clean", "平凡的世界", "平凡的世界"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.input))
		})
	}
}

func TestGetMarkdownFilePath(t *testing.T) {
	path := GetMarkdownFilePath("三体: 地球往事", "/notes")
	assert.Equal(t, filepath.Join("/notes", "三体 - 地球往事.md"), path)
}

func TestWriteFileWithOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "file.txt")

	written, err := WriteFileWithOverwrite(path, []byte("first"), 0644, false)
	require.NoError(t, err)
	assert.True(t, written)

	// Existing file is skipped without overwrite
	written, err = WriteFileWithOverwrite(path, []byte("second"), 0644, false)
	require.NoError(t, err)
	assert.False(t, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	written, err = WriteFileWithOverwrite(path, []byte("second"), 0644, true)
	require.NoError(t, err)
	assert.True(t, written)

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestWriteJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.json")

	written, err := WriteJSONFile(map[string]string{"title": "三体"}, path, false)
	require.NoError(t, err)
	assert.True(t, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"title": "三体"`)
}

func TestDownloadCover(t *testing.T) {
	dir := t.TempDir()

	var fetchedURL string
	fetch := func(url, destPath string) error {
		fetchedURL = url
		return os.WriteFile(destPath, []byte("image-bytes"), 0644)
	}

	result, err := DownloadCover(CoverDownloadOptions{
		URL:       "https://img.example/s123.jpg",
		OutputDir: dir,
		Filename:  "三体 - cover.jpg",
		Fetch:     fetch,
	})
	require.NoError(t, err)
	assert.True(t, result.Downloaded)
	assert.Equal(t, "https://img.example/s123.jpg", fetchedURL)
	assert.Equal(t, filepath.Join("attachments", "三体 - cover.jpg"), result.RelativePath)
	assert.True(t, FileExists(result.LocalPath))

	// Second call is a no-op while the file exists
	fetchedURL = ""
	result, err = DownloadCover(CoverDownloadOptions{
		URL:       "https://img.example/s123.jpg",
		OutputDir: dir,
		Filename:  "三体 - cover.jpg",
		Fetch:     fetch,
	})
	require.NoError(t, err)
	assert.False(t, result.Downloaded)
	assert.Empty(t, fetchedURL)
}

func TestDownloadCoverNoURL(t *testing.T) {
	result, err := DownloadCover(CoverDownloadOptions{})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestDownloadCoverFetchError(t *testing.T) {
	_, err := DownloadCover(CoverDownloadOptions{
		URL:       "https://img.example/s123.jpg",
		OutputDir: t.TempDir(),
		Filename:  "x.jpg",
		Fetch:     func(url, destPath string) error { return errors.New("boom") },
	})
	require.Error(t, err)

	assert.Contains(t, err.Error(), "failed to download cover")
}

func TestBuildCoverFilename(t *testing.T) {
	assert.Equal(t, "三体 - 地球往事 - cover.jpg", BuildCoverFilename("三体: 地球往事"))
}
