package identify

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/lepinkainen/doubanmeta/internal/config"
	"github.com/lepinkainen/doubanmeta/internal/fileutil"
	"github.com/lepinkainen/doubanmeta/internal/metadata"
	"github.com/lepinkainen/doubanmeta/internal/obsidian"
)

const coverEmbedWidth = 250

// writeBookToMarkdown renders a book record as a markdown note with YAML
// frontmatter. fetch downloads the cover; pass nil to skip covers.
func writeBookToMarkdown(book *metadata.Book, directory string, fetch fileutil.FetchFunc) error {
	displayTitle := book.DisplayTitle(config.IncludeSubtitle)
	filePath := fileutil.GetMarkdownFilePath(displayTitle, directory)

	fm := obsidian.NewFrontmatter()

	fm.Set("title", book.Title)
	fm.Set("type", "book")
	fm.Set("douban_id", book.SubjectID)

	if book.Subtitle != "" {
		fm.Set("subtitle", book.Subtitle)
	}
	if len(book.Authors) > 0 {
		fm.Set("authors", book.Authors)
	}
	if len(book.Translators) > 0 {
		fm.Set("translators", book.Translators)
	}
	if book.Publisher != "" {
		fm.Set("publisher", book.Publisher)
	}
	if book.Producer != "" {
		fm.Set("producer", book.Producer)
	}
	if book.Series != "" {
		fm.Set("series", book.Series)
	}
	if year := book.Year(); year > 0 {
		fm.Set("year", year)
		fm.Set("pubdate", book.PubDate.Format("2006-01-02"))
	}
	if book.Pages > 0 {
		fm.Set("pages", book.Pages)
	}
	if book.Price != "" {
		fm.Set("price", book.Price)
	}
	if book.Rating > 0 {
		fm.Set("rating", book.Rating)
	}
	if book.ISBN != "" {
		fm.Set("isbn", book.ISBN)
	}

	tc := obsidian.NewTagSet()
	tc.Add("douban/book")
	tc.AddAll(book.Tags)
	tc.AddIf(book.Rating > 0, fmt.Sprintf("rating/%.0f", book.Rating))
	if year := book.Year(); year > 0 {
		decade := (year / 10) * 10
		tc.AddFormat("year/%ds", decade)
	}
	fm.Set("tags", tc.GetSorted())

	var body strings.Builder

	if book.HasCover() && fetch != nil {
		result, err := fileutil.DownloadCover(fileutil.CoverDownloadOptions{
			URL:          book.CoverURL,
			OutputDir:    directory,
			Filename:     fileutil.BuildCoverFilename(displayTitle),
			UpdateCovers: config.UpdateCovers,
			Fetch:        fetch,
		})
		if err != nil {
			slog.Warn("Failed to download cover", "title", book.Title, "error", err)
			// Fall back to the remote URL
			fm.Set("cover", book.CoverURL)
			body.WriteString(fmt.Sprintf("![](%s)\n\n", book.CoverURL))
		} else if result != nil {
			fm.Set("cover", result.RelativePath)
			body.WriteString(fmt.Sprintf("![[%s|%d]]\n\n", result.Filename, coverEmbedWidth))
		}
	} else if book.HasCover() {
		fm.Set("cover", book.CoverURL)
	}

	if book.Description != "" {
		body.WriteString("## Description\n\n")
		body.WriteString(book.Description)
		body.WriteString("\n\n")
	}

	body.WriteString(fmt.Sprintf("[View on Douban](https://book.douban.com/subject/%s/)\n", book.SubjectID))

	note := &obsidian.Note{
		Frontmatter: fm,
		Body:        strings.TrimSpace(body.String()) + "\n",
	}

	markdown, err := note.Build()
	if err != nil {
		return fmt.Errorf("failed to build markdown: %w", err)
	}

	written, err := fileutil.WriteFileWithOverwrite(filePath, markdown, 0644, config.OverwriteFiles)
	if err != nil {
		return err
	}
	if !written {
		slog.Info("Note already exists, skipping", "path", filePath)
		return nil
	}

	slog.Info("Wrote book note", "path", filePath)
	return nil
}
