// Package cover implements the cover command: fetch a book's cover image
// by ISBN, Douban ID, title or from an existing note.
package cover

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/viper"

	"github.com/lepinkainen/doubanmeta/internal/config"
	"github.com/lepinkainen/doubanmeta/internal/douban"
	"github.com/lepinkainen/doubanmeta/internal/fileutil"
	"github.com/lepinkainen/doubanmeta/internal/obsidian"
)

// Params holds all the parameters for the cover command
type Params struct {
	ISBN      string
	DoubanID  string
	Title     string
	Authors   []string
	NotePath  string
	OutputDir string
	MaxWidth  int
}

// Swapped out in tests
var newCoverClient = func() *douban.Client {
	return douban.NewClient(
		douban.WithUserAgent(viper.GetString("douban.useragent")),
		douban.WithBrowserFallback(viper.GetBool("douban.browser_fallback")),
	)
}

// RunWithParams resolves and downloads a cover image.
func RunWithParams(params Params) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	req, name, err := buildRequest(params)
	if err != nil {
		return err
	}

	destPath := filepath.Join(params.OutputDir, fileutil.BuildCoverFilename(name))
	if fileutil.FileExists(destPath) && !config.UpdateCovers {
		slog.Info("Cover already exists, skipping", "path", destPath)
		return nil
	}

	client := newCoverClient()

	coverURL, err := client.FetchCover(ctx, req, destPath, params.MaxWidth)
	if err != nil {
		if errors.Is(err, douban.ErrNoCover) {
			return fmt.Errorf("no cover available for %q", name)
		}
		return err
	}

	slog.Info("Cover downloaded", "path", destPath, "url", coverURL)
	return nil
}

// buildRequest assembles the lookup request from flags, reading identifiers
// out of the note's frontmatter when a note path is given. Flags beat note
// values so a stale note can be corrected from the command line.
func buildRequest(params Params) (douban.IdentifyRequest, string, error) {
	req := douban.IdentifyRequest{
		Title:     params.Title,
		Authors:   params.Authors,
		ISBN:      params.ISBN,
		SubjectID: params.DoubanID,
	}

	if params.NotePath != "" {
		content, err := os.ReadFile(params.NotePath)
		if err != nil {
			return req, "", fmt.Errorf("failed to read note: %w", err)
		}
		note, err := obsidian.ParseMarkdown(content)
		if err != nil {
			return req, "", fmt.Errorf("failed to parse note: %w", err)
		}

		fm := note.Frontmatter
		if req.SubjectID == "" {
			req.SubjectID = fm.GetString("douban_id")
		}
		if req.ISBN == "" {
			req.ISBN = fm.GetString("isbn")
		}
		if req.Title == "" {
			req.Title = fm.GetString("title")
		}
		if len(req.Authors) == 0 {
			req.Authors = fm.GetStringArray("authors")
		}
	}

	name := req.Title
	if name == "" && params.NotePath != "" {
		name = fileutil.SanitizeFilename(filepath.Base(params.NotePath))
	}
	if name == "" {
		name = req.ISBN
	}
	if name == "" {
		name = req.SubjectID
	}
	if name == "" {
		return req, "", fmt.Errorf("nothing to look up: provide --isbn, --douban-id, --title or --note")
	}

	return req, name, nil
}
