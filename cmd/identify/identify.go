// Package identify implements the identify command: resolve a title,
// author, ISBN or Douban ID into a book note.
package identify

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/viper"

	"github.com/lepinkainen/doubanmeta/internal/douban"
	douerrors "github.com/lepinkainen/doubanmeta/internal/errors"
	"github.com/lepinkainen/doubanmeta/internal/metadata"
	"github.com/lepinkainen/doubanmeta/internal/tui"
)

// Params holds all the parameters for the identify command
type Params struct {
	Title         string
	Authors       []string
	ISBN          string
	DoubanID      string
	MaxResults    int
	OutputDir     string
	WriteJSON     bool
	JSONOutput    string
	Interactive   bool
	DownloadCover bool
}

// Swapped out in tests
var (
	selectCandidate = tui.Select
	newLookupClient = func() *douban.Client { return NewClient() }
)

// RunWithParams looks up a book and writes the selected candidate to the
// configured outputs.
func RunWithParams(params Params) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := newLookupClient()

	books, err := client.Identify(ctx, douban.IdentifyRequest{
		Title:      params.Title,
		Authors:    params.Authors,
		ISBN:       params.ISBN,
		SubjectID:  params.DoubanID,
		MaxResults: params.MaxResults,
	})
	if err != nil {
		if douban.IsNoResult(err) {
			slog.Warn("No books found", "title", params.Title, "isbn", params.ISBN)
		}
		return err
	}

	book, err := pickCandidate(params, books)
	if err != nil {
		return err
	}
	if book == nil {
		slog.Info("Selection skipped, nothing written")
		return nil
	}

	slog.Info("Identified book",
		"title", book.Title,
		"douban_id", book.SubjectID,
		"isbn", book.ISBN)

	outputDir := filepath.Join(viper.GetString("MarkdownOutputDir"), params.OutputDir)

	fetch := coverFetcher(ctx, client)
	if !params.DownloadCover {
		fetch = nil
	}
	if err := writeBookToMarkdown(book, outputDir, fetch); err != nil {
		return fmt.Errorf("failed to write markdown: %w", err)
	}

	if params.WriteJSON {
		jsonPath := params.JSONOutput
		if jsonPath == "" {
			jsonPath = filepath.Join(viper.GetString("JSONOutputDir"), "douban.json")
		}
		if err := writeBookToJSON(book, jsonPath); err != nil {
			return fmt.Errorf("failed to write JSON: %w", err)
		}
	}

	if viper.GetBool("datasette.enabled") {
		if err := storeBook(book); err != nil {
			// Storage is best-effort, the note already exists
			slog.Warn("Failed to store book record", "error", err)
		}
	}

	return nil
}

// NewClient builds a Douban client from the active configuration.
func NewClient(opts ...douban.Option) *douban.Client {
	base := []douban.Option{
		douban.WithUserAgent(viper.GetString("douban.useragent")),
		douban.WithBrowserFallback(viper.GetBool("douban.browser_fallback")),
	}
	return douban.NewClient(append(base, opts...)...)
}

// pickCandidate chooses one book from the result list. Non-interactive
// mode takes the most relevant result; interactive mode asks the user.
// A nil book with nil error means the user skipped.
func pickCandidate(params Params, books []*metadata.Book) (*metadata.Book, error) {
	if len(books) == 0 {
		return nil, nil
	}
	if !params.Interactive {
		return books[0], nil
	}

	searchTitle := params.Title
	if searchTitle == "" {
		searchTitle = books[0].Title
	}

	result, err := selectCandidate(searchTitle, books)
	if err != nil {
		return nil, fmt.Errorf("selection failed: %w", err)
	}

	switch result.Action {
	case tui.ActionSelected:
		return result.Selection, nil
	case tui.ActionStopped:
		return nil, douerrors.NewStopProcessingError("selection aborted by user")
	default:
		return nil, nil
	}
}

// coverFetcher adapts the client's cover download for the note writer.
func coverFetcher(ctx context.Context, client *douban.Client) func(url, destPath string) error {
	return func(url, destPath string) error {
		return client.DownloadCover(ctx, url, destPath, 0)
	}
}
