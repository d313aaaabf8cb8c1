package douban

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/lepinkainen/doubanmeta/internal/metadata"
)

// ResolveCoverURL finds the cover image URL for a request. The mapping
// caches answer first; a full identify run is the fallback for books never
// seen before. ErrNoCover is returned when the book exists but Douban only
// has the placeholder image for it.
func (c *Client) ResolveCoverURL(ctx context.Context, req IdentifyRequest) (string, error) {
	if subjectID := c.knownSubjectID(req); subjectID != "" {
		if coverURL, ok := CoverURLForSubject(subjectID); ok {
			slog.Debug("Cover URL from mapping cache", "subject_id", subjectID, "url", coverURL)
			return coverURL, nil
		}
	}

	books, err := c.Identify(ctx, req)
	if err != nil {
		return "", err
	}

	for _, book := range books {
		if book.HasCover() {
			return book.CoverURL, nil
		}
	}
	return "", ErrNoCover
}

// DownloadCover fetches a cover image, scales it down when wider than
// maxWidth, and writes it to destPath. A zero maxWidth applies the default.
func (c *Client) DownloadCover(ctx context.Context, coverURL, destPath string, maxWidth int) error {
	if maxWidth <= 0 {
		maxWidth = defaultMaxCoverWidth
	}

	data, err := c.get(ctx, coverURL)
	if err != nil {
		return fmt.Errorf("failed to download cover: %w", err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode cover image: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed to create cover directory: %w", err)
	}

	if img.Bounds().Dx() > maxWidth {
		slog.Debug("Resizing cover", "url", coverURL, "width", img.Bounds().Dx(), "max_width", maxWidth)
		resized := imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
		return saveImage(resized, destPath)
	}

	// Small enough; keep the original bytes to avoid a recompression pass
	if err := os.WriteFile(destPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cover: %w", err)
	}
	slog.Debug("Cover saved", "path", destPath, "format", format)
	return nil
}

// FetchCover resolves and downloads the cover for a request in one step.
// Returns the cover URL that was used.
func (c *Client) FetchCover(ctx context.Context, req IdentifyRequest, destPath string, maxWidth int) (string, error) {
	coverURL, err := c.ResolveCoverURL(ctx, req)
	if err != nil {
		return "", err
	}
	if err := c.DownloadCover(ctx, coverURL, destPath, maxWidth); err != nil {
		return coverURL, err
	}
	return coverURL, nil
}

// CoverForBook downloads the cover already attached to a metadata record.
func (c *Client) CoverForBook(ctx context.Context, book *metadata.Book, destPath string, maxWidth int) error {
	if !book.HasCover() {
		return ErrNoCover
	}
	return c.DownloadCover(ctx, book.CoverURL, destPath, maxWidth)
}

func saveImage(img image.Image, destPath string) error {
	if err := imaging.Save(img, destPath); err != nil {
		return fmt.Errorf("failed to save cover: %w", err)
	}
	return nil
}
