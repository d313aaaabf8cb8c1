package fileutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FetchFunc downloads the image at url and writes it to destPath.
// The Douban client supplies this so cover fetches go through the same
// throttle handling and resizing as everything else.
type FetchFunc func(url, destPath string) error

// CoverDownloadOptions holds options for downloading cover images.
type CoverDownloadOptions struct {
	// URL is the source URL of the cover image
	URL string
	// OutputDir is the directory where the note lives; covers go into
	// its attachments subdirectory
	OutputDir string
	// Filename is the name of the cover file (e.g., "Title - cover.jpg")
	Filename string
	// UpdateCovers forces re-downloading even if the cover exists
	UpdateCovers bool
	// Fetch performs the actual download
	Fetch FetchFunc
}

// CoverDownloadResult holds the result of a cover download operation.
type CoverDownloadResult struct {
	// Downloaded indicates if a new file was downloaded
	Downloaded bool
	// LocalPath is the full path to the downloaded cover
	LocalPath string
	// RelativePath is the path relative to the note (e.g., "attachments/Title - cover.jpg")
	RelativePath string
	// Filename is just the filename
	Filename string
}

// DownloadCover downloads a cover image into the attachments directory.
// It skips downloading if the file already exists and UpdateCovers is false.
func DownloadCover(opts CoverDownloadOptions) (*CoverDownloadResult, error) {
	if opts.URL == "" {
		return nil, nil
	}
	if opts.Fetch == nil {
		return nil, fmt.Errorf("no fetch function provided")
	}

	attachmentsDir := filepath.Join(opts.OutputDir, "attachments")
	if err := os.MkdirAll(attachmentsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create attachments directory: %w", err)
	}

	localPath := filepath.Join(attachmentsDir, opts.Filename)
	result := &CoverDownloadResult{
		LocalPath:    localPath,
		RelativePath: filepath.Join("attachments", opts.Filename),
		Filename:     opts.Filename,
	}

	if FileExists(localPath) && !opts.UpdateCovers {
		slog.Debug("Cover already exists, skipping download", "path", localPath)
		return result, nil
	}

	if err := opts.Fetch(opts.URL, localPath); err != nil {
		return nil, fmt.Errorf("failed to download cover: %w", err)
	}

	slog.Info("Downloaded cover", "path", localPath)
	result.Downloaded = true
	return result, nil
}

// BuildCoverFilename creates a standard cover filename from a title.
// Returns: "Title - cover.jpg"
func BuildCoverFilename(title string) string {
	return SanitizeFilename(title) + " - cover.jpg"
}
