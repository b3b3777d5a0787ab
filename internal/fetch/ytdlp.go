// Package fetch downloads source videos with yt-dlp.
package fetch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/accrandomash-cloud/Tiktokkk/internal/errs"
	"github.com/accrandomash-cloud/Tiktokkk/internal/execx"
)

const fetchTimeout = 10 * time.Minute

// formatSelector asks for a progressive mp4 stream at exactly 720p, else
// the best progressive mp4 below 720p. There is deliberately no fallback
// above the ceiling: if nothing fits, the download fails.
const formatSelector = "best[ext=mp4][height=720]/best[ext=mp4][height<720]"

// Fetcher downloads one source video into destDir and returns its path
type Fetcher interface {
	Fetch(ctx context.Context, url, destDir string) (string, error)
}

// YTDLPFetcher shells out to yt-dlp (pip install yt-dlp)
type YTDLPFetcher struct {
	runner execx.Runner
}

// NewYTDLPFetcher creates a fetcher backed by yt-dlp
func NewYTDLPFetcher(runner execx.Runner) *YTDLPFetcher {
	return &YTDLPFetcher{runner: runner}
}

// Fetch downloads url into destDir. destDir must already exist and be
// registered for cleanup by the caller; the downloaded file lands inside it.
func (f *YTDLPFetcher) Fetch(ctx context.Context, url, destDir string) (string, error) {
	log.Printf("Downloading source video: %s", url)

	outputTemplate := filepath.Join(destDir, "source.%(ext)s")

	_, err := f.runner.Run(ctx, fetchTimeout, "yt-dlp",
		"-f", formatSelector,
		"--no-playlist",
		"-o", outputTemplate,
		url,
	)
	if err != nil {
		return "", errs.Wrapf(errs.ErrFetch, err, "download %s", url)
	}

	mediaPath := filepath.Join(destDir, "source.mp4")
	if _, statErr := os.Stat(mediaPath); statErr != nil {
		return "", errs.Wrapf(errs.ErrFetch, fmt.Errorf("no suitable video stream found"), "download %s", url)
	}

	log.Printf("Source video downloaded: %s", mediaPath)
	return mediaPath, nil
}
