package fetch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/accrandomash-cloud/Tiktokkk/internal/errs"
	"github.com/accrandomash-cloud/Tiktokkk/internal/execx"
)

type fakeRunner struct {
	err      error
	args     []string
	download bool
}

func (f *fakeRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (execx.Result, error) {
	f.args = args
	if f.err != nil {
		return execx.Result{ExitCode: 1, Stderr: "ERROR: unavailable"}, f.err
	}
	if f.download {
		// yt-dlp resolves %(ext)s to the container it picked.
		for i, a := range args {
			if a == "-o" && i+1 < len(args) {
				out := strings.Replace(args[i+1], "%(ext)s", "mp4", 1)
				if err := os.WriteFile(out, []byte("video"), 0644); err != nil {
					return execx.Result{}, err
				}
			}
		}
	}
	return execx.Result{}, nil
}

func TestFetchFormatCeiling(t *testing.T) {
	runner := &fakeRunner{download: true}
	f := NewYTDLPFetcher(runner)

	dir := t.TempDir()
	path, err := f.Fetch(context.Background(), "https://example.com/v", dir)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("media path %q not inside dest dir %q", path, dir)
	}

	var format string
	for i, a := range runner.args {
		if a == "-f" && i+1 < len(runner.args) {
			format = runner.args[i+1]
		}
	}
	if !strings.Contains(format, "height=720") || !strings.Contains(format, "height<720") {
		t.Errorf("format selector %q must prefer 720p then fall back below it", format)
	}
	if strings.Contains(format, "height>") || strings.Contains(format, "bestvideo") {
		t.Errorf("format selector %q must never go above the ceiling", format)
	}
}

func TestFetchToolFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("exit status 1")}
	f := NewYTDLPFetcher(runner)

	_, err := f.Fetch(context.Background(), "https://bad", t.TempDir())
	if !errors.Is(err, errs.ErrFetch) {
		t.Errorf("error = %v, want ErrFetch", err)
	}
}

func TestFetchMissingOutput(t *testing.T) {
	// Tool exits zero but produced nothing at the expected path.
	runner := &fakeRunner{download: false}
	f := NewYTDLPFetcher(runner)

	_, err := f.Fetch(context.Background(), "https://example.com/v", t.TempDir())
	if !errors.Is(err, errs.ErrFetch) {
		t.Errorf("error = %v, want ErrFetch", err)
	}
	if !strings.Contains(err.Error(), "no suitable video stream") {
		t.Errorf("error = %q, want stream diagnosis", err)
	}
}
