package transcription

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/accrandomash-cloud/Tiktokkk/internal/errs"
	"github.com/accrandomash-cloud/Tiktokkk/internal/execx"
)

const whisperFixture = `{
  "text": " Hello world, again.",
  "language": "en",
  "segments": [
    {
      "id": 0,
      "start": 0.0,
      "end": 1.8,
      "text": " Hello world,",
      "words": [
        {"word": " Hello", "start": 0.0, "end": 0.6},
        {"word": " world,", "start": 0.6, "end": 1.8}
      ]
    },
    {
      "id": 1,
      "start": 1.8,
      "end": 2.5,
      "text": " again.",
      "words": [
        {"word": " again.", "start": 1.8, "end": 2.5}
      ]
    }
  ]
}`

// fakeRunner simulates the whisper subprocess by writing a fixture file.
type fakeRunner struct {
	json string
	err  error
	args []string
}

func (f *fakeRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (execx.Result, error) {
	f.args = args
	if f.err != nil {
		return execx.Result{ExitCode: 1}, f.err
	}
	// Find --output_dir and drop the fixture where the adapter will look.
	var outDir string
	for i, a := range args {
		if a == "--output_dir" && i+1 < len(args) {
			outDir = args[i+1]
		}
	}
	audio := args[2] // python -m whisper <audio>
	base := filepath.Base(audio)
	base = base[:len(base)-len(filepath.Ext(base))]
	if err := os.WriteFile(filepath.Join(outDir, base+".json"), []byte(f.json), 0644); err != nil {
		return execx.Result{}, err
	}
	return execx.Result{}, nil
}

func TestTranscribeParsesWords(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{json: whisperFixture}
	wt := NewWhisperTranscriber("base", runner)

	transcript, err := wt.Transcribe(context.Background(), filepath.Join(dir, "narration.mp3"), dir)
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	if got := transcript.WordCount(); got != 3 {
		t.Errorf("WordCount() = %d, want 3", got)
	}
	if got := transcript.Segments[0].Words[1].Text; got != "world," {
		t.Errorf("second word = %q, want %q", got, "world,")
	}
	if transcript.Duration != 2.5 {
		t.Errorf("Duration = %v, want 2.5", transcript.Duration)
	}

	// Word timestamps must be requested from the subprocess.
	found := false
	for _, a := range runner.args {
		if a == "--word_timestamps" {
			found = true
		}
	}
	if !found {
		t.Errorf("whisper args %v missing --word_timestamps", runner.args)
	}
}

func TestTranscribeEmptyResultIsValid(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{json: `{"text": "", "language": "en", "segments": []}`}
	wt := NewWhisperTranscriber("base", runner)

	transcript, err := wt.Transcribe(context.Background(), filepath.Join(dir, "silence.mp3"), dir)
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if got := transcript.WordCount(); got != 0 {
		t.Errorf("WordCount() = %d, want 0", got)
	}
}

func TestTranscribeSubprocessFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("decode failed")}
	wt := NewWhisperTranscriber("base", runner)

	_, err := wt.Transcribe(context.Background(), "missing.mp3", t.TempDir())
	if !errors.Is(err, errs.ErrTranscription) {
		t.Errorf("error = %v, want ErrTranscription", err)
	}
}

func TestTranscribeBadJSON(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{json: "{not json"}
	wt := NewWhisperTranscriber("base", runner)

	_, err := wt.Transcribe(context.Background(), filepath.Join(dir, "a.mp3"), dir)
	if !errors.Is(err, errs.ErrTranscription) {
		t.Errorf("error = %v, want ErrTranscription", err)
	}
}
