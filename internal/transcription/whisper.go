package transcription

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/accrandomash-cloud/Tiktokkk/internal/errs"
	"github.com/accrandomash-cloud/Tiktokkk/internal/execx"
	"github.com/accrandomash-cloud/Tiktokkk/internal/types"
)

const transcribeTimeout = 10 * time.Minute

// Transcriber produces a word-timed transcript from an audio file
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, outputDir string) (*types.Transcript, error)
}

// WhisperTranscriber wraps Python's OpenAI Whisper for transcription
type WhisperTranscriber struct {
	modelName string
	runner    execx.Runner
	mu        sync.Mutex // one whisper process at a time; the model is heavy
}

// NewWhisperTranscriber creates a transcriber using Python Whisper.
// The model is loaded by the subprocess on each run; the fixed model name
// keeps results deterministic across jobs.
func NewWhisperTranscriber(modelName string, runner execx.Runner) *WhisperTranscriber {
	if modelName == "" {
		modelName = "base"
	}
	log.Printf("Initializing Python Whisper with model: %s", modelName)
	return &WhisperTranscriber{
		modelName: modelName,
		runner:    runner,
	}
}

// Transcribe runs whisper with word timestamps and parses its JSON output.
// outputDir must already exist and be registered for cleanup by the caller.
func (wt *WhisperTranscriber) Transcribe(ctx context.Context, audioPath, outputDir string) (*types.Transcript, error) {
	wt.mu.Lock()
	defer wt.mu.Unlock()

	log.Printf("Transcribing with Python Whisper: %s", audioPath)

	absAudioPath, err := filepath.Abs(audioPath)
	if err != nil {
		return nil, errs.Wrap(errs.ErrTranscription, "resolve audio path", err)
	}

	_, err = wt.runner.Run(ctx, transcribeTimeout, "python", "-m", "whisper",
		absAudioPath,
		"--model", wt.modelName,
		"--output_dir", outputDir,
		"--output_format", "json",
		"--language", "en",
		"--word_timestamps", "True",
		"--fp16", "False", // CPU compatibility
	)
	if err != nil {
		return nil, errs.Wrap(errs.ErrTranscription, "whisper", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonPath := filepath.Join(outputDir, baseName+".json")

	jsonData, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, errs.Wrap(errs.ErrTranscription, "read whisper output", err)
	}

	transcript, err := parseWhisperJSON(jsonData)
	if err != nil {
		return nil, errs.Wrap(errs.ErrTranscription, "parse whisper output", err)
	}

	log.Printf("Transcription completed: %d segments, %d words, %.2fs duration",
		len(transcript.Segments), transcript.WordCount(), transcript.Duration)
	return transcript, nil
}

// parseWhisperJSON converts Whisper's JSON document into a Transcript.
// An empty segment list is valid: silence yields zero captions, not an error.
func parseWhisperJSON(data []byte) (*types.Transcript, error) {
	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("invalid whisper JSON: %v", err)
	}

	segments := make([]types.Segment, len(out.Segments))
	for i, seg := range out.Segments {
		words := make([]types.Word, len(seg.Words))
		for j, w := range seg.Words {
			words[j] = types.Word{
				Text:  strings.TrimSpace(w.Word),
				Start: w.Start,
				End:   w.End,
			}
		}
		segments[i] = types.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
			Words: words,
		}
	}

	var duration float64
	if len(segments) > 0 {
		duration = segments[len(segments)-1].End
	}

	return &types.Transcript{
		Text:     strings.TrimSpace(out.Text),
		Language: out.Language,
		Duration: duration,
		Segments: segments,
	}, nil
}

// whisperOutput matches Python Whisper's JSON output format
type whisperOutput struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Segments []whisperSegment `json:"segments"`
}

type whisperSegment struct {
	ID    int           `json:"id"`
	Start float64       `json:"start"`
	End   float64       `json:"end"`
	Text  string        `json:"text"`
	Words []whisperWord `json:"words"`
}

type whisperWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}
