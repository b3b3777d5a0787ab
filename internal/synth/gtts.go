// Package synth wraps the text-to-speech engine that turns the story text
// into narration audio.
package synth

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/accrandomash-cloud/Tiktokkk/internal/errs"
	"github.com/accrandomash-cloud/Tiktokkk/internal/execx"
)

const synthTimeout = 2 * time.Minute

// Synthesizer produces an audio file from narration text
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outputPath string) error
}

// GTTSSynthesizer shells out to gtts-cli (pip install gTTS)
type GTTSSynthesizer struct {
	runner execx.Runner
}

// NewGTTSSynthesizer creates a synthesizer backed by gtts-cli
func NewGTTSSynthesizer(runner execx.Runner) *GTTSSynthesizer {
	return &GTTSSynthesizer{runner: runner}
}

// Synthesize writes English narration for text to outputPath
func (s *GTTSSynthesizer) Synthesize(ctx context.Context, text, outputPath string) error {
	log.Printf("Generating voice narration (%d chars)", len(text))

	_, err := s.runner.Run(ctx, synthTimeout, "gtts-cli",
		text,
		"-l", "en",
		"-o", outputPath,
	)
	if err != nil {
		return errs.Wrap(errs.ErrSynthesis, "gtts-cli", err)
	}

	// gtts-cli can exit zero without producing output on some failures
	if info, statErr := os.Stat(outputPath); statErr != nil || info.Size() == 0 {
		return errs.Wrap(errs.ErrSynthesis, "narration audio", fmt.Errorf("no audio written to %s", outputPath))
	}

	return nil
}
