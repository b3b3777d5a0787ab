// Package errs defines the error taxonomy shared by the pipeline stages.
// Sentinel markers let the HTTP boundary classify failures with errors.Is
// without inspecting stage internals.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrSynthesis     = errors.New("synthesis error")
	ErrTranscription = errors.New("transcription error")
	ErrFetch         = errors.New("fetch error")
	ErrComposition   = errors.New("composition error")
)

// Wrap tags err with the given marker and stage context. The marker should
// be one of the exported sentinel errors above.
func Wrap(marker error, stage string, err error) error {
	stage = strings.TrimSpace(stage)
	if err == nil {
		if stage == "" {
			return marker
		}
		return fmt.Errorf("%w: %s", marker, stage)
	}
	if stage == "" {
		return fmt.Errorf("%w: %w", marker, err)
	}
	return fmt.Errorf("%w: %s: %w", marker, stage, err)
}

// Wrapf is Wrap with a formatted stage description.
func Wrapf(marker error, err error, format string, args ...interface{}) error {
	return Wrap(marker, fmt.Sprintf(format, args...), err)
}

// IsValidation reports whether err is a request validation failure, which
// maps to a 4xx response instead of a 5xx one.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
