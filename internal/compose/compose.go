// Package compose invokes ffmpeg to assemble the final video: lossless
// concatenation of the source clips and the caption-burning mux of video
// plus narration. The argument shapes here are a fixed contract; changing
// them is a compatibility break with the deployed ffmpeg invocations.
package compose

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/accrandomash-cloud/Tiktokkk/internal/errs"
	"github.com/accrandomash-cloud/Tiktokkk/internal/execx"
)

const ffmpegTimeout = 10 * time.Minute

// Fixed encode presets for the mux step
const (
	videoCodec  = "libx264"
	videoPreset = "fast"
	videoCRF    = "23"
	audioCodec  = "aac"
)

// Composer drives the external encoder
type Composer struct {
	runner execx.Runner
}

// New creates a composer backed by the given command runner
func New(runner execx.Runner) *Composer {
	return &Composer{runner: runner}
}

// concatArgs builds the concat-demux stream-copy invocation
func concatArgs(listPath, outputPath string) []string {
	return []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outputPath,
	}
}

// muxArgs builds the dual-input mux: keep video from input 0, take audio
// from input 1, burn the caption filter graph, re-encode with the fixed
// presets, truncate to the shorter stream.
func muxArgs(videoPath, audioPath, filterGraph, outputPath string) []string {
	return []string{
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-vf", filterGraph,
		"-map", "0:v",
		"-map", "1:a",
		"-c:v", videoCodec,
		"-preset", videoPreset,
		"-crf", videoCRF,
		"-c:a", audioCodec,
		"-shortest",
		outputPath,
	}
}

// Concat losslessly concatenates the given videos, in order, into
// outputPath. listPath is where the concat-demux list file is written; the
// caller registers both paths for cleanup before the call.
func (c *Composer) Concat(ctx context.Context, mediaPaths []string, listPath, outputPath string) error {
	log.Printf("Combining %d source videos", len(mediaPaths))

	var list strings.Builder
	for _, p := range mediaPaths {
		fmt.Fprintf(&list, "file '%s'\n", p)
	}
	if err := os.WriteFile(listPath, []byte(list.String()), 0644); err != nil {
		return errs.Wrap(errs.ErrComposition, "write concat list", err)
	}

	if _, err := c.runner.Run(ctx, ffmpegTimeout, "ffmpeg", concatArgs(listPath, outputPath)...); err != nil {
		return errs.Wrap(errs.ErrComposition, "concatenate sources", err)
	}
	return nil
}

// Mux produces the final video: video stream from videoPath, narration
// from audioPath, captions burned in via filterGraph.
func (c *Composer) Mux(ctx context.Context, videoPath, audioPath, filterGraph, outputPath string) error {
	log.Printf("Creating final video: %s", outputPath)

	if _, err := c.runner.Run(ctx, ffmpegTimeout, "ffmpeg", muxArgs(videoPath, audioPath, filterGraph, outputPath)...); err != nil {
		return errs.Wrap(errs.ErrComposition, "mux final video", err)
	}
	return nil
}
