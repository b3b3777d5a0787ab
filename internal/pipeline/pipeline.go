// Package pipeline sequences one video generation job end to end:
// narration, transcription, source downloads, caption compilation and
// final composition, with full-or-nothing cleanup of scratch artifacts.
package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/accrandomash-cloud/Tiktokkk/internal/errs"
	"github.com/accrandomash-cloud/Tiktokkk/internal/fetch"
	"github.com/accrandomash-cloud/Tiktokkk/internal/overlay"
	"github.com/accrandomash-cloud/Tiktokkk/internal/progress"
	"github.com/accrandomash-cloud/Tiktokkk/internal/synth"
	"github.com/accrandomash-cloud/Tiktokkk/internal/transcription"
	"github.com/accrandomash-cloud/Tiktokkk/internal/types"
	"github.com/accrandomash-cloud/Tiktokkk/internal/workspace"
)

// Composer is the slice of the media composer the pipeline needs
type Composer interface {
	Concat(ctx context.Context, mediaPaths []string, listPath, outputPath string) error
	Mux(ctx context.Context, videoPath, audioPath, filterGraph, outputPath string) error
}

// Pipeline wires the adapters together and owns each job's workspace
type Pipeline struct {
	tempRoot    string
	synthesizer synth.Synthesizer
	transcriber transcription.Transcriber
	fetcher     fetch.Fetcher
	composer    Composer
	notifier    *progress.Notifier
}

// New creates a pipeline rooted at tempRoot
func New(
	tempRoot string,
	synthesizer synth.Synthesizer,
	transcriber transcription.Transcriber,
	fetcher fetch.Fetcher,
	composer Composer,
	notifier *progress.Notifier,
) *Pipeline {
	return &Pipeline{
		tempRoot:    tempRoot,
		synthesizer: synthesizer,
		transcriber: transcriber,
		fetcher:     fetcher,
		composer:    composer,
		notifier:    notifier,
	}
}

// Validate rejects bad jobs before any filesystem work happens
func Validate(job *types.Job) error {
	if job.Text == "" || len(job.Links) == 0 {
		return errs.Wrap(errs.ErrValidation, "Missing prompt or video links", nil)
	}
	if len(job.Links) > types.MaxLinks {
		return errs.Wrapf(errs.ErrValidation, nil, "Maximum %d videos allowed", types.MaxLinks)
	}
	return nil
}

// Run processes one job and returns the final video path plus the
// workspace that owns it. On success the caller must invoke ws.Cleanup()
// once the file has been delivered. On error the workspace has already
// been torn down and the returned workspace is nil.
func (p *Pipeline) Run(ctx context.Context, job *types.Job) (string, *workspace.Workspace, error) {
	if err := Validate(job); err != nil {
		return "", nil, err
	}

	ws, err := workspace.New(p.tempRoot, job.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	outputPath, err := p.process(ctx, job, ws)
	if err != nil {
		ws.Cleanup()
		return "", nil, err
	}
	return outputPath, ws, nil
}

func (p *Pipeline) process(ctx context.Context, job *types.Job, ws *workspace.Workspace) (string, error) {
	var (
		transcript *types.Transcript
		sources    = make([]string, len(job.Links))
	)

	narrationPath := ws.Path("narration.mp3")

	g, gctx := errgroup.WithContext(ctx)

	// Narration and its transcript depend only on the text.
	g.Go(func() error {
		p.notifier.Stepf(job.ID, "🎤 Generating voice narration...")
		if err := p.synthesizer.Synthesize(gctx, job.Text, narrationPath); err != nil {
			return err
		}

		p.notifier.Stepf(job.ID, "📝 Creating transcript...")
		whisperDir, err := ws.MkdirScratch("whisper")
		if err != nil {
			return errs.Wrap(errs.ErrTranscription, "whisper output dir", err)
		}
		transcript, err = p.transcriber.Transcribe(gctx, narrationPath, whisperDir)
		return err
	})

	// Each source downloads into its own scratch dir, registered before
	// the fetch so an aborted download still gets cleaned up. Result slots
	// are indexed by input position; completion order is irrelevant.
	p.notifier.Stepf(job.ID, "📥 Downloading videos...")
	for i, url := range job.Links {
		i, url := i, url
		g.Go(func() error {
			scratch, err := ws.MkdirScratch(fmt.Sprintf("source-%d", i))
			if err != nil {
				return errs.Wrapf(errs.ErrFetch, err, "scratch dir for link %d", i+1)
			}
			mediaPath, err := p.fetcher.Fetch(gctx, url, scratch)
			if err != nil {
				return err
			}
			ws.Register(mediaPath)
			sources[i] = mediaPath
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", err
	}

	inputVideo := sources[0]
	if len(sources) > 1 {
		p.notifier.Stepf(job.ID, "🔄 Combining videos...")
		combined := ws.Path("combined.mp4")
		listPath := ws.Path("concat.txt")
		if err := p.composer.Concat(ctx, sources, listPath, combined); err != nil {
			return "", err
		}
		inputVideo = combined
	}

	p.notifier.Stepf(job.ID, "🎬 Creating final video...")
	instructions := overlay.Compile(transcript)
	filterGraph := overlay.FilterGraph(instructions)

	outputPath := ws.Path("final_output.mp4")
	if err := p.composer.Mux(ctx, inputVideo, narrationPath, filterGraph, outputPath); err != nil {
		return "", err
	}

	p.notifier.Stepf(job.ID, "✅ Video ready")
	return outputPath, nil
}
