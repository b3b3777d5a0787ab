// Package execx runs the external tools the pipeline depends on (gtts-cli,
// whisper, yt-dlp, ffmpeg) with bounded waits and captured diagnostics.
package execx

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Result captures what an external command produced
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes an external command. Implementations must honor the
// context and return stderr in the error on non-zero exit.
type Runner interface {
	Run(ctx context.Context, timeout time.Duration, name string, args ...string) (Result, error)
}

// CommandRunner is the production Runner backed by os/exec
type CommandRunner struct{}

// New creates a new command runner
func New() *CommandRunner {
	return &CommandRunner{}
}

// Run executes name with args, waiting at most timeout. A zero timeout
// means the parent context alone bounds the call.
func (r *CommandRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (Result, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: -1,
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, fmt.Errorf("command '%s' aborted: %w", name, ctxErr)
		}
		stderrStr := strings.TrimSpace(result.Stderr)
		if stderrStr != "" {
			return result, fmt.Errorf("command '%s' failed: %w\nstderr: %s", name, err, stderrStr)
		}
		return result, fmt.Errorf("command '%s' failed: %w", name, err)
	}

	return result, nil
}
