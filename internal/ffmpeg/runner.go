package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Runner executes an external tool and waits for it to exit.
type Runner interface {
	// Run returns the captured stdout and stderr. A tool that starts but
	// exits non-zero, or is killed by ctx, yields an *ExitError. Any other
	// error means the process could not be run at all.
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExitError reports a tool that ran and failed.
type ExitError struct {
	Code     int
	Stderr   string
	TimedOut bool
}

func (e *ExitError) Error() string {
	if e.TimedOut {
		return "timed out"
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// SegmentRunner executes built segment commands. Errors follow the same
// contract as Runner.
type SegmentRunner interface {
	RunSegment(ctx context.Context, cmd *Command) error
}

// ExecRunner runs tools as child processes. Segment commands go through
// their ffmpeg-go stream; other tools are run directly.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := classify(ctx, name, cmd.Run(), stderr.String())
	return stdout.Bytes(), stderr.Bytes(), err
}

func (ExecRunner) RunSegment(ctx context.Context, cmd *Command) error {
	if cmd.stream == nil {
		return errors.New("command was not built by Builder")
	}

	var stderr bytes.Buffer
	stream := *cmd.stream
	stream.Context = ctx
	err := stream.OverWriteOutput().
		SetFfmpegPath(cmd.Binary).
		WithErrorOutput(&stderr).
		Silent(true).
		Run()
	return classify(ctx, cmd.Binary, err, stderr.String())
}

func classify(ctx context.Context, name string, err error, stderr string) error {
	if err == nil {
		return nil
	}
	if ctx.Err() == context.DeadlineExceeded {
		return &ExitError{Code: -1, Stderr: stderr, TimedOut: true}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Code: exitErr.ExitCode(), Stderr: stderr}
	}
	return errors.Wrapf(err, "running %s", name)
}

// StderrTail returns at most the last n bytes of stderr, trimmed to a line
// boundary when one is available.
func StderrTail(stderr string, n int) string {
	b := bytes.TrimSpace([]byte(stderr))
	if len(b) <= n {
		return string(b)
	}
	b = b[len(b)-n:]
	if i := bytes.IndexByte(b, '\n'); i >= 0 && i < len(b)-1 {
		b = b[i+1:]
	}
	for len(b) > 0 && !utf8.RuneStart(b[0]) {
		b = b[1:]
	}
	return string(b)
}
