package ffmpeg

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/ZacxDev/video-segmenter/internal/segment"
	"github.com/ZacxDev/video-segmenter/pkg/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecRunner_Success(t *testing.T) {
	requireShell(t)

	stdout, stderr, err := ExecRunner{}.Run(context.Background(), "sh", "-c", "echo 42.5; echo note >&2")
	require.NoError(t, err)
	assert.Equal(t, "42.5\n", string(stdout))
	assert.Equal(t, "note\n", string(stderr))
}

func TestExecRunner_ExitCode(t *testing.T) {
	requireShell(t)

	_, _, err := ExecRunner{}.Run(context.Background(), "sh", "-c", "echo 'Invalid data' >&2; exit 3")

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "got %v", err)
	assert.Equal(t, 3, exitErr.Code)
	assert.False(t, exitErr.TimedOut)
	assert.Contains(t, exitErr.Stderr, "Invalid data")
}

func TestExecRunner_Timeout(t *testing.T) {
	requireShell(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, _, err := ExecRunner{}.Run(ctx, "sh", "-c", "sleep 5")

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "got %v", err)
	assert.True(t, exitErr.TimedOut)
}

func TestExecRunner_SpawnFailure(t *testing.T) {
	_, _, err := ExecRunner{}.Run(context.Background(), "/nonexistent/ffmpeg-binary")
	require.Error(t, err)

	var exitErr *ExitError
	assert.False(t, errors.As(err, &exitErr))
}

// fakeFFmpeg writes a shell script standing in for ffmpeg and returns a
// segment command that runs it.
func fakeFFmpeg(t *testing.T, body string) *Command {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))

	cmd, err := NewBuilder(path).Build(CommandSpec{
		Segment:    segment.Segment{Index: 0, Start: 0, Duration: 5},
		SourcePath: "in.mp4",
		OutputPath: filepath.Join(t.TempDir(), "in_000.mp4"),
		Mode:       types.EncodeModeFast,
	})
	require.NoError(t, err)
	return cmd
}

func TestExecRunner_RunSegment(t *testing.T) {
	requireShell(t)

	argsFile := filepath.Join(t.TempDir(), "args")
	cmd := fakeFFmpeg(t, `printf '%s\n' "$@" > `+argsFile)

	require.NoError(t, ExecRunner{}.RunSegment(context.Background(), cmd))

	got, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t, cmd.Args, strings.Split(strings.TrimSuffix(string(got), "\n"), "\n"))
	assert.Contains(t, cmd.Args, "-y")
}

func TestExecRunner_RunSegmentExitCode(t *testing.T) {
	requireShell(t)

	cmd := fakeFFmpeg(t, "echo 'Invalid data found' >&2; exit 3")
	err := ExecRunner{}.RunSegment(context.Background(), cmd)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "got %v", err)
	assert.Equal(t, 3, exitErr.Code)
	assert.False(t, exitErr.TimedOut)
	assert.Contains(t, exitErr.Stderr, "Invalid data found")
}

func TestExecRunner_RunSegmentTimeout(t *testing.T) {
	requireShell(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := ExecRunner{}.RunSegment(ctx, fakeFFmpeg(t, "exec sleep 5"))

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "got %v", err)
	assert.True(t, exitErr.TimedOut)
}

func TestExecRunner_RunSegmentSpawnFailure(t *testing.T) {
	cmd, err := NewBuilder("/nonexistent/ffmpeg-binary").Build(CommandSpec{
		Segment:    segment.Segment{Index: 0, Start: 0, Duration: 5},
		SourcePath: "in.mp4",
		OutputPath: "in_000.mp4",
		Mode:       types.EncodeModeFast,
	})
	require.NoError(t, err)

	err = ExecRunner{}.RunSegment(context.Background(), cmd)
	require.Error(t, err)

	var exitErr *ExitError
	assert.False(t, errors.As(err, &exitErr))
}

func TestExecRunner_RunSegmentNeedsBuiltCommand(t *testing.T) {
	err := ExecRunner{}.RunSegment(context.Background(), &Command{Binary: "ffmpeg", Args: []string{"-version"}})
	assert.Error(t, err)
}

func TestStderrTail(t *testing.T) {
	assert.Equal(t, "short", StderrTail("  short\n", 100))

	long := strings.Repeat("x", 50) + "\nline two\nline three"
	assert.Equal(t, "line three", StderrTail(long, 12))
	assert.Equal(t, "", StderrTail("", 10))
}

func TestStderrTail_StartsOnRuneBoundary(t *testing.T) {
	tail := StderrTail(strings.Repeat("€", 1000), 2048)

	assert.True(t, utf8.ValidString(tail))
	assert.True(t, strings.HasSuffix(tail, "€"))
	assert.LessOrEqual(t, len(tail), 2048)
}
