package ffmpeg

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRunner answers ffprobe queries by the -show_entries value.
type scriptedRunner struct {
	duration    string
	durationErr error
	resolution  string
	resErr      error
	calls       [][]string
}

func (r *scriptedRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.calls = append(r.calls, append([]string{name}, args...))
	for i, a := range args {
		if a != "-show_entries" || i+1 >= len(args) {
			continue
		}
		switch args[i+1] {
		case "format=duration":
			return []byte(r.duration), nil, r.durationErr
		case "stream=width,height":
			return []byte(r.resolution), nil, r.resErr
		}
	}
	return nil, nil, errors.New("unexpected query")
}

func TestProbe_Success(t *testing.T) {
	runner := &scriptedRunner{duration: "125.480000\n", resolution: "1920x1080\n"}
	p := NewProber("/usr/bin/ffprobe", runner, 0)

	media, err := p.Probe(context.Background(), "/v/in.mp4")
	require.NoError(t, err)

	assert.Equal(t, "/v/in.mp4", media.Path)
	assert.InDelta(t, 125.48, media.Duration, 1e-9)
	assert.Equal(t, 1920, media.Width)
	assert.Equal(t, 1080, media.Height)
	assert.False(t, media.ResolutionFallback)
	assert.Equal(t, "1920x1080", media.Resolution())

	require.Len(t, runner.calls, 2)
	assert.Equal(t, []string{
		"/usr/bin/ffprobe", "-v", "error", "-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1", "/v/in.mp4",
	}, runner.calls[0])
	assert.Equal(t, []string{
		"/usr/bin/ffprobe", "-v", "error", "-select_streams", "v:0",
		"-show_entries", "stream=width,height", "-of", "csv=s=x:p=0", "/v/in.mp4",
	}, runner.calls[1])
}

func TestProbe_DurationFailures(t *testing.T) {
	tests := []struct {
		name   string
		runner *scriptedRunner
	}{
		{"tool error", &scriptedRunner{durationErr: &ExitError{Code: 1, Stderr: "No such file"}}},
		{"empty", &scriptedRunner{duration: "\n"}},
		{"not available", &scriptedRunner{duration: "N/A"}},
		{"garbage", &scriptedRunner{duration: "abc"}},
		{"negative", &scriptedRunner{duration: "-3.0"}},
		{"zero", &scriptedRunner{duration: "0.000000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.runner.resolution = "1280x720"
			_, err := NewProber("ffprobe", tt.runner, 0).Probe(context.Background(), "in.mp4")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDurationUnavailable), "got %v", err)
			// resolution is never queried once duration fails
			assert.Len(t, tt.runner.calls, 1)
		})
	}
}

func TestProbe_ResolutionFallback(t *testing.T) {
	tests := []struct {
		name   string
		runner *scriptedRunner
	}{
		{"tool error", &scriptedRunner{resErr: &ExitError{Code: 1}}},
		{"empty output", &scriptedRunner{resolution: ""}},
		{"audio only", &scriptedRunner{resolution: "\n"}},
		{"malformed", &scriptedRunner{resolution: "widexhigh"}},
		{"zero", &scriptedRunner{resolution: "0x0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.runner.duration = "30"
			media, err := NewProber("ffprobe", tt.runner, 0).Probe(context.Background(), "in.mp4")
			require.NoError(t, err)

			assert.True(t, media.ResolutionFallback)
			assert.NotEmpty(t, media.FallbackReason)
			assert.Equal(t, 1920, media.Width)
			assert.Equal(t, 1080, media.Height)
			assert.Equal(t, 30.0, media.Duration)
		})
	}
}

func TestParseResolution(t *testing.T) {
	w, h, err := ParseResolution("3840x2160x\n")
	require.NoError(t, err)
	assert.Equal(t, 3840, w)
	assert.Equal(t, 2160, h)

	w, h, err = ParseResolution("\n 720x1280 \n1920x1080\n")
	require.NoError(t, err)
	assert.Equal(t, 720, w)
	assert.Equal(t, 1280, h)

	_, _, err = ParseResolution("1920")
	assert.Error(t, err)
	_, _, err = ParseResolution("1920x-2")
	assert.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("  7322.040000 \n")
	require.NoError(t, err)
	assert.Equal(t, 7322.04, d)

	_, err = ParseDuration("NaN")
	assert.Error(t, err)
	_, err = ParseDuration("+Inf")
	assert.Error(t, err)
}
