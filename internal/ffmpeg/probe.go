package ffmpeg

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ZacxDev/video-segmenter/internal/config"
	"github.com/pkg/errors"
)

var (
	ErrDurationUnavailable = errors.New("duration unavailable")
)

// SourceMedia contains what the splitter needs to know about the input.
type SourceMedia struct {
	Path     string
	Duration float64
	Width    int
	Height   int
	// ResolutionFallback is set when the resolution query failed and
	// Width/Height hold config.FallbackWidth x config.FallbackHeight.
	ResolutionFallback bool
	FallbackReason     string
}

func (m *SourceMedia) Resolution() string {
	return fmt.Sprintf("%dx%d", m.Width, m.Height)
}

// Prober wraps ffprobe.
type Prober struct {
	FFprobe string
	Runner  Runner
	Timeout time.Duration
}

// NewProber creates a prober for the ffprobe at path.
func NewProber(path string, runner Runner, timeout time.Duration) *Prober {
	return &Prober{FFprobe: path, Runner: runner, Timeout: timeout}
}

// Probe reads the container duration and the first video stream's size.
// A missing duration is an error; a missing resolution falls back to the
// default size and is flagged on the result.
func (p *Prober) Probe(ctx context.Context, path string) (*SourceMedia, error) {
	duration, err := p.Duration(ctx, path)
	if err != nil {
		return nil, err
	}

	media := &SourceMedia{Path: path, Duration: duration}

	width, height, err := p.Resolution(ctx, path)
	if err != nil {
		media.Width, media.Height = config.FallbackWidth, config.FallbackHeight
		media.ResolutionFallback = true
		media.FallbackReason = err.Error()
		return media, nil
	}

	media.Width, media.Height = width, height
	return media, nil
}

// Duration queries format=duration in seconds.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	out, err := p.run(ctx,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, errors.Wrapf(ErrDurationUnavailable, "ffprobe %s: %v", path, err)
	}

	duration, err := ParseDuration(out)
	if err != nil {
		return 0, errors.Wrapf(err, "ffprobe %s", path)
	}
	return duration, nil
}

// Resolution queries the first video stream's width and height.
func (p *Prober) Resolution(ctx context.Context, path string) (int, int, error) {
	out, err := p.run(ctx,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=s=x:p=0",
		path,
	)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "ffprobe %s", path)
	}
	return ParseResolution(out)
}

func (p *Prober) run(ctx context.Context, args ...string) (string, error) {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	stdout, stderr, err := p.Runner.Run(ctx, p.FFprobe, args...)
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) && exitErr.Stderr == "" {
			exitErr.Stderr = string(stderr)
		}
		return "", err
	}
	return string(stdout), nil
}

// ParseDuration parses ffprobe's bare duration output.
func ParseDuration(out string) (float64, error) {
	s := firstLine(out)
	if s == "" || s == "N/A" {
		return 0, errors.Wrap(ErrDurationUnavailable, "empty duration")
	}

	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrDurationUnavailable, "non-numeric duration %q", s)
	}
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return 0, errors.Wrapf(ErrDurationUnavailable, "invalid duration %q", s)
	}
	return d, nil
}

// ParseResolution parses a WIDTHxHEIGHT token. A trailing separator, as
// some ffprobe builds print, is accepted.
func ParseResolution(out string) (int, int, error) {
	s := strings.TrimRight(firstLine(out), "x")
	parts := strings.Split(s, "x")
	if len(parts) != 2 {
		return 0, 0, errors.Errorf("unexpected resolution %q", s)
	}

	width, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, errors.Wrapf(err, "parsing width %q", parts[0])
	}
	height, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, errors.Wrapf(err, "parsing height %q", parts[1])
	}
	if width <= 0 || height <= 0 {
		return 0, 0, errors.Errorf("invalid resolution %dx%d", width, height)
	}
	return width, height, nil
}

func firstLine(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
