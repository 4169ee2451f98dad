package processor

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ZacxDev/video-segmenter/internal/config"
	"github.com/ZacxDev/video-segmenter/internal/ffmpeg"
	"github.com/ZacxDev/video-segmenter/internal/outdir"
	"github.com/hashicorp/go-hclog"
)

// State is the stage a Splitter is in.
type State int32

const (
	StateIdle State = iota
	StateLocating
	StatePreparing
	StateProbing
	StatePlanning
	StateEncoding
	StateCompleted
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLocating:
		return "locating"
	case StatePreparing:
		return "preparing"
	case StateProbing:
		return "probing"
	case StatePlanning:
		return "planning"
	case StateEncoding:
		return "encoding"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	}
	return "unknown"
}

// ToolLocator resolves the ffmpeg and ffprobe executables.
type ToolLocator interface {
	Locate(ffmpegName, ffprobeName string) (*ffmpeg.Tools, error)
}

// MediaProber reads what the run needs to know about the source.
type MediaProber interface {
	Probe(ctx context.Context, path string) (*ffmpeg.SourceMedia, error)
}

// ProberFactory creates a prober once the ffprobe path is known.
type ProberFactory func(ffprobePath string, runner ffmpeg.Runner, timeout time.Duration) MediaProber

// Observer receives run statistics. metrics.Recorder implements it.
type Observer interface {
	ObserveRun(status, reason string)
	ObserveSegment(mode, outcome string, seconds float64)
	ObserveEscalation()
	ObserveResolutionFallback()
	ObserveLowDiskSpace()
}

// Splitter cuts one source into segments. A Splitter runs one job at a
// time.
type Splitter struct {
	opts      config.SplitOptions
	logger    hclog.Logger
	locator   ToolLocator
	runner    ffmpeg.Runner
	segments  ffmpeg.SegmentRunner
	newProber ProberFactory
	freeSpace func(dir string) (uint64, error)
	observer  Observer

	state atomic.Int32
}

// Option customizes a Splitter.
type Option func(*Splitter)

func WithLogger(logger hclog.Logger) Option {
	return func(s *Splitter) { s.logger = logger }
}

func WithLocator(locator ToolLocator) Option {
	return func(s *Splitter) { s.locator = locator }
}

// WithRunner replaces the runner used for ffprobe.
func WithRunner(runner ffmpeg.Runner) Option {
	return func(s *Splitter) { s.runner = runner }
}

// WithSegmentRunner replaces the runner used for segment commands.
func WithSegmentRunner(runner ffmpeg.SegmentRunner) Option {
	return func(s *Splitter) { s.segments = runner }
}

func WithProberFactory(f ProberFactory) Option {
	return func(s *Splitter) { s.newProber = f }
}

// WithFreeSpace replaces the free-space query used for the disk check.
func WithFreeSpace(f func(dir string) (uint64, error)) Option {
	return func(s *Splitter) { s.freeSpace = f }
}

func WithObserver(o Observer) Option {
	return func(s *Splitter) { s.observer = o }
}

// NewSplitter creates a new video splitter
func NewSplitter(opts config.SplitOptions, options ...Option) *Splitter {
	s := &Splitter{
		opts:      opts,
		logger:    hclog.NewNullLogger(),
		runner:    ffmpeg.ExecRunner{},
		segments:  ffmpeg.ExecRunner{},
		freeSpace: outdir.FreeBytes,
		observer:  nopObserver{},
	}
	for _, o := range options {
		o(s)
	}
	if s.locator == nil {
		s.locator = ffmpeg.NewLocator(opts.BundleDir)
	}
	if s.newProber == nil {
		s.newProber = func(path string, runner ffmpeg.Runner, timeout time.Duration) MediaProber {
			return ffmpeg.NewProber(path, runner, timeout)
		}
	}
	return s
}

// State returns the current stage.
func (s *Splitter) State() State {
	return State(s.state.Load())
}

func (s *Splitter) setState(st State) {
	s.state.Store(int32(st))
	s.logger.Trace("state changed", "state", st)
}

type nopObserver struct{}

func (nopObserver) ObserveRun(string, string)              {}
func (nopObserver) ObserveSegment(string, string, float64) {}
func (nopObserver) ObserveEscalation()                     {}
func (nopObserver) ObserveResolutionFallback()             {}
func (nopObserver) ObserveLowDiskSpace()                   {}
