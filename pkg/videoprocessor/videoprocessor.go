// Package videoprocessor is the public entry point for splitting a video
// into fixed-length segments with ffmpeg.
package videoprocessor

import (
	"context"

	"github.com/ZacxDev/video-segmenter/internal/config"
	"github.com/ZacxDev/video-segmenter/internal/ffmpeg"
	"github.com/ZacxDev/video-segmenter/internal/geometry"
	"github.com/ZacxDev/video-segmenter/internal/processor"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
)

type (
	SplitOptions = config.SplitOptions
	SourceMedia  = ffmpeg.SourceMedia
	Command      = ffmpeg.Command
	Result       = processor.Result
	RunError     = processor.RunError
	Event        = processor.Event
	Job          = processor.Job
	DryRun       = processor.DryRun
	Observer     = processor.Observer
)

// Runtime carries the collaborators a caller may want to supply. The zero
// value uses a silent logger and no metrics.
type Runtime struct {
	Logger   hclog.Logger
	Observer Observer
}

func (rt Runtime) options() []processor.Option {
	var opts []processor.Option
	if rt.Logger != nil {
		opts = append(opts, processor.WithLogger(rt.Logger))
	}
	if rt.Observer != nil {
		opts = append(opts, processor.WithObserver(rt.Observer))
	}
	return opts
}

// DefaultOptions returns the default split options.
func DefaultOptions() SplitOptions {
	return config.DefaultOptions()
}

// SplitVideo runs a split to completion. onEvent may be nil. The returned
// error is the result's *RunError when the run was aborted; the result is
// returned either way.
func SplitVideo(ctx context.Context, opts SplitOptions, rt Runtime, onEvent func(Event)) (*Result, error) {
	result := processor.NewSplitter(opts, rt.options()...).Run(ctx, onEvent)
	if result.Err != nil {
		return result, result.Err
	}
	return result, nil
}

// Start runs a split in the background.
func Start(ctx context.Context, opts SplitOptions, rt Runtime) *Job {
	return processor.NewSplitter(opts, rt.options()...).Start(ctx)
}

// PlanCommands returns every ffmpeg invocation a split would run, without
// running any of them.
func PlanCommands(ctx context.Context, opts SplitOptions, rt Runtime) (*DryRun, error) {
	return processor.NewSplitter(opts, rt.options()...).Plan(ctx, nil)
}

// ProbeVideo reads the duration and resolution of path using the ffprobe
// found by the usual search. bundleDir may be empty.
func ProbeVideo(ctx context.Context, path, bundleDir string) (*SourceMedia, error) {
	tools, err := ffmpeg.NewLocator(bundleDir).Locate(config.FFmpegBinary, config.FFprobeBinary)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return ffmpeg.NewProber(tools.FFprobe, ffmpeg.ExecRunner{}, config.DefaultProbeTimeout).Probe(ctx, path)
}

// GetSupportedAspects returns the accepted aspect targets, original first.
func GetSupportedAspects() []string {
	return geometry.Supported()
}
