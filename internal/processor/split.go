package processor

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/ZacxDev/video-segmenter/internal/config"
	"github.com/ZacxDev/video-segmenter/internal/ffmpeg"
	"github.com/ZacxDev/video-segmenter/internal/geometry"
	"github.com/ZacxDev/video-segmenter/internal/outdir"
	"github.com/ZacxDev/video-segmenter/internal/segment"
	"github.com/ZacxDev/video-segmenter/pkg/types"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// stderrTailBytes bounds how much tool output is carried in messages.
const stderrTailBytes = 2048

// Run executes the whole split synchronously. Every event, ending with
// exactly one TerminalEvent, is passed to sink on the calling goroutine.
// sink may be nil.
func (s *Splitter) Run(ctx context.Context, sink func(Event)) *Result {
	return s.run(ctx, uuid.NewString(), sink)
}

// job holds the per-run state while it executes.
type job struct {
	s      *Splitter
	ctx    context.Context
	emit   func(Event)
	opts   config.SplitOptions
	result *Result
}

func (s *Splitter) run(ctx context.Context, id string, sink func(Event)) *Result {
	if sink == nil {
		sink = func(Event) {}
	}

	j := &job{
		s:    s,
		ctx:  ctx,
		emit: sink,
		opts: s.opts,
		result: &Result{
			JobID:         id,
			RequestedMode: s.opts.Mode,
			Mode:          s.opts.Mode,
		},
	}
	s.setState(StateIdle)
	s.logger.Debug("starting split", "job", id, "input", s.opts.InputPath)

	return j.execute()
}

// prepared is everything the encode loop needs.
type prepared struct {
	tools *ffmpeg.Tools
	dir   string
	plan  *segment.Plan
	mode  types.EncodeMode
}

func (j *job) execute() *Result {
	p, rerr := j.prepare(true)
	if rerr != nil {
		return j.abort(rerr.Kind, rerr.Err)
	}
	j.checkDiskSpace(p.dir)
	return j.encode(p)
}

// prepare validates, locates the tools, probes the source and plans the
// run. The output directory is created only when createDir is set.
func (j *job) prepare(createDir bool) (*prepared, *RunError) {
	if err := j.opts.Validate(); err != nil {
		return nil, &RunError{Kind: UnexpectedFailure, Err: err}
	}
	j.result.RequestedMode = j.opts.Mode
	j.result.Mode = j.opts.Mode

	if err := j.ctx.Err(); err != nil {
		return nil, &RunError{Kind: Cancelled, Err: err}
	}

	j.s.setState(StateLocating)
	tools, err := j.s.locator.Locate(config.FFmpegBinary, config.FFprobeBinary)
	if err != nil {
		return nil, &RunError{Kind: ToolNotFound, Err: err}
	}
	j.s.logger.Debug("tools located", "ffmpeg", tools.FFmpeg, "ffprobe", tools.FFprobe)

	j.s.setState(StatePreparing)
	dir := j.opts.OutputDir
	if dir == "" {
		dir = outdir.DefaultFor(j.opts.InputPath)
	}
	j.result.OutputDir = dir
	if createDir {
		if err := outdir.Ensure(dir); err != nil {
			return nil, &RunError{Kind: DirectoryCreationFailed, Err: err}
		}
	}

	j.s.setState(StateProbing)
	j.log("Reading video parameters...")
	prober := j.s.newProber(tools.FFprobe, j.s.runner, j.opts.ProbeTimeout)
	media, err := prober.Probe(j.ctx, j.opts.InputPath)
	if err != nil {
		if j.ctx.Err() != nil {
			return nil, &RunError{Kind: Cancelled, Err: j.ctx.Err()}
		}
		return nil, &RunError{Kind: ProbeFailed, Err: err}
	}
	j.result.Source = media
	if media.ResolutionFallback {
		j.s.observer.ObserveResolutionFallback()
		j.notice(NoticeResolutionFallback, fmt.Sprintf(
			"Could not read the source resolution (%s); assuming %s",
			media.FallbackReason, media.Resolution()))
	}
	j.log("Original resolution: %s", media.Resolution())

	j.s.setState(StatePlanning)
	plan, mode, err := j.plan(media)
	if err != nil {
		return nil, &RunError{Kind: UnexpectedFailure, Err: err}
	}

	return &prepared{tools: tools, dir: dir, plan: plan, mode: mode}, nil
}

// plan computes geometry and the segment plan and settles the encode
// mode. Escalation is announced before any command exists.
func (j *job) plan(media *ffmpeg.SourceMedia) (*segment.Plan, types.EncodeMode, error) {
	fit := geometry.FitModeFor(j.opts.Pad)
	geo, err := geometry.Compute(media.Width, media.Height, j.opts.Aspect, fit)
	if err != nil {
		return nil, "", err
	}
	j.result.Geometry = geo

	mode := j.opts.Mode
	if geo != nil {
		j.log("Target resolution: %dx%d", geo.EncodeWidth(), geo.EncodeHeight())
		if fit == geometry.Pad {
			j.log("Scaling mode: fit with black bars")
		} else {
			j.log("Scaling mode: fill frame and crop")
		}
		if mode == types.EncodeModeFast {
			mode = types.EncodeModePrecise
			j.s.observer.ObserveEscalation()
			j.notice(NoticeModeEscalated,
				"Changing the resolution requires re-encoding. Switching to precise mode...")
		}
	}
	j.result.Mode = mode

	segments, err := segment.NewPlan(media.Duration, float64(j.opts.SegmentSeconds))
	if err != nil {
		return nil, "", err
	}
	j.result.SegmentCount = segments.Count()
	j.log("Duration: %.1f sec, Segments: %d", media.Duration, segments.Count())

	return segments, mode, nil
}

// checkDiskSpace warns when the output filesystem has less room than the
// source occupies. Either query failing skips the check.
func (j *job) checkDiskSpace(dir string) {
	free, err := j.s.freeSpace(dir)
	if err != nil {
		j.s.logger.Debug("free space unavailable", "dir", dir, "error", err)
		return
	}
	size, err := outdir.FileSize(j.opts.InputPath)
	if err != nil {
		j.s.logger.Debug("source size unavailable", "error", err)
		return
	}
	if free < uint64(size) {
		j.s.observer.ObserveLowDiskSpace()
		j.notice(NoticeLowDiskSpace, fmt.Sprintf(
			"Only %d bytes free in %s; the source is %d bytes", free, dir, size))
	}
}

func (j *job) encode(p *prepared) *Result {
	j.s.setState(StateEncoding)
	plan, mode := p.plan, p.mode
	if mode == types.EncodeModeFast {
		j.log("Fast mode: cutting without re-encoding...")
	} else {
		j.log("Precise mode: re-encoding...")
	}

	builder := ffmpeg.NewBuilder(p.tools.FFmpeg)
	count := plan.Count()

	for seg := range plan.All() {
		if err := j.ctx.Err(); err != nil {
			return j.abort(Cancelled, err)
		}
		if seg.Start >= plan.Total() {
			break
		}

		cmd, err := j.command(builder, p, seg)
		if err != nil {
			return j.abort(UnexpectedFailure, err)
		}

		j.log("Creating segment %d (%s - %s, %.1f sec)",
			seg.Index+1, clock(seg.Start), clock(seg.End()), seg.Duration)
		j.s.logger.Debug("running ffmpeg", "segment", seg.Index, "command", cmd.String())

		res, kind, runErr := j.runSegment(cmd, seg, mode)
		j.result.Segments = append(j.result.Segments, res)
		j.s.observer.ObserveSegment(string(mode), string(res.Outcome), res.Elapsed.Seconds())
		j.emit(SegmentEvent{Result: res})

		if runErr != nil {
			return j.abort(kind, runErr)
		}

		switch res.Outcome {
		case Succeeded:
			j.log("Segment %d ready", seg.Index+1)
		case Warned:
			j.log("Warning for segment %d: %s", seg.Index+1, res.Message)
		}

		j.emit(ProgressEvent{
			Percent:   progressPercent(seg.Index+1, count),
			Completed: seg.Index + 1,
			Total:     count,
		})
	}

	return j.complete()
}

func (j *job) command(builder *ffmpeg.Builder, p *prepared, seg segment.Segment) (*ffmpeg.Command, error) {
	out := filepath.Join(p.dir, ffmpeg.SegmentFileName(j.opts.InputPath, seg.Index, p.mode))
	return builder.Build(ffmpeg.CommandSpec{
		Segment:    seg,
		SourcePath: j.opts.InputPath,
		OutputPath: out,
		Mode:       p.mode,
		Geometry:   j.result.Geometry,
	})
}

// runSegment executes one command and applies the mode's failure policy.
// A non-nil error means the run must stop with the returned kind.
func (j *job) runSegment(cmd *ffmpeg.Command, seg segment.Segment, mode types.EncodeMode) (SegmentResult, ErrorKind, error) {
	ctx := j.ctx
	if j.opts.SegmentTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.opts.SegmentTimeout)
		defer cancel()
	}

	started := time.Now()
	err := j.s.segments.RunSegment(ctx, cmd)
	res := SegmentResult{
		Segment:    seg,
		OutputPath: cmd.OutputPath,
		Outcome:    Succeeded,
		Elapsed:    time.Since(started),
	}
	if err == nil {
		return res, "", nil
	}

	if j.ctx.Err() != nil {
		res.Outcome = Failed
		res.Message = "cancelled"
		return res, Cancelled, j.ctx.Err()
	}

	var exitErr *ffmpeg.ExitError
	if !errors.As(err, &exitErr) {
		res.Outcome = Failed
		res.Message = err.Error()
		return res, UnexpectedFailure, errors.Wrapf(err, "segment %d", seg.Index+1)
	}

	res.Message = exitErr.Error()
	if tail := ffmpeg.StderrTail(exitErr.Stderr, stderrTailBytes); tail != "" {
		res.Message += ": " + tail
	}

	if mode == types.EncodeModeFast {
		res.Outcome = Warned
		return res, "", nil
	}

	res.Outcome = Failed
	return res, SegmentFailure, errors.Errorf("segment %d failed: %s", seg.Index+1, res.Message)
}

func (j *job) complete() *Result {
	j.result.Status = StatusCompleted
	j.s.setState(StateCompleted)
	j.s.observer.ObserveRun(string(StatusCompleted), "")
	j.s.logger.Info("split completed",
		"job", j.result.JobID,
		"segments", len(j.result.Segments),
		"warnings", len(j.result.Warnings()))

	j.emit(TerminalEvent{Result: j.result})
	return j.result
}

func (j *job) abort(kind ErrorKind, err error) *Result {
	j.result.Status = StatusAborted
	j.result.Err = &RunError{Kind: kind, Err: err}
	j.s.setState(StateAborted)
	j.s.observer.ObserveRun(string(StatusAborted), string(kind))
	j.s.logger.Error("split aborted", "job", j.result.JobID, "kind", kind, "error", err)

	j.emit(TerminalEvent{Result: j.result})
	return j.result
}

func (j *job) log(format string, args ...interface{}) {
	j.emit(LogEvent{Message: fmt.Sprintf(format, args...)})
}

func (j *job) notice(code NoticeCode, msg string) {
	j.s.logger.Warn(msg, "code", code)
	j.emit(NoticeEvent{Code: code, Message: msg})
}

// progressPercent is completed/total as a rounded percentage.
func progressPercent(completed, total int) int {
	if total <= 0 {
		return 100
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// clock formats seconds as m:ss.
func clock(seconds float64) string {
	s := int(seconds)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}
