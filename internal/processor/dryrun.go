package processor

import (
	"context"

	"github.com/ZacxDev/video-segmenter/internal/ffmpeg"
	"github.com/google/uuid"
)

// DryRun is the outcome of Plan: the commands a run would execute.
type DryRun struct {
	// Result holds the probe and planning fields; Segments stays empty.
	Result   *Result
	Commands []*ffmpeg.Command
}

// Plan locates the tools, probes the source and builds every segment
// command without creating the output directory or running ffmpeg. Log
// and notice events go to sink, which may be nil.
func (s *Splitter) Plan(ctx context.Context, sink func(Event)) (*DryRun, error) {
	if sink == nil {
		sink = func(Event) {}
	}
	j := &job{
		s:      s,
		ctx:    ctx,
		emit:   sink,
		opts:   s.opts,
		result: &Result{JobID: uuid.NewString()},
	}

	p, rerr := j.prepare(false)
	if rerr != nil {
		s.setState(StateAborted)
		return nil, rerr
	}

	builder := ffmpeg.NewBuilder(p.tools.FFmpeg)
	commands := make([]*ffmpeg.Command, 0, p.plan.Count())
	for seg := range p.plan.All() {
		cmd, err := j.command(builder, p, seg)
		if err != nil {
			s.setState(StateAborted)
			return nil, &RunError{Kind: UnexpectedFailure, Err: err}
		}
		commands = append(commands, cmd)
	}

	s.setState(StateIdle)
	return &DryRun{Result: j.result, Commands: commands}, nil
}
