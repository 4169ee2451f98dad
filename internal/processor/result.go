package processor

import (
	"fmt"
	"time"

	"github.com/ZacxDev/video-segmenter/internal/ffmpeg"
	"github.com/ZacxDev/video-segmenter/internal/geometry"
	"github.com/ZacxDev/video-segmenter/internal/segment"
	"github.com/ZacxDev/video-segmenter/pkg/types"
)

// ErrorKind classifies why a run was aborted.
type ErrorKind string

const (
	ToolNotFound            ErrorKind = "tool_not_found"
	ProbeFailed             ErrorKind = "probe_failed"
	DirectoryCreationFailed ErrorKind = "directory_creation_failed"
	SegmentFailure          ErrorKind = "segment_failure"
	UnexpectedFailure       ErrorKind = "unexpected_failure"
	Cancelled               ErrorKind = "cancelled"
)

// RunError is the reason attached to an aborted run.
type RunError struct {
	Kind ErrorKind
	Err  error
}

func (e *RunError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Outcome is the result of one segment.
type Outcome string

const (
	Succeeded Outcome = "succeeded"
	// Warned is a fast mode segment whose tool run failed. The run goes on.
	Warned Outcome = "warned"
	// Failed is a segment that ended the run.
	Failed Outcome = "failed"
)

type SegmentResult struct {
	Segment    segment.Segment
	OutputPath string
	Outcome    Outcome
	// Message is empty on success. Otherwise it holds the failure and the
	// tail of the tool's stderr.
	Message string
	Elapsed time.Duration
}

// Status is the terminal state of a run.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusAborted   Status = "aborted"
)

// Result describes a finished run. Fields past Status are filled as far as
// the run got.
type Result struct {
	JobID  string
	Status Status
	// Err is nil for completed runs.
	Err *RunError

	RequestedMode types.EncodeMode
	// Mode is the mode actually used; it differs from RequestedMode after
	// an escalation.
	Mode      types.EncodeMode
	Source    *ffmpeg.SourceMedia
	Geometry  *geometry.Plan
	OutputDir string
	// SegmentCount is the planned number of segments.
	SegmentCount int
	Segments     []SegmentResult
}

// Warnings returns the segments that finished with Warned.
func (r *Result) Warnings() []SegmentResult {
	return r.filter(Warned)
}

// Succeeded returns the segments that were written cleanly.
func (r *Result) Succeeded() []SegmentResult {
	return r.filter(Succeeded)
}

func (r *Result) filter(o Outcome) []SegmentResult {
	var out []SegmentResult
	for _, s := range r.Segments {
		if s.Outcome == o {
			out = append(out, s)
		}
	}
	return out
}

// Message is the one-line summary shown when the run ends.
func (r *Result) Message() string {
	if r.Status == StatusCompleted {
		if n := len(r.Warnings()); n > 0 {
			return fmt.Sprintf("Done with %d warning(s). Files saved to: %s", n, r.OutputDir)
		}
		return fmt.Sprintf("Done. Files saved to: %s", r.OutputDir)
	}
	if r.Err == nil {
		return "Aborted"
	}
	return fmt.Sprintf("Aborted (%s): %v", r.Err.Kind, r.Err.Err)
}
