package processor

// Event is anything a run reports to its caller. Concrete types are
// LogEvent, NoticeEvent, ProgressEvent, SegmentEvent and TerminalEvent.
type Event interface {
	event()
}

// LogEvent is a human-readable status line.
type LogEvent struct {
	Message string
}

// NoticeCode identifies a non-fatal condition worth surfacing.
type NoticeCode string

const (
	// NoticeModeEscalated: reframing was requested with fast mode, so the
	// run switched to precise.
	NoticeModeEscalated NoticeCode = "mode_escalated"
	// NoticeResolutionFallback: the source size could not be read and the
	// default was assumed.
	NoticeResolutionFallback NoticeCode = "resolution_fallback"
	// NoticeLowDiskSpace: the output filesystem has less free space than
	// the source occupies.
	NoticeLowDiskSpace NoticeCode = "low_disk_space"
)

type NoticeEvent struct {
	Code    NoticeCode
	Message string
}

// ProgressEvent is emitted after every segment that does not end the run.
type ProgressEvent struct {
	Percent   int
	Completed int
	Total     int
}

// SegmentEvent carries the outcome of one segment.
type SegmentEvent struct {
	Result SegmentResult
}

// TerminalEvent is always the last event of a run.
type TerminalEvent struct {
	Result *Result
}

func (LogEvent) event()      {}
func (NoticeEvent) event()   {}
func (ProgressEvent) event() {}
func (SegmentEvent) event()  {}
func (TerminalEvent) event() {}
