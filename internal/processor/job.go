package processor

import (
	"context"

	"github.com/google/uuid"
)

const eventBuffer = 64

// Job is a split running in the background.
type Job struct {
	id     string
	events chan Event
	done   chan struct{}
	result *Result
}

// Start runs the split on its own goroutine. Cancel ctx to stop it before
// the next segment; the ffmpeg process running at that moment is killed.
func (s *Splitter) Start(ctx context.Context) *Job {
	j := &Job{
		id:     uuid.NewString(),
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
	}

	go func() {
		defer close(j.done)
		j.result = s.run(ctx, j.id, func(e Event) {
			j.events <- e
		})
		close(j.events)
	}()

	return j
}

func (j *Job) ID() string {
	return j.id
}

// Events delivers the run's events in order. The channel is closed after
// the TerminalEvent. Events must be consumed, or Wait called, for the run
// to make progress once the buffer fills.
func (j *Job) Events() <-chan Event {
	return j.events
}

// Wait discards any events not yet received and blocks until the run has
// finished.
func (j *Job) Wait() *Result {
	for range j.events {
	}
	<-j.done
	return j.result
}
