// Package segment computes the time slices a source is cut into.
package segment

import (
	"fmt"
	"iter"
	"math"

	"github.com/pkg/errors"
)

// tailEpsilon drops a trailing slot whose remaining time is only floating
// point residue, e.g. 0.3/0.1 evaluating to 2.9999999999999996.
const tailEpsilon = 1e-9

// Segment is one slice of the source timeline, in seconds.
type Segment struct {
	Index    int
	Start    float64
	Duration float64
}

// End returns Start + Duration.
func (s Segment) End() float64 {
	return s.Start + s.Duration
}

func (s Segment) String() string {
	return fmt.Sprintf("#%d [%.3f, %.3f)", s.Index, s.Start, s.End())
}

// Plan is the ordered set of segments for one source. It is immutable and
// iterating it twice yields the same segments.
type Plan struct {
	total  float64
	length float64
	count  int
}

// NewPlan splits total seconds into slices of length seconds. Every slice
// starts at index*length; the last one carries whatever time remains.
func NewPlan(total, length float64) (*Plan, error) {
	if !positiveFinite(total) {
		return nil, errors.Errorf("total duration must be positive, got %v", total)
	}
	if !positiveFinite(length) {
		return nil, errors.Errorf("segment length must be positive, got %v", length)
	}

	count := int(math.Ceil(total / length))
	for count > 1 && total-float64(count-1)*length <= tailEpsilon {
		count--
	}

	return &Plan{total: total, length: length, count: count}, nil
}

// Total returns the planned source duration.
func (p *Plan) Total() float64 {
	return p.total
}

// Length returns the requested segment length.
func (p *Plan) Length() float64 {
	return p.length
}

// Count returns the number of segments.
func (p *Plan) Count() int {
	return p.count
}

// At returns segment i, or false when i is outside the plan.
func (p *Plan) At(i int) (Segment, bool) {
	if i < 0 || i >= p.count {
		return Segment{}, false
	}

	start := float64(i) * p.length
	remaining := p.total - start
	if remaining <= 0 {
		return Segment{}, false
	}

	duration := p.length
	if remaining < p.length {
		duration = remaining
	}
	return Segment{Index: i, Start: start, Duration: duration}, true
}

// All yields the segments in order, computing each on demand.
func (p *Plan) All() iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		for i := 0; i < p.count; i++ {
			seg, ok := p.At(i)
			if !ok || !yield(seg) {
				return
			}
		}
	}
}

// Segments materializes the plan.
func (p *Plan) Segments() []Segment {
	out := make([]Segment, 0, p.count)
	for seg := range p.All() {
		out = append(out, seg)
	}
	return out
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
