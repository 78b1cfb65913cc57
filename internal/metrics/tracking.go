package metrics

import (
	"github.com/san-kum/swervesim/internal/heading"
	"github.com/san-kum/swervesim/internal/sim"
)

// TrackingError averages the angular distance to the target over the ticks
// spent seeking. Manual ticks are ignored.
type TrackingError struct {
	total   float64
	samples int
}

func NewTrackingError() *TrackingError { return &TrackingError{} }

func (e *TrackingError) Name() string { return "tracking_error" }

func (e *TrackingError) Observe(s sim.Sample) {
	if !s.HasTarget || s.Fault != "" {
		return
	}
	e.total += heading.Distance(s.Heading, s.Target)
	e.samples++
}

func (e *TrackingError) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *TrackingError) Reset() {
	e.total = 0
	e.samples = 0
}
