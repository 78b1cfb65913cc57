package metrics

import "github.com/san-kum/swervesim/internal/sim"

// Arrivals counts ticks on which a seek completed.
type Arrivals struct {
	count int
}

func NewArrivals() *Arrivals { return &Arrivals{} }

func (a *Arrivals) Name() string { return "arrivals" }

func (a *Arrivals) Observe(s sim.Sample) {
	if s.Arrived {
		a.count++
	}
}

func (a *Arrivals) Value() float64 { return float64(a.count) }

func (a *Arrivals) Reset() { a.count = 0 }

// FirstArrival is the loop time of the first completed seek, -1 if none.
type FirstArrival struct {
	t float64
}

func NewFirstArrival() *FirstArrival { return &FirstArrival{t: -1} }

func (f *FirstArrival) Name() string { return "first_arrival" }

func (f *FirstArrival) Observe(s sim.Sample) {
	if s.Arrived && f.t < 0 {
		f.t = s.Time
	}
}

func (f *FirstArrival) Value() float64 { return f.t }

func (f *FirstArrival) Reset() { f.t = -1 }

// Faults counts ticks that ended in the fail-safe path.
type Faults struct {
	count int
}

func NewFaults() *Faults { return &Faults{} }

func (f *Faults) Name() string { return "faults" }

func (f *Faults) Observe(s sim.Sample) {
	if s.Fault != "" {
		f.count++
	}
}

func (f *Faults) Value() float64 { return float64(f.count) }

func (f *Faults) Reset() { f.count = 0 }

// Standard returns the metric set recorded for every bench run.
func Standard() []sim.Metric {
	return []sim.Metric{
		NewControlEffort(),
		NewPeakDuty(),
		NewTrackingError(),
		NewArrivals(),
		NewFirstArrival(),
		NewFaults(),
	}
}
