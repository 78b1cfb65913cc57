package metrics

import (
	"math"

	"github.com/san-kum/swervesim/internal/sim"
)

// ControlEffort is the mean |duty| over all ticks.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(s sim.Sample) {
	c.sum += math.Abs(s.Duty)
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// PeakDuty is the largest |duty| commanded in one tick.
type PeakDuty struct {
	peak float64
}

func NewPeakDuty() *PeakDuty { return &PeakDuty{} }

func (p *PeakDuty) Name() string { return "peak_duty" }

func (p *PeakDuty) Observe(s sim.Sample) {
	p.peak = math.Max(p.peak, math.Abs(s.Duty))
}

func (p *PeakDuty) Value() float64 { return p.peak }

func (p *PeakDuty) Reset() { p.peak = 0 }
