package sim

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

type Control []float64

type Dynamics interface {
	Derivative(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

type Integrator interface {
	Step(dyn Dynamics, x State, u Control, t float64, dt float64) State
}

// Plant is the physical side of the loop, advanced between control ticks.
type Plant interface {
	Advance(dt float64) error
	State() State
}

// Ticker runs one control tick at simulated time t. A non-nil error is a
// fault the ticker has already handled; the run records it and continues.
type Ticker interface {
	Tick(t float64) (Sample, error)
}

// Sample is the record of one control tick.
type Sample struct {
	Time      float64 `json:"t"`
	Heading   float64 `json:"heading"`
	Target    float64 `json:"target"`
	HasTarget bool    `json:"has_target"`
	Duty      float64 `json:"duty"`
	Mode      string  `json:"mode"`
	Arrived   bool    `json:"arrived,omitempty"`
	Fault     string  `json:"fault,omitempty"`
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s Sample)
}

type Config struct {
	Period   float64
	Duration float64
}

func (c Config) Steps() int {
	return int(math.Round(c.Duration / c.Period))
}

type Result struct {
	Samples []Sample
	Metrics map[string]float64
	Faults  int
	Final   State
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
