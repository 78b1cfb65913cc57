package plant

import (
	"math"

	"github.com/san-kum/swervesim/internal/sim"
)

// Steering models a steering motor and gearbox as a first-order velocity
// lag. State is [position (rev, unwrapped), velocity (rev/s)]; the single
// control input is the duty cycle.
type Steering struct {
	FreeSpeed    float64 // rev/s at duty 1.0
	TimeConstant float64 // s
}

func NewSteering(freeSpeed, timeConstant float64) *Steering {
	return &Steering{FreeSpeed: freeSpeed, TimeConstant: timeConstant}
}

func (s *Steering) Derivative(x sim.State, u sim.Control, t float64) sim.State {
	duty := 0.0
	if len(u) > 0 {
		duty = clampDuty(u[0])
	}
	return sim.State{x[1], (duty*s.FreeSpeed - x[1]) / s.TimeConstant}
}

func (s *Steering) StateDim() int   { return 2 }
func (s *Steering) ControlDim() int { return 1 }

func clampDuty(d float64) float64 {
	return math.Max(-1, math.Min(1, d))
}
