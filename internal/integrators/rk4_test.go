package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/swervesim/internal/sim"
)

type simpleDynamics struct{}

func (s *simpleDynamics) Derivative(x sim.State, u sim.Control, t float64) sim.State {
	return sim.State{x[1], -x[0]}
}

func (s *simpleDynamics) StateDim() int   { return 2 }
func (s *simpleDynamics) ControlDim() int { return 0 }

// lag is a first-order response to a constant input: v' = (u - v) / tau.
type lag struct{ tau float64 }

func (l *lag) Derivative(x sim.State, u sim.Control, t float64) sim.State {
	return sim.State{x[1], (u[0] - x[1]) / l.tau}
}

func (l *lag) StateDim() int   { return 2 }
func (l *lag) ControlDim() int { return 1 }

func TestRK4Accuracy(t *testing.T) {
	dyn := &simpleDynamics{}
	integ := NewRK4()

	x := sim.State{1.0, 0.0}
	u := sim.Control{}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, u, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestIntegratorsFirstOrderLag(t *testing.T) {
	dyn := &lag{tau: 0.05}
	u := sim.Control{2.0}
	dt := 0.001

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			integ, err := ByName(name)
			if err != nil {
				t.Fatal(err)
			}
			x := sim.State{0, 0}
			for i := 0; i < 100; i++ {
				x = integ.Step(dyn, x, u, float64(i)*dt, dt)
			}
			want := 2.0 * (1 - math.Exp(-0.1/0.05))
			if math.Abs(x[1]-want) > 1e-2 {
				t.Errorf("velocity after 0.1s: got %.5f, expected %.5f", x[1], want)
			}
		})
	}
}

func TestByNameUnknown(t *testing.T) {
	if _, err := ByName("verlet"); err == nil {
		t.Error("expected error for unknown integrator")
	}
}

func TestEulerLagStep(t *testing.T) {
	dyn := &lag{tau: 0.05}
	x := sim.State{0.25, 0}

	next := NewEuler().Step(dyn, x, sim.Control{1}, 0, 0.01)

	if next[0] != 0.25 {
		t.Errorf("position moved on the first step: %f", next[0])
	}
	if math.Abs(next[1]-0.2) > 1e-12 {
		t.Errorf("velocity = %f, want 0.2", next[1])
	}
	if x[1] != 0 {
		t.Error("Step must not modify its input state")
	}
}
