package integrators

import "github.com/san-kum/swervesim/internal/sim"

// Euler is the explicit first-order scheme. It is exact enough for the
// actuator lag at the default period and is the cheapest choice for sweeps.
type Euler struct{}

func NewEuler() *Euler { return &Euler{} }

// Step advances x by one forward step of length dt.
func (e *Euler) Step(dyn sim.Dynamics, x sim.State, u sim.Control, t float64, dt float64) sim.State {
	dx := dyn.Derivative(x, u, t)
	next := make(sim.State, len(x))
	for i, xi := range x {
		next[i] = xi + dt*dx[i]
	}
	return next
}
