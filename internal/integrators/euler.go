package integrators

import "github.com/rcjetpilot/rotors-simulator/internal/world"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys world.System, x world.State, u world.Control, t float64, dt float64) world.State {
	dx := sys.Derive(x, u, t)
	result := make(world.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}
