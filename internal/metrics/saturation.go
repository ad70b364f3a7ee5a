package metrics

import (
	"math"

	"github.com/rcjetpilot/rotors-simulator/internal/world"
)

// Saturation is the fraction of steps the actuator spends pinned at its
// torque limit. A value near 1 means the motor is undersized for the task.
type Saturation struct {
	name      string
	maxTorque float64
	saturated int
	samples   int
}

func NewSaturation(maxTorque float64) *Saturation {
	return &Saturation{name: "saturation", maxTorque: maxTorque}
}

func (s *Saturation) Name() string { return s.name }

func (s *Saturation) Observe(x world.State, u world.Control, t float64) {
	s.samples++
	for _, val := range u {
		if math.Abs(val) >= s.maxTorque-1e-12 {
			s.saturated++
			break
		}
	}
}

func (s *Saturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.saturated) / float64(s.samples)
}

func (s *Saturation) Reset() {
	s.saturated = 0
	s.samples = 0
}
