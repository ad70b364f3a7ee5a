package metrics

import (
	"math"

	"github.com/rcjetpilot/rotors-simulator/internal/joint"
	"github.com/rcjetpilot/rotors-simulator/internal/world"
)

// Reference reports the current position reference and whether position
// control is active at time t.
type Reference func(t float64) (ref float64, active bool)

// TrackingError is the RMS wrapped angle error against the live position
// reference. Samples outside position mode are skipped.
type TrackingError struct {
	name    string
	ref     Reference
	sumSq   float64
	samples int
}

func NewTrackingError(ref Reference) *TrackingError {
	return &TrackingError{name: "tracking_error", ref: ref}
}

func (e *TrackingError) Name() string { return e.name }

func (e *TrackingError) Observe(x world.State, u world.Control, t float64) {
	ref, active := e.ref(t)
	if !active || len(x) == 0 {
		return
	}
	err := joint.AngleDiff(ref, x[0])
	e.sumSq += err * err
	e.samples++
}

func (e *TrackingError) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return math.Sqrt(e.sumSq / float64(e.samples))
}

func (e *TrackingError) Reset() {
	e.sumSq = 0
	e.samples = 0
}
