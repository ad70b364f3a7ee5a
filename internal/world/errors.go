package world

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState indicates a state vector containing NaN or Inf.
	ErrInvalidState = errors.New("world: invalid state (NaN or Inf detected)")

	// ErrBadTimestep indicates a non-positive timestep.
	ErrBadTimestep = errors.New("world: timestep must be positive")

	// ErrBadDuration indicates a non-positive run duration.
	ErrBadDuration = errors.New("world: duration must be positive")
)

// StepError wraps an error with the step and simulation time it occurred at.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
