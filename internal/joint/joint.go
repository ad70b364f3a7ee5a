// Package joint models a single-degree-of-freedom rotational joint: the
// mechanical connection the servo controller reads measurements from and
// writes its torque back to.
package joint

import "math"

// Joint is the surface the controller sees: angle and angular velocity
// measurements, a generalized force input, and travel limit configuration.
type Joint interface {
	Angle() float64
	Velocity() float64
	SetForce(torque float64)
	SetLowerLimit(limit float64)
	SetUpperLimit(limit float64)
}

// Normalize wraps an angle into (-pi, pi].
func Normalize(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// AngleDiff returns the shortest signed angular difference a-b. A reference
// across the +-pi seam produces an error that commands the short way around.
func AngleDiff(a, b float64) float64 {
	return Normalize(a - b)
}
