package joint

import (
	"math"

	"github.com/rcjetpilot/rotors-simulator/internal/world"
)

// Revolute is a simulated rotational joint carrying a gravity-loaded arm
// with viscous friction. State is [angle, angular velocity]; the torque
// applied through SetForce acts until the next call.
type Revolute struct {
	Mass    float64
	Length  float64
	Damping float64
	Gravity float64

	lower    float64
	upper    float64
	hasLower bool
	hasUpper bool

	theta float64
	omega float64
	force float64
}

func NewRevolute() *Revolute {
	return &Revolute{
		Mass:    1.0,
		Length:  1.0,
		Damping: 0.1,
		Gravity: 9.81,
	}
}

func (r *Revolute) Angle() float64    { return r.theta }
func (r *Revolute) Velocity() float64 { return r.omega }

// SetForce applies a generalized torque to the joint axis. This is the
// controller's only mutating effect on the simulated mechanism.
func (r *Revolute) SetForce(torque float64) { r.force = torque }

// Force returns the most recently applied torque.
func (r *Revolute) Force() float64 { return r.force }

func (r *Revolute) SetLowerLimit(limit float64) {
	r.lower = limit
	r.hasLower = true
}

func (r *Revolute) SetUpperLimit(limit float64) {
	r.upper = limit
	r.hasUpper = true
}

// SetState overwrites the joint state, keeping the measurement accessors in
// step with the world's integration loop.
func (r *Revolute) SetState(theta, omega float64) {
	r.theta = theta
	r.omega = omega
}

func (r *Revolute) StateDim() int   { return 2 }
func (r *Revolute) ControlDim() int { return 1 }

// Derive computes the joint acceleration under gravity, damping and the
// torque applied through SetForce. The control vector is ignored: torque
// enters through the write-through path only.
func (r *Revolute) Derive(x world.State, u world.Control, t float64) world.State {
	theta := x[0]
	omega := x[1]

	alpha := (-r.Damping*omega - r.Mass*r.Gravity*r.Length*math.Sin(theta) + r.force) /
		(r.Mass * r.Length * r.Length)

	return world.State{omega, alpha}
}

// Constrain enforces the configured travel limits as hard stops: the joint
// rests at the limit with zero velocity instead of passing through it.
func (r *Revolute) Constrain(x world.State) world.State {
	theta := x[0]
	omega := x[1]

	if r.hasLower && theta < r.lower {
		theta = r.lower
		if omega < 0 {
			omega = 0
		}
	}
	if r.hasUpper && theta > r.upper {
		theta = r.upper
		if omega > 0 {
			omega = 0
		}
	}

	return world.State{theta, omega}
}

// Energy returns the mechanical energy of the arm, for drift checks.
func (r *Revolute) Energy(x world.State) float64 {
	v := r.Length * x[1]
	ke := 0.5 * r.Mass * v * v
	pe := r.Mass * r.Gravity * r.Length * (1.0 - math.Cos(x[0]))
	return ke + pe
}
