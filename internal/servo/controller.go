package servo

import (
	"sync"

	"github.com/rcjetpilot/rotors-simulator/internal/joint"
)

// Mode selects the active control law.
type Mode int

const (
	ModePosition Mode = iota
	ModeTorque
)

func (m Mode) String() string {
	switch m {
	case ModePosition:
		return "position"
	case ModeTorque:
		return "torque"
	}
	return "unknown"
}

// JointState is the telemetry record emitted once per step regardless of
// mode. Effort is the torque applied during the step.
type JointState struct {
	Stamp    float64
	FrameID  string
	Name     string
	Position float64
	Velocity float64
	Effort   float64
}

// Status is a consistent snapshot of the controller state, for display.
type Status struct {
	Mode        Mode
	PositionRef float64
	TorqueRef   float64
	Integral    float64
	Torque      float64
	Received    bool
}

// Controller drives one rotational joint to a commanded angle or torque,
// subject to the configured torque and travel limits.
//
// OnStep runs on the simulation goroutine once per tick. Command callbacks
// may arrive from any goroutine; a mutex keeps command mutation atomic with
// respect to an in-progress step.
type Controller struct {
	cfg   Config
	joint joint.Joint

	mu          sync.Mutex
	mode        Mode
	positionRef float64
	torqueRef   float64
	integral    float64
	received    bool
	prevSimTime float64
	lastTorque  float64
}

// New validates cfg, attaches the controller to its joint, and applies the
// configured travel limits. A nil joint is the unresolvable "joint not
// found" case and aborts initialization.
func New(cfg Config, j joint.Joint) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if j == nil {
		return nil, ErrNoJoint
	}

	j.SetLowerLimit(cfg.MinAngle)
	j.SetUpperLimit(cfg.MaxAngle)

	return &Controller{cfg: cfg, joint: j}, nil
}

func (c *Controller) Config() Config { return c.cfg }

// OnPositionCommand sets the position reference and switches to position
// mode. The raw value is not range-checked: output clamping bounds its
// downstream effect.
func (c *Controller) OnPositionCommand(angle float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.positionRef = angle
	c.received = true
	c.mode = ModePosition
}

// OnTorqueCommand sets the torque reference and switches to torque mode.
func (c *Controller) OnTorqueCommand(torque float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.torqueRef = torque
	c.received = true
	c.mode = ModeTorque
}

// OnStep runs one control cycle: it derives the sampling interval from the
// simulation clock, computes the torque for the active mode, writes it
// through to the joint, and returns it with the telemetry record for this
// step. Before the first command arrives no torque is applied.
func (c *Controller) OnStep(simTime, angle, velocity float64) (float64, JointState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	dt := simTime - c.prevSimTime
	c.prevSimTime = simTime
	// Pathological timesteps (pause/resume, first step) are bounded here
	// rather than rejected.
	dt = clamp(dt, 1.0, 0.001)

	if !c.received {
		return c.lastTorque, c.jointState(simTime, angle, velocity)
	}

	var torque float64
	switch c.mode {
	case ModePosition:
		angleError := joint.AngleDiff(c.positionRef, angle)
		c.integral += angleError * dt
		c.integral = clamp(c.integral, c.cfg.MaxAngleErrorIntegral, -c.cfg.MaxAngleErrorIntegral)
		torque = c.cfg.Kp*angleError - c.cfg.Kd*velocity + c.cfg.Ki*c.integral
		torque = clamp(torque, c.cfg.MaxTorque, -c.cfg.MaxTorque)
	case ModeTorque:
		torque = clamp(c.torqueRef, c.cfg.MaxTorque, -c.cfg.MaxTorque)
	}

	c.joint.SetForce(torque)
	c.lastTorque = torque

	return torque, c.jointState(simTime, angle, velocity)
}

func (c *Controller) jointState(simTime, angle, velocity float64) JointState {
	return JointState{
		Stamp:    simTime,
		FrameID:  c.cfg.RobotNamespace,
		Name:     c.cfg.JointName,
		Position: angle,
		Velocity: velocity,
		Effort:   c.lastTorque,
	}
}

// Snapshot returns the current controller state under the lock.
func (c *Controller) Snapshot() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		Mode:        c.mode,
		PositionRef: c.positionRef,
		TorqueRef:   c.torqueRef,
		Integral:    c.integral,
		Torque:      c.lastTorque,
		Received:    c.received,
	}
}

// clamp bounds v by the upper limit first, then the lower. When the bounds
// cross, the lower bound wins.
func clamp(v, upper, lower float64) float64 {
	if v > upper {
		v = upper
	}
	if v < lower {
		v = lower
	}
	return v
}
