package servo

import "math"

// Defaults for the optional tunables. Required fields (JointName,
// MotorModel, MaxTorque, NoLoadSpeed) have no defaults: a descriptor that
// omits them is a configuration error, never silently filled in.
const (
	DefaultKp                    = 10.0
	DefaultKd                    = 5.0
	DefaultKi                    = 0.1
	DefaultMaxAngleErrorIntegral = 1.0
	DefaultMaxAngle              = math.Pi
	DefaultMinAngle              = -math.Pi
	DefaultCommandTopic          = "command/servo_motor"
	DefaultJointStateTopic       = "joint_state"
)

// Config holds the controller parameters. Immutable after construction.
type Config struct {
	RobotNamespace string
	JointName      string
	MotorModel     string

	MaxTorque             float64
	NoLoadSpeed           float64
	MaxAngleErrorIntegral float64
	MaxAngle              float64
	MinAngle              float64

	Kp float64
	Kd float64
	Ki float64

	// CommandTopic is the prefix the position and torque command topics
	// derive from.
	CommandTopic    string
	JointStateTopic string
}

// DefaultConfig returns a Config with every optional tunable set to its
// default and the required fields left empty.
func DefaultConfig() Config {
	return Config{
		Kp:                    DefaultKp,
		Kd:                    DefaultKd,
		Ki:                    DefaultKi,
		MaxAngleErrorIntegral: DefaultMaxAngleErrorIntegral,
		MaxAngle:              DefaultMaxAngle,
		MinAngle:              DefaultMinAngle,
		CommandTopic:          DefaultCommandTopic,
		JointStateTopic:       DefaultJointStateTopic,
	}
}

// Validate reports the first missing or inconsistent field.
func (c Config) Validate() error {
	if c.JointName == "" {
		return ErrNoJointName
	}
	if c.MotorModel == "" {
		return ErrNoMotorModel
	}
	if c.MaxTorque <= 0 {
		return ErrBadMaxTorque
	}
	if c.NoLoadSpeed <= 0 {
		return ErrBadNoLoadSpeed
	}
	if c.MaxAngleErrorIntegral <= 0 {
		return ErrBadIntegralLimit
	}
	if c.MinAngle > c.MaxAngle {
		return ErrBadTravelRange
	}
	return nil
}

// PositionCommandTopic is the topic position commands arrive on.
func (c Config) PositionCommandTopic() string { return c.CommandTopic + "_position" }

// TorqueCommandTopic is the topic torque commands arrive on.
func (c Config) TorqueCommandTopic() string { return c.CommandTopic + "_torque" }
