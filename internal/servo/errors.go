package servo

import "errors"

// Configuration errors are fatal at initialization: the controller cannot
// run with a missing joint, motor model, or torque limit.
var (
	ErrNoJointName      = errors.New("servo: jointName is required")
	ErrNoMotorModel     = errors.New("servo: motorModel is required")
	ErrBadMaxTorque     = errors.New("servo: maxTorque must be positive")
	ErrBadNoLoadSpeed   = errors.New("servo: noLoadSpeed must be positive")
	ErrBadIntegralLimit = errors.New("servo: maxAngleErrorIntegral must be positive")
	ErrBadTravelRange   = errors.New("servo: minAngle must not exceed maxAngle")
	ErrNoJoint          = errors.New("servo: target joint not found")
)
