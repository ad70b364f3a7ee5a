package bus

// CommandPosition requests the servo hold a target angle, in radians.
type CommandPosition struct {
	MotorAngle float64
}

// CommandTorque requests the servo apply a constant torque.
type CommandTorque struct {
	Torque float64
}
