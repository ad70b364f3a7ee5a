package config

import (
	"math"

	"github.com/rcjetpilot/rotors-simulator/internal/scenario"
)

func ref(v float64) *float64 { return &v }

// Presets are ready-made servo rigs with a command script. All of them use
// the same mechanical joint; they differ in gains, limits and schedule.
var Presets = map[string]*Config{
	"hold": {
		Servo: ServoConfig{
			JointName: "arm_joint", MotorModel: "dc_servo",
			MaxTorque: 20.0, NoLoadSpeed: 10.0,
			MaxAngleErrorIntegral: 1.0,
			MinAngle:              -1.5, MaxAngle: 1.5,
			Kp: 25.0, Kd: 4.0, Ki: 2.0,
		},
		Sim: SimConfig{Dt: 0.01, Duration: 10.0, Integrator: "rk4"},
		Commands: []scenario.Step{
			{At: 0.5, Position: ref(0.8)},
		},
	},
	"sweep": {
		Servo: ServoConfig{
			JointName: "arm_joint", MotorModel: "dc_servo",
			MaxTorque: 20.0, NoLoadSpeed: 10.0,
			MaxAngleErrorIntegral: 1.0,
			MinAngle:              -1.2, MaxAngle: 1.2,
			Kp: 30.0, Kd: 5.0, Ki: 1.0,
		},
		Sim: SimConfig{Dt: 0.01, Duration: 16.0, Integrator: "rk4"},
		Commands: []scenario.Step{
			{At: 0.5, Position: ref(1.0)},
			{At: 4.5, Position: ref(-1.0)},
			{At: 8.5, Position: ref(1.0)},
			{At: 12.5, Position: ref(0.0)},
		},
	},
	"spin": {
		Servo: ServoConfig{
			JointName: "arm_joint", MotorModel: "dc_servo",
			MaxTorque: 8.0, NoLoadSpeed: 10.0,
			MaxAngleErrorIntegral: 1.0,
			MinAngle:              -math.Pi, MaxAngle: math.Pi,
			Kp: 15.0, Kd: 2.0, Ki: 0.5,
		},
		Sim: SimConfig{Dt: 0.01, Duration: 12.0, Integrator: "rk4"},
		Commands: []scenario.Step{
			{At: 0.5, Torque: ref(6.0)},
			{At: 4.0, Torque: ref(-6.0)},
			{At: 8.0, Position: ref(0.0)},
		},
	},
	"weak": {
		Servo: ServoConfig{
			JointName: "arm_joint", MotorModel: "micro_servo",
			MaxTorque: 3.0, NoLoadSpeed: 6.0,
			MaxAngleErrorIntegral: 2.0,
			MinAngle:              -1.5, MaxAngle: 1.5,
			Kp: 40.0, Kd: 3.0, Ki: 4.0,
		},
		Sim: SimConfig{Dt: 0.01, Duration: 12.0, Integrator: "rk4"},
		Commands: []scenario.Step{
			{At: 0.5, Position: ref(1.2)},
		},
	},
}

func GetPreset(name string) *Config {
	return Presets[name]
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
