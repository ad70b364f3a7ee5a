package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rcjetpilot/rotors-simulator/internal/scenario"
	"github.com/rcjetpilot/rotors-simulator/internal/servo"
)

const (
	DefaultDt         = 0.01
	DefaultDuration   = 10.0
	DefaultIntegrator = "rk4"
)

// Config is the YAML descriptor for a servo simulation: the controller
// parameters, the run settings, and an optional command schedule.
type Config struct {
	Servo    ServoConfig     `yaml:"servo"`
	Sim      SimConfig       `yaml:"sim"`
	Commands []scenario.Step `yaml:"commands,omitempty"`
}

// ServoConfig mirrors the plugin descriptor fields. joint_name, motor_model,
// max_torque and no_load_speed are required; the rest default.
type ServoConfig struct {
	RobotNamespace        string  `yaml:"robot_namespace,omitempty"`
	JointName             string  `yaml:"joint_name"`
	MotorModel            string  `yaml:"motor_model"`
	MaxTorque             float64 `yaml:"max_torque"`
	NoLoadSpeed           float64 `yaml:"no_load_speed"`
	MaxAngleErrorIntegral float64 `yaml:"max_angle_error_integral"`
	MaxAngle              float64 `yaml:"max_angle"`
	MinAngle              float64 `yaml:"min_angle"`
	Kp                    float64 `yaml:"kp"`
	Kd                    float64 `yaml:"kd"`
	Ki                    float64 `yaml:"ki"`
	CommandTopic          string  `yaml:"command_topic"`
	JointStateTopic       string  `yaml:"joint_state_topic"`
}

type SimConfig struct {
	Dt           float64 `yaml:"dt"`
	Duration     float64 `yaml:"duration"`
	Integrator   string  `yaml:"integrator"`
	InitAngle    float64 `yaml:"init_angle"`
	InitVelocity float64 `yaml:"init_velocity"`
}

func DefaultConfig() *Config {
	d := servo.DefaultConfig()
	return &Config{
		Servo: ServoConfig{
			MaxAngleErrorIntegral: d.MaxAngleErrorIntegral,
			MaxAngle:              d.MaxAngle,
			MinAngle:              d.MinAngle,
			Kp:                    d.Kp,
			Kd:                    d.Kd,
			Ki:                    d.Ki,
			CommandTopic:          d.CommandTopic,
			JointStateTopic:       d.JointStateTopic,
		},
		Sim: SimConfig{
			Dt:         DefaultDt,
			Duration:   DefaultDuration,
			Integrator: DefaultIntegrator,
		},
	}
}

// Load reads a descriptor over the defaults, so an omitted optional field
// keeps its default while an omitted required field fails validation later.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ServoConfig converts the descriptor to the controller's Config. The
// result still needs Validate; required fields are never defaulted here.
func (c *Config) ServoConfig() servo.Config {
	sc := servo.Config{
		RobotNamespace:        c.Servo.RobotNamespace,
		JointName:             c.Servo.JointName,
		MotorModel:            c.Servo.MotorModel,
		MaxTorque:             c.Servo.MaxTorque,
		NoLoadSpeed:           c.Servo.NoLoadSpeed,
		MaxAngleErrorIntegral: c.Servo.MaxAngleErrorIntegral,
		MaxAngle:              c.Servo.MaxAngle,
		MinAngle:              c.Servo.MinAngle,
		Kp:                    c.Servo.Kp,
		Kd:                    c.Servo.Kd,
		Ki:                    c.Servo.Ki,
		CommandTopic:          c.Servo.CommandTopic,
		JointStateTopic:       c.Servo.JointStateTopic,
	}
	if sc.CommandTopic == "" {
		sc.CommandTopic = servo.DefaultCommandTopic
	}
	if sc.JointStateTopic == "" {
		sc.JointStateTopic = servo.DefaultJointStateTopic
	}
	return sc
}
