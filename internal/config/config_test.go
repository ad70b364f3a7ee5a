package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rcjetpilot/rotors-simulator/internal/servo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Sim.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Sim.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if cfg.Servo.Kp != servo.DefaultKp {
		t.Errorf("kp default = %f, want %f", cfg.Servo.Kp, servo.DefaultKp)
	}
	if cfg.Servo.JointName != "" {
		t.Error("required joint_name must not default")
	}
}

func TestLoadKeepsDefaultsForOmittedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servo.yaml")
	data := `servo:
  joint_name: arm_joint
  motor_model: dc_servo
  max_torque: 5.0
  no_load_speed: 10.0
sim:
  duration: 3.0
commands:
  - at: 1.0
    position: 0.5
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Servo.Kp != servo.DefaultKp {
		t.Errorf("omitted kp = %f, want default %f", cfg.Servo.Kp, servo.DefaultKp)
	}
	if cfg.Sim.Dt != DefaultDt {
		t.Errorf("omitted dt = %f, want default %f", cfg.Sim.Dt, DefaultDt)
	}
	if cfg.Sim.Duration != 3.0 {
		t.Errorf("duration = %f, want 3.0", cfg.Sim.Duration)
	}
	if len(cfg.Commands) != 1 || cfg.Commands[0].Position == nil {
		t.Errorf("commands wrong: %+v", cfg.Commands)
	}

	sc := cfg.ServoConfig()
	if err := sc.Validate(); err != nil {
		t.Errorf("loaded config should validate: %v", err)
	}
}

func TestLoadMissingRequiredFieldFailsValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servo.yaml")
	data := `servo:
  joint_name: arm_joint
  motor_model: dc_servo
  no_load_speed: 10.0
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.ServoConfig().Validate(); err != servo.ErrBadMaxTorque {
		t.Errorf("expected ErrBadMaxTorque, got %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := GetPreset("sweep")
	if cfg == nil {
		t.Fatal("preset sweep missing")
	}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Servo.Kp != cfg.Servo.Kp || len(loaded.Commands) != len(cfg.Commands) {
		t.Errorf("round trip wrong: %+v", loaded)
	}
}

func TestGetPreset(t *testing.T) {
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for unknown preset")
	}

	for _, name := range ListPresets() {
		cfg := GetPreset(name)
		if cfg == nil {
			t.Fatalf("preset %s missing", name)
		}
		if err := cfg.ServoConfig().Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}
