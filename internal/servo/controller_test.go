package servo

import (
	"math"
	"testing"
)

// fakeJoint records the limit and force writes the controller performs.
type fakeJoint struct {
	angle    float64
	velocity float64
	force    float64
	forced   int
	lower    float64
	upper    float64
}

func (f *fakeJoint) Angle() float64    { return f.angle }
func (f *fakeJoint) Velocity() float64 { return f.velocity }
func (f *fakeJoint) SetForce(torque float64) {
	f.force = torque
	f.forced++
}
func (f *fakeJoint) SetLowerLimit(limit float64) { f.lower = limit }
func (f *fakeJoint) SetUpperLimit(limit float64) { f.upper = limit }

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JointName = "arm_joint"
	cfg.MotorModel = "dc_servo"
	cfg.MaxTorque = 5.0
	cfg.NoLoadSpeed = 10.0
	cfg.Kp = 10.0
	cfg.Kd = 1.0
	cfg.Ki = 0.0
	cfg.MinAngle = -1.0
	cfg.MaxAngle = 1.0
	return cfg
}

func newTestController(t *testing.T, cfg Config) (*Controller, *fakeJoint) {
	t.Helper()
	j := &fakeJoint{}
	c, err := New(cfg, j)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return c, j
}

func TestNewAppliesTravelLimits(t *testing.T) {
	_, j := newTestController(t, testConfig())
	if j.lower != -1.0 || j.upper != 1.0 {
		t.Errorf("limits not applied: got [%f, %f]", j.lower, j.upper)
	}
}

func TestNewRejectsMissingJoint(t *testing.T) {
	if _, err := New(testConfig(), nil); err != ErrNoJoint {
		t.Errorf("expected ErrNoJoint, got %v", err)
	}
}

func TestIdleAppliesNoTorque(t *testing.T) {
	c, j := newTestController(t, testConfig())

	for i := 0; i < 10; i++ {
		torque, js := c.OnStep(float64(i)*0.01, 0.2, 0.0)
		if torque != 0 {
			t.Fatalf("step %d: idle torque = %f, want 0", i, torque)
		}
		if js.Effort != 0 {
			t.Fatalf("step %d: idle effort = %f, want 0", i, js.Effort)
		}
	}
	if j.forced != 0 {
		t.Errorf("joint force written %d times before first command", j.forced)
	}
}

func TestPositionStepSaturatesAtMaxTorque(t *testing.T) {
	c, j := newTestController(t, testConfig())

	c.OnPositionCommand(0.5)
	torque, js := c.OnStep(0.01, 0.0, 0.0)

	// kp*0.5 = 5.0, exactly at the torque limit.
	if torque != 5.0 {
		t.Errorf("torque = %f, want 5.0", torque)
	}
	if j.force != 5.0 {
		t.Errorf("joint force = %f, want 5.0", j.force)
	}
	if js.Effort != 5.0 {
		t.Errorf("effort = %f, want 5.0", js.Effort)
	}
}

func TestPositionProportionalTerm(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTorque = 100.0
	c, _ := newTestController(t, cfg)

	c.OnPositionCommand(0.3)
	torque, _ := c.OnStep(0.01, 0.1, 0.0)

	want := cfg.Kp * 0.2
	if math.Abs(torque-want) > 1e-9 {
		t.Errorf("torque = %f, want %f", torque, want)
	}
}

func TestDerivativeTermOpposesVelocity(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTorque = 100.0
	c, _ := newTestController(t, cfg)

	c.OnPositionCommand(0.0)
	torque, _ := c.OnStep(0.01, 0.0, 2.0)

	want := -cfg.Kd * 2.0
	if math.Abs(torque-want) > 1e-9 {
		t.Errorf("torque = %f, want %f", torque, want)
	}
}

func TestTorqueCommandClamped(t *testing.T) {
	c, j := newTestController(t, testConfig())

	c.OnTorqueCommand(10.0)
	torque, _ := c.OnStep(0.01, 0.0, 0.0)
	if torque != 5.0 {
		t.Errorf("torque = %f, want clamp at 5.0", torque)
	}

	c.OnTorqueCommand(-10.0)
	torque, _ = c.OnStep(0.02, 0.0, 0.0)
	if torque != -5.0 {
		t.Errorf("torque = %f, want clamp at -5.0", torque)
	}
	if j.force != -5.0 {
		t.Errorf("joint force = %f, want -5.0", j.force)
	}
}

func TestIntegralWindupClamped(t *testing.T) {
	cfg := testConfig()
	cfg.Kp = 0.0
	cfg.Kd = 0.0
	cfg.Ki = 1.0
	cfg.MaxAngleErrorIntegral = 2.0
	c, _ := newTestController(t, cfg)

	c.OnPositionCommand(1.0)

	// Hold a unit error with dt=0.5: the accumulator grows by 0.5 per step
	// until the clamp at 2.0 holds it there.
	var torque float64
	for i := 1; i <= 10; i++ {
		torque, _ = c.OnStep(float64(i)*0.5, 0.0, 0.0)
		if got := c.Snapshot().Integral; got > 2.0 || got < -2.0 {
			t.Fatalf("step %d: integral %f outside clamp", i, got)
		}
	}

	if got := c.Snapshot().Integral; got != 2.0 {
		t.Errorf("integral = %f, want clamp at 2.0", got)
	}
	if torque != 2.0 {
		t.Errorf("torque = %f, want ki*2.0 = 2.0", torque)
	}
}

func TestModeSwitchKeepsIntegral(t *testing.T) {
	cfg := testConfig()
	cfg.Ki = 1.0
	c, _ := newTestController(t, cfg)

	c.OnPositionCommand(0.5)
	c.OnStep(0.5, 0.0, 0.0)
	before := c.Snapshot().Integral
	if before == 0 {
		t.Fatal("integral did not accumulate")
	}

	c.OnTorqueCommand(1.0)
	if st := c.Snapshot(); st.Mode != ModeTorque {
		t.Errorf("mode = %v, want torque", st.Mode)
	}
	if got := c.Snapshot().Integral; got != before {
		t.Errorf("integral reset on mode switch: %f != %f", got, before)
	}

	c.OnPositionCommand(0.5)
	if st := c.Snapshot(); st.Mode != ModePosition {
		t.Errorf("mode = %v, want position", st.Mode)
	}
}

func TestLastCommandWins(t *testing.T) {
	c, _ := newTestController(t, testConfig())

	// Position then torque before the next step: the step must use torque
	// mode exclusively while the position reference is retained.
	c.OnPositionCommand(0.5)
	c.OnTorqueCommand(2.0)

	torque, _ := c.OnStep(0.01, 0.0, 0.0)
	if torque != 2.0 {
		t.Errorf("torque = %f, want torque-mode output 2.0", torque)
	}
	if st := c.Snapshot(); st.PositionRef != 0.5 {
		t.Errorf("position reference lost: %f", st.PositionRef)
	}
}

func TestTimestepClamp(t *testing.T) {
	cfg := testConfig()
	cfg.Kp = 0.0
	cfg.Kd = 0.0
	cfg.Ki = 1.0
	cfg.MaxAngleErrorIntegral = 100.0
	cfg.MaxTorque = 1000.0

	tests := []struct {
		name    string
		simTime float64
		wantDt  float64
	}{
		{"zero elapsed", 0.0, 0.001},
		{"negative elapsed", -3.0, 0.001},
		{"tiny elapsed", 1e-6, 0.001},
		{"huge elapsed", 5.0, 1.0},
		{"in range", 0.25, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestController(t, cfg)
			c.OnPositionCommand(1.0)
			// With kp=kd=0 and unit error the integral equals the clamped dt
			// after one step, exposing the internal value.
			c.OnStep(tt.simTime, 0.0, 0.0)
			if got := c.Snapshot().Integral; math.Abs(got-tt.wantDt) > 1e-12 {
				t.Errorf("dt = %f, want %f", got, tt.wantDt)
			}
		})
	}
}

func TestClampOrder(t *testing.T) {
	// Upper bound first, lower second: the lower bound wins if they cross.
	if got := clamp(0.0, 1.0, 0.001); got != 0.001 {
		t.Errorf("clamp(0, 1, 0.001) = %f, want 0.001", got)
	}
	if got := clamp(5.0, 1.0, 0.001); got != 1.0 {
		t.Errorf("clamp(5, 1, 0.001) = %f, want 1.0", got)
	}
	if got := clamp(-2.0, 1.0, -1.0); got != -1.0 {
		t.Errorf("clamp(-2, 1, -1) = %f, want -1.0", got)
	}
}

func TestTorqueAlwaysBounded(t *testing.T) {
	cfg := testConfig()
	cfg.Ki = 3.0
	cfg.MaxAngleErrorIntegral = 50.0
	c, _ := newTestController(t, cfg)

	refs := []float64{100, -100, math.Pi, 0, 42.5}
	for i, ref := range refs {
		if i%2 == 0 {
			c.OnPositionCommand(ref)
		} else {
			c.OnTorqueCommand(ref)
		}
		torque, _ := c.OnStep(float64(i)*0.3, 0.7, -4.0)
		if torque > cfg.MaxTorque || torque < -cfg.MaxTorque {
			t.Fatalf("ref %f: torque %f outside [-%f, %f]", ref, torque, cfg.MaxTorque, cfg.MaxTorque)
		}
	}
}

func TestWrappedAngleError(t *testing.T) {
	cfg := testConfig()
	cfg.MinAngle = -math.Pi
	cfg.MaxAngle = math.Pi
	cfg.Kp = 1.0
	cfg.Kd = 0.0
	cfg.MaxTorque = 100.0
	c, _ := newTestController(t, cfg)

	// Reference just past -pi, measurement just short of +pi: the short way
	// around is a small positive error, not nearly -2*pi.
	c.OnPositionCommand(-math.Pi + 0.1)
	torque, _ := c.OnStep(0.01, math.Pi-0.1, 0.0)
	if math.Abs(torque-0.2) > 1e-9 {
		t.Errorf("wrapped error torque = %f, want 0.2", torque)
	}
}

func TestTelemetryFields(t *testing.T) {
	cfg := testConfig()
	cfg.RobotNamespace = "robot1"
	c, _ := newTestController(t, cfg)

	c.OnTorqueCommand(1.5)
	_, js := c.OnStep(2.5, 0.3, -0.2)

	if js.Stamp != 2.5 || js.Name != "arm_joint" || js.FrameID != "robot1" {
		t.Errorf("telemetry identity wrong: %+v", js)
	}
	if js.Position != 0.3 || js.Velocity != -0.2 || js.Effort != 1.5 {
		t.Errorf("telemetry sample wrong: %+v", js)
	}
}
