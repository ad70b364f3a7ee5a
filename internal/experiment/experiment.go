// Package experiment wires a servo controller, its simulated joint, the
// message bus and a command schedule into a single runnable rig.
package experiment

import (
	"context"

	"github.com/rcjetpilot/rotors-simulator/internal/bus"
	"github.com/rcjetpilot/rotors-simulator/internal/joint"
	"github.com/rcjetpilot/rotors-simulator/internal/metrics"
	"github.com/rcjetpilot/rotors-simulator/internal/scenario"
	"github.com/rcjetpilot/rotors-simulator/internal/servo"
	"github.com/rcjetpilot/rotors-simulator/internal/world"
)

type Config struct {
	Servo        servo.Config
	Dt           float64
	Duration     float64
	Integrator   string
	InitAngle    float64
	InitVelocity float64
	Commands     []scenario.Step
}

// Experiment owns one servo rig for the lifetime of a run. Commands travel
// through the bus exactly as an external client's would; telemetry is
// captured off the joint-state topic.
type Experiment struct {
	cfg Config

	Joint      *joint.Revolute
	Controller *servo.Controller
	Bus        *bus.Bus

	schedule  *scenario.Schedule
	unsubs    []func()
	telemetry []servo.JointState
}

func New(cfg Config) (*Experiment, error) {
	j := joint.NewRevolute()
	ctrl, err := servo.New(cfg.Servo, j)
	if err != nil {
		return nil, err
	}
	sched, err := scenario.NewSchedule(cfg.Commands)
	if err != nil {
		return nil, err
	}

	e := &Experiment{
		cfg:        cfg,
		Joint:      j,
		Controller: ctrl,
		Bus:        bus.New(),
		schedule:   sched,
	}

	e.unsubs = append(e.unsubs,
		e.Bus.Subscribe(cfg.Servo.PositionCommandTopic(), func(msg any) {
			if m, ok := msg.(bus.CommandPosition); ok {
				ctrl.OnPositionCommand(m.MotorAngle)
			}
		}),
		e.Bus.Subscribe(cfg.Servo.TorqueCommandTopic(), func(msg any) {
			if m, ok := msg.(bus.CommandTorque); ok {
				ctrl.OnTorqueCommand(m.Torque)
			}
		}),
		e.Bus.Subscribe(cfg.Servo.JointStateTopic, func(msg any) {
			if js, ok := msg.(servo.JointState); ok {
				e.telemetry = append(e.telemetry, js)
			}
		}),
	)

	return e, nil
}

func (e *Experiment) Run(ctx context.Context) (*world.Result, error) {
	integ, err := GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return nil, err
	}

	w := world.New(e.Joint, integ, (*rig)(e))
	w.AddMetric(metrics.NewControlEffort())
	w.AddMetric(metrics.NewSaturation(e.cfg.Servo.MaxTorque))
	// A joint spinning past the motor's no-load speed has run away.
	w.AddMetric(metrics.NewStability(e.cfg.Servo.NoLoadSpeed))
	w.AddMetric(metrics.NewTrackingError(func(t float64) (float64, bool) {
		st := e.Controller.Snapshot()
		return st.PositionRef, st.Received && st.Mode == servo.ModePosition
	}))

	x0 := world.State{e.cfg.InitAngle, e.cfg.InitVelocity}
	cfg := world.Config{Dt: e.cfg.Dt, Duration: e.cfg.Duration, ValidateState: true}

	return w.Run(ctx, x0, cfg)
}

// Cycle runs one control cycle outside a batch run, for interactive
// stepping. The caller owns the state vector and the integration.
func (e *Experiment) Cycle(x world.State, t float64) world.Control {
	return (*rig)(e).Compute(x, t)
}

// Telemetry returns the joint states published during the run.
func (e *Experiment) Telemetry() []servo.JointState { return e.telemetry }

// Close releases the bus subscriptions.
func (e *Experiment) Close() {
	for _, unsub := range e.unsubs {
		unsub()
	}
	e.unsubs = nil
}

// rig adapts the servo step cycle to the world's controller callback: sync
// the joint's measurements, dispatch due commands, run the control cycle,
// publish telemetry.
type rig Experiment

func (r *rig) Compute(x world.State, t float64) world.Control {
	r.Joint.SetState(x[0], x[1])
	r.schedule.Dispatch(r.Bus, r.cfg.Servo.PositionCommandTopic(), r.cfg.Servo.TorqueCommandTopic(), t)

	torque, js := r.Controller.OnStep(t, x[0], x[1])
	r.Bus.Publish(r.cfg.Servo.JointStateTopic, js)

	return world.Control{torque}
}
