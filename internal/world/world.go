package world

import "context"

// World advances a mechanical system with a fixed timestep and invokes the
// attached controller once per tick, in lockstep with physics integration.
type World struct {
	sys        System
	integrator Integrator
	controller Controller
	metrics    []Metric
	observers  []Observer
}

func New(sys System, integrator Integrator, controller Controller) *World {
	return &World{
		sys:        sys,
		integrator: integrator,
		controller: controller,
	}
}

func (w *World) AddMetric(m Metric)     { w.metrics = append(w.metrics, m) }
func (w *World) AddObserver(o Observer) { w.observers = append(w.observers, o) }

func (w *World) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return ErrBadTimestep
	}
	if cfg.Duration <= 0 {
		return ErrBadDuration
	}
	return nil
}

func (w *World) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := w.validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(cfg.Duration / cfg.Dt)
	result := &Result{
		States:   make([]State, 0, steps+1),
		Controls: make([]Control, 0, steps),
		Times:    make([]float64, 0, steps+1),
		Metrics:  make(map[string]float64),
	}

	for _, m := range w.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0
	dt := cfg.Dt

	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		u := w.controller.Compute(x, t)

		for _, o := range w.observers {
			o.OnStep(x, u, t)
		}
		for _, m := range w.metrics {
			m.Observe(x, u, t)
		}

		x = w.integrator.Step(w.sys, x, u, t, dt)
		if c, ok := w.sys.(Constrained); ok {
			x = c.Constrain(x)
		}
		t += dt

		if cfg.ValidateState && !x.IsValid() {
			return result, &StepError{Step: i, Time: t, Wrapped: ErrInvalidState}
		}

		result.States = append(result.States, x.Clone())
		result.Controls = append(result.Controls, u.Clone())
		result.Times = append(result.Times, t)
		result.Steps++
	}

	for _, m := range w.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}
