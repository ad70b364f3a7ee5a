// Package world provides the simulation environment that owns the physical
// joint model and drives the control loop.
//
// The package defines the primitives shared by the rest of the module:
//
//   - [State]: vector representing mechanism state
//   - [System]: interface for the equations of motion (dX/dt = f(X, u, t))
//   - [Integrator]: numerical stepper interface
//   - [Controller]: per-tick control callback
//   - [World]: fixed-timestep run loop
//
// # Example
//
//	j := joint.NewRevolute()
//	integ := integrators.NewRK4()
//	w := world.New(j, integ, rig)
//	result, _ := w.Run(ctx, x0, cfg)
//
// # Thread Safety
//
// World instances are NOT thread-safe: the run loop invokes the controller
// synchronously on its own goroutine, once per tick. Anything the controller
// shares with other goroutines must carry its own synchronization.
package world
