// Package servo implements the closed-loop controller for a single
// rotational joint: a servo motor driven either to a target angular
// position or to a target torque.
//
// The controller is a discrete-time PID position loop with direct integral
// clamping as anti-windup, a torque-mode pass-through, and a two-state
// command mode machine switched by whichever command arrived last:
//
//   - [Controller.OnPositionCommand]: sets the angle reference, position mode
//   - [Controller.OnTorqueCommand]: sets the torque reference, torque mode
//   - [Controller.OnStep]: one control cycle per simulation tick
//
// The controller has no transport dependency: the host wires the entry
// points to its own event sources and owns the step clock. Until the first
// command of either kind arrives the controller applies no torque and only
// emits telemetry.
package servo
