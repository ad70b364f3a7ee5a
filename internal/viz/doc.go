// Package viz renders a running servo rig in the terminal.
//
// The live view is built on the Bubble Tea framework:
//
//   - [Model]: real-time simulation with interactive command injection
//   - [Canvas]: Braille-based pixel canvas for the arm rendering
//
// # Key Bindings
//
//	Left/Right - Nudge the position reference
//	Up/Down    - Nudge the torque reference
//	Space      - Pause/Resume simulation
//	R          - Reset to initial state
//	?          - Show help overlay
//
// Commands injected from the keyboard travel through the experiment's
// message bus, so the controller sees them exactly as it would a
// scheduled scenario step.
package viz
