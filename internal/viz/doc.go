// Package viz renders a running simulation in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: Bubble Tea model driving a live [engine.Simulator]
//   - [Canvas]: Braille-based pixel canvas for high-fidelity rendering
//   - An energy sparkline and a warning log alongside the scene view
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to initial state
//	N     - Single step (shift for ten)
//	+/-   - Adjust playback speed
//	?     - Show help overlay
//	Q     - Quit
//
// Wall-clock time between frames is fed through [engine.Simulator.Advance],
// so the view stays smooth even when frames arrive unevenly.
package viz
