// Package engine runs the fixed-step rigid body simulation.
//
// The package wraps a [scene.Scene] in a [Simulator] that owns the
// edit lifecycle and the integration loop:
//
//   - [Simulator]: state machine (Idle, Running, Paused) over a scene
//   - [Config]: gravity, ground plane, step size and safety limits
//   - [ObjectState]: immutable per-tick view of a single object
//   - [Diagnostics]: kinetic and elastic energy totals
//   - [Event]: non-fatal anomalies reported mid-run
//
// Each tick accumulates forces (gravity, springs, contact friction),
// advances velocities then positions with semi-implicit Euler, and
// resolves contacts, rope limits and pin joints positionally.
//
// # Example
//
//	sim, _ := engine.New(engine.DefaultConfig())
//	h, _ := sim.CreateObject(scene.ObjectSpec{Kind: "ball", Radius: 0.5, Mass: 1})
//	sim.Play()
//	sim.Advance(elapsed)
//	states := sim.Snapshot()
//
// # Thread Safety
//
// A Simulator is NOT thread-safe. Drive it from a single goroutine and
// hand Snapshot values to renderers or recorders.
package engine
