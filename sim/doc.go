// Package sim provides the discrete-event simulation engine for swarms of oblivious
// point robots running Look-Compute-Move cycles.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - robot.go: Robot snapshots and the SLEEPING → COMPUTING → MOVING cycle
//   - event.go: Event types, batches of simultaneous events (CalculatedEvent)
//   - simulator.go: the lazily grown timeline and event application
//
// # Architecture
//
// The sim package defines the engine and its contracts; supporting code lives in
// sub-packages:
//   - sim/geom/: vectors, circles, smallest enclosing circle
//   - sim/path/: linear, circular and combined robot paths
//   - sim/transform/: robot-local coordinate frames
//   - sim/algorithm/: a small catalogue of robot strategies
//   - sim/scenario/: robot file and schedule file parsers
//   - sim/trace/: decision trace recording
//
// # Key Interfaces
//
// The extension points are single-method interfaces:
//   - Algorithm: compute a path from a local snapshot of visible robots
//   - Scheduler: choose the next batch of simultaneous state transitions
//     (FSYNC, SSYNC, ASYNC, or replayed from a schedule file)
//   - transform.Transform: convert between global and robot-local frames
package sim
