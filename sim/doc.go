// Package sim provides the discrete-time traffic engine: a grid of
// signalised intersections, vehicles that follow each other and obey the
// signals, and a congestion cost (fitness) recomputed every tick.
//
// # Reading Guide
//
// Start with these files:
//   - intersection.go: the NS -> ALL_RED -> EW -> ALL_RED signal cycle
//   - vehicle.go: kinematics, signal compliance and gap keeping
//   - world.go: per-tick orchestration, spawning, retirement, heat telemetry
//   - fitness.go: the weighted congestion cost
//
// # Architecture
//
// A World is single-goroutine and owns everything it touches, including its
// PartitionedRNG. Independent Worlds share nothing, so a headless evaluation
// (sim/anneal) may advance its own World concurrently with the live one.
// Read-only views for a renderer are produced by World.Snapshot.
//
// Sub-packages:
//   - sim/anneal/: headless evaluator and the simulated-annealing controller
//   - sim/trace/: per-outcome search records and their summary
package sim
