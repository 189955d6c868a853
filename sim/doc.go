// Package sim provides the core tick-based simulation engine for GPU
// cluster scheduling.
//
// # Reading Guide
//
// Start with these three files to understand the kernel:
//   - job.go: Job lifecycle (pending → running → completed) and state machine
//   - node.go: the GPU slot table and its allocate/release primitives
//   - cluster.go: ClusterManager, the tick loop and the scheduling pass
//
// # Architecture
//
// The engine is deliberately single-threaded and discrete-time-stepped:
// ClusterManager.Tick runs one full update to completion and is the unit of
// atomicity. The manager exclusively owns the job collections and performs
// all state transitions; each Node exclusively owns its slot table.
//
// # Key Interfaces
//
// The extension points are one-method interfaces:
//   - Scheduler: pick the next pending job to attempt (eight policies,
//     from FIFO to Adaptive-Multi-Factor; see scheduler.go and siblings)
//   - Placement: pick the node and perform the allocation (first-fit,
//     best-fit; see placement.go)
//
// Concrete policies are registered by name (NewScheduler, NewPlacement) and
// configured either with defaults or through a YAML PolicyBundle
// (bundle.go). Metrics sampled each tick and on every completion are
// aggregated by MetricsCollector (metrics.go).
package sim
