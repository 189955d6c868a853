// ClusterManager owns the simulation: the fixed node pool, the
// pending/running/completed job collections, the simulated clock, and the
// active scheduler/placement pair. All job state transitions happen here.

package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ClusterManager drives jobs through pending → running → completed over a
// fixed pool of multi-GPU nodes. It is single-threaded: a Tick call runs to
// completion before returning and is the unit of atomicity observable by
// callers. If embedded in a concurrent host, ticks must be serialized and
// the manager confined to one goroutine.
type ClusterManager struct {
	nodes []*Node // fixed order; placement tie-breaks depend on it

	pending   []*Job
	running   []*Job
	completed []*Job

	scheduler     Scheduler
	schedulerName string
	placement     Placement
	placementName string

	Metrics *MetricsCollector

	clock      float64
	jobCounter int
}

// NewClusterManager builds a cluster of numNodes nodes with gpusPerNode GPU
// slots each. The pool is fixed for the manager's lifetime. The default
// policies are fifo + first-fit.
func NewClusterManager(numNodes, gpusPerNode int) (*ClusterManager, error) {
	if numNodes <= 0 {
		return nil, fmt.Errorf("numNodes must be positive, got %d", numNodes)
	}
	if gpusPerNode <= 0 {
		return nil, fmt.Errorf("gpusPerNode must be positive, got %d", gpusPerNode)
	}

	nodes := make([]*Node, numNodes)
	for i := range nodes {
		nodes[i] = NewNode(fmt.Sprintf("node-%d", i), gpusPerNode)
	}

	scheduler, _ := NewScheduler("fifo")
	placement, _ := NewPlacement("first-fit")

	return &ClusterManager{
		nodes:         nodes,
		scheduler:     scheduler,
		schedulerName: "fifo",
		placement:     placement,
		placementName: "first-fit",
		Metrics:       NewMetricsCollector(),
	}, nil
}

// Submit creates a job in the pending collection at the current simulated
// time and returns its ID.
func (c *ClusterManager) Submit(numGPU, iterations int, modelName string, duration, interval float64) string {
	return c.SubmitAt(numGPU, iterations, modelName, duration, interval, c.clock)
}

// SubmitAt is Submit with an explicit submit time, for pre-loading workloads
// whose arrivals predate (or straddle) the current clock.
func (c *ClusterManager) SubmitAt(numGPU, iterations int, modelName string, duration, interval, submitTime float64) string {
	if numGPU <= 0 {
		panic(fmt.Sprintf("submit: non-positive GPU demand %d", numGPU))
	}

	c.jobCounter++
	jobID := fmt.Sprintf("job-%06d", c.jobCounter)

	job := &Job{
		ID:         jobID,
		NumGPU:     numGPU,
		SubmitTime: submitTime,
		Iterations: iterations,
		ModelName:  modelName,
		Duration:   duration,
		Interval:   interval,
		State:      StatePending,
	}
	c.pending = append(c.pending, job)

	if numGPU > c.widestNode() {
		// no single node can ever satisfy this demand; the job will pend forever
		logrus.Warnf("[tick %08.1f] %s demands %d GPUs but the widest node has %d",
			c.clock, jobID, numGPU, c.widestNode())
	}
	logrus.Infof("[tick %08.1f] Submitted %s: %d GPUs, %s, duration %.1fs",
		c.clock, jobID, numGPU, modelName, duration)
	return jobID
}

func (c *ClusterManager) widestNode() int {
	widest := 0
	for _, n := range c.nodes {
		widest = max(widest, n.NumGPU)
	}
	return widest
}

// Tick advances simulated time by dt and performs one full update:
//
//  1. accrue execution time on running jobs; complete and release finished ones
//  2. accrue pending time on waiting jobs
//  3. sample cluster utilization and fragmentation
//  4. scheduling pass: repeatedly select + place until the queue drains or a
//     selection cannot be placed
//
// The pass stops entirely at the first unplaceable selection: later,
// smaller pending jobs are not considered again until the next tick.
// Known limitation, kept deliberately: the "backfill"-named policies
// influence order of consideration, not gap-filling across a blocked head.
func (c *ClusterManager) Tick(dt float64) {
	if dt <= 0 {
		panic(fmt.Sprintf("tick: non-positive time step %v", dt))
	}
	c.clock += dt

	// Phase 1: advance running jobs. Completions are collected first and
	// applied after the scan so the running set is never mutated mid-iteration.
	var finished []*Job
	remaining := c.running[:0]
	for _, job := range c.running {
		job.ExecutionTime = min(job.ExecutionTime+dt, job.Duration)
		if job.ExecutionTime >= job.Duration {
			finished = append(finished, job)
		} else {
			remaining = append(remaining, job)
		}
	}
	c.running = remaining
	for _, job := range finished {
		c.completeJob(job)
	}

	// Phase 2: pending jobs accrue wait time
	for _, job := range c.pending {
		job.PendingTime += dt
	}

	// Phase 3: cluster-wide and per-node samples
	c.sampleMetrics()

	// Phase 4: scheduling pass
	c.scheduleJobs()
}

// scheduleJobs runs the per-tick scheduling pass with the active policies.
func (c *ClusterManager) scheduleJobs() {
	for len(c.pending) > 0 {
		job := c.scheduler.SelectJob(c.pending, c.clock)
		if job == nil {
			break
		}

		result := c.placement.PlaceJob(job, c.nodes)
		if result == nil {
			logrus.Debugf("[tick %08.1f] no node fits %s (%d GPUs); pass stopped",
				c.clock, job.ID, job.NumGPU)
			break
		}

		c.startJob(job, result)
		c.removePending(job)
	}
}

func (c *ClusterManager) startJob(job *Job, result *PlacementResult) {
	job.Transition(StateRunning)
	job.StartTime = c.clock
	job.AllocatedGPUs = make([]string, len(result.Slots))
	for i, slot := range result.Slots {
		job.AllocatedGPUs[i] = fmt.Sprintf("%s/gpu-%d", result.Node.ID, slot)
	}
	c.running = append(c.running, job)

	logrus.Infof("[tick %08.1f] Started %s on %s, slots %v",
		c.clock, job.ID, result.Node.ID, result.Slots)
}

func (c *ClusterManager) completeJob(job *Job) {
	job.Transition(StateCompleted)
	job.EndTime = c.clock

	released := 0
	for _, node := range c.nodes {
		if node.Holds(job.ID) {
			released = node.Release(job.ID)
			break
		}
	}
	if released != job.NumGPU {
		panic(fmt.Sprintf("job %s released %d slots, held %d", job.ID, released, job.NumGPU))
	}

	c.completed = append(c.completed, job)

	jct := job.TotalTime(c.clock)
	c.Metrics.RecordJobMetric(job.ID, "completion_time", jct)
	c.Metrics.RecordJobMetric(job.ID, "execution_time", job.ExecutionTime)
	c.Metrics.RecordJobMetric(job.ID, "pending_time", job.PendingTime)

	logrus.Infof("[tick %08.1f] Completed %s in %.2fs (waited %.2fs)",
		c.clock, job.ID, jct, job.PendingTime)
}

func (c *ClusterManager) removePending(job *Job) {
	for i, j := range c.pending {
		if j == job {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return
		}
	}
	panic(fmt.Sprintf("job %s selected but not in pending collection", job.ID))
}

// sampleMetrics records the per-tick cluster and node samples.
func (c *ClusterManager) sampleMetrics() {
	totalGPUs, usedGPUs := 0, 0
	fragmentation := 0.0
	for _, n := range c.nodes {
		totalGPUs += n.NumGPU
		usedGPUs += n.NumGPU - n.FreeGPU
		if !n.IsIdle() && !n.IsFull() {
			fragmentation += float64(n.FreeGPU) / float64(n.NumGPU)
		}
	}

	utilization := 0.0
	if totalGPUs > 0 {
		utilization = float64(usedGPUs) / float64(totalGPUs) * 100
	}
	c.Metrics.RecordClusterMetric("gpu_utilization", utilization)
	c.Metrics.RecordClusterMetric("resource_fragmentation", fragmentation)

	for _, n := range c.nodes {
		c.Metrics.RecordNodeMetric(n.ID, "gpu_utilization", n.Utilization())
		c.Metrics.RecordNodeMetric(n.ID, "cpu_utilization", n.CPUUtilization)
		c.Metrics.RecordNodeMetric(n.ID, "memory_usage", n.MemoryUsage)
	}
}

// SetScheduler swaps the active scheduler by registry name (default
// parameters). Unknown names are a configuration error; the active policy
// is unchanged on error.
func (c *ClusterManager) SetScheduler(name string) error {
	s, err := NewScheduler(name)
	if err != nil {
		return err
	}
	if name == "" {
		name = "fifo"
	}
	c.SetSchedulerPolicy(name, s)
	return nil
}

// SetSchedulerPolicy installs an already-constructed scheduler, e.g. one
// built from a PolicyBundle with non-default parameters.
func (c *ClusterManager) SetSchedulerPolicy(name string, s Scheduler) {
	if s == nil {
		panic("SetSchedulerPolicy: nil scheduler")
	}
	c.scheduler = s
	c.schedulerName = name
	logrus.Infof("[tick %08.1f] Switched to %s scheduler", c.clock, name)
}

// SetPlacement swaps the active placement scheme by registry name.
// Unknown names are a configuration error.
func (c *ClusterManager) SetPlacement(name string) error {
	p, err := NewPlacement(name)
	if err != nil {
		return err
	}
	if name == "" {
		name = "first-fit"
	}
	c.placement = p
	c.placementName = name
	logrus.Infof("[tick %08.1f] Switched to %s placement", c.clock, name)
	return nil
}

// ClusterStatus is a point-in-time snapshot of the system. A pure value:
// presentation is the caller's concern.
type ClusterStatus struct {
	SimulationTime float64
	PendingJobs    int
	RunningJobs    int
	CompletedJobs  int
	TotalNodes     int
	GPUUtilization float64 // mean over all ticks so far, percent
	AverageJCT     float64
	Fragmentation  float64 // mean over all ticks so far
	Scheduler      string
	Placement      string
}

// Status returns the current system snapshot.
func (c *ClusterManager) Status() ClusterStatus {
	return ClusterStatus{
		SimulationTime: c.clock,
		PendingJobs:    len(c.pending),
		RunningJobs:    len(c.running),
		CompletedJobs:  len(c.completed),
		TotalNodes:     len(c.nodes),
		GPUUtilization: c.Metrics.GPUUtilization(),
		AverageJCT:     c.Metrics.AverageJCT(),
		Fragmentation:  c.Metrics.Fragmentation(),
		Scheduler:      c.schedulerName,
		Placement:      c.placementName,
	}
}

// Now returns the current simulated time.
func (c *ClusterManager) Now() float64 { return c.clock }

// Nodes returns the node pool in its fixed order. Callers must not mutate
// slot state directly; Node slots are owned by this manager's tick cycle.
func (c *ClusterManager) Nodes() []*Node { return c.nodes }

// PendingJobs returns the pending collection (oldest submission first).
func (c *ClusterManager) PendingJobs() []*Job { return c.pending }

// RunningJobs returns the running collection.
func (c *ClusterManager) RunningJobs() []*Job { return c.running }

// CompletedJobs returns the completed collection in completion order.
func (c *ClusterManager) CompletedJobs() []*Job { return c.completed }

// Job looks up a job by ID across all collections, or nil.
func (c *ClusterManager) Job(id string) *Job {
	for _, set := range [][]*Job{c.pending, c.running, c.completed} {
		for _, j := range set {
			if j.ID == id {
				return j
			}
		}
	}
	return nil
}
