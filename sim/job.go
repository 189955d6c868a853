package sim

import (
	"fmt"
)

// JobState is the lifecycle state of a job.
type JobState string

const (
	StatePending   JobState = "pending"
	StateRunning   JobState = "running"
	StateCompleted JobState = "completed"

	// StateError marks a job failed from a live state. The tick cycle never
	// produces it; it exists for callers that inject failures externally.
	StateError JobState = "error"
)

// Job is a GPU workload tracked by the cluster. Static fields describe the
// request; runtime fields accumulate as the tick cycle drives the job from
// pending through running to completed.
type Job struct {
	ID         string
	NumGPU     int
	SubmitTime float64
	Iterations int
	ModelName  string
	Duration   float64 // total execution time required, seconds
	Interval   float64 // seconds per iteration, informational

	State         JobState
	StartTime     float64
	EndTime       float64
	ExecutionTime float64 // seconds of execution accrued so far
	PendingTime   float64 // seconds spent waiting in the queue
	AllocatedGPUs []string
}

// Transition moves the job to a new state, panicking on any edge the
// lifecycle does not permit. Completed and error are terminal; the only
// other legal moves are pending->running and running->completed, with
// error reachable from either live state.
func (j *Job) Transition(to JobState) {
	ok := false
	switch j.State {
	case StatePending:
		ok = to == StateRunning || to == StateError
	case StateRunning:
		ok = to == StateCompleted || to == StateError
	case StateCompleted, StateError:
		ok = false
	}
	if !ok {
		panic(fmt.Sprintf("job %s: illegal transition %s -> %s", j.ID, j.State, to))
	}
	j.State = to
}

// RemainingTime estimates the execution time still owed. For a running job
// this is duration minus accrued execution, floored at zero; any other
// state owes the full duration.
func (j *Job) RemainingTime() float64 {
	if j.State == StateRunning {
		return max(0, j.Duration-j.ExecutionTime)
	}
	return j.Duration
}

// TotalTime is the span from submission to completion, or to now for a job
// still in flight.
func (j *Job) TotalTime(now float64) float64 {
	if j.State == StateCompleted {
		return j.EndTime - j.SubmitTime
	}
	return now - j.SubmitTime
}

// GPUSeconds is the job's total resource demand, GPUs times duration.
func (j *Job) GPUSeconds() float64 {
	return float64(j.NumGPU) * j.Duration
}

func (j *Job) String() string {
	return fmt.Sprintf("%s[%s gpu=%d dur=%.1fs model=%s]",
		j.ID, j.State, j.NumGPU, j.Duration, j.ModelName)
}
