package sim

import (
	"fmt"
)

// Scheduler selects the next pending job to attempt placement for.
// Called repeatedly during a tick's scheduling pass.
//
// Implementations MUST NOT modify the pending slice or the jobs in it;
// only the returned pointer is used. An empty pending set yields nil,
// never an error. Selection must be a deterministic total order: primary
// metric first, ties broken by job ID, so repeated calls on an unchanged
// set are reproducible.
type Scheduler interface {
	SelectJob(pending []*Job, now float64) *Job
}

// argminJob returns the pending job minimizing key, ties broken by smaller ID.
func argminJob(pending []*Job, key func(*Job) float64) *Job {
	if len(pending) == 0 {
		return nil
	}
	best, bestKey := pending[0], key(pending[0])
	for _, j := range pending[1:] {
		k := key(j)
		if k < bestKey || (k == bestKey && j.ID < best.ID) {
			best, bestKey = j, k
		}
	}
	return best
}

// argmaxJob returns the pending job maximizing key, ties broken by smaller ID.
func argmaxJob(pending []*Job, key func(*Job) float64) *Job {
	if len(pending) == 0 {
		return nil
	}
	best, bestKey := pending[0], key(pending[0])
	for _, j := range pending[1:] {
		k := key(j)
		if k > bestKey || (k == bestKey && j.ID < best.ID) {
			best, bestKey = j, k
		}
	}
	return best
}

// FIFOScheduler selects the job with the earliest submit time.
type FIFOScheduler struct{}

func (f *FIFOScheduler) SelectJob(pending []*Job, _ float64) *Job {
	return argminJob(pending, func(j *Job) float64 { return j.SubmitTime })
}

// SJFScheduler selects the job with the smallest GPU demand.
// Warning: SJF can starve wide jobs under sustained load of narrow ones.
type SJFScheduler struct{}

func (s *SJFScheduler) SelectJob(pending []*Job, _ float64) *Job {
	return argminJob(pending, func(j *Job) float64 { return float64(j.NumGPU) })
}

// ShortestScheduler selects the job with the smallest remaining time.
type ShortestScheduler struct{}

func (s *ShortestScheduler) SelectJob(pending []*Job, _ float64) *Job {
	return argminJob(pending, (*Job).RemainingTime)
}

// ShortestGPUScheduler selects the job with the smallest total GPU-seconds
// (duration × GPU demand). Pending jobs have their full duration remaining,
// so this matches ordering by remaining GPU time.
type ShortestGPUScheduler struct{}

func (s *ShortestGPUScheduler) SelectJob(pending []*Job, _ float64) *Job {
	return argminJob(pending, (*Job).GPUSeconds)
}

// ValidSchedulers is the set of recognized scheduler names.
// Shared by PolicyBundle.Validate and NewScheduler to avoid duplication.
var ValidSchedulers = map[string]bool{
	"":                    true,
	"fifo":                true,
	"sjf":                 true,
	"shortest":            true,
	"shortest-gpu":        true,
	"hybrid-priority":     true,
	"predictive-backfill": true,
	"smart-batch":         true,
	"adaptive":            true,
}

// NewScheduler creates a Scheduler by name with default parameters.
// Empty string defaults to FIFO (for CLI flag default compatibility).
// Unknown names are a configuration error. Parameterized policies have
// their own constructors for non-default configuration.
func NewScheduler(name string) (Scheduler, error) {
	switch name {
	case "", "fifo":
		return &FIFOScheduler{}, nil
	case "sjf":
		return &SJFScheduler{}, nil
	case "shortest":
		return &ShortestScheduler{}, nil
	case "shortest-gpu":
		return &ShortestGPUScheduler{}, nil
	case "hybrid-priority":
		return NewHybridPriorityScheduler(DefaultHybridPriorityConfig())
	case "predictive-backfill":
		return NewPredictiveBackfillScheduler(DefaultPredictiveBackfillConfig())
	case "smart-batch":
		return NewSmartBatchScheduler(DefaultSmartBatchConfig())
	case "adaptive":
		return NewAdaptiveScheduler(DefaultAdaptiveConfig())
	default:
		return nil, fmt.Errorf("unknown scheduler %q", name)
	}
}

// SchedulerNames lists the canonical scheduler names (no empty alias),
// in registry order. Used by the compare command.
func SchedulerNames() []string {
	return []string{
		"fifo", "sjf", "shortest", "shortest-gpu",
		"hybrid-priority", "predictive-backfill", "smart-batch", "adaptive",
	}
}
