package sim

import (
	"fmt"
)

// PredictiveBackfillConfig configures the Predictive-Backfill scheduler.
type PredictiveBackfillConfig struct {
	// MinGPUThreshold is the largest GPU demand still considered a
	// "small" gap-filling job. Must be positive.
	MinGPUThreshold int

	// TimeWindow is the remaining-time bound (seconds) under which a job
	// counts as short enough not to block others. Must be positive.
	TimeWindow float64

	// EfficiencyThreshold is the iterations/(gpu×remaining) score above
	// which a job is taken immediately regardless of size. Must be positive.
	EfficiencyThreshold float64

	// PairCapacity bounds combined GPU demand in FindBestPair. Must be positive.
	PairCapacity int
}

// DefaultPredictiveBackfillConfig returns the stock parameters.
func DefaultPredictiveBackfillConfig() PredictiveBackfillConfig {
	return PredictiveBackfillConfig{
		MinGPUThreshold:     2,
		TimeWindow:          3600.0,
		EfficiencyThreshold: 0.1,
		PairCapacity:        8,
	}
}

// ValidatePredictiveBackfillConfig returns an error if the config is invalid.
func ValidatePredictiveBackfillConfig(cfg PredictiveBackfillConfig) error {
	if cfg.MinGPUThreshold <= 0 {
		return fmt.Errorf("MinGPUThreshold must be positive, got %d", cfg.MinGPUThreshold)
	}
	if cfg.TimeWindow <= 0 {
		return fmt.Errorf("TimeWindow must be positive, got %v", cfg.TimeWindow)
	}
	if cfg.EfficiencyThreshold <= 0 {
		return fmt.Errorf("EfficiencyThreshold must be positive, got %v", cfg.EfficiencyThreshold)
	}
	if cfg.PairCapacity <= 0 {
		return fmt.Errorf("PairCapacity must be positive, got %d", cfg.PairCapacity)
	}
	return nil
}

// PredictiveBackfillScheduler walks a fixed decision chain:
//
//  1. any job efficient enough (work per GPU-second above the threshold)
//     → take the most efficient one
//  2. else, among small jobs (gpu ≤ MinGPUThreshold) → shortest remaining
//  3. else, among short jobs (remaining < TimeWindow) → fewest GPUs
//  4. else → global shortest remaining
//
// Note the name: the chain only reorders consideration. The simulator's
// scheduling pass still stops at the first unplaceable job, so this is not
// gap-filling across a blocked head.
type PredictiveBackfillScheduler struct {
	cfg PredictiveBackfillConfig
}

// NewPredictiveBackfillScheduler validates cfg and builds the scheduler.
func NewPredictiveBackfillScheduler(cfg PredictiveBackfillConfig) (*PredictiveBackfillScheduler, error) {
	if err := ValidatePredictiveBackfillConfig(cfg); err != nil {
		return nil, fmt.Errorf("predictive-backfill: %w", err)
	}
	return &PredictiveBackfillScheduler{cfg: cfg}, nil
}

// efficiency is work per GPU-second of remaining execution.
func efficiency(j *Job) float64 {
	gpuTime := float64(j.NumGPU) * j.RemainingTime()
	if gpuTime <= 0 {
		return 0
	}
	return float64(j.Iterations) / gpuTime
}

func (p *PredictiveBackfillScheduler) SelectJob(pending []*Job, _ float64) *Job {
	if len(pending) == 0 {
		return nil
	}

	// Strategy 1: grab an outright efficient job
	if best := argmaxJob(pending, efficiency); efficiency(best) > p.cfg.EfficiencyThreshold {
		return best
	}

	// Strategy 2: small jobs that can fit in gaps, shortest first
	var small []*Job
	for _, j := range pending {
		if j.NumGPU <= p.cfg.MinGPUThreshold {
			small = append(small, j)
		}
	}
	if len(small) > 0 {
		return argminJob(small, (*Job).RemainingTime)
	}

	// Strategy 3: short jobs that won't block for long, narrowest first
	var short []*Job
	for _, j := range pending {
		if j.RemainingTime() < p.cfg.TimeWindow {
			short = append(short, j)
		}
	}
	if len(short) > 0 {
		return argminJob(short, func(j *Job) float64 { return float64(j.NumGPU) })
	}

	// Strategy 4: default to shortest remaining time
	return argminJob(pending, (*Job).RemainingTime)
}

// FindBestPair searches all two-job combinations whose combined GPU demand
// fits PairCapacity and returns the pair maximizing combined work per
// GPU-second. Auxiliary lookahead, not used by SelectJob; returns nil if no
// pair fits or fewer than two jobs are pending.
func (p *PredictiveBackfillScheduler) FindBestPair(pending []*Job) []*Job {
	if len(pending) < 2 {
		return nil
	}

	var best []*Job
	bestScore := 0.0
	for i, a := range pending {
		for _, b := range pending[i+1:] {
			if a.NumGPU+b.NumGPU > p.cfg.PairCapacity {
				continue
			}
			totalWork := float64(a.Iterations + b.Iterations)
			totalGPUTime := float64(a.NumGPU)*a.RemainingTime() + float64(b.NumGPU)*b.RemainingTime()
			if totalGPUTime <= 0 {
				continue
			}
			if score := totalWork / totalGPUTime; score > bestScore {
				bestScore = score
				best = []*Job{a, b}
			}
		}
	}
	return best
}

// Info exposes the current configuration for monitoring.
func (p *PredictiveBackfillScheduler) Info() map[string]float64 {
	return map[string]float64{
		"min_gpu_threshold":    float64(p.cfg.MinGPUThreshold),
		"time_window":          p.cfg.TimeWindow,
		"efficiency_threshold": p.cfg.EfficiencyThreshold,
		"pair_capacity":        float64(p.cfg.PairCapacity),
	}
}
