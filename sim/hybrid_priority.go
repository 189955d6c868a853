package sim

import (
	"fmt"
)

// HybridPriorityConfig configures the Hybrid-Priority scheduler.
type HybridPriorityConfig struct {
	// AgingThreshold is the wait time (seconds) below which a job receives
	// no aging boost. Must be positive.
	AgingThreshold float64

	// AgingBoost is the multiplier applied once a job's wait exceeds
	// AgingThreshold, scaled by how close the wait is to MaxWaitTime.
	// Must be positive.
	AgingBoost float64

	// MaxWaitTime is the wait (seconds) at which the aging boost saturates.
	// Must be positive.
	MaxWaitTime float64
}

// DefaultHybridPriorityConfig returns the stock parameters:
// boost after 5 minutes of waiting, saturating at 30 minutes.
func DefaultHybridPriorityConfig() HybridPriorityConfig {
	return HybridPriorityConfig{
		AgingThreshold: 300.0,
		AgingBoost:     2.0,
		MaxWaitTime:    1800.0,
	}
}

// ValidateHybridPriorityConfig returns an error if the config is invalid.
func ValidateHybridPriorityConfig(cfg HybridPriorityConfig) error {
	if cfg.AgingThreshold <= 0 {
		return fmt.Errorf("AgingThreshold must be positive, got %v", cfg.AgingThreshold)
	}
	if cfg.AgingBoost <= 0 {
		return fmt.Errorf("AgingBoost must be positive, got %v", cfg.AgingBoost)
	}
	if cfg.MaxWaitTime <= 0 {
		return fmt.Errorf("MaxWaitTime must be positive, got %v", cfg.MaxWaitTime)
	}
	return nil
}

// HybridPriorityScheduler combines three signals into one score:
//   - shorter jobs first (base = 1/(1+remaining_hours))
//   - aging so long waiters cannot starve (boost once wait passes the threshold)
//   - a mild penalty for wide jobs so one large job does not block many small ones
//
// The job maximizing base × aging × gpuPenalty wins, ties broken by ID.
type HybridPriorityScheduler struct {
	cfg HybridPriorityConfig
}

// NewHybridPriorityScheduler validates cfg and builds the scheduler.
func NewHybridPriorityScheduler(cfg HybridPriorityConfig) (*HybridPriorityScheduler, error) {
	if err := ValidateHybridPriorityConfig(cfg); err != nil {
		return nil, fmt.Errorf("hybrid-priority: %w", err)
	}
	return &HybridPriorityScheduler{cfg: cfg}, nil
}

func (h *HybridPriorityScheduler) SelectJob(pending []*Job, now float64) *Job {
	return argmaxJob(pending, func(j *Job) float64 { return h.Score(j, now) })
}

// Score computes the hybrid priority of a single job at the given clock.
// Exposed so tests can check monotonic aging directly.
func (h *HybridPriorityScheduler) Score(j *Job, now float64) float64 {
	base := 1.0 / (1.0 + j.RemainingTime()/3600)

	aging := 1.0
	wait := now - j.SubmitTime
	if wait > h.cfg.AgingThreshold {
		waitFactor := min(wait/h.cfg.MaxWaitTime, 1.0)
		aging = h.cfg.AgingBoost * waitFactor
	}

	gpuPenalty := 1.0 / (1.0 + float64(j.NumGPU)/4)

	return base * aging * gpuPenalty
}

// Info exposes the current configuration for monitoring.
func (h *HybridPriorityScheduler) Info() map[string]float64 {
	return map[string]float64{
		"aging_threshold": h.cfg.AgingThreshold,
		"aging_boost":     h.cfg.AgingBoost,
		"max_wait_time":   h.cfg.MaxWaitTime,
	}
}
