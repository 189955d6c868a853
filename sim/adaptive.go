package sim

import (
	"fmt"
)

// AdaptiveConfig configures the Adaptive-Multi-Factor scheduler.
type AdaptiveConfig struct {
	// MaxWaitTime is the wait (seconds) at which the fairness term
	// saturates at 1. Must be positive.
	MaxWaitTime float64

	// LowQueueThreshold is the pending-queue length at or below which the
	// weights sit at the efficiency-leaning profile.
	LowQueueThreshold int

	// HighQueueThreshold is the pending-queue length at or above which the
	// weights reach the fairness-heavy profile, to bound starvation on
	// congested queues. Must exceed LowQueueThreshold.
	HighQueueThreshold int
}

// DefaultAdaptiveConfig returns the stock parameters.
func DefaultAdaptiveConfig() AdaptiveConfig {
	return AdaptiveConfig{
		MaxWaitTime:        1800.0,
		LowQueueThreshold:  3,
		HighQueueThreshold: 10,
	}
}

// ValidateAdaptiveConfig returns an error if the config is invalid.
func ValidateAdaptiveConfig(cfg AdaptiveConfig) error {
	if cfg.MaxWaitTime <= 0 {
		return fmt.Errorf("MaxWaitTime must be positive, got %v", cfg.MaxWaitTime)
	}
	if cfg.LowQueueThreshold < 0 {
		return fmt.Errorf("LowQueueThreshold must be non-negative, got %d", cfg.LowQueueThreshold)
	}
	if cfg.HighQueueThreshold <= cfg.LowQueueThreshold {
		return fmt.Errorf("HighQueueThreshold (%d) must exceed LowQueueThreshold (%d)",
			cfg.HighQueueThreshold, cfg.LowQueueThreshold)
	}
	return nil
}

// Weight profiles at the two ends of the load range. Short queues lean on
// efficiency; long queues shift weight to fairness so waiters age out of
// starvation. Each profile sums to 1.
var (
	lowLoadWeights  = AdaptiveWeights{Efficiency: 0.5, Fairness: 0.2, Resource: 0.3}
	highLoadWeights = AdaptiveWeights{Efficiency: 0.2, Fairness: 0.6, Resource: 0.2}
)

// AdaptiveWeights holds the current factor weights, exposed for introspection.
type AdaptiveWeights struct {
	Efficiency float64
	Fairness   float64
	Resource   float64
}

// AdaptiveScheduler scores each job as a weighted sum of three bounded terms:
//
//	efficiency: e/(1+e) where e = iterations/(gpu × remaining)
//	fairness:   min(wait/MaxWaitTime, 1), grows with age
//	resource:   1/(1+gpu/4), narrower jobs score higher
//
// The weights are re-derived on every SelectJob from the pending-queue
// length: between the low and high thresholds they interpolate linearly
// from the efficiency-leaning profile to the fairness-heavy one.
type AdaptiveScheduler struct {
	cfg     AdaptiveConfig
	weights AdaptiveWeights // last derived weights, readable via Weights()
}

// NewAdaptiveScheduler validates cfg and builds the scheduler.
func NewAdaptiveScheduler(cfg AdaptiveConfig) (*AdaptiveScheduler, error) {
	if err := ValidateAdaptiveConfig(cfg); err != nil {
		return nil, fmt.Errorf("adaptive: %w", err)
	}
	return &AdaptiveScheduler{cfg: cfg, weights: lowLoadWeights}, nil
}

func (a *AdaptiveScheduler) SelectJob(pending []*Job, now float64) *Job {
	if len(pending) == 0 {
		return nil
	}
	a.weights = a.deriveWeights(len(pending))
	return argmaxJob(pending, func(j *Job) float64 { return a.score(j, now) })
}

// deriveWeights interpolates between the load profiles by queue length.
func (a *AdaptiveScheduler) deriveWeights(queueLen int) AdaptiveWeights {
	factor := float64(queueLen-a.cfg.LowQueueThreshold) /
		float64(a.cfg.HighQueueThreshold-a.cfg.LowQueueThreshold)
	if factor < 0 {
		factor = 0
	}
	if factor > 1 {
		factor = 1
	}
	lerp := func(lo, hi float64) float64 { return lo + factor*(hi-lo) }
	return AdaptiveWeights{
		Efficiency: lerp(lowLoadWeights.Efficiency, highLoadWeights.Efficiency),
		Fairness:   lerp(lowLoadWeights.Fairness, highLoadWeights.Fairness),
		Resource:   lerp(lowLoadWeights.Resource, highLoadWeights.Resource),
	}
}

func (a *AdaptiveScheduler) score(j *Job, now float64) float64 {
	e := efficiency(j)
	effScore := e / (1.0 + e)

	wait := max(0, now-j.SubmitTime)
	fairScore := min(wait/a.cfg.MaxWaitTime, 1.0)

	resScore := 1.0 / (1.0 + float64(j.NumGPU)/4)

	return a.weights.Efficiency*effScore + a.weights.Fairness*fairScore + a.weights.Resource*resScore
}

// Weights returns the factor weights derived on the most recent SelectJob.
func (a *AdaptiveScheduler) Weights() AdaptiveWeights {
	return a.weights
}

// Info exposes the current weights and configuration for monitoring.
func (a *AdaptiveScheduler) Info() map[string]float64 {
	return map[string]float64{
		"efficiency_weight":    a.weights.Efficiency,
		"fairness_weight":      a.weights.Fairness,
		"resource_weight":      a.weights.Resource,
		"max_wait_time":        a.cfg.MaxWaitTime,
		"low_queue_threshold":  float64(a.cfg.LowQueueThreshold),
		"high_queue_threshold": float64(a.cfg.HighQueueThreshold),
	}
}
