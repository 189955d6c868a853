package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PolicyBundle holds unified policy configuration, loadable from a YAML
// file. Nil pointer fields mean "not set in YAML" and do not override
// a policy's default parameter. String fields use empty string for "not set".
type PolicyBundle struct {
	Scheduler          string                   `yaml:"scheduler"`
	Placement          string                   `yaml:"placement"`
	HybridPriority     HybridPriorityParams     `yaml:"hybrid_priority"`
	PredictiveBackfill PredictiveBackfillParams `yaml:"predictive_backfill"`
	SmartBatch         SmartBatchParams         `yaml:"smart_batch"`
	Adaptive           AdaptiveParams           `yaml:"adaptive"`
}

// HybridPriorityParams are optional Hybrid-Priority overrides.
type HybridPriorityParams struct {
	AgingThreshold *float64 `yaml:"aging_threshold"`
	AgingBoost     *float64 `yaml:"aging_boost"`
	MaxWaitTime    *float64 `yaml:"max_wait_time"`
}

// PredictiveBackfillParams are optional Predictive-Backfill overrides.
type PredictiveBackfillParams struct {
	MinGPUThreshold     *int     `yaml:"min_gpu_threshold"`
	TimeWindow          *float64 `yaml:"time_window"`
	EfficiencyThreshold *float64 `yaml:"efficiency_threshold"`
	PairCapacity        *int     `yaml:"pair_capacity"`
}

// SmartBatchParams are optional Smart-Batch overrides.
type SmartBatchParams struct {
	BatchSizeThreshold *int `yaml:"batch_size_threshold"`
	MaxBatchGPU        *int `yaml:"max_batch_gpu"`
}

// AdaptiveParams are optional Adaptive-Multi-Factor overrides.
type AdaptiveParams struct {
	MaxWaitTime        *float64 `yaml:"max_wait_time"`
	LowQueueThreshold  *int     `yaml:"low_queue_threshold"`
	HighQueueThreshold *int     `yaml:"high_queue_threshold"`
}

// LoadPolicyBundle reads and parses a YAML policy configuration file.
func LoadPolicyBundle(path string) (*PolicyBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy config: %w", err)
	}
	var bundle PolicyBundle
	if err := yaml.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("parsing policy config: %w", err)
	}
	return &bundle, nil
}

// Validate checks that all policy names and parameter ranges in the bundle
// are valid. Parameter ranges are checked through the same Validate*Config
// functions the constructors use.
func (b *PolicyBundle) Validate() error {
	if !ValidSchedulers[b.Scheduler] {
		return fmt.Errorf("unknown scheduler %q", b.Scheduler)
	}
	if !ValidPlacements[b.Placement] {
		return fmt.Errorf("unknown placement %q", b.Placement)
	}
	if err := ValidateHybridPriorityConfig(b.hybridPriorityConfig()); err != nil {
		return fmt.Errorf("hybrid_priority: %w", err)
	}
	if err := ValidatePredictiveBackfillConfig(b.predictiveBackfillConfig()); err != nil {
		return fmt.Errorf("predictive_backfill: %w", err)
	}
	if err := ValidateSmartBatchConfig(b.smartBatchConfig()); err != nil {
		return fmt.Errorf("smart_batch: %w", err)
	}
	if err := ValidateAdaptiveConfig(b.adaptiveConfig()); err != nil {
		return fmt.Errorf("adaptive: %w", err)
	}
	return nil
}

func (b *PolicyBundle) hybridPriorityConfig() HybridPriorityConfig {
	cfg := DefaultHybridPriorityConfig()
	if p := b.HybridPriority.AgingThreshold; p != nil {
		cfg.AgingThreshold = *p
	}
	if p := b.HybridPriority.AgingBoost; p != nil {
		cfg.AgingBoost = *p
	}
	if p := b.HybridPriority.MaxWaitTime; p != nil {
		cfg.MaxWaitTime = *p
	}
	return cfg
}

func (b *PolicyBundle) predictiveBackfillConfig() PredictiveBackfillConfig {
	cfg := DefaultPredictiveBackfillConfig()
	if p := b.PredictiveBackfill.MinGPUThreshold; p != nil {
		cfg.MinGPUThreshold = *p
	}
	if p := b.PredictiveBackfill.TimeWindow; p != nil {
		cfg.TimeWindow = *p
	}
	if p := b.PredictiveBackfill.EfficiencyThreshold; p != nil {
		cfg.EfficiencyThreshold = *p
	}
	if p := b.PredictiveBackfill.PairCapacity; p != nil {
		cfg.PairCapacity = *p
	}
	return cfg
}

func (b *PolicyBundle) smartBatchConfig() SmartBatchConfig {
	cfg := DefaultSmartBatchConfig()
	if p := b.SmartBatch.BatchSizeThreshold; p != nil {
		cfg.BatchSizeThreshold = *p
	}
	if p := b.SmartBatch.MaxBatchGPU; p != nil {
		cfg.MaxBatchGPU = *p
	}
	return cfg
}

func (b *PolicyBundle) adaptiveConfig() AdaptiveConfig {
	cfg := DefaultAdaptiveConfig()
	if p := b.Adaptive.MaxWaitTime; p != nil {
		cfg.MaxWaitTime = *p
	}
	if p := b.Adaptive.LowQueueThreshold; p != nil {
		cfg.LowQueueThreshold = *p
	}
	if p := b.Adaptive.HighQueueThreshold; p != nil {
		cfg.HighQueueThreshold = *p
	}
	return cfg
}

// BuildScheduler constructs the bundle's scheduler with its parameter
// overrides applied. Call Validate first for a friendlier error surface;
// constructors re-validate regardless.
func (b *PolicyBundle) BuildScheduler() (Scheduler, error) {
	switch b.Scheduler {
	case "hybrid-priority":
		return NewHybridPriorityScheduler(b.hybridPriorityConfig())
	case "predictive-backfill":
		return NewPredictiveBackfillScheduler(b.predictiveBackfillConfig())
	case "smart-batch":
		return NewSmartBatchScheduler(b.smartBatchConfig())
	case "adaptive":
		return NewAdaptiveScheduler(b.adaptiveConfig())
	default:
		return NewScheduler(b.Scheduler)
	}
}

// Apply installs the bundle's scheduler and placement on a ClusterManager.
func (b *PolicyBundle) Apply(c *ClusterManager) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s, err := b.BuildScheduler()
	if err != nil {
		return err
	}
	name := b.Scheduler
	if name == "" {
		name = "fifo"
	}
	c.SetSchedulerPolicy(name, s)
	if err := c.SetPlacement(b.Placement); err != nil {
		return err
	}
	return nil
}
