package sim

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// SmartBatchConfig configures the Smart-Batch scheduler.
type SmartBatchConfig struct {
	// BatchSizeThreshold is the minimum number of jobs that makes a batch
	// worth preferring over individual selection. Must be positive.
	BatchSizeThreshold int

	// MaxBatchGPU caps the combined GPU demand of a candidate batch.
	// Must be positive.
	MaxBatchGPU int
}

// maxBatchSize caps the batch search window. Beyond five jobs the
// similarity bonus washes out and the search cost grows for nothing.
const maxBatchSize = 5

// DefaultSmartBatchConfig returns the stock parameters.
func DefaultSmartBatchConfig() SmartBatchConfig {
	return SmartBatchConfig{
		BatchSizeThreshold: 3,
		MaxBatchGPU:        8,
	}
}

// ValidateSmartBatchConfig returns an error if the config is invalid.
func ValidateSmartBatchConfig(cfg SmartBatchConfig) error {
	if cfg.BatchSizeThreshold <= 0 {
		return fmt.Errorf("BatchSizeThreshold must be positive, got %d", cfg.BatchSizeThreshold)
	}
	if cfg.MaxBatchGPU <= 0 {
		return fmt.Errorf("MaxBatchGPU must be positive, got %d", cfg.MaxBatchGPU)
	}
	return nil
}

// modelFamilies is the fixed classification order. Iterating in this order
// (not map order) keeps batch search deterministic.
var modelFamilies = []string{"resnet", "bert", "transformer", "lstm", "other"}

// ModelFamily classifies a model label by name-substring match.
func ModelFamily(modelName string) string {
	lower := strings.ToLower(modelName)
	for _, fam := range modelFamilies[:len(modelFamilies)-1] {
		if strings.Contains(lower, fam) {
			return fam
		}
	}
	return "other"
}

// SmartBatchScheduler groups similar jobs for batch execution. It searches
// contiguous runs of same-family jobs whose combined GPU demand fits
// MaxBatchGPU, scores each run by efficiency × similarity, and when a run of
// at least BatchSizeThreshold jobs scores best, returns that run's first job
// (the rest follow naturally on subsequent selections). Otherwise it falls
// back to per-job multi-factor scoring.
type SmartBatchScheduler struct {
	cfg SmartBatchConfig
}

// NewSmartBatchScheduler validates cfg and builds the scheduler.
func NewSmartBatchScheduler(cfg SmartBatchConfig) (*SmartBatchScheduler, error) {
	if err := ValidateSmartBatchConfig(cfg); err != nil {
		return nil, fmt.Errorf("smart-batch: %w", err)
	}
	return &SmartBatchScheduler{cfg: cfg}, nil
}

func (s *SmartBatchScheduler) SelectJob(pending []*Job, _ float64) *Job {
	if len(pending) == 0 {
		return nil
	}

	if batch := s.findOptimalBatch(pending); len(batch) >= s.cfg.BatchSizeThreshold {
		return batch[0]
	}

	return s.selectBestIndividual(pending)
}

// findOptimalBatch returns the best-scoring qualifying batch, or nil.
func (s *SmartBatchScheduler) findOptimalBatch(pending []*Job) []*Job {
	if len(pending) < s.cfg.BatchSizeThreshold {
		return nil
	}

	groups := make(map[string][]*Job)
	for _, j := range pending {
		fam := ModelFamily(j.ModelName)
		groups[fam] = append(groups[fam], j)
	}

	var best []*Job
	bestScore := 0.0
	for _, fam := range modelFamilies {
		jobs := groups[fam]
		if len(jobs) < s.cfg.BatchSizeThreshold {
			continue
		}
		for size := s.cfg.BatchSizeThreshold; size <= min(len(jobs), maxBatchSize); size++ {
			for i := 0; i+size <= len(jobs); i++ {
				batch := jobs[i : i+size]
				if score := s.batchScore(batch); score > bestScore {
					bestScore = score
					best = batch
				}
			}
		}
	}
	return best
}

// batchScore rates a candidate batch: work per GPU-second (batch runtime is
// bounded by its longest member) times a similarity bonus that rewards low
// spread in remaining times and GPU demands. Zero for over-capacity batches.
func (s *SmartBatchScheduler) batchScore(batch []*Job) float64 {
	if len(batch) == 0 {
		return 0
	}

	totalGPU := 0
	totalWork := 0.0
	remaining := make([]float64, len(batch))
	gpus := make([]float64, len(batch))
	maxRemaining := 0.0
	for i, j := range batch {
		totalGPU += j.NumGPU
		totalWork += float64(j.Iterations)
		remaining[i] = j.RemainingTime()
		gpus[i] = float64(j.NumGPU)
		maxRemaining = max(maxRemaining, remaining[i])
	}
	if totalGPU > s.cfg.MaxBatchGPU {
		return 0
	}

	gpuTime := float64(totalGPU) * maxRemaining
	if gpuTime <= 0 {
		return 0
	}
	eff := totalWork / gpuTime

	similarity := 1.0 / (1.0 + stat.PopVariance(remaining, nil) + stat.PopVariance(gpus, nil))
	return eff * similarity
}

// selectBestIndividual scores each job as efficiency × gpuScore × timeScore,
// the same component formulas as Hybrid-Priority's base terms.
func (s *SmartBatchScheduler) selectBestIndividual(pending []*Job) *Job {
	return argmaxJob(pending, func(j *Job) float64 {
		gpuScore := 1.0 / (1.0 + float64(j.NumGPU)/4)
		timeScore := 1.0 / (1.0 + j.RemainingTime()/3600)
		return efficiency(j) * gpuScore * timeScore
	})
}

// Info exposes the current configuration for monitoring.
func (s *SmartBatchScheduler) Info() map[string]float64 {
	return map[string]float64{
		"batch_size_threshold": float64(s.cfg.BatchSizeThreshold),
		"max_batch_gpu":        float64(s.cfg.MaxBatchGPU),
	}
}
