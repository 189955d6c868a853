// Synthetic workload generation: seeded, reproducible job streams for the
// run and compare commands. Production callers submit their own jobs through
// ClusterManager.Submit and never touch this file.

package sim

import (
	"fmt"
	"math"
	"math/rand"
)

// JobSpec is one generated submission, not yet bound to a cluster.
type JobSpec struct {
	NumGPU     int
	Iterations int
	ModelName  string
	Duration   float64
	Interval   float64
	SubmitTime float64
}

// WorkloadConfig parameterizes synthetic workload generation.
// Durations and GPU demands are clamped Gaussians; model names are drawn
// from a fixed family mix so Smart-Batch has families to find.
type WorkloadConfig struct {
	NumJobs int

	GPUMean   float64
	GPUStdDev float64
	GPUMin    int
	GPUMax    int

	DurationMean   float64
	DurationStdDev float64
	DurationMin    float64

	IterationsMean   float64
	IterationsStdDev float64

	// InterArrival is the fixed spacing between submit times, starting at 0.
	InterArrival float64
}

// DefaultWorkloadConfig returns a mixed workload: mostly narrow jobs with
// the occasional wide one, durations around a minute.
func DefaultWorkloadConfig(numJobs int) WorkloadConfig {
	return WorkloadConfig{
		NumJobs:          numJobs,
		GPUMean:          2,
		GPUStdDev:        1.5,
		GPUMin:           1,
		GPUMax:           8,
		DurationMean:     60,
		DurationStdDev:   30,
		DurationMin:      5,
		IterationsMean:   1000,
		IterationsStdDev: 500,
		InterArrival:     2.0,
	}
}

// ValidateWorkloadConfig returns an error if the config is invalid.
func ValidateWorkloadConfig(cfg WorkloadConfig) error {
	if cfg.NumJobs <= 0 {
		return fmt.Errorf("NumJobs must be positive, got %d", cfg.NumJobs)
	}
	if cfg.GPUMin < 1 || cfg.GPUMax < cfg.GPUMin {
		return fmt.Errorf("GPU bounds must satisfy 1 <= min <= max, got [%d, %d]", cfg.GPUMin, cfg.GPUMax)
	}
	if cfg.DurationMin <= 0 {
		return fmt.Errorf("DurationMin must be positive, got %v", cfg.DurationMin)
	}
	if cfg.InterArrival < 0 {
		return fmt.Errorf("InterArrival must be non-negative, got %v", cfg.InterArrival)
	}
	return nil
}

// modelMix pairs a representative model label with a draw weight.
var modelMix = []struct {
	name   string
	weight float64
}{
	{"resnet50", 0.3},
	{"bert-base", 0.25},
	{"transformer-xl", 0.2},
	{"lstm", 0.15},
	{"vgg16", 0.1},
}

// WorkloadGenerator produces deterministic job streams for a given seed.
type WorkloadGenerator struct {
	cfg WorkloadConfig
	rng *rand.Rand
}

// NewWorkloadGenerator validates cfg and seeds the generator. The same seed
// and config always yield the identical job stream.
func NewWorkloadGenerator(cfg WorkloadConfig, seed int64) (*WorkloadGenerator, error) {
	if err := ValidateWorkloadConfig(cfg); err != nil {
		return nil, fmt.Errorf("workload: %w", err)
	}
	return &WorkloadGenerator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}, nil
}

// gaussian draws a clamped Gaussian sample.
func (g *WorkloadGenerator) gaussian(mean, stdDev, lo, hi float64) float64 {
	val := g.rng.NormFloat64()*stdDev + mean
	return math.Min(hi, math.Max(lo, val))
}

func (g *WorkloadGenerator) drawModel() string {
	r := g.rng.Float64()
	acc := 0.0
	for _, m := range modelMix {
		acc += m.weight
		if r < acc {
			return m.name
		}
	}
	return modelMix[len(modelMix)-1].name
}

// Generate produces the full job stream, submit times spaced InterArrival
// apart starting at 0.
func (g *WorkloadGenerator) Generate() []JobSpec {
	specs := make([]JobSpec, g.cfg.NumJobs)
	for i := range specs {
		gpus := int(math.Round(g.gaussian(g.cfg.GPUMean, g.cfg.GPUStdDev,
			float64(g.cfg.GPUMin), float64(g.cfg.GPUMax))))
		iters := int(math.Round(g.gaussian(g.cfg.IterationsMean, g.cfg.IterationsStdDev,
			1, math.MaxInt32)))
		specs[i] = JobSpec{
			NumGPU:     gpus,
			Iterations: iters,
			ModelName:  g.drawModel(),
			Duration:   g.gaussian(g.cfg.DurationMean, g.cfg.DurationStdDev, g.cfg.DurationMin, math.MaxFloat64),
			Interval:   1.0,
			SubmitTime: float64(i) * g.cfg.InterArrival,
		}
	}
	return specs
}

// SubmitAll submits every spec to the cluster at its own submit time and
// returns the assigned job IDs, in spec order.
func SubmitAll(c *ClusterManager, specs []JobSpec) []string {
	ids := make([]string, len(specs))
	for i, s := range specs {
		ids[i] = c.SubmitAt(s.NumGPU, s.Iterations, s.ModelName, s.Duration, s.Interval, s.SubmitTime)
	}
	return ids
}
