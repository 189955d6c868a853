package sim

import (
	"testing"
)

func TestWorkloadConfig_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*WorkloadConfig)
	}{
		{"zero jobs", func(c *WorkloadConfig) { c.NumJobs = 0 }},
		{"gpu min below one", func(c *WorkloadConfig) { c.GPUMin = 0 }},
		{"gpu max below min", func(c *WorkloadConfig) { c.GPUMin = 4; c.GPUMax = 2 }},
		{"zero min duration", func(c *WorkloadConfig) { c.DurationMin = 0 }},
		{"negative inter-arrival", func(c *WorkloadConfig) { c.InterArrival = -1 }},
	}
	for _, tc := range cases {
		cfg := DefaultWorkloadConfig(10)
		tc.mutate(&cfg)
		if err := ValidateWorkloadConfig(cfg); err == nil {
			t.Errorf("%s: invalid config accepted", tc.name)
		}
	}

	if err := ValidateWorkloadConfig(DefaultWorkloadConfig(10)); err != nil {
		t.Errorf("default config rejected: %v", err)
	}
}

func TestWorkloadGenerator_SameSeedSameStream(t *testing.T) {
	cfg := DefaultWorkloadConfig(30)
	g1, err := NewWorkloadGenerator(cfg, 42)
	if err != nil {
		t.Fatal(err)
	}
	g2, _ := NewWorkloadGenerator(cfg, 42)

	a, b := g1.Generate(), g2.Generate()
	if len(a) != 30 || len(b) != 30 {
		t.Fatalf("stream lengths: %d, %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("spec %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestWorkloadGenerator_DifferentSeedsDiffer(t *testing.T) {
	cfg := DefaultWorkloadConfig(30)
	g1, _ := NewWorkloadGenerator(cfg, 1)
	g2, _ := NewWorkloadGenerator(cfg, 2)

	a, b := g1.Generate(), g2.Generate()
	for i := range a {
		if a[i] != b[i] {
			return
		}
	}
	t.Error("30-job streams identical across different seeds")
}

func TestWorkloadGenerator_RespectsBounds(t *testing.T) {
	cfg := DefaultWorkloadConfig(200)
	cfg.GPUMin, cfg.GPUMax = 1, 4
	cfg.DurationMin = 5
	g, err := NewWorkloadGenerator(cfg, 42)
	if err != nil {
		t.Fatal(err)
	}

	for i, s := range g.Generate() {
		if s.NumGPU < 1 || s.NumGPU > 4 {
			t.Fatalf("spec %d: GPU demand %d outside [1, 4]", i, s.NumGPU)
		}
		if s.Duration < 5 {
			t.Fatalf("spec %d: duration %v below minimum", i, s.Duration)
		}
		if s.Iterations < 1 {
			t.Fatalf("spec %d: non-positive iterations %d", i, s.Iterations)
		}
		if want := float64(i) * cfg.InterArrival; s.SubmitTime != want {
			t.Fatalf("spec %d: submit time %v, want %v", i, s.SubmitTime, want)
		}
		if s.ModelName == "" {
			t.Fatalf("spec %d: empty model name", i)
		}
	}
}

func TestSubmitAll_PreservesOrder(t *testing.T) {
	c := newTestCluster(t, 2, 4)
	cfg := DefaultWorkloadConfig(5)
	g, err := NewWorkloadGenerator(cfg, 42)
	if err != nil {
		t.Fatal(err)
	}
	specs := g.Generate()

	ids := SubmitAll(c, specs)
	if len(ids) != 5 {
		t.Fatalf("got %d IDs, want 5", len(ids))
	}
	for i, id := range ids {
		job := c.Job(id)
		if job == nil {
			t.Fatalf("ID %s not found", id)
		}
		if job.SubmitTime != specs[i].SubmitTime || job.NumGPU != specs[i].NumGPU {
			t.Errorf("job %s does not match spec %d", id, i)
		}
	}
	// IDs come out in submission order
	if ids[0] != jobID(1) || ids[4] != jobID(5) {
		t.Errorf("IDs out of order: %v", ids)
	}
}
