package sim

import (
	"math"
	"testing"
)

func newAdaptive(t *testing.T) *AdaptiveScheduler {
	t.Helper()
	a, err := NewAdaptiveScheduler(DefaultAdaptiveConfig())
	if err != nil {
		t.Fatalf("NewAdaptiveScheduler: %v", err)
	}
	return a
}

func TestAdaptive_ConfigValidation(t *testing.T) {
	bad := []AdaptiveConfig{
		{MaxWaitTime: 0, LowQueueThreshold: 3, HighQueueThreshold: 10},
		{MaxWaitTime: 1800, LowQueueThreshold: -1, HighQueueThreshold: 10},
		{MaxWaitTime: 1800, LowQueueThreshold: 10, HighQueueThreshold: 10},
	}
	for i, cfg := range bad {
		if _, err := NewAdaptiveScheduler(cfg); err == nil {
			t.Errorf("case %d: invalid config accepted: %+v", i, cfg)
		}
	}
}

func TestAdaptive_WeightsSumToOne(t *testing.T) {
	a := newAdaptive(t)
	for queueLen := 1; queueLen <= 15; queueLen++ {
		w := a.deriveWeights(queueLen)
		sum := w.Efficiency + w.Fairness + w.Resource
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("queue %d: weights sum to %v, want 1", queueLen, sum)
		}
	}
}

func TestAdaptive_WeightsShiftTowardFairness(t *testing.T) {
	a := newAdaptive(t)

	short := a.deriveWeights(2) // at or below LowQueueThreshold
	long := a.deriveWeights(12) // at or above HighQueueThreshold

	if short != lowLoadWeights {
		t.Errorf("short queue weights: got %+v, want low-load profile", short)
	}
	if long != highLoadWeights {
		t.Errorf("long queue weights: got %+v, want high-load profile", long)
	}
	if long.Fairness <= short.Fairness {
		t.Errorf("fairness weight did not grow with queue length: %v -> %v",
			short.Fairness, long.Fairness)
	}

	// strictly between the thresholds, strictly between the profiles
	mid := a.deriveWeights(7)
	if mid.Fairness <= short.Fairness || mid.Fairness >= long.Fairness {
		t.Errorf("mid queue fairness %v outside (%v, %v)",
			mid.Fairness, short.Fairness, long.Fairness)
	}
}

func TestAdaptive_SelectJobUpdatesWeights(t *testing.T) {
	a := newAdaptive(t)
	pending := make([]*Job, 0, 12)
	for i := 1; i <= 12; i++ {
		pending = append(pending, &Job{
			ID: jobID(i), State: StatePending,
			NumGPU: 1, Duration: 60, Iterations: 100,
		})
	}

	a.SelectJob(pending, 0)
	if got := a.Weights(); got != highLoadWeights {
		t.Errorf("after long-queue selection: weights %+v, want high-load profile", got)
	}

	a.SelectJob(pending[:2], 0)
	if got := a.Weights(); got != lowLoadWeights {
		t.Errorf("after short-queue selection: weights %+v, want low-load profile", got)
	}
}

func TestAdaptive_LongQueueFavorsAgedJob(t *testing.T) {
	// under a congested queue the fairness weight dominates, so a job that
	// has waited to the fairness cap beats a slightly more efficient fresh one
	a := newAdaptive(t)

	aged := &Job{ID: jobID(1), State: StatePending, SubmitTime: -1800,
		NumGPU: 2, Duration: 600, Iterations: 100}
	fresh := &Job{ID: jobID(2), State: StatePending, SubmitTime: 0,
		NumGPU: 2, Duration: 600, Iterations: 200}

	pending := []*Job{aged, fresh}
	// pad the queue past the high threshold with unattractive jobs
	for i := 3; i <= 12; i++ {
		pending = append(pending, &Job{ID: jobID(i), State: StatePending,
			SubmitTime: 0, NumGPU: 8, Duration: 7200, Iterations: 1})
	}

	got := a.SelectJob(pending, 0)
	if got != aged {
		t.Errorf("got %s, want the aged job under fairness-heavy weights", got.ID)
	}
}

func TestAdaptive_Info(t *testing.T) {
	a := newAdaptive(t)
	info := a.Info()
	for _, key := range []string{"efficiency_weight", "fairness_weight", "resource_weight"} {
		if _, ok := info[key]; !ok {
			t.Errorf("Info missing %s", key)
		}
	}
}
