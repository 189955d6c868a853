package sim

import (
	"testing"
)

func TestJobTransition_FullLifecycle(t *testing.T) {
	j := &Job{ID: "job-000001", State: StatePending, Duration: 10}

	j.Transition(StateRunning)
	if j.State != StateRunning {
		t.Fatalf("after pending->running: got %s", j.State)
	}
	j.Transition(StateCompleted)
	if j.State != StateCompleted {
		t.Fatalf("after running->completed: got %s", j.State)
	}
}

func TestJobTransition_ErrorFromEitherLiveState(t *testing.T) {
	j := &Job{ID: "a", State: StatePending}
	j.Transition(StateError)
	if j.State != StateError {
		t.Fatalf("pending->error: got %s", j.State)
	}

	j = &Job{ID: "b", State: StateRunning}
	j.Transition(StateError)
	if j.State != StateError {
		t.Fatalf("running->error: got %s", j.State)
	}
}

func TestJobTransition_IllegalPanics(t *testing.T) {
	cases := []struct {
		from, to JobState
	}{
		{StatePending, StateCompleted}, // must pass through running
		{StateCompleted, StateRunning}, // completed is terminal
		{StateCompleted, StateError},
		{StateError, StateRunning}, // error is terminal
		{StateRunning, StatePending},
	}
	for _, tc := range cases {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("transition %s -> %s did not panic", tc.from, tc.to)
				}
			}()
			j := &Job{ID: "x", State: tc.from}
			j.Transition(tc.to)
		}()
	}
}

func TestJobRemainingTime(t *testing.T) {
	j := &Job{ID: "a", State: StatePending, Duration: 100}
	if got := j.RemainingTime(); got != 100 {
		t.Errorf("pending job remaining: got %v, want full duration", got)
	}

	j.State = StateRunning
	j.ExecutionTime = 30
	if got := j.RemainingTime(); got != 70 {
		t.Errorf("running job remaining: got %v, want 70", got)
	}

	j.ExecutionTime = 100
	if got := j.RemainingTime(); got != 0 {
		t.Errorf("exhausted job remaining: got %v, want 0", got)
	}
}

func TestJobTotalTime(t *testing.T) {
	j := &Job{ID: "a", State: StateRunning, SubmitTime: 10}
	if got := j.TotalTime(25); got != 15 {
		t.Errorf("in-flight total time: got %v, want 15", got)
	}

	j.State = StateCompleted
	j.EndTime = 40
	// once completed, the clock argument is irrelevant
	if got := j.TotalTime(999); got != 30 {
		t.Errorf("completed total time: got %v, want end minus submit = 30", got)
	}
}

func TestJobGPUSeconds(t *testing.T) {
	j := &Job{ID: "a", State: StatePending, Duration: 5, NumGPU: 3}
	if got := j.GPUSeconds(); got != 15 {
		t.Errorf("GPU-seconds: got %v, want 15", got)
	}
}
