package sim

import (
	"testing"
)

func TestNodeAllocate_LowestIndicesFirst(t *testing.T) {
	n := NewNode("node-0", 4)

	slots := n.Allocate("job-a", 2)
	if len(slots) != 2 || slots[0] != 0 || slots[1] != 1 {
		t.Fatalf("first allocation: got slots %v, want [0 1]", slots)
	}
	if n.FreeGPU != 2 {
		t.Fatalf("free after alloc: got %d, want 2", n.FreeGPU)
	}

	slots = n.Allocate("job-b", 1)
	if len(slots) != 1 || slots[0] != 2 {
		t.Fatalf("second allocation: got slots %v, want [2]", slots)
	}
}

func TestNodeAllocate_FillsGaps(t *testing.T) {
	n := NewNode("node-0", 4)
	n.Allocate("job-a", 2) // slots 0,1
	n.Allocate("job-b", 2) // slots 2,3
	n.Release("job-a")

	slots := n.Allocate("job-c", 2)
	if len(slots) != 2 || slots[0] != 0 || slots[1] != 1 {
		t.Fatalf("gap fill: got slots %v, want the freed [0 1]", slots)
	}
}

func TestNodeAllocate_InsufficientIsNoOp(t *testing.T) {
	n := NewNode("node-0", 4)
	n.Allocate("job-a", 3)

	if slots := n.Allocate("job-b", 2); slots != nil {
		t.Fatalf("over-capacity allocation: got %v, want nil", slots)
	}
	if n.FreeGPU != 1 {
		t.Fatalf("failed allocation mutated free count: got %d, want 1", n.FreeGPU)
	}
}

func TestNodeRelease_RoundTrip(t *testing.T) {
	// freeing a job's slots must make the identical demand allocatable again
	n := NewNode("node-0", 4)
	n.Allocate("job-a", 3)
	if n.CanAllocate(3) {
		t.Fatal("3 slots should not be free while job-a holds them")
	}

	if released := n.Release("job-a"); released != 3 {
		t.Fatalf("release: got %d, want 3", released)
	}
	if !n.CanAllocate(3) {
		t.Fatal("released capacity not reusable")
	}

	// releasing again is a no-op
	if released := n.Release("job-a"); released != 0 {
		t.Fatalf("double release: got %d, want 0", released)
	}
	if n.FreeGPU != 4 {
		t.Fatalf("free after double release: got %d, want 4", n.FreeGPU)
	}
}

func TestNodeSlotAccounting(t *testing.T) {
	n := NewNode("node-0", 8)
	n.Allocate("job-a", 3)
	n.Allocate("job-b", 2)
	n.Release("job-a")
	n.Allocate("job-c", 4)

	if got := n.FreeGPU + len(n.Slots()); got != n.NumGPU {
		t.Fatalf("free + occupied = %d, want %d", got, n.NumGPU)
	}

	// no slot assigned twice: Slots() already deduplicates by construction,
	// so its length must equal the sum of live demands
	if got := len(n.Slots()); got != 6 {
		t.Fatalf("occupied slots: got %d, want 6", got)
	}
}

func TestNodeUtilization(t *testing.T) {
	n := NewNode("node-0", 4)
	if n.Utilization() != 0 || !n.IsIdle() {
		t.Fatal("fresh node should be idle at 0%")
	}

	n.Allocate("job-a", 1)
	if got := n.Utilization(); got != 25 {
		t.Errorf("utilization: got %v, want 25", got)
	}

	n.Allocate("job-b", 3)
	if !n.IsFull() || n.Utilization() != 100 {
		t.Error("fully allocated node should be full at 100%")
	}
}
