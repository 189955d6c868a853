package sim

import (
	"fmt"
	"sort"
)

// Node is a compute node holding a fixed number of GPU slots. Slots are
// tracked individually so allocations are reproducible: the lowest free
// indices are always handed out first. CPU and memory fields are carried
// for reporting but never constrain placement.
type Node struct {
	ID       string
	NumGPU   int
	FreeGPU  int
	CPUCores int
	MemoryGB int

	CPUUtilization float64
	MemoryUsage    float64

	slots map[int]string // slot index -> holding job ID
}

// NewNode builds an empty node with numGPU slots and default CPU/memory
// capacities. Panics on a non-positive slot count; node shapes come from
// validated cluster configuration, never user data.
func NewNode(id string, numGPU int) *Node {
	if numGPU <= 0 {
		panic(fmt.Sprintf("node %s: non-positive GPU count %d", id, numGPU))
	}
	return &Node{
		ID:       id,
		NumGPU:   numGPU,
		FreeGPU:  numGPU,
		CPUCores: 16,
		MemoryGB: 64,
		slots:    make(map[int]string, numGPU),
	}
}

// CanAllocate reports whether numGPU free slots are available.
func (n *Node) CanAllocate(numGPU int) bool {
	return n.FreeGPU >= numGPU
}

// Allocate assigns numGPU slots to jobID, lowest free indices first, and
// returns the assigned indices in ascending order. Returns nil without
// mutating anything when the node cannot satisfy the full demand.
func (n *Node) Allocate(jobID string, numGPU int) []int {
	if !n.CanAllocate(numGPU) {
		return nil
	}
	assigned := make([]int, 0, numGPU)
	for i := 0; i < n.NumGPU && len(assigned) < numGPU; i++ {
		if _, taken := n.slots[i]; !taken {
			n.slots[i] = jobID
			assigned = append(assigned, i)
		}
	}
	if len(assigned) != numGPU {
		panic(fmt.Sprintf("node %s: free count %d but only %d slots open",
			n.ID, n.FreeGPU, len(assigned)))
	}
	n.FreeGPU -= numGPU
	return assigned
}

// Release frees every slot held by jobID and returns how many were freed.
// A job holding nothing here is a no-op returning zero.
func (n *Node) Release(jobID string) int {
	released := 0
	for i, holder := range n.slots {
		if holder == jobID {
			delete(n.slots, i)
			released++
		}
	}
	n.FreeGPU += released
	return released
}

// Holds reports whether jobID occupies any slot on this node.
func (n *Node) Holds(jobID string) bool {
	for _, holder := range n.slots {
		if holder == jobID {
			return true
		}
	}
	return false
}

// Utilization is the percentage of slots occupied.
func (n *Node) Utilization() float64 {
	return float64(n.NumGPU-n.FreeGPU) / float64(n.NumGPU) * 100
}

func (n *Node) IsIdle() bool { return n.FreeGPU == n.NumGPU }

func (n *Node) IsFull() bool { return n.FreeGPU == 0 }

// Slots returns the occupied slot indices in ascending order.
func (n *Node) Slots() []int {
	occupied := make([]int, 0, len(n.slots))
	for i := range n.slots {
		occupied = append(occupied, i)
	}
	sort.Ints(occupied)
	return occupied
}

func (n *Node) String() string {
	return fmt.Sprintf("%s[%d/%d GPUs free]", n.ID, n.FreeGPU, n.NumGPU)
}
