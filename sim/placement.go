package sim

import (
	"fmt"
)

// PlacementResult carries the outcome of a successful placement: the chosen
// node and the slot indices that were allocated on it.
type PlacementResult struct {
	Node  *Node
	Slots []int
}

// Placement decides which node a selected job runs on and performs the
// allocation on the winner. Returns nil when no node can satisfy the
// job's full demand; the job stays pending, and multi-node spanning is
// never attempted.
//
// Nodes are always passed in the cluster's fixed order; implementations
// rely on that order for stable tie-breaking.
type Placement interface {
	PlaceJob(job *Job, nodes []*Node) *PlacementResult
}

// FirstFitPlacement scans nodes in order and takes the first that fits.
type FirstFitPlacement struct{}

func (f *FirstFitPlacement) PlaceJob(job *Job, nodes []*Node) *PlacementResult {
	for _, n := range nodes {
		if n.CanAllocate(job.NumGPU) {
			slots := n.Allocate(job.ID, job.NumGPU)
			return &PlacementResult{Node: n, Slots: slots}
		}
	}
	return nil
}

// BestFitPlacement evaluates every node that fits and takes the one leaving
// the fewest free slots after allocation, earlier node winning ties.
// Minimizing leftover keeps large contiguous capacity available elsewhere.
type BestFitPlacement struct{}

func (b *BestFitPlacement) PlaceJob(job *Job, nodes []*Node) *PlacementResult {
	var best *Node
	bestLeftover := -1
	for _, n := range nodes {
		if !n.CanAllocate(job.NumGPU) {
			continue
		}
		leftover := n.FreeGPU - job.NumGPU
		if best == nil || leftover < bestLeftover {
			best = n
			bestLeftover = leftover
		}
	}
	if best == nil {
		return nil
	}
	slots := best.Allocate(job.ID, job.NumGPU)
	return &PlacementResult{Node: best, Slots: slots}
}

// ValidPlacements is the set of recognized placement scheme names.
var ValidPlacements = map[string]bool{
	"":          true,
	"first-fit": true,
	"best-fit":  true,
}

// NewPlacement creates a Placement by name. Empty string defaults to
// first-fit (for CLI flag default compatibility). Unknown names are a
// configuration error.
func NewPlacement(name string) (Placement, error) {
	switch name {
	case "", "first-fit":
		return &FirstFitPlacement{}, nil
	case "best-fit":
		return &BestFitPlacement{}, nil
	default:
		return nil, fmt.Errorf("unknown placement %q", name)
	}
}

// PlacementNames lists the canonical placement scheme names.
func PlacementNames() []string {
	return []string{"first-fit", "best-fit"}
}
