package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBundleFile(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func TestLoadPolicyBundle_AppliesOverrides(t *testing.T) {
	path := writeBundleFile(t, `
scheduler: hybrid-priority
placement: best-fit
hybrid_priority:
  aging_threshold: 120
  max_wait_time: 900
`)
	bundle, err := LoadPolicyBundle(path)
	require.NoError(t, err)
	require.NoError(t, bundle.Validate())

	assert.Equal(t, "hybrid-priority", bundle.Scheduler)
	assert.Equal(t, "best-fit", bundle.Placement)

	s, err := bundle.BuildScheduler()
	require.NoError(t, err)
	info := s.(*HybridPriorityScheduler).Info()
	assert.Equal(t, 120.0, info["aging_threshold"])
	assert.Equal(t, 900.0, info["max_wait_time"])
	// unset fields keep their defaults
	assert.Equal(t, DefaultHybridPriorityConfig().AgingBoost, info["aging_boost"])
}

func TestLoadPolicyBundle_MissingFile(t *testing.T) {
	_, err := LoadPolicyBundle(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadPolicyBundle_MalformedYAML(t *testing.T) {
	path := writeBundleFile(t, "scheduler: [unterminated")
	_, err := LoadPolicyBundle(path)
	assert.Error(t, err)
}

func TestPolicyBundleValidate_UnknownNames(t *testing.T) {
	b := &PolicyBundle{Scheduler: "round-robin"}
	assert.ErrorContains(t, b.Validate(), "unknown scheduler")

	b = &PolicyBundle{Scheduler: "fifo", Placement: "worst-fit"}
	assert.ErrorContains(t, b.Validate(), "unknown placement")
}

func TestPolicyBundleValidate_RejectsBadParams(t *testing.T) {
	negative := -5.0
	b := &PolicyBundle{
		Scheduler:      "hybrid-priority",
		HybridPriority: HybridPriorityParams{MaxWaitTime: &negative},
	}
	assert.ErrorContains(t, b.Validate(), "hybrid_priority")

	zero := 0
	b = &PolicyBundle{
		Scheduler:  "smart-batch",
		SmartBatch: SmartBatchParams{MaxBatchGPU: &zero},
	}
	assert.ErrorContains(t, b.Validate(), "smart_batch")
}

func TestPolicyBundleApply_InstallsPolicies(t *testing.T) {
	c, err := NewClusterManager(2, 4)
	require.NoError(t, err)

	path := writeBundleFile(t, `
scheduler: adaptive
placement: best-fit
adaptive:
  high_queue_threshold: 20
`)
	bundle, err := LoadPolicyBundle(path)
	require.NoError(t, err)
	require.NoError(t, bundle.Apply(c))

	status := c.Status()
	assert.Equal(t, "adaptive", status.Scheduler)
	assert.Equal(t, "best-fit", status.Placement)
}

func TestPolicyBundleApply_EmptyBundleUsesDefaults(t *testing.T) {
	c, err := NewClusterManager(1, 4)
	require.NoError(t, err)
	require.NoError(t, (&PolicyBundle{}).Apply(c))

	status := c.Status()
	assert.Equal(t, "fifo", status.Scheduler)
	assert.Equal(t, "first-fit", status.Placement)
}
