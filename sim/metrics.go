// Tracks per-job, cluster-wide, and per-node samples emitted by the
// ClusterManager, and computes the aggregates used for final reporting.

package sim

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// MetricsCollector records samples keyed by metric name. Per-job metrics use
// "<job_id>_<metric>" keys, per-node metrics "node_<id>_<metric>", and
// cluster-wide metrics their bare name ("gpu_utilization",
// "resource_fragmentation"). Values accumulate in arrival order.
type MetricsCollector struct {
	jobMetrics     map[string][]float64
	clusterMetrics map[string][]float64
	nodeMetrics    map[string][]float64
}

// NewMetricsCollector creates an empty collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		jobMetrics:     make(map[string][]float64),
		clusterMetrics: make(map[string][]float64),
		nodeMetrics:    make(map[string][]float64),
	}
}

// RecordJobMetric records a job-level sample, e.g. completion_time.
func (m *MetricsCollector) RecordJobMetric(jobID, metric string, value float64) {
	key := jobID + "_" + metric
	m.jobMetrics[key] = append(m.jobMetrics[key], value)
}

// RecordClusterMetric records a cluster-wide per-tick sample.
func (m *MetricsCollector) RecordClusterMetric(metric string, value float64) {
	m.clusterMetrics[metric] = append(m.clusterMetrics[metric], value)
}

// RecordNodeMetric records a per-node per-tick sample.
func (m *MetricsCollector) RecordNodeMetric(nodeID, metric string, value float64) {
	key := "node_" + nodeID + "_" + metric
	m.nodeMetrics[key] = append(m.nodeMetrics[key], value)
}

// CompletionTime returns the recorded completion time (JCT) for a job,
// or 0 if the job has not completed.
func (m *MetricsCollector) CompletionTime(jobID string) float64 {
	samples := m.jobMetrics[jobID+"_completion_time"]
	if len(samples) == 0 {
		return 0
	}
	return samples[len(samples)-1]
}

// completionTimes gathers every recorded JCT in sorted order.
func (m *MetricsCollector) completionTimes() []float64 {
	var jcts []float64
	for key, samples := range m.jobMetrics {
		if strings.HasSuffix(key, "_completion_time") {
			jcts = append(jcts, samples...)
		}
	}
	sort.Float64s(jcts)
	return jcts
}

// AverageJCT is the mean job completion time over all completed jobs,
// or 0 when nothing has completed.
func (m *MetricsCollector) AverageJCT() float64 {
	jcts := m.completionTimes()
	if len(jcts) == 0 {
		return 0
	}
	return stat.Mean(jcts, nil)
}

// JCTPercentile returns the p-th percentile (0 < p <= 100) of recorded
// completion times, or 0 when nothing has completed.
func (m *MetricsCollector) JCTPercentile(p float64) float64 {
	jcts := m.completionTimes()
	if len(jcts) == 0 {
		return 0
	}
	return stat.Quantile(p/100, stat.Empirical, jcts, nil)
}

// Average returns the mean of a named cluster, node, or job metric series,
// or 0 when no samples exist.
func (m *MetricsCollector) Average(metric string) float64 {
	samples := m.clusterMetrics[metric]
	if len(samples) == 0 {
		samples = m.nodeMetrics[metric]
	}
	if len(samples) == 0 {
		samples = m.jobMetrics[metric]
	}
	if len(samples) == 0 {
		return 0
	}
	return stat.Mean(samples, nil)
}

// GPUUtilization is the mean cluster GPU utilization over all ticks.
func (m *MetricsCollector) GPUUtilization() float64 {
	return m.Average("gpu_utilization")
}

// Fragmentation is the mean resource fragmentation over all ticks.
func (m *MetricsCollector) Fragmentation() float64 {
	return m.Average("resource_fragmentation")
}

// Print displays the aggregated metrics at the end of a simulation.
// Presentation only; every number here is available programmatically.
func (m *MetricsCollector) Print() {
	jcts := m.completionTimes()
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("Completed Jobs       : %d\n", len(jcts))
	if len(jcts) > 0 {
		fmt.Printf("Average JCT          : %.2fs\n", m.AverageJCT())
		fmt.Printf("p50/p95/p99 JCT      : %.2f / %.2f / %.2f s\n",
			m.JCTPercentile(50), m.JCTPercentile(95), m.JCTPercentile(99))
	}
	fmt.Printf("GPU Utilization      : %.1f%%\n", m.GPUUtilization())
	fmt.Printf("Fragmentation        : %.2f\n", m.Fragmentation())
}
