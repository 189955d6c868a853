package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/gpu-cluster-sim/gpu-cluster-sim/sim"
)

var (
	// CLI flags for cluster shape
	numNodes    int // Number of nodes in the cluster
	gpusPerNode int // GPU slots per node

	// CLI flags for policies
	schedulerName    string // Active scheduler name
	placementName    string // Active placement scheme name
	policyConfigPath string // Optional YAML policy bundle

	// CLI flags for the simulation run
	horizon      float64 // Total simulated time (seconds)
	tickInterval float64 // Simulated time per tick (seconds)
	logLevel     string  // Log verbosity level

	// CLI flags for synthetic workload generation
	seed    int64 // Seed for random workload generation
	numJobs int   // Number of jobs to generate
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "gpu-cluster-sim",
	Short: "Tick-based simulator for GPU cluster scheduling policies",
}

// setupLogging applies the --log flag process-wide.
func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// newCluster builds a ClusterManager from the CLI flags, applying either the
// policy bundle or the individual scheduler/placement flags.
func newCluster() (*sim.ClusterManager, error) {
	cluster, err := sim.NewClusterManager(numNodes, gpusPerNode)
	if err != nil {
		return nil, err
	}

	if policyConfigPath != "" {
		bundle, err := sim.LoadPolicyBundle(policyConfigPath)
		if err != nil {
			return nil, err
		}
		if err := bundle.Apply(cluster); err != nil {
			return nil, err
		}
		return cluster, nil
	}

	if err := cluster.SetScheduler(schedulerName); err != nil {
		return nil, err
	}
	if err := cluster.SetPlacement(placementName); err != nil {
		return nil, err
	}
	return cluster, nil
}

// runSimulation submits the workload up front (submit times are carried on
// the jobs, as the schedulers require) and ticks until the horizon or until
// every job has completed.
func runSimulation(cluster *sim.ClusterManager, specs []sim.JobSpec) {
	sim.SubmitAll(cluster, specs)
	for cluster.Now() < horizon {
		cluster.Tick(tickInterval)
		if len(cluster.CompletedJobs()) == len(specs) {
			break
		}
	}
}

// runCmd executes one simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one cluster scheduling simulation",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		cluster, err := newCluster()
		if err != nil {
			logrus.Fatalf("configuration error: %v", err)
		}

		gen, err := sim.NewWorkloadGenerator(sim.DefaultWorkloadConfig(numJobs), seed)
		if err != nil {
			logrus.Fatalf("configuration error: %v", err)
		}

		status := cluster.Status()
		logrus.Infof("Starting simulation: %d nodes × %d GPUs, scheduler=%s, placement=%s, %d jobs, seed=%d",
			numNodes, gpusPerNode, status.Scheduler, status.Placement, numJobs, seed)

		runSimulation(cluster, gen.Generate())

		cluster.Metrics.Print()
		final := cluster.Status()
		if final.PendingJobs > 0 {
			logrus.Warnf("%d jobs still pending at horizon %.1fs", final.PendingJobs, horizon)
		}
		logrus.Info("Simulation complete.")
	},
}

// compareCmd replays the identical seeded workload under every scheduler.
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare all schedulers over the same workload",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		gen, err := sim.NewWorkloadGenerator(sim.DefaultWorkloadConfig(numJobs), seed)
		if err != nil {
			logrus.Fatalf("configuration error: %v", err)
		}
		specs := gen.Generate()

		fmt.Printf("%-20s %12s %12s %14s %10s\n",
			"scheduler", "avg JCT (s)", "completed", "utilization", "frag")
		for _, name := range sim.SchedulerNames() {
			cluster, err := sim.NewClusterManager(numNodes, gpusPerNode)
			if err != nil {
				logrus.Fatalf("configuration error: %v", err)
			}
			sched, err := sim.NewScheduler(name)
			if err != nil {
				logrus.Fatalf("configuration error: %v", err)
			}
			cluster.SetSchedulerPolicy(name, sched)
			if err := cluster.SetPlacement(placementName); err != nil {
				logrus.Fatalf("configuration error: %v", err)
			}
			if introspectable, ok := sched.(interface{ Info() map[string]float64 }); ok {
				logrus.Debugf("%s parameters: %v", name, introspectable.Info())
			}

			runSimulation(cluster, specs)

			status := cluster.Status()
			fmt.Printf("%-20s %12.2f %12d %13.1f%% %10.2f\n",
				name, status.AverageJCT, status.CompletedJobs,
				status.GPUUtilization, status.Fragmentation)
		}
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	for _, cmd := range []*cobra.Command{runCmd, compareCmd} {
		cmd.Flags().IntVar(&numNodes, "nodes", 4, "Number of nodes in the cluster")
		cmd.Flags().IntVar(&gpusPerNode, "gpus-per-node", 4, "GPU slots per node")
		cmd.Flags().StringVar(&placementName, "placement", "first-fit", "Placement scheme (first-fit, best-fit)")
		cmd.Flags().Float64Var(&horizon, "horizon", 3600, "Total simulated time (seconds)")
		cmd.Flags().Float64Var(&tickInterval, "tick-interval", 1.0, "Simulated time per tick (seconds)")
		cmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
		cmd.Flags().Int64Var(&seed, "seed", 42, "Seed for random workload generation")
		cmd.Flags().IntVar(&numJobs, "num-jobs", 20, "Number of jobs to generate")
	}
	runCmd.Flags().StringVar(&schedulerName, "scheduler", "fifo", "Scheduler name")
	runCmd.Flags().StringVar(&policyConfigPath, "policy-config", "", "YAML policy bundle (overrides --scheduler/--placement)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(compareCmd)
}
