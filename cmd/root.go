package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lobsim/lobsim/sim"
	"github.com/lobsim/lobsim/sim/trace"
)

var (
	// CLI flags shared by run and ensemble
	configPath  string  // YAML config file; flags below override its scalars
	seed        int64   // Master seed
	levels      int     // Tracked price levels per side
	tickSize    float64 // Price increment per tick
	initialTick int64   // Starting reference tick
	horizon     float64 // Simulation time horizon
	maxEvents   int64   // Optional event-count limit (0 = unbounded)
	logLevel    string  // Log verbosity level
	logFile     string  // Optional rotating log file

	// Baseline symmetric intensity parameters, used when no config file
	// provides explicit flows
	limitBase  float64 // Power-law limit insertion base rate
	limitAlpha float64 // Power-law limit insertion exponent
	cancelMu   float64 // Per-unit cancellation rate
	marketRate float64 // Market order rate at the touch

	depthMean      float64 // Mean of geometric initial depths
	replenishMode  string  // Far-level policy after a reference shift
	replenishDepth int     // Constant replenishment depth
	replenishMean  float64 // Geometric replenishment mean

	snapshotDepths bool   // Record full depth vectors per event
	eventsOut      string // CSV event log path
	summaryOut     string // JSON run summary path
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "lobsim",
	Short: "Queue-reactive limit order book simulator",
}

// runCmd executes a single trajectory using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate one order book trajectory",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		cfg, err := buildConfig(cmd)
		if err != nil {
			logrus.Fatalf("configuration: %v", err)
		}

		s, err := sim.NewSimulator(cfg)
		if err != nil {
			logrus.Fatalf("building simulator: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		tr, err := s.Run(ctx)
		if err != nil {
			logrus.Fatalf("simulation failed: %v", err)
		}

		if eventsOut != "" {
			if err := writeEventLog(eventsOut, tr); err != nil {
				logrus.Fatalf("writing event log: %v", err)
			}
		}
		if summaryOut != "" {
			if err := writeSummary(summaryOut, sim.BuildSummary(tr, s.Metrics)); err != nil {
				logrus.Fatalf("writing summary: %v", err)
			}
		}
		s.Metrics.Print(tr.Clock)
	},
}

func writeEventLog(path string, tr *sim.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := trace.NewWriter(f)
	if err != nil {
		return err
	}
	for _, rec := range tr.Records() {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return w.Flush()
}

func writeSummary(path string, s *trace.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return trace.WriteSummary(f, s)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addRunFlags registers the flags shared by run and ensemble.
func addRunFlags(c *cobra.Command) {
	c.Flags().StringVar(&configPath, "config", "", "YAML run configuration (flags override its scalars)")
	c.Flags().Int64Var(&seed, "seed", 42, "Master seed for the run's partitioned RNG")
	c.Flags().IntVar(&levels, "levels", 5, "Tracked price levels per side")
	c.Flags().Float64Var(&tickSize, "tick-size", 0.01, "Price increment per tick")
	c.Flags().Int64Var(&initialTick, "initial-tick", 10000, "Starting reference tick")
	c.Flags().Float64Var(&horizon, "horizon", 1000, "Simulation time horizon")
	c.Flags().Int64Var(&maxEvents, "max-events", 0, "Optional event-count limit (0 = unbounded)")
	c.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	c.Flags().StringVar(&logFile, "log-file", "", "Optional rotating log file")

	c.Flags().Float64Var(&limitBase, "limit-base", 1.2, "Limit insertion base rate (powerlaw)")
	c.Flags().Float64Var(&limitAlpha, "limit-alpha", 0.6, "Limit insertion decay exponent (powerlaw)")
	c.Flags().Float64Var(&cancelMu, "cancel-mu", 0.15, "Per-unit cancellation rate")
	c.Flags().Float64Var(&marketRate, "market-rate", 0.25, "Market order rate at the best queue")

	c.Flags().Float64Var(&depthMean, "depth-mean", 4, "Mean of geometric initial depths")
	c.Flags().StringVar(&replenishMode, "replenish", "geometric", "Far-level policy after a shift (zero, constant, geometric)")
	c.Flags().IntVar(&replenishDepth, "replenish-depth", 0, "Constant replenishment depth")
	c.Flags().Float64Var(&replenishMean, "replenish-mean", 4, "Geometric replenishment mean")

	c.Flags().BoolVar(&snapshotDepths, "snapshot-depths", false, "Record full depth vectors per event (needed for calibration logs)")
	c.Flags().StringVar(&eventsOut, "out-events", "", "CSV event log output path")
	c.Flags().StringVar(&summaryOut, "out-summary", "", "JSON run summary output path")
}

// init sets up CLI flags and subcommands
func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}
