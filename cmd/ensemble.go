package cmd

import (
	"context"
	"os"
	"os/signal"
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lobsim/lobsim/sim"
	"github.com/lobsim/lobsim/store"
)

var (
	ensembleRuns    int    // Number of independent trajectories
	ensembleWorkers int    // Concurrent workers (0 = GOMAXPROCS)
	storePath       string // Optional SQLite results database
	storeLabel      string // Label for persisted runs
)

// ensembleCmd runs N independent seeded trajectories in parallel and
// aggregates cross-run statistics. Runs share nothing mutable; worker
// count only affects wall time, never results.
var ensembleCmd = &cobra.Command{
	Use:   "ensemble",
	Short: "Run a Monte Carlo ensemble of independent trajectories",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		cfg, err := buildConfig(cmd)
		if err != nil {
			logrus.Fatalf("configuration: %v", err)
		}

		workers := ensembleWorkers
		if workers <= 0 {
			workers = runtime.GOMAXPROCS(0)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		result, err := sim.RunEnsemble(ctx, cfg, ensembleRuns, workers)
		if err != nil {
			logrus.Fatalf("ensemble failed: %v", err)
		}
		result.Print()

		if storePath != "" {
			db, err := store.Open(storePath)
			if err != nil {
				logrus.Fatalf("opening results store: %v", err)
			}
			defer db.Close()
			if err := db.SaveEnsemble(storeLabel, result); err != nil {
				logrus.Fatalf("saving ensemble: %v", err)
			}
			logrus.Infof("saved %d runs to %s under label %q", len(result.Runs), storePath, storeLabel)
		}
	},
}

func init() {
	addRunFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&ensembleRuns, "runs", 100, "Number of independent trajectories")
	ensembleCmd.Flags().IntVar(&ensembleWorkers, "workers", 0, "Concurrent workers (0 = all CPUs)")
	ensembleCmd.Flags().StringVar(&storePath, "store", "", "Optional SQLite database for run summaries")
	ensembleCmd.Flags().StringVar(&storeLabel, "label", "default", "Label for persisted runs")
	rootCmd.AddCommand(ensembleCmd)
}
