package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lobsim/lobsim/sim"
	"github.com/lobsim/lobsim/sim/calib"
	"github.com/lobsim/lobsim/sim/trace"
)

var (
	calibEvents string // Input CSV event log
	calibLevels int    // Levels per side in the log
	calibMaxQ   int    // Table cap on conditioning queue size
	calibOut    string // Output YAML parameter set
)

// CalibratedFlows is the YAML document calibrate emits; its Flows section
// drops straight into a run configuration.
type CalibratedFlows struct {
	Levels int            `yaml:"levels"`
	Flows  sim.FlowConfig `yaml:"flows"`
	Report calib.Report   `yaml:"report"`
}

// calibrateCmd estimates table intensities from a historical event log.
var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Estimate intensity tables from an event log",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		f, err := os.Open(calibEvents)
		if err != nil {
			logrus.Fatalf("opening event log: %v", err)
		}
		defer f.Close()

		records, err := trace.ReadAll(f)
		if err != nil {
			logrus.Fatalf("reading event log: %v", err)
		}

		result, err := calib.Calibrate(records, calib.Options{
			Levels:       calibLevels,
			MaxQueueSize: calibMaxQ,
		})
		if err != nil {
			logrus.Fatalf("calibration failed: %v", err)
		}

		doc := CalibratedFlows{Levels: calibLevels, Flows: result.Flows, Report: result.Report}
		data, err := yaml.Marshal(&doc)
		if err != nil {
			logrus.Fatalf("encoding parameter set: %v", err)
		}
		if err := os.WriteFile(calibOut, data, 0644); err != nil {
			logrus.Fatalf("writing parameter set: %v", err)
		}

		fmt.Printf("calibrated %d events over %.4f time units (coverage %.2f, %s)\n",
			result.Report.Events, result.Report.TotalTime, result.Report.Coverage, result.Report.Quality)
		fmt.Printf("parameter set written to %s\n", calibOut)
	},
}

func init() {
	calibrateCmd.Flags().StringVar(&calibEvents, "events", "", "Input CSV event log (written with --snapshot-depths)")
	calibrateCmd.Flags().IntVar(&calibLevels, "levels", 5, "Price levels per side in the log")
	calibrateCmd.Flags().IntVar(&calibMaxQ, "max-queue-size", 20, "Pool observations above this queue size")
	calibrateCmd.Flags().StringVar(&calibOut, "out", "flows.yaml", "Output YAML parameter set")
	calibrateCmd.Flags().StringVar(&logLevel, "log", "error", "Log level")
	if err := calibrateCmd.MarkFlagRequired("events"); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(calibrateCmd)
}
