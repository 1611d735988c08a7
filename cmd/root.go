package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/storesim/storesim/sim"
	"github.com/storesim/storesim/sim/facility"
	"github.com/storesim/storesim/sim/trace"
)

var (
	logLevel        string  // Log verbosity level
	configFile      string  // Optional YAML config file
	layoutPath      string  // Store layout file; empty uses the bundled layout
	stations        []int   // Checkout nodes open at start; empty uses the layout's list
	speedMultiplier float64 // Walking speed upgrade applied to every plan
	traceLevel      string  // Decision trace verbosity
	summarizeTrace  bool    // Print a trace summary after the metrics
	resultsPath     string  // File to save metrics JSON to
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "storesim",
	Short: "Discrete-event simulator for shoppers in a store",
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the store simulation to the horizon",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		cfg, err := loadConfig(cmd.Flags(), configFile)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Unknown trace level %q. Valid: none, decisions", traceLevel)
		}
		if speedMultiplier <= 0 {
			logrus.Fatalf("--speed-multiplier must be > 0, got %v", speedMultiplier)
		}

		s, err := buildSimulator(cfg, layoutPath, stations)
		if err != nil {
			logrus.Fatalf("Failed to build simulation: %v", err)
		}
		s.Planner.SetSpeedSource(sim.StaticSpeed(speedMultiplier))
		if traceLevel != "" && traceLevel != string(trace.TraceLevelNone) {
			s.Trace = trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevel(traceLevel)})
		}

		logrus.Infof("Starting simulation: seed=%d, horizon=%dticks, %d stations, catalog=%v",
			cfg.Seed, cfg.Horizon, s.Dispatcher.StationCount(), s.Catalog())
		startTime := time.Now()

		runToHorizon(s, os.Stdout, summarizeTrace)
		if resultsPath != "" {
			if err := s.Metrics.SaveResults(cfg.Seed, resultsPath); err != nil {
				logrus.Fatalf("Failed to save results: %v", err)
			}
		}

		logrus.Infof("Simulation complete in %v.", time.Since(startTime))
	},
}

// setLogLevel applies the --log flag.
func setLogLevel() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// buildSimulator loads the layout and opens its checkouts.
func buildSimulator(cfg sim.Config, layoutPath string, stationNodes []int) (*sim.Simulator, error) {
	layout := facility.DefaultLayout()
	if layoutPath != "" {
		var err error
		if layout, err = facility.LoadLayout(layoutPath); err != nil {
			return nil, err
		}
	}
	graph, err := layout.Build()
	if err != nil {
		return nil, err
	}
	open := layout.Stations
	if len(stationNodes) > 0 {
		open = make([]facility.NodeID, len(stationNodes))
		for i, n := range stationNodes {
			open[i] = facility.NodeID(n)
		}
	}
	return sim.NewSimulator(cfg, graph, open)
}

// runToHorizon spawns customers until the horizon and prints the report to w.
func runToHorizon(s *sim.Simulator, w io.Writer, withTraceSummary bool) {
	s.StartSpawning()
	s.Run()
	s.Metrics.Fprint(w)

	if withTraceSummary && s.Trace.Enabled() {
		summary := trace.Summarize(s.Trace)
		fmt.Fprintln(w, "=== Checkout Trace Summary ===")
		fmt.Fprintf(w, "Decisions            : %d (%d fast path, %d tie-broken)\n",
			summary.TotalDecisions, summary.FastPathCount, summary.TieBreakCount)
		fmt.Fprintf(w, "Mean Chosen Queue    : %.2f\n", summary.MeanChosenQueue)
		fmt.Fprintf(w, "Stations Used        : %d\n", summary.UniqueStations)
		fmt.Fprintf(w, "Removals             : %d\n", summary.RemovalCount)
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addRunFlags registers the flags shared by run and serve.
func addRunFlags(cmd *cobra.Command) {
	addConfigFlags(cmd.Flags())
	cmd.Flags().StringVar(&configFile, "config", "", "YAML config file (keys match flag names)")
	cmd.Flags().StringVar(&layoutPath, "layout", "", "Store layout YAML (default: bundled corner store)")
	cmd.Flags().IntSliceVar(&stations, "stations", nil, "Checkout nodes open at start (default: the layout's stations)")
	cmd.Flags().Float64Var(&speedMultiplier, "speed-multiplier", 1.0, "Walking speed upgrade multiplier")
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	addRunFlags(runCmd)
	runCmd.Flags().StringVar(&traceLevel, "trace-level", "none", "Trace verbosity level (none, decisions)")
	runCmd.Flags().BoolVar(&summarizeTrace, "summarize-trace", false, "Print checkout trace summary after simulation")
	runCmd.Flags().StringVar(&resultsPath, "results-path", "", "File to save metrics JSON to")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
