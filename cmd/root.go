package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/signal-sim/signal-sim/sim"
	"github.com/signal-sim/signal-sim/sim/anneal"
	"github.com/signal-sim/signal-sim/sim/trace"
)

const tickSeconds = 1.0 / 60

var (
	// Shared CLI flags
	seed       int64  // Seed for spawning, signal offsets and the search
	logLevel   string // Log verbosity level
	configFile string // Optional YAML overriding world/annealing/evaluation defaults

	// run flags
	simDuration float64 // Live seconds to run; 0 runs until the search is done
	simSpeed    float64 // Multiplier on every tick's dt
	realtime    bool    // Pace ticks at 60 Hz of wall time
	traceOutput string  // Optional YAML file receiving every consumed evaluation
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "signal-sim",
	Short: "Traffic-signal simulator with online simulated-annealing tuning",
}

// runCmd runs the live world and the annealing search headlessly
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the live simulation while annealing searches for better signal timings",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		if err := validateRunFlags(simDuration, simSpeed); err != nil {
			logrus.Fatalf("%v", err)
		}

		cfg, err := loadSimConfig(configFile)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		ctrl, err := newController(cfg, seed)
		if err != nil {
			logrus.Fatalf("unable to build simulation: %v", err)
		}

		logrus.Infof("Starting %dx%d grid, seed=%d, T=%.1f->%.1f, alpha=%.3f",
			cfg.World.Rows, cfg.World.Cols, seed,
			cfg.Annealing.TemperatureStart, cfg.Annealing.TemperatureMin, cfg.Annealing.CoolingRate)

		startTime := time.Now()
		runLoop(ctrl, simDuration, simSpeed, realtime)

		printRunReport(os.Stdout, ctrl, time.Since(startTime))
		if traceOutput != "" {
			if err := writeTrace(traceOutput, ctrl.Trace()); err != nil {
				logrus.Fatalf("unable to write trace: %v", err)
			}
			logrus.Infof("Search trace written to %s", traceOutput)
		}
		logrus.Info("Simulation complete.")
	},
}

// newController builds the live world and its annealing controller.
func newController(cfg SimConfig, seed int64) (*anneal.Controller, error) {
	world, err := sim.NewWorld(cfg.World, seed)
	if err != nil {
		return nil, err
	}
	eval := anneal.HeadlessEvaluator{World: cfg.World, Options: cfg.Evaluation}
	return anneal.NewController(world, eval, cfg.Annealing, seed)
}

// validateRunFlags rejects values under which the live clock never reaches
// the requested duration.
func validateRunFlags(duration, speed float64) error {
	if speed <= 0 {
		return fmt.Errorf("--speed must be > 0, got %v", speed)
	}
	if duration < 0 {
		return fmt.Errorf("--duration must be >= 0, got %v", duration)
	}
	return nil
}

// runLoop ticks the controller until the search is done or duration live
// seconds have elapsed. Without realtime pacing the loop spins as fast as
// the foreground allows while evaluations proceed in the background.
func runLoop(ctrl *anneal.Controller, duration, speed float64, paced bool) {
	var ticker *time.Ticker
	if paced {
		ticker = time.NewTicker(16 * time.Millisecond)
		defer ticker.Stop()
	}
	world := ctrl.World()
	for !ctrl.Done() {
		if duration > 0 && world.Clock >= duration {
			break
		}
		ctrl.Advance(tickSeconds, speed)
		if ticker != nil {
			<-ticker.C
		}
	}
}

func printRunReport(w io.Writer, ctrl *anneal.Controller, wall time.Duration) {
	info := ctrl.DebugInfo()
	world := ctrl.World()
	summary := trace.Summarize(ctrl.Trace())

	fmt.Fprintln(w, "=== Simulation Report ===")
	fmt.Fprintf(w, "Live clock          : %.1fs (wall %s)\n", world.Clock, wall.Round(time.Millisecond))
	fmt.Fprintf(w, "Status              : %s (%s)\n", info.Status, info.Detail)
	fmt.Fprintf(w, "Temperature         : %.3f\n", info.Temperature)
	fmt.Fprintf(w, "Best fitness        : %.3f\n", info.BestFitness)
	fmt.Fprintf(w, "Current fitness     : %.3f\n", info.CurrentFitness)
	fmt.Fprintf(w, "Live vehicles       : %d\n", len(world.Vehicles))
	fmt.Fprintf(w, "Vehicles processed  : %d\n", world.VehiclesProcessed)
	fmt.Fprintf(w, "Average wait        : %.2fs\n", world.AvgWaitTime)
	fmt.Fprintf(w, "Max processed/eval  : %d\n", info.MaxProcessed)

	fmt.Fprintln(w, "=== Search Trace ===")
	fmt.Fprintf(w, "Evaluations         : %d\n", summary.TotalEvaluations)
	fmt.Fprintf(w, "Improved/Accepted   : %d/%d\n", summary.Improved, summary.Accepted)
	fmt.Fprintf(w, "Rejected/Gridlock   : %d/%d\n", summary.Rejected, summary.Gridlock)
	fmt.Fprintf(w, "Acceptance rate     : %.2f\n", summary.AcceptanceRate)
	fmt.Fprintf(w, "Fitness mean/p50/p95: %.3f/%.3f/%.3f\n", summary.Fitness.Mean, summary.Fitness.P50, summary.Fitness.P95)
	fmt.Fprintf(w, "Throughput mean     : %.1f veh/min\n", summary.Throughput.Mean)

	fmt.Fprintln(w, "=== Best Signal Timings ===")
	cols := world.Config.Cols
	for i, d := range info.BestConfig {
		fmt.Fprintf(w, "  (%d,%d) NS=%.0fs EW=%.0fs\n", i/cols, i%cols, d.NS, d.EW)
	}
}

func writeTrace(path string, st *trace.SearchTrace) error {
	data, err := yaml.Marshal(st)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 42, "Seed for traffic, signal offsets and the search")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config-file", "", "YAML file overriding world, annealing and evaluation defaults")

	runCmd.Flags().Float64Var(&simDuration, "duration", 0, "Live seconds to simulate (0 = until the search is done)")
	runCmd.Flags().Float64Var(&simSpeed, "speed", 1, "Simulation speed multiplier")
	runCmd.Flags().BoolVar(&realtime, "realtime", false, "Pace ticks at 60 Hz of wall time")
	runCmd.Flags().StringVar(&traceOutput, "trace-out", "", "Write every consumed evaluation to this YAML file")

	rootCmd.AddCommand(runCmd)
}
