package anneal

import (
	"fmt"
	"math"

	"github.com/signal-sim/signal-sim/sim"
)

// EvalOptions fixes the shape of a headless evaluation. Duration is the
// scored horizon; the controller overrides it per evaluation from the
// temperature schedule.
type EvalOptions struct {
	Warmup   float64 `yaml:"warmup"`   // unscored seconds before the window opens
	Duration float64 `yaml:"duration"` // scored seconds
	Timestep float64 `yaml:"timestep"` // fixed simulated step
}

// DefaultEvalOptions returns a 15 s warm-up, a 10 s window and 60 Hz steps.
func DefaultEvalOptions() EvalOptions {
	return EvalOptions{Warmup: 15, Duration: 10, Timestep: 1.0 / 60}
}

// Validate checks the options.
func (o EvalOptions) Validate() error {
	if o.Warmup < 0 {
		return fmt.Errorf("warmup must be >= 0, got %v", o.Warmup)
	}
	if o.Duration <= 0 {
		return fmt.Errorf("duration must be > 0, got %v", o.Duration)
	}
	if o.Timestep <= 0 || o.Timestep > 1 {
		return fmt.Errorf("timestep must be in (0, 1], got %v", o.Timestep)
	}
	return nil
}

// EvalResult is the score of one candidate configuration.
type EvalResult struct {
	Fitness             float64
	ThroughputPerMinute float64
	VehiclesProcessed   int
}

// Evaluator scores a candidate signal configuration over duration scored
// seconds. Implementations must not share mutable state with the caller:
// the controller calls Evaluate from a background goroutine.
type Evaluator interface {
	Evaluate(cfg sim.SignalConfig, duration float64, seed int64) (EvalResult, error)
}

// HeadlessEvaluator runs each candidate on a private, freshly built World.
type HeadlessEvaluator struct {
	World   sim.WorldConfig
	Options EvalOptions
}

// Evaluate implements Evaluator.
func (e HeadlessEvaluator) Evaluate(cfg sim.SignalConfig, duration float64, seed int64) (EvalResult, error) {
	opts := e.Options
	opts.Duration = duration
	return Evaluate(e.World, cfg, opts, seed)
}

// Evaluate builds a World from world, installs cfg with randomized phase
// offsets, runs the warm-up and then the scored window at a fixed timestep.
// Aggregates are reset when the warm-up ends, so fitness and throughput only
// cover the scored window. The same inputs always give the same result.
func Evaluate(world sim.WorldConfig, cfg sim.SignalConfig, opts EvalOptions, seed int64) (EvalResult, error) {
	if err := opts.Validate(); err != nil {
		return EvalResult{}, err
	}
	world.Headless = true
	w, err := sim.NewWorld(world, seed)
	if err != nil {
		return EvalResult{}, err
	}
	if _, err := w.ApplySignalConfig(cfg); err != nil {
		return EvalResult{}, err
	}
	w.RandomizeOffsets()

	total := steps(opts.Warmup+opts.Duration, opts.Timestep)
	warm := steps(opts.Warmup, opts.Timestep)
	for i := range total {
		if i == warm {
			w.ResetStats()
		}
		w.Step(opts.Timestep)
	}

	res := EvalResult{
		Fitness:           w.Fitness,
		VehiclesProcessed: w.VehiclesProcessed,
	}
	if opts.Duration > 0 {
		res.ThroughputPerMinute = float64(w.VehiclesProcessed) / opts.Duration * 60
	}
	return res, nil
}

// steps is ⌈span/ts⌉, tolerant of float noise on exact multiples.
func steps(span, ts float64) int {
	return int(math.Ceil(span/ts - 1e-9))
}
