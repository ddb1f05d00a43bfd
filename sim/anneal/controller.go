package anneal

import (
	"math"
	"math/rand"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/signal-sim/signal-sim/sim"
	"github.com/signal-sim/signal-sim/sim/trace"
)

// outcome is what the background evaluation hands back through the mailbox.
type outcome struct {
	jobID   string
	config  sim.SignalConfig
	horizon float64
	result  EvalResult
	err     error
}

// Controller runs simulated annealing over signal configurations while a
// live World keeps running. Evaluations run on a background goroutine, one
// at a time; the live World is only ever touched by the goroutine calling
// Advance.
//
// Thread-safety: Advance and every accessor must be called from the same
// goroutine. The mailbox channel is the only state shared with evaluations.
type Controller struct {
	world *sim.World
	eval  Evaluator
	cfg   Config
	rng   *rand.Rand

	temperature    float64
	currentConfig  sim.SignalConfig
	currentFitness float64
	bestConfig     sim.SignalConfig
	bestFitness    float64
	history        *History

	status Status
	detail string

	timer    float64
	started  bool
	inFlight bool
	locked   bool
	mailbox  chan outcome

	initialized      bool
	evaluations      int
	lastThroughput   float64
	lastProcessed    int
	maxProcessed     int
	lastEvalDuration float64
	trace            *trace.SearchTrace
}

// NewController wires a controller to the live world. The initial current
// configuration is whatever the world has installed; it is the first
// candidate evaluated.
func NewController(world *sim.World, eval Evaluator, cfg Config, seed int64) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	current := world.SignalConfig()
	return &Controller{
		world:          world,
		eval:           eval,
		cfg:            cfg,
		rng:            sim.NewPartitionedRNG(seed).ForSubsystem(sim.SubsystemSearch),
		temperature:    cfg.TemperatureStart,
		currentConfig:  current,
		currentFitness: math.Inf(1),
		bestConfig:     current.Clone(),
		bestFitness:    math.Inf(1),
		history:        NewHistory(cfg.HistorySize),
		status:         Evaluating,
		detail:         "waiting for first evaluation",
		mailbox:        make(chan outcome, 1),
		trace:          trace.NewSearchTrace(),
	}, nil
}

// Advance ticks the live world and the search by dt×speed simulated seconds.
// A non-positive product is a no-op, which is how callers pause. Advance
// never blocks on a running evaluation.
func (c *Controller) Advance(dt, speed float64) {
	scaled := dt * speed
	if scaled <= 0 {
		return
	}
	c.world.Step(scaled)
	if c.locked {
		return
	}
	c.timer += scaled

	select {
	case out := <-c.mailbox:
		c.inFlight = false
		c.consume(out)
	default:
		if !c.inFlight && (!c.started || c.timer >= c.cfg.Interval) {
			c.dispatch()
		}
	}

	if c.temperature <= c.cfg.TemperatureMin && !c.inFlight {
		c.freeze()
	}
}

// dispatch starts one background evaluation. The first one scores the
// initial configuration unmodified; later ones score a mutation of current.
func (c *Controller) dispatch() {
	candidate := c.currentConfig.Clone()
	if c.started {
		candidate = Mutate(c.currentConfig, c.rng, c.cfg.MinDuration, c.cfg.MaxDuration)
	}
	c.started = true
	c.timer = 0
	c.inFlight = true
	c.status = Evaluating

	jobID := uuid.NewString()
	horizon := c.cfg.EvalDuration(c.temperature)
	seed := c.rng.Int63()
	c.lastEvalDuration = horizon

	logrus.WithFields(logrus.Fields{
		"job":         jobID,
		"horizon":     horizon,
		"temperature": c.temperature,
	}).Debug("dispatching evaluation")

	eval, mailbox := c.eval, c.mailbox
	go func() {
		res, err := eval.Evaluate(candidate, horizon, seed)
		mailbox <- outcome{jobID: jobID, config: candidate, horizon: horizon, result: res, err: err}
	}()
}

func (c *Controller) consume(out outcome) {
	c.evaluations++
	rec := trace.EvaluationRecord{
		JobID:               out.jobID,
		Clock:               c.world.Clock,
		Horizon:             out.horizon,
		Temperature:         c.temperature,
		Fitness:             out.result.Fitness,
		ThroughputPerMinute: out.result.ThroughputPerMinute,
		VehiclesProcessed:   out.result.VehiclesProcessed,
	}

	if out.err != nil {
		logrus.Warnf("evaluation %s failed: %v", out.jobID, out.err)
		c.status = Rejected
		c.detail = "evaluation failed"
		rec.Kind = trace.OutcomeFailed
		c.trace.Record(rec)
		return
	}

	c.lastThroughput = out.result.ThroughputPerMinute
	c.lastProcessed = out.result.VehiclesProcessed
	c.maxProcessed = max(c.maxProcessed, out.result.VehiclesProcessed)

	if out.result.VehiclesProcessed == 0 {
		logrus.Warnf("evaluation %s processed no vehicles in %.1fs, rejecting", out.jobID, out.horizon)
		c.status = Rejected
		c.detail = "gridlock, config rejected"
		c.timer = 0
		rec.Kind = trace.OutcomeGridlock
		c.trace.Record(rec)
		return
	}

	fitness := out.result.Fitness
	if !c.initialized {
		c.initialized = true
		c.currentConfig, c.currentFitness = out.config, fitness
		c.bestConfig, c.bestFitness = out.config.Clone(), fitness
		c.apply(out.config)
		c.status = Applying
		c.detail = "config initialized"
		rec.Kind = trace.OutcomeInitialized
		rec.AcceptProbability = 1
		c.history.Push(c.bestFitness)
		c.trace.Record(rec)
		logrus.Infof("annealing initialized: fitness=%.3f throughput=%.1f/min", fitness, out.result.ThroughputPerMinute)
		return
	}

	delta := fitness - c.currentFitness
	p := AcceptanceProbability(delta, c.temperature)
	rec.Delta = delta
	rec.AcceptProbability = p

	if c.rng.Float64() < p {
		c.currentConfig, c.currentFitness = out.config, fitness
		if fitness < c.bestFitness {
			c.bestConfig, c.bestFitness = out.config.Clone(), fitness
			c.apply(out.config)
			c.world.ResetStats()
			c.status = Applying
			c.detail = "better config found"
			rec.Kind = trace.OutcomeImproved
		} else {
			c.status = Waiting
			c.detail = "accepted as current"
			rec.Kind = trace.OutcomeAccepted
		}
	} else {
		c.status = Rejected
		c.detail = "config rejected"
		rec.Kind = trace.OutcomeRejected
	}

	c.trace.Record(rec)
	c.temperature *= c.cfg.CoolingRate
	c.history.Push(c.bestFitness)

	logrus.WithFields(logrus.Fields{
		"kind":        rec.Kind,
		"fitness":     fitness,
		"delta":       delta,
		"p":           p,
		"best":        c.bestFitness,
		"temperature": c.temperature,
	}).Info("annealing step")
}

func (c *Controller) apply(cfg sim.SignalConfig) {
	changed, err := c.world.ApplySignalConfig(cfg)
	if err != nil {
		// Candidates come from the world's own config through Mutate, so
		// their shape always matches the grid.
		logrus.Errorf("cannot apply config: %v", err)
		return
	}
	logrus.Debugf("applied config, %d intersections changed", changed)
}

// freeze installs the best configuration for good and restarts traffic.
func (c *Controller) freeze() {
	if c.locked {
		return
	}
	c.apply(c.bestConfig)
	c.world.ClearVehicles()
	c.world.ResetStats()
	c.world.ResetTelemetry()
	c.locked = true
	c.status = Done
	c.detail = "search finished"
	logrus.Infof("annealing done after %d evaluations: best fitness=%.3f", c.evaluations, c.bestFitness)
}

// Status returns the search state.
func (c *Controller) Status() Status { return c.status }

// Done reports whether the controller has frozen on its best configuration.
func (c *Controller) Done() bool { return c.locked }

// Temperature returns the current temperature.
func (c *Controller) Temperature() float64 { return c.temperature }

// CurrentConfig returns a copy of the current configuration.
func (c *Controller) CurrentConfig() sim.SignalConfig { return c.currentConfig.Clone() }

// CurrentFitness returns +Inf until the first evaluation completes.
func (c *Controller) CurrentFitness() float64 { return c.currentFitness }

// BestConfig returns a copy of the best configuration found so far.
func (c *Controller) BestConfig() sim.SignalConfig { return c.bestConfig.Clone() }

// BestFitness returns +Inf until the first evaluation completes.
func (c *Controller) BestFitness() float64 { return c.bestFitness }

// InFlight reports whether an evaluation is running.
func (c *Controller) InFlight() bool { return c.inFlight }

// Evaluations returns how many evaluation outcomes have been consumed.
func (c *Controller) Evaluations() int { return c.evaluations }

// Trace returns the record of consumed evaluations.
func (c *Controller) Trace() *trace.SearchTrace { return c.trace }

// World returns the live world.
func (c *Controller) World() *sim.World { return c.world }

// DebugInfo is a read-only view of the search for display.
type DebugInfo struct {
	Status         Status
	Detail         string
	Temperature    float64
	CurrentFitness float64
	BestFitness    float64
	FitnessHistory []float64
	Countdown      float64 // live seconds until the next proposal
	EvalDuration   float64 // horizon of the latest dispatched evaluation
	InFlight       bool
	Evaluations    int

	LastThroughput float64
	LastProcessed  int
	MaxProcessed   int

	BestConfig sim.SignalConfig
}

// DebugInfo returns a snapshot of the search state.
func (c *Controller) DebugInfo() DebugInfo {
	countdown := 0.0
	if !c.locked {
		countdown = max(0, c.cfg.Interval-c.timer)
	}
	return DebugInfo{
		Status:         c.status,
		Detail:         c.detail,
		Temperature:    c.temperature,
		CurrentFitness: c.currentFitness,
		BestFitness:    c.bestFitness,
		FitnessHistory: c.history.Values(),
		Countdown:      countdown,
		EvalDuration:   c.lastEvalDuration,
		InFlight:       c.inFlight,
		Evaluations:    c.evaluations,
		LastThroughput: c.lastThroughput,
		LastProcessed:  c.lastProcessed,
		MaxProcessed:   c.maxProcessed,
		BestConfig:     c.bestConfig.Clone(),
	}
}

// Frame is everything a viewer needs for one tick.
type Frame struct {
	World sim.Snapshot
	Debug DebugInfo
}

// Frame captures the live world and the search state together.
func (c *Controller) Frame() Frame {
	return Frame{World: c.world.Snapshot(), Debug: c.DebugInfo()}
}
