package sim

import (
	"fmt"
	"math"

	"github.com/samber/lo"
)

// Orientation distinguishes the two road axes of a segment.
type Orientation int

const (
	Horizontal Orientation = iota // rows, E/W traffic
	Vertical                      // columns, N/S traffic
)

// SegmentKey identifies the stretch of road a vehicle is on: the cell it
// occupies along its axis and the row or column it travels.
type SegmentKey struct {
	Row, Col    int
	Orientation Orientation
}

// World owns the intersections, the active vehicles and the running
// aggregates. It is advanced by Step from a single goroutine.
type World struct {
	Config        WorldConfig
	Intersections []*Intersection // row-major
	Vehicles      []*Vehicle
	SpeedFactors  map[SegmentKey]float64
	Clock         float64

	TotalWaitTime     float64
	VehiclesProcessed int
	VehiclesSpawned   int
	AvgWaitTime       float64
	Fitness           float64

	spawnTimer float64
	heatTimer  float64
	nextID     int64
	rng        *PartitionedRNG
}

// NewWorld builds the grid described by cfg. Every intersection starts with
// cfg.InitialDuration and a random elapsed offset so signals are not in lockstep.
func NewWorld(cfg WorldConfig, seed int64) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	w := &World{
		Config:       cfg,
		SpeedFactors: make(map[SegmentKey]float64),
		rng:          NewPartitionedRNG(seed),
	}

	signals := w.rng.ForSubsystem(SubsystemSignals)
	for row := range cfg.Rows {
		for col := range cfg.Cols {
			offset := signals.Float64() * cfg.InitialDuration.NS
			w.Intersections = append(w.Intersections, NewIntersection(
				row, col, cfg.ColumnX(col), cfg.RowY(row),
				cfg.InitialDuration, cfg.AllRedDuration, offset))
		}
	}

	// E/W arterials run at full speed, N/S cross streets are slower.
	for row := range cfg.Rows {
		for col := range cfg.Cols {
			w.SpeedFactors[SegmentKey{Row: row, Col: col, Orientation: Horizontal}] = 1.0
			w.SpeedFactors[SegmentKey{Row: row, Col: col, Orientation: Vertical}] = cfg.CrossStreetSpeedFactor
		}
	}
	return w, nil
}

// Step advances the world by dt seconds of simulated time.
func (w *World) Step(dt float64) {
	w.Clock += dt

	for _, in := range w.Intersections {
		in.Update(dt)
	}

	for _, v := range w.Vehicles {
		v.Update(dt, w.SpeedFactor(v), w.Intersections, w.Vehicles, &w.Config)
		if v.State != Waiting || v.Nearest < 0 {
			continue
		}
		in := w.Intersections[v.Nearest]
		if math.Hypot(in.X-v.X, in.Y-v.Y) <= w.Config.AttributionRadius {
			in.recordWaiting(v.StoppedTime)
		}
	}

	w.updateHeat(dt)
	for _, in := range w.Intersections {
		in.rollCounters()
	}

	w.retireExited()
	w.AvgWaitTime = averageWait(w.TotalWaitTime, w.VehiclesProcessed)

	w.advanceSpawner(dt)
	w.Fitness = w.FitnessTerms().Score(w.Config.Fitness)
}

// SpeedFactor returns the multiplier of the segment v is on (1 if unknown).
func (w *World) SpeedFactor(v *Vehicle) float64 {
	if f, ok := w.SpeedFactors[w.segmentOf(v)]; ok {
		return f
	}
	return 1.0
}

func (w *World) segmentOf(v *Vehicle) SegmentKey {
	cfg := w.Config
	row := cellIndex(v.Y, cfg.Margin, cfg.CellSize, cfg.Rows)
	col := cellIndex(v.X, cfg.Margin, cfg.CellSize, cfg.Cols)
	if v.Direction.Vertical() {
		return SegmentKey{Row: row, Col: col, Orientation: Vertical}
	}
	return SegmentKey{Row: row, Col: col, Orientation: Horizontal}
}

func cellIndex(pos, margin, cell float64, n int) int {
	i := int(math.Floor((pos - margin) / cell))
	return min(max(i, 0), n-1)
}

// updateHeat charges or decays each intersection's heat on a fixed cadence.
// It reads the live counters, so it runs before they are rolled.
func (w *World) updateHeat(dt float64) {
	cfg := w.Config
	w.heatTimer += dt
	for w.heatTimer >= cfg.HeatInterval {
		w.heatTimer -= cfg.HeatInterval
		for _, in := range w.Intersections {
			if in.congested(cfg.HeatQueueThreshold, cfg.HeatWaitThreshold) {
				in.Heat = min(MaxHeat, in.Heat+cfg.HeatGain)
			} else {
				in.Heat = max(0, in.Heat*cfg.HeatDecay)
			}
		}
	}
}

func (w *World) retireExited() {
	exited := lo.Filter(w.Vehicles, func(v *Vehicle, _ int) bool { return w.outOfBounds(v) })
	if len(exited) == 0 {
		return
	}
	for _, v := range exited {
		w.TotalWaitTime += v.StoppedTime
		w.VehiclesProcessed++
	}
	w.Vehicles = lo.Reject(w.Vehicles, func(v *Vehicle, _ int) bool { return w.outOfBounds(v) })
}

func (w *World) outOfBounds(v *Vehicle) bool {
	l := w.Config.CarLength
	return v.X < -l || v.X > w.Config.Width()+l || v.Y < -l || v.Y > w.Config.Height()+l
}

func averageWait(total float64, processed int) float64 {
	if processed == 0 {
		return 0
	}
	return total / float64(processed)
}

// advanceSpawner runs the spawn timer. Headless worlds drain it so large
// batches keep pace; live worlds spawn at most once per tick.
func (w *World) advanceSpawner(dt float64) {
	interval := w.Config.SpawnInterval
	w.spawnTimer += dt
	if w.Config.Headless {
		for w.spawnTimer >= interval {
			w.spawnTimer -= interval
			w.Spawn()
		}
		return
	}
	if w.spawnTimer >= interval {
		w.spawnTimer = 0
		w.Spawn()
	}
}

// Spawn adds one vehicle at a random edge lane. It is skipped when the
// vehicle ceiling is reached or the entry of the chosen lane is occupied.
// Returns the new vehicle or nil.
func (w *World) Spawn() *Vehicle {
	cfg := w.Config
	if cfg.MaxVehicles > 0 && len(w.Vehicles) >= cfg.MaxVehicles {
		return nil
	}

	rng := w.rng.ForSubsystem(SubsystemSpawn)
	var dir Direction
	r := rng.Float64() * 2 * (cfg.NSSpawnWeight + cfg.EWSpawnWeight)
	switch {
	case r < cfg.NSSpawnWeight:
		dir = North
	case r < 2*cfg.NSSpawnWeight:
		dir = South
	case r < 2*cfg.NSSpawnWeight+cfg.EWSpawnWeight:
		dir = East
	default:
		dir = West
	}

	var x, y float64
	if dir.Vertical() {
		x = cfg.ColumnX(rng.Intn(cfg.Cols))
	} else {
		y = cfg.RowY(rng.Intn(cfg.Rows))
	}
	switch dir {
	case North:
		x, y = x+cfg.LaneOffset, cfg.Height()
	case South:
		x, y = x-cfg.LaneOffset, 0
	case East:
		x, y = 0, y+cfg.LaneOffset
	case West:
		x, y = cfg.Width(), y-cfg.LaneOffset
	}

	if w.entryBlocked(dir, x, y) {
		return nil
	}

	vrng := w.rng.ForSubsystem(SubsystemVehicles)
	maxSpeed := cfg.MinSpeed + vrng.Float64()*(cfg.MaxSpeed-cfg.MinSpeed)
	accel := cfg.MinAcceleration + vrng.Float64()*(cfg.MaxAcceleration-cfg.MinAcceleration)

	w.nextID++
	v := NewVehicle(w.nextID, x, y, dir, maxSpeed, accel)
	w.Vehicles = append(w.Vehicles, v)
	w.VehiclesSpawned++
	return v
}

func (w *World) entryBlocked(dir Direction, x, y float64) bool {
	probe := &Vehicle{X: x, Y: y, Direction: dir}
	for _, o := range w.Vehicles {
		if o.Direction != dir {
			continue
		}
		ahead, lateral := probe.relative(x, y, o.X, o.Y)
		if math.Abs(lateral) <= w.Config.LaneTolerance && math.Abs(ahead) < 2*w.Config.CarLength {
			return true
		}
	}
	return false
}

// ApplySignalConfig installs cfg on every intersection. Every intersection's
// elapsed restarts at 0, changed or not. Returns how many durations changed.
func (w *World) ApplySignalConfig(cfg SignalConfig) (int, error) {
	if err := cfg.Validate(len(w.Intersections)); err != nil {
		return 0, err
	}
	changed := 0
	for i, in := range w.Intersections {
		if in.Apply(cfg[i], w.Config.ChangedFlash) {
			changed++
		}
	}
	return changed, nil
}

// SignalConfig returns the durations currently installed.
func (w *World) SignalConfig() SignalConfig {
	cfg := make(SignalConfig, len(w.Intersections))
	for i, in := range w.Intersections {
		cfg[i] = in.Durations
	}
	return cfg
}

// RandomizeOffsets seeds every intersection's elapsed with a random point of
// its current phase.
func (w *World) RandomizeOffsets() {
	signals := w.rng.ForSubsystem(SubsystemSignals)
	for _, in := range w.Intersections {
		in.Elapsed = signals.Float64() * in.PhaseDuration()
	}
}

// ResetStats zeroes the running aggregates.
func (w *World) ResetStats() {
	w.TotalWaitTime = 0
	w.VehiclesProcessed = 0
	w.VehiclesSpawned = 0
	w.AvgWaitTime = 0
}

// ResetTelemetry zeroes heat and the queue counters of every intersection
// and rescores fitness from what is left.
func (w *World) ResetTelemetry() {
	w.heatTimer = 0
	for _, in := range w.Intersections {
		in.Heat = 0
		in.WaitingVehicles, in.WaitingTimeTotal = 0, 0
		in.PrevWaitingVehicles, in.PrevWaitingTimeTotal = 0, 0
	}
	w.Fitness = w.FitnessTerms().Score(w.Config.Fitness)
}

// ClearVehicles removes every active vehicle and restarts the spawn timer.
func (w *World) ClearVehicles() {
	w.Vehicles = nil
	w.spawnTimer = 0
}

// String gives a one-line status, handy in logs.
func (w *World) String() string {
	return fmt.Sprintf("t=%.1fs vehicles=%d processed=%d avgWait=%.2fs fitness=%.2f",
		w.Clock, len(w.Vehicles), w.VehiclesProcessed, w.AvgWaitTime, w.Fitness)
}
