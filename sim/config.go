package sim

import (
	"fmt"
	"math"
)

// PhaseDurations holds the tunable green times of one intersection, in seconds.
type PhaseDurations struct {
	NS float64 `yaml:"ns_duration"`
	EW float64 `yaml:"ew_duration"`
}

// Validate checks that both green phases have a positive duration.
func (d PhaseDurations) Validate() error {
	if d.NS <= 0 || math.IsNaN(d.NS) {
		return fmt.Errorf("ns_duration must be > 0, got %v", d.NS)
	}
	if d.EW <= 0 || math.IsNaN(d.EW) {
		return fmt.Errorf("ew_duration must be > 0, got %v", d.EW)
	}
	return nil
}

// SignalConfig is the full set of per-intersection durations, in row-major
// order (index = row*cols + col). A SignalConfig handed to an evaluation is
// never modified afterwards; mutation works on a Clone.
type SignalConfig []PhaseDurations

// UniformSignalConfig returns a config of n intersections that all share d.
func UniformSignalConfig(n int, d PhaseDurations) SignalConfig {
	cfg := make(SignalConfig, n)
	for i := range cfg {
		cfg[i] = d
	}
	return cfg
}

// Clone returns an independent copy.
func (c SignalConfig) Clone() SignalConfig {
	out := make(SignalConfig, len(c))
	copy(out, c)
	return out
}

// Equal reports whether both configs carry the same durations in the same order.
func (c SignalConfig) Equal(other SignalConfig) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}

// Validate checks the entry count against the grid and every entry's durations.
func (c SignalConfig) Validate(intersections int) error {
	if len(c) != intersections {
		return fmt.Errorf("signal config has %d entries, grid has %d intersections", len(c), intersections)
	}
	for i, d := range c {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("intersection %d: %w", i, err)
		}
	}
	return nil
}

// FitnessWeights are the coefficients of the congestion cost. Lower cost is better.
type FitnessWeights struct {
	AvgWait        float64 `yaml:"avg_wait"`        // × average wait of processed vehicles
	MildStops      float64 `yaml:"mild_stops"`      // × vehicles stopped longer than MildStopThreshold
	SevereStops    float64 `yaml:"severe_stops"`    // × vehicles stopped longer than SevereStopThreshold
	Overcrowding   float64 `yaml:"overcrowding"`    // × active vehicles above HeavyCongestionThreshold
	QueuedVehicles float64 `yaml:"queued_vehicles"` // × Σ waiting vehicles over intersections
	QueuedTime     float64 `yaml:"queued_time"`     // × Σ waiting time over intersections
	Throughput     float64 `yaml:"throughput"`      // subtracted × vehicles processed
	Spillover      float64 `yaml:"spillover"`       // × intersections above SpilloverThreshold
}

// DefaultFitnessWeights returns the weights used by the CLI when none are configured.
func DefaultFitnessWeights() FitnessWeights {
	return FitnessWeights{
		AvgWait:        1.0,
		MildStops:      0.5,
		SevereStops:    2.0,
		Overcrowding:   0.2,
		QueuedVehicles: 0.1,
		QueuedTime:     0.05,
		Throughput:     0.3,
		Spillover:      2.0,
	}
}

// WorldConfig groups grid geometry, vehicle dynamics, spawning and the
// thresholds feeding telemetry and fitness. Distances are in world units
// (pixels of the reference layout), times in seconds.
type WorldConfig struct {
	Rows       int     `yaml:"rows"`
	Cols       int     `yaml:"cols"`
	CellSize   float64 `yaml:"cell_size"`
	Margin     float64 `yaml:"margin"`     // space between the bounds and the outer cells
	RoadWidth  float64 `yaml:"road_width"` // also the side of the intersection box
	LaneOffset float64 `yaml:"lane_offset"`
	CarLength  float64 `yaml:"car_length"`

	AllRedDuration  float64        `yaml:"all_red_duration"`
	InitialDuration PhaseDurations `yaml:"initial_durations"`

	MinSpeed               float64 `yaml:"min_speed"`
	MaxSpeed               float64 `yaml:"max_speed"`
	MinAcceleration        float64 `yaml:"min_acceleration"`
	MaxAcceleration        float64 `yaml:"max_acceleration"`
	CrossStreetSpeedFactor float64 `yaml:"cross_street_speed_factor"` // N/S segments

	SpawnInterval float64 `yaml:"spawn_interval"`
	MaxVehicles   int     `yaml:"max_vehicles"` // 0 = unbounded
	NSSpawnWeight float64 `yaml:"ns_spawn_weight"`
	EWSpawnWeight float64 `yaml:"ew_spawn_weight"`

	NearDistance      float64 `yaml:"near_distance"`  // stop window ahead of the intersection box
	LaneTolerance     float64 `yaml:"lane_tolerance"` // lateral slack for same-lane detection
	StopGap           float64 `yaml:"stop_gap"`       // a moving vehicle stops below this gap
	StartGap          float64 `yaml:"start_gap"`      // a waiting vehicle starts at or above this gap
	EntryDistance     float64 `yaml:"entry_distance"` // travel before signals are obeyed
	AttributionRadius float64 `yaml:"attribution_radius"`

	HeatInterval       float64 `yaml:"heat_interval"`
	HeatQueueThreshold int     `yaml:"heat_queue_threshold"`
	HeatWaitThreshold  float64 `yaml:"heat_wait_threshold"`
	HeatGain           float64 `yaml:"heat_gain"`
	HeatDecay          float64 `yaml:"heat_decay"`

	MildStopThreshold        float64 `yaml:"mild_stop_threshold"`
	SevereStopThreshold      float64 `yaml:"severe_stop_threshold"`
	HeavyCongestionThreshold int     `yaml:"heavy_congestion_threshold"`
	SpilloverThreshold       int     `yaml:"spillover_threshold"`

	ChangedFlash float64 `yaml:"changed_flash"` // how long an updated intersection stays marked

	Fitness FitnessWeights `yaml:"fitness"`

	// Headless drains the spawn timer every tick instead of spawning at most once.
	Headless bool `yaml:"-"`
}

// DefaultWorldConfig returns a 3x3 grid of 200-unit cells inside a 100-unit margin.
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		Rows:       3,
		Cols:       3,
		CellSize:   200,
		Margin:     100,
		RoadWidth:  40,
		LaneOffset: 10,
		CarLength:  20,

		AllRedDuration:  1,
		InitialDuration: PhaseDurations{NS: 5, EW: 5},

		MinSpeed:               90,
		MaxSpeed:               130,
		MinAcceleration:        60,
		MaxAcceleration:        100,
		CrossStreetSpeedFactor: 0.8,

		SpawnInterval: 0.6,
		MaxVehicles:   80,
		NSSpawnWeight: 0.35,
		EWSpawnWeight: 0.65,

		NearDistance:      18,
		LaneTolerance:     4,
		StopGap:           6,
		StartGap:          12,
		EntryDistance:     30,
		AttributionRadius: 60,

		HeatInterval:       0.2,
		HeatQueueThreshold: 3,
		HeatWaitThreshold:  4,
		HeatGain:           0.5,
		HeatDecay:          0.95,

		MildStopThreshold:        3,
		SevereStopThreshold:      8,
		HeavyCongestionThreshold: 40,
		SpilloverThreshold:       5,

		ChangedFlash: 1.5,

		Fitness: DefaultFitnessWeights(),
	}
}

// Intersections returns the number of grid nodes.
func (c WorldConfig) Intersections() int {
	return c.Rows * c.Cols
}

// Width returns the horizontal extent of the simulated bounds.
func (c WorldConfig) Width() float64 {
	return 2*c.Margin + float64(c.Cols)*c.CellSize
}

// Height returns the vertical extent of the simulated bounds.
func (c WorldConfig) Height() float64 {
	return 2*c.Margin + float64(c.Rows)*c.CellSize
}

// ColumnX returns the x coordinate of the centre line of column col.
func (c WorldConfig) ColumnX(col int) float64 {
	return c.Margin + float64(col)*c.CellSize + c.CellSize/2
}

// RowY returns the y coordinate of the centre line of row row.
func (c WorldConfig) RowY(row int) float64 {
	return c.Margin + float64(row)*c.CellSize + c.CellSize/2
}

// Validate checks the invariants the engine relies on.
func (c WorldConfig) Validate() error {
	if c.Rows < 1 || c.Cols < 1 {
		return fmt.Errorf("grid must be at least 1x1, got %dx%d", c.Rows, c.Cols)
	}
	if c.CellSize <= 0 {
		return fmt.Errorf("cell_size must be > 0, got %v", c.CellSize)
	}
	if c.Margin < 0 {
		return fmt.Errorf("margin must be >= 0, got %v", c.Margin)
	}
	if c.RoadWidth <= 0 || c.RoadWidth >= c.CellSize {
		return fmt.Errorf("road_width must be in (0, cell_size), got %v", c.RoadWidth)
	}
	if c.LaneOffset <= 0 || c.LaneOffset >= c.RoadWidth/2 {
		return fmt.Errorf("lane_offset must be in (0, road_width/2), got %v", c.LaneOffset)
	}
	if c.CarLength <= 0 {
		return fmt.Errorf("car_length must be > 0, got %v", c.CarLength)
	}
	if c.AllRedDuration <= 0 {
		return fmt.Errorf("all_red_duration must be > 0, got %v", c.AllRedDuration)
	}
	if err := c.InitialDuration.Validate(); err != nil {
		return fmt.Errorf("initial_durations: %w", err)
	}
	if c.MinSpeed <= 0 || c.MaxSpeed < c.MinSpeed {
		return fmt.Errorf("speeds must satisfy 0 < min_speed <= max_speed, got [%v, %v]", c.MinSpeed, c.MaxSpeed)
	}
	if c.MinAcceleration <= 0 || c.MaxAcceleration < c.MinAcceleration {
		return fmt.Errorf("accelerations must satisfy 0 < min <= max, got [%v, %v]", c.MinAcceleration, c.MaxAcceleration)
	}
	if c.CrossStreetSpeedFactor <= 0 || c.CrossStreetSpeedFactor > 1 {
		return fmt.Errorf("cross_street_speed_factor must be in (0, 1], got %v", c.CrossStreetSpeedFactor)
	}
	if c.SpawnInterval <= 0 {
		return fmt.Errorf("spawn_interval must be > 0, got %v", c.SpawnInterval)
	}
	if c.MaxVehicles < 0 {
		return fmt.Errorf("max_vehicles must be >= 0, got %d", c.MaxVehicles)
	}
	if c.NSSpawnWeight < 0 || c.EWSpawnWeight < 0 || c.NSSpawnWeight+c.EWSpawnWeight == 0 {
		return fmt.Errorf("spawn weights must be >= 0 and not both zero, got ns=%v ew=%v", c.NSSpawnWeight, c.EWSpawnWeight)
	}
	if c.StopGap < 0 || c.StartGap <= c.StopGap {
		return fmt.Errorf("gaps must satisfy 0 <= stop_gap < start_gap, got stop=%v start=%v", c.StopGap, c.StartGap)
	}
	if c.NearDistance <= 0 {
		return fmt.Errorf("near_distance must be > 0, got %v", c.NearDistance)
	}
	if c.HeatInterval <= 0 {
		return fmt.Errorf("heat_interval must be > 0, got %v", c.HeatInterval)
	}
	if c.HeatDecay < 0 || c.HeatDecay > 1 {
		return fmt.Errorf("heat_decay must be in [0, 1], got %v", c.HeatDecay)
	}
	if c.SevereStopThreshold < c.MildStopThreshold {
		return fmt.Errorf("severe_stop_threshold (%v) must be >= mild_stop_threshold (%v)", c.SevereStopThreshold, c.MildStopThreshold)
	}
	return nil
}
