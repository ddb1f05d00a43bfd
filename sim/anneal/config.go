package anneal

import (
	"fmt"
	"math"
)

// Config holds the search schedule and the mutation bounds.
type Config struct {
	TemperatureStart float64 `yaml:"temperature_start"`
	TemperatureMin   float64 `yaml:"temperature_min"`
	CoolingRate      float64 `yaml:"cooling_rate"` // α in (0, 1)
	Interval         float64 `yaml:"interval"`     // live seconds between proposals

	// The scored horizon of an evaluation grows from MinEvalDuration at
	// TemperatureStart to MaxEvalDuration at TemperatureMin.
	MinEvalDuration float64 `yaml:"min_eval_duration"`
	MaxEvalDuration float64 `yaml:"max_eval_duration"`

	MinDuration float64 `yaml:"min_duration"` // mutation clamp, seconds of green
	MaxDuration float64 `yaml:"max_duration"`

	HistorySize int `yaml:"history_size"`
}

// DefaultConfig returns the schedule used by the CLI.
func DefaultConfig() Config {
	return Config{
		TemperatureStart: 150,
		TemperatureMin:   1,
		CoolingRate:      0.95,
		Interval:         5,
		MinEvalDuration:  10,
		MaxEvalDuration:  30,
		MinDuration:      3,
		MaxDuration:      10,
		HistorySize:      100,
	}
}

// Validate checks the schedule invariants.
func (c Config) Validate() error {
	if c.TemperatureMin <= 0 {
		return fmt.Errorf("temperature_min must be > 0, got %v", c.TemperatureMin)
	}
	if c.TemperatureStart <= c.TemperatureMin {
		return fmt.Errorf("temperature_start (%v) must exceed temperature_min (%v)", c.TemperatureStart, c.TemperatureMin)
	}
	if c.CoolingRate <= 0 || c.CoolingRate >= 1 {
		return fmt.Errorf("cooling_rate must be in (0, 1), got %v", c.CoolingRate)
	}
	if c.Interval < 0 {
		return fmt.Errorf("interval must be >= 0, got %v", c.Interval)
	}
	if c.MinEvalDuration <= 0 || c.MaxEvalDuration < c.MinEvalDuration {
		return fmt.Errorf("eval durations must satisfy 0 < min <= max, got [%v, %v]", c.MinEvalDuration, c.MaxEvalDuration)
	}
	if c.MinDuration <= 0 || c.MaxDuration < c.MinDuration {
		return fmt.Errorf("duration bounds must satisfy 0 < min <= max, got [%v, %v]", c.MinDuration, c.MaxDuration)
	}
	if c.HistorySize < 1 {
		return fmt.Errorf("history_size must be >= 1, got %d", c.HistorySize)
	}
	return nil
}

// EvalDuration maps a temperature to a scored horizon. Progress is measured
// on a log scale because the temperature decays geometrically.
func (c Config) EvalDuration(temperature float64) float64 {
	progress := math.Log(c.TemperatureStart/temperature) / math.Log(c.TemperatureStart/c.TemperatureMin)
	progress = min(max(progress, 0), 1)
	return c.MinEvalDuration + progress*(c.MaxEvalDuration-c.MinEvalDuration)
}
