package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWorldConfig_Valid(t *testing.T) {
	cfg := DefaultWorldConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 9, cfg.Intersections())
	assert.Equal(t, 800.0, cfg.Width())
	assert.Equal(t, 800.0, cfg.Height())
	assert.Equal(t, 200.0, cfg.ColumnX(0))
	assert.Equal(t, 600.0, cfg.RowY(2))
}

func TestWorldConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*WorldConfig)
		errorMsg string
	}{
		{"empty grid", func(c *WorldConfig) { c.Rows = 0 }, "grid must be at least 1x1"},
		{"road wider than cell", func(c *WorldConfig) { c.RoadWidth = 250 }, "road_width"},
		{"lane outside road", func(c *WorldConfig) { c.LaneOffset = 20 }, "lane_offset"},
		{"inverted speeds", func(c *WorldConfig) { c.MaxSpeed = 10 }, "speeds"},
		{"zero spawn interval", func(c *WorldConfig) { c.SpawnInterval = 0 }, "spawn_interval"},
		{"no spawn weight", func(c *WorldConfig) { c.NSSpawnWeight, c.EWSpawnWeight = 0, 0 }, "spawn weights"},
		{"start gap below stop gap", func(c *WorldConfig) { c.StartGap = c.StopGap }, "gaps"},
		{"heat decay above one", func(c *WorldConfig) { c.HeatDecay = 1.5 }, "heat_decay"},
		{"severe below mild", func(c *WorldConfig) { c.SevereStopThreshold = 1 }, "severe_stop_threshold"},
		{"bad initial durations", func(c *WorldConfig) { c.InitialDuration.EW = 0 }, "initial_durations"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultWorldConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestSignalConfig_CloneIsIndependent(t *testing.T) {
	orig := UniformSignalConfig(4, PhaseDurations{NS: 5, EW: 5})
	clone := orig.Clone()
	clone[2].NS = 9

	assert.Equal(t, 5.0, orig[2].NS)
	assert.False(t, orig.Equal(clone))
	assert.True(t, orig.Equal(orig.Clone()))
}

func TestSignalConfig_Validate(t *testing.T) {
	cfg := UniformSignalConfig(9, PhaseDurations{NS: 4, EW: 6})
	assert.NoError(t, cfg.Validate(9))

	err := cfg.Validate(4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "9 entries")

	cfg[3].NS = -1
	err = cfg.Validate(9)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "intersection 3")
}
