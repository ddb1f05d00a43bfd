package anneal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signal-sim/signal-sim/sim"
)

func defaultCandidate() sim.SignalConfig {
	return sim.UniformSignalConfig(9, sim.PhaseDurations{NS: 5, EW: 5})
}

func TestEvaluate_SameSeedSameResult(t *testing.T) {
	world := sim.DefaultWorldConfig()
	opts := DefaultEvalOptions()

	first, err := Evaluate(world, defaultCandidate(), opts, 7)
	require.NoError(t, err)
	second, err := Evaluate(world, defaultCandidate(), opts, 7)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEvaluate_ThroughputIsPerMinuteOfScoredWindow(t *testing.T) {
	opts := DefaultEvalOptions()
	res, err := Evaluate(sim.DefaultWorldConfig(), defaultCandidate(), opts, 11)
	require.NoError(t, err)

	assert.Greater(t, res.VehiclesProcessed, 0)
	assert.InDelta(t, float64(res.VehiclesProcessed)/opts.Duration*60, res.ThroughputPerMinute, 1e-9)
}

func TestEvaluate_DoesNotModifyCandidate(t *testing.T) {
	cfg := defaultCandidate()
	cfg[4] = sim.PhaseDurations{NS: 7, EW: 3}
	before := cfg.Clone()

	_, err := Evaluate(sim.DefaultWorldConfig(), cfg, DefaultEvalOptions(), 1)
	require.NoError(t, err)
	assert.True(t, cfg.Equal(before))
}

func TestEvaluate_RejectsBadInput(t *testing.T) {
	world := sim.DefaultWorldConfig()

	_, err := Evaluate(world, sim.UniformSignalConfig(4, sim.PhaseDurations{NS: 5, EW: 5}), DefaultEvalOptions(), 1)
	assert.ErrorContains(t, err, "4 entries")

	opts := DefaultEvalOptions()
	opts.Timestep = 0
	_, err = Evaluate(world, defaultCandidate(), opts, 1)
	assert.ErrorContains(t, err, "timestep")

	world.Rows = 0
	_, err = Evaluate(world, defaultCandidate(), DefaultEvalOptions(), 1)
	assert.ErrorContains(t, err, "grid")
}

func TestHeadlessEvaluator_UsesRequestedHorizon(t *testing.T) {
	e := HeadlessEvaluator{World: sim.DefaultWorldConfig(), Options: DefaultEvalOptions()}

	got, err := e.Evaluate(defaultCandidate(), 20, 5)
	require.NoError(t, err)

	opts := DefaultEvalOptions()
	opts.Duration = 20
	want, err := Evaluate(sim.DefaultWorldConfig(), defaultCandidate(), opts, 5)
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

func TestSteps_ToleratesExactMultiples(t *testing.T) {
	assert.Equal(t, 600, steps(10, 1.0/60))
	assert.Equal(t, 1500, steps(25, 1.0/60))
	assert.Equal(t, 3, steps(0.25, 0.1))
	assert.Equal(t, 0, steps(0, 0.1))
}
