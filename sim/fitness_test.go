package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFitnessTerms_Score(t *testing.T) {
	terms := FitnessTerms{
		AvgWaitTime:        2,
		MildStops:          3,
		SevereStops:        1,
		Overcrowding:       4,
		QueuedVehicles:     5,
		QueuedTime:         10,
		VehiclesProcessed:  20,
		SpilloverSaturated: 2,
	}
	weights := FitnessWeights{
		AvgWait:        1,
		MildStops:      0.5,
		SevereStops:    2,
		Overcrowding:   0.25,
		QueuedVehicles: 0.1,
		QueuedTime:     0.05,
		Throughput:     0.3,
		Spillover:      2,
	}
	// 2 + 1.5 + 2 + 1 + 0.5 + 0.5 - 6 + 4
	assert.InDelta(t, 5.5, terms.Score(weights), 1e-12)
	assert.Equal(t, 0.0, FitnessTerms{}.Score(weights))
}

func TestWorld_FitnessTermsFromState(t *testing.T) {
	w := newTestWorld(t, func(c *WorldConfig) { c.HeavyCongestionThreshold = 2 })
	cfg := w.Config

	stopped := []float64{0, cfg.MildStopThreshold + 1, cfg.SevereStopThreshold + 1}
	for i, s := range stopped {
		v := NewVehicle(int64(i), 0, 0, East, 100, 50)
		v.StoppedTime = s
		w.Vehicles = append(w.Vehicles, v)
	}
	w.Intersections[0].PrevWaitingVehicles = cfg.SpilloverThreshold + 1
	w.Intersections[0].PrevWaitingTimeTotal = 12
	w.Intersections[1].PrevWaitingVehicles = 2
	w.VehiclesProcessed = 7
	w.AvgWaitTime = 1.5

	terms := w.FitnessTerms()
	assert.Equal(t, FitnessTerms{
		AvgWaitTime:        1.5,
		MildStops:          2,
		SevereStops:        1,
		Overcrowding:       1,
		QueuedVehicles:     cfg.SpilloverThreshold + 3,
		QueuedTime:         12,
		VehiclesProcessed:  7,
		SpilloverSaturated: 1,
	}, terms)
}

func TestWorld_ThroughputLowersFitness(t *testing.T) {
	w := newTestWorld(t, nil)
	before := w.FitnessTerms().Score(w.Config.Fitness)
	w.VehiclesProcessed = 10
	after := w.FitnessTerms().Score(w.Config.Fitness)
	assert.Less(t, after, before)
}
