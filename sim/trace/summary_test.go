package trace

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDistribution(t *testing.T) {
	assert.Equal(t, Distribution{}, NewDistribution(nil))

	single := NewDistribution([]float64{4})
	assert.Equal(t, 4.0, single.Mean)
	assert.Equal(t, 0.0, single.StdDev)
	assert.Equal(t, 1, single.Count)

	d := NewDistribution([]float64{5, 1, 3, 2, 4})
	assert.Equal(t, 3.0, d.Mean)
	assert.Equal(t, 3.0, d.P50)
	assert.Equal(t, 5.0, d.P95)
	assert.Equal(t, 1.0, d.Min)
	assert.Equal(t, 5.0, d.Max)
	assert.Equal(t, 5, d.Count)
	assert.InDelta(t, math.Sqrt(2.5), d.StdDev, 1e-12)
}

func TestSummarize_NilTrace(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.TotalEvaluations)
	assert.True(t, math.IsNaN(s.BestFitness))
}

func TestSummarize_CountsAndBest(t *testing.T) {
	st := NewSearchTrace()
	st.Record(EvaluationRecord{Kind: OutcomeGridlock, Fitness: -100})
	st.Record(EvaluationRecord{Kind: OutcomeInitialized, Fitness: 20, ThroughputPerMinute: 30})
	st.Record(EvaluationRecord{Kind: OutcomeImproved, Fitness: 15, ThroughputPerMinute: 40})
	st.Record(EvaluationRecord{Kind: OutcomeAccepted, Fitness: 18, ThroughputPerMinute: 35})
	st.Record(EvaluationRecord{Kind: OutcomeRejected, Fitness: 30, ThroughputPerMinute: 20})
	st.Record(EvaluationRecord{Kind: OutcomeFailed})

	s := Summarize(st)
	assert.Equal(t, 6, s.TotalEvaluations)
	assert.Equal(t, 1, s.Initialized)
	assert.Equal(t, 1, s.Improved)
	assert.Equal(t, 1, s.Accepted)
	assert.Equal(t, 1, s.Rejected)
	assert.Equal(t, 1, s.Gridlock)
	assert.Equal(t, 1, s.Failed)
	assert.InDelta(t, 2.0/3.0, s.AcceptanceRate, 1e-12)
	// gridlock fitness never counts as best
	assert.Equal(t, 15.0, s.BestFitness)
	assert.Equal(t, 4, s.Fitness.Count)
	assert.Equal(t, 30.0, s.Fitness.Max)
	assert.Equal(t, 31.25, s.Throughput.Mean)
}
