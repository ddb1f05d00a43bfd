package trace

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Distribution captures the statistical summary of a metric.
type Distribution struct {
	Mean   float64
	StdDev float64
	P50    float64
	P95    float64
	Min    float64
	Max    float64
	Count  int
}

// NewDistribution computes a Distribution from raw values.
// Returns zero-value Distribution for empty input.
func NewDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	d := Distribution{
		Mean:  stat.Mean(sorted, nil),
		P50:   stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P95:   stat.Quantile(0.95, stat.Empirical, sorted, nil),
		Min:   floats.Min(sorted),
		Max:   floats.Max(sorted),
		Count: len(sorted),
	}
	if len(sorted) > 1 {
		d.StdDev = stat.StdDev(sorted, nil)
	}
	return d
}

// TraceSummary aggregates statistics from a SearchTrace.
type TraceSummary struct {
	TotalEvaluations int
	Initialized      int
	Improved         int
	Accepted         int
	Rejected         int
	Gridlock         int
	Failed           int

	AcceptanceRate float64 // (improved+accepted) / Metropolis decisions
	BestFitness    float64 // NaN when nothing was adopted
	Fitness        Distribution
	Throughput     Distribution
}

// Summarize computes aggregate statistics from a SearchTrace.
// Safe for nil or empty traces.
func Summarize(st *SearchTrace) *TraceSummary {
	summary := &TraceSummary{BestFitness: math.NaN()}
	if st == nil {
		return summary
	}

	var fitness, throughput []float64
	for _, r := range st.Records {
		summary.TotalEvaluations++
		switch r.Kind {
		case OutcomeInitialized:
			summary.Initialized++
		case OutcomeImproved:
			summary.Improved++
		case OutcomeAccepted:
			summary.Accepted++
		case OutcomeRejected:
			summary.Rejected++
		case OutcomeGridlock:
			summary.Gridlock++
		case OutcomeFailed:
			summary.Failed++
		}
		if r.Kind == OutcomeGridlock || r.Kind == OutcomeFailed {
			continue
		}
		fitness = append(fitness, r.Fitness)
		throughput = append(throughput, r.ThroughputPerMinute)
		if r.Kind == OutcomeInitialized || r.Kind == OutcomeImproved {
			if math.IsNaN(summary.BestFitness) || r.Fitness < summary.BestFitness {
				summary.BestFitness = r.Fitness
			}
		}
	}

	if decisions := summary.Improved + summary.Accepted + summary.Rejected; decisions > 0 {
		summary.AcceptanceRate = float64(summary.Improved+summary.Accepted) / float64(decisions)
	}
	summary.Fitness = NewDistribution(fitness)
	summary.Throughput = NewDistribution(throughput)
	return summary
}
