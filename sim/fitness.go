package sim

import "github.com/samber/lo"

// FitnessTerms are the raw inputs of the congestion cost for one tick.
type FitnessTerms struct {
	AvgWaitTime        float64
	MildStops          int // active vehicles stopped longer than the mild threshold
	SevereStops        int // active vehicles stopped longer than the severe threshold
	Overcrowding       int // active vehicles above the heavy congestion threshold
	QueuedVehicles     int // Σ previous-tick waiting vehicles
	QueuedTime         float64
	VehiclesProcessed  int
	SpilloverSaturated int // intersections whose previous queue exceeds the spillover threshold
}

// FitnessTerms collects the cost inputs from the current state. Intersection
// terms read the previous-tick counters.
func (w *World) FitnessTerms() FitnessTerms {
	cfg := w.Config
	return FitnessTerms{
		AvgWaitTime: w.AvgWaitTime,
		MildStops: lo.CountBy(w.Vehicles, func(v *Vehicle) bool {
			return v.StoppedTime > cfg.MildStopThreshold
		}),
		SevereStops: lo.CountBy(w.Vehicles, func(v *Vehicle) bool {
			return v.StoppedTime > cfg.SevereStopThreshold
		}),
		Overcrowding: max(0, len(w.Vehicles)-cfg.HeavyCongestionThreshold),
		QueuedVehicles: lo.SumBy(w.Intersections, func(in *Intersection) int {
			return in.PrevWaitingVehicles
		}),
		QueuedTime: lo.SumBy(w.Intersections, func(in *Intersection) float64 {
			return in.PrevWaitingTimeTotal
		}),
		VehiclesProcessed: w.VehiclesProcessed,
		SpilloverSaturated: lo.CountBy(w.Intersections, func(in *Intersection) bool {
			return in.PrevWaitingVehicles > cfg.SpilloverThreshold
		}),
	}
}

// Score folds the terms into a single cost. Lower is better; throughput is
// the only rewarding term.
func (t FitnessTerms) Score(wt FitnessWeights) float64 {
	return wt.AvgWait*t.AvgWaitTime +
		wt.MildStops*float64(t.MildStops) +
		wt.SevereStops*float64(t.SevereStops) +
		wt.Overcrowding*float64(t.Overcrowding) +
		wt.QueuedVehicles*float64(t.QueuedVehicles) +
		wt.QueuedTime*t.QueuedTime -
		wt.Throughput*float64(t.VehiclesProcessed) +
		wt.Spillover*float64(t.SpilloverSaturated)
}
