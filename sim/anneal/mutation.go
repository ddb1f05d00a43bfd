package anneal

import (
	"math"
	"math/rand"

	"github.com/signal-sim/signal-sim/sim"
)

// Mutate returns a copy of cfg where one or two distinct intersections have
// their NS and EW durations nudged by ±1 s independently, clamped to
// [lo, hi]. cfg itself is never modified.
func Mutate(cfg sim.SignalConfig, rng *rand.Rand, lo, hi float64) sim.SignalConfig {
	out := cfg.Clone()
	if len(out) == 0 {
		return out
	}
	n := min(1+rng.Intn(2), len(out))
	for _, i := range rng.Perm(len(out))[:n] {
		out[i].NS = clamp(out[i].NS+unitStep(rng), lo, hi)
		out[i].EW = clamp(out[i].EW+unitStep(rng), lo, hi)
	}
	return out
}

func unitStep(rng *rand.Rand) float64 {
	if rng.Intn(2) == 0 {
		return -1
	}
	return 1
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// AcceptanceProbability is the Metropolis criterion: improvements (delta <= 0)
// are always accepted, regressions with probability exp(-delta/T).
func AcceptanceProbability(delta, temperature float64) float64 {
	if delta <= 0 {
		return 1
	}
	if temperature <= 0 {
		return 0
	}
	return math.Exp(-delta / temperature)
}
