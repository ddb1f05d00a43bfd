package sim

import (
	"hash/fnv"
	"math/rand"
)

// === Subsystem Constants ===

const (
	// SubsystemSpawn drives edge, lane and timing choices for new vehicles.
	// Uses the master seed directly.
	SubsystemSpawn = "spawn"

	// SubsystemVehicles draws per-vehicle max speed and acceleration.
	SubsystemVehicles = "vehicles"

	// SubsystemSignals draws the initial phase offsets of intersections.
	SubsystemSignals = "signals"

	// SubsystemSearch drives mutation and Metropolis acceptance draws.
	SubsystemSearch = "search"
)

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG streams per subsystem,
// so that drawing more spawn decisions never shifts the signal offsets and
// vice versa.
//
// Derivation formula:
//   - SubsystemSpawn: seed directly
//   - all other subsystems: seed XOR fnv1a64(subsystemName)
//
// Thread-safety: NOT thread-safe. Each World owns its own PartitionedRNG and
// is driven from a single goroutine.
type PartitionedRNG struct {
	seed       int64
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a master seed.
func NewPartitionedRNG(seed int64) *PartitionedRNG {
	return &PartitionedRNG{
		seed:       seed,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns the cached stream for name, creating it on first use.
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}

	derivedSeed := p.seed
	if name != SubsystemSpawn {
		derivedSeed = p.seed ^ fnv1a64(name)
	}

	rng := rand.New(rand.NewSource(derivedSeed))
	p.subsystems[name] = rng
	return rng
}

// Seed returns the master seed.
func (p *PartitionedRNG) Seed() int64 {
	return p.seed
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
