package sim

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"math/rand"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two simulations with the same SimulationKey and identical configuration
// MUST produce bit-for-bit identical timelines.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemASync is the RNG subsystem for ASYNC timing jitter and robot choice.
	SubsystemASync = "async"

	// SubsystemSSync is the RNG subsystem for SSYNC active-set selection.
	// Only used through ForRound, never as a shared stream.
	SubsystemSSync = "ssync"

	// SubsystemFrames is the RNG subsystem for drawing random robot frames.
	SubsystemFrames = "frames"

	// SubsystemScenario is the RNG subsystem for generating initial configurations.
	SubsystemScenario = "scenario"
)

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula: masterSeed XOR fnv1a64(subsystemName).
// ForRound additionally mixes in the bits of a simulation timestamp.
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(int64(p.key) ^ fnv1a64(name)))
	p.subsystems[name] = rng
	return rng
}

// ForRound returns a fresh RNG whose sequence depends only on the key, the subsystem
// name and the timestamp t. Asking twice for the same round yields identical draws,
// no matter what was drawn in between.
func (p *PartitionedRNG) ForRound(name string, t float64) *rand.Rand {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(t))
	h := fnv.New64a()
	h.Write([]byte(name))
	h.Write(buf[:])
	return rand.New(rand.NewSource(int64(p.key) ^ int64(h.Sum64())))
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
