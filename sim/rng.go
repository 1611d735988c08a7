package sim

import (
	"hash/fnv"
	"math/rand"
)

// SimulationKey is the seed of a run. A layout, config and key together
// fix every spawn, pick and checkout decision.
type SimulationKey int64

// NewSimulationKey wraps seed as a SimulationKey.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// RNG streams. Each draws from its own source so shelf choices never shift
// the spawn schedule.
const (
	SubsystemSpawn    = "spawn"    // spawn gaps; seeded with the key itself
	SubsystemCustomer = "customer" // names and shopping lists
	SubsystemShelf    = "shelf"    // which of an item's shelves to visit
)

// PartitionedRNG hands out one *rand.Rand per stream. Streams other than
// spawn are seeded with key ^ fnv1a64(name). Only the event loop may use it.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG returns an RNG set for key.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns the stream for name, creating it on first use.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	rng, ok := p.subsystems[name]
	if !ok {
		seed := int64(p.key)
		if name != SubsystemSpawn {
			seed ^= fnv1a64(name)
		}
		rng = rand.New(rand.NewSource(seed))
		p.subsystems[name] = rng
	}
	return rng
}

// Key returns the run seed.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

func fnv1a64(name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return int64(h.Sum64())
}
