package sim

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/storesim/storesim/sim/facility"
)

// customerNamespace scopes the name-based UUIDs given to customers.
var customerNamespace = uuid.MustParse("9c1d5b0e-3f7a-4e39-9a52-6f0c2d8e4b17")

// CustomerNames are drawn uniformly for new customers.
var CustomerNames = []string{
	"Michael", "Christopher", "Matthew", "Joshua", "Jacob", "Nicholas", "Andrew", "Daniel", "Tyler", "Joseph",
	"Jessica", "Ashley", "Emily", "Sarah", "Amanda", "Elizabeth", "Taylor", "Megan", "Hannah", "Lauren",
}

// CustomerGenerator creates customers with random names and shopping lists.
// Ids are UUIDv5 derived from the seed and spawn sequence, so identical seeds
// yield identical ids.
type CustomerGenerator struct {
	seed         int64
	catalog      []string
	maxListItems int
	maxQuantity  int
	seq          int
}

// NewCustomerGenerator creates a generator over the given item catalog.
func NewCustomerGenerator(seed int64, catalog []string, maxListItems, maxQuantity int) *CustomerGenerator {
	return &CustomerGenerator{
		seed:         seed,
		catalog:      append([]string(nil), catalog...),
		maxListItems: maxListItems,
		maxQuantity:  maxQuantity,
	}
}

// Next creates the next customer standing at start. The list holds between
// one and maxListItems distinct item kinds (capped by the catalog size), each
// wanted in a quantity between one and maxQuantity.
func (g *CustomerGenerator) Next(rng *rand.Rand, start facility.NodeID) *Customer {
	g.seq++
	id := uuid.NewSHA1(customerNamespace, []byte(fmt.Sprintf("%d/%d", g.seed, g.seq))).String()
	name := CustomerNames[rng.Intn(len(CustomerNames))]

	maxItems := min(g.maxListItems, len(g.catalog))
	if maxItems <= 0 {
		return NewCustomer(id, name, start, nil)
	}
	n := 1 + rng.Intn(maxItems)
	perm := rng.Perm(len(g.catalog))
	list := make([]ShoppingListEntry, n)
	for i := 0; i < n; i++ {
		list[i] = ShoppingListEntry{
			Item:     g.catalog[perm[i]],
			Required: 1 + rng.Intn(g.maxQuantity),
		}
	}
	return NewCustomer(id, name, start, list)
}

// SpawnEvent brings a new random customer into the store and schedules the
// next spawn SpawnInterval ± SpawnJitter later.
type SpawnEvent struct {
	time int64
}

// NewSpawnEvent creates a SpawnEvent at the given tick.
func NewSpawnEvent(time int64) *SpawnEvent {
	return &SpawnEvent{time: time}
}

// Timestamp returns the scheduled time of the SpawnEvent.
func (e *SpawnEvent) Timestamp() int64 {
	return e.time
}

// Execute spawns one customer unless the customer cap has been reached.
func (e *SpawnEvent) Execute(sim *Simulator) {
	if sim.Config.MaxCustomers > 0 && sim.Spawned() >= sim.Config.MaxCustomers {
		return
	}
	if _, err := sim.SpawnRandom(); err != nil {
		logrus.Errorf("[tick %09d] spawn failed: %v", sim.Clock, err)
	}
	if sim.Config.MaxCustomers > 0 && sim.Spawned() >= sim.Config.MaxCustomers {
		return
	}
	sim.Schedule(NewSpawnEvent(e.time + sim.nextSpawnGap()))
}

// nextSpawnGap draws the delay until the next spawn, uniform in
// [SpawnInterval-SpawnJitter, SpawnInterval+SpawnJitter].
func (sim *Simulator) nextSpawnGap() int64 {
	gap := sim.Config.SpawnInterval
	if j := sim.Config.SpawnJitter; j > 0 {
		gap += sim.RNG.ForSubsystem(SubsystemSpawn).Int63n(2*j+1) - j
	}
	return max(gap, 1)
}

// StartSpawning schedules the first spawn at the current clock.
func (sim *Simulator) StartSpawning() {
	sim.Schedule(NewSpawnEvent(sim.Clock))
}
