package sim

import (
	"math"
	"math/rand"
	"testing"
)

func TestSimulationKey_Creation(t *testing.T) {
	tests := []struct {
		name string
		seed int64
	}{
		{"positive seed", 42},
		{"zero seed", 0},
		{"negative seed", -1},
		{"min int64", math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := NewSimulationKey(tt.seed)
			if int64(key) != tt.seed {
				t.Errorf("NewSimulationKey(%d) = %d, want %d", tt.seed, key, tt.seed)
			}
		})
	}
}

func TestPartitionedRNG_DeterministicDerivation(t *testing.T) {
	// Same key+name produces same sequence
	rng1 := NewPartitionedRNG(NewSimulationKey(42))
	rng2 := NewPartitionedRNG(NewSimulationKey(42))

	for i := 0; i < 3; i++ {
		v1 := rng1.ForSubsystem(SubsystemShelf).Float64()
		v2 := rng2.ForSubsystem(SubsystemShelf).Float64()
		if v1 != v2 {
			t.Errorf("Value %d: got %v and %v, want identical", i, v1, v2)
		}
	}
}

func TestPartitionedRNG_SubsystemIsolation(t *testing.T) {
	// Drawing shelves must not shift the spawn schedule
	rngA := NewPartitionedRNG(NewSimulationKey(7))
	rngB := NewPartitionedRNG(NewSimulationKey(7))

	for i := 0; i < 10; i++ {
		rngA.ForSubsystem(SubsystemShelf).Intn(4)
	}

	for i := 0; i < 5; i++ {
		a := rngA.ForSubsystem(SubsystemSpawn).Int63()
		b := rngB.ForSubsystem(SubsystemSpawn).Int63()
		if a != b {
			t.Fatalf("spawn draw %d differs after shelf draws: %d != %d", i, a, b)
		}
	}
}

func TestPartitionedRNG_SpawnUsesMasterSeed(t *testing.T) {
	seed := int64(42)
	rng := NewPartitionedRNG(NewSimulationKey(seed))
	spawn := rng.ForSubsystem(SubsystemSpawn)
	direct := rand.New(rand.NewSource(seed))

	for i := 0; i < 10; i++ {
		if got, want := spawn.Float64(), direct.Float64(); got != want {
			t.Errorf("Value %d: spawn RNG = %v, direct RNG = %v", i, got, want)
		}
	}
}

func TestPartitionedRNG_CachesInstance(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(42))
	if rng.ForSubsystem(SubsystemCustomer) != rng.ForSubsystem(SubsystemCustomer) {
		t.Error("ForSubsystem returned different instances for same name")
	}
	if rng.Key() != SimulationKey(42) {
		t.Errorf("Key() = %v, want 42", rng.Key())
	}
}

func TestFnv1a64_NoCollisionsBetweenSubsystems(t *testing.T) {
	names := []string{SubsystemSpawn, SubsystemCustomer, SubsystemShelf, ""}
	hashes := make(map[int64]string)
	for _, name := range names {
		h := fnv1a64(name)
		if existing, ok := hashes[h]; ok {
			t.Errorf("Hash collision: %q and %q both hash to %d", name, existing, h)
		}
		hashes[h] = name
	}
}
