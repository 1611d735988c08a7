package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storesim/storesim/sim"
	"github.com/storesim/storesim/sim/trace"
)

func TestRunToHorizon_PrintsMetrics(t *testing.T) {
	// GIVEN the bundled layout and a short horizon
	cfg := sim.DefaultConfig()
	cfg.Horizon = sim.Seconds(120)
	s, err := buildSimulator(cfg, "", nil)
	require.NoError(t, err)
	s.Trace = trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})

	// WHEN the simulation runs
	var out strings.Builder
	runToHorizon(s, &out, true)

	// THEN the report is written with the trace summary
	assert.Contains(t, out.String(), "=== Simulation Metrics ===")
	assert.Contains(t, out.String(), "Station 1")
	assert.Contains(t, out.String(), "=== Checkout Trace Summary ===")
	assert.Greater(t, s.Metrics.CustomersSpawned, 0)
}

func TestRunToHorizon_SameSeedSameReport(t *testing.T) {
	report := func() string {
		cfg := sim.DefaultConfig()
		cfg.Horizon = sim.Seconds(200)
		s, err := buildSimulator(cfg, "", nil)
		require.NoError(t, err)
		var out strings.Builder
		runToHorizon(s, &out, false)
		return out.String()
	}
	assert.Equal(t, report(), report())
}

func TestBuildSimulator_StationOverride(t *testing.T) {
	s, err := buildSimulator(sim.DefaultConfig(), "", []int{31})
	require.NoError(t, err)
	require.Len(t, s.Dispatcher.Stations(), 1)
	assert.EqualValues(t, 31, s.Dispatcher.Station(0).Node)

	_, err = buildSimulator(sim.DefaultConfig(), "", []int{20})
	assert.Error(t, err, "shelf node cannot host a station")
}

func TestBuildSimulator_LayoutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.yaml")
	layout := `
name: tiny
nodes:
  - {id: 1, x: 0, y: 0, category: entrance}
  - {id: 2, x: 100, y: 0, category: shelf, item: tea}
  - {id: 3, x: 0, y: 100, category: checkout}
edges:
  - {from: 1, to: 2}
  - {from: 1, to: 3}
stations: [3]
`
	require.NoError(t, os.WriteFile(path, []byte(layout), 0o644))

	s, err := buildSimulator(sim.DefaultConfig(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"tea"}, s.Catalog())

	_, err = buildSimulator(sim.DefaultConfig(), filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}
