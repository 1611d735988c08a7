package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storesim/storesim/sim"
	"github.com/storesim/storesim/sim/facility"
	"github.com/storesim/storesim/sim/telemetry"
)

// newDriven builds the default store with only its first checkout open and no
// built-in service, so customers stay queued until the test releases them.
func newDriven(t *testing.T) (*Driver, *telemetry.Collector, http.Handler) {
	t.Helper()
	layout := facility.DefaultLayout()
	g, err := layout.Build()
	require.NoError(t, err)
	cfg := sim.DefaultConfig()
	cfg.Horizon = sim.Seconds(60)
	s, err := sim.NewSimulator(cfg, g, layout.Stations[:1])
	require.NoError(t, err)
	s.Service = nil

	collector := telemetry.NewCollector()
	d := NewDriver(s, collector, 1)
	return d, collector, NewHandler(d, collector)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDriver_Step_AdvancesClock(t *testing.T) {
	d, _, _ := newDriven(t)
	d.Step(2 * time.Second)
	assert.Equal(t, sim.Seconds(2), d.Clock())
	d.Step(0)
	assert.Equal(t, sim.Seconds(2), d.Clock())
}

func TestDriver_Step_TimeScale(t *testing.T) {
	layout := facility.DefaultLayout()
	g, err := layout.Build()
	require.NoError(t, err)
	s, err := sim.NewSimulator(sim.DefaultConfig(), g, layout.Stations)
	require.NoError(t, err)

	d := NewDriver(s, nil, 10)
	d.Step(500 * time.Millisecond)

	assert.Equal(t, sim.Seconds(5), d.Clock())
}

type spawnClock struct {
	sim.NopObserver
	times []int64
}

func (o *spawnClock) OnSpawn(c *sim.Customer) { o.times = append(o.times, c.SpawnTime) }

func TestDriver_Step_StopsAtHorizon(t *testing.T) {
	// GIVEN a 60s horizon with customers arriving every few seconds
	d, _, _ := newDriven(t)
	spawns := &spawnClock{}
	d.View(func(s *sim.Simulator) {
		s.AddObserver(spawns)
		s.StartSpawning()
	})

	// WHEN one wall-clock step overshoots the horizon
	d.Step(90 * time.Second)

	// THEN the clock stops at the horizon and nothing past it ran
	assert.Equal(t, sim.Seconds(60), d.Clock())
	require.NotEmpty(t, spawns.times)
	for _, ts := range spawns.times {
		assert.LessOrEqual(t, ts, sim.Seconds(60))
	}
	d.View(func(s *sim.Simulator) {
		require.Positive(t, s.EventQueue.Len())
		assert.Greater(t, s.EventQueue.Peek().Timestamp(), sim.Seconds(60))
	})
}

func TestDriver_Run_StopsOnCancel(t *testing.T) {
	d, _, _ := newDriven(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx, time.Millisecond) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Greater(t, d.Clock(), int64(0))
}

func TestHandler_Queues_ReflectDispatcher(t *testing.T) {
	d, _, h := newDriven(t)
	d.View(func(s *sim.Simulator) {
		require.NoError(t, s.Spawn(sim.NewCustomer("c1", "Test", s.Entrance(), nil)))
	})
	d.Step(10 * time.Second)

	rec := do(t, h, http.MethodGet, "/queues", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var views []QueueView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, 30, views[0].Node)
	assert.Equal(t, 1, views[0].Length)
	assert.Equal(t, []string{"c1"}, views[0].Customers)
}

func TestHandler_Customers(t *testing.T) {
	d, _, h := newDriven(t)
	d.View(func(s *sim.Simulator) {
		require.NoError(t, s.Spawn(sim.NewCustomer("c1", "Ada", s.Entrance(), []sim.ShoppingListEntry{{Item: "milk", Required: 2}})))
	})

	rec := do(t, h, http.MethodGet, "/customers", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var views []CustomerView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "Ada", views[0].Name)
	assert.Equal(t, string(sim.StateShoppingForItem), views[0].State)
	assert.Equal(t, 2, views[0].Required)
	assert.Equal(t, -1, views[0].Station)
}

func TestHandler_OpenStation(t *testing.T) {
	d, _, h := newDriven(t)

	rec := do(t, h, http.MethodPost, "/stations", `{"node": 31}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"station": 1}`, rec.Body.String())

	d.View(func(s *sim.Simulator) {
		assert.Len(t, s.Dispatcher.Stations(), 2)
	})

	rec = do(t, h, http.MethodPost, "/stations", `{"node": 31}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/stations", `{"node": 20}`)
	assert.Equal(t, http.StatusConflict, rec.Code, "shelf is not a checkout")

	rec = do(t, h, http.MethodPost, "/stations", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_SetSpeed_ChangesLaterTraversals(t *testing.T) {
	d, _, h := newDriven(t)
	path := facility.Path{Cost: 100}
	var before, after int64
	d.View(func(s *sim.Simulator) { before = s.Planner.TraversalTicks(path) })

	rec := do(t, h, http.MethodPut, "/speed", `{"multiplier": 2}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	d.View(func(s *sim.Simulator) { after = s.Planner.TraversalTicks(path) })
	assert.Equal(t, sim.Seconds(1), before)
	assert.Equal(t, sim.Seconds(0.5), after)
	assert.Equal(t, 2.0, d.WalkingMultiplier())

	rec = do(t, h, http.MethodPut, "/speed", `{"multiplier": 0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, h, http.MethodPut, "/speed", `nope`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_StatusAndMetrics(t *testing.T) {
	d, _, h := newDriven(t)
	d.View(func(s *sim.Simulator) { s.StartSpawning() })
	d.Step(30 * time.Second)

	rec := do(t, h, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var status StatusView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, 30.0, status.ClockSeconds)
	assert.Greater(t, status.CustomersSpawned, 0)

	rec = do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "storesim_customers_spawned_total")
	assert.Contains(t, rec.Body.String(), `storesim_checkout_queue_length{station="0"}`)
}
