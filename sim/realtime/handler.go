package realtime

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/storesim/storesim/sim"
	"github.com/storesim/storesim/sim/facility"
	"github.com/storesim/storesim/sim/telemetry"
)

// QueueView is one checkout station as shown by GET /queues.
type QueueView struct {
	Station   int      `json:"station"`
	Node      int      `json:"node"`
	Length    int      `json:"length"`
	Customers []string `json:"customers"`
}

// CustomerView is one live customer as shown by GET /customers.
type CustomerView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	State     string `json:"state"`
	Position  int    `json:"position"`
	ItemIndex int    `json:"item_index"`
	Station   int    `json:"station"`
	Obtained  int    `json:"obtained"`
	Required  int    `json:"required"`
}

// StatusView summarizes the simulation for GET /status.
type StatusView struct {
	ClockSeconds      float64 `json:"clock_seconds"`
	CustomersInStore  int     `json:"customers_in_store"`
	CustomersSpawned  int     `json:"customers_spawned"`
	CustomersDeparted int     `json:"customers_departed"`
	ItemsPicked       int     `json:"items_picked"`
	WalkingMultiplier float64 `json:"walking_multiplier"`
}

type openStationRequest struct {
	Node *int `json:"node"`
}

type speedRequest struct {
	Multiplier float64 `json:"multiplier"`
}

type server struct {
	driver *Driver
}

// NewHandler returns the HTTP API for a driven simulation. /metrics is only
// mounted when a collector is given.
func NewHandler(d *Driver, collector *telemetry.Collector) http.Handler {
	s := &server{driver: d}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/status", s.status)
	r.Get("/queues", s.queues)
	r.Get("/customers", s.customers)
	r.Post("/stations", s.openStation)
	r.Put("/speed", s.setSpeed)
	if collector != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(collector.Registry(), promhttp.HandlerOpts{}))
	}
	return r
}

func (s *server) status(w http.ResponseWriter, _ *http.Request) {
	var view StatusView
	s.driver.View(func(sm *sim.Simulator) {
		view = StatusView{
			ClockSeconds:      float64(sm.Clock) / float64(sim.TicksPerSecond),
			CustomersInStore:  len(sm.Customers()),
			CustomersSpawned:  sm.Metrics.CustomersSpawned,
			CustomersDeparted: sm.Metrics.CustomersDeparted,
			ItemsPicked:       sm.Metrics.ItemsPicked,
		}
	})
	view.WalkingMultiplier = s.driver.WalkingMultiplier()
	writeJSON(w, http.StatusOK, view)
}

func (s *server) queues(w http.ResponseWriter, _ *http.Request) {
	var views []QueueView
	s.driver.View(func(sm *sim.Simulator) {
		for _, st := range sm.Dispatcher.Stations() {
			ids := make([]string, 0, st.Queue.Len())
			for _, c := range st.Queue.Items() {
				ids = append(ids, c.ID)
			}
			views = append(views, QueueView{
				Station:   int(st.ID),
				Node:      int(st.Node),
				Length:    st.Queue.Len(),
				Customers: ids,
			})
		}
	})
	writeJSON(w, http.StatusOK, views)
}

func (s *server) customers(w http.ResponseWriter, _ *http.Request) {
	var views []CustomerView
	s.driver.View(func(sm *sim.Simulator) {
		for _, c := range sm.Customers() {
			views = append(views, CustomerView{
				ID:        c.ID,
				Name:      c.Name,
				State:     string(c.State),
				Position:  int(c.Position),
				ItemIndex: c.ItemIndex,
				Station:   int(c.Station),
				Obtained:  c.TotalObtained(),
				Required:  c.TotalRequired(),
			})
		}
	})
	writeJSON(w, http.StatusOK, views)
}

func (s *server) openStation(w http.ResponseWriter, r *http.Request) {
	var body openStationRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Node == nil {
		http.Error(w, "Invalid request body: expected {\"node\": <id>}", http.StatusBadRequest)
		return
	}
	id, err := s.driver.OpenStation(facility.NodeID(*body.Node))
	if err != nil {
		logrus.Warnf("Open station at node %d rejected: %v", *body.Node, err)
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"station": int(id)})
}

func (s *server) setSpeed(w http.ResponseWriter, r *http.Request) {
	var body speedRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.driver.SetWalkingMultiplier(body.Multiplier); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("Response encode failed: %v", err)
	}
}
