// Package telemetry exports store simulation activity as Prometheus metrics.
package telemetry

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/storesim/storesim/sim"
	"github.com/storesim/storesim/sim/facility"
)

const namespace = "storesim"

// Collector turns lifecycle notifications into Prometheus metrics.
// It implements sim.Observer and registers on its own registry so several
// simulations can run in one process.
type Collector struct {
	registry *prometheus.Registry

	spawned     prometheus.Counter
	departed    prometheus.Counter
	itemsPicked *prometheus.CounterVec
	arrivals    *prometheus.CounterVec
	dwell       prometheus.Histogram

	liveCustomers prometheus.Gauge
	queueLength   *prometheus.GaugeVec
	clockSeconds  prometheus.Gauge
}

// NewCollector creates a collector with a fresh registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),

		spawned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "customers_spawned_total",
			Help:      "Customers that entered the store",
		}),
		departed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "customers_departed_total",
			Help:      "Customers that left through the exit",
		}),
		itemsPicked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_picked_total",
			Help:      "Units taken off shelves by item kind",
		}, []string{"item"}),
		arrivals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "arrivals_total",
			Help:      "Path completions by destination category",
		}, []string{"category"}),
		dwell: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dwell_seconds",
			Help:      "Simulated time between entering and leaving the store",
			Buckets:   []float64{10, 20, 30, 45, 60, 90, 120, 180, 300},
		}),

		liveCustomers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "customers_in_store",
			Help:      "Customers currently in the store",
		}),
		queueLength: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "checkout_queue_length",
			Help:      "Customers queued or being served per checkout station",
		}, []string{"station"}),
		clockSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "clock_seconds",
			Help:      "Current simulated time",
		}),
	}
	c.registry.MustRegister(
		c.spawned, c.departed, c.itemsPicked, c.arrivals, c.dwell,
		c.liveCustomers, c.queueLength, c.clockSeconds,
	)
	return c
}

// Registry returns the registry holding every metric of this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// OnSpawn implements sim.Observer.
func (c *Collector) OnSpawn(*sim.Customer) {
	c.spawned.Inc()
	c.liveCustomers.Inc()
}

// OnArrive implements sim.Observer.
func (c *Collector) OnArrive(_ *sim.Customer, node facility.Node) {
	c.arrivals.WithLabelValues(string(node.Category)).Inc()
}

// OnItemPicked implements sim.Observer.
func (c *Collector) OnItemPicked(_ *sim.Customer, item string, _ int) {
	c.itemsPicked.WithLabelValues(item).Inc()
}

// OnDepart implements sim.Observer.
func (c *Collector) OnDepart(cust *sim.Customer) {
	c.departed.Inc()
	c.liveCustomers.Dec()
	c.dwell.Observe(float64(cust.DepartTime-cust.SpawnTime) / float64(sim.TicksPerSecond))
}

// Sync copies gauges that are not driven by lifecycle notifications (queue
// lengths, live customers after removals, the clock) from the simulator.
func (c *Collector) Sync(s *sim.Simulator) {
	for id, n := range s.Dispatcher.QueueLengths() {
		c.queueLength.WithLabelValues(strconv.Itoa(int(id))).Set(float64(n))
	}
	c.liveCustomers.Set(float64(len(s.Customers())))
	c.clockSeconds.Set(float64(s.Clock) / float64(sim.TicksPerSecond))
}
