package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/storesim/storesim/sim/facility"
)

// Event defines the interface for all simulation events.
// Each event must have a Timestamp (in ticks) and an Execute method
// that advances simulation state when invoked.
type Event interface {
	Timestamp() int64
	Execute(*Simulator)
}

// CancelToken invalidates every pending event that captured it.
// Events check the token before acting instead of assuming they always fire.
type CancelToken struct {
	cancelled bool
}

// Cancel marks the token cancelled. Idempotent.
func (t *CancelToken) Cancel() { t.cancelled = true }

// Cancelled reports whether Cancel has been called.
func (t *CancelToken) Cancelled() bool { return t.cancelled }

// customerEvent is embedded by events that act on a single customer.
type customerEvent struct {
	time     int64
	customer *Customer
	token    *CancelToken
}

func newCustomerEvent(time int64, c *Customer) customerEvent {
	return customerEvent{time: time, customer: c, token: c.token}
}

// Timestamp returns the scheduled time of the event.
func (e customerEvent) Timestamp() int64 { return e.time }

// live is false once the customer has been removed.
func (e customerEvent) live() bool {
	return e.token != nil && !e.token.Cancelled()
}

// ArrivalEvent fires when a customer finishes walking a planned path.
// It is scheduled exactly once per planned path.
type ArrivalEvent struct {
	customerEvent
	Path facility.Path
}

// Execute moves the customer onto the path's goal and resumes its session.
func (e *ArrivalEvent) Execute(sim *Simulator) {
	if !e.live() {
		logrus.Debugf("<< Arrival for removed customer %s dropped", e.customer.ID)
		return
	}
	goal := e.Path.Goal()
	logrus.Debugf("<< Arrival: %s at node %d", e.customer.ID, goal)
	e.customer.Position = goal
	node, _ := sim.Graph.Node(goal)
	sim.Observer.OnArrive(e.customer, node)
	e.customer.session.arrived(sim)
}

// PickEvent fires when a customer has taken one unit of an item off the shelf.
type PickEvent struct {
	customerEvent
	EntryIndex int
	Unit       int // 1-based unit number within the entry
}

// Execute records the unit and advances the session after the last unit.
func (e *PickEvent) Execute(sim *Simulator) {
	if !e.live() {
		return
	}
	e.customer.session.picked(sim, e.EntryIndex, e.Unit)
}

// ServiceCompleteEvent fires when the built-in service model finishes serving
// the customer at the head of a station queue.
type ServiceCompleteEvent struct {
	customerEvent
	Station StationID
}

// Execute releases the customer if it is still being served at the station.
func (e *ServiceCompleteEvent) Execute(sim *Simulator) {
	if !e.live() {
		return
	}
	if sim.Dispatcher.Head(e.Station) != e.customer {
		return
	}
	if err := sim.CompleteService(e.Station); err != nil {
		logrus.Errorf("service completion at station %d failed: %v", e.Station, err)
	}
}
