package sim

import (
	"errors"
	"fmt"

	"github.com/storesim/storesim/sim/facility"
)

var (
	// ErrInvalidStation is raised for station ids that were never added.
	// Stations are append-only, so this is always a programming error.
	ErrInvalidStation = errors.New("invalid checkout station")
	// ErrNoStations is returned when a customer needs a checkout and none is open.
	ErrNoStations = errors.New("no checkout stations open")
)

// StationID is the dense index of a checkout station, in the order stations were added.
type StationID int

// NoStation marks a customer without an assigned checkout.
const NoStation StationID = -1

// Station is a checkout counter with its service queue.
type Station struct {
	ID    StationID
	Node  facility.NodeID
	Queue StationQueue
}

// CheckoutDecision encapsulates the station choice for a customer.
type CheckoutDecision struct {
	Station      StationID
	Reason       string
	QueueLengths []int       // queue length per station at decision time, indexed by StationID
	Tied         []StationID // stations sharing the minimum queue length, ascending
	PathCosts    []float64   // path cost per tied station; nil on the fast path
	Path         *facility.Path
}

// CheckoutDispatcher owns the checkout stations and assigns customers to them.
//
// Selection is one comparator: order stations by (queue length, path cost,
// station index) ascending and take the first. Path cost is only computed when
// more than one station shares the shortest queue.
type CheckoutDispatcher struct {
	graph    *facility.Graph
	planner  *PathPlanner
	stations []*Station
}

// NewCheckoutDispatcher creates a dispatcher with no stations.
func NewCheckoutDispatcher(graph *facility.Graph, planner *PathPlanner) *CheckoutDispatcher {
	return &CheckoutDispatcher{graph: graph, planner: planner}
}

// AddStation opens a checkout at node. It is immediately eligible for selection.
func (d *CheckoutDispatcher) AddStation(node facility.NodeID) (StationID, error) {
	n, ok := d.graph.Node(node)
	if !ok {
		return NoStation, fmt.Errorf("adding station: %w: %d", facility.ErrUnknownNode, node)
	}
	if n.Category != facility.CategoryCheckout {
		return NoStation, fmt.Errorf("adding station: node %d is a %s, not a checkout", node, n.Category)
	}
	for _, s := range d.stations {
		if s.Node == node {
			return NoStation, fmt.Errorf("adding station: node %d already has station %d", node, s.ID)
		}
	}
	id := StationID(len(d.stations))
	d.stations = append(d.stations, &Station{ID: id, Node: node})
	return id, nil
}

// Stations returns every station in index order.
func (d *CheckoutDispatcher) Stations() []*Station {
	return append([]*Station(nil), d.stations...)
}

// StationCount returns the number of open stations.
func (d *CheckoutDispatcher) StationCount() int {
	return len(d.stations)
}

// Station returns the station with the given id. Panics on unknown ids.
func (d *CheckoutDispatcher) Station(id StationID) *Station {
	if id < 0 || int(id) >= len(d.stations) {
		panic(fmt.Sprintf("%v: %d (have %d)", ErrInvalidStation, id, len(d.stations)))
	}
	return d.stations[id]
}

// SelectStation picks the checkout for c: the shortest queue, or among equally
// short queues the one nearest by path, or among those the lowest index.
func (d *CheckoutDispatcher) SelectStation(c *Customer) (CheckoutDecision, error) {
	if len(d.stations) == 0 {
		return CheckoutDecision{Station: NoStation}, ErrNoStations
	}

	lengths := make([]int, len(d.stations))
	minLen := d.stations[0].Queue.Len()
	for i, s := range d.stations {
		lengths[i] = s.Queue.Len()
		if lengths[i] < minLen {
			minLen = lengths[i]
		}
	}
	var tied []StationID
	for i, l := range lengths {
		if l == minLen {
			tied = append(tied, StationID(i))
		}
	}

	if len(tied) == 1 {
		return CheckoutDecision{
			Station:      tied[0],
			Reason:       fmt.Sprintf("shortest-queue (len=%d)", minLen),
			QueueLengths: lengths,
			Tied:         tied,
		}, nil
	}

	candidates := make([]facility.NodeID, len(tied))
	for i, id := range tied {
		candidates[i] = d.stations[id].Node
	}
	best, err := d.planner.PlanToBestOf(c, candidates)
	if err != nil {
		return CheckoutDecision{Station: NoStation}, err
	}
	path := best.Path
	return CheckoutDecision{
		Station:      tied[best.Index],
		Reason:       fmt.Sprintf("nearest-of-%d-tied (len=%d, cost=%.1f)", len(tied), minLen, path.Cost),
		QueueLengths: lengths,
		Tied:         tied,
		PathCosts:    best.Costs,
		Path:         &path,
	}, nil
}

// Enqueue appends c to the station's queue.
func (d *CheckoutDispatcher) Enqueue(id StationID, c *Customer) {
	d.Station(id).Queue.Enqueue(c)
}

// Dequeue removes c from the station's queue. Returns false if c was not queued there.
func (d *CheckoutDispatcher) Dequeue(id StationID, c *Customer) bool {
	return d.Station(id).Queue.Remove(c)
}

// Head returns the customer being served at the station, or nil.
func (d *CheckoutDispatcher) Head(id StationID) *Customer {
	return d.Station(id).Queue.Peek()
}

// QueueLength returns the number of customers queued or being served at the station.
func (d *CheckoutDispatcher) QueueLength(id StationID) int {
	return d.Station(id).Queue.Len()
}

// QueueLengths returns the queue length of every station, for display.
func (d *CheckoutDispatcher) QueueLengths() map[StationID]int {
	out := make(map[StationID]int, len(d.stations))
	for _, s := range d.stations {
		out[s.ID] = s.Queue.Len()
	}
	return out
}

// StationIDs returns the ids of every station in ascending order.
func (d *CheckoutDispatcher) StationIDs() []StationID {
	ids := make([]StationID, 0, len(d.stations))
	for _, s := range d.stations {
		ids = append(ids, s.ID)
	}
	return ids
}

// reset empties every queue. Stations themselves are never removed.
func (d *CheckoutDispatcher) reset() {
	for _, s := range d.stations {
		s.Queue = StationQueue{}
	}
}
