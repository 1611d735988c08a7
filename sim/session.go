package sim

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/storesim/storesim/sim/facility"
)

// ErrNoDestination is returned when a shopping list item is stocked on no shelf.
var ErrNoDestination = errors.New("no shelf stocks item")

// ShoppingSession drives one customer through the store:
//
//	Entering → ShoppingForItem(i)… → MovingToCheckout → AtCheckout → Leaving → Gone
//
// It is the only code that mutates its customer. Every transition happens
// inside an event callback; the session never blocks.
type ShoppingSession struct {
	customer *Customer
}

// start runs when the customer has spawned. The spawn point is inside the
// store, so shopping begins immediately.
func (s *ShoppingSession) start(sim *Simulator) {
	s.shopNext(sim)
}

// shopNext heads for the first list entry that still misses units, or for
// the checkouts once the list is complete.
func (s *ShoppingSession) shopNext(sim *Simulator) {
	c := s.customer
	idx := c.nextUnobtained()
	if idx < 0 {
		s.goToCheckout(sim)
		return
	}

	entry := c.ShoppingList[idx]
	c.State = StateShoppingForItem
	c.ItemIndex = idx
	c.Phases++

	shelves := sim.Graph.ShelvesFor(entry.Item)
	if len(shelves) == 0 {
		sim.fail(c, fmt.Errorf("%w: %q", ErrNoDestination, entry.Item))
		return
	}
	shelf := shelves[sim.RNG.ForSubsystem(SubsystemShelf).Intn(len(shelves))]

	path, err := sim.Planner.PlanTo(c, shelf)
	if err != nil {
		sim.fail(c, err)
		return
	}
	logrus.Debugf("[tick %09d] %s heads to shelf %d for %d×%s", sim.Clock, c.ID, shelf, entry.Required, entry.Item)
	sim.walk(c, path)
}

// arrived handles path completion for whatever leg the customer was on.
func (s *ShoppingSession) arrived(sim *Simulator) {
	c := s.customer
	switch c.State {
	case StateShoppingForItem:
		s.startPicking(sim)
	case StateMovingToCheckout:
		c.State = StateAtCheckout
		sim.Dispatcher.Enqueue(c.Station, c)
		logrus.Debugf("[tick %09d] %s queues at station %d (len=%d)",
			sim.Clock, c.ID, c.Station, sim.Dispatcher.QueueLength(c.Station))
		sim.queueChanged(c.Station)
	case StateLeaving:
		sim.depart(c)
	default:
		panic(fmt.Sprintf("ShoppingSession.arrived: customer %s arrived in state %s", c.ID, c.State))
	}
}

// startPicking schedules one pick per missing unit, PickDelay apart.
func (s *ShoppingSession) startPicking(sim *Simulator) {
	c := s.customer
	entry := c.ShoppingList[c.ItemIndex]
	remaining := entry.Required - entry.Obtained
	if remaining <= 0 {
		s.shopNext(sim)
		return
	}
	for k := 1; k <= remaining; k++ {
		sim.Schedule(&PickEvent{
			customerEvent: newCustomerEvent(sim.Clock+int64(k)*sim.Config.PickDelay, c),
			EntryIndex:    c.ItemIndex,
			Unit:          entry.Obtained + k,
		})
	}
}

// picked records one unit and moves on once the entry is complete.
func (s *ShoppingSession) picked(sim *Simulator, entryIndex, unit int) {
	c := s.customer
	entry := c.ShoppingList[entryIndex]
	if err := entry.Pick(); err != nil {
		logrus.Errorf("[tick %09d] %s: %v", sim.Clock, c.ID, err)
		return
	}
	sim.Metrics.ItemsPicked++
	sim.Observer.OnItemPicked(c, entry.Item, unit)
	if entry.IsObtained() {
		s.shopNext(sim)
	}
}

// goToCheckout asks the dispatcher for a station and walks there.
func (s *ShoppingSession) goToCheckout(sim *Simulator) {
	c := s.customer
	c.State = StateMovingToCheckout

	decision, err := sim.Dispatcher.SelectStation(c)
	if err != nil {
		sim.fail(c, err)
		return
	}
	sim.recordDecision(c, decision)
	c.Station = decision.Station

	var path facility.Path
	if decision.Path != nil {
		path = *decision.Path
	} else {
		path, err = sim.Planner.PlanTo(c, sim.Dispatcher.Station(decision.Station).Node)
		if err != nil {
			sim.fail(c, err)
			return
		}
	}
	logrus.Debugf("[tick %09d] %s heads to station %d: %s", sim.Clock, c.ID, decision.Station, decision.Reason)
	sim.walk(c, path)
}

// served runs after the customer has been dequeued from its station.
func (s *ShoppingSession) served(sim *Simulator) {
	c := s.customer
	c.State = StateLeaving
	c.Station = NoStation

	path, err := sim.Planner.PlanTo(c, sim.exit)
	if err != nil {
		sim.fail(c, err)
		return
	}
	sim.walk(c, path)
}
