// sim/simulator.go
package sim

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/storesim/storesim/sim/facility"
	"github.com/storesim/storesim/sim/trace"
)

// Simulator is the core object that holds simulation time, store state, and the event loop.
//
// All state is mutated from the event loop only: one event executes at a time,
// so the dispatcher's queue lengths never change underneath a station selection.
type Simulator struct {
	Clock   int64
	Horizon int64
	// EventQueue holds pending events ordered by (timestamp, scheduling order)
	EventQueue EventQueue

	Config     Config
	Graph      *facility.Graph // shared read-only by every customer
	Planner    *PathPlanner
	Dispatcher *CheckoutDispatcher
	// Service decides when checkout service completes. Nil means completion is
	// signalled only through CompleteService by an outside collaborator.
	Service   ServiceModel
	Observer  Observers
	Metrics   *Metrics
	RNG       *PartitionedRNG
	Trace     *trace.SimulationTrace // nil disables decision tracing
	Generator *CustomerGenerator

	customers map[string]*Customer
	order     []*Customer // live customers in spawn order
	entrance  facility.NodeID
	exit      facility.NodeID
	catalog   []string
	seq       int64
	spawned   int
}

// NewSimulator validates the configuration and the graph, opens the given
// stations in order, and returns a simulator with an empty event queue.
func NewSimulator(cfg Config, graph *facility.Graph, stations []facility.NodeID) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := graph.Validate(); err != nil {
		return nil, err
	}
	entrance, _ := graph.Entrance()
	exit, _ := graph.Exit()

	catalog := cfg.Catalog
	if len(catalog) == 0 {
		catalog = graph.ItemKinds()
	}
	for _, item := range catalog {
		if len(graph.ShelvesFor(item)) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrNoDestination, item)
		}
	}

	planner := NewPathPlanner(graph, cfg.WalkingSpeed, nil)
	s := &Simulator{
		Clock:      0,
		Horizon:    cfg.Horizon,
		EventQueue: make(EventQueue, 0),
		Config:     cfg,
		Graph:      graph,
		Planner:    planner,
		Dispatcher: NewCheckoutDispatcher(graph, planner),
		Metrics:    NewMetrics(),
		RNG:        NewPartitionedRNG(NewSimulationKey(cfg.Seed)),
		Generator:  NewCustomerGenerator(cfg.Seed, catalog, cfg.MaxListItems, cfg.MaxQuantity),
		customers:  make(map[string]*Customer),
		entrance:   entrance,
		exit:       exit,
		catalog:    catalog,
	}
	if cfg.ServiceBaseTime > 0 || cfg.ServicePerUnitTime > 0 {
		s.Service = NewFixedServiceModel(cfg.ServiceBaseTime, cfg.ServicePerUnitTime)
	}
	for _, node := range stations {
		if _, err := s.AddStation(node); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Entrance returns the node where customers spawn.
func (sim *Simulator) Entrance() facility.NodeID { return sim.entrance }

// Exit returns the node customers walk to when leaving.
func (sim *Simulator) Exit() facility.NodeID { return sim.exit }

// Catalog returns the item kinds customers may put on their lists.
func (sim *Simulator) Catalog() []string { return sim.catalog }

// AddObserver registers a lifecycle observer.
func (sim *Simulator) AddObserver(o Observer) {
	sim.Observer = append(sim.Observer, o)
}

// Schedule pushes an event into the simulator's EventQueue.
// Events at the same timestamp execute in the order they were scheduled.
func (sim *Simulator) Schedule(ev Event) {
	if ev.Timestamp() < sim.Clock {
		panic(fmt.Sprintf("Schedule: %T at %d is before clock %d", ev, ev.Timestamp(), sim.Clock))
	}
	sim.seq++
	sim.EventQueue.schedule(ev, sim.seq)
}

// Run executes events until the queue drains or the next event lies past the horizon.
func (sim *Simulator) Run() {
	for sim.EventQueue.Len() > 0 {
		if sim.EventQueue.Peek().Timestamp() > sim.Horizon {
			sim.Clock = sim.Horizon
			break
		}
		sim.step()
	}
	sim.Metrics.SimEndedTime = sim.Clock
	logrus.Infof("[tick %09d] Simulation ended", sim.Clock)
}

// RunUntil executes every event scheduled at or before t and advances the
// clock to t. It is the entry point for the periodic wall-clock tick.
func (sim *Simulator) RunUntil(t int64) {
	for sim.EventQueue.Len() > 0 && sim.EventQueue.Peek().Timestamp() <= t {
		sim.step()
	}
	if t > sim.Clock {
		sim.Clock = t
	}
	sim.Metrics.SimEndedTime = sim.Clock
}

func (sim *Simulator) step() {
	ev := sim.EventQueue.popNext()
	sim.Clock = ev.Timestamp()
	logrus.Tracef("[tick %09d] Executing %T", sim.Clock, ev)
	ev.Execute(sim)
}

// AddStation opens a checkout at node (e.g. an unlocked upgrade).
func (sim *Simulator) AddStation(node facility.NodeID) (StationID, error) {
	id, err := sim.Dispatcher.AddStation(node)
	if err != nil {
		return NoStation, err
	}
	sim.Metrics.PeakQueueLength[id] = 0
	logrus.Infof("[tick %09d] Station %d opened at node %d", sim.Clock, id, node)
	return id, nil
}

// Spawn places c in the store and starts its shopping session.
func (sim *Simulator) Spawn(c *Customer) error {
	if _, ok := sim.Graph.Node(c.Position); !ok {
		return fmt.Errorf("spawning %s: %w: %d", c.ID, facility.ErrUnknownNode, c.Position)
	}
	if _, exists := sim.customers[c.ID]; exists {
		return fmt.Errorf("spawning %s: duplicate customer id", c.ID)
	}
	if !c.Live() {
		return fmt.Errorf("spawning %s: customer was already removed", c.ID)
	}
	if err := c.validateList(); err != nil {
		return fmt.Errorf("spawning %s: %w", c.ID, err)
	}
	c.SpawnTime = sim.Clock
	sim.customers[c.ID] = c
	sim.order = append(sim.order, c)
	sim.spawned++
	sim.Metrics.CustomersSpawned++

	logrus.Infof("[tick %09d] %s (%s) enters with %d items", sim.Clock, c.ID, c.Name, len(c.ShoppingList))
	sim.Observer.OnSpawn(c)
	c.session.start(sim)
	return nil
}

// SpawnRandom generates a customer at the entrance and spawns it.
func (sim *Simulator) SpawnRandom() (*Customer, error) {
	c := sim.Generator.Next(sim.RNG.ForSubsystem(SubsystemCustomer), sim.entrance)
	if err := sim.Spawn(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Customer returns a live customer by id.
func (sim *Simulator) Customer(id string) (*Customer, bool) {
	c, ok := sim.customers[id]
	return c, ok
}

// Customers returns the live customers in spawn order.
func (sim *Simulator) Customers() []*Customer {
	return append([]*Customer(nil), sim.order...)
}

// Spawned returns the number of customers spawned so far.
func (sim *Simulator) Spawned() int {
	return sim.spawned
}

// CompleteService releases the customer at the head of the station's queue
// and sends it towards the exit.
func (sim *Simulator) CompleteService(id StationID) error {
	if id < 0 || int(id) >= sim.Dispatcher.StationCount() {
		return fmt.Errorf("%w: %d", ErrInvalidStation, id)
	}
	head := sim.Dispatcher.Head(id)
	if head == nil {
		return fmt.Errorf("station %d has no customer to serve", id)
	}
	sim.Dispatcher.Dequeue(id, head)
	sim.Metrics.ServedCount[id]++
	logrus.Debugf("[tick %09d] %s served at station %d", sim.Clock, head.ID, id)
	sim.queueChanged(id)
	head.session.served(sim)
	return nil
}

// RemoveCustomer takes c out of the simulation. Every pending event for c
// becomes a no-op and c leaves any checkout queue it stood in.
func (sim *Simulator) RemoveCustomer(c *Customer, reason string) {
	if !c.Live() {
		return
	}
	c.token.Cancel()
	if c.State == StateAtCheckout && c.Station != NoStation {
		if sim.Dispatcher.Dequeue(c.Station, c) {
			sim.queueChanged(c.Station)
		}
	}
	c.State = StateGone
	c.Station = NoStation
	sim.forget(c)
	sim.Metrics.CustomersRemoved++
	if sim.Trace.Enabled() {
		sim.Trace.RecordRemoval(trace.RemovalRecord{CustomerID: c.ID, Clock: sim.Clock, Reason: reason})
	}
	logrus.Warnf("[tick %09d] %s removed: %s", sim.Clock, c.ID, reason)
}

// Reset removes every live customer. Stations stay open with empty queues.
func (sim *Simulator) Reset() {
	for _, c := range sim.Customers() {
		sim.RemoveCustomer(c, "simulation reset")
	}
}

// fail removes a customer whose session hit a configuration defect.
// Other customers are unaffected.
func (sim *Simulator) fail(c *Customer, err error) {
	switch {
	case errors.Is(err, facility.ErrUnreachable), errors.Is(err, ErrNoDestination), errors.Is(err, ErrNoStations):
		logrus.Errorf("[tick %09d] configuration defect: %v", sim.Clock, err)
	default:
		logrus.Errorf("[tick %09d] %s: %v", sim.Clock, c.ID, err)
	}
	sim.RemoveCustomer(c, err.Error())
}

// walk schedules the arrival at the end of path.
func (sim *Simulator) walk(c *Customer, path facility.Path) {
	sim.Schedule(&ArrivalEvent{
		customerEvent: newCustomerEvent(sim.Clock+sim.Planner.TraversalTicks(path), c),
		Path:          path,
	})
}

// depart completes a customer's visit.
func (sim *Simulator) depart(c *Customer) {
	c.State = StateGone
	c.DepartTime = sim.Clock
	c.token.Cancel()
	sim.forget(c)
	sim.Metrics.CustomersDeparted++
	sim.Metrics.TotalDwellTime += c.DepartTime - c.SpawnTime
	sim.Metrics.DwellTimes = append(sim.Metrics.DwellTimes, c.DepartTime-c.SpawnTime)
	logrus.Infof("[tick %09d] %s departs after %.1fs", sim.Clock, c.ID, float64(c.DepartTime-c.SpawnTime)/float64(TicksPerSecond))
	sim.Observer.OnDepart(c)
}

func (sim *Simulator) forget(c *Customer) {
	delete(sim.customers, c.ID)
	for i, live := range sim.order {
		if live == c {
			sim.order = append(sim.order[:i], sim.order[i+1:]...)
			break
		}
	}
}

// queueChanged records queue metrics and notifies the service model.
func (sim *Simulator) queueChanged(id StationID) {
	sim.Metrics.observeQueue(id, sim.Dispatcher.QueueLength(id))
	if sim.Service != nil {
		sim.Service.QueueChanged(sim, id)
	}
}

func (sim *Simulator) recordDecision(c *Customer, d CheckoutDecision) {
	sim.Metrics.CheckoutDecisions++
	if d.PathCosts != nil {
		sim.Metrics.TiedDecisions++
	}
	if !sim.Trace.Enabled() {
		return
	}
	tied := make([]int, len(d.Tied))
	for i, id := range d.Tied {
		tied[i] = int(id)
	}
	sim.Trace.RecordCheckout(trace.CheckoutRecord{
		CustomerID:    c.ID,
		Clock:         sim.Clock,
		ChosenStation: int(d.Station),
		Reason:        d.Reason,
		QueueLengths:  append([]int(nil), d.QueueLengths...),
		Tied:          tied,
		PathCosts:     d.PathCosts,
	})
}
