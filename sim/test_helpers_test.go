package sim

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/storesim/storesim/sim/facility"
)

// Node ids of the test store built by testStore.
const (
	nodeEntrance facility.NodeID = 1
	nodeHall     facility.NodeID = 2
	nodeTea      facility.NodeID = 10
	nodeJam      facility.NodeID = 11
	nodeSoap     facility.NodeID = 12
	nodeCheckout facility.NodeID = 20
)

// testStore builds a small store:
//
//	entrance(0,0) -- hall(100,0) -- jam(200,0) -- soap(300,0)
//	                  |
//	               tea(100,100)
//	                  |
//	            checkout(0,100) -- entrance
func testStore(t *testing.T) *facility.Graph {
	t.Helper()
	g := facility.NewGraph()
	nodes := []facility.Node{
		{ID: nodeEntrance, Position: facility.Point{X: 0, Y: 0}, Category: facility.CategoryEntrance},
		{ID: nodeHall, Position: facility.Point{X: 100, Y: 0}, Category: facility.CategoryAisle},
		{ID: nodeTea, Position: facility.Point{X: 100, Y: 100}, Category: facility.CategoryShelf, Item: "tea"},
		{ID: nodeJam, Position: facility.Point{X: 200, Y: 0}, Category: facility.CategoryShelf, Item: "jam"},
		{ID: nodeSoap, Position: facility.Point{X: 300, Y: 0}, Category: facility.CategoryShelf, Item: "soap"},
		{ID: nodeCheckout, Position: facility.Point{X: 0, Y: 100}, Category: facility.CategoryCheckout},
	}
	for _, n := range nodes {
		require.NoError(t, g.AddNode(n))
	}
	edges := [][2]facility.NodeID{
		{nodeEntrance, nodeHall},
		{nodeHall, nodeJam},
		{nodeJam, nodeSoap},
		{nodeHall, nodeTea},
		{nodeTea, nodeCheckout},
		{nodeCheckout, nodeEntrance},
	}
	for _, e := range edges {
		require.NoError(t, g.AddEdge(e[0], e[1]))
	}
	return g
}

// testConfig returns a config with round numbers: 100 units/s walking,
// 1s per pick, 2s fixed service, no spawner cap.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Horizon = Seconds(3600)
	cfg.WalkingSpeed = 100
	cfg.PickDelay = Seconds(1)
	cfg.ServiceBaseTime = Seconds(2)
	cfg.ServicePerUnitTime = 0
	return cfg
}

func newTestSimulator(t *testing.T, g *facility.Graph, stations []facility.NodeID, mutate func(*Config)) *Simulator {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := NewSimulator(cfg, g, stations)
	require.NoError(t, err)
	return s
}

// lifecycleEvent is one observer notification captured by recordingObserver.
type lifecycleEvent struct {
	Clock    int64
	Kind     string
	Customer string
	Node     facility.NodeID
	Item     string
	Unit     int
}

func (e lifecycleEvent) String() string {
	return fmt.Sprintf("%d %s %s node=%d item=%s unit=%d", e.Clock, e.Kind, e.Customer, e.Node, e.Item, e.Unit)
}

// recordingObserver captures every lifecycle notification with the clock.
type recordingObserver struct {
	sim    *Simulator
	events []lifecycleEvent
}

func (r *recordingObserver) OnSpawn(c *Customer) {
	r.events = append(r.events, lifecycleEvent{Clock: r.sim.Clock, Kind: "spawn", Customer: c.ID, Node: c.Position})
}

func (r *recordingObserver) OnArrive(c *Customer, node facility.Node) {
	r.events = append(r.events, lifecycleEvent{Clock: r.sim.Clock, Kind: "arrive", Customer: c.ID, Node: node.ID})
}

func (r *recordingObserver) OnItemPicked(c *Customer, item string, unit int) {
	r.events = append(r.events, lifecycleEvent{Clock: r.sim.Clock, Kind: "pick", Customer: c.ID, Item: item, Unit: unit})
}

func (r *recordingObserver) OnDepart(c *Customer) {
	r.events = append(r.events, lifecycleEvent{Clock: r.sim.Clock, Kind: "depart", Customer: c.ID})
}

func (r *recordingObserver) count(kind, customer string) int {
	n := 0
	for _, e := range r.events {
		if e.Kind == kind && (customer == "" || e.Customer == customer) {
			n++
		}
	}
	return n
}

func observe(s *Simulator) *recordingObserver {
	r := &recordingObserver{sim: s}
	s.AddObserver(r)
	return r
}

// queueRecorder wraps a ServiceModel and records every queue length it is told about.
type queueRecorder struct {
	inner   ServiceModel
	lengths map[StationID][]int
}

func recordQueues(s *Simulator) *queueRecorder {
	q := &queueRecorder{inner: s.Service, lengths: map[StationID][]int{}}
	for _, id := range s.Dispatcher.StationIDs() {
		q.lengths[id] = []int{s.Dispatcher.QueueLength(id)}
	}
	s.Service = q
	return q
}

func (q *queueRecorder) QueueChanged(s *Simulator, id StationID) {
	q.lengths[id] = append(q.lengths[id], s.Dispatcher.QueueLength(id))
	if q.inner != nil {
		q.inner.QueueChanged(s, id)
	}
}

// newListCustomer builds a customer at the entrance with the given item:quantity list.
func newListCustomer(id string, items ...ShoppingListEntry) *Customer {
	return NewCustomer(id, "Test", nodeEntrance, items)
}
