// Package facility models the store floor as an undirected weighted graph of
// named locations and answers shortest-path queries over it.
// The graph is built once at startup and shared read-only by every customer;
// it is not safe for concurrent mutation.
package facility

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrUnreachable is returned when no path connects two nodes.
	// The graph is expected to be connected, so this indicates a layout defect.
	ErrUnreachable = errors.New("facility: destination unreachable")
	// ErrUnknownNode is returned for node ids that are not part of the graph.
	ErrUnknownNode = errors.New("facility: unknown node")
)

// NodeID identifies a node. Ids are stable for the lifetime of the graph.
type NodeID int

// Point is a 2D position on the store floor.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Category classifies what a node is used for.
type Category string

const (
	CategoryEntrance Category = "entrance"
	CategoryExit     Category = "exit"
	CategoryShelf    Category = "shelf"
	CategoryCheckout Category = "checkout"
	CategoryAisle    Category = "aisle"
)

var validCategories = map[Category]bool{
	CategoryEntrance: true,
	CategoryExit:     true,
	CategoryShelf:    true,
	CategoryCheckout: true,
	CategoryAisle:    true,
}

// IsValidCategory returns true if c is a recognized node category.
func IsValidCategory(c Category) bool {
	return validCategories[c]
}

// Node is a point of interest in the store. Shelf nodes carry the item kind they stock.
type Node struct {
	ID       NodeID
	Position Point
	Category Category
	Item     string // item kind stocked here; empty unless Category == CategoryShelf
}

// Edge is an undirected walkable connection between two nodes.
type Edge struct {
	A, B NodeID
	Cost float64
}

type halfEdge struct {
	to   NodeID
	cost float64
}

// Graph is the store floor. Zero value is not usable; call NewGraph.
type Graph struct {
	nodes map[NodeID]Node
	ids   []NodeID // sorted ascending
	adj   map[NodeID][]halfEdge
	edges []Edge
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[NodeID]Node),
		adj:   make(map[NodeID][]halfEdge),
	}
}

// AddNode inserts n. Node ids must be unique and categories recognized.
func (g *Graph) AddNode(n Node) error {
	if _, exists := g.nodes[n.ID]; exists {
		return fmt.Errorf("facility: duplicate node id %d", n.ID)
	}
	if !IsValidCategory(n.Category) {
		return fmt.Errorf("facility: node %d has unknown category %q", n.ID, n.Category)
	}
	if n.Category == CategoryShelf && n.Item == "" {
		return fmt.Errorf("facility: shelf node %d has no item kind", n.ID)
	}
	if n.Category != CategoryShelf && n.Item != "" {
		return fmt.Errorf("facility: node %d stocks %q but is not a shelf", n.ID, n.Item)
	}
	g.nodes[n.ID] = n
	i := sort.Search(len(g.ids), func(i int) bool { return g.ids[i] >= n.ID })
	g.ids = append(g.ids, 0)
	copy(g.ids[i+1:], g.ids[i:])
	g.ids[i] = n.ID
	return nil
}

// AddEdge connects a and b with a cost equal to their Euclidean distance.
func (g *Graph) AddEdge(a, b NodeID) error {
	na, ok := g.nodes[a]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, a)
	}
	nb, ok := g.nodes[b]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, b)
	}
	return g.AddWeightedEdge(a, b, na.Position.Distance(nb.Position))
}

// AddWeightedEdge connects a and b with an explicit non-negative cost.
func (g *Graph) AddWeightedEdge(a, b NodeID, cost float64) error {
	if _, ok := g.nodes[a]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, a)
	}
	if _, ok := g.nodes[b]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, b)
	}
	if a == b {
		return fmt.Errorf("facility: self-loop on node %d", a)
	}
	if cost < 0 || math.IsNaN(cost) || math.IsInf(cost, 0) {
		return fmt.Errorf("facility: edge %d-%d has invalid cost %v", a, b, cost)
	}
	g.adj[a] = insertHalfEdge(g.adj[a], halfEdge{to: b, cost: cost})
	g.adj[b] = insertHalfEdge(g.adj[b], halfEdge{to: a, cost: cost})
	g.edges = append(g.edges, Edge{A: a, B: b, Cost: cost})
	return nil
}

// insertHalfEdge keeps adjacency lists sorted by neighbor id so that
// traversal order never depends on insertion order.
func insertHalfEdge(list []halfEdge, e halfEdge) []halfEdge {
	i := sort.Search(len(list), func(i int) bool { return list[i].to >= e.to })
	if i < len(list) && list[i].to == e.to {
		// parallel edge: keep the cheaper one
		if e.cost < list[i].cost {
			list[i].cost = e.cost
		}
		return list
	}
	list = append(list, halfEdge{})
	copy(list[i+1:], list[i:])
	list[i] = e
	return list
}

// Node returns the node with the given id.
func (g *Graph) Node(id NodeID) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns every node ordered by id.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.ids))
	for _, id := range g.ids {
		out = append(out, g.nodes[id])
	}
	return out
}

// Edges returns the edges in insertion order.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.ids)
}

// Position returns the geometric position of a node.
func (g *Graph) Position(id NodeID) (Point, error) {
	n, ok := g.nodes[id]
	if !ok {
		return Point{}, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	return n.Position, nil
}

// NeighborsOf returns the ids adjacent to id in ascending order.
func (g *Graph) NeighborsOf(id NodeID) ([]NodeID, error) {
	if _, ok := g.nodes[id]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	out := make([]NodeID, 0, len(g.adj[id]))
	for _, e := range g.adj[id] {
		out = append(out, e.to)
	}
	return out, nil
}

// NodesOf returns the ids of all nodes of category c in ascending order.
func (g *Graph) NodesOf(c Category) []NodeID {
	var out []NodeID
	for _, id := range g.ids {
		if g.nodes[id].Category == c {
			out = append(out, id)
		}
	}
	return out
}

// ShelvesFor returns the shelf nodes stocking item, ascending by id.
func (g *Graph) ShelvesFor(item string) []NodeID {
	var out []NodeID
	for _, id := range g.ids {
		n := g.nodes[id]
		if n.Category == CategoryShelf && n.Item == item {
			out = append(out, id)
		}
	}
	return out
}

// ItemKinds returns the distinct item kinds stocked anywhere, sorted.
func (g *Graph) ItemKinds() []string {
	seen := make(map[string]bool)
	var out []string
	for _, id := range g.ids {
		n := g.nodes[id]
		if n.Category == CategoryShelf && !seen[n.Item] {
			seen[n.Item] = true
			out = append(out, n.Item)
		}
	}
	sort.Strings(out)
	return out
}

// Entrance returns the lowest-id entrance node, where customers spawn.
func (g *Graph) Entrance() (NodeID, bool) {
	ids := g.NodesOf(CategoryEntrance)
	if len(ids) == 0 {
		return 0, false
	}
	return ids[0], true
}

// Exit returns the lowest-id exit node, falling back to the entrance when
// the layout has no dedicated exit.
func (g *Graph) Exit() (NodeID, bool) {
	if ids := g.NodesOf(CategoryExit); len(ids) > 0 {
		return ids[0], true
	}
	return g.Entrance()
}

// Validate checks the invariants the simulation relies on: a non-empty,
// connected graph with an entrance and at least one checkout node.
func (g *Graph) Validate() error {
	if len(g.ids) == 0 {
		return errors.New("facility: graph has no nodes")
	}
	if _, ok := g.Entrance(); !ok {
		return errors.New("facility: graph has no entrance node")
	}
	if len(g.NodesOf(CategoryCheckout)) == 0 {
		return errors.New("facility: graph has no checkout node")
	}

	start := g.ids[0]
	seen := map[NodeID]bool{start: true}
	frontier := []NodeID{start}
	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]
		for _, e := range g.adj[cur] {
			if !seen[e.to] {
				seen[e.to] = true
				frontier = append(frontier, e.to)
			}
		}
	}
	if len(seen) != len(g.ids) {
		for _, id := range g.ids {
			if !seen[id] {
				return fmt.Errorf("%w: node %d is not connected to node %d", ErrUnreachable, id, start)
			}
		}
	}
	return nil
}
