package facility

import (
	"container/heap"
	"fmt"
)

// Path is an ordered, non-empty sequence of nodes from a start to a goal.
// It holds no traversal state and can always be recomputed from its endpoints.
type Path struct {
	Nodes     []NodeID
	Waypoints []Point
	Cost      float64
}

// Start returns the first node of the path.
func (p Path) Start() NodeID { return p.Nodes[0] }

// Goal returns the last node of the path.
func (p Path) Goal() NodeID { return p.Nodes[len(p.Nodes)-1] }

// Hops returns the number of edges traversed.
func (p Path) Hops() int { return len(p.Nodes) - 1 }

// searchItem is a frontier entry ordered by (dist, id).
type searchItem struct {
	id   NodeID
	dist float64
}

// searchQueue implements heap.Interface. Equal distances pop lowest id first,
// which makes the search order (and so the chosen path) deterministic.
type searchQueue []searchItem

func (q searchQueue) Len() int { return len(q) }
func (q searchQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].id < q[j].id
}
func (q searchQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *searchQueue) Push(x any) {
	*q = append(*q, x.(searchItem))
}

func (q *searchQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// ShortestPath returns a minimum-cost path between from and to using Dijkstra.
// A node's predecessor is only replaced by a strictly cheaper route, so among
// equal-cost routes the one discovered from the lowest-id frontier node wins.
func (g *Graph) ShortestPath(from, to NodeID) (Path, error) {
	if _, ok := g.nodes[from]; !ok {
		return Path{}, fmt.Errorf("%w: %d", ErrUnknownNode, from)
	}
	if _, ok := g.nodes[to]; !ok {
		return Path{}, fmt.Errorf("%w: %d", ErrUnknownNode, to)
	}
	if from == to {
		return g.buildPath([]NodeID{from}, 0), nil
	}

	dist := map[NodeID]float64{from: 0}
	parent := make(map[NodeID]NodeID)
	visited := make(map[NodeID]bool)

	pq := &searchQueue{}
	heap.Push(pq, searchItem{id: from, dist: 0})

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(searchItem)
		if visited[cur.id] {
			continue
		}
		visited[cur.id] = true

		if cur.id == to {
			return g.buildPath(reconstruct(parent, from, to), cur.dist), nil
		}

		for _, e := range g.adj[cur.id] {
			if visited[e.to] {
				continue
			}
			nd := cur.dist + e.cost
			if old, seen := dist[e.to]; seen && nd >= old {
				continue
			}
			dist[e.to] = nd
			parent[e.to] = cur.id
			heap.Push(pq, searchItem{id: e.to, dist: nd})
		}
	}

	return Path{}, fmt.Errorf("%w: no path from %d to %d", ErrUnreachable, from, to)
}

// reconstruct walks parent links back from to and reverses them.
func reconstruct(parent map[NodeID]NodeID, from, to NodeID) []NodeID {
	nodes := []NodeID{to}
	for cur := to; cur != from; {
		cur = parent[cur]
		nodes = append(nodes, cur)
	}
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	return nodes
}

func (g *Graph) buildPath(nodes []NodeID, cost float64) Path {
	waypoints := make([]Point, len(nodes))
	for i, id := range nodes {
		waypoints[i] = g.nodes[id].Position
	}
	return Path{Nodes: nodes, Waypoints: waypoints, Cost: cost}
}

// PathCost sums the edge costs along nodes. It returns ErrUnreachable if two
// consecutive nodes are not adjacent.
func (g *Graph) PathCost(nodes []NodeID) (float64, error) {
	total := 0.0
	for i := 1; i < len(nodes); i++ {
		found := false
		for _, e := range g.adj[nodes[i-1]] {
			if e.to == nodes[i] {
				total += e.cost
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: %d and %d are not adjacent", ErrUnreachable, nodes[i-1], nodes[i])
		}
	}
	return total, nil
}
