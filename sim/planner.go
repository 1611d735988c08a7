package sim

import (
	"fmt"
	"math"

	"github.com/storesim/storesim/sim/facility"
)

// SpeedSource supplies the walking-speed multiplier granted by upgrades.
// The planner consumes it on every plan; it does not own it.
type SpeedSource interface {
	WalkingSpeedMultiplier() float64
}

// StaticSpeed is a SpeedSource with a fixed multiplier.
type StaticSpeed float64

// WalkingSpeedMultiplier implements SpeedSource.
func (s StaticSpeed) WalkingSpeedMultiplier() float64 { return float64(s) }

// BestPath is the result of planning to the nearest of several candidates.
type BestPath struct {
	Path  facility.Path
	Index int       // index into the candidate list of the chosen destination
	Costs []float64 // path cost to every candidate, in candidate order
}

// PathPlanner answers routing queries for customers over the shared graph.
type PathPlanner struct {
	graph        *facility.Graph
	walkingSpeed float64
	speed        SpeedSource
	plans        int
}

// NewPathPlanner creates a planner. A nil speed source means no upgrade.
func NewPathPlanner(graph *facility.Graph, walkingSpeed float64, speed SpeedSource) *PathPlanner {
	if walkingSpeed <= 0 {
		panic(fmt.Sprintf("NewPathPlanner: walkingSpeed must be > 0, got %v", walkingSpeed))
	}
	if speed == nil {
		speed = StaticSpeed(1)
	}
	return &PathPlanner{graph: graph, walkingSpeed: walkingSpeed, speed: speed}
}

// SetSpeedSource replaces the upgrade collaborator. Paths planned afterwards
// use the new multiplier; paths already walking keep their duration.
func (p *PathPlanner) SetSpeedSource(speed SpeedSource) {
	if speed == nil {
		speed = StaticSpeed(1)
	}
	p.speed = speed
}

// Plans returns the number of plan requests served (PlanTo and PlanToBestOf each count once).
func (p *PathPlanner) Plans() int {
	return p.plans
}

// PlanTo returns the shortest path from the customer's position to dest.
func (p *PathPlanner) PlanTo(c *Customer, dest facility.NodeID) (facility.Path, error) {
	p.plans++
	c.Plans++
	path, err := p.graph.ShortestPath(c.Position, dest)
	if err != nil {
		return facility.Path{}, fmt.Errorf("planning %s to node %d: %w", c.ID, dest, err)
	}
	return path, nil
}

// PlanToBestOf returns the cheapest path from the customer's position to any
// of the candidates. Equal costs resolve to the lowest candidate index.
func (p *PathPlanner) PlanToBestOf(c *Customer, candidates []facility.NodeID) (BestPath, error) {
	if len(candidates) == 0 {
		return BestPath{}, fmt.Errorf("planning %s: no candidate destinations", c.ID)
	}
	p.plans++
	c.Plans++

	best := BestPath{Index: -1, Costs: make([]float64, len(candidates))}
	for i, dest := range candidates {
		path, err := p.graph.ShortestPath(c.Position, dest)
		if err != nil {
			return BestPath{}, fmt.Errorf("planning %s to candidate %d (node %d): %w", c.ID, i, dest, err)
		}
		best.Costs[i] = path.Cost
		// strict < keeps the earliest candidate on ties
		if best.Index < 0 || path.Cost < best.Path.Cost {
			best.Path = path
			best.Index = i
		}
	}
	return best, nil
}

// TraversalTicks is how long walking the path takes at the current speed.
func (p *PathPlanner) TraversalTicks(path facility.Path) int64 {
	if path.Cost == 0 {
		return 0
	}
	multiplier := p.speed.WalkingSpeedMultiplier()
	if multiplier <= 0 {
		multiplier = 1
	}
	return int64(math.Ceil(path.Cost / (p.walkingSpeed * multiplier) * float64(TicksPerSecond)))
}
