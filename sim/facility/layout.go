package facility

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_layout.yaml
var defaultLayoutYAML []byte

// LayoutSpec is the on-disk description of a store floor.
// Loaded from YAML via LoadLayout(path).
type LayoutSpec struct {
	Version  string     `yaml:"version"`
	Name     string     `yaml:"name"`
	Nodes    []NodeSpec `yaml:"nodes"`
	Edges    []EdgeSpec `yaml:"edges"`
	Stations []NodeID   `yaml:"stations"` // checkout nodes open at startup, in station index order
}

// NodeSpec describes a single node.
type NodeSpec struct {
	ID       NodeID   `yaml:"id"`
	X        float64  `yaml:"x"`
	Y        float64  `yaml:"y"`
	Category Category `yaml:"category"`
	Item     string   `yaml:"item,omitempty"`
}

// EdgeSpec describes an undirected edge. Cost defaults to the Euclidean
// distance between the endpoints when omitted.
type EdgeSpec struct {
	From NodeID   `yaml:"from"`
	To   NodeID   `yaml:"to"`
	Cost *float64 `yaml:"cost,omitempty"`
}

// LoadLayout reads a layout YAML file with strict field checking:
// typos in field names are errors rather than silently ignored.
func LoadLayout(path string) (*LayoutSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading layout %s: %w", path, err)
	}
	spec, err := ParseLayout(data)
	if err != nil {
		return nil, fmt.Errorf("parsing layout %s: %w", path, err)
	}
	return spec, nil
}

// ParseLayout decodes layout YAML from memory.
func ParseLayout(data []byte) (*LayoutSpec, error) {
	var spec LayoutSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

// DefaultLayout returns the built-in corner store layout.
func DefaultLayout() *LayoutSpec {
	spec, err := ParseLayout(defaultLayoutYAML)
	if err != nil {
		panic(fmt.Sprintf("facility: embedded default layout is invalid: %v", err))
	}
	return spec
}

// Build constructs and validates the graph described by the spec.
func (s *LayoutSpec) Build() (*Graph, error) {
	g := NewGraph()
	for _, n := range s.Nodes {
		err := g.AddNode(Node{
			ID:       n.ID,
			Position: Point{X: n.X, Y: n.Y},
			Category: n.Category,
			Item:     n.Item,
		})
		if err != nil {
			return nil, err
		}
	}
	for _, e := range s.Edges {
		var err error
		if e.Cost != nil {
			err = g.AddWeightedEdge(e.From, e.To, *e.Cost)
		} else {
			err = g.AddEdge(e.From, e.To)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	for _, id := range s.Stations {
		n, ok := g.Node(id)
		if !ok {
			return nil, fmt.Errorf("%w: station %d", ErrUnknownNode, id)
		}
		if n.Category != CategoryCheckout {
			return nil, fmt.Errorf("facility: station node %d is a %s, not a checkout", id, n.Category)
		}
	}
	return g, nil
}
