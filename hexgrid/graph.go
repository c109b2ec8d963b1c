package hexgrid

import (
	"errors"
	"fmt"
)

var (
	// ErrInconsistentGraph reports a construction defect: a broken cube
	// invariant, a link to a node missing from the coordinate table, or a
	// one-way link.
	ErrInconsistentGraph = errors.New("hexgrid: inconsistent graph")
	// ErrInvalidCoord is returned when a coordinate violates X+Y+Z=0.
	ErrInvalidCoord = errors.New("hexgrid: invalid cube coordinate")
	// ErrDuplicateNode is returned when a coordinate is added twice.
	ErrDuplicateNode = errors.New("hexgrid: duplicate node")
)

// Graph maps cube coordinates to nodes. Nodes live in a contiguous store and
// are addressed by their ID.
type Graph struct {
	layout  Layout
	nodes   []*Node
	byCoord map[Cube]*Node
}

// NewGraph returns an empty graph for hand-built or incremental use.
func NewGraph(layout Layout) *Graph {
	return &Graph{
		layout:  layout,
		byCoord: make(map[Cube]*Node),
	}
}

// Build creates one walkable node per distinct occupied cell and links every
// node to the nodes found at each of the eight direction offsets. Neighbor
// resolution runs only after all nodes exist. The result is validated
// before it is returned.
func Build(cells []Offset, layout Layout) (*Graph, error) {
	g := &Graph{
		layout:  layout,
		nodes:   make([]*Node, 0, len(cells)),
		byCoord: make(map[Cube]*Node, len(cells)),
	}

	for _, cell := range cells {
		c := layout.ToCube(cell)
		if _, exists := g.byCoord[c]; exists {
			continue
		}
		if _, err := g.add(c, cell); err != nil {
			return nil, fmt.Errorf("hexgrid: build: %w", err)
		}
	}

	g.ResolveNeighbors()

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("hexgrid: build: %w", err)
	}
	return g, nil
}

// AddNode allocates a walkable node at c without linking it.
func (g *Graph) AddNode(c Cube) (*Node, error) {
	if _, exists := g.byCoord[c]; exists {
		return nil, fmt.Errorf("%w at %v", ErrDuplicateNode, c)
	}
	return g.add(c, g.layout.ToOffset(c))
}

func (g *Graph) add(c Cube, o Offset) (*Node, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w %v", ErrInvalidCoord, c)
	}
	n := &Node{
		ID:       len(g.nodes),
		Coord:    c,
		Offset:   o,
		walkable: true,
	}
	g.nodes = append(g.nodes, n)
	g.byCoord[c] = n
	return n, nil
}

// ResolveNeighbors links every node to the node at coord+d for each
// direction d where one exists. Links are recomputed from scratch.
func (g *Graph) ResolveNeighbors() {
	for _, n := range g.nodes {
		n.neighbors = [numDirections]*Node{}
		for _, d := range Directions {
			if nb, ok := g.byCoord[n.Coord.Add(d.Vector())]; ok {
				n.neighbors[d] = nb
			}
		}
	}
}

// Link registers a and b as neighbors of each other, with b lying in
// direction d from a.
func (g *Graph) Link(a, b *Node, d Direction) {
	a.AddNeighbor(b, d)
	b.AddNeighbor(a, d.Opposite())
}

// Validate checks the cube invariant of every node and that every neighbor
// link matches the coordinate table and has a reciprocal link.
func (g *Graph) Validate() error {
	for _, n := range g.nodes {
		if !n.Coord.Valid() {
			return fmt.Errorf("%w: node %d has coordinate %v", ErrInconsistentGraph, n.ID, n.Coord)
		}
		if g.byCoord[n.Coord] != n {
			return fmt.Errorf("%w: node %d at %v missing from coordinate table", ErrInconsistentGraph, n.ID, n.Coord)
		}
		for _, d := range Directions {
			nb := n.neighbors[d]
			if nb == nil {
				continue
			}
			want := n.Coord.Add(d.Vector())
			if nb.Coord != want || g.byCoord[want] != nb {
				return fmt.Errorf("%w: node %v links %s to %v, table holds %v",
					ErrInconsistentGraph, n.Coord, d, nb.Coord, want)
			}
			if nb.neighbors[d.Opposite()] != n {
				return fmt.Errorf("%w: link %v -> %v (%s) has no reciprocal",
					ErrInconsistentGraph, n.Coord, nb.Coord, d)
			}
		}
	}
	return nil
}

// Layout returns the offset layout the graph was built with.
func (g *Graph) Layout() Layout { return g.layout }

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Nodes returns the node store in ID order. The slice must not be modified.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Node returns the node with the given ID.
func (g *Graph) Node(id int) (*Node, bool) {
	if id < 0 || id >= len(g.nodes) {
		return nil, false
	}
	return g.nodes[id], true
}

// Contains reports whether n belongs to g.
func (g *Graph) Contains(n *Node) bool {
	if n == nil {
		return false
	}
	stored, ok := g.Node(n.ID)
	return ok && stored == n
}

// At returns the node at cube coordinate c.
func (g *Graph) At(c Cube) (*Node, bool) {
	n, ok := g.byCoord[c]
	return n, ok
}

// AtOffset returns the node at layout position o.
func (g *Graph) AtOffset(o Offset) (*Node, bool) {
	return g.At(g.layout.ToCube(o))
}

// WalkableCount returns how many nodes are currently walkable.
func (g *Graph) WalkableCount() int {
	count := 0
	for _, n := range g.nodes {
		if n.walkable {
			count++
		}
	}
	return count
}

// Segment is an undirected neighbor link between two cells.
type Segment struct {
	From *Node
	To   *Node
}

// Segments returns every neighbor link once, for visualisation.
func (g *Graph) Segments() []Segment {
	segments := make([]Segment, 0, len(g.nodes)*3)
	for _, n := range g.nodes {
		n.EachNeighbor(func(_ Direction, nb *Node) {
			// Links are symmetric; keep the copy owned by the lower ID.
			if n.ID < nb.ID {
				segments = append(segments, Segment{From: n, To: nb})
			}
		})
	}
	return segments
}
