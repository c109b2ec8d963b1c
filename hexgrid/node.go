package hexgrid

// Node is one traversable cell of a Graph.
type Node struct {
	// ID is the node's stable index in its graph's store.
	ID     int
	Coord  Cube
	Offset Offset

	walkable  bool
	neighbors [numDirections]*Node
}

// Walkable reports whether units may enter the cell.
func (n *Node) Walkable() bool { return n.walkable }

// SetWalkable sets the walkable flag. Setting the current value is a no-op.
func (n *Node) SetWalkable(walkable bool) { n.walkable = walkable }

// Neighbor returns the node linked in direction d.
func (n *Node) Neighbor(d Direction) (*Node, bool) {
	if d < 0 || d >= numDirections {
		return nil, false
	}
	nb := n.neighbors[d]
	return nb, nb != nil
}

// AddNeighbor registers neighbor as reachable in direction d. Only this
// side of the link is recorded; use Graph.Link for both sides.
func (n *Node) AddNeighbor(neighbor *Node, d Direction) {
	if neighbor == nil || d < 0 || d >= numDirections {
		return
	}
	n.neighbors[d] = neighbor
}

// EachNeighbor calls fn for every registered neighbor in direction order.
func (n *Node) EachNeighbor(fn func(d Direction, neighbor *Node)) {
	for _, d := range Directions {
		if nb := n.neighbors[d]; nb != nil {
			fn(d, nb)
		}
	}
}

// open reports whether the link in direction d exists and leads to a
// walkable cell.
func (n *Node) open(d Direction) bool {
	nb := n.neighbors[d]
	return nb != nil && nb.walkable
}

// Step returns the node reached by moving one step in direction d together
// with the step's cost. A unit step needs a walkable neighbor. A double step
// additionally needs at least one of its two flanking cells to be linked and
// walkable.
func (n *Node) Step(d Direction) (*Node, int, bool) {
	if d < 0 || d >= numDirections || !n.open(d) {
		return nil, 0, false
	}
	if d.DoubleStep() {
		a, b := d.Flanks()
		if !n.open(a) && !n.open(b) {
			return nil, 0, false
		}
	}
	return n.neighbors[d], d.Cost(), true
}
