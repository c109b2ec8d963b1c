// Package pathfinder runs A* over a hexgrid.Graph.
//
// Unit steps cost 1. The two double-step directions cost 2 and are only
// legal when at least one of the two flanking cells is linked and walkable.
// The heuristic is the cube (Chebyshev) distance, which never overestimates
// under this cost model, so returned paths are optimal.
//
// A search runs to completion on the calling goroutine. Its score tables and
// open set are private to the call, but the graph is read without locking:
// callers must not change walkability while a search is in flight.
package pathfinder

import (
	"errors"
	"fmt"

	"hex-planner/hexgrid"
	"hex-planner/minheap"
)

// ErrNodeNotInGraph is returned when start or goal is nil or belongs to a
// different graph than the Pathfinder's.
var ErrNodeNotInGraph = errors.New("pathfinder: node not in graph")

// Result contains the outcome of a search
type Result struct {
	Path     []*hexgrid.Node
	Cost     int
	Expanded int
	Found    bool
}

// Pathfinder searches one graph.
type Pathfinder struct {
	graph *hexgrid.Graph
}

// New returns a Pathfinder over g.
func New(g *hexgrid.Graph) *Pathfinder {
	return &Pathfinder{graph: g}
}

// Heuristic estimates the remaining cost between two cells.
func Heuristic(a, b *hexgrid.Node) int {
	return hexgrid.Distance(a.Coord, b.Coord)
}

// Find returns the cheapest path from start to goal, both inclusive. An
// empty path means the goal is unreachable; that is not an error.
func (p *Pathfinder) Find(start, goal *hexgrid.Node) ([]*hexgrid.Node, error) {
	res, err := p.Search(start, goal)
	if err != nil {
		return nil, err
	}
	return res.Path, nil
}

// Search runs A* from start to goal.
func (p *Pathfinder) Search(start, goal *hexgrid.Node) (Result, error) {
	if !p.graph.Contains(start) {
		return Result{}, fmt.Errorf("%w: start", ErrNodeNotInGraph)
	}
	if !p.graph.Contains(goal) {
		return Result{}, fmt.Errorf("%w: goal", ErrNodeNotInGraph)
	}

	s := newSearch(p.graph.Len(), goal)
	s.open(start, 0, nil)

	for s.openSet.Len() > 0 {
		id, err := s.openSet.ExtractMin()
		if err != nil {
			return Result{}, err
		}
		current, _ := p.graph.Node(id)
		s.expanded++

		if current == goal {
			return Result{
				Path:     s.reconstructPath(current),
				Cost:     s.gScore[id],
				Expanded: s.expanded,
				Found:    true,
			}, nil
		}

		s.closed[id] = true

		for _, d := range hexgrid.Directions {
			neighbor, cost, ok := current.Step(d)
			if !ok || s.closed[neighbor.ID] {
				continue
			}
			tentativeG := s.gScore[id] + cost
			if !s.seen[neighbor.ID] || tentativeG < s.gScore[neighbor.ID] {
				s.open(neighbor, tentativeG, current)
			}
		}
	}

	// No path found
	return Result{Path: []*hexgrid.Node{}, Expanded: s.expanded}, nil
}

// search holds the per-call score tables, keyed by node ID.
type search struct {
	goal     *hexgrid.Node
	gScore   []int
	hScore   []int
	seen     []bool
	closed   []bool
	cameFrom []*hexgrid.Node
	openSet  *minheap.MinHeap[int]
	expanded int
}

func newSearch(n int, goal *hexgrid.Node) *search {
	s := &search{
		goal:     goal,
		gScore:   make([]int, n),
		hScore:   make([]int, n),
		seen:     make([]bool, n),
		closed:   make([]bool, n),
		cameFrom: make([]*hexgrid.Node, n),
	}
	// Equal f-scores go to the node nearer the goal, then the lower ID.
	s.openSet = minheap.New(minheap.WithTieBreak(func(a, b int) bool {
		if s.hScore[a] != s.hScore[b] {
			return s.hScore[a] < s.hScore[b]
		}
		return a < b
	}))
	return s
}

// open records a better path to n through from and queues n at its new
// f-score.
func (s *search) open(n *hexgrid.Node, g int, from *hexgrid.Node) {
	id := n.ID
	if !s.seen[id] {
		s.hScore[id] = Heuristic(n, s.goal)
		s.seen[id] = true
	}
	s.gScore[id] = g
	s.cameFrom[id] = from
	s.openSet.InsertOrUpdate(id, g+s.hScore[id])
}

func (s *search) reconstructPath(current *hexgrid.Node) []*hexgrid.Node {
	path := []*hexgrid.Node{current}
	for prev := s.cameFrom[current.ID]; prev != nil; prev = s.cameFrom[prev.ID] {
		path = append(path, prev)
	}
	// reverse path
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
