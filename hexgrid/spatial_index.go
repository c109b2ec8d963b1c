package hexgrid

import (
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

const (
	// Entries are near-degenerate boxes so box distance tracks center distance.
	pointTolerance = 1e-9

	// At most three hex centers are equidistant from any point.
	nearestCandidates = 4
)

// cellEntry wraps a node's world-space center for R-tree storage
type cellEntry struct {
	node   *Node
	center orb.Point
	bbox   rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *cellEntry) Bounds() rtreego.Rect {
	return e.bbox
}

// SpatialIndex answers world-space queries over a graph's cell centers
type SpatialIndex struct {
	tree   *rtreego.Rtree
	layout Layout
	size   float64
}

// NewSpatialIndex indexes the center of every node of g for hexes of the
// given outer radius
func NewSpatialIndex(g *Graph, size float64) *SpatialIndex {
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node

	for _, n := range g.Nodes() {
		center := g.Layout().Center(n.Offset, size)
		tree.Insert(&cellEntry{
			node:   n,
			center: center,
			bbox:   rtreego.Point{center[0], center[1]}.ToRect(pointTolerance),
		})
	}

	return &SpatialIndex{tree: tree, layout: g.Layout(), size: size}
}

// Size returns the hex radius the index was built with
func (si *SpatialIndex) Size() float64 { return si.size }

// Center returns the world-space center of n
func (si *SpatialIndex) Center(n *Node) orb.Point {
	return si.layout.Center(n.Offset, si.size)
}

// Len returns the number of indexed cells
func (si *SpatialIndex) Len() int { return si.tree.Size() }

// Nearest returns the node whose center is closest to p
func (si *SpatialIndex) Nearest(p orb.Point) (*Node, bool) {
	if si.tree.Size() == 0 {
		return nil, false
	}
	var best *cellEntry
	bestDist := 0.0
	for _, item := range si.tree.NearestNeighbors(nearestCandidates, rtreego.Point{p[0], p[1]}) {
		if item == nil {
			continue
		}
		entry := item.(*cellEntry)
		d := planar.DistanceSquared(entry.center, p)
		if best == nil || d < bestDist {
			best, bestDist = entry, d
		}
	}
	if best == nil {
		return nil, false
	}
	return best.node, true
}

// QueryRegion returns the nodes whose centers fall inside b
func (si *SpatialIndex) QueryRegion(b orb.Bound) []*Node {
	width := b.Max[0] - b.Min[0]
	height := b.Max[1] - b.Min[1]
	if width <= 0 || height <= 0 {
		return []*Node{}
	}
	rect, err := rtreego.NewRect(rtreego.Point{b.Min[0], b.Min[1]}, []float64{width, height})
	if err != nil {
		return []*Node{}
	}

	results := si.tree.SearchIntersect(rect)
	nodes := make([]*Node, 0, len(results))
	for _, item := range results {
		entry := item.(*cellEntry)
		if b.Contains(entry.center) {
			nodes = append(nodes, entry.node)
		}
	}
	return nodes
}
