package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/paulmach/orb"
	"google.golang.org/grpc/health"

	"hex-planner/hexgrid"
	"hex-planner/internal/timer"
	"hex-planner/internal/units"
	"hex-planner/pathfinder"
)

var errNoGrid = errors.New("grid not built")

// planner owns the current grid snapshot and everything derived from it.
// Searches and reads take the read lock; rebuilds, walkability changes and
// simulation ticks take the write lock.
type planner struct {
	cfg Config

	mu     sync.RWMutex
	graph  *hexgrid.Graph
	index  *hexgrid.SpatialIndex
	finder *pathfinder.Pathfinder
	units  *units.Registry

	health *health.Server
}

func newPlanner(cfg Config, hs *health.Server) *planner {
	p := &planner{
		cfg:    cfg,
		units:  units.NewRegistry(timer.NewRegistry(), cfg.RetargetEvery),
		health: hs,
	}
	p.reportHealth()
	return p
}

// setGraph replaces the grid wholesale. Unit routes refer to world points,
// so units survive a rebuild but lose their waypoints.
func (p *planner) setGraph(g *hexgrid.Graph) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.swapGraph(g)
}

// installGraph is setGraph unless a grid already exists and force is
// false, in which case it leaves the current grid and returns false.
func (p *planner) installGraph(g *hexgrid.Graph, force bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.graph != nil && !force {
		return false
	}
	p.swapGraph(g)
	return true
}

// swapGraph must be called with p.mu held.
func (p *planner) swapGraph(g *hexgrid.Graph) {
	p.graph = g
	p.index = hexgrid.NewSpatialIndex(g, p.cfg.HexSize)
	p.finder = pathfinder.New(g)
	for _, u := range p.units.Units() {
		u.Follow(nil)
	}
	p.reportHealth()
}

func (p *planner) hasGraph() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.graph != nil
}

// reportHealth must be called with p.mu held or before p is shared.
func (p *planner) reportHealth() {
	if p.health == nil {
		return
	}
	setServing(p.health, p.graph != nil)
}

// resolve maps a cell reference to a node, snapping world points to the
// nearest cell. Callers hold the read lock.
func (p *planner) resolve(ref cellRef) (*hexgrid.Node, bool) {
	switch {
	case ref.Offset != nil:
		return p.graph.AtOffset(*ref.Offset)
	case ref.Point != nil:
		return p.index.Nearest(*ref.Point)
	}
	return nil, false
}

// applyZones blocks every cell covered by zones and returns the count.
func (p *planner) applyZones(zones []orb.Polygon) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.graph == nil {
		return 0, errNoGrid
	}
	blocked := hexgrid.ApplyZones(p.index, zones)
	return len(blocked), nil
}

// loadZones reads a GeoJSON file of blocked zones and applies it to the
// current grid. It returns the zone and blocked cell counts.
func (p *planner) loadZones(path string) (int, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read zones file: %w", err)
	}
	zones, err := hexgrid.LoadZones(data)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse zones file: %w", err)
	}
	blocked, err := p.applyZones(zones)
	if err != nil {
		return len(zones), 0, err
	}
	return len(zones), blocked, nil
}

// loadSnapshot restores the grid saved at cfg.SnapshotPath, if any.
func (p *planner) loadSnapshot() error {
	g, err := hexgrid.LoadSnapshot(p.cfg.SnapshotPath)
	if err != nil {
		return err
	}
	p.setGraph(g)
	log.Printf("✅ Loaded existing hex grid from %s\n", p.cfg.SnapshotPath)
	log.Printf("   Nodes: %d (%d walkable)\n", g.Len(), g.WalkableCount())
	return nil
}

// saveSnapshot writes the current grid to cfg.SnapshotPath.
func (p *planner) saveSnapshot() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.graph == nil {
		return errNoGrid
	}
	log.Printf("💾 Saving hex grid to %s...\n", p.cfg.SnapshotPath)
	return hexgrid.SaveSnapshot(p.graph, p.cfg.SnapshotPath)
}
