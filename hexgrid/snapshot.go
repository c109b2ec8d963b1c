package hexgrid

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/andybalholm/brotli"
)

// Snapshot is the persisted form of a graph: its layout plus every occupied
// cell and walkable flag. Links are not stored; they are rebuilt on load.
type Snapshot struct {
	Layout Layout         `json:"layout"`
	Cells  []SnapshotCell `json:"cells"`
}

// SnapshotCell is one occupied cell in a Snapshot.
type SnapshotCell struct {
	Offset   Offset `json:"offset"`
	Walkable bool   `json:"walkable"`
}

// TakeSnapshot captures g in ID order.
func TakeSnapshot(g *Graph) Snapshot {
	snap := Snapshot{Layout: g.Layout(), Cells: make([]SnapshotCell, 0, g.Len())}
	for _, n := range g.Nodes() {
		snap.Cells = append(snap.Cells, SnapshotCell{Offset: n.Offset, Walkable: n.Walkable()})
	}
	return snap
}

// Restore builds a fresh graph from the snapshot and reapplies walkability.
func (s Snapshot) Restore() (*Graph, error) {
	cells := make([]Offset, len(s.Cells))
	for i, c := range s.Cells {
		cells[i] = c.Offset
	}
	g, err := Build(cells, s.Layout)
	if err != nil {
		return nil, err
	}
	for _, c := range s.Cells {
		if n, ok := g.AtOffset(c.Offset); ok {
			n.SetWalkable(c.Walkable)
		}
	}
	return g, nil
}

// WriteSnapshot encodes g as JSON to w, brotli-compressed when compress is set.
func WriteSnapshot(w io.Writer, g *Graph, compress bool) error {
	if !compress {
		return json.NewEncoder(w).Encode(TakeSnapshot(g))
	}
	bw := brotli.NewWriter(w)
	if err := json.NewEncoder(bw).Encode(TakeSnapshot(g)); err != nil {
		bw.Close()
		return err
	}
	return bw.Close()
}

// ReadSnapshot decodes a snapshot written by WriteSnapshot and restores it.
func ReadSnapshot(r io.Reader, compressed bool) (*Graph, error) {
	if compressed {
		r = brotli.NewReader(r)
	}
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap.Restore()
}

// SaveSnapshot writes g to filename. Names ending in ".br" are compressed.
func SaveSnapshot(g *Graph, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := WriteSnapshot(f, g, strings.HasSuffix(filename, ".br")); err != nil {
		f.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return f.Close()
}

// LoadSnapshot reads a graph previously stored with SaveSnapshot.
func LoadSnapshot(filename string) (*Graph, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer f.Close()
	return ReadSnapshot(f, strings.HasSuffix(filename, ".br"))
}
