package hexgrid

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	for _, compress := range []bool{false, true} {
		g, err := Build(Rect(4, 4), EvenR)
		if err != nil {
			t.Fatal(err)
		}
		blockedAt := Offset{Col: 2, Row: 1}
		n, _ := g.AtOffset(blockedAt)
		n.SetWalkable(false)

		var buf bytes.Buffer
		if err := WriteSnapshot(&buf, g, compress); err != nil {
			t.Fatalf("compress=%v: write: %v", compress, err)
		}
		restored, err := ReadSnapshot(&buf, compress)
		if err != nil {
			t.Fatalf("compress=%v: read: %v", compress, err)
		}
		if restored.Layout() != EvenR {
			t.Fatalf("compress=%v: layout %v", compress, restored.Layout())
		}
		if restored.Len() != g.Len() {
			t.Fatalf("compress=%v: %d nodes, expected %d", compress, restored.Len(), g.Len())
		}
		for _, orig := range g.Nodes() {
			got, ok := restored.At(orig.Coord)
			if !ok {
				t.Fatalf("compress=%v: %v missing", compress, orig.Coord)
			}
			if got.Walkable() != orig.Walkable() {
				t.Fatalf("compress=%v: walkable mismatch at %v", compress, orig.Offset)
			}
		}
	}
}

func TestSaveLoadSnapshotFile(t *testing.T) {
	g, err := Build(Rect(3, 2), OddQ)
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	for _, name := range []string{"grid.json", "grid.json.br"} {
		path := filepath.Join(dir, name)
		if err := SaveSnapshot(g, path); err != nil {
			t.Fatalf("%s: save: %v", name, err)
		}
		loaded, err := LoadSnapshot(path)
		if err != nil {
			t.Fatalf("%s: load: %v", name, err)
		}
		if loaded.Len() != g.Len() {
			t.Fatalf("%s: %d nodes, expected %d", name, loaded.Len(), g.Len())
		}
	}

	plain, _ := os.ReadFile(filepath.Join(dir, "grid.json"))
	if !bytes.Contains(plain, []byte(`"odd-q"`)) {
		t.Fatalf("plain snapshot should name its layout: %s", plain)
	}

	if _, err := LoadSnapshot(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
