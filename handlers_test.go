package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"

	"hex-planner/hexgrid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*planner, *gin.Engine) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.SnapshotPath = filepath.Join(t.TempDir(), "grid.json.br")
	p := newPlanner(cfg, nil)
	return p, newRouter(p)
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid JSON %q: %v", w.Body.String(), err)
	}
}

func TestHealthBeforeGrid(t *testing.T) {
	_, r := newTestServer(t)
	w := do(t, r, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Status  string `json:"status"`
		HasGrid bool   `json:"hasGrid"`
	}
	decode(t, w, &resp)
	if resp.HasGrid || resp.Status != "waiting for hex grid" {
		t.Fatalf("unexpected health %+v", resp)
	}
}

func TestRouteWithoutGrid(t *testing.T) {
	_, r := newTestServer(t)
	w := do(t, r, http.MethodPost, "/route", RouteRequest{
		Start: cellRef{Offset: &hexgrid.Offset{}},
		Goal:  cellRef{Offset: &hexgrid.Offset{Col: 1}},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestBuildGridConflict(t *testing.T) {
	_, r := newTestServer(t)
	if w := do(t, r, http.MethodPost, "/grid", BuildGridRequest{Cols: 4, Rows: 3}); w.Code != http.StatusOK {
		t.Fatalf("first build: expected 200, got %d: %s", w.Code, w.Body)
	}
	if w := do(t, r, http.MethodPost, "/grid", BuildGridRequest{Cols: 4, Rows: 3}); w.Code != http.StatusConflict {
		t.Fatalf("second build: expected 409, got %d", w.Code)
	}
	w := do(t, r, http.MethodPost, "/grid", BuildGridRequest{Cols: 2, Rows: 2, Force: true})
	if w.Code != http.StatusOK {
		t.Fatalf("forced build: expected 200, got %d", w.Code)
	}
	var resp struct {
		NumNodes int `json:"numNodes"`
	}
	decode(t, w, &resp)
	if resp.NumNodes != 4 {
		t.Fatalf("expected 4 nodes, got %d", resp.NumNodes)
	}
}

func TestBuildGridConcurrentRequests(t *testing.T) {
	p, r := newTestServer(t)

	const n = 8
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = do(t, r, http.MethodPost, "/grid", BuildGridRequest{Cols: i + 1, Rows: 1}).Code
		}(i)
	}
	wg.Wait()

	winner := -1
	for i, code := range codes {
		switch code {
		case http.StatusOK:
			if winner >= 0 {
				t.Fatalf("requests %d and %d both built a grid", winner, i)
			}
			winner = i
		case http.StatusConflict:
		default:
			t.Fatalf("request %d: unexpected status %d", i, code)
		}
	}
	if winner < 0 {
		t.Fatal("no request built a grid")
	}
	if p.graph.Len() != winner+1 {
		t.Fatalf("grid has %d cells, the winning request asked for %d", p.graph.Len(), winner+1)
	}
}

func TestBuildGridBadLayout(t *testing.T) {
	_, r := newTestServer(t)
	if w := do(t, r, http.MethodPost, "/grid", BuildGridRequest{Cols: 2, Rows: 2, Layout: "hexagonal"}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGridAndLines(t *testing.T) {
	_, r := newTestServer(t)
	do(t, r, http.MethodPost, "/grid", BuildGridRequest{Cells: []hexgrid.Offset{{Col: 0}, {Col: 1}}})

	var grid struct {
		Cells   []cellView     `json:"cells"`
		HexSize float64        `json:"hexSize"`
		Min     hexgrid.Offset `json:"min"`
		Max     hexgrid.Offset `json:"max"`
	}
	decode(t, do(t, r, http.MethodGet, "/grid", nil), &grid)
	if len(grid.Cells) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(grid.Cells))
	}
	if grid.HexSize != 1 || grid.Min != (hexgrid.Offset{}) || grid.Max != (hexgrid.Offset{Col: 1}) {
		t.Fatalf("unexpected extent %+v..%+v size %v", grid.Min, grid.Max, grid.HexSize)
	}

	var lines struct {
		Lines    [][]orb.Point `json:"lines"`
		NumEdges int           `json:"numEdges"`
	}
	decode(t, do(t, r, http.MethodGet, "/grid/lines", nil), &lines)
	if lines.NumEdges != 1 || len(lines.Lines) != 1 {
		t.Fatalf("expected a single link, got %d", lines.NumEdges)
	}
}

// In odd-q, offsets (0,0) (1,0) (2,0) are the origin, its NE neighbor and
// its East2 cell. The only flank of the double step is (1,0).
func TestRouteDoubleStepAndBlockedFlank(t *testing.T) {
	_, r := newTestServer(t)
	do(t, r, http.MethodPost, "/grid", BuildGridRequest{Cols: 3, Rows: 1})

	req := RouteRequest{
		Start: cellRef{Offset: &hexgrid.Offset{Col: 0}},
		Goal:  cellRef{Offset: &hexgrid.Offset{Col: 2}},
	}
	var resp RouteResponse
	decode(t, do(t, r, http.MethodPost, "/route", req), &resp)
	if !resp.Success || resp.Cost != 2 {
		t.Fatalf("expected a path of cost 2, got %+v", resp)
	}
	if resp.Path[0].Offset != (hexgrid.Offset{}) || resp.Path[len(resp.Path)-1].Offset != (hexgrid.Offset{Col: 2}) {
		t.Fatalf("path should run from start to goal, got %+v", resp.Path)
	}

	w := do(t, r, http.MethodPost, "/walkable", WalkableRequest{Cell: cellRef{Offset: &hexgrid.Offset{Col: 1}}, Walkable: false})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	resp = RouteResponse{}
	decode(t, do(t, r, http.MethodPost, "/route", req), &resp)
	if resp.Success {
		t.Fatalf("double step without an open flank should be rejected, got %+v", resp)
	}
	if resp.Path == nil || len(resp.Path) != 0 {
		t.Fatalf("expected an empty path, got %v", resp.Path)
	}
}

func TestRouteSnapsWorldPoints(t *testing.T) {
	_, r := newTestServer(t)
	do(t, r, http.MethodPost, "/grid", BuildGridRequest{Cols: 3, Rows: 3})

	var resp RouteResponse
	decode(t, do(t, r, http.MethodPost, "/route", RouteRequest{
		Start: cellRef{Point: &orb.Point{0.1, -0.1}},
		Goal:  cellRef{Point: &orb.Point{0.1, 0.1}},
	}), &resp)
	if !resp.Success || len(resp.Path) != 1 || resp.Cost != 0 {
		t.Fatalf("both points snap to (0,0), got %+v", resp)
	}
}

func TestRouteUnknownCell(t *testing.T) {
	_, r := newTestServer(t)
	do(t, r, http.MethodPost, "/grid", BuildGridRequest{Cols: 2, Rows: 2})
	var resp RouteResponse
	decode(t, do(t, r, http.MethodPost, "/route", RouteRequest{
		Start: cellRef{Offset: &hexgrid.Offset{}},
		Goal:  cellRef{Offset: &hexgrid.Offset{Col: 9, Row: 9}},
	}), &resp)
	if resp.Success {
		t.Fatal("route to a missing cell should fail")
	}
}

func TestZonesBlockCells(t *testing.T) {
	p, r := newTestServer(t)
	do(t, r, http.MethodPost, "/grid", BuildGridRequest{Cols: 5, Rows: 5})

	zone := `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},
		"geometry":{"type":"Polygon","coordinates":[[[-0.5,-0.5],[0.5,-0.5],[0.5,3.9],[-0.5,3.9],[-0.5,-0.5]]]}}]}`
	w := do(t, r, http.MethodPost, "/zones", zone)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body)
	}
	var resp struct {
		Blocked int `json:"blocked"`
	}
	decode(t, w, &resp)
	if resp.Blocked != 3 {
		t.Fatalf("expected 3 blocked cells, got %d", resp.Blocked)
	}
	if got := p.graph.WalkableCount(); got != 22 {
		t.Fatalf("expected 22 walkable cells, got %d", got)
	}

	if w := do(t, r, http.MethodPost, "/zones", "not geojson"); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad GeoJSON, got %d", w.Code)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	p, r := newTestServer(t)
	do(t, r, http.MethodPost, "/grid", BuildGridRequest{Cols: 3, Rows: 2})
	do(t, r, http.MethodPost, "/walkable", WalkableRequest{Cell: cellRef{Offset: &hexgrid.Offset{Col: 2, Row: 1}}})

	if w := do(t, r, http.MethodPost, "/snapshot", nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body)
	}

	fresh := newPlanner(p.cfg, nil)
	if err := fresh.loadSnapshot(); err != nil {
		t.Fatal(err)
	}
	if fresh.graph.Len() != 6 || fresh.graph.WalkableCount() != 5 {
		t.Fatalf("expected 6 cells with 5 walkable, got %d/%d", fresh.graph.Len(), fresh.graph.WalkableCount())
	}
}

func TestUnitsMoveTargetAndTick(t *testing.T) {
	_, r := newTestServer(t)
	do(t, r, http.MethodPost, "/grid", BuildGridRequest{Cols: 3, Rows: 1})

	var ally, enemy unitView
	decode(t, do(t, r, http.MethodPost, "/units", SpawnRequest{Faction: "ally", Point: orb.Point{0, 0}, Range: 5, Speed: 10}), &ally)
	decode(t, do(t, r, http.MethodPost, "/units", SpawnRequest{Faction: "enemy", Point: orb.Point{7, 0}, Range: 5, Speed: 0}), &enemy)

	var target struct {
		Found bool `json:"found"`
	}
	decode(t, do(t, r, http.MethodGet, "/units/1/target", nil), &target)
	if target.Found {
		t.Fatal("enemy is out of range")
	}

	w := do(t, r, http.MethodPost, "/units/1/move", MoveRequest{Goal: cellRef{Offset: &hexgrid.Offset{Col: 2}}})
	var move struct {
		Success   bool        `json:"success"`
		Waypoints []orb.Point `json:"waypoints"`
	}
	decode(t, w, &move)
	if !move.Success || len(move.Waypoints) < 2 {
		t.Fatalf("expected a route, got %s", w.Body)
	}

	var tick struct {
		Units      []unitView `json:"units"`
		Retargeted []int      `json:"retargeted"`
	}
	decode(t, do(t, r, http.MethodPost, "/tick", TickRequest{DtMs: 2000}), &tick)
	if len(tick.Units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(tick.Units))
	}
	if tick.Units[0].Position != (orb.Point{3, 0}) || tick.Units[0].Waypoints != 0 {
		t.Fatalf("ally should have arrived at (3,0), got %+v", tick.Units[0])
	}
	// Both retarget timers (1s) expired during the 2s tick.
	if len(tick.Retargeted) != 2 {
		t.Fatalf("expected 2 retargeted units, got %v", tick.Retargeted)
	}
	if tick.Units[0].TargetID == nil || *tick.Units[0].TargetID != enemy.ID {
		t.Fatalf("ally at (3,0) should now target the enemy at (7,0), got %+v", tick.Units[0])
	}
}

func TestUnitErrors(t *testing.T) {
	_, r := newTestServer(t)
	if w := do(t, r, http.MethodPost, "/units", SpawnRequest{Faction: "neutral"}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad faction, got %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/units/42/target", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/units/abc/target", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if w := do(t, r, http.MethodPost, "/tick", TickRequest{}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero dt, got %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	_, r := newTestServer(t)
	w := do(t, r, http.MethodOptions, "/route", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard origin, got %q", got)
	}
}
