package main

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"

	"hex-planner/hexgrid"
	"hex-planner/internal/units"
)

// cellRef names a cell either by layout offset or by a world point that is
// snapped to the nearest cell center.
type cellRef struct {
	Offset *hexgrid.Offset `json:"offset,omitempty"`
	Point  *orb.Point      `json:"point,omitempty"`
}

type cellView struct {
	Coord    hexgrid.Cube   `json:"coord"`
	Offset   hexgrid.Offset `json:"offset"`
	Center   orb.Point      `json:"center"`
	Walkable bool           `json:"walkable"`
}

type BuildGridRequest struct {
	Cols       int              `json:"cols"`
	Rows       int              `json:"rows"`
	Cells      []hexgrid.Offset `json:"cells,omitempty"` // explicit occupied cells; overrides cols/rows
	Layout     string           `json:"layout,omitempty"`
	Force      bool             `json:"force,omitempty"` // Set to true to force rebuild
	SaveToFile bool             `json:"saveToFile"`
}

type RouteRequest struct {
	Start cellRef `json:"start"`
	Goal  cellRef `json:"goal"`
}

type RouteResponse struct {
	Path     []cellView `json:"path"`
	Cost     int        `json:"cost"`
	Expanded int        `json:"expanded"`
	Success  bool       `json:"success"`
	Message  string     `json:"message,omitempty"`
}

type WalkableRequest struct {
	Cell     cellRef `json:"cell"`
	Walkable bool    `json:"walkable"`
}

type SpawnRequest struct {
	Faction string    `json:"faction"`
	Point   orb.Point `json:"point"`
	Range   float64   `json:"range"`
	Speed   float64   `json:"speed"`
}

type MoveRequest struct {
	Goal cellRef `json:"goal"`
}

type TickRequest struct {
	DtMs int `json:"dtMs"`
}

type unitView struct {
	ID        int       `json:"id"`
	Faction   string    `json:"faction"`
	Position  orb.Point `json:"position"`
	Range     float64   `json:"range"`
	Speed     float64   `json:"speed"`
	Waypoints int       `json:"waypoints"`
	TargetID  *int      `json:"targetId,omitempty"`
	// RetargetMs is the simulated time until the next target acquisition.
	RetargetMs int64 `json:"retargetMs"`
}

func viewUnit(u *units.Unit) unitView {
	v := unitView{
		ID:        u.ID,
		Faction:   u.Faction.String(),
		Position:  u.Position,
		Range:     u.Range,
		Speed:     u.Speed,
		Waypoints: len(u.Waypoints()),

		RetargetMs: u.RetargetIn().Milliseconds(),
	}
	if u.Target != nil {
		id := u.Target.ID
		v.TargetID = &id
	}
	return v
}

func (p *planner) viewCell(n *hexgrid.Node) cellView {
	return cellView{
		Coord:    n.Coord,
		Offset:   n.Offset,
		Center:   p.index.Center(n),
		Walkable: n.Walkable(),
	}
}

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func newRouter(p *planner) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), corsMiddleware(p.cfg.AllowOrigin))

	router.GET("/health", p.healthHandler)
	router.POST("/grid", p.buildGridHandler)
	router.GET("/grid", p.getGridHandler)
	router.GET("/grid/lines", p.getGridLinesHandler)
	router.POST("/walkable", p.walkableHandler)
	router.POST("/zones", p.zonesHandler)
	router.POST("/route", p.routeHandler)
	router.POST("/snapshot", p.snapshotHandler)

	router.GET("/units", p.listUnitsHandler)
	router.POST("/units", p.spawnUnitHandler)
	router.POST("/units/:id/move", p.moveUnitHandler)
	router.GET("/units/:id/target", p.unitTargetHandler)
	router.POST("/tick", p.tickHandler)

	return router
}

func noGrid(c *gin.Context) {
	log.Println("❌ Hex grid not built")
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Hex grid not built. Call /grid first"})
}

// GET /health - Health check endpoint
func (p *planner) healthHandler(c *gin.Context) {
	p.mu.RLock()
	hasGrid := p.graph != nil
	numNodes := 0
	if hasGrid {
		numNodes = p.graph.Len()
	}
	numUnits := p.units.Len()
	p.mu.RUnlock()

	status := "ready"
	if !hasGrid {
		status = "waiting for hex grid"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"hasGrid":  hasGrid,
		"numNodes": numNodes,
		"numUnits": numUnits,
	})
}

func gridExists(c *gin.Context) {
	log.Println("⚠️  Hex grid already exists")
	log.Println("   To rebuild, set force:true in request or restart the server")
	log.Println("========================================")
	c.JSON(http.StatusConflict, gin.H{
		"success": false,
		"error":   "Hex grid already exists",
		"message": "Grid is already built. Set 'force: true' to rebuild, or restart the server.",
	})
}

// POST /grid - Build the hex grid from a block or an explicit cell list
func (p *planner) buildGridHandler(c *gin.Context) {
	log.Println("========================================")
	log.Println("🗺️  Build hex grid request received")

	var req BuildGridRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if p.hasGraph() && !req.Force {
		gridExists(c)
		return
	}

	layout := p.cfg.Layout
	if req.Layout != "" {
		parsed, err := hexgrid.ParseLayout(req.Layout)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		layout = parsed
	}

	cells := req.Cells
	if len(cells) == 0 {
		// Set defaults
		if req.Cols == 0 {
			req.Cols = 10
		}
		if req.Rows == 0 {
			req.Rows = 10
		}
		cells = hexgrid.Rect(req.Cols, req.Rows)
	}

	startTime := time.Now()
	log.Printf("   Cells: %d\n", len(cells))
	log.Printf("   Layout: %s\n", layout)

	graph, err := hexgrid.Build(cells, layout)
	if err != nil {
		log.Printf("❌ Failed to build grid: %v\n", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// Another build may have landed while this one ran.
	if !p.installGraph(graph, req.Force) {
		gridExists(c)
		return
	}

	if req.SaveToFile {
		if err := p.saveSnapshot(); err != nil {
			log.Printf("⚠️  Failed to save grid: %v\n", err)
		}
	}

	log.Printf("✅ Hex grid built: %d nodes in %.2f ms\n", graph.Len(), float64(time.Since(startTime).Microseconds())/1000)
	log.Println("========================================")

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"numNodes": graph.Len(),
		"layout":   layout.String(),
	})
}

// GET /grid - Every cell with its walkable flag
func (p *planner) getGridHandler(c *gin.Context) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.graph == nil {
		noGrid(c)
		return
	}
	cells := make([]cellView, 0, p.graph.Len())
	offsets := make([]hexgrid.Offset, 0, p.graph.Len())
	for _, n := range p.graph.Nodes() {
		cells = append(cells, p.viewCell(n))
		offsets = append(offsets, n.Offset)
	}
	lo, hi, _ := hexgrid.Bounds(offsets)
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"layout":   p.graph.Layout().String(),
		"hexSize":  p.index.Size(),
		"min":      lo,
		"max":      hi,
		"cells":    cells,
		"walkable": p.graph.WalkableCount(),
	})
}

// GET /grid/lines - Neighbor links as line segments for visualization
func (p *planner) getGridLinesHandler(c *gin.Context) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.graph == nil {
		noGrid(c)
		return
	}
	segments := p.graph.Segments()
	lines := make([][]orb.Point, 0, len(segments))
	for _, s := range segments {
		lines = append(lines, []orb.Point{p.index.Center(s.From), p.index.Center(s.To)})
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"lines":    lines,
		"numNodes": p.graph.Len(),
		"numEdges": len(lines),
	})
}

// POST /walkable - Toggle a single cell
func (p *planner) walkableHandler(c *gin.Context) {
	var req WalkableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.graph == nil {
		noGrid(c)
		return
	}
	n, ok := p.resolve(req.Cell)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Cell not found"})
		return
	}
	n.SetWalkable(req.Walkable)
	c.JSON(http.StatusOK, gin.H{"success": true, "cell": p.viewCell(n)})
}

// POST /zones - Block every cell inside the GeoJSON polygons
func (p *planner) zonesHandler(c *gin.Context) {
	log.Println("========================================")
	log.Println("🚫 Blocked zones received")

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	zones, err := hexgrid.LoadZones(data)
	if err != nil {
		log.Printf("❌ Invalid GeoJSON: %v\n", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	blocked, err := p.applyZones(zones)
	if errors.Is(err, errNoGrid) {
		noGrid(c)
		return
	}
	log.Printf("   Zones: %d polygons, %d cells blocked\n", len(zones), blocked)
	log.Println("========================================")

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"numZones": len(zones),
		"blocked":  blocked,
	})
}

// POST /route - Compute a route between two cells
func (p *planner) routeHandler(c *gin.Context) {
	log.Println("========================================")
	log.Println("📍 Route request received")

	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.graph == nil {
		noGrid(c)
		return
	}

	start, okStart := p.resolve(req.Start)
	goal, okGoal := p.resolve(req.Goal)
	if !okStart || !okGoal {
		log.Println("❌ Start or goal is not a cell of the grid")
		c.JSON(http.StatusOK, RouteResponse{
			Path:    []cellView{},
			Success: false,
			Message: "Start or goal is not a cell of the grid",
		})
		log.Println("========================================")
		return
	}
	log.Printf("   Start: %v %v\n", start.Offset, start.Coord)
	log.Printf("   Goal:  %v %v\n", goal.Offset, goal.Coord)

	log.Println("🔍 Running A* on hex grid...")
	res, err := p.finder.Search(start, goal)
	if err != nil {
		log.Printf("❌ Search failed: %v\n", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	response := RouteResponse{
		Path:     make([]cellView, 0, len(res.Path)),
		Cost:     res.Cost,
		Expanded: res.Expanded,
		Success:  res.Found,
	}
	for _, n := range res.Path {
		response.Path = append(response.Path, p.viewCell(n))
	}

	if !res.Found {
		log.Println("❌ No path found on hex grid")
		response.Message = "No path found on hex grid"
	} else {
		log.Printf("✅ Path found with %d cells, cost %d (%d expanded)\n", len(res.Path), res.Cost, res.Expanded)
	}
	log.Println("========================================")

	c.JSON(http.StatusOK, response)
}

// POST /snapshot - Persist the current grid
func (p *planner) snapshotHandler(c *gin.Context) {
	if err := p.saveSnapshot(); err != nil {
		if errors.Is(err, errNoGrid) {
			noGrid(c)
			return
		}
		log.Printf("⚠️  Failed to save grid: %v\n", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "path": p.cfg.SnapshotPath})
}

// GET /units - All units
func (p *planner) listUnitsHandler(c *gin.Context) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	all := p.units.Units()
	views := make([]unitView, 0, len(all))
	for _, u := range all {
		views = append(views, viewUnit(u))
	}
	c.JSON(http.StatusOK, gin.H{"units": views})
}

// POST /units - Spawn a unit at a world point
func (p *planner) spawnUnitHandler(c *gin.Context) {
	var req SpawnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	faction, err := units.ParseFaction(req.Faction)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	u := p.units.Spawn(faction, req.Point, req.Range, req.Speed)
	log.Printf("🪖 Spawned %s unit %d at (%.2f, %.2f)\n", faction, u.ID, req.Point[0], req.Point[1])
	c.JSON(http.StatusOK, viewUnit(u))
}

func (p *planner) unitFromParam(c *gin.Context) (*units.Unit, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid unit id"})
		return nil, false
	}
	u, ok := p.units.Get(id)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Unit not found"})
		return nil, false
	}
	return u, true
}

// POST /units/:id/move - Route a unit from its current cell to a goal cell
func (p *planner) moveUnitHandler(c *gin.Context) {
	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.unitFromParam(c)
	if !ok {
		return
	}
	if p.graph == nil {
		noGrid(c)
		return
	}

	start, _ := p.index.Nearest(u.Position)
	goal, ok := p.resolve(req.Goal)
	if start == nil || !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Cell not found"})
		return
	}

	path, err := p.finder.Find(start, goal)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(path) == 0 {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "No path found on hex grid", "unit": viewUnit(u)})
		return
	}

	waypoints := make([]orb.Point, 0, len(path))
	for _, n := range path {
		waypoints = append(waypoints, p.index.Center(n))
	}
	u.Follow(waypoints)
	log.Printf("🚶 Unit %d moving through %d cells\n", u.ID, len(path))

	c.JSON(http.StatusOK, gin.H{"success": true, "waypoints": waypoints, "unit": viewUnit(u)})
}

// GET /units/:id/target - Acquire the nearest enemy in range now
func (p *planner) unitTargetHandler(c *gin.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.unitFromParam(c)
	if !ok {
		return
	}
	target := p.units.Acquire(u)
	if target == nil {
		c.JSON(http.StatusOK, gin.H{"found": false, "unit": viewUnit(u)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"found": true, "unit": viewUnit(u), "target": viewUnit(target)})
}

// POST /tick - Advance the unit simulation
func (p *planner) tickHandler(c *gin.Context) {
	var req TickRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DtMs <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "dtMs must be a positive integer"})
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	retargeted := p.units.Tick(time.Duration(req.DtMs) * time.Millisecond)
	ids := make([]int, 0, len(retargeted))
	for _, u := range retargeted {
		ids = append(ids, u.ID)
	}
	all := p.units.Units()
	views := make([]unitView, 0, len(all))
	for _, u := range all {
		views = append(views, viewUnit(u))
	}
	c.JSON(http.StatusOK, gin.H{"units": views, "retargeted": ids})
}
