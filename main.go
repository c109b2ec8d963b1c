package main

import (
	"flag"
	"log"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	log.Println("========================================")
	log.Println("🚀 Hex Grid Planner Server")
	log.Println("========================================")
	log.Println("Checking for existing hex grid file...")

	grpcServer, hs := newHealthServer()
	p := newPlanner(cfg, hs)

	if err := p.loadSnapshot(); err != nil {
		log.Println("ℹ️  No existing grid found (this is normal on first run)")
		log.Println("   Call POST /grid to create a new grid")
	}

	if cfg.ZonesPath != "" {
		if zones, blocked, err := p.loadZones(cfg.ZonesPath); err != nil {
			log.Printf("⚠️  Zones not applied: %v\n", err)
		} else {
			log.Printf("🚫 Applied %d zones, %d cells blocked\n", zones, blocked)
		}
	}
	log.Println("")

	go serveHealth(grpcServer, cfg.GRPCAddr)

	router := newRouter(p)

	log.Printf("Server starting on %s\n", cfg.Addr)
	log.Println("")
	log.Println("Endpoints:")
	log.Println("  POST /grid               - Build hex grid (cols/rows or explicit cells)")
	log.Println("  GET  /grid               - Get all cells")
	log.Println("  GET  /grid/lines         - Get neighbor links for visualization")
	log.Println("  POST /walkable           - Toggle a cell")
	log.Println("  POST /zones              - Block cells inside GeoJSON polygons")
	log.Println("  POST /route              - Compute route between two cells")
	log.Println("  POST /snapshot           - Save grid to disk")
	log.Println("  GET  /units              - List units")
	log.Println("  POST /units              - Spawn unit")
	log.Println("  POST /units/:id/move     - Route unit to a cell")
	log.Println("  GET  /units/:id/target   - Acquire nearest enemy in range")
	log.Println("  POST /tick               - Advance unit simulation")
	log.Println("  GET  /health             - Check server status")
	log.Println("")
	log.Printf("CORS enabled for origin %q\n", cfg.AllowOrigin)
	log.Println("========================================")
	log.Println("")

	if err := router.Run(cfg.Addr); err != nil {
		log.Fatal(err)
	}
}
