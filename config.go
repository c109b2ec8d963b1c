package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"hex-planner/hexgrid"
)

// Config holds the service settings read from config.yaml
type Config struct {
	Addr          string         `yaml:"addr"`
	GRPCAddr      string         `yaml:"grpcAddr"`
	HexSize       float64        `yaml:"hexSize"`       // outer radius of a cell in world units
	Layout        hexgrid.Layout `yaml:"layout"`        // default layout for POST /grid
	SnapshotPath  string         `yaml:"snapshotPath"`  // ".br" suffix enables brotli
	ZonesPath     string         `yaml:"zonesPath"`     // optional GeoJSON of blocked zones
	RetargetEvery time.Duration  `yaml:"retargetEvery"` // unit target reacquisition period
	AllowOrigin   string         `yaml:"allowOrigin"`
}

// DefaultConfig returns the settings used when no config file is present
func DefaultConfig() Config {
	return Config{
		Addr:          ":8080",
		GRPCAddr:      ":9090",
		HexSize:       1,
		Layout:        hexgrid.OddQ,
		SnapshotPath:  "hex_grid.json",
		RetargetEvery: time.Second,
		AllowOrigin:   "*",
	}
}

// LoadConfig reads path over the defaults. A missing file is not an error.
// The PORT environment variable overrides the HTTP address.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Addr = ":" + port
	}

	// Set defaults
	if cfg.HexSize <= 0 {
		cfg.HexSize = 1
	}
	if cfg.RetargetEvery <= 0 {
		cfg.RetargetEvery = time.Second
	}
	return cfg, nil
}
