package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"hex-planner/hexgrid"
)

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("PORT", "")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	t.Setenv("PORT", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "addr: \":9000\"\nhexSize: 2.5\nlayout: even-r\nsnapshotPath: grid.json.br\nretargetEvery: 250ms\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":9000" || cfg.HexSize != 2.5 || cfg.Layout != hexgrid.EvenR {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.RetargetEvery != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %v", cfg.RetargetEvery)
	}
	if cfg.GRPCAddr != ":9090" {
		t.Fatalf("unset keys should keep defaults, got %q", cfg.GRPCAddr)
	}
}

func TestLoadConfigPortOverride(t *testing.T) {
	t.Setenv("PORT", "7000")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":7000" {
		t.Fatalf("expected :7000, got %q", cfg.Addr)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("layout: diagonal\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected an error for an unknown layout")
	}
}
