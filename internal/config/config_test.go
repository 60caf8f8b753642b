package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), ConfigFileName))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != DefaultAddr {
		t.Errorf("Addr = %q, want %q", cfg.Addr, DefaultAddr)
	}
	if cfg.SliceMs != DefaultSliceMs {
		t.Errorf("SliceMs = %d, want %d", cfg.SliceMs, DefaultSliceMs)
	}
	if !cfg.Metrics {
		t.Error("Metrics should default to true")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)

	cfg := New()
	cfg.Name = "demo"
	cfg.Addr = "0.0.0.0:8080"
	cfg.SliceMs = 8
	cfg.Snapshot.Bucket = "demo-snapshots"
	cfg.Snapshot.Prefix = "prod"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Name != "demo" || got.Addr != "0.0.0.0:8080" || got.SliceMs != 8 {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Snapshot.Bucket != "demo-snapshots" || got.Snapshot.Prefix != "prod" {
		t.Errorf("snapshot config mismatch: %+v", got.Snapshot)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error for malformed file")
	}
}

func TestSliceDuration(t *testing.T) {
	cfg := &Config{SliceMs: 10}
	if got := cfg.Slice(); got != 10*time.Millisecond {
		t.Errorf("Slice() = %v, want 10ms", got)
	}
	zero := &Config{}
	if got := zero.Slice(); got != DefaultSliceMs*time.Millisecond {
		t.Errorf("Slice() with zero = %v, want default", got)
	}
}
