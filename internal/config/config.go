// Package config loads the loom.json server configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "loom.json"

	// DefaultAddr is the default listen address for the serve command.
	DefaultAddr = "localhost:3000"

	// DefaultSliceMs is the default work-loop slice budget in milliseconds.
	DefaultSliceMs = 4
)

// Config represents the complete loom.json configuration.
type Config struct {
	// Name is the application name, used in snapshot keys and page titles.
	Name string `json:"name,omitempty"`

	// Addr is the listen address for the serve command.
	Addr string `json:"addr,omitempty"`

	// SliceMs is the work-loop time slice per scheduler callback, in
	// milliseconds.
	SliceMs int `json:"sliceMs,omitempty"`

	// Metrics enables the Prometheus /metrics endpoint.
	Metrics bool `json:"metrics,omitempty"`

	// Snapshot configures snapshot persistence.
	Snapshot SnapshotConfig `json:"snapshot,omitempty"`
}

// SnapshotConfig contains snapshot store settings.
type SnapshotConfig struct {
	// Bucket is the S3 bucket for snapshots. Empty disables S3 persistence.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is the S3 key prefix.
	Prefix string `json:"prefix,omitempty"`

	// Region is the AWS region for the bucket.
	Region string `json:"region,omitempty"`
}

// New creates a config with defaults.
func New() *Config {
	return &Config{
		Name:    "loom",
		Addr:    DefaultAddr,
		SliceMs: DefaultSliceMs,
		Metrics: true,
	}
}

// Slice returns the configured work-loop slice as a duration.
func (c *Config) Slice() time.Duration {
	if c.SliceMs <= 0 {
		return DefaultSliceMs * time.Millisecond
	}
	return time.Duration(c.SliceMs) * time.Millisecond
}

// Load reads the config from path. A missing file yields the defaults; a
// malformed file is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigFileName
	}
	cfg := New()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	return cfg, nil
}

// Save writes the config to path as indented JSON.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigFileName
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
