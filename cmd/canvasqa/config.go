package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the canvasqa service configuration.
type Config struct {
	Listen   string `yaml:"listen"`    // plugin channel address
	DB       string `yaml:"db"`        // audit database path, empty disables audit
	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	// Snapshot optionally preloads a document JSON file so read commands
	// work before (or without) a plugin connection.
	Snapshot string `yaml:"snapshot"`

	Batch struct {
		ChunkSize  int           `yaml:"chunk_size"`
		ChunkPause time.Duration `yaml:"chunk_pause"`
	} `yaml:"batch"`

	QA struct {
		RequiredTypeface string `yaml:"required_typeface"`
	} `yaml:"qa"`

	Highlight struct {
		RevertDelay time.Duration `yaml:"revert_delay"`
	} `yaml:"highlight"`

	Audit struct {
		RetentionDays       int `yaml:"retention_days"`
		ReportRetentionDays int `yaml:"report_retention_days"`
	} `yaml:"audit"`
}

// loadConfig reads a YAML configuration file, or returns defaults when path
// is empty.
func loadConfig(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8787"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Batch.ChunkSize <= 0 {
		c.Batch.ChunkSize = 10
	}
	if c.Batch.ChunkPause <= 0 {
		c.Batch.ChunkPause = 50 * time.Millisecond
	}
	if c.Highlight.RevertDelay <= 0 {
		c.Highlight.RevertDelay = 3 * time.Second
	}
	if c.Audit.RetentionDays <= 0 {
		c.Audit.RetentionDays = 30
	}
	if c.Audit.ReportRetentionDays <= 0 {
		c.Audit.ReportRetentionDays = 90
	}
}
