package config

import (
	"time"

	"github.com/silversurf/auditor/internal/audit/attempt"
	"github.com/silversurf/auditor/internal/audit/orchestrate"
	"github.com/silversurf/auditor/internal/audit/preflight"
	"github.com/silversurf/auditor/internal/audit/strategy"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server     ServerConfig        `yaml:"server"`
	Output     OutputConfig        `yaml:"output"`
	Retry      orchestrate.Config  `yaml:"retry"`
	Attempt    attempt.Config      `yaml:"attempt"`
	Preflight  preflight.Config    `yaml:"preflight"`
	Strategies []strategy.Override `yaml:"strategies"`
	Logging    LoggingConfig       `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// OutputConfig holds artifact locations and retention.
type OutputConfig struct {
	Root        string        `yaml:"root"`
	SnapshotDir string        `yaml:"snapshot_dir"`
	Retention   time.Duration `yaml:"retention"` // 0 = keep forever
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}
