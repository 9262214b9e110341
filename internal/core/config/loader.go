package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/silversurf/auditor/internal/audit/attempt"
	"github.com/silversurf/auditor/internal/audit/orchestrate"
	"github.com/silversurf/auditor/internal/audit/preflight"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns the configuration used when no file is supplied.
func Default() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Output.Root == "" {
		cfg.Output.Root = "reports"
	}
	if cfg.Retry.AttemptsPerStrategy == 0 {
		cfg.Retry = orchestrate.DefaultConfig()
	}
	if cfg.Attempt.MinContentBytes == 0 {
		def := attempt.DefaultConfig()
		def.Headless = cfg.Attempt.Headless || def.Headless
		cfg.Attempt = def
	}
	if cfg.Preflight.NavigationTimeout == 0 {
		disabled := cfg.Preflight.Disabled
		cfg.Preflight = preflight.DefaultConfig()
		cfg.Preflight.Disabled = disabled
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
