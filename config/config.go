// Package config loads and validates the service configuration from
// JSON or YAML files, with environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kianlev/gridflex/core/metrics"
	"github.com/kianlev/gridflex/core/planner"
	"github.com/kianlev/gridflex/infra/mqtt"
)

type Config struct {
	Grid      GridConfig      `json:"grid"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Planner   planner.Config  `json:"planner"`
	MQTT      mqtt.Config     `json:"mqtt"`
	Metrics   metrics.Config  `json:"metrics"`
	PassLog   PassLogConfig   `json:"passlog"`
	API       APIConfig       `json:"api"`
}

// GridConfig describes the fixed substation fleet created at startup.
type GridConfig struct {
	Substations []SubstationConfig `json:"substations"`
}

// SubstationConfig declares one substation.
type SubstationConfig struct {
	ID         string  `json:"id"`
	CapacityMW float64 `json:"capacity_mw"`
}

// Validate checks the grid layout.
func (c GridConfig) Validate() error {
	if len(c.Substations) == 0 {
		return fmt.Errorf("grid requires at least one substation")
	}
	seen := make(map[string]bool, len(c.Substations))
	for _, s := range c.Substations {
		if s.ID == "" {
			return fmt.Errorf("substation id is required")
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate substation id %q", s.ID)
		}
		seen[s.ID] = true
		if s.CapacityMW <= 0 {
			return fmt.Errorf("substation %q capacity must be positive", s.ID)
		}
	}
	return nil
}

// SchedulerConfig defines pass cadence and the maintenance window.
type SchedulerConfig struct {
	PassIntervalSeconds      int `json:"pass_interval_seconds"`
	MaintenanceWindowSeconds int `json:"maintenance_window_seconds"`
}

// SetDefaults applies sane defaults.
func (c *SchedulerConfig) SetDefaults() {
	if c.PassIntervalSeconds == 0 {
		c.PassIntervalSeconds = 60
	}
	if c.MaintenanceWindowSeconds == 0 {
		c.MaintenanceWindowSeconds = 3600
	}
}

// Validate checks mandatory fields.
func (c SchedulerConfig) Validate() error {
	if c.PassIntervalSeconds < 0 {
		return fmt.Errorf("pass_interval_seconds must be non-negative")
	}
	if c.MaintenanceWindowSeconds <= 0 {
		return fmt.Errorf("maintenance_window_seconds must be positive")
	}
	return nil
}

// APIConfig configures the HTTP status endpoint. An empty address
// disables the server.
type APIConfig struct {
	Addr string `json:"addr"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("GF_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "gf_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Scheduler.SetDefaults()
	cfg.Planner.SetDefaults()
	cfg.PassLog.SetDefaults()
	if err := cfg.Grid.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Scheduler.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.PassLog.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
