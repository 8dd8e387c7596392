/* *****************************************************************************
 * Nehonix Minerd — Miner Fleet Supervisor
 * (see internal/supervisor/supervisor.go for the full license header)
 ***************************************************************************** */

// Package config loads and hot-reloads the YAML fleet configuration: the
// HTTP API surface, scheduling policy, logging, and the desired set of
// miner definitions consumed by the supervisor's Synchronize.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Nehonix-Team/minerd/internal/miner"
)

// defaults applied to fields left unset in the YAML document.
const (
	defaultTickIntervalSec  = 2
	defaultLogDir           = "./logs"
	defaultEventCapacity    = 5000
	defaultListenAddr       = ":8089"
	defaultAutoswitchSecMin = 30
)

// APIConfig configures the HTTP control-plane listener and auth.
type APIConfig struct {
	ListenAddr           string `yaml:"listen_addr"`
	APIKey               string `yaml:"api_key"`
	RateLimitPerSec      float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst       int     `yaml:"rate_limit_burst"`
}

// SchedulingConfig configures the autoswitch round-robin policy.
type SchedulingConfig struct {
	Autoswitch            bool `yaml:"autoswitch"`
	AutoswitchIntervalSec int  `yaml:"autoswitch_interval_sec"`
}

// LoggingConfig configures where worker stdout/stderr logs and the in-memory
// event log live.
type LoggingConfig struct {
	Dir           string `yaml:"dir"`
	EventCapacity int    `yaml:"event_capacity"`
}

// Config is the full YAML document shape.
type Config struct {
	TickIntervalSec int               `yaml:"tick_interval_sec"`
	API             APIConfig         `yaml:"api"`
	Scheduling      SchedulingConfig  `yaml:"scheduling"`
	Logging         LoggingConfig     `yaml:"logging"`
	Miners          []miner.Definition `yaml:"miners"`
}

// Load reads and parses the YAML config file at path, applying defaults for
// any omitted field.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.TickIntervalSec <= 0 {
		cfg.TickIntervalSec = defaultTickIntervalSec
	}
	if cfg.Logging.Dir == "" {
		cfg.Logging.Dir = defaultLogDir
	}
	if cfg.Logging.EventCapacity <= 0 {
		cfg.Logging.EventCapacity = defaultEventCapacity
	}
	if cfg.API.ListenAddr == "" {
		cfg.API.ListenAddr = defaultListenAddr
	}
	if cfg.API.RateLimitPerSec <= 0 {
		cfg.API.RateLimitPerSec = 2
	}
	if cfg.API.RateLimitBurst <= 0 {
		cfg.API.RateLimitBurst = 120
	}
	if cfg.Scheduling.AutoswitchIntervalSec < defaultAutoswitchSecMin {
		cfg.Scheduling.AutoswitchIntervalSec = defaultAutoswitchSecMin
	}
}

// Validate checks invariants Load's defaulting cannot repair: duplicate
// miner ids and missing miner ids.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Miners))
	for _, def := range c.Miners {
		if def.ID == "" {
			return fmt.Errorf("config: a miner definition is missing an id")
		}
		if seen[def.ID] {
			return fmt.Errorf("config: duplicate miner id %q", def.ID)
		}
		seen[def.ID] = true
	}
	return nil
}

// DefinitionsByID indexes Miners by id, the shape Synchronize expects.
func (c *Config) DefinitionsByID() map[string]miner.Definition {
	out := make(map[string]miner.Definition, len(c.Miners))
	for _, def := range c.Miners {
		out[def.ID] = def
	}
	return out
}
