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

	"github.com/plugsmart/chargeplan/core/metrics"
	"github.com/plugsmart/chargeplan/core/planner"
	"github.com/plugsmart/chargeplan/infra/mqtt"
)

type Config struct {
	Server  ServerConfig          `json:"server"`
	Battery planner.BatteryConfig `json:"battery"`
	Tariff  TariffConfig          `json:"tariff"`
	Planner PlannerConfig         `json:"planner"`
	Metrics metrics.Config        `json:"metrics"`
	MQTT    mqtt.Config           `json:"mqtt"`
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
	if err := k.Load(env.Provider("CP_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "cp_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Server.SetDefaults()
	cfg.Tariff.SetDefaults()
	cfg.Planner.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.MQTT.SetDefaults()
	if cfg.Battery == (planner.BatteryConfig{}) {
		cfg.Battery = planner.DefaultBattery
	}
	if err := cfg.Battery.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Tariff.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Planner.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.MQTT.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ServerConfig defines the HTTP API listener.
type ServerConfig struct {
	Addr string `json:"addr"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

// PlannerConfig holds planner tunables not tied to the battery model.
type PlannerConfig struct {
	TimelineStepMinutes int       `json:"timeline_step_minutes"`
	SupportedChargerKW  []float64 `json:"supported_charger_kw"`
}

// SetDefaults applies sane defaults.
func (c *PlannerConfig) SetDefaults() {
	if c.TimelineStepMinutes == 0 {
		c.TimelineStepMinutes = 15
	}
}

// Validate checks the planner tunables.
func (c PlannerConfig) Validate() error {
	if c.TimelineStepMinutes <= 0 {
		return fmt.Errorf("timeline_step_minutes must be positive, got %d", c.TimelineStepMinutes)
	}
	for _, kw := range c.SupportedChargerKW {
		if kw <= 0 {
			return fmt.Errorf("supported charger power must be positive, got %.1f", kw)
		}
	}
	return nil
}
