package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `server:
  addr: ":8888"
battery:
  capacity_kwh: 64
  efficiency: 0.92
tariff:
  standard_rate: 0.38
  weekend_rate: 0.30
  windows:
    - start: "23:00"
      end: "06:00"
      rate: 0.18
planner:
  timeline_step_minutes: 30
  supported_charger_kw: [7, 11]
metrics:
  prometheus_enabled: true
  prometheus_addr: ":9100"
mqtt:
  enabled: true
  broker: "tcp://localhost:1883"
  topic: "home/chargeplan"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"addr", cfg.Server.Addr, ":8888"},
		{"capacity", cfg.Battery.CapacityKWh, 64.0},
		{"efficiency", cfg.Battery.Efficiency, 0.92},
		{"standard rate", cfg.Tariff.StandardRate, 0.38},
		{"weekend rate", cfg.Tariff.WeekendRate, 0.30},
		{"window start", cfg.Tariff.Windows[0].Start, "23:00"},
		{"window rate", cfg.Tariff.Windows[0].Rate, 0.18},
		{"step", cfg.Planner.TimelineStepMinutes, 30},
		{"prom addr", cfg.Metrics.PrometheusAddr, ":9100"},
		{"mqtt broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"mqtt topic", cfg.MQTT.Topic, "home/chargeplan"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, c.got, c.want)
		}
	}
	if len(cfg.Planner.SupportedChargerKW) != 2 {
		t.Errorf("supported charger set: %v", cfg.Planner.SupportedChargerKW)
	}
	if _, err := cfg.Tariff.Schedule(); err != nil {
		t.Errorf("schedule build: %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", `server: {}`))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr default: %q", cfg.Server.Addr)
	}
	if cfg.Battery.CapacityKWh != 50 || cfg.Battery.Efficiency != 0.9 {
		t.Errorf("battery default: %+v", cfg.Battery)
	}
	if cfg.Tariff.StandardRate != 0.40 {
		t.Errorf("standard rate default: %v", cfg.Tariff.StandardRate)
	}
	if len(cfg.Tariff.Windows) != 1 || cfg.Tariff.Windows[0].Start != "22:00" || cfg.Tariff.Windows[0].End != "02:00" {
		t.Errorf("window default: %+v", cfg.Tariff.Windows)
	}
	if cfg.Planner.TimelineStepMinutes != 15 {
		t.Errorf("step default: %d", cfg.Planner.TimelineStepMinutes)
	}
	if cfg.Metrics.PrometheusAddr != ":9090" {
		t.Errorf("prom addr default: %q", cfg.Metrics.PrometheusAddr)
	}
	if cfg.MQTT.ClientID != "chargeplan" || cfg.MQTT.Topic != "chargeplan/plans" {
		t.Errorf("mqtt defaults: %+v", cfg.MQTT)
	}
}

func TestLoadJSON(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.json", `{"battery":{"capacity_kwh":40,"efficiency":0.85}}`))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Battery.CapacityKWh != 40 || cfg.Battery.Efficiency != 0.85 {
		t.Errorf("battery: %+v", cfg.Battery)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CP_SERVER__ADDR", ":7070")
	cfg, err := Load(writeConfig(t, "config.yaml", `server:
  addr: ":8888"
`))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("env override ignored: %q", cfg.Server.Addr)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		file string
		data string
	}{
		{"unsupported extension", "config.toml", `addr = ":8080"`},
		{"bad efficiency", "config.yaml", "battery:\n  capacity_kwh: 50\n  efficiency: 1.5\n"},
		{"bad window clock", "config.yaml", "tariff:\n  windows:\n    - start: \"25:00\"\n      end: \"02:00\"\n      rate: 0.2\n"},
		{"overlapping windows", "config.yaml", "tariff:\n  windows:\n    - start: \"22:00\"\n      end: \"02:00\"\n      rate: 0.2\n    - start: \"01:00\"\n      end: \"05:00\"\n      rate: 0.1\n"},
		{"zero step", "config.yaml", "planner:\n  timeline_step_minutes: -5\n"},
		{"mqtt without broker", "config.yaml", "mqtt:\n  enabled: true\n"},
	}
	for _, tc := range cases {
		if _, err := Load(writeConfig(t, tc.file, tc.data)); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}
