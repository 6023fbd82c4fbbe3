package metrics

import "time"

// PlanEvent captures one computed charging plan for observability purposes.
type PlanEvent struct {
	PlanID         string
	CheapMode      bool
	MeetsDeparture bool
	NightTariff    bool
	HoursNeeded    float64
	CostNow        float64
	CostOptimized  float64
	Savings        float64
	Elapsed        time.Duration // plan computation latency
	Time           time.Time
}

// MetricsSink records plan events.
type MetricsSink interface {
	RecordPlan(ev PlanEvent) error
}

// RequestErrorRecorder is implemented by sinks able to count rejected requests.
type RequestErrorRecorder interface {
	RecordRequestError(reason string) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordPlan(PlanEvent) error      { return nil }
func (NopSink) RecordRequestError(string) error { return nil }

// Config defines settings for metrics sinks.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusAddr    string `json:"prometheus_addr"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.PrometheusAddr == "" {
		c.PrometheusAddr = ":9090"
	}
}
