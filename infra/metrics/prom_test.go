package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/plugsmart/chargeplan/core/metrics"
)

func TestPromSink_RecordPlan(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	ev := coremetrics.PlanEvent{
		PlanID:         "p1",
		CheapMode:      true,
		MeetsDeparture: true,
		NightTariff:    true,
		Savings:        1.4,
		Elapsed:        3 * time.Millisecond,
		Time:           time.Now(),
	}
	if err := sink.RecordPlan(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}

	expected := `
# HELP chargeplan_plans_total Total number of computed charging plans
# TYPE chargeplan_plans_total counter
chargeplan_plans_total{cheap_mode="true",meets_departure="true",night_tariff="true"} 1
`
	if err := testutil.CollectAndCompare(sink.plans, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if c := testutil.CollectAndCount(sink.latency); c == 0 {
		t.Errorf("latency not recorded")
	}
	if c := testutil.CollectAndCount(sink.savings); c == 0 {
		t.Errorf("savings not recorded")
	}
}

func TestPromSink_RecordRequestError(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	if err := sink.RecordRequestError("invalid_parameter"); err != nil {
		t.Fatalf("record error: %v", err)
	}
	expected := `
# HELP chargeplan_request_errors_total Total number of rejected plan requests
# TYPE chargeplan_request_errors_total counter
chargeplan_request_errors_total{reason="invalid_parameter"} 1
`
	if err := testutil.CollectAndCompare(sink.errors, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
}

func TestPromSink_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("second registration must reuse collectors: %v", err)
	}
}
