package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/plugsmart/chargeplan/core/metrics"
)

// PromSink records plan events in Prometheus metrics.
type PromSink struct {
	plans   *prometheus.CounterVec
	errors  *prometheus.CounterVec
	latency prometheus.Histogram
	savings prometheus.Histogram
}

// NewPromSink registers plan metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusAddr.
func NewPromSink(cfg coremetrics.Config) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	plans := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chargeplan_plans_total",
		Help: "Total number of computed charging plans",
	}, []string{"cheap_mode", "meets_departure", "night_tariff"})
	errors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chargeplan_request_errors_total",
		Help: "Total number of rejected plan requests",
	}, []string{"reason"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "chargeplan_plan_duration_seconds",
		Help:    "Time spent computing a charging plan",
		Buckets: prometheus.DefBuckets,
	})
	savings := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "chargeplan_plan_savings",
		Help:    "Projected savings per plan in currency units",
		Buckets: []float64{0, 0.5, 1, 2, 5, 10, 20},
	})

	if err := reg.Register(plans); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			plans = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(errors); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			errors = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(latency); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			latency = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(savings); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			savings = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}

	return &PromSink{plans: plans, errors: errors, latency: latency, savings: savings}, nil
}

// RecordPlan increments the plan counter and observes latency and savings.
func (s *PromSink) RecordPlan(ev coremetrics.PlanEvent) error {
	s.plans.WithLabelValues(
		strconv.FormatBool(ev.CheapMode),
		strconv.FormatBool(ev.MeetsDeparture),
		strconv.FormatBool(ev.NightTariff),
	).Inc()
	s.latency.Observe(ev.Elapsed.Seconds())
	s.savings.Observe(ev.Savings)
	return nil
}

// RecordRequestError counts a rejected request by reason.
func (s *PromSink) RecordRequestError(reason string) error {
	s.errors.WithLabelValues(reason).Inc()
	return nil
}
