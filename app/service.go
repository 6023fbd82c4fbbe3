package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/plugsmart/chargeplan/api/plan"
	"github.com/plugsmart/chargeplan/config"
	coremetrics "github.com/plugsmart/chargeplan/core/metrics"
	"github.com/plugsmart/chargeplan/core/planner"
	"github.com/plugsmart/chargeplan/infra/logger"
	"github.com/plugsmart/chargeplan/infra/metrics"
	"github.com/plugsmart/chargeplan/infra/mqtt"
)

// Service orchestrates the planner, the HTTP API and the optional sinks.
type Service struct {
	Planner   *planner.Planner
	server    *http.Server
	announcer *mqtt.PlanAnnouncer
	log       logger.Logger

	promEnabled bool
	promAddr    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	sched, err := cfg.Tariff.Schedule()
	if err != nil {
		return nil, fmt.Errorf("tariff schedule: %w", err)
	}
	opts := []planner.Option{
		planner.WithStep(time.Duration(cfg.Planner.TimelineStepMinutes) * time.Minute),
		planner.WithLogger(logger.New("planner")),
	}
	if len(cfg.Planner.SupportedChargerKW) > 0 {
		opts = append(opts, planner.WithSupportedChargerKW(cfg.Planner.SupportedChargerKW))
	}
	pl, err := planner.New(cfg.Battery, sched, opts...)
	if err != nil {
		return nil, fmt.Errorf("planner: %w", err)
	}

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.MetricsSink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	var announcer *mqtt.PlanAnnouncer
	if cfg.MQTT.Enabled {
		announcer, err = mqtt.NewPlanAnnouncer(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("plan announcer: %w", err)
		}
	}

	mux := http.NewServeMux()
	var ann plan.Announcer
	if announcer != nil {
		ann = announcer
	}
	mux.Handle("/api/plan", plan.NewHandler(pl, sink, ann, logger.New("api")))
	mux.Handle("/healthz", plan.HealthHandler())

	svc := &Service{
		Planner: pl,
		server: &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		announcer:   announcer,
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promAddr:    cfg.Metrics.PrometheusAddr,
	}
	return svc, nil
}

// Run starts the HTTP listeners and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(shutCtx)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.announcer != nil {
		s.announcer.Close()
	}
	return nil
}
