package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apigrid "github.com/kianlev/gridflex/api/grid"
	"github.com/kianlev/gridflex/config"
	coregrid "github.com/kianlev/gridflex/core/grid"
	"github.com/kianlev/gridflex/core/grid/logging"
	coremetrics "github.com/kianlev/gridflex/core/metrics"
	"github.com/kianlev/gridflex/infra/logger"
	"github.com/kianlev/gridflex/infra/metrics"
	"github.com/kianlev/gridflex/infra/mqtt"
	"github.com/kianlev/gridflex/internal/eventbus"
)

// Service orchestrates the grid scheduler, demand ingestion and
// observability sinks.
type Service struct {
	Scheduler *coregrid.Scheduler

	connector *mqtt.Connector
	store     logging.PassStore
	sink      coremetrics.MetricsSink
	bus       eventbus.EventBus
	log       logger.Logger
	interval  time.Duration

	promEnabled bool
	promPort    string
	apiAddr     string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

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

	bus := eventbus.New()
	window := time.Duration(cfg.Scheduler.MaintenanceWindowSeconds) * time.Second
	sched := coregrid.New(window, logger.New("scheduler"), bus)
	for _, sub := range cfg.Grid.Substations {
		if err := sched.AddSubstation(sub.ID, sub.CapacityMW); err != nil {
			return nil, fmt.Errorf("substation %s: %w", sub.ID, err)
		}
	}

	store, err := logging.NewStore(cfg.PassLog.Backend, cfg.PassLog.Path)
	if err != nil {
		return nil, fmt.Errorf("pass store: %w", err)
	}

	var connector *mqtt.Connector
	if cfg.MQTT.Broker != "" {
		connector, err = mqtt.NewConnector(cfg.MQTT, sched)
		if err != nil {
			return nil, fmt.Errorf("mqtt connector: %w", err)
		}
	}

	return &Service{
		Scheduler:   sched,
		connector:   connector,
		store:       store,
		sink:        sink,
		bus:         bus,
		log:         logg,
		interval:    time.Duration(cfg.Scheduler.PassIntervalSeconds) * time.Second,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
		apiAddr:     cfg.API.Addr,
	}, nil
}

// Run starts the periodic scheduling loop and blocks until the context
// is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.apiAddr != "" {
		go func() {
			if err := s.serveAPI(ctx); err != nil {
				s.log.Errorf("api server: %v", err)
			}
		}()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			s.runPass(ctx, now)
		}
	}
}

// Store exposes the pass log store, mainly for the API layer and tests.
func (s *Service) Store() logging.PassStore { return s.store }

// RunPass executes a single scheduling pass and records its outcome.
func (s *Service) RunPass(ctx context.Context, now time.Time) coregrid.PassResult {
	return s.runPass(ctx, now)
}

func (s *Service) runPass(ctx context.Context, now time.Time) coregrid.PassResult {
	res := s.Scheduler.RunSchedulingPass(now)
	s.record(ctx, res)
	return res
}

func (s *Service) record(ctx context.Context, res coregrid.PassResult) {
	outcomes := make([]coremetrics.RequestOutcome, 0, len(res.Allocated)+len(res.Shed))
	for _, a := range res.Allocated {
		outcomes = append(outcomes, coremetrics.RequestOutcome{
			RequestID:    a.Request.ID,
			ConsumerID:   a.Request.ConsumerID,
			Class:        a.Request.Class,
			MegaWatts:    a.Request.MegaWatts,
			State:        a.Request.State,
			SubstationID: a.SubstationID,
			Time:         res.Time,
		})
	}
	for _, r := range res.Shed {
		outcomes = append(outcomes, coremetrics.RequestOutcome{
			RequestID:  r.ID,
			ConsumerID: r.ConsumerID,
			Class:      r.Class,
			MegaWatts:  r.MegaWatts,
			State:      r.State,
			Time:       res.Time,
		})
	}
	if len(outcomes) > 0 {
		if err := s.sink.RecordRequestOutcomes(outcomes); err != nil {
			s.log.Errorf("record outcomes: %v", err)
		}
	}
	if rec, ok := s.sink.(coremetrics.PassRecorder); ok {
		summary := coremetrics.PassSummary{
			Time:        res.Time,
			Processed:   len(res.Allocated) + len(res.Shed),
			Allocated:   len(res.Allocated),
			Shed:        len(res.Shed),
			AllocatedMW: res.AllocatedMW(),
			ShedMW:      res.ShedMW(),
			Duration:    res.Duration,
		}
		if err := rec.RecordPass(summary); err != nil {
			s.log.Errorf("record pass: %v", err)
		}
	}
	if rec, ok := s.sink.(coremetrics.SubstationRecorder); ok {
		subs := s.Scheduler.Substations()
		states := make([]coremetrics.SubstationState, 0, len(subs))
		for _, sub := range subs {
			states = append(states, coremetrics.SubstationState{
				SubstationID: sub.ID,
				UsedMW:       sub.UsedMW,
				CapacityMW:   sub.CapacityMW,
				Online:       sub.Online,
				Time:         res.Time,
			})
		}
		if err := rec.RecordSubstationStates(states); err != nil {
			s.log.Errorf("record substations: %v", err)
		}
	}
	if err := s.store.Append(ctx, logging.NewPassRecord(res)); err != nil {
		s.log.Errorf("append pass record: %v", err)
	}
	if s.connector != nil {
		err := s.connector.PublishPass(res.Time, len(res.Allocated), len(res.Shed),
			res.AllocatedMW(), res.ShedMW(), res.Offline)
		if err != nil {
			s.log.Errorf("publish pass: %v", err)
		}
	}
}

func (s *Service) serveAPI(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/api/grid/status", apigrid.NewStatusHandler(s.Scheduler))
	mux.Handle("/api/grid/passes", apigrid.NewPassLogHandler(s.store))
	srv := &http.Server{Addr: s.apiAddr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.connector != nil {
		s.connector.Close()
	}
	s.bus.Close()
	return s.store.Close()
}
