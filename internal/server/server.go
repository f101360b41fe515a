package server

import (
	"context"
	"log/slog"
	"net/http"

	"game-trigger-service/internal/config"
	"game-trigger-service/internal/consensus"
	"game-trigger-service/internal/dispatch"
	"game-trigger-service/internal/evidence"
	"game-trigger-service/internal/fetch"
	httpserver "game-trigger-service/internal/http"
	"game-trigger-service/internal/logging"
	"game-trigger-service/internal/metrics"
	"game-trigger-service/internal/monitor"
	"game-trigger-service/internal/providers"
	"game-trigger-service/internal/store"
	"game-trigger-service/internal/validation"
)

var metricsSetup = metrics.Setup

// Server owns the wired component graph and the process lifecycle.
type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	store         *store.Memory
	fetcher       *fetch.Fetcher
	monitor       *monitor.Monitor
	httpServer    httpServer
	metricsServer httpServer
	metricsStop   func(context.Context) error
}

// New constructs a server with default provider and monitor wiring.
func New(cfg config.Config, logger *slog.Logger) *Server {
	return newServerWithSources(cfg, logger, buildSources(cfg.Providers), nil)
}

func newServerWithSources(cfg config.Config, logger *slog.Logger, sources []fetch.Source, recorder *metrics.Recorder) *Server {
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, recorder)

	evidenceStore := evidence.NewFSStore(cfg.Evidence.BasePath)
	validators := providers.NewValidatorCache(0, 0)
	memory := store.NewMemory()

	fetcher := fetch.New(sources, evidenceStore, validators, logger, recorder)
	engine := consensus.New(fetcher, logger, recorder)

	checkpoints := monitor.NewFSCheckpointStore(cfg.Monitor.CheckpointPath)
	mon := monitor.New(engine, memory, evidenceStore, checkpoints, logger, recorder, monitor.Config{
		PollInterval:       cfg.Monitor.PollInterval,
		CheckpointInterval: cfg.Monitor.CheckpointInterval,
		ReplayCapacity:     cfg.Monitor.ReplayCapacity,
		FetchTimeout:       cfg.Monitor.FetchTimeout,
	})

	validator := validation.New(engine, memory, evidenceStore, logger, recorder)
	dispatcher := dispatch.NewLogDispatcher(logger)
	mon.RegisterListener(validation.NewTriggerListener(validator, dispatcher, logger))

	handler := httpserver.NewHandler(mon, fetcher, logger)
	router := httpserver.NewRouter(handler, logger, recorder)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		store:         memory,
		fetcher:       fetcher,
		monitor:       mon,
		httpServer:    netHTTPServer{srv: srv},
		metricsServer: metricsSrv,
		metricsStop:   metricsShutdown,
	}
}

// Run starts the monitor and HTTP servers, then waits for context
// cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.loadCatalog(ctx)

	s.startMetrics()
	s.startServer(stop)
	s.monitor.Start(ctx)

	<-ctx.Done()
	logging.Info(s.logger, "shutdown signal received")

	s.gracefulShutdown()
}

// loadCatalog seeds teams, promotions, and game links from the catalog file
// and puts every linked game under monitoring.
func (s *Server) loadCatalog(ctx context.Context) {
	if s.cfg.CatalogPath == "" {
		return
	}
	catalog, err := s.store.LoadCatalog(s.cfg.CatalogPath)
	if err != nil {
		logging.Warn(s.logger, "catalog load failed, starting empty", "error", err,
			slog.String(logging.FieldPath, s.cfg.CatalogPath))
		return
	}
	for _, game := range catalog.Games {
		s.monitor.MonitorGame(ctx, game.GameID)
	}
	logging.Info(s.logger, "catalog loaded",
		slog.Int(logging.FieldCount, len(catalog.Games)),
	)
}

func (s *Server) startServer(stop context.CancelFunc) {
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

// gracefulShutdown stops the ops server first, then the monitor (which
// writes its final checkpoint), then flushes telemetry.
func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error(s.logger, "http server shutdown failed", err)
	}

	if err := s.monitor.Stop(shutdownCtx); err != nil {
		logging.Error(s.logger, "monitor stop failed", err)
	}

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics shutdown failed", "error", err)
		}
	}
	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics server shutdown failed", "error", err)
		}
	}

	logging.Info(s.logger, "shutdown complete")
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "error", err)
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = netHTTPServer{
			srv: &http.Server{
				Addr:    ":" + recCfg.Port,
				Handler: handler,
			},
		}
	}
	return rec, metricsSrv, shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		logging.Info(logger, "starting "+name+" server", slog.String("addr", srv.Addr()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Warn(logger, name+" server failed", "error", err)
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}

// Monitor exposes the wired monitor (useful for tests).
func (s *Server) Monitor() *monitor.Monitor {
	return s.monitor
}
