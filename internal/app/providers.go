package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	grpcapi "mushroom-datastore/internal/api/grpc"
	httpapi "mushroom-datastore/internal/api/http"
	"mushroom-datastore/internal/application/datastore"
	"mushroom-datastore/internal/config"
	"mushroom-datastore/internal/domain"
	"mushroom-datastore/internal/infrastructure/repository/memory"
	"mushroom-datastore/internal/infrastructure/repository/postgres"
	"mushroom-datastore/internal/infrastructure/xpsreader"
	"mushroom-datastore/internal/logging"
	"mushroom-datastore/internal/metrics"
)

func provideConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg *config.Config) *logging.Logger {
	logger := logging.New(cfg.LogLevel).With("service", "datastore")
	logger.SetDefault()
	return logger
}

func provideSignals() (*Signals, func()) {
	signals := NotifySignals()
	return signals, signals.Stop
}

func provideRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

func provideMetrics(registry *prometheus.Registry) *metrics.Metrics {
	return metrics.New(registry)
}

// provideRepository opens the configured store. For postgres the schema is ensured before serving.
func provideRepository(ctx context.Context, cfg *config.Config, logger *logging.Logger) (domain.RecordRepository, func(), error) {
	switch cfg.DbDriver {
	case config.DriverMemory:
		logger.Warn("using in-memory repository, records are lost on restart")
		return memory.New(), func() {}, nil
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.DbDsn, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		repo, err := postgres.NewRepository(db)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		cleanup := func() {
			if err := repo.Close(); err != nil {
				logger.Warn("close postgres repository", logging.AttachError(err)...)
			}
		}
		return repo, cleanup, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.DbDriver)
	}
}

func provideFetcher(cfg *config.Config) (*xpsreader.Client, error) {
	return xpsreader.New(cfg.XPSParserURL)
}

func provideService(fetcher domain.DocumentFetcher, repo domain.RecordRepository, m *metrics.Metrics, logger *logging.Logger) (*datastore.Service, error) {
	return datastore.NewService(fetcher, repo,
		datastore.WithObserver(m),
		datastore.WithLogger(logger),
	)
}

func provideHTTPHandler(service domain.DatastoreService, m *metrics.Metrics, registry *prometheus.Registry, logger *logging.Logger) http.Handler {
	server := httpapi.NewServer(service,
		httpapi.WithLogger(logger),
		httpapi.WithMetrics(m, registry),
	)
	return otelhttp.NewHandler(server, "datastore-http")
}

// provideGRPCServer returns nil when GRPC_PORT is 0. The cleanup releases the listener opened here.
func provideGRPCServer(cfg *config.Config, service domain.DatastoreService, registry *prometheus.Registry, logger *logging.Logger) (*grpcapi.Server, func(), error) {
	if cfg.GrpcPort == 0 {
		logger.Info("gRPC transport disabled")
		return nil, func() {}, nil
	}
	server, err := grpcapi.NewServer(logger, service, grpcapi.Options{
		Address:         fmt.Sprintf(":%d", cfg.GrpcPort),
		ShutdownTimeout: cfg.ShutdownTimeout,
		Registerer:      registry,
	})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := server.Close(); err != nil {
			logger.Warn("close gRPC listener", logging.AttachError(err)...)
		}
	}
	return server, cleanup, nil
}
