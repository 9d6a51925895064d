package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	grpcapi "mushroom-datastore/internal/api/grpc"
	"mushroom-datastore/internal/config"
	"mushroom-datastore/internal/logging"
)

// App runs the HTTP and gRPC transports of the datastore until shutdown.
type App struct {
	config     *config.Config
	logger     *logging.Logger
	signals    *Signals
	httpServer *http.Server
	grpcServer *grpcapi.Server
}

// New assembles the application. grpcServer may be nil when the gRPC transport is disabled.
func New(cfg *config.Config, logger *logging.Logger, signals *Signals, handler http.Handler, grpcServer *grpcapi.Server) *App {
	return &App{
		config:  cfg,
		logger:  logger,
		signals: signals,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.HttpPort),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		grpcServer: grpcServer,
	}
}

func (a *App) shutdownTimeout() time.Duration {
	if a.config.ShutdownTimeout <= 0 {
		return config.DefaultShutdownTimeout
	}
	return a.config.ShutdownTimeout
}

// Run serves until ctx is cancelled, a shutdown signal arrives or a transport fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("starting datastore service",
		"httpPort", a.config.HttpPort,
		"grpcPort", a.config.GrpcPort,
		"dbDriver", a.config.DbDriver,
		"dbDsn", a.config.RedactedDSN(),
		"parserUrl", a.config.XPSParserURL,
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.logger.Info("HTTP server listening", "address", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if a.grpcServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.grpcServer.Serve(runCtx); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-runCtx.Done():
	case sig := <-a.signals.C():
		a.logger.Info("shutdown signal received", "signal", sig.String())
	case runErr = <-errCh:
		a.logger.Error("transport failed", logging.AttachError(runErr)...)
	}
	cancel()

	a.logger.Info("shutdown initiated")

	timeout := a.shutdownTimeout()
	cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), timeout)
	defer cleanupCancel()

	if err := a.httpServer.Shutdown(cleanupCtx); err != nil {
		a.logger.Warn("HTTP server shutdown error", logging.AttachError(err)...)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-cleanupCtx.Done():
		a.logger.Warn("shutdown deadline exceeded", "timeout", timeout.String())
		return errors.Join(runErr, cleanupCtx.Err())
	}

	close(errCh)
	for err := range errCh {
		runErr = errors.Join(runErr, err)
	}

	a.logger.Info("shutdown completed")
	return runErr
}
