package app_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/test/bufconn"

	grpcapi "mushroom-datastore/internal/api/grpc"
	httpapi "mushroom-datastore/internal/api/http"
	"mushroom-datastore/internal/app"
	"mushroom-datastore/internal/application/datastore"
	"mushroom-datastore/internal/config"
	"mushroom-datastore/internal/domain"
	"mushroom-datastore/internal/infrastructure/repository/memory"
	"mushroom-datastore/internal/logging"
)

type noopFetcher struct{}

func (noopFetcher) FetchDocument(_ context.Context, filename string) (domain.ParsedDocument, error) {
	return domain.ParsedDocument{Name: filename}, nil
}

func TestRunStopsOnContextCancel(t *testing.T) {
	cfg := &config.Config{
		DbDriver:        config.DriverMemory,
		HttpPort:        0,
		GrpcPort:        0,
		LogLevel:        "error",
		ShutdownTimeout: time.Second,
	}
	logger := logging.Discard()

	service, err := datastore.NewService(noopFetcher{}, memory.New())
	require.NoError(t, err)

	grpcServer, err := grpcapi.NewServer(logger, service, grpcapi.Options{
		Listener:   bufconn.Listen(1 << 16),
		Registerer: prometheus.NewRegistry(),
	})
	require.NoError(t, err)

	signals := app.SignalsFrom(make(chan os.Signal))
	application := app.New(cfg, logger, signals, httpapi.NewServer(service), grpcServer)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- application.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatalf("application did not stop")
	}
}

func TestRunReportsListenFailure(t *testing.T) {
	cfg := &config.Config{HttpPort: -1, ShutdownTimeout: time.Second}
	logger := logging.Discard()

	service, err := datastore.NewService(noopFetcher{}, memory.New())
	require.NoError(t, err)

	signals := app.SignalsFrom(make(chan os.Signal))
	application := app.New(cfg, logger, signals, httpapi.NewServer(service), nil)

	done := make(chan error, 1)
	go func() {
		done <- application.Run(context.Background())
	}()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatalf("application did not report the listen failure")
	}
}
