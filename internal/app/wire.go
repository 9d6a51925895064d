//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"

	"mushroom-datastore/internal/application/datastore"
	"mushroom-datastore/internal/domain"
	"mushroom-datastore/internal/infrastructure/xpsreader"
)

func InitializeApp(ctx context.Context) (*App, func(), error) {
	panic(wire.Build(
		provideConfig,
		provideLogger,
		provideSignals,
		provideRegistry,
		provideMetrics,
		provideRepository,
		provideFetcher,
		wire.Bind(new(domain.DocumentFetcher), new(*xpsreader.Client)),
		provideService,
		wire.Bind(new(domain.DatastoreService), new(*datastore.Service)),
		provideHTTPHandler,
		provideGRPCServer,
		New,
	))
}
