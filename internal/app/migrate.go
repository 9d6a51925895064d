package app

import (
	"context"
	"fmt"

	"mushroom-datastore/internal/config"
	"mushroom-datastore/internal/infrastructure/repository/postgres"
	"mushroom-datastore/internal/logging"
)

// Migrate creates the Postgres schema without starting the service. Only the database settings are required.
func Migrate(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.LogLevel).With("service", "datastore", "command", "migrate")

	if cfg.DbDriver != config.DriverPostgres {
		logger.Info("nothing to migrate", "dbDriver", cfg.DbDriver)
		return nil
	}
	if cfg.DbDsn == "" {
		return fmt.Errorf("%s is required", config.EnvDbDsn)
	}

	db, err := postgres.Open(ctx, cfg.DbDsn, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	logger.Info("schema is up to date", "dbDsn", cfg.RedactedDSN())
	return nil
}
