package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"go.nhat.io/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"

	"mushroom-datastore/internal/logging"
)

const (
	pingAttempts = 5
	pingInterval = 2 * time.Second
	pingTimeout  = 3 * time.Second
)

var (
	registerOnce sync.Once
	driverName   string
	registerErr  error
)

func tracedDriver() (string, error) {
	registerOnce.Do(func() {
		driverName, registerErr = otelsql.Register(
			"postgres",
			otelsql.TraceQueryWithoutArgs(),
			otelsql.TraceRowsClose(),
			otelsql.TraceRowsAffected(),
			otelsql.WithSystem(semconv.DBSystemPostgreSQL),
		)
	})
	return driverName, registerErr
}

// Open connects to Postgres through the traced lib/pq driver and waits until the server answers a ping.
func Open(ctx context.Context, dsn string, logger *logging.Logger) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("postgres repository: DSN is required")
	}

	driver, err := tracedDriver()
	if err != nil {
		return nil, fmt.Errorf("postgres repository: register traced driver: %w", err)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres repository: open connection: %w", err)
	}
	db.SetMaxIdleConns(5)
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := waitForDatabase(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := otelsql.RecordStats(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres repository: record stats: %w", err)
	}

	return db, nil
}

// waitForDatabase pings until the server accepts connections, which covers a database container that is
// still starting next to the service.
func waitForDatabase(ctx context.Context, db *sql.DB, logger *logging.Logger) error {
	var err error
	for attempt := 1; attempt <= pingAttempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}

		logger.Warn("database check attempt failed", logging.AttachError(err, "attempt", attempt)...)
		if attempt == pingAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("postgres repository: ping: %w", ctx.Err())
		case <-time.After(pingInterval):
		}
	}

	return fmt.Errorf("postgres repository: database not reachable after %d attempts: %w", pingAttempts, err)
}
