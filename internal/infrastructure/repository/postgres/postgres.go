package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mushroom-datastore/internal/domain"
)

const (
	insertStatement    = `INSERT INTO mushroom_rows (id, document_name, compost_temp, room_temp, co2, rh, "date") VALUES ($1, $2, $3, $4, $5, $6, $7)`
	selectAllStatement = `SELECT id, document_name, compost_temp, room_temp, co2, rh, "date" FROM mushroom_rows`
)

// Repository implements the record repository contract backed by Postgres.
type Repository struct {
	db *sql.DB
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// NewRepository wraps an open database handle. The schema is expected to exist, see Migrate.
func NewRepository(db *sql.DB) (*Repository, error) {
	if db == nil {
		return nil, errors.New("postgres repository requires db instance")
	}
	return &Repository{db: db}, nil
}

// Close releases the underlying connection pool.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Save stores a single record in its own implicit transaction.
func (r *Repository) Save(ctx context.Context, record domain.StoredRecord) error {
	return insert(ctx, r.db, record)
}

// FindAll returns every stored record. Postgres gives no ordering guarantee without ORDER BY and none is needed.
func (r *Repository) FindAll(ctx context.Context) ([]domain.StoredRecord, error) {
	rows, err := r.db.QueryContext(ctx, selectAllStatement)
	if err != nil {
		return nil, fmt.Errorf("%w: postgres repository: find all: %w", domain.ErrPersistence, err)
	}
	defer rows.Close()

	records := make([]domain.StoredRecord, 0)
	for rows.Next() {
		var (
			record domain.StoredRecord
			date   sql.NullTime
		)
		if err := rows.Scan(
			&record.ID,
			&record.DocumentName,
			&record.CompostTemp,
			&record.RoomTemp,
			&record.CO2,
			&record.RH,
			&date,
		); err != nil {
			return nil, fmt.Errorf("%w: postgres repository: scan record: %w", domain.ErrPersistence, err)
		}
		if date.Valid {
			record.Date = domain.NewTimestamp(date.Time)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: postgres repository: iterate records: %w", domain.ErrPersistence, err)
	}

	return records, nil
}

// WithinTx runs fn inside a database transaction, committing only when fn returns nil.
func (r *Repository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.RecordWriter) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: postgres repository: begin transaction: %w", domain.ErrPersistence, err)
	}

	if err := fn(ctx, &transaction{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("postgres repository: rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: postgres repository: commit: %w", domain.ErrPersistence, err)
	}

	return nil
}

type transaction struct {
	tx *sql.Tx
}

func (t *transaction) Save(ctx context.Context, record domain.StoredRecord) error {
	return insert(ctx, t.tx, record)
}

func insert(ctx context.Context, ex execer, record domain.StoredRecord) error {
	if record.ID == "" {
		return fmt.Errorf("%w: postgres repository: record id is required", domain.ErrPersistence)
	}

	date := sql.NullTime{Time: record.Date.Time, Valid: !record.Date.IsZero()}
	if _, err := ex.ExecContext(ctx, insertStatement,
		record.ID,
		record.DocumentName,
		record.CompostTemp,
		record.RoomTemp,
		record.CO2,
		record.RH,
		date,
	); err != nil {
		return fmt.Errorf("%w: postgres repository: insert record %s: %w", domain.ErrPersistence, record.ID, err)
	}

	return nil
}

var _ domain.RecordRepository = (*Repository)(nil)
