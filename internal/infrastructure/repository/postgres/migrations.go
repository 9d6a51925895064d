package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

const (
	createTableStatement = `
CREATE TABLE IF NOT EXISTS mushroom_rows (
    id TEXT PRIMARY KEY,
    document_name TEXT NOT NULL,
    compost_temp NUMERIC,
    room_temp NUMERIC,
    co2 NUMERIC,
    rh NUMERIC,
    "date" TIMESTAMPTZ
)`
	documentIndexStatement = `
CREATE INDEX IF NOT EXISTS mushroom_rows_document_name_idx
ON mushroom_rows (document_name)`
)

// Migrate creates the schema if it does not exist yet. It is safe to run repeatedly.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range []string{createTableStatement, documentIndexStatement} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("postgres repository: ensure schema: %w", err)
		}
	}
	return nil
}
