package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"mushroom-datastore/internal/domain"
	"mushroom-datastore/internal/infrastructure/repository/postgres"
)

const (
	insertQuery = `INSERT INTO mushroom_rows (id, document_name, compost_temp, room_temp, co2, rh, "date") VALUES ($1, $2, $3, $4, $5, $6, $7)`
	selectQuery = `SELECT id, document_name, compost_temp, room_temp, co2, rh, "date" FROM mushroom_rows`
)

func newMockRepository(t *testing.T) (*postgres.Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo, err := postgres.NewRepository(db)
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	return repo, mock
}

func sampleRecord(id string) domain.StoredRecord {
	return domain.StoredRecord{
		ID:           id,
		DocumentName: "doc1.xps",
		CompostTemp:  domain.MustDecimal("24.5"),
		RoomTemp:     domain.MustDecimal("21.0"),
		CO2:          domain.MustDecimal("800"),
		RH:           domain.MustDecimal("85"),
		Date:         domain.NewTimestamp(time.Date(2024, time.September, 4, 10, 0, 0, 0, time.UTC)),
	}
}

func TestSaveInsertsRecord(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(regexp.QuoteMeta(insertQuery)).
		WithArgs("id-1", "doc1.xps", "24.5", "21.0", "800", "85", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Save(context.Background(), sampleRecord("id-1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveStoresAbsentValuesAsNull(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(regexp.QuoteMeta(insertQuery)).
		WithArgs("id-1", "doc1.xps", nil, nil, nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Save(context.Background(), domain.StoredRecord{ID: "id-1", DocumentName: "doc1.xps"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveWrapsDriverErrors(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(regexp.QuoteMeta(insertQuery)).WillReturnError(errors.New("connection reset"))

	err := repo.Save(context.Background(), sampleRecord("id-1"))
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func TestFindAllScansRecords(t *testing.T) {
	repo, mock := newMockRepository(t)

	date := time.Date(2024, time.September, 4, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "document_name", "compost_temp", "room_temp", "co2", "rh", "date"}).
		AddRow("id-1", "doc1.xps", []byte("24.5"), []byte("21.0"), []byte("800"), []byte("85"), date).
		AddRow("id-2", "doc2.xps", nil, "21.1", "810", "86", nil)
	mock.ExpectQuery(regexp.QuoteMeta(selectQuery)).WillReturnRows(rows)

	records, err := repo.FindAll(context.Background())
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("unexpected length: %d", len(records))
	}

	first := records[0]
	if first.ID != "id-1" || first.DocumentName != "doc1.xps" {
		t.Fatalf("unexpected first record: %#v", first)
	}
	if !first.CompostTemp.Equal(domain.MustDecimal("24.5")) || !first.Date.Time.Equal(date) {
		t.Fatalf("unexpected first values: %s %s", first.CompostTemp, first.Date)
	}

	second := records[1]
	if second.CompostTemp.Valid() {
		t.Fatalf("expected NULL compost temp to stay absent")
	}
	if !second.Date.IsZero() {
		t.Fatalf("expected NULL date to stay absent")
	}
	if !second.RoomTemp.Equal(domain.MustDecimal("21.1")) {
		t.Fatalf("unexpected room temp: %s", second.RoomTemp)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFindAllEmpty(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "document_name", "compost_temp", "room_temp", "co2", "rh", "date"}))

	records, err := repo.FindAll(context.Background())
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", records)
	}
}

func TestFindAllWrapsQueryErrors(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectQuery)).WillReturnError(errors.New("relation does not exist"))

	if _, err := repo.FindAll(context.Background()); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func TestWithinTxCommitsAllRows(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(insertQuery)).
		WithArgs("id-1", "doc1.xps", "24.5", "21.0", "800", "85", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertQuery)).
		WithArgs("id-2", "doc1.xps", "24.5", "21.0", "800", "85", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.WithinTx(context.Background(), func(ctx context.Context, tx domain.RecordWriter) error {
		for _, id := range []string{"id-1", "id-2"} {
			if err := tx.Save(ctx, sampleRecord(id)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("within tx: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestWithinTxRollsBackOnInsertFailure(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(insertQuery)).
		WithArgs("id-1", "doc1.xps", "24.5", "21.0", "800", "85", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertQuery)).
		WithArgs("id-2", "doc1.xps", "24.5", "21.0", "800", "85", sqlmock.AnyArg()).
		WillReturnError(errors.New("duplicate key value violates unique constraint"))
	mock.ExpectRollback()

	err := repo.WithinTx(context.Background(), func(ctx context.Context, tx domain.RecordWriter) error {
		for _, id := range []string{"id-1", "id-2", "id-3"} {
			if err := tx.Save(ctx, sampleRecord(id)); err != nil {
				return err
			}
		}
		return nil
	})
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestWithinTxBeginFailure(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	called := false
	err := repo.WithinTx(context.Background(), func(context.Context, domain.RecordWriter) error {
		called = true
		return nil
	})
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if called {
		t.Fatalf("callback must not run without a transaction")
	}
}

func TestWithinTxCommitFailure(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	err := repo.WithinTx(context.Background(), func(context.Context, domain.RecordWriter) error { return nil })
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func TestMigrateCreatesSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS mushroom_rows")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX IF NOT EXISTS mushroom_rows_document_name_idx")).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := postgres.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestNewRepositoryRequiresDB(t *testing.T) {
	if _, err := postgres.NewRepository(nil); err == nil {
		t.Fatalf("expected error for nil db")
	}
}
