package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"mushroom-datastore/internal/domain"
	"mushroom-datastore/internal/infrastructure/repository/memory"
)

func record(document string) domain.StoredRecord {
	return domain.StoredRecord{
		ID:           uuid.NewString(),
		DocumentName: document,
		CompostTemp:  domain.MustDecimal("24.5"),
	}
}

func TestRepositorySaveAndFindAll(t *testing.T) {
	t.Parallel()

	repo := memory.New()
	ctx := context.Background()

	first, second := record("a.xps"), record("b.xps")
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Save(ctx, second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != first.ID || records[1].ID != second.ID {
		t.Fatalf("unexpected records: %#v", records)
	}
}

func TestRepositoryFindAllEmpty(t *testing.T) {
	t.Parallel()

	records, err := memory.New().FindAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", records)
	}
}

func TestRepositoryRejectsDuplicateID(t *testing.T) {
	t.Parallel()

	repo := memory.New()
	rec := record("a.xps")
	if err := repo.Save(context.Background(), rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := repo.Save(context.Background(), rec)
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	repo := memory.New()
	ctx := context.Background()
	failure := errors.New("abort")

	err := repo.WithinTx(ctx, func(ctx context.Context, tx domain.RecordWriter) error {
		if err := tx.Save(ctx, record("a.xps")); err != nil {
			return err
		}
		if err := tx.Save(ctx, record("a.xps")); err != nil {
			return err
		}
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("expected abort error, got %v", err)
	}

	records, _ := repo.FindAll(ctx)
	if len(records) != 0 {
		t.Fatalf("expected rollback to discard staged records, got %d", len(records))
	}
}

func TestWithinTxRejectsDuplicateInsideTransaction(t *testing.T) {
	t.Parallel()

	repo := memory.New()
	ctx := context.Background()
	rec := record("a.xps")

	err := repo.WithinTx(ctx, func(ctx context.Context, tx domain.RecordWriter) error {
		if err := tx.Save(ctx, rec); err != nil {
			return err
		}
		return tx.Save(ctx, rec)
	})
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}

	records, _ := repo.FindAll(ctx)
	if len(records) != 0 {
		t.Fatalf("expected no records after failed transaction, got %d", len(records))
	}
}

func TestSaveHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := memory.New().Save(ctx, record("a.xps"))
	if !errors.Is(err, domain.ErrPersistence) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected persistence error wrapping context.Canceled, got %v", err)
	}
}
