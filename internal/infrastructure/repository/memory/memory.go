package memory

import (
	"context"
	"fmt"
	"sync"

	"mushroom-datastore/internal/domain"
)

// Repository stores records in memory and satisfies the application repository contract.
// It is used for DB_DRIVER=memory and in tests.
type Repository struct {
	mu      sync.RWMutex
	records []domain.StoredRecord
	ids     map[string]struct{}
}

// New creates an empty in-memory repository instance.
func New() *Repository {
	return &Repository{ids: make(map[string]struct{})}
}

// Save stores a single record outside of any transaction.
func (r *Repository) Save(ctx context.Context, record domain.StoredRecord) error {
	return r.WithinTx(ctx, func(ctx context.Context, tx domain.RecordWriter) error {
		return tx.Save(ctx, record)
	})
}

// FindAll returns a copy of every stored record in insertion order.
func (r *Repository) FindAll(_ context.Context) ([]domain.StoredRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.StoredRecord, len(r.records))
	copy(out, r.records)
	return out, nil
}

// WithinTx stages every write made by fn and applies them only when fn succeeds.
// The write lock is held for the whole call, so transactions are serialized.
func (r *Repository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.RecordWriter) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &transaction{repo: r, staged: make(map[string]struct{})}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	for _, record := range tx.records {
		r.ids[record.ID] = struct{}{}
	}
	r.records = append(r.records, tx.records...)
	return nil
}

type transaction struct {
	repo    *Repository
	records []domain.StoredRecord
	staged  map[string]struct{}
}

func (t *transaction) Save(ctx context.Context, record domain.StoredRecord) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: memory repository: save: %w", domain.ErrPersistence, err)
	}
	if record.ID == "" {
		return fmt.Errorf("%w: memory repository: record id is required", domain.ErrPersistence)
	}
	_, committed := t.repo.ids[record.ID]
	_, staged := t.staged[record.ID]
	if committed || staged {
		return fmt.Errorf("%w: memory repository: duplicate record id %s", domain.ErrPersistence, record.ID)
	}

	t.staged[record.ID] = struct{}{}
	t.records = append(t.records, record)
	return nil
}

var _ domain.RecordRepository = (*Repository)(nil)
