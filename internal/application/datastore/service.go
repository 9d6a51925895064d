package datastore

import (
	"context"
	"errors"
	"time"

	"mushroom-datastore/internal/domain"
	"mushroom-datastore/internal/logging"
)

// Observer receives the result of every ingestion. The Prometheus metrics satisfy it.
type Observer interface {
	ObserveIngestion(rows int, duration time.Duration, err error)
}

// Service ingests parsed documents into the repository and serves the stored rows back.
type Service struct {
	fetcher  domain.DocumentFetcher
	repo     domain.RecordRepository
	mapper   *Mapper
	observer Observer
	logger   *logging.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithObserver(observer Observer) Option {
	return func(s *Service) {
		s.observer = observer
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMapper overrides the record mapper, mostly to make identifiers deterministic in tests.
func WithMapper(mapper *Mapper) Option {
	return func(s *Service) {
		if mapper != nil {
			s.mapper = mapper
		}
	}
}

// NewService wires the ingestion pipeline.
func NewService(fetcher domain.DocumentFetcher, repo domain.RecordRepository, opts ...Option) (*Service, error) {
	if fetcher == nil {
		return nil, errors.New("datastore service requires a document fetcher")
	}
	if repo == nil {
		return nil, errors.New("datastore service requires a record repository")
	}

	s := &Service{
		fetcher: fetcher,
		repo:    repo,
		mapper:  NewMapper(),
		logger:  logging.Discard(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Ingest fetches filename from the parser and stores every row in document order within one transaction.
// Nothing is stored when any step fails. Re-ingesting a filename stores its rows again under new identifiers.
func (s *Service) Ingest(ctx context.Context, filename string) error {
	start := s.now()
	logger := logging.FromContext(ctx, s.logger).With("filename", filename)

	rows, err := s.ingest(ctx, filename)
	if s.observer != nil {
		s.observer.ObserveIngestion(rows, s.now().Sub(start), err)
	}
	if err != nil {
		logger.Error("ingest document failed", logging.AttachError(err)...)
		return err
	}

	logger.Info("document ingested", "rows", rows)
	return nil
}

func (s *Service) ingest(ctx context.Context, filename string) (int, error) {
	document, err := s.fetcher.FetchDocument(ctx, filename)
	if err != nil {
		return 0, err
	}

	err = s.repo.WithinTx(ctx, func(ctx context.Context, tx domain.RecordWriter) error {
		for _, row := range document.Rows {
			if err := tx.Save(ctx, s.mapper.ToRecord(filename, row)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(document.Rows), nil
}

// ListAll returns every stored row without identity or provenance. The result is never nil.
func (s *Service) ListAll(ctx context.Context) ([]domain.MeasurementRow, error) {
	records, err := s.repo.FindAll(ctx)
	if err != nil {
		logging.FromContext(ctx, s.logger).Error("list rows failed", logging.AttachError(err)...)
		return nil, err
	}

	rows := make([]domain.MeasurementRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, s.mapper.ToRow(record))
	}

	return rows, nil
}

var _ domain.DatastoreService = (*Service)(nil)
