package domain

import "context"

// RecordWriter persists records. Repositories and their transactions both satisfy it.
type RecordWriter interface {
	Save(ctx context.Context, record StoredRecord) error
}

// RecordReader exposes the read side of the record store.
type RecordReader interface {
	FindAll(ctx context.Context) ([]StoredRecord, error)
}

// RecordRepository aggregates the write and read capabilities together with an explicit transaction boundary.
// Records saved through the writer passed to fn are committed only when fn returns nil.
type RecordRepository interface {
	RecordWriter
	RecordReader
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx RecordWriter) error) error
}

// DocumentFetcher retrieves parsed documents from the upstream parsing service.
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, filename string) (ParsedDocument, error)
}

// DatastoreService describes the behaviour exposed to transport layers.
type DatastoreService interface {
	Ingest(ctx context.Context, filename string) error
	ListAll(ctx context.Context) ([]MeasurementRow, error)
}
