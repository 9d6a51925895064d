package datastore

import (
	"github.com/google/uuid"

	"mushroom-datastore/internal/domain"
)

// Mapper converts between the transfer shape and the persisted shape of a measurement.
type Mapper struct {
	newID func() string
}

// NewMapper returns a mapper that assigns random UUIDv4 identifiers.
func NewMapper() *Mapper {
	return &Mapper{newID: uuid.NewString}
}

// ToRecord creates a new record for row ingested from filename. Every call yields a fresh identifier.
func (m *Mapper) ToRecord(filename string, row domain.MeasurementRow) domain.StoredRecord {
	return domain.StoredRecord{
		ID:           m.newID(),
		DocumentName: filename,
		CompostTemp:  row.CompostTemp,
		RoomTemp:     row.RoomTemp,
		CO2:          row.CO2,
		RH:           row.RH,
		Date:         row.Date,
	}
}

// ToRow drops identity and provenance from a stored record.
func (m *Mapper) ToRow(record domain.StoredRecord) domain.MeasurementRow {
	return domain.MeasurementRow{
		CompostTemp: record.CompostTemp,
		RoomTemp:    record.RoomTemp,
		CO2:         record.CO2,
		RH:          record.RH,
		Date:        record.Date,
	}
}
