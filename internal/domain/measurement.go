package domain

// MeasurementRow is the transfer shape of a single sensor reading. It carries no identity and no provenance.
type MeasurementRow struct {
	CompostTemp Decimal   `json:"compostTemp"`
	RoomTemp    Decimal   `json:"roomTemp"`
	CO2         Decimal   `json:"co2"`
	RH          Decimal   `json:"rh"`
	Date        Timestamp `json:"date"`
}

// StoredRecord is a persisted measurement row together with the document it was ingested from.
type StoredRecord struct {
	ID           string
	DocumentName string
	CompostTemp  Decimal
	RoomTemp     Decimal
	CO2          Decimal
	RH           Decimal
	Date         Timestamp
}

// ParsedDocument is the upstream parser's view of one source file.
type ParsedDocument struct {
	Name string           `json:"name,omitempty"`
	Rows []MeasurementRow `json:"rows"`
}

// Equal reports whether both rows hold the same readings. Dates are compared as instants.
func (r MeasurementRow) Equal(other MeasurementRow) bool {
	return r.CompostTemp.Equal(other.CompostTemp) &&
		r.RoomTemp.Equal(other.RoomTemp) &&
		r.CO2.Equal(other.CO2) &&
		r.RH.Equal(other.RH) &&
		r.Date.Equal(other.Date)
}
