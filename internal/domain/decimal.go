package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// Decimal is an arbitrary-precision decimal reading. The zero value represents an absent (null) reading.
// Values are treated as immutable once constructed.
type Decimal struct {
	d *apd.Decimal
}

// NewDecimal parses a decimal literal such as "24.5" or "8.1E+2".
func NewDecimal(s string) (Decimal, error) {
	value, _, err := apd.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Decimal{}, fmt.Errorf("parse decimal %q: %w", s, err)
	}
	if value.Form != apd.Finite {
		return Decimal{}, fmt.Errorf("parse decimal %q: not a finite number", s)
	}
	return Decimal{d: value}, nil
}

// MustDecimal is like NewDecimal but panics on malformed input. Intended for literals in tests and fixtures.
func MustDecimal(s string) Decimal {
	d, err := NewDecimal(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Valid reports whether the decimal holds a value.
func (d Decimal) Valid() bool {
	return d.d != nil
}

// String renders the value in plain notation, or an empty string when absent.
func (d Decimal) String() string {
	if d.d == nil {
		return ""
	}
	return d.d.Text('f')
}

// Equal compares numerically, so 24.5 equals 24.50. Two absent values are equal.
func (d Decimal) Equal(other Decimal) bool {
	if d.d == nil || other.d == nil {
		return d.d == nil && other.d == nil
	}
	return d.d.Cmp(other.d) == 0
}

func (d Decimal) MarshalJSON() ([]byte, error) {
	if d.d == nil {
		return []byte("null"), nil
	}
	return []byte(d.String()), nil
}

// UnmarshalJSON accepts JSON numbers as well as numeric strings; the upstream parser emits table cells as strings.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		d.d = nil
		return nil
	}

	literal := string(trimmed)
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("decode decimal: %w", err)
		}
		literal = strings.TrimSpace(s)
		if literal == "" {
			d.d = nil
			return nil
		}
	}

	parsed, err := NewDecimal(literal)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner for NUMERIC columns.
func (d *Decimal) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		d.d = nil
		return nil
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	case int64:
		return d.scanString(strconv.FormatInt(v, 10))
	case float64:
		return d.scanString(strconv.FormatFloat(v, 'f', -1, 64))
	default:
		return fmt.Errorf("scan decimal: unsupported type %T", src)
	}
}

func (d *Decimal) scanString(s string) error {
	parsed, err := NewDecimal(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer. Absent values are stored as NULL.
func (d Decimal) Value() (driver.Value, error) {
	if d.d == nil {
		return nil, nil
	}
	return d.String(), nil
}
