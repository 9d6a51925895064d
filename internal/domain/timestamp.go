package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of measurement dates, e.g. "Wed, 04 Sep 2024 10:00:00 GMT".
const DateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

var parseLayouts = []string{
	time.RFC1123Z,
	time.RFC3339Nano,
}

// Timestamp is a measurement date. The zero value represents an absent date.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// zoneOffsets resolves the zone abbreviations accepted in DateLayout-style dates, in seconds east of UTC.
var zoneOffsets = map[string]int{
	"GMT": 0, "UTC": 0, "UT": 0, "Z": 0,
	"WET": 0, "WEST": 1 * 3600, "BST": 1 * 3600,
	"CET": 1 * 3600, "CEST": 2 * 3600,
	"EET": 2 * 3600, "EEST": 3 * 3600, "MSK": 3 * 3600,
	"EST": -5 * 3600, "EDT": -4 * 3600,
	"CST": -6 * 3600, "CDT": -5 * 3600,
	"MST": -7 * 3600, "MDT": -6 * 3600,
	"PST": -8 * 3600, "PDT": -7 * 3600,
}

// ParseTimestamp accepts DateLayout dates with a known zone abbreviation, RFC 1123 dates with a numeric zone
// and RFC 3339 dates.
func ParseTimestamp(value string) (Timestamp, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC1123, value); err == nil {
		return resolveZone(value, t)
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("parse date %q: expected format %q", value, DateLayout)
}

// resolveZone pins the abbreviation parsed by time.Parse to a fixed offset. time.Parse
// silently treats abbreviations unknown to the local zone as UTC.
func resolveZone(value string, t time.Time) (Timestamp, error) {
	name, _ := t.Zone()
	offset, ok := zoneOffsets[strings.ToUpper(name)]
	if !ok {
		return Timestamp{}, fmt.Errorf("parse date %q: unknown zone %q", value, name)
	}
	pinned := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.FixedZone(name, offset))
	return Timestamp{Time: pinned}, nil
}

// String renders the date in UTC using DateLayout, or an empty string when absent.
func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateLayout)
}

// Equal compares instants; two absent dates are equal.
func (t Timestamp) Equal(other Timestamp) bool {
	return t.Time.Equal(other.Time)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return fmt.Errorf("decode date: %w", err)
	}
	if strings.TrimSpace(s) == "" {
		t.Time = time.Time{}
		return nil
	}

	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
