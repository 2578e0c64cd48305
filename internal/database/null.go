package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Units is a subject's unit list, stored as a JSON array
type Units []string

// Scan accepts the JSON column as bytes (MySQL) or text (SQLite)
func (u *Units) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*u = Units{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Units", src)
	}

	var units []string
	if len(data) > 0 {
		if err := json.Unmarshal(data, &units); err != nil {
			return fmt.Errorf("failed to decode units: %w", err)
		}
	}
	if units == nil {
		units = []string{}
	}
	*u = units
	return nil
}

// Value encodes the list as a JSON array, never null
func (u Units) Value() (driver.Value, error) {
	return marshalToString(u.orEmpty())
}

// MarshalJSON renders a nil list as []
func (u Units) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string(u.orEmpty()))
}

func (u Units) orEmpty() Units {
	if u == nil {
		return Units{}
	}
	return u
}

// timeLayouts covers MySQL text timestamps and the formats SQLite stores
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// NullTime is a nullable timestamp that scans from time.Time or text
type NullTime struct {
	Time  time.Time
	Valid bool
}

// Scan implements sql.Scanner
func (t *NullTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time, t.Valid = time.Time{}, false
		return nil
	case time.Time:
		t.Time, t.Valid = v, true
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	default:
		return fmt.Errorf("cannot scan %T into NullTime", src)
	}
}

func (t *NullTime) parse(s string) error {
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time, t.Valid = parsed, true
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

// MarshalJSON renders an invalid time as null
func (t NullTime) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.UTC().Format(time.RFC3339))
}

// nullIfEmpty maps "" to a SQL NULL
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// marshalToString marshals a value to a JSON string
// Useful when the column is NOT NULL and requires a string value
func marshalToString(v any) (string, error) {
	if v == nil {
		return "null", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
