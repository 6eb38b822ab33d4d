package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DayLayout is the calendar-date layout used by the console for document and service dates.
const DayLayout = "2006-01-02"

// Date is a calendar date or timestamp that decodes from either "2006-01-02" or RFC3339.
// The zero value encodes as null.
type Date struct {
	time.Time
}

// NewDate wraps t. Convenience for building entities in code and tests.
func NewDate(t time.Time) *Date {
	return &Date{Time: t}
}

// ParseDate parses "2006-01-02" or RFC3339 text.
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected %s or RFC3339", s, DayLayout)
	}
	return Date{Time: t}, nil
}

// String renders midnight-UTC values as a plain day and everything else as RFC3339.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	if d.UTC().Truncate(24 * time.Hour).Equal(d.UTC()) {
		return d.UTC().Format(DayLayout)
	}
	return d.Format(time.RFC3339)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler. null and "" leave the zero value.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// dateValue unwraps an optional date.
func dateValue(d *Date) (time.Time, bool) {
	if d == nil || d.IsZero() {
		return time.Time{}, false
	}
	return d.Time, true
}

// dateField renders an optional date for field matching.
func dateField(d *Date) (string, bool) {
	if d == nil || d.IsZero() {
		return "", false
	}
	return d.String(), true
}
