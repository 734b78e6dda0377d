package models

import (
	"encoding/json"
	"strings"
	"time"
)

// DateLayout is the wire format of a calendar date
const DateLayout = "2006-01-02"

var dateLayouts = []string{DateLayout, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04"}

// Date is a calendar date with no time of day, held at UTC midnight
type Date struct {
	time.Time
}

// NewDate returns the date for the given year, month and day
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's location
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate accepts a plain date as well as the timestamp layouts found in
// older records
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return DateOf(t), nil
		}
		lastErr = err
	}
	return Date{}, &ValidationError{Field: "date", Reason: lastErr.Error()}
}

// AddDays returns the date n calendar days later
func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

func (d Date) String() string {
	return d.Time.Format(DateLayout)
}

// MarshalJSON writes the date as "2006-01-02"
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON reads any layout ParseDate understands. null and "" leave
// the zero date.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
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
