package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Attendees, Reminders and Recurrence live in JSONB columns on Postgres.

type Attendees []Attendee

func (a Attendees) Value() (driver.Value, error) {
	if a == nil {
		a = Attendees{}
	}
	return json.Marshal(a)
}

func (a *Attendees) Scan(value any) error {
	return scanJSON(value, a)
}

type Reminders []Reminder

func (r Reminders) Value() (driver.Value, error) {
	if r == nil {
		r = Reminders{}
	}
	return json.Marshal(r)
}

func (r *Reminders) Scan(value any) error {
	return scanJSON(value, r)
}

func (r Recurrence) Value() (driver.Value, error) {
	return json.Marshal(r)
}

func (r *Recurrence) Scan(value any) error {
	return scanJSON(value, r)
}

func scanJSON(value any, dst any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported jsonb source %T", value)
	}
}
