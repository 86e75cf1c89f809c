// Package intake keeps the per-day ledger of answered dose prompts. Each
// (patient, medicine, calendar day) has at most one record: repeated answers
// on the same day fold into it instead of appending history rows.
package intake

import (
	"time"

	"github.com/google/uuid"
)

// Record maps to the intake_record table.
type Record struct {
	ID           uuid.UUID `db:"id" json:"id"`
	PatientID    uuid.UUID `db:"patient_id" json:"patient_id"`
	MedicineName string    `db:"medicine_name" json:"medicine_name"`
	// Day is the calendar-day bucket, stored as a date.
	Day       time.Time `db:"day" json:"day"`
	Taken     bool      `db:"taken" json:"taken"`
	Frequency int       `db:"frequency" json:"frequency"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// DayOf truncates an instant to its calendar day in its own location.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
