package patient

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medminder/medminder/internal/reminder"
)

// Medicine is one prescription entry. The list is stored on the patient row
// as jsonb and replaced wholesale on every prescription change.
type Medicine struct {
	Name      string   `json:"name"`
	Dose      string   `json:"dose,omitempty"`
	Times     []string `json:"times"`
	Frequency int      `json:"frequency,omitempty"`
}

// Validate checks a prescription entry. Every daily time must be a valid
// "HH:MM" wall-clock string; invalid times are rejected at the edge rather
// than silently skipped by the scheduler.
func (m *Medicine) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("medicine name is required")
	}
	if len(m.Times) == 0 {
		return fmt.Errorf("medicine %q needs at least one reminder time", m.Name)
	}
	for _, t := range m.Times {
		if _, _, err := reminder.ParseClockTime(t); err != nil {
			return fmt.Errorf("medicine %q: %w", m.Name, err)
		}
	}
	if m.Frequency < 0 {
		return fmt.Errorf("medicine %q: frequency cannot be negative", m.Name)
	}
	return nil
}

// Patient maps to the patient table.
type Patient struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	DoctorID  *uuid.UUID `db:"doctor_id" json:"doctor_id,omitempty"`
	Name      string     `db:"name" json:"name"`
	Age       *int       `db:"age" json:"age,omitempty"`
	Condition *string    `db:"condition" json:"condition,omitempty"`
	Medicines []Medicine `db:"medicines" json:"medicines"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Validate checks the patient record and every prescription entry on it.
func (p *Patient) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("patient name is required")
	}
	if p.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if p.Age != nil && (*p.Age < 0 || *p.Age > 150) {
		return fmt.Errorf("age out of range")
	}
	for i := range p.Medicines {
		if err := p.Medicines[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
