package intake

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no intake record matches the lookup.
var ErrNotFound = errors.New("intake record not found")

type Repository interface {
	// Apply folds an answer into the day's record: a fresh day starts at
	// frequency 1 (taken) or 0 (declined); an existing record gains +1 or
	// -1 floored at zero, and taken tracks the latest answer.
	Apply(ctx context.Context, patientID uuid.UUID, medicineName string, day time.Time, taken bool) (*Record, error)

	GetForDay(ctx context.Context, patientID uuid.UUID, medicineName string, day time.Time) (*Record, error)

	// ListByPatient returns all records for a patient on or after since,
	// newest day first.
	ListByPatient(ctx context.Context, patientID uuid.UUID, since time.Time) ([]*Record, error)
}
