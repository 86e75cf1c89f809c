package intake

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record folds a prompt answer into the ledger for the calendar day of
// takenAt. Implements the reminder engine's ledger.
func (s *Service) Record(ctx context.Context, patientID, medicineName string, takenAt time.Time, taken bool) error {
	pid, err := uuid.Parse(patientID)
	if err != nil {
		return fmt.Errorf("invalid patient id: %w", err)
	}
	if medicineName == "" {
		return fmt.Errorf("medicine name is required")
	}
	_, err = s.repo.Apply(ctx, pid, medicineName, DayOf(takenAt), taken)
	return err
}

// History returns the patient's intake records covering the last given
// number of days, today included.
func (s *Service) History(ctx context.Context, patientID uuid.UUID, days int, now time.Time) ([]*Record, error) {
	if days <= 0 {
		days = 30
	}
	since := DayOf(now).AddDate(0, 0, -(days - 1))
	return s.repo.ListByPatient(ctx, patientID, since)
}
