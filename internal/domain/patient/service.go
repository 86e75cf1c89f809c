package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/medminder/medminder/internal/reminder"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

// LatestPatient returns the most recently updated patient record for a user.
// A prescription change bumps updated_at, so the record the doctor touched
// last is the one the reminder app schedules from.
func (s *Service) LatestPatient(ctx context.Context, userID uuid.UUID) (*Patient, error) {
	return s.repo.LatestByUser(ctx, userID)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListPatientsByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Patient, int, error) {
	return s.repo.ListByDoctor(ctx, doctorID, limit, offset)
}

// SetMedicines replaces a patient's whole prescription list. Entries are
// validated up front so one bad time rejects the whole update instead of
// storing a half-applied list.
func (s *Service) SetMedicines(ctx context.Context, id uuid.UUID, meds []Medicine) error {
	seen := make(map[string]bool, len(meds))
	for i := range meds {
		if err := meds[i].Validate(); err != nil {
			return err
		}
		if seen[meds[i].Name] {
			return fmt.Errorf("duplicate medicine %q", meds[i].Name)
		}
		seen[meds[i].Name] = true
	}
	return s.repo.SetMedicines(ctx, id, meds)
}

// Medicines loads the prescription list for a reminder session. Implements
// the reminder engine's prescription source. An unknown patient yields an
// empty schedule rather than an error, so a session can still start and
// simply has nothing to remind about.
func (s *Service) Medicines(ctx context.Context, patientID string) ([]reminder.Medicine, error) {
	id, err := uuid.Parse(patientID)
	if err != nil {
		return nil, fmt.Errorf("invalid patient id: %w", err)
	}
	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return []reminder.Medicine{}, nil
	}
	if err != nil {
		return nil, err
	}
	meds := make([]reminder.Medicine, 0, len(p.Medicines))
	for _, m := range p.Medicines {
		meds = append(meds, reminder.Medicine{
			Name:      m.Name,
			Dose:      m.Dose,
			Times:     m.Times,
			Frequency: m.Frequency,
		})
	}
	return meds, nil
}
