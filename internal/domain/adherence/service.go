package adherence

import (
	"context"

	"github.com/google/uuid"

	"github.com/medminder/medminder/internal/domain/intake"
	"github.com/medminder/medminder/internal/domain/patient"
	"github.com/medminder/medminder/internal/platform/clock"
)

type Service struct {
	patients *patient.Service
	intakes  *intake.Service
	clk      clock.Clock
}

func NewService(patients *patient.Service, intakes *intake.Service, clk clock.Clock) *Service {
	return &Service{patients: patients, intakes: intakes, clk: clk}
}

// GetReport builds the patient's 30-day adherence chart from the current
// prescription list and the intake ledger.
func (s *Service) GetReport(ctx context.Context, patientID uuid.UUID) (*Report, error) {
	p, err := s.patients.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	now := s.clk.Now()
	records, err := s.intakes.History(ctx, patientID, WindowDays, now)
	if err != nil {
		return nil, err
	}
	return Build(patientID.String(), p.Medicines, records, now), nil
}
