package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no patient matches the lookup.
var ErrNotFound = errors.New("patient not found")

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Patient, int, error)

	// LatestByUser returns the most recently updated patient record for a
	// user, ties broken by larger id.
	LatestByUser(ctx context.Context, userID uuid.UUID) (*Patient, error)

	// SetMedicines replaces the whole prescription list and bumps updated_at.
	SetMedicines(ctx context.Context, id uuid.UUID, meds []Medicine) error
}
