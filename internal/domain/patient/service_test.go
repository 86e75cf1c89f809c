package patient

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	existing, ok := m.patients[p.ID]
	if !ok {
		return ErrNotFound
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now()
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.patients[id]; !ok {
		return ErrNotFound
	}
	delete(m.patients, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	all := m.all()
	return page(all, limit, offset), len(all), nil
}

func (m *mockRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, limit, offset int) ([]*Patient, int, error) {
	var matched []*Patient
	for _, p := range m.all() {
		if p.DoctorID != nil && *p.DoctorID == doctorID {
			matched = append(matched, p)
		}
	}
	return page(matched, limit, offset), len(matched), nil
}

func (m *mockRepo) LatestByUser(_ context.Context, userID uuid.UUID) (*Patient, error) {
	var latest *Patient
	for _, p := range m.patients {
		if p.UserID != userID {
			continue
		}
		if latest == nil || p.UpdatedAt.After(latest.UpdatedAt) ||
			(p.UpdatedAt.Equal(latest.UpdatedAt) && p.ID.String() > latest.ID.String()) {
			latest = p
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *mockRepo) SetMedicines(_ context.Context, id uuid.UUID, meds []Medicine) error {
	p, ok := m.patients[id]
	if !ok {
		return ErrNotFound
	}
	p.Medicines = meds
	p.UpdatedAt = time.Now()
	return nil
}

func (m *mockRepo) all() []*Patient {
	var out []*Patient
	for _, p := range m.patients {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func page(in []*Patient, limit, offset int) []*Patient {
	if offset >= len(in) {
		return nil
	}
	end := offset + limit
	if end > len(in) {
		end = len(in)
	}
	return in[offset:end]
}

func TestCreatePatientValidation(t *testing.T) {
	svc := NewService(newMockRepo())

	p := &Patient{
		UserID: uuid.New(),
		Name:   "Ramesh Kumar",
		Medicines: []Medicine{
			{Name: "Aspirin", Dose: "100mg", Times: []string{"08:00", "20:00"}},
		},
	}
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("create did not assign an id")
	}

	bad := &Patient{
		UserID:    uuid.New(),
		Name:      "Bad Times",
		Medicines: []Medicine{{Name: "Aspirin", Times: []string{"25:00"}}},
	}
	if err := svc.CreatePatient(context.Background(), bad); err == nil {
		t.Error("invalid medicine time accepted at create")
	}
}

func TestLatestPatient(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	userID := uuid.New()

	older := &Patient{UserID: userID, Name: "First Record"}
	if err := svc.CreatePatient(context.Background(), older); err != nil {
		t.Fatalf("create: %v", err)
	}
	newer := &Patient{UserID: userID, Name: "Second Record"}
	if err := svc.CreatePatient(context.Background(), newer); err != nil {
		t.Fatalf("create: %v", err)
	}
	// Force a clear ordering between the two records.
	repo.patients[older.ID].UpdatedAt = time.Now().Add(-time.Hour)

	got, err := svc.LatestPatient(context.Background(), userID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if got.ID != newer.ID {
		t.Errorf("latest = %q, want %q", got.Name, newer.Name)
	}

	if _, err := svc.LatestPatient(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("latest for unknown user: %v, want ErrNotFound", err)
	}
}

func TestSetMedicinesReplacesWholeList(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	p := &Patient{
		UserID:    uuid.New(),
		Name:      "Ramesh Kumar",
		Medicines: []Medicine{{Name: "Aspirin", Times: []string{"08:00"}}},
	}
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("create: %v", err)
	}
	before := repo.patients[p.ID].UpdatedAt

	newList := []Medicine{
		{Name: "Metformin", Times: []string{"09:00", "21:00"}},
		{Name: "Atorvastatin", Times: []string{"22:00"}},
	}
	if err := svc.SetMedicines(context.Background(), p.ID, newList); err != nil {
		t.Fatalf("set medicines: %v", err)
	}

	got, _ := svc.GetPatient(context.Background(), p.ID)
	if len(got.Medicines) != 2 || got.Medicines[0].Name != "Metformin" {
		t.Errorf("medicines after replace: %+v", got.Medicines)
	}
	if !got.UpdatedAt.After(before) && !got.UpdatedAt.Equal(before) {
		t.Error("updated_at not bumped by prescription change")
	}

	// One bad entry rejects the whole update.
	bad := []Medicine{
		{Name: "Metformin", Times: []string{"09:00"}},
		{Name: "Broken", Times: []string{"24:00"}},
	}
	if err := svc.SetMedicines(context.Background(), p.ID, bad); err == nil {
		t.Error("invalid entry accepted")
	}
	if dup := svc.SetMedicines(context.Background(), p.ID, []Medicine{
		{Name: "Metformin", Times: []string{"09:00"}},
		{Name: "Metformin", Times: []string{"21:00"}},
	}); dup == nil {
		t.Error("duplicate medicine names accepted")
	}
}

func TestMedicinesForReminderSession(t *testing.T) {
	svc := NewService(newMockRepo())

	p := &Patient{
		UserID: uuid.New(),
		Name:   "Ramesh Kumar",
		Medicines: []Medicine{
			{Name: "Aspirin", Dose: "100mg", Times: []string{"08:00"}, Frequency: 1},
		},
	}
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("create: %v", err)
	}

	meds, err := svc.Medicines(context.Background(), p.ID.String())
	if err != nil {
		t.Fatalf("medicines: %v", err)
	}
	if len(meds) != 1 || meds[0].Name != "Aspirin" || meds[0].Dose != "100mg" {
		t.Errorf("converted medicines: %+v", meds)
	}

	if _, err := svc.Medicines(context.Background(), "not-a-uuid"); err == nil {
		t.Error("invalid patient id accepted")
	}
	// An unknown patient yields an empty schedule, not an error.
	empty, err := svc.Medicines(context.Background(), uuid.New().String())
	if err != nil {
		t.Fatalf("unknown patient: %v, want empty schedule", err)
	}
	if len(empty) != 0 {
		t.Errorf("unknown patient medicines: %+v, want none", empty)
	}
}
