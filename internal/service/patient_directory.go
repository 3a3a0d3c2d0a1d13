package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	"github.com/diabetes-prediction-engine/internal/domain"
)

// PatientDirectory resolves patients by id through a short-lived cache in
// front of the patient repository. It implements domain.PatientFinder.
type PatientDirectory struct {
	repo   domain.PatientRepository
	cache  *expirable.LRU[int64, *domain.Patient]
	logger *logrus.Logger
}

// NewPatientDirectory creates a directory caching up to size patients for ttl.
func NewPatientDirectory(repo domain.PatientRepository, size int, ttl time.Duration, logger *logrus.Logger) *PatientDirectory {
	if size <= 0 {
		size = 256
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PatientDirectory{
		repo:   repo,
		cache:  expirable.NewLRU[int64, *domain.Patient](size, nil, ttl),
		logger: logger,
	}
}

// FindPatient returns the patient or an error wrapping domain.ErrNotFound.
func (d *PatientDirectory) FindPatient(ctx context.Context, id int64) (*domain.Patient, error) {
	if p, ok := d.cache.Get(id); ok {
		return p, nil
	}

	p, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find patient %d: %w", id, err)
	}

	d.cache.Add(id, p)
	return p, nil
}

// Forget drops a patient from the cache after an update or delete.
func (d *PatientDirectory) Forget(id int64) {
	d.cache.Remove(id)
}

// Create stores a new patient.
func (d *PatientDirectory) Create(ctx context.Context, p *domain.Patient) error {
	if err := d.repo.Create(ctx, p); err != nil {
		return err
	}
	d.logger.WithField("patient_id", p.ID).Info("Patient created")
	return nil
}

// Update stores changes to an existing patient.
func (d *PatientDirectory) Update(ctx context.Context, p *domain.Patient) error {
	if err := d.repo.Update(ctx, p); err != nil {
		return err
	}
	d.Forget(p.ID)
	return nil
}

// Delete removes a patient.
func (d *PatientDirectory) Delete(ctx context.Context, id int64) error {
	if err := d.repo.Delete(ctx, id); err != nil {
		return err
	}
	d.Forget(id)
	d.logger.WithField("patient_id", id).Info("Patient deleted")
	return nil
}

// List returns a page of patients straight from the repository.
func (d *PatientDirectory) List(ctx context.Context, limit, offset int) ([]*domain.Patient, error) {
	return d.repo.List(ctx, limit, offset)
}

// FindByCode looks a patient up by clinic code.
func (d *PatientDirectory) FindByCode(ctx context.Context, code string) (*domain.Patient, error) {
	return d.repo.GetByCode(ctx, code)
}

// FindByEmail looks a patient up by email address.
func (d *PatientDirectory) FindByEmail(ctx context.Context, email string) (*domain.Patient, error) {
	return d.repo.GetByEmail(ctx, email)
}
