package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/diabetes-prediction-engine/internal/domain"
)

// PatientRepository handles patient persistence
type PatientRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewPatientRepository creates a new patient repository
func NewPatientRepository(db *pgxpool.Pool, logger *logrus.Logger) *PatientRepository {
	return &PatientRepository{
		db:  db,
		log: logger,
	}
}

const patientColumns = `id, code, name, birth_date, gender, phone, email, address`

func scanPatient(row pgx.Row) (*domain.Patient, error) {
	var p domain.Patient
	err := row.Scan(
		&p.ID,
		&p.Code,
		&p.Name,
		&p.BirthDate,
		&p.Gender,
		&p.Phone,
		&p.Email,
		&p.Address,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new patient and sets its ID
func (r *PatientRepository) Create(ctx context.Context, p *domain.Patient) error {
	query := `
		INSERT INTO patients (code, name, birth_date, gender, phone, email, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		p.Code, p.Name, p.BirthDate, p.Gender, p.Phone, p.Email, p.Address,
	).Scan(&p.ID)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"code":  p.Code,
			"error": err,
		}).Error("Failed to create patient")
		return fmt.Errorf("creating patient: %w", err)
	}

	return nil
}

// GetByID retrieves a patient by ID
func (r *PatientRepository) GetByID(ctx context.Context, id int64) (*domain.Patient, error) {
	return r.getOne(ctx, "id", id)
}

// GetByCode retrieves a patient by clinic code
func (r *PatientRepository) GetByCode(ctx context.Context, code string) (*domain.Patient, error) {
	return r.getOne(ctx, "code", code)
}

// GetByEmail retrieves a patient by email address
func (r *PatientRepository) GetByEmail(ctx context.Context, email string) (*domain.Patient, error) {
	return r.getOne(ctx, "email", email)
}

// getOne looks a patient up by a fixed column name.
func (r *PatientRepository) getOne(ctx context.Context, column string, value interface{}) (*domain.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE ` + column + ` = $1 LIMIT 1`

	p, err := scanPatient(r.db.QueryRow(ctx, query, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("patient %s=%v not found: %w", column, value, domain.ErrNotFound)
		}
		r.log.WithFields(logrus.Fields{
			column:  value,
			"error": err,
		}).Error("Failed to get patient")
		return nil, fmt.Errorf("getting patient by %s: %w", column, err)
	}
	return p, nil
}

// List retrieves patients ordered by name with pagination
func (r *PatientRepository) List(ctx context.Context, limit, offset int) ([]*domain.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients ORDER BY name, id LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing patients: %w", err)
	}
	defer rows.Close()

	patients := []*domain.Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning patient row: %w", err)
		}
		patients = append(patients, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating patient rows: %w", err)
	}

	return patients, nil
}

// Update updates an existing patient
func (r *PatientRepository) Update(ctx context.Context, p *domain.Patient) error {
	query := `
		UPDATE patients
		SET code = $2, name = $3, birth_date = $4, gender = $5, phone = $6,
			email = $7, address = $8, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query,
		p.ID, p.Code, p.Name, p.BirthDate, p.Gender, p.Phone, p.Email, p.Address,
	)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"patient_id": p.ID,
			"error":      err,
		}).Error("Failed to update patient")
		return fmt.Errorf("updating patient: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("patient %d not found: %w", p.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a patient. Evaluations keep their data but lose the link.
func (r *PatientRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"patient_id": id,
			"error":      err,
		}).Error("Failed to delete patient")
		return fmt.Errorf("deleting patient: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("patient %d not found: %w", id, domain.ErrNotFound)
	}

	return nil
}
