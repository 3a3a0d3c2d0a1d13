package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	_ "github.com/lib/pq"

	"github.com/diabetes-prediction-engine/internal/domain"
)

// PostgresStore implements the Store interface using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL history store.
// It expects the schema to already exist (created via migrations).
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromURL creates a new PostgreSQL history store from a connection URL.
func NewPostgresStoreFromURL(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Save inserts a new evaluation record.
func (s *PostgresStore) Save(ctx context.Context, record *Record) error {
	now := time.Now()
	record.CreatedAt = now
	if record.EvaluatedAt.IsZero() {
		record.EvaluatedAt = now
	}

	query := `
		INSERT INTO evaluations (` + insertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, record.insertArgs()...).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save evaluation: %w", err)
	}
	return nil
}

// Get retrieves an evaluation by ID.
func (s *PostgresStore) Get(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM evaluations WHERE id = $1`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("evaluation %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get evaluation: %w", err)
	}
	return rec, nil
}

// GetByReference retrieves an evaluation by its reference.
func (s *PostgresStore) GetByReference(ctx context.Context, reference string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM evaluations WHERE reference = $1 LIMIT 1`, reference)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get evaluation: %w", err)
	}
	return rec, nil
}

// List returns all evaluations with pagination.
func (s *PostgresStore) List(ctx context.Context, limit, offset int) ([]*Record, error) {
	return s.query(ctx,
		`SELECT `+recordColumns+` FROM evaluations
		ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
}

// ListByPatient returns a patient's evaluations with pagination.
func (s *PostgresStore) ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Record, error) {
	return s.query(ctx,
		`SELECT `+recordColumns+` FROM evaluations WHERE patient_id = $1
		ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
}

// ListByType returns evaluations with the given predicted type.
func (s *PostgresStore) ListByType(ctx context.Context, diabetesType string, limit, offset int) ([]*Record, error) {
	return s.query(ctx,
		`SELECT `+recordColumns+` FROM evaluations WHERE diabetes_type = $1
		ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		diabetesType, limit, offset)
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...interface{}) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}

	result, err := scanRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}
	return result, nil
}

// Count returns the total number of evaluations.
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM evaluations").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count evaluations: %w", err)
	}
	return count, nil
}

// CountByType returns the number of evaluations predicting diabetesType.
func (s *PostgresStore) CountByType(ctx context.Context, diabetesType string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM evaluations WHERE diabetes_type = $1", diabetesType,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count evaluations for %s: %w", diabetesType, err)
	}
	return count, nil
}

// Delete removes an evaluation by ID.
func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM evaluations WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete evaluation: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("evaluation %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ExportJSON exports all evaluations to a JSON writer.
func (s *PostgresStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	return writeExport(ctx, s, writer)
}

// ImportJSON imports evaluations from a JSON reader.
func (s *PostgresStore) ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error) {
	return importExport(ctx, s, reader)
}

// Close closes the store and releases resources.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
