package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/diabetes-prediction-engine/internal/domain"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite history store.
// It creates the database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// createSchema creates the database tables and indexes.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS evaluations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		reference TEXT NOT NULL UNIQUE,
		patient_id INTEGER,
		age REAL,
		glucose REAL,
		insulin REAL,
		bmi REAL,
		blood_pressure REAL,
		cholesterol REAL,
		input TEXT,
		diabetes_type TEXT NOT NULL,
		diabetes_type_es TEXT NOT NULL DEFAULT '',
		probability REAL NOT NULL,
		provenance TEXT NOT NULL DEFAULT '',
		explanation TEXT NOT NULL DEFAULT '',
		recommendations TEXT NOT NULL DEFAULT '',
		pressure_class TEXT NOT NULL DEFAULT '',
		cholesterol_class TEXT NOT NULL DEFAULT '',
		insulin_class TEXT NOT NULL DEFAULT '',
		glucose_class TEXT NOT NULL DEFAULT '',
		age_class TEXT NOT NULL DEFAULT '',
		evaluated_at DATETIME NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_evaluations_patient ON evaluations(patient_id);
	CREATE INDEX IF NOT EXISTS idx_evaluations_type ON evaluations(diabetes_type);
	CREATE INDEX IF NOT EXISTS idx_evaluations_created_at ON evaluations(created_at);
	`

	_, err := db.Exec(schema)
	return err
}

// Save inserts a new evaluation record.
func (s *SQLiteStore) Save(ctx context.Context, record *Record) error {
	now := time.Now()
	record.CreatedAt = now
	if record.EvaluatedAt.IsZero() {
		record.EvaluatedAt = now
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO evaluations (`+insertColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.insertArgs()...,
	)
	if err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert ID: %w", err)
	}
	record.ID = id

	return nil
}

// Get retrieves an evaluation by ID.
func (s *SQLiteStore) Get(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM evaluations WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("evaluation %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	return rec, nil
}

// GetByReference retrieves an evaluation by its reference.
func (s *SQLiteStore) GetByReference(ctx context.Context, reference string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM evaluations WHERE reference = ? LIMIT 1`, reference)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	return rec, nil
}

// List returns all evaluations with pagination.
func (s *SQLiteStore) List(ctx context.Context, limit, offset int) ([]*Record, error) {
	return s.query(ctx,
		`SELECT `+recordColumns+` FROM evaluations
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		limit, offset)
}

// ListByPatient returns a patient's evaluations with pagination.
func (s *SQLiteStore) ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Record, error) {
	return s.query(ctx,
		`SELECT `+recordColumns+` FROM evaluations WHERE patient_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		patientID, limit, offset)
}

// ListByType returns evaluations with the given predicted type.
func (s *SQLiteStore) ListByType(ctx context.Context, diabetesType string, limit, offset int) ([]*Record, error) {
	return s.query(ctx,
		`SELECT `+recordColumns+` FROM evaluations WHERE diabetes_type = ?
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		diabetesType, limit, offset)
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...interface{}) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	result, err := scanRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}
	return result, nil
}

// Count returns the total number of evaluations.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM evaluations").Scan(&count)
	return count, err
}

// CountByType returns the number of evaluations predicting diabetesType.
func (s *SQLiteStore) CountByType(ctx context.Context, diabetesType string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM evaluations WHERE diabetes_type = ?", diabetesType,
	).Scan(&count)
	return count, err
}

// Delete removes an evaluation by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM evaluations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete: %w", err)
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
func (s *SQLiteStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	return writeExport(ctx, s, writer)
}

// ImportJSON imports evaluations from a JSON reader.
func (s *SQLiteStore) ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error) {
	return importExport(ctx, s, reader)
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
