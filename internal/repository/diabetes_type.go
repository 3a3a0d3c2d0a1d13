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

// DiabetesTypeRepository reads and seeds the diabetes type reference table.
type DiabetesTypeRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewDiabetesTypeRepository creates a new diabetes type repository
func NewDiabetesTypeRepository(db *pgxpool.Pool, logger *logrus.Logger) *DiabetesTypeRepository {
	return &DiabetesTypeRepository{
		db:  db,
		log: logger,
	}
}

const diabetesTypeColumns = `id, name_en, name_es, description, causes, symptoms,
	treatment, recommendations, is_common`

func scanDiabetesType(row pgx.Row) (*domain.DiabetesTypeInfo, error) {
	var t domain.DiabetesTypeInfo
	err := row.Scan(
		&t.ID,
		&t.NameEn,
		&t.NameEs,
		&t.Description,
		&t.Causes,
		&t.Symptoms,
		&t.Treatment,
		&t.Recommendations,
		&t.IsCommon,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FindByCanonicalName retrieves a type by its English name
func (r *DiabetesTypeRepository) FindByCanonicalName(ctx context.Context, name string) (*domain.DiabetesTypeInfo, error) {
	query := `SELECT ` + diabetesTypeColumns + ` FROM diabetes_types WHERE name_en = $1`

	t, err := scanDiabetesType(r.db.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("diabetes type %q not found: %w", name, domain.ErrNotFound)
		}
		r.log.WithFields(logrus.Fields{
			"diabetes_type": name,
			"error":         err,
		}).Error("Failed to get diabetes type")
		return nil, fmt.Errorf("getting diabetes type: %w", err)
	}
	return t, nil
}

// List retrieves every stored type in insertion order
func (r *DiabetesTypeRepository) List(ctx context.Context) ([]*domain.DiabetesTypeInfo, error) {
	rows, err := r.db.Query(ctx, `SELECT `+diabetesTypeColumns+` FROM diabetes_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing diabetes types: %w", err)
	}
	defer rows.Close()

	types := []*domain.DiabetesTypeInfo{}
	for rows.Next() {
		t, err := scanDiabetesType(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning diabetes type row: %w", err)
		}
		types = append(types, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating diabetes type rows: %w", err)
	}

	return types, nil
}

// SeedIfEmpty inserts types when the table has no rows and returns how many
// were inserted.
func (r *DiabetesTypeRepository) SeedIfEmpty(ctx context.Context, types []*domain.DiabetesTypeInfo) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var existing int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM diabetes_types`).Scan(&existing); err != nil {
		return 0, fmt.Errorf("counting diabetes types: %w", err)
	}
	if existing > 0 {
		r.log.WithField("existing", existing).Debug("Diabetes types already seeded")
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, t := range types {
		batch.Queue(`
			INSERT INTO diabetes_types (name_en, name_es, description, causes, symptoms,
				treatment, recommendations, is_common)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			t.NameEn, t.NameEs, t.Description, t.Causes, t.Symptoms,
			t.Treatment, t.Recommendations, t.IsCommon,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("inserting diabetes types: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing seed transaction: %w", err)
	}

	r.log.WithField("count", len(types)).Info("Seeded diabetes types")
	return len(types), nil
}
