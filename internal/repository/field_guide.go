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

// FieldGuideRepository reads and seeds the input field guides.
type FieldGuideRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewFieldGuideRepository creates a new field guide repository
func NewFieldGuideRepository(db *pgxpool.Pool, logger *logrus.Logger) *FieldGuideRepository {
	return &FieldGuideRepository{
		db:  db,
		log: logger,
	}
}

const fieldGuideColumns = `id, field_name, title_es, description_es, examples, recommended_range, unit`

func scanFieldGuide(row pgx.Row) (*domain.FieldGuide, error) {
	var g domain.FieldGuide
	if err := row.Scan(&g.ID, &g.FieldName, &g.TitleEs, &g.DescriptionEs, &g.Examples, &g.RecommendedRange, &g.Unit); err != nil {
		return nil, err
	}
	return &g, nil
}

// FindByField retrieves the guide for one input field
func (r *FieldGuideRepository) FindByField(ctx context.Context, field string) (*domain.FieldGuide, error) {
	g, err := scanFieldGuide(r.db.QueryRow(ctx,
		`SELECT `+fieldGuideColumns+` FROM field_guides WHERE field_name = $1`, field))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("field guide %q not found: %w", field, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting field guide: %w", err)
	}
	return g, nil
}

// List retrieves every guide in insertion order
func (r *FieldGuideRepository) List(ctx context.Context) ([]*domain.FieldGuide, error) {
	rows, err := r.db.Query(ctx, `SELECT `+fieldGuideColumns+` FROM field_guides ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing field guides: %w", err)
	}
	defer rows.Close()

	guides := []*domain.FieldGuide{}
	for rows.Next() {
		g, err := scanFieldGuide(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning field guide row: %w", err)
		}
		guides = append(guides, g)
	}
	return guides, rows.Err()
}

// SeedIfEmpty inserts guides when the table has no rows.
func (r *FieldGuideRepository) SeedIfEmpty(ctx context.Context, guides []*domain.FieldGuide) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var existing int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM field_guides`).Scan(&existing); err != nil {
		return 0, fmt.Errorf("counting field guides: %w", err)
	}
	if existing > 0 {
		return 0, nil
	}

	rows := make([][]interface{}, 0, len(guides))
	for _, g := range guides {
		rows = append(rows, []interface{}{g.FieldName, g.TitleEs, g.DescriptionEs, g.Examples, g.RecommendedRange, g.Unit})
	}
	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{"field_guides"},
		[]string{"field_name", "title_es", "description_es", "examples", "recommended_range", "unit"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting field guides: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing seed transaction: %w", err)
	}

	r.log.WithField("count", n).Info("Seeded field guides")
	return int(n), nil
}
