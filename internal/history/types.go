// Package history stores finished evaluations so they can be listed,
// counted per predicted type and exported.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/diabetes-prediction-engine/internal/domain"
)

// Record is one stored evaluation.
type Record struct {
	ID        int64  `json:"idEvaluacion,omitempty"`
	Reference string `json:"referencia"`
	PatientID *int64 `json:"idPaciente,omitempty"`

	// Headline vitals, copied out of the request for querying.
	Age           *float64 `json:"edad,omitempty"`
	Glucose       *float64 `json:"nivelesGlucosa,omitempty"`
	Insulin       *float64 `json:"nivelesInsulina,omitempty"`
	BMI           *float64 `json:"indiceMasaCorporal,omitempty"`
	BloodPressure *float64 `json:"presionArterial,omitempty"`
	Cholesterol   *float64 `json:"nivelesColesterol,omitempty"`

	Input json.RawMessage `json:"datosEntrada,omitempty"`

	DiabetesType    string            `json:"tipoDiabetes"`
	DiabetesTypeEs  string            `json:"tipoDiabetesEs"`
	Probability     float64           `json:"probabilidad"`
	Provenance      domain.Provenance `json:"provenance"`
	Explanation     string            `json:"explicacion"`
	Recommendations string            `json:"recomendaciones"`

	PressureClass    string `json:"clasificacionPresion,omitempty"`
	CholesterolClass string `json:"clasificacionColesterol,omitempty"`
	InsulinClass     string `json:"clasificacionInsulina,omitempty"`
	GlucoseClass     string `json:"clasificacionGlucosa,omitempty"`
	AgeClass         string `json:"clasificacionEdad,omitempty"`

	EvaluatedAt time.Time `json:"fechaEvaluacion"`
	CreatedAt   time.Time `json:"fechaCreacion"`
}

// NewRecord snapshots a request and its response. The patient link is left
// for the caller to resolve.
func NewRecord(req *domain.EvaluationRequest, resp *domain.PredictionResponse) (*Record, error) {
	input, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request snapshot: %w", err)
	}

	return &Record{
		Reference:        uuid.New().String(),
		Age:              valueOf(req.Age),
		Glucose:          valueOf(req.GlucoseLevels),
		Insulin:          valueOf(req.InsulinLevels),
		BMI:              valueOf(req.BMI),
		BloodPressure:    valueOf(req.BloodPressure),
		Cholesterol:      valueOf(req.CholesterolLevels),
		Input:            input,
		DiabetesType:     resp.DiabetesType,
		DiabetesTypeEs:   resp.DiabetesTypeEs,
		Probability:      resp.Probability,
		Provenance:       resp.Provenance,
		Explanation:      resp.Explanation,
		Recommendations:  resp.Recommendations,
		PressureClass:    resp.Classifications[domain.IndicatorPressure],
		CholesterolClass: resp.Classifications[domain.IndicatorCholesterol],
		InsulinClass:     resp.Classifications[domain.IndicatorInsulin],
		GlucoseClass:     resp.Classifications[domain.IndicatorGlucose],
		AgeClass:         resp.Classifications[domain.IndicatorAge],
		EvaluatedAt:      resp.PredictedAt,
	}, nil
}

func valueOf(n domain.Number) *float64 {
	if !n.Valid() {
		return nil
	}
	v := n.Value()
	return &v
}

// Store defines the interface for evaluation history storage.
type Store interface {
	// Save inserts a new record and fills in its ID and CreatedAt.
	Save(ctx context.Context, record *Record) error

	// Get returns the record with the given ID or an error wrapping
	// domain.ErrNotFound.
	Get(ctx context.Context, id int64) (*Record, error)

	// GetByReference returns the record with the given reference, or nil when
	// none exists.
	GetByReference(ctx context.Context, reference string) (*Record, error)

	// List returns records newest first.
	List(ctx context.Context, limit, offset int) ([]*Record, error)

	// ListByPatient returns a patient's records newest first.
	ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Record, error)

	// ListByType returns records with the given predicted type newest first.
	ListByType(ctx context.Context, diabetesType string, limit, offset int) ([]*Record, error)

	Count(ctx context.Context) (int64, error)
	CountByType(ctx context.Context, diabetesType string) (int64, error)

	// Delete removes a record. A missing record yields domain.ErrNotFound.
	Delete(ctx context.Context, id int64) error

	// ExportJSON writes every record to writer.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// ImportJSON reads an export and saves records whose reference is not
	// stored yet. Returns the number of imported and skipped records.
	ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error)

	// Close closes the store and releases resources.
	Close() error
}

// Export represents the JSON export format.
type Export struct {
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Count      int       `json:"count"`
	Records    []*Record `json:"evaluaciones"`
}

// ErrInvalidExport is returned by ImportJSON when the document cannot be decoded.
var ErrInvalidExport = errors.New("invalid export document")

// ExportVersion is written into every export.
const ExportVersion = "1.0"

// maxExportLimit is the maximum number of records to export at once.
const maxExportLimit = 1000000

type lister interface {
	List(ctx context.Context, limit, offset int) ([]*Record, error)
}

// BuildExport collects every record into an export document.
func BuildExport(ctx context.Context, store lister) (*Export, error) {
	all, err := store.List(ctx, maxExportLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	if all == nil {
		all = []*Record{}
	}
	return &Export{
		Version:    ExportVersion,
		ExportedAt: time.Now(),
		Count:      len(all),
		Records:    all,
	}, nil
}

func writeExport(ctx context.Context, store lister, writer io.Writer) error {
	export, err := BuildExport(ctx, store)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}

type importer interface {
	GetByReference(ctx context.Context, reference string) (*Record, error)
	Save(ctx context.Context, record *Record) error
}

func importExport(ctx context.Context, store importer, reader io.Reader) (imported int, skipped int, err error) {
	var export Export
	if err := json.NewDecoder(reader).Decode(&export); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrInvalidExport, err)
	}

	for _, rec := range export.Records {
		if rec.Reference == "" {
			rec.Reference = uuid.New().String()
		}

		existing, err := store.GetByReference(ctx, rec.Reference)
		if err != nil {
			return imported, skipped, fmt.Errorf("failed to check existing: %w", err)
		}
		if existing != nil {
			skipped++
			continue
		}

		rec.ID = 0
		if err := store.Save(ctx, rec); err != nil {
			return imported, skipped, fmt.Errorf("failed to save: %w", err)
		}
		imported++
	}

	return imported, skipped, nil
}
