package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/diabetes-prediction-engine/internal/domain"
	"github.com/diabetes-prediction-engine/pkg/archive"
)

// Recorder persists finished evaluations. It implements domain.EvaluationSaver.
type Recorder struct {
	store    Store
	patients domain.PatientFinder
	logger   *logrus.Logger
}

// NewRecorder creates a recorder. patients may be nil, in which case no
// evaluation is linked to a patient.
func NewRecorder(store Store, patients domain.PatientFinder, logger *logrus.Logger) *Recorder {
	return &Recorder{
		store:    store,
		patients: patients,
		logger:   logger,
	}
}

// SaveEvaluation stores the evaluation and returns its id. A referenced
// patient that does not exist is dropped from the record rather than failing
// the save.
func (r *Recorder) SaveEvaluation(ctx context.Context, req *domain.EvaluationRequest, resp *domain.PredictionResponse) (int64, error) {
	record, err := NewRecord(req, resp)
	if err != nil {
		return 0, err
	}

	if id := req.PatientID(); id > 0 && r.patients != nil {
		patient, err := r.patients.FindPatient(ctx, id)
		switch {
		case err == nil:
			record.PatientID = &patient.ID
		case errors.Is(err, domain.ErrNotFound):
			r.logger.WithField("patient_id", id).Warn("Patient not found, saving evaluation without patient")
		default:
			return 0, fmt.Errorf("failed to resolve patient %d: %w", id, err)
		}
	}

	if err := r.store.Save(ctx, record); err != nil {
		return 0, fmt.Errorf("failed to save evaluation: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"evaluation_id": record.ID,
		"diabetes_type": record.DiabetesType,
		"patient_id":    record.PatientID,
	}).Info("Evaluation saved")
	return record.ID, nil
}

// ArchiveResult describes one export written to the archive.
type ArchiveResult struct {
	Key        string    `json:"key"`
	Location   string    `json:"location"`
	Count      int       `json:"count"`
	ExportedAt time.Time `json:"exported_at"`
}

// ArchiveExport writes a full export of store to sink under a fresh key.
func ArchiveExport(ctx context.Context, store Store, sink archive.Archiver, logger *logrus.Logger) (*ArchiveResult, error) {
	export, err := BuildExport(ctx, store)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(export); err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}

	key := archive.NewKey("evaluaciones", export.ExportedAt)
	location, err := sink.Put(ctx, key, &buf, "application/json")
	if err != nil {
		return nil, fmt.Errorf("failed to archive export: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"key":   key,
		"count": export.Count,
	}).Info("History export archived")

	return &ArchiveResult{
		Key:        key,
		Location:   location,
		Count:      export.Count,
		ExportedAt: export.ExportedAt,
	}, nil
}
