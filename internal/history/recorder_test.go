package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diabetes-prediction-engine/internal/domain"
	"github.com/diabetes-prediction-engine/pkg/archive"
)

type fakePatients struct {
	patients map[int64]*domain.Patient
	err      error
}

func (f *fakePatients) FindPatient(ctx context.Context, id int64) (*domain.Patient, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.patients[id]
	if !ok {
		return nil, fmt.Errorf("patient %d: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func requestFor(t *testing.T, body string) *domain.EvaluationRequest {
	t.Helper()
	var req domain.EvaluationRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return &req
}

func sampleResponse() *domain.PredictionResponse {
	return &domain.PredictionResponse{
		DiabetesType:    domain.TypeCFRD,
		DiabetesTypeEs:  domain.SpanishTypeName(domain.TypeCFRD),
		Probability:     0.81,
		Classifications: domain.ClinicalClassification{domain.IndicatorGlucose: domain.BandDiabetes},
		Provenance:      domain.ProvenanceSimulated,
		PredictedAt:     time.Now(),
	}
}

func TestRecorder_SaveEvaluation(t *testing.T) {
	ctx := context.Background()
	patients := &fakePatients{patients: map[int64]*domain.Patient{
		7: {ID: 7, Code: "PAC-007"},
	}}

	tests := []struct {
		name        string
		body        string
		patients    domain.PatientFinder
		wantPatient *int64
	}{
		{
			name:        "linked patient",
			body:        `{"pacientedto": {"idPaciente": 7}, "edad": 45, "nivelesGlucosa": 180, "nivelesInsulina": 35}`,
			patients:    patients,
			wantPatient: func() *int64 { id := int64(7); return &id }(),
		},
		{
			name:     "unknown patient is dropped",
			body:     `{"pacientedto": {"idPaciente": 99}, "edad": 45, "nivelesGlucosa": 180, "nivelesInsulina": 35}`,
			patients: patients,
		},
		{
			name:     "no patient reference",
			body:     `{"edad": 45, "nivelesGlucosa": 180, "nivelesInsulina": 35}`,
			patients: patients,
		},
		{
			name: "no patient finder",
			body: `{"pacientedto": {"idPaciente": 7}, "edad": 45, "nivelesGlucosa": 180, "nivelesInsulina": 35}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := createTestStore(t)
			defer store.Close()

			recorder := NewRecorder(store, tt.patients, quietLogger())
			id, err := recorder.SaveEvaluation(ctx, requestFor(t, tt.body), sampleResponse())
			require.NoError(t, err)
			require.NotZero(t, id)

			got, err := store.Get(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, domain.TypeCFRD, got.DiabetesType)
			assert.Equal(t, tt.wantPatient, got.PatientID)
		})
	}
}

func TestRecorder_PatientLookupFailure(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	recorder := NewRecorder(store, &fakePatients{err: errors.New("connection refused")}, quietLogger())
	_, err := recorder.SaveEvaluation(context.Background(),
		requestFor(t, `{"pacientedto": {"idPaciente": 7}, "edad": 45}`), sampleResponse())
	require.Error(t, err)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestArchiveExport(t *testing.T) {
	ctx := context.Background()
	store := createTestStore(t)
	defer store.Close()

	recorder := NewRecorder(store, nil, quietLogger())
	for i := 0; i < 3; i++ {
		_, err := recorder.SaveEvaluation(ctx, requestFor(t, `{"edad": 50}`), sampleResponse())
		require.NoError(t, err)
	}

	sink, err := archive.NewFileArchiver(t.TempDir(), quietLogger())
	require.NoError(t, err)

	result, err := ArchiveExport(ctx, store, sink, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Count)
	assert.Contains(t, result.Key, "evaluaciones/")

	rc, err := sink.Get(ctx, result.Key)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)

	var export Export
	require.NoError(t, json.Unmarshal(body, &export))
	assert.Len(t, export.Records, 3)
}
