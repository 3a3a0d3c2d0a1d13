package mcp

import (
	"context"
	"errors"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diabetes-prediction-engine/internal/catalog"
	"github.com/diabetes-prediction-engine/internal/config"
	"github.com/diabetes-prediction-engine/internal/domain"
	"github.com/diabetes-prediction-engine/internal/history"
	"github.com/diabetes-prediction-engine/internal/service"
	"github.com/diabetes-prediction-engine/pkg/archive"
	"github.com/diabetes-prediction-engine/pkg/external"
)

type failingPredictor struct {
	err error
}

func (f *failingPredictor) Predict(context.Context, *domain.EvaluationRequest) (*domain.PredictionResponse, error) {
	return nil, f.err
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func ptr[T any](v T) *T {
	return &v
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

type toolsEnv struct {
	tools     *Tools
	predictor *service.Predictor
	store     history.Store
	sink      *archive.FileArchiver
}

func newToolsEnv(t *testing.T) *toolsEnv {
	t.Helper()
	logger := quietLogger()

	store, err := history.NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	sink, err := archive.NewFileArchiver(t.TempDir(), logger)
	require.NoError(t, err)

	types := catalog.NewMemoryStore()
	scorer := external.NewScorerClient(external.ScorerConfig{Enabled: false, BaseURL: "http://127.0.0.1:1"}, logger)
	predictor := service.NewPredictor(
		service.PredictorConfig{PersistTimeout: time.Second},
		service.NewFallbackScorer(rand.New(rand.NewSource(1)), 0, logger),
		scorer,
		types,
		history.NewRecorder(store, nil, logger),
		logger,
	)

	return &toolsEnv{
		tools:     NewTools(predictor, service.NewMLIntegrationService(scorer, types, logger), store, sink, logger),
		predictor: predictor,
		store:     store,
		sink:      sink,
	}
}

func TestPredictInput_Request(t *testing.T) {
	in := PredictInput{
		PatientID:      ptr(int64(7)),
		Age:            ptr(45.0),
		GlucoseLevels:  ptr(180.0),
		Autoantibodies: "Negative",
	}

	req := in.Request()
	assert.Equal(t, int64(7), req.PatientID())
	assert.True(t, req.Age.Valid())
	assert.Equal(t, 180.0, req.GlucoseLevels.Value())
	assert.False(t, req.InsulinLevels.Present())
	assert.Equal(t, "Negative", req.Autoantibodies)

	in.PatientID = ptr(int64(0))
	assert.Nil(t, in.Request().Patient)
}

func TestHandlePredict(t *testing.T) {
	env := newToolsEnv(t)
	ctx := context.Background()

	res, out, err := env.tools.handlePredict(ctx, nil, PredictInput{
		PatientID:         ptr(int64(3)),
		Age:               ptr(45.0),
		GlucoseLevels:     ptr(180.0),
		InsulinLevels:     ptr(28.0),
		BloodPressure:     ptr(130.0),
		CholesterolLevels: ptr(220.0),
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)

	assert.Equal(t, domain.TypeTwo, out.DiabetesType)
	assert.Equal(t, "Diabetes Tipo 2", out.DiabetesTypeEs)
	assert.Equal(t, string(domain.ProvenanceSimulated), out.Provenance)
	assert.Equal(t, domain.BandDiabetes, out.Classifications["glucose"])
	assert.Equal(t, domain.BandHigh, out.Classifications["cholesterol"])
	_, err = time.Parse(time.RFC3339, out.PredictedAt)
	assert.NoError(t, err)
	assert.Contains(t, resultText(t, res), "Diabetes Tipo 2")

	env.predictor.Wait()
	count, err := env.store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestHandlePredict_Errors(t *testing.T) {
	env := newToolsEnv(t)

	res, _, err := env.tools.handlePredict(context.Background(), nil, PredictInput{Age: ptr(130.0)})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "Datos de entrada inválidos")

	env.tools.predictor = &failingPredictor{err: errors.New("boom")}
	res, _, err = env.tools.handlePredict(context.Background(), nil, PredictInput{Age: ptr(30.0)})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleClassifyVitals(t *testing.T) {
	env := newToolsEnv(t)

	tests := []struct {
		name    string
		in      VitalsInput
		want    map[string]string
		isError bool
	}{
		{
			name: "glucose bands",
			in:   VitalsInput{GlucoseLevels: ptr(110.0)},
			want: map[string]string{"glucose": domain.BandPrediabetes},
		},
		{
			name: "all indicators",
			in: VitalsInput{
				Age:               ptr(70.0),
				GlucoseLevels:     ptr(80.0),
				InsulinLevels:     ptr(10.0),
				BloodPressure:     ptr(130.0),
				CholesterolLevels: ptr(220.0),
			},
			want: map[string]string{
				"age":         domain.BandElderly,
				"glucose":     domain.BandNormal,
				"insulin":     domain.BandNormal,
				"pressure":    domain.BandNormal,
				"cholesterol": domain.BandHigh,
			},
		},
		{
			name:    "nothing supplied",
			in:      VitalsInput{},
			want:    map[string]string{},
			isError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, out, err := env.tools.handleClassifyVitals(context.Background(), nil, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.isError, res.IsError)
			assert.Equal(t, tt.want, out.Classifications)
		})
	}
}

func TestHandleScorerStatus(t *testing.T) {
	env := newToolsEnv(t)

	res, out, err := env.tools.handleScorerStatus(context.Background(), nil, ScorerStatusInput{})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.False(t, out.Enabled)
	assert.False(t, out.Available)
	assert.Equal(t, "http://127.0.0.1:1", out.BaseURL)
	assert.Contains(t, resultText(t, res), "simulado")
}

func TestHandleListEvaluations(t *testing.T) {
	env := newToolsEnv(t)
	ctx := context.Background()

	res, out, err := env.tools.handleListEvaluations(ctx, nil, ListEvaluationsInput{})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Count)
	assert.Equal(t, "No hay evaluaciones registradas", resultText(t, res))

	for _, patient := range []int64{1, 2} {
		_, _, err := env.tools.handlePredict(ctx, nil, PredictInput{
			PatientID:     ptr(patient),
			Age:           ptr(45.0),
			GlucoseLevels: ptr(180.0),
			InsulinLevels: ptr(28.0),
		})
		require.NoError(t, err)
	}
	env.predictor.Wait()

	_, out, err = env.tools.handleListEvaluations(ctx, nil, ListEvaluationsInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)

	_, out, err = env.tools.handleListEvaluations(ctx, nil, ListEvaluationsInput{PatientID: ptr(int64(2))})
	require.NoError(t, err)
	require.Equal(t, 1, out.Count)
	assert.Equal(t, int64(2), out.Evaluations[0].PatientID)

	_, out, err = env.tools.handleListEvaluations(ctx, nil, ListEvaluationsInput{DiabetesType: domain.TypeTwo, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Count)

	res, _, err = env.tools.handleListEvaluations(ctx, nil, ListEvaluationsInput{DiabetesType: "Type 9"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleExport(t *testing.T) {
	env := newToolsEnv(t)
	ctx := context.Background()

	res, out, err := env.tools.handleExport(ctx, nil, ExportInput{})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, 0, out.Count)

	rc, err := env.sink.Get(ctx, out.Key)
	require.NoError(t, err)
	rc.Close()
}

func TestNewLiteServer(t *testing.T) {
	cfg := config.DefaultLiteConfig()
	cfg.DataDir = t.TempDir()
	cfg.ScorerEnabled = false

	server, err := NewLiteServer(cfg, WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.NotNil(t, server.mcpServer)
	assert.NotNil(t, server.HistoryStore())
	assert.FileExists(t, cfg.HistoryDBPath())
	assert.DirExists(t, cfg.ExportDir())

	require.NoError(t, server.Close())
}
