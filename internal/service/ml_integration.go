package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/diabetes-prediction-engine/internal/domain"
	"github.com/diabetes-prediction-engine/pkg/external"
)

// ScorerInspector is the diagnostic surface of the remote scorer client.
type ScorerInspector interface {
	Enabled() bool
	Available(ctx context.Context) bool
	Probe(ctx context.Context) bool
	SelfTest(ctx context.Context) *domain.ScoreResult
	ModelInfo(ctx context.Context) (map[string]interface{}, error)
	Status() external.ScorerStatus
}

// MLStatus reports how the remote scorer integration looks right now.
type MLStatus struct {
	Enabled   bool                   `json:"apiPythonHabilitada"`
	Available bool                   `json:"apiPythonDisponible"`
	ModelInfo map[string]interface{} `json:"infoModelo,omitempty"`
	Client    external.ScorerStatus  `json:"cliente"`
	CheckedAt time.Time              `json:"ultimaVerificacion"`
	Status    string                 `json:"status"`
}

// MLHealth is the result of a live probe.
type MLHealth struct {
	Service   string    `json:"service"`
	Status    string    `json:"status"`
	Available bool      `json:"pythonApiAvailable"`
	Message   string    `json:"message"`
	CheckedAt time.Time `json:"timestamp"`
}

// TestPrediction is the outcome of a scorer self-test.
type TestPrediction struct {
	Status     string              `json:"status"`
	Prediction *domain.ScoreResult `json:"prediccion,omitempty"`
	Message    string              `json:"message"`
}

// TypeCoverage compares the classes the scorer can emit with the stored
// reference records.
type TypeCoverage struct {
	Expected      []string `json:"tipos_esperados"`
	Stored        []string `json:"tipos_en_bd"`
	ExpectedTotal int      `json:"total_esperado"`
	StoredTotal   int      `json:"total_en_bd"`
	Missing       []string `json:"tipos_faltantes"`
	Extra         []string `json:"tipos_extra"`
	Complete      bool     `json:"coincide_completamente"`
	Status        string   `json:"status"`
	Message       string   `json:"mensaje"`
}

// MLIntegrationService backs the scorer diagnostics endpoints.
type MLIntegrationService struct {
	scorer ScorerInspector
	types  domain.DiabetesTypeRepository
	logger *logrus.Logger
	now    func() time.Time
}

// NewMLIntegrationService creates the diagnostics service.
func NewMLIntegrationService(scorer ScorerInspector, types domain.DiabetesTypeRepository, logger *logrus.Logger) *MLIntegrationService {
	return &MLIntegrationService{
		scorer: scorer,
		types:  types,
		logger: logger,
		now:    time.Now,
	}
}

// Status checks availability and fetches the model description concurrently.
// A disabled scorer is never contacted.
func (s *MLIntegrationService) Status(ctx context.Context) (*MLStatus, error) {
	status := &MLStatus{
		Enabled:   s.scorer.Enabled(),
		CheckedAt: s.now(),
		Status:    "OK",
	}
	if !status.Enabled {
		status.Client = s.scorer.Status()
		return status, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		status.Available = s.scorer.Available(gctx)
		return nil
	})
	g.Go(func() error {
		info, err := s.scorer.ModelInfo(gctx)
		if err != nil {
			s.logger.WithError(err).Debug("Scorer model info unavailable")
			return nil
		}
		status.ModelInfo = info
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to collect scorer status: %w", err)
	}

	status.Client = s.scorer.Status()

	s.logger.WithField("available", status.Available).Info("ML integration status")
	return status, nil
}

// Health probes the scorer now, bypassing the availability cache.
func (s *MLIntegrationService) Health(ctx context.Context) *MLHealth {
	health := &MLHealth{
		Service:   "diabetes-ml-integration",
		Status:    "UP",
		CheckedAt: s.now(),
	}

	if s.scorer.Enabled() {
		health.Available = s.scorer.Probe(ctx)
	}
	if health.Available {
		health.Message = "Servicio ML integrado correctamente"
	} else {
		health.Message = "API Python no disponible - Usando modo simulado"
	}
	return health
}

// TestPrediction runs the scorer self-test.
func (s *MLIntegrationService) TestPrediction(ctx context.Context) *TestPrediction {
	if !s.scorer.Enabled() {
		return &TestPrediction{Status: "ERROR", Message: "El servicio ML remoto está deshabilitado"}
	}

	result := s.scorer.SelfTest(ctx)
	if result == nil {
		s.logger.Error("Scorer self-test failed")
		return &TestPrediction{Status: "ERROR", Message: "La prueba de predicción falló"}
	}

	s.logger.WithField("predicted_class", result.PredictedClass).Info("Scorer self-test succeeded")
	return &TestPrediction{
		Status:     "SUCCESS",
		Prediction: result,
		Message:    "Prueba de predicción exitosa",
	}
}

// TypesAvailable reports which of the twelve classes lack a reference record
// and which stored records are not scorer classes.
func (s *MLIntegrationService) TypesAvailable(ctx context.Context) (*TypeCoverage, error) {
	stored, err := s.types.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list diabetes types: %w", err)
	}

	cov := &TypeCoverage{
		Expected: append([]string(nil), domain.DiabetesTypes...),
		Stored:   make([]string, 0, len(stored)),
		Missing:  []string{},
		Extra:    []string{},
	}

	storedSet := make(map[string]struct{}, len(stored))
	for _, t := range stored {
		cov.Stored = append(cov.Stored, t.NameEn)
		storedSet[t.NameEn] = struct{}{}
	}
	for _, name := range cov.Expected {
		if _, ok := storedSet[name]; !ok {
			cov.Missing = append(cov.Missing, name)
		}
	}
	for _, name := range cov.Stored {
		if !domain.IsKnownDiabetesType(name) {
			cov.Extra = append(cov.Extra, name)
		}
	}

	cov.ExpectedTotal = len(cov.Expected)
	cov.StoredTotal = len(cov.Stored)
	cov.Complete = len(cov.Missing) == 0 && len(cov.Extra) == 0

	switch {
	case len(cov.Missing) > 0:
		cov.Status = "INCOMPLETO"
		cov.Message = "Faltan tipos de diabetes en la base de datos"
		s.logger.WithField("missing", cov.Missing).Warn("Diabetes types missing from the store")
	case len(cov.Extra) > 0:
		cov.Status = "OK"
		cov.Message = "Hay tipos adicionales en la base de datos"
	default:
		cov.Status = "OK"
		cov.Message = "Todos los tipos están correctamente registrados"
	}

	return cov, nil
}
