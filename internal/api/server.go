// Package api exposes the prediction engine over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/diabetes-prediction-engine/internal/domain"
	"github.com/diabetes-prediction-engine/internal/history"
	"github.com/diabetes-prediction-engine/internal/middleware"
	"github.com/diabetes-prediction-engine/internal/service"
	"github.com/diabetes-prediction-engine/pkg/archive"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Predictor runs one evaluation.
type Predictor interface {
	Predict(ctx context.Context, req *domain.EvaluationRequest) (*domain.PredictionResponse, error)
}

// PatientService manages patient records.
type PatientService interface {
	domain.PatientFinder
	FindByCode(ctx context.Context, code string) (*domain.Patient, error)
	FindByEmail(ctx context.Context, email string) (*domain.Patient, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Patient, error)
	Create(ctx context.Context, p *domain.Patient) error
	Update(ctx context.Context, p *domain.Patient) error
	Delete(ctx context.Context, id int64) error
}

// Dependencies are the services the handlers call. Scorer, Patients and
// Archive may be nil; the matching endpoints then report the feature as
// unavailable.
type Dependencies struct {
	Predictor  Predictor
	History    history.Store
	Statistics *service.StatisticsService
	ML         *service.MLIntegrationService
	Scorer     domain.RemoteScorer
	Types      domain.DiabetesTypeRepository
	Guides     domain.FieldGuideRepository
	Patients   PatientService
	Archive    archive.Archiver
}

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	deps          Dependencies
	logger        *logrus.Logger
	router        *gin.Engine
	server        *http.Server
	now           func() time.Time
}

// NewServer creates a new HTTP server instance
func NewServer(configManager domain.ConfigManager, deps Dependencies, logger *logrus.Logger) *Server {
	cfg := configManager.GetConfig()

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.CorrelationID())
	router.Use(middleware.AuditLogger())
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(middleware.RequestTimeout(cfg.Server.RequestTimeout))

	server := &Server{
		configManager: configManager,
		deps:          deps,
		logger:        logger,
		router:        router,
		now:           time.Now,
	}

	server.setupRoutes()

	return server
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		evaluations := v1.Group("/evaluaciones")
		evaluations.POST("/predecir", s.handlePredict)
		evaluations.GET("", s.handleListEvaluations)
		evaluations.GET("/estadisticas", s.handleStatistics)
		evaluations.GET("/export", s.handleExport)
		evaluations.POST("/export/archive", s.handleArchiveExport)
		evaluations.POST("/import", s.handleImport)
		evaluations.GET("/paciente/:id", s.handleEvaluationsByPatient)
		evaluations.GET("/tipo/:tipo", s.handleEvaluationsByType)
		evaluations.GET("/:id", s.handleGetEvaluation)
		evaluations.DELETE("/:id", s.handleDeleteEvaluation)

		ml := v1.Group("/ml-integration")
		ml.GET("/status", s.handleMLStatus)
		ml.GET("/health", s.handleMLHealth)
		ml.POST("/test-prediction", s.handleMLTestPrediction)
		ml.GET("/tipos-disponibles", s.handleMLTypesAvailable)

		v1.GET("/tipos-diabetes", s.handleListTypes)
		v1.GET("/tipos-diabetes/:nombre", s.handleGetType)
		v1.GET("/guias-campos", s.handleListGuides)
		v1.GET("/guias-campos/:campo", s.handleGetGuide)

		patients := v1.Group("/pacientes")
		patients.GET("", s.handleListPatients)
		patients.POST("", s.handleCreatePatient)
		patients.GET("/:id", s.handleGetPatient)
		patients.PUT("/:id", s.handleUpdatePatient)
		patients.DELETE("/:id", s.handleDeletePatient)
	}
}

// handleHealth reports service liveness and whether the remote scorer is reachable.
func (s *Server) handleHealth(c *gin.Context) {
	scorer := "DISCONNECTED"
	if s.deps.Scorer != nil && s.deps.Scorer.Enabled() && s.deps.Scorer.Available(c.Request.Context()) {
		scorer = "CONNECTED"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "UP",
		"service":   "diabetes-prediction-engine",
		"mlService": scorer,
		"timestamp": s.now().UTC(),
		"version":   Version,
	})
}
