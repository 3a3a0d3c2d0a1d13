package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/diabetes-prediction-engine/internal/api"
	"github.com/diabetes-prediction-engine/internal/catalog"
	"github.com/diabetes-prediction-engine/internal/database"
	"github.com/diabetes-prediction-engine/internal/domain"
	"github.com/diabetes-prediction-engine/internal/history"
	"github.com/diabetes-prediction-engine/internal/repository"
	"github.com/diabetes-prediction-engine/internal/service"
	"github.com/diabetes-prediction-engine/pkg/archive"
	"github.com/diabetes-prediction-engine/pkg/external"
)

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve()
		},
	}
}

func (a *app) serve() error {
	cfg := a.config.GetConfig()
	logger := a.logger

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	logger.WithFields(logrus.Fields{
		"host":        cfg.Server.Host,
		"port":        cfg.Server.Port,
		"environment": cfg.Environment,
	}).Info("Starting diabetes prediction engine")

	var (
		types    domain.DiabetesTypeRepository
		guides   domain.FieldGuideRepository
		patients api.PatientService
		finder   domain.PatientFinder
	)

	db, err := database.NewConnection(ctx, database.ConfigFrom(cfg.Database), logger)
	if err != nil {
		logger.WithError(err).Warn("Database unavailable, serving built-in reference data without a patient registry")
		memory := catalog.NewMemoryStore()
		types = memory
		guides = memory.Guides()
	} else {
		defer db.Close()
		types = repository.NewDiabetesTypeRepository(db.Pool, logger)
		guides = repository.NewFieldGuideRepository(db.Pool, logger)
		directory := service.NewPatientDirectory(
			repository.NewPatientRepository(db.Pool, logger),
			cfg.Cache.MemoryEntries,
			cfg.Cache.MemoryTTL,
			logger,
		)
		patients = directory
		finder = directory
	}

	var shared service.TypeInfoCache
	if cfg.Cache.RedisURL != "" {
		cache, err := external.NewCacheClient(cfg.Cache)
		if err != nil {
			logger.WithError(err).Warn("Redis cache unavailable, using in-process cache only")
		} else {
			defer cache.Close()
			shared = cache
		}
	}

	resolver, err := service.NewReferenceResolver(service.ReferenceResolverConfig{
		MemoryEntries: cfg.Cache.MemoryEntries,
		MemoryTTL:     cfg.Cache.MemoryTTL,
		SharedTTL:     cfg.Cache.DefaultTTL,
	}, types, shared, logger)
	if err != nil {
		return err
	}
	if err := resolver.Warm(ctx, domain.DiabetesTypes); err != nil {
		logger.WithError(err).Warn("Reference cache warm-up incomplete")
	}

	scorer := external.NewScorerClient(external.ScorerConfigFrom(cfg.Scorer), logger)
	scorer.Initialize(ctx)

	store, err := history.Open(cfg.History, a.config.GetDatabaseURL())
	if err != nil {
		return err
	}
	defer store.Close()

	var sink archive.Archiver
	if s, err := archive.New(ctx, cfg.Archive, logger); err != nil {
		logger.WithError(err).Warn("Export archive unavailable")
	} else {
		sink = s
	}

	predictor := service.NewPredictor(
		service.PredictorConfig{
			StrictNormalization: cfg.Prediction.StrictNormalization,
			PersistTimeout:      cfg.Prediction.PersistTimeout,
		},
		a.newFallback(cfg.Prediction),
		scorer,
		resolver,
		history.NewRecorder(store, finder, logger),
		logger,
	)
	defer predictor.Wait()

	server := api.NewServer(a.config, api.Dependencies{
		Predictor:  predictor,
		History:    store,
		Statistics: service.NewStatisticsService(store, logger),
		ML:         service.NewMLIntegrationService(scorer, types, logger),
		Scorer:     scorer,
		Types:      types,
		Guides:     guides,
		Patients:   patients,
		Archive:    sink,
	}, logger)

	if err := server.Start(ctx); err != nil {
		return err
	}

	logger.Info("Server stopped")
	return nil
}

// newFallback seeds the simulated scorer. A zero seed means a time-based one.
func (a *app) newFallback(cfg domain.PredictionConfig) *service.FallbackScorer {
	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return service.NewFallbackScorer(rand.New(rand.NewSource(seed)), cfg.OtherClassMax, a.logger)
}
