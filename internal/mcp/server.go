// Package mcp exposes the prediction engine as MCP tools over stdio.
// The lite server needs no external database: reference data comes from the
// built-in catalog and history is kept in SQLite.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/diabetes-prediction-engine/internal/catalog"
	litecfg "github.com/diabetes-prediction-engine/internal/config"
	"github.com/diabetes-prediction-engine/internal/history"
	"github.com/diabetes-prediction-engine/internal/service"
	"github.com/diabetes-prediction-engine/pkg/archive"
	"github.com/diabetes-prediction-engine/pkg/external"
)

// ServerName is reported to MCP clients.
const ServerName = "diabetes-prediction-engine-lite"

// ServerVersion is reported to MCP clients.
const ServerVersion = "v1.0.0"

// LiteServer is a lightweight MCP server that requires no external databases.
type LiteServer struct {
	config    *litecfg.LiteConfig
	mcpServer *mcp.Server
	scorer    *external.ScorerClient
	predictor *service.Predictor
	store     history.Store
	logger    *logrus.Logger
}

// LiteServerOption is a functional option for LiteServer.
type LiteServerOption func(*LiteServer) error

// WithHistoryStore sets a custom history store.
func WithHistoryStore(store history.Store) LiteServerOption {
	return func(s *LiteServer) error {
		s.store = store
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logrus.Logger) LiteServerOption {
	return func(s *LiteServer) error {
		s.logger = logger
		return nil
	}
}

// NewLiteServer wires the prediction pipeline and registers the tools.
func NewLiteServer(cfg *litecfg.LiteConfig, opts ...LiteServerOption) (*LiteServer, error) {
	server := &LiteServer{
		config: cfg,
		logger: logrus.New(),
	}

	if cfg.LogFormat == "text" {
		server.logger.SetFormatter(&logrus.TextFormatter{})
	} else {
		server.logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		server.logger.SetLevel(level)
	}

	for _, opt := range opts {
		if err := opt(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if err := cfg.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	if server.store == nil {
		store, err := history.NewSQLiteStore(cfg.HistoryDBPath())
		if err != nil {
			return nil, fmt.Errorf("failed to create history store: %w", err)
		}
		server.store = store
	}

	sink, err := archive.NewFileArchiver(cfg.ExportDir(), server.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create export archive: %w", err)
	}

	types := catalog.NewMemoryStore()
	resolver, err := service.NewReferenceResolver(service.ReferenceResolverConfig{
		MemoryEntries: cfg.CacheMaxItems,
		MemoryTTL:     cfg.CacheTTL,
	}, types, nil, server.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create reference resolver: %w", err)
	}

	server.scorer = external.NewScorerClient(external.ScorerConfig{
		Enabled: cfg.ScorerEnabled,
		BaseURL: cfg.ScorerURL,
		Timeout: cfg.ScorerTimeout,
	}, server.logger)

	server.predictor = service.NewPredictor(
		service.PredictorConfig{},
		service.NewFallbackScorer(nil, 0, server.logger),
		server.scorer,
		resolver,
		history.NewRecorder(server.store, nil, server.logger),
		server.logger,
	)

	ml := service.NewMLIntegrationService(server.scorer, types, server.logger)

	server.mcpServer = mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, nil)
	NewTools(server.predictor, ml, server.store, sink, server.logger).Register(server.mcpServer)

	server.logger.WithField("data_dir", cfg.DataDir).Info("Lite server initialized successfully")
	return server, nil
}

// Start probes the scorer and serves MCP over stdio until ctx is done.
func (s *LiteServer) Start(ctx context.Context) error {
	s.logger.Info("Starting diabetes prediction MCP server (lite)")

	s.scorer.Initialize(ctx)

	if err := s.mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

// Close waits for pending history writes and closes the store.
func (s *LiteServer) Close() error {
	s.predictor.Wait()
	if err := s.store.Close(); err != nil {
		s.logger.WithError(err).Error("Failed to close history store")
		return err
	}
	return nil
}

// HistoryStore returns the history store for external access.
func (s *LiteServer) HistoryStore() history.Store {
	return s.store
}
