package domain

import (
	"context"
)

// RemoteScorer is the external ML service as seen by the predictor.
type RemoteScorer interface {
	Enabled() bool
	Available(ctx context.Context) bool
	Predict(ctx context.Context, features FeatureSet) (*ScoreResult, error)
}

// DiabetesInfoLookup resolves reference information for a canonical type name.
type DiabetesInfoLookup interface {
	LookupDiabetesInfo(ctx context.Context, canonicalName string) (*DiabetesTypeInfo, error)
}

// EvaluationSaver persists a finished evaluation.
type EvaluationSaver interface {
	SaveEvaluation(ctx context.Context, req *EvaluationRequest, resp *PredictionResponse) (int64, error)
}

// PatientFinder resolves patient records.
type PatientFinder interface {
	FindPatient(ctx context.Context, id int64) (*Patient, error)
}

// DiabetesTypeRepository stores diabetes type reference records.
type DiabetesTypeRepository interface {
	FindByCanonicalName(ctx context.Context, name string) (*DiabetesTypeInfo, error)
	List(ctx context.Context) ([]*DiabetesTypeInfo, error)
}

// FieldGuideRepository stores input field documentation.
type FieldGuideRepository interface {
	FindByField(ctx context.Context, field string) (*FieldGuide, error)
	List(ctx context.Context) ([]*FieldGuide, error)
}

// PatientRepository stores patient records.
type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int64) (*Patient, error)
	GetByCode(ctx context.Context, code string) (*Patient, error)
	GetByEmail(ctx context.Context, email string) (*Patient, error)
	List(ctx context.Context, limit, offset int) ([]*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id int64) error
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetDatabaseConfig() *DatabaseConfig
	GetServerConfig() *ServerConfig
	GetScorerConfig() *ScorerConfig
	Reload() error
	Validate() error
	GetDatabaseConnectionString() string
	GetDatabaseURL() string
	GetRedisConnectionString() string
	IsProduction() bool
	IsDevelopment() bool
}
