package external

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/diabetes-prediction-engine/internal/domain"
)

const (
	defaultScorerTimeout   = 5 * time.Second
	defaultScorerRateLimit = 20
	maxResponseBytes       = 1 << 20
)

// errNoTestRoute signals that the scorer has no /test endpoint.
var errNoTestRoute = errors.New("scorer has no test route")

// ScorerConfig configures a ScorerClient.
type ScorerConfig struct {
	Enabled         bool
	BaseURL         string
	Timeout         time.Duration
	RateLimit       int
	RetryCooldown   time.Duration
	BreakerRequests uint32
	BreakerInterval time.Duration
	BreakerTimeout  time.Duration
}

// ScorerConfigFrom converts the application configuration.
func ScorerConfigFrom(c domain.ScorerConfig) ScorerConfig {
	return ScorerConfig{
		Enabled:         c.Enabled,
		BaseURL:         c.BaseURL,
		Timeout:         c.Timeout,
		RateLimit:       c.RateLimit,
		RetryCooldown:   c.RetryCooldown,
		BreakerRequests: c.BreakerRequests,
		BreakerInterval: c.BreakerInterval,
		BreakerTimeout:  c.BreakerTimeout,
	}
}

// ScorerClient talks to the remote ML scorer over HTTP.
type ScorerClient struct {
	enabled      bool
	baseURL      string
	httpClient   *http.Client
	rateLimit    *rate.Limiter
	breaker      *gobreaker.CircuitBreaker
	availability *Availability
	logger       *logrus.Logger
}

// NewScorerClient creates a new remote scorer client
func NewScorerClient(config ScorerConfig, logger *logrus.Logger) *ScorerClient {
	if config.Timeout <= 0 {
		config.Timeout = defaultScorerTimeout
	}
	if config.RateLimit <= 0 {
		config.RateLimit = defaultScorerRateLimit
	}
	if config.BreakerRequests == 0 {
		config.BreakerRequests = 3
	}
	if config.BreakerInterval <= 0 {
		config.BreakerInterval = 60 * time.Second
	}
	if config.BreakerTimeout <= 0 {
		config.BreakerTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = logrus.New()
	}

	c := &ScorerClient{
		enabled: config.Enabled,
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimit:    rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		availability: NewAvailability(config.RetryCooldown),
		logger:       logger,
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ml-scorer",
		MaxRequests: config.BreakerRequests,
		Interval:    config.BreakerInterval,
		Timeout:     config.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errNoTestRoute)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return c
}

// Enabled reports whether remote scoring is switched on.
func (c *ScorerClient) Enabled() bool {
	return c.enabled
}

// Availability exposes the client's availability state.
func (c *ScorerClient) Availability() *Availability {
	return c.availability
}

type healthResponse struct {
	ModelLoaded bool     `json:"model_loaded"`
	NumFeatures int      `json:"num_features"`
	Classes     []string `json:"classes"`
}

// Probe calls GET /health. It returns true only for a 200 that reports the
// model as loaded; a 200 with a body that is not JSON also counts as loaded.
// It never returns an error.
func (c *ScorerClient) Probe(ctx context.Context) bool {
	ok, _ := c.probe(ctx)
	return ok
}

func (c *ScorerClient) probe(ctx context.Context) (bool, string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false, err.Error()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).Warn("Scorer health check failed")
		return false, err.Error()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.WithField("status", resp.StatusCode).Warn("Scorer health check returned non-200")
		return false, fmt.Sprintf("health returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return false, err.Error()
	}

	var health healthResponse
	if err := json.Unmarshal(body, &health); err != nil {
		c.logger.Warn("Scorer health body is not JSON, assuming the model is loaded")
		return true, ""
	}
	if !health.ModelLoaded {
		return false, "model not loaded"
	}
	return true, ""
}

// Available reports whether the scorer can take requests, probing only when
// the cached state is stale. A disabled client is never probed.
func (c *ScorerClient) Available(ctx context.Context) bool {
	if !c.enabled {
		return false
	}
	if !c.availability.NeedsProbe() {
		return c.availability.Available()
	}

	ok, reason := c.probe(ctx)
	c.availability.Record(ok, reason)

	c.logger.WithFields(logrus.Fields{
		"available": ok,
		"base_url":  c.baseURL,
	}).Info("Probed remote scorer")
	return ok
}

type predictResponse struct {
	PredictedClass    string             `json:"predictedClass"`
	Probability       domain.Number      `json:"probability"`
	Probabilities     map[string]float64 `json:"probabilities"`
	FeatureImportance map[string]float64 `json:"featureImportance"`
	Success           *bool              `json:"success"`
	Message           string             `json:"message"`
}

// Predict posts the feature set to /predict. Any failure is returned as a
// *domain.RemoteScorerError and forces a fresh probe before the next call.
func (c *ScorerClient) Predict(ctx context.Context, features domain.FeatureSet) (*domain.ScoreResult, error) {
	result, err := c.predict(ctx, "/predict", features)
	if err != nil {
		c.availability.MarkFailed(err.Error())
		return nil, err
	}
	return result, nil
}

func (c *ScorerClient) predict(ctx context.Context, path string, payload interface{}) (*domain.ScoreResult, error) {
	op := strings.TrimPrefix(path, "/")

	if err := c.rateLimit.Wait(ctx); err != nil {
		return nil, &domain.RemoteScorerError{Op: op, Err: err}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &domain.RemoteScorerError{Op: op, Err: fmt.Errorf("failed to encode features: %w", err)}
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.post(ctx, path, body)
	})
	if err != nil {
		var scorerErr *domain.RemoteScorerError
		if errors.As(err, &scorerErr) {
			return nil, scorerErr
		}
		return nil, &domain.RemoteScorerError{Op: op, Err: err}
	}

	parsed := out.(*predictResponse)
	if parsed.PredictedClass == "" {
		return nil, &domain.RemoteScorerError{Op: op, Err: errors.New("response has no predicted class")}
	}
	if !domain.IsKnownDiabetesType(parsed.PredictedClass) {
		return nil, &domain.RemoteScorerError{Op: op, Err: fmt.Errorf("unknown predicted class %q", parsed.PredictedClass)}
	}

	dist := domain.NormalizeDistribution(parsed.Probabilities, parsed.PredictedClass)
	probability := dist[parsed.PredictedClass]
	if p := parsed.Probability; p.Valid() && p.Value() >= 0 && p.Value() <= 1 {
		probability = p.Value()
	}

	importance := parsed.FeatureImportance
	if importance == nil {
		importance = map[string]float64{}
	}

	return &domain.ScoreResult{
		PredictedClass:    parsed.PredictedClass,
		Probability:       probability,
		Probabilities:     dist,
		FeatureImportance: importance,
		Provenance:        domain.ProvenanceRemote,
		Message:           parsed.Message,
	}, nil
}

func (c *ScorerClient) post(ctx context.Context, path string, body []byte) (*predictResponse, error) {
	op := strings.TrimPrefix(path, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, &domain.RemoteScorerError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.RemoteScorerError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound && path == "/test" {
		return nil, &domain.RemoteScorerError{Op: op, StatusCode: resp.StatusCode, Err: errNoTestRoute}
	}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &domain.RemoteScorerError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response: %s", strings.TrimSpace(string(snippet))),
		}
	}

	var parsed predictResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&parsed); err != nil {
		return nil, &domain.RemoteScorerError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return &parsed, nil
}

// SelfTest asks the scorer to score its own example via POST /test. Scorers
// without that route are sent a canned sample through Predict instead.
// Failures are logged and reported as nil.
func (c *ScorerClient) SelfTest(ctx context.Context) *domain.ScoreResult {
	result, err := c.predict(ctx, "/test", struct{}{})
	if errors.Is(err, errNoTestRoute) {
		c.logger.Debug("Scorer has no /test route, sending canned sample")
		result, err = c.predict(ctx, "/predict", CannedSample())
	}
	if err != nil {
		c.logger.WithError(err).Warn("Scorer self-test failed")
		return nil
	}

	c.logger.WithFields(logrus.Fields{
		"predicted_class": result.PredictedClass,
		"probability":     fmt.Sprintf("%.1f%%", result.Probability*100),
	}).Info("Scorer self-test succeeded")
	return result
}

// CannedSample is the fixed feature set used for diagnostics.
func CannedSample() domain.FeatureSet {
	return domain.NewFeatureSet(
		map[domain.FeatureKey]string{
			domain.FeatureAutoantibodies:   "Negative",
			domain.FeatureFamilyHistory:    "Yes",
			domain.FeatureGeneticMarkers:   "Positive",
			domain.FeatureSmokingStatus:    "Non-Smoker",
			domain.FeaturePhysicalActivity: "Moderate",
		},
		map[domain.FeatureKey]float64{
			domain.FeatureAge:               45,
			domain.FeatureGlucoseLevels:     180,
			domain.FeatureInsulinLevels:     35,
			domain.FeatureBMI:               28.5,
			domain.FeatureBloodPressure:     130,
			domain.FeatureCholesterolLevels: 220,
		},
	)
}

// ModelInfo fetches GET /features.
func (c *ScorerClient) ModelInfo(ctx context.Context) (map[string]interface{}, error) {
	return c.getJSON(ctx, "/features")
}

// ModelConfig fetches GET /config.
func (c *ScorerClient) ModelConfig(ctx context.Context) (map[string]interface{}, error) {
	return c.getJSON(ctx, "/config")
}

func (c *ScorerClient) getJSON(ctx context.Context, path string) (map[string]interface{}, error) {
	op := strings.TrimPrefix(path, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &domain.RemoteScorerError{Op: op, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.RemoteScorerError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.RemoteScorerError{Op: op, StatusCode: resp.StatusCode, Err: errors.New("unexpected status")}
	}

	out := map[string]interface{}{}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return nil, &domain.RemoteScorerError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return out, nil
}

// ScorerStatus describes the client for status endpoints.
type ScorerStatus struct {
	Enabled      bool                 `json:"enabled"`
	BaseURL      string               `json:"baseUrl"`
	BreakerState string               `json:"breakerState"`
	Availability AvailabilitySnapshot `json:"availability"`
}

// Status returns the current client state without probing.
func (c *ScorerClient) Status() ScorerStatus {
	return ScorerStatus{
		Enabled:      c.enabled,
		BaseURL:      c.baseURL,
		BreakerState: c.breaker.State().String(),
		Availability: c.availability.Snapshot(),
	}
}

// Initialize probes the scorer at startup and logs what it finds.
func (c *ScorerClient) Initialize(ctx context.Context) {
	if !c.enabled {
		c.logger.Warn("Remote scorer disabled, using the rule-based scorer only")
		return
	}

	if !c.Available(ctx) {
		c.logger.WithField("base_url", c.baseURL).Warn("Remote scorer unavailable, using the rule-based scorer")
		return
	}

	if info, err := c.ModelInfo(ctx); err != nil {
		c.logger.WithError(err).Warn("Could not fetch scorer model info")
	} else {
		c.logger.WithFields(logrus.Fields{
			"num_features": info["num_features"],
			"classes":      info["classes"],
		}).Info("Remote scorer ready")
	}

	c.SelfTest(ctx)
}
