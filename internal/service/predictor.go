package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/diabetes-prediction-engine/internal/domain"
)

const defaultPersistTimeout = 10 * time.Second

// PredictorConfig tunes the orchestration.
type PredictorConfig struct {
	StrictNormalization bool
	PersistTimeout      time.Duration
}

// Predictor runs one evaluation end to end: validation, banding, scoring with
// fallback, enrichment, explanation and best-effort persistence.
type Predictor struct {
	normalizer  *Normalizer
	classifier  *ClinicalClassifier
	fallback    *FallbackScorer
	remote      domain.RemoteScorer
	lookup      domain.DiabetesInfoLookup
	saver       domain.EvaluationSaver
	synthesizer *Synthesizer

	strict         bool
	persistTimeout time.Duration
	logger         *logrus.Logger
	now            func() time.Time

	persisting sync.WaitGroup
}

// NewPredictor creates a predictor. remote, lookup and saver may be nil.
func NewPredictor(
	config PredictorConfig,
	fallback *FallbackScorer,
	remote domain.RemoteScorer,
	lookup domain.DiabetesInfoLookup,
	saver domain.EvaluationSaver,
	logger *logrus.Logger,
) *Predictor {
	if config.PersistTimeout <= 0 {
		config.PersistTimeout = defaultPersistTimeout
	}
	if logger == nil {
		logger = logrus.New()
	}
	if fallback == nil {
		fallback = NewFallbackScorer(nil, 0, logger)
	}

	return &Predictor{
		normalizer:     NewNormalizer(),
		classifier:     NewClinicalClassifier(),
		fallback:       fallback,
		remote:         remote,
		lookup:         lookup,
		saver:          saver,
		synthesizer:    NewSynthesizer(),
		strict:         config.StrictNormalization,
		persistTimeout: config.PersistTimeout,
		logger:         logger,
		now:            time.Now,
	}
}

// Predict evaluates one request. Validation failures are returned as
// *domain.ValidationErrors and a broken fallback score as
// *domain.FatalScoringError. Remote scorer failures, including unusable
// results, are never returned; the fallback scorer covers them.
func (p *Predictor) Predict(ctx context.Context, req *domain.EvaluationRequest) (*domain.PredictionResponse, error) {
	if req == nil {
		return nil, domain.NewValidationError("request", "solicitud vacía", nil)
	}
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	classification := p.classifier.Classify(req)

	features, err := p.normalize(req)
	if err != nil {
		return nil, err
	}

	result := p.score(ctx, features)
	if result == nil {
		p.logger.Error("Rule-based scorer returned no result")
		return nil, &domain.FatalScoringError{Reason: "no score result"}
	}
	if !domain.IsKnownDiabetesType(result.PredictedClass) {
		p.logger.WithField("predicted_class", result.PredictedClass).Error("Rule-based scorer returned an unknown class")
		return nil, &domain.FatalScoringError{Reason: fmt.Sprintf("unknown predicted class %q", result.PredictedClass)}
	}

	info := p.lookupInfo(ctx, result.PredictedClass)
	explanation, recommendations := p.synthesizer.Explain(result, classification, info)

	resp := &domain.PredictionResponse{
		DiabetesType:    result.PredictedClass,
		DiabetesTypeEs:  domain.SpanishTypeName(result.PredictedClass),
		Probability:     result.Probability,
		Classifications: classification,
		Explanation:     explanation,
		Recommendations: recommendations,
		TypeInfo:        info,
		Provenance:      result.Provenance,
		PredictedAt:     p.now(),
	}
	if info != nil && info.NameEs != "" {
		resp.DiabetesTypeEs = info.NameEs
	}

	p.logger.WithFields(logrus.Fields{
		"predicted_class": resp.DiabetesType,
		"probability":     fmt.Sprintf("%.3f", resp.Probability),
		"provenance":      resp.Provenance,
		"patient_id":      req.PatientID(),
	}).Info("Prediction completed")

	p.persist(req, resp)
	return resp, nil
}

// Wait blocks until every background persistence task has finished.
func (p *Predictor) Wait() {
	p.persisting.Wait()
}

// Classify bands the request without scoring it.
func (p *Predictor) Classify(req *domain.EvaluationRequest) domain.ClinicalClassification {
	return p.classifier.Classify(req)
}

func (p *Predictor) normalize(req *domain.EvaluationRequest) (domain.FeatureSet, error) {
	if p.strict {
		return p.normalizer.NormalizeStrict(req)
	}
	return p.normalizer.Normalize(req), nil
}

func (p *Predictor) score(ctx context.Context, features domain.FeatureSet) *domain.ScoreResult {
	if p.remote != nil && p.remote.Enabled() && p.remote.Available(ctx) {
		result, err := p.remote.Predict(ctx, features)
		switch {
		case err != nil:
			p.logger.WithError(err).Warn("Remote scorer failed, using the rule-based scorer")
		case result == nil:
			p.logger.Warn("Remote scorer returned no result, using the rule-based scorer")
		case !domain.IsKnownDiabetesType(result.PredictedClass):
			p.logger.WithField("predicted_class", result.PredictedClass).Warn("Remote scorer returned an unknown class, using the rule-based scorer")
		default:
			return result
		}
	}
	return p.fallback.Score(features)
}

func (p *Predictor) lookupInfo(ctx context.Context, class string) *domain.DiabetesTypeInfo {
	if p.lookup == nil {
		return nil
	}

	info, err := p.lookup.LookupDiabetesInfo(ctx, class)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			p.logger.WithField("diabetes_type", class).Debug("No reference information for type")
		} else {
			p.logger.WithError(err).WithField("diabetes_type", class).Warn("Reference lookup failed")
		}
		return nil
	}
	return info
}

// persist saves the evaluation in the background on a context detached from
// the request.
func (p *Predictor) persist(req *domain.EvaluationRequest, resp *domain.PredictionResponse) {
	if p.saver == nil {
		return
	}

	p.persisting.Add(1)
	go func() {
		defer p.persisting.Done()
		defer func() {
			if r := recover(); r != nil {
				p.logger.WithField("panic", r).Error("Evaluation persistence panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), p.persistTimeout)
		defer cancel()

		id, err := p.saver.SaveEvaluation(ctx, req, resp)
		if err != nil {
			p.logger.WithError(err).Error("Failed to save evaluation")
			return
		}
		p.logger.WithField("evaluation_id", id).Info("Evaluation saved")
	}()
}

// Validation limits for the clinical measurements.
const (
	MinAge      = 0
	MaxAge      = 120
	MinGlucose  = 0
	MaxGlucose  = 1000
	MinInsulin  = 0
	MaxInsulin  = 500
	MinBMI      = 10
	MaxBMI      = 60
	MinPressure = 60
	MaxPressure = 250
)

// ValidateRequest checks the required measurements and the ranges of the
// optional ones. It returns nil or a *domain.ValidationErrors listing every
// problem.
func ValidateRequest(req *domain.EvaluationRequest) error {
	errs := &domain.ValidationErrors{}

	checkRequired(errs, "edad", req.Age, MinAge, MaxAge,
		"Edad inválida. Debe estar entre 0 y 120 años")
	checkRequired(errs, "nivelesGlucosa", req.GlucoseLevels, MinGlucose, MaxGlucose,
		"Niveles de glucosa inválidos. Rango: 0-1000 mg/dL")
	checkRequired(errs, "nivelesInsulina", req.InsulinLevels, MinInsulin, MaxInsulin,
		"Niveles de insulina inválidos. Rango: 0-500 μU/mL")
	checkOptional(errs, "indiceMasaCorporal", req.BMI, MinBMI, MaxBMI,
		"Índice de masa corporal inválido. Rango: 10-60 kg/m²")
	checkOptional(errs, "presionArterial", req.BloodPressure, MinPressure, MaxPressure,
		"Presión arterial inválida. Rango: 60-250 mmHg")

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func checkRequired(errs *domain.ValidationErrors, field string, n domain.Number, lo, hi float64, message string) {
	if !n.Valid() || n.Value() < lo || n.Value() > hi {
		errs.Add(field, message, rawValue(n))
	}
}

func checkOptional(errs *domain.ValidationErrors, field string, n domain.Number, lo, hi float64, message string) {
	if !n.Present() {
		return
	}
	checkRequired(errs, field, n, lo, hi, message)
}

func rawValue(n domain.Number) interface{} {
	switch {
	case !n.Present():
		return nil
	case !n.Valid():
		return n.Raw()
	default:
		return n.Value()
	}
}
