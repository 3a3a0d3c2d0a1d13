package service

import (
	"math/rand"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/diabetes-prediction-engine/internal/domain"
)

// RuleDraw is the rule number reported when no decision rule matched and the
// class was drawn from the prevalence table.
const RuleDraw = 13

const (
	minConfidence        = 0.75
	maxConfidence        = 0.95
	defaultOtherClassMax = 0.20
)

// prevalence is the weighted draw used when no rule matches. Weights sum to 1;
// rare syndromes carry the least mass.
var prevalence = []struct {
	class  string
	weight float64
}{
	{domain.TypeTwo, 0.35},
	{domain.TypePrediabetic, 0.25},
	{domain.TypeOne, 0.10},
	{domain.TypeGestational, 0.07},
	{domain.TypeLADA, 0.05},
	{domain.TypeMODY, 0.04},
	{domain.TypeSteroidInduced, 0.03},
	{domain.TypeSecondary, 0.03},
	{domain.TypeThreeC, 0.03},
	{domain.TypeCFRD, 0.02},
	{domain.TypeWolfram, 0.015},
	{domain.TypeWolcottRallison, 0.015},
}

// FallbackScorer is the rule-based substitute for the remote scorer. The
// class decision is deterministic for rules 1 to 12; probabilities and
// importances are perturbed by the injected random source.
type FallbackScorer struct {
	mu            sync.Mutex
	rnd           *rand.Rand
	otherClassMax float64
	logger        *logrus.Logger
}

// NewFallbackScorer creates a fallback scorer. A nil rnd is seeded from 1;
// otherClassMax outside (0, 0.75) falls back to 0.20.
func NewFallbackScorer(rnd *rand.Rand, otherClassMax float64, logger *logrus.Logger) *FallbackScorer {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(1))
	}
	if otherClassMax <= 0 || otherClassMax >= minConfidence {
		otherClassMax = defaultOtherClassMax
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &FallbackScorer{
		rnd:           rnd,
		otherClassMax: otherClassMax,
		logger:        logger,
	}
}

// Score classifies the feature set. It always returns a result.
func (s *FallbackScorer) Score(fs domain.FeatureSet) *domain.ScoreResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	class, rule := s.decide(fs)
	confidence := minConfidence + s.rnd.Float64()*(maxConfidence-minConfidence)

	raw := make(map[string]float64, len(domain.DiabetesTypes))
	for _, name := range domain.DiabetesTypes {
		if name == class {
			raw[name] = confidence
			continue
		}
		raw[name] = s.rnd.Float64() * s.otherClassMax
	}

	s.logger.WithFields(logrus.Fields{
		"predicted_class": class,
		"rule":            rule,
	}).Debug("Fallback scorer decision")

	return &domain.ScoreResult{
		PredictedClass:    class,
		Probability:       confidence,
		Probabilities:     domain.NormalizeDistribution(raw, class),
		FeatureImportance: s.importance(fs),
		Provenance:        domain.ProvenanceSimulated,
	}
}

// DecideClass returns the predicted class and the number of the rule that
// produced it. Rule 13 means the prevalence draw.
func (s *FallbackScorer) DecideClass(fs domain.FeatureSet) (string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decide(fs)
}

func (s *FallbackScorer) decide(fs domain.FeatureSet) (string, int) {
	if class, rule, ok := MatchRule(fs); ok {
		return class, rule
	}

	r := s.rnd.Float64()
	var cumulative float64
	for _, p := range prevalence {
		cumulative += p.weight
		if r < cumulative {
			return p.class, RuleDraw
		}
	}
	return prevalence[0].class, RuleDraw
}

// MatchRule applies decision rules 1 to 12 in order. ok is false when none
// matched.
func MatchRule(fs domain.FeatureSet) (class string, rule int, ok bool) {
	age := int(fs.Numeric(domain.FeatureAge))
	glucose := fs.Numeric(domain.FeatureGlucoseLevels)
	insulin := fs.Numeric(domain.FeatureInsulinLevels)
	positive := fs.Categorical(domain.FeatureAutoantibodies) == "Positive"
	complications := fs.Categorical(domain.FeaturePregnancyHistory) == "Complications"

	switch {
	case age < 1 && glucose > 200:
		return domain.TypeWolcottRallison, 1, true
	case age < 20 && glucose > 180 && positive:
		return domain.TypeWolfram, 2, true
	case positive && age < 30:
		return domain.TypeOne, 3, true
	case complications && glucose > 140:
		return domain.TypeGestational, 4, true
	case glucose > 160 && insulin > 30:
		return domain.TypeCFRD, 5, true
	case glucose > 150 && insulin < 10:
		return domain.TypeThreeC, 6, true
	case age < 25 && glucose > 130 && glucose < 200:
		return domain.TypeMODY, 7, true
	case positive && age >= 30:
		return domain.TypeLADA, 8, true
	case glucose > 170 && insulin > 35:
		return domain.TypeSteroidInduced, 9, true
	case glucose > 140 && glucose < 180:
		return domain.TypeSecondary, 10, true
	case glucose > 125 && insulin > 25:
		return domain.TypeTwo, 11, true
	case glucose >= 100 && glucose <= 125:
		return domain.TypePrediabetic, 12, true
	}
	return "", 0, false
}

// importance builds the simulated feature-importance map. Glucose always
// ranks highest; supplied categorical risk factors get lower weights.
func (s *FallbackScorer) importance(fs domain.FeatureSet) map[string]float64 {
	imp := map[string]float64{
		string(domain.FeatureGlucoseLevels): 0.85 + s.rnd.Float64()*0.10,
		string(domain.FeatureInsulinLevels): 0.70 + s.rnd.Float64()*0.15,
		string(domain.FeatureAge):           0.60 + s.rnd.Float64()*0.20,
		string(domain.FeatureBMI):           0.55 + s.rnd.Float64()*0.20,
	}

	for _, key := range []domain.FeatureKey{
		domain.FeatureAutoantibodies,
		domain.FeatureFamilyHistory,
		domain.FeatureGeneticMarkers,
	} {
		if fs.Categorical(key) != "" {
			imp[string(key)] = 0.20 + s.rnd.Float64()*0.30
		}
	}

	return imp
}
