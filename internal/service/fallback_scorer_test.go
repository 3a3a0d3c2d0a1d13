package service

import (
	"math"
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diabetes-prediction-engine/internal/domain"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

type profile struct {
	age, glucose, insulin float64
	autoantibodies        string
	pregnancy             string
}

func (p profile) features() domain.FeatureSet {
	return domain.NewFeatureSet(
		map[domain.FeatureKey]string{
			domain.FeatureAutoantibodies:   p.autoantibodies,
			domain.FeaturePregnancyHistory: p.pregnancy,
		},
		map[domain.FeatureKey]float64{
			domain.FeatureAge:           p.age,
			domain.FeatureGlucoseLevels: p.glucose,
			domain.FeatureInsulinLevels: p.insulin,
		},
	)
}

func TestMatchRule(t *testing.T) {
	tests := []struct {
		name     string
		profile  profile
		expected string
		rule     int
	}{
		{"neonatal hyperglycemia", profile{age: 0.5, glucose: 210, insulin: 20}, domain.TypeWolcottRallison, 1},
		{"young autoimmune severe", profile{age: 15, glucose: 190, insulin: 20, autoantibodies: "Positive"}, domain.TypeWolfram, 2},
		{"young autoimmune", profile{age: 22, glucose: 150, insulin: 5, autoantibodies: "Positive"}, domain.TypeOne, 3},
		{"pregnancy complications", profile{age: 32, glucose: 150, insulin: 20, pregnancy: "Complications"}, domain.TypeGestational, 4},
		{"high glucose high insulin", profile{age: 45, glucose: 180, insulin: 35}, domain.TypeCFRD, 5},
		{"high glucose low insulin", profile{age: 45, glucose: 155, insulin: 5}, domain.TypeThreeC, 6},
		{"young moderate glucose", profile{age: 20, glucose: 140, insulin: 15}, domain.TypeMODY, 7},
		{"adult autoimmune", profile{age: 40, glucose: 110, insulin: 20, autoantibodies: "Positive"}, domain.TypeLADA, 8},
		{"secondary range", profile{age: 45, glucose: 150, insulin: 15}, domain.TypeSecondary, 10},
		{"insulin resistance", profile{age: 45, glucose: 180, insulin: 28}, domain.TypeTwo, 11},
		{"prediabetic lower edge", profile{age: 45, glucose: 100, insulin: 10}, domain.TypePrediabetic, 12},
		{"prediabetic upper edge", profile{age: 45, glucose: 125, insulin: 30}, domain.TypePrediabetic, 12},
		{"age truncates toward zero", profile{age: 0.99, glucose: 201, insulin: 20}, domain.TypeWolcottRallison, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class, rule, ok := MatchRule(tt.profile.features())
			require.True(t, ok)
			assert.Equal(t, tt.expected, class)
			assert.Equal(t, tt.rule, rule)
		})
	}
}

func TestMatchRule_SteroidInducedIsShadowed(t *testing.T) {
	// Every profile satisfying rule 9 also satisfies rule 5.
	class, rule, ok := MatchRule(profile{age: 45, glucose: 175, insulin: 40}.features())
	require.True(t, ok)
	assert.Equal(t, domain.TypeCFRD, class)
	assert.Equal(t, 5, rule)
}

func TestMatchRule_ScenarioBInsulinAbsent(t *testing.T) {
	fs := domain.NewFeatureSet(nil, map[domain.FeatureKey]float64{
		domain.FeatureAge:           8,
		domain.FeatureGlucoseLevels: 250,
	})

	class, rule, ok := MatchRule(fs)
	require.True(t, ok)
	assert.Equal(t, domain.TypeThreeC, class)
	assert.Equal(t, 6, rule)
}

func TestFallbackScorer_DecideClassDraw(t *testing.T) {
	s := NewFallbackScorer(rand.New(rand.NewSource(42)), 0, quietLogger())
	fs := profile{age: 45, glucose: 90, insulin: 10}.features()

	_, _, ok := MatchRule(fs)
	require.False(t, ok)

	counts := map[string]int{}
	const draws = 20000
	for i := 0; i < draws; i++ {
		class, rule := s.DecideClass(fs)
		assert.Equal(t, RuleDraw, rule)
		require.True(t, domain.IsKnownDiabetesType(class))
		counts[class]++
	}

	assert.Greater(t, counts[domain.TypeTwo], counts[domain.TypePrediabetic])
	assert.Less(t, float64(counts[domain.TypeWolcottRallison])/draws, 0.03)
	assert.Less(t, float64(counts[domain.TypeWolfram])/draws, 0.03)
}

func TestPrevalenceSumsToOne(t *testing.T) {
	var total float64
	seen := map[string]bool{}
	for _, p := range prevalence {
		total += p.weight
		seen[p.class] = true
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Len(t, seen, len(domain.DiabetesTypes))
}

func TestFallbackScorer_Score(t *testing.T) {
	s := NewFallbackScorer(rand.New(rand.NewSource(7)), 0, quietLogger())

	profiles := []profile{
		{age: 45, glucose: 180, insulin: 35},
		{age: 8, glucose: 250},
		{age: 45, glucose: 90, insulin: 10},
		{age: 30, glucose: 110, insulin: 12, autoantibodies: "Positive"},
	}

	for _, p := range profiles {
		for i := 0; i < 50; i++ {
			result := s.Score(p.features())
			require.NotNil(t, result)

			assert.Equal(t, domain.ProvenanceSimulated, result.Provenance)
			assert.True(t, domain.IsKnownDiabetesType(result.PredictedClass))
			assert.GreaterOrEqual(t, result.Probability, 0.75)
			assert.LessOrEqual(t, result.Probability, 0.95)

			require.Len(t, result.Probabilities, 12)
			var sum float64
			for class, v := range result.Probabilities {
				sum += v
				if class != result.PredictedClass {
					assert.Less(t, v, result.Probabilities[result.PredictedClass])
				}
			}
			assert.InDelta(t, 1.0, sum, 1e-6)
		}
	}
}

func TestFallbackScorer_Importance(t *testing.T) {
	s := NewFallbackScorer(rand.New(rand.NewSource(3)), 0, quietLogger())

	plain := s.Score(profile{age: 45, glucose: 180, insulin: 28}.features())
	assert.Len(t, plain.FeatureImportance, 4)
	assert.GreaterOrEqual(t, plain.FeatureImportance["niveles_glucosa"], 0.85)
	assert.LessOrEqual(t, plain.FeatureImportance["niveles_glucosa"], 0.95)

	withFactors := s.Score(domain.NewFeatureSet(
		map[domain.FeatureKey]string{
			domain.FeatureAutoantibodies: "Negative",
			domain.FeatureFamilyHistory:  "Yes",
		},
		map[domain.FeatureKey]float64{domain.FeatureGlucoseLevels: 180},
	))
	assert.Len(t, withFactors.FeatureImportance, 6)
	v := withFactors.FeatureImportance["antecedentes_familiares"]
	assert.True(t, v >= 0.20 && v <= 0.50, "got %v", v)
	assert.NotContains(t, withFactors.FeatureImportance, "marcadores_geneticos")
}

func TestFallbackScorer_SeedIsReproducible(t *testing.T) {
	fs := profile{age: 45, glucose: 90, insulin: 10}.features()

	a := NewFallbackScorer(rand.New(rand.NewSource(99)), 0, quietLogger()).Score(fs)
	b := NewFallbackScorer(rand.New(rand.NewSource(99)), 0, quietLogger()).Score(fs)

	assert.Equal(t, a.PredictedClass, b.PredictedClass)
	assert.True(t, math.Abs(a.Probability-b.Probability) < 1e-12)
}

func TestFallbackScorer_OtherClassMax(t *testing.T) {
	s := NewFallbackScorer(rand.New(rand.NewSource(5)), 0.05, quietLogger())
	result := s.Score(profile{age: 45, glucose: 180, insulin: 28}.features())

	// With small competitors the predicted class keeps most of the mass.
	assert.Greater(t, result.Probabilities[domain.TypeTwo], 0.55)
}
