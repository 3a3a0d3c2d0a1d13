package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/diabetes-prediction-engine/internal/domain"
)

func sampleResult() *domain.ScoreResult {
	return &domain.ScoreResult{
		PredictedClass: domain.TypeTwo,
		Probability:    0.873,
		Probabilities: map[string]float64{
			domain.TypeTwo:         0.70,
			domain.TypePrediabetic: 0.15,
			domain.TypeLADA:        0.10,
			domain.TypeMODY:        0.04,
			domain.TypeOne:         0.01,
		},
		FeatureImportance: map[string]float64{
			"niveles_glucosa":         0.91,
			"niveles_insulina":        0.80,
			"edad":                    0.66,
			"indice_masa_corporal":    0.60,
			"autoanticuerpos":         0.30,
			"antecedentes_familiares": 0.25,
		},
		Provenance: domain.ProvenanceSimulated,
	}
}

func TestSynthesizer_Explanation(t *testing.T) {
	s := NewSynthesizer()
	classification := domain.ClinicalClassification{
		domain.IndicatorPressure: domain.BandHigh,
		domain.IndicatorGlucose:  domain.BandDiabetes,
		domain.IndicatorAge:      domain.BandAdult,
	}
	info := &domain.DiabetesTypeInfo{
		NameEn:          domain.TypeTwo,
		NameEs:          "Diabetes Tipo 2",
		Description:     strings.Repeat("á", 250),
		Recommendations: "Control de peso.",
	}

	explanation, _ := s.Explain(sampleResult(), classification, info)

	assert.Contains(t, explanation, "**Tipo de diabetes predicho:** Diabetes Tipo 2")
	assert.Contains(t, explanation, "**Confianza del modelo:** 87.3%")
	assert.Contains(t, explanation, "• **Niveles de Glucosa**: 91%")
	assert.NotContains(t, explanation, "Antecedentes Familiares", "only the top five factors are listed")
	assert.Contains(t, explanation, "## ℹ️ Acerca de Diabetes Tipo 2")
	assert.Contains(t, explanation, strings.Repeat("á", 200)+"...")
	assert.NotContains(t, explanation, strings.Repeat("á", 201))

	pressure := strings.Index(explanation, "Presión Arterial")
	glucose := strings.Index(explanation, "Glucosa**: Diabetes")
	assert.True(t, pressure >= 0 && glucose > pressure, "indicators follow display order")

	alternates := explanation[strings.Index(explanation, "Otras Posibilidades"):]
	assert.Contains(t, alternates, "Prediabetes: 15.0%")
	assert.Contains(t, alternates, "Diabetes Autoinmune Latente en Adultos: 10.0%")
	assert.Contains(t, alternates, "MODY (Diabetes de la Madurez de Inicio Juvenil): 4.0%")
	assert.NotContains(t, alternates, "Diabetes Tipo 2:")
	assert.NotContains(t, alternates, "Diabetes Tipo 1")
}

func TestSynthesizer_ExplanationWithoutInfo(t *testing.T) {
	s := NewSynthesizer()
	result := sampleResult()
	result.FeatureImportance = nil

	explanation, recommendations := s.Explain(result, domain.ClinicalClassification{}, nil)

	assert.NotContains(t, explanation, "Acerca de")
	assert.Contains(t, explanation, "## 🔍 Factores Clave Identificados\n\n• El modelo no reportó")
	assert.Less(t, strings.Index(explanation, "Resultado de la Predicción"), strings.Index(explanation, "Factores Clave"))
	assert.NotContains(t, explanation, "Interpretación de Valores")
	assert.NotContains(t, recommendations, "Recomendaciones específicas")
	assert.Contains(t, recommendations, "**Recomendaciones generales:**")
}

func TestSynthesizer_Recommendations(t *testing.T) {
	s := NewSynthesizer()
	classification := domain.ClinicalClassification{
		domain.IndicatorGlucose:     domain.BandPrediabetes,
		domain.IndicatorInsulin:     domain.BandDiabetes,
		domain.IndicatorPressure:    domain.BandLow,
		domain.IndicatorCholesterol: domain.BandAbnormal,
		domain.IndicatorAge:         domain.BandElderly,
	}
	info := &domain.DiabetesTypeInfo{NameEs: "Diabetes Tipo 2", Recommendations: "Control de peso."}

	_, recommendations := s.Explain(sampleResult(), classification, info)

	assert.Contains(t, recommendations, "**Recomendaciones específicas para Diabetes Tipo 2:**\nControl de peso.")
	assert.Contains(t, recommendations, "Estado prediabético")
	assert.Contains(t, recommendations, "Resistencia a la insulina")
	assert.Contains(t, recommendations, "Presión arterial baja")
	assert.Contains(t, recommendations, "Colesterol muy elevado")
	assert.Contains(t, recommendations, "5. **Emergencias**")
	assert.Contains(t, recommendations, "• **Niveles de Glucosa** fue determinante")
	assert.Contains(t, recommendations, "Adulto mayor")
	assert.Equal(t, 3, strings.Count(recommendations, "fue determinante"))
}

func TestSynthesizer_BandAdviceIsDistinct(t *testing.T) {
	for ind, bands := range bandAdvice {
		seen := map[string]string{}
		for band, advice := range bands {
			if other, ok := seen[advice]; ok {
				t.Errorf("%s: bands %s and %s share advice", ind, band, other)
			}
			seen[advice] = band
		}
	}

	s := NewSynthesizer()
	_, recommendations := s.Explain(sampleResult(), domain.ClinicalClassification{
		domain.IndicatorGlucose:     domain.BandNormal,
		domain.IndicatorInsulin:     domain.BandNormal,
		domain.IndicatorPressure:    domain.BandNormal,
		domain.IndicatorCholesterol: domain.BandNormal,
	}, nil)

	for _, want := range []string{"Glucosa normal", "Insulina normal", "Presión arterial normal", "Colesterol normal"} {
		assert.Contains(t, recommendations, want)
	}
}

func TestSynthesizer_NoAgeNoteForAdults(t *testing.T) {
	s := NewSynthesizer()
	_, recommendations := s.Explain(sampleResult(), domain.ClinicalClassification{
		domain.IndicatorAge: domain.BandAdult,
	}, nil)

	assert.NotContains(t, recommendations, "Consideraciones según grupo etario")
}

func TestTopEntries(t *testing.T) {
	entries := topEntries(map[string]float64{"b": 0.5, "a": 0.5, "c": 0.9, "d": 0.1}, 3, "c")
	assert.Equal(t, []entry{{"a", 0.5}, {"b", 0.5}, {"d", 0.1}}, entries)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "ab...", truncate("abc", 2))
	assert.Equal(t, "ñá...", truncate("ñáé", 2))
}
