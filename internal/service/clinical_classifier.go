package service

import (
	"github.com/diabetes-prediction-engine/internal/domain"
)

// ClinicalClassifier bands the raw clinical measurements of a request.
// It is pure: the same request always yields the same classification.
type ClinicalClassifier struct{}

// NewClinicalClassifier creates a clinical classifier.
func NewClinicalClassifier() *ClinicalClassifier {
	return &ClinicalClassifier{}
}

// Classify returns a band for every indicator whose measurement is present
// and numeric. Absent indicators are omitted, never defaulted.
func (c *ClinicalClassifier) Classify(req *domain.EvaluationRequest) domain.ClinicalClassification {
	result := make(domain.ClinicalClassification, len(domain.Indicators))

	if v, ok := measured(req.BloodPressure); ok {
		result[domain.IndicatorPressure] = PressureBand(v)
	}
	if v, ok := measured(req.CholesterolLevels); ok {
		result[domain.IndicatorCholesterol] = CholesterolBand(v)
	}
	if v, ok := measured(req.InsulinLevels); ok {
		result[domain.IndicatorInsulin] = InsulinBand(v)
	}
	if v, ok := measured(req.GlucoseLevels); ok {
		result[domain.IndicatorGlucose] = GlucoseBand(v)
	}
	if v, ok := measured(req.Age); ok {
		result[domain.IndicatorAge] = AgeBand(v)
	}

	return result
}

func measured(n domain.Number) (float64, bool) {
	if !n.Valid() {
		return 0, false
	}
	return n.Value(), true
}

// PressureBand bands systolic pressure in mmHg.
func PressureBand(v float64) string {
	switch {
	case v < 90:
		return domain.BandLow
	case v <= 130:
		return domain.BandNormal
	default:
		return domain.BandHigh
	}
}

// CholesterolBand bands total cholesterol in mg/dL.
func CholesterolBand(v float64) string {
	switch {
	case v < 200:
		return domain.BandNormal
	case v <= 239:
		return domain.BandHigh
	default:
		return domain.BandAbnormal
	}
}

// InsulinBand bands fasting insulin in μU/mL.
func InsulinBand(v float64) string {
	switch {
	case v <= 25:
		return domain.BandNormal
	case v <= 40:
		return domain.BandPrediabetes
	default:
		return domain.BandDiabetes
	}
}

// GlucoseBand bands fasting glucose in mg/dL.
func GlucoseBand(v float64) string {
	switch {
	case v < 100:
		return domain.BandNormal
	case v <= 125:
		return domain.BandPrediabetes
	default:
		return domain.BandDiabetes
	}
}

// AgeBand bands age in years.
func AgeBand(v float64) string {
	switch {
	case v <= 12:
		return domain.BandInfant
	case v <= 25:
		return domain.BandAdolescent
	case v <= 60:
		return domain.BandAdult
	default:
		return domain.BandElderly
	}
}
