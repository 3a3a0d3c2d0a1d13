package domain

// IndicatorNameEs holds the Spanish display name of each indicator.
var IndicatorNameEs = map[Indicator]string{
	IndicatorPressure:    "Presión Arterial",
	IndicatorCholesterol: "Colesterol",
	IndicatorInsulin:     "Insulina",
	IndicatorGlucose:     "Glucosa",
	IndicatorAge:         "Grupo de Edad",
}

// bandLabelEs is keyed by indicator because a band can read differently
// depending on the measurement (Alta for pressure, Alto for cholesterol).
var bandLabelEs = map[Indicator]map[string]string{
	IndicatorPressure: {
		BandLow:    "Baja",
		BandNormal: "Normal",
		BandHigh:   "Alta",
	},
	IndicatorCholesterol: {
		BandNormal:   "Normal",
		BandHigh:     "Alto",
		BandAbnormal: "Anormal",
	},
	IndicatorInsulin: {
		BandNormal:      "Normal",
		BandPrediabetes: "Prediabetes",
		BandDiabetes:    "Diabetes",
	},
	IndicatorGlucose: {
		BandNormal:      "Normal",
		BandPrediabetes: "Prediabetes",
		BandDiabetes:    "Diabetes",
	},
	IndicatorAge: {
		BandInfant:     "Infante",
		BandAdolescent: "Adolescente",
		BandAdult:      "Adulto",
		BandElderly:    "Adulto Mayor",
	},
}

// BandLabelEs returns the Spanish label for an indicator band. Unknown bands
// are returned unchanged.
func BandLabelEs(ind Indicator, band string) string {
	if labels, ok := bandLabelEs[ind]; ok {
		if es, ok := labels[band]; ok {
			return es
		}
	}
	return band
}

// FeatureNameEs holds Spanish display names for canonical feature keys.
var FeatureNameEs = map[string]string{
	string(FeatureGlucoseLevels):          "Niveles de Glucosa",
	string(FeatureInsulinLevels):          "Niveles de Insulina",
	string(FeatureAge):                    "Edad",
	string(FeatureBMI):                    "Índice de Masa Corporal",
	string(FeatureAutoantibodies):         "Autoanticuerpos",
	string(FeatureFamilyHistory):          "Antecedentes Familiares",
	string(FeatureBloodPressure):          "Presión Arterial",
	string(FeatureCholesterolLevels):      "Niveles de Colesterol",
	string(FeatureWaistCircumference):     "Circunferencia de Cintura",
	string(FeaturePregnancyWeightGain):    "Aumento de Peso en Embarazo",
	string(FeaturePancreaticHealth):       "Salud Pancreática",
	string(FeaturePulmonaryFunction):      "Función Pulmonar",
	string(FeatureNeurologicalAssessment): "Evaluaciones Neurológicas",
	string(FeatureDigestiveEnzymeLevels):  "Niveles de Enzimas Digestivas",
	string(FeatureBirthWeight):            "Peso al Nacer",
	string(FeatureGeneticMarkers):         "Marcadores Genéticos",
}

// SpanishFeatureName returns the Spanish name of a feature, or the key itself.
func SpanishFeatureName(key string) string {
	if es, ok := FeatureNameEs[key]; ok {
		return es
	}
	return key
}
