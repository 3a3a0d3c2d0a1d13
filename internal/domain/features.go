package domain

import (
	"encoding/json"
)

// FeatureKey is a canonical snake_case feature name from the scorer contract.
type FeatureKey string

// Categorical features.
const (
	FeatureGeneticMarkers          FeatureKey = "marcadores_geneticos"
	FeatureAutoantibodies          FeatureKey = "autoanticuerpos"
	FeatureFamilyHistory           FeatureKey = "antecedentes_familiares"
	FeatureEnvironmentalFactors    FeatureKey = "factores_ambientales"
	FeatureEthnicity               FeatureKey = "etnicidad"
	FeatureDietaryHabits           FeatureKey = "habitos_alimenticios"
	FeatureGlucoseToleranceTest    FeatureKey = "prueba_tolerancia_glucosa"
	FeatureLiverFunctionTests      FeatureKey = "pruebas_funcion_hepatica"
	FeatureCysticFibrosisDiagnosis FeatureKey = "diagnostico_fibrosis_quistica"
	FeatureSteroidUse              FeatureKey = "uso_esteroides"
	FeatureGeneticTesting          FeatureKey = "pruebas_geneticas"
	FeaturePregnancyHistory        FeatureKey = "historial_embarazos"
	FeaturePreviousGestational     FeatureKey = "diabetes_gestacional_previa"
	FeaturePCOSHistory             FeatureKey = "historial_pcos"
	FeatureSmokingStatus           FeatureKey = "estado_tabaquismo"
	FeatureEarlyOnsetSymptoms      FeatureKey = "sintomas_inicio_temprano"
	FeatureSocioeconomicFactors    FeatureKey = "factores_socioeconomicos"
	FeatureAlcoholConsumption      FeatureKey = "consumo_alcohol"
	FeaturePhysicalActivity        FeatureKey = "actividad_fisica"
	FeatureUrineTest               FeatureKey = "prueba_orina"
)

// Numeric features.
const (
	FeatureInsulinLevels          FeatureKey = "niveles_insulina"
	FeatureAge                    FeatureKey = "edad"
	FeatureBMI                    FeatureKey = "indice_masa_corporal"
	FeatureBloodPressure          FeatureKey = "presion_arterial"
	FeatureCholesterolLevels      FeatureKey = "niveles_colesterol"
	FeatureWaistCircumference     FeatureKey = "circunferencia_cintura"
	FeatureGlucoseLevels          FeatureKey = "niveles_glucosa"
	FeaturePregnancyWeightGain    FeatureKey = "aumento_peso_embarazo"
	FeaturePancreaticHealth       FeatureKey = "salud_pancreatica"
	FeaturePulmonaryFunction      FeatureKey = "funcion_pulmonar"
	FeatureNeurologicalAssessment FeatureKey = "evaluaciones_neurologicas"
	FeatureDigestiveEnzymeLevels  FeatureKey = "niveles_enzimas_digestivas"
	FeatureBirthWeight            FeatureKey = "peso_nacimiento"
)

// CategoricalFeatures lists the categorical keys in scorer order.
var CategoricalFeatures = []FeatureKey{
	FeatureGeneticMarkers,
	FeatureAutoantibodies,
	FeatureFamilyHistory,
	FeatureEnvironmentalFactors,
	FeatureEthnicity,
	FeatureDietaryHabits,
	FeatureGlucoseToleranceTest,
	FeatureLiverFunctionTests,
	FeatureCysticFibrosisDiagnosis,
	FeatureSteroidUse,
	FeatureGeneticTesting,
	FeaturePregnancyHistory,
	FeaturePreviousGestational,
	FeaturePCOSHistory,
	FeatureSmokingStatus,
	FeatureEarlyOnsetSymptoms,
	FeatureSocioeconomicFactors,
	FeatureAlcoholConsumption,
	FeaturePhysicalActivity,
	FeatureUrineTest,
}

// NumericFeatures lists the numeric keys in scorer order.
var NumericFeatures = []FeatureKey{
	FeatureInsulinLevels,
	FeatureAge,
	FeatureBMI,
	FeatureBloodPressure,
	FeatureCholesterolLevels,
	FeatureWaistCircumference,
	FeatureGlucoseLevels,
	FeaturePregnancyWeightGain,
	FeaturePancreaticHealth,
	FeaturePulmonaryFunction,
	FeatureNeurologicalAssessment,
	FeatureDigestiveEnzymeLevels,
	FeatureBirthWeight,
}

var (
	categoricalSet = keySet(CategoricalFeatures)
	numericSet     = keySet(NumericFeatures)
)

func keySet(keys []FeatureKey) map[FeatureKey]struct{} {
	set := make(map[FeatureKey]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

// IsCategorical reports whether k is a categorical feature key.
func (k FeatureKey) IsCategorical() bool {
	_, ok := categoricalSet[k]
	return ok
}

// IsNumeric reports whether k is a numeric feature key.
func (k FeatureKey) IsNumeric() bool {
	_, ok := numericSet[k]
	return ok
}

// FeatureSet is the normalized, closed feature vector sent to a scorer.
// It always carries every canonical key and is read-only once built.
type FeatureSet struct {
	categorical map[FeatureKey]string
	numeric     map[FeatureKey]float64
}

// NewFeatureSet builds a FeatureSet. Missing keys default to "" and 0.0;
// keys outside the canonical vocabulary are dropped.
func NewFeatureSet(categorical map[FeatureKey]string, numeric map[FeatureKey]float64) FeatureSet {
	fs := FeatureSet{
		categorical: make(map[FeatureKey]string, len(CategoricalFeatures)),
		numeric:     make(map[FeatureKey]float64, len(NumericFeatures)),
	}
	for _, k := range CategoricalFeatures {
		fs.categorical[k] = categorical[k]
	}
	for _, k := range NumericFeatures {
		fs.numeric[k] = numeric[k]
	}
	return fs
}

// Categorical returns the value of a categorical feature.
func (fs FeatureSet) Categorical(k FeatureKey) string {
	return fs.categorical[k]
}

// Numeric returns the value of a numeric feature.
func (fs FeatureSet) Numeric(k FeatureKey) float64 {
	return fs.numeric[k]
}

// Len returns the number of features in the set.
func (fs FeatureSet) Len() int {
	return len(fs.categorical) + len(fs.numeric)
}

// Map returns a copy of the set as the flat object the scorer expects.
func (fs FeatureSet) Map() map[string]interface{} {
	out := make(map[string]interface{}, fs.Len())
	for k, v := range fs.categorical {
		out[string(k)] = v
	}
	for k, v := range fs.numeric {
		out[string(k)] = v
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (fs FeatureSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(fs.Map())
}
