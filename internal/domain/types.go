// Package domain contains the core entities for diabetes subtype prediction:
// the evaluation request, the canonical feature set sent to the scorer, the
// clinical classification bands, score results and the reference records the
// prediction engine reads.
package domain

import (
	"time"
)

// Indicator names a banded clinical measurement.
type Indicator string

const (
	IndicatorPressure    Indicator = "pressure"
	IndicatorCholesterol Indicator = "cholesterol"
	IndicatorInsulin     Indicator = "insulin"
	IndicatorGlucose     Indicator = "glucose"
	IndicatorAge         Indicator = "age"
)

// Indicators lists every indicator in display order.
var Indicators = []Indicator{
	IndicatorPressure,
	IndicatorCholesterol,
	IndicatorInsulin,
	IndicatorGlucose,
	IndicatorAge,
}

// Band labels produced by the clinical classifier.
const (
	BandLow         = "Low"
	BandNormal      = "Normal"
	BandHigh        = "High"
	BandAbnormal    = "Abnormal"
	BandPrediabetes = "Prediabetes"
	BandDiabetes    = "Diabetes"
	BandInfant      = "Infant"
	BandAdolescent  = "Adolescent"
	BandAdult       = "Adult"
	BandElderly     = "Elderly"
)

// ClinicalClassification maps each supplied indicator to its band label.
// Indicators whose measurement was not supplied are absent.
type ClinicalClassification map[Indicator]string

// Provenance tells where a score came from.
type Provenance string

const (
	ProvenanceRemote    Provenance = "remote"
	ProvenanceSimulated Provenance = "simulated"
	ProvenanceError     Provenance = "error"
)

// ScoreResult is the output of either scorer.
type ScoreResult struct {
	PredictedClass    string             `json:"predictedClass"`
	Probability       float64            `json:"probability"`
	Probabilities     map[string]float64 `json:"probabilities"`
	FeatureImportance map[string]float64 `json:"featureImportance"`
	Provenance        Provenance         `json:"provenance"`
	Message           string             `json:"message,omitempty"`
}

// PatientRef identifies the patient an evaluation belongs to.
type PatientRef struct {
	ID int64 `json:"idPaciente"`
}

// EvaluationRequest is one patient's clinical snapshot as submitted by a client.
type EvaluationRequest struct {
	Patient *PatientRef `json:"pacientedto,omitempty"`

	GeneticMarkers          string `json:"marcadoresGeneticos"`
	Autoantibodies          string `json:"autoanticuerpos"`
	FamilyHistory           string `json:"antecedentesFamiliares"`
	EnvironmentalFactors    string `json:"factoresAmbientales"`
	Ethnicity               string `json:"etnicidad"`
	DietaryHabits           string `json:"habitosAlimenticios"`
	GlucoseToleranceTest    string `json:"pruebaToleranciaGlucosa"`
	LiverFunctionTests      string `json:"pruebasFuncionHepatica"`
	CysticFibrosisDiagnosis string `json:"diagnosticoFibrosisQuistica"`
	SteroidUse              string `json:"usoEsteroides"`
	GeneticTesting          string `json:"pruebasGeneticas"`
	PregnancyHistory        string `json:"historialEmbarazos"`
	PreviousGestational     string `json:"diabetesGestacionalPrevia"`
	PCOSHistory             string `json:"historialPcos"`
	SmokingStatus           string `json:"estadoTabaquismo"`
	EarlyOnsetSymptoms      string `json:"sintomasInicioTemprano"`
	SocioeconomicFactors    string `json:"factoresSocioeconomicos"`
	AlcoholConsumption      string `json:"consumoAlcohol"`
	PhysicalActivity        string `json:"actividadFisica"`
	UrineTest               string `json:"pruebaOrina"`

	InsulinLevels          Number `json:"nivelesInsulina"`
	Age                    Number `json:"edad"`
	BMI                    Number `json:"indiceMasaCorporal"`
	BloodPressure          Number `json:"presionArterial"`
	CholesterolLevels      Number `json:"nivelesColesterol"`
	WaistCircumference     Number `json:"circunferenciaCintura"`
	GlucoseLevels          Number `json:"nivelesGlucosa"`
	PregnancyWeightGain    Number `json:"aumentoPesoEmbarazo"`
	PancreaticHealth       Number `json:"saludPancreatica"`
	PulmonaryFunction      Number `json:"funcionPulmonar"`
	NeurologicalAssessment Number `json:"evaluacionesNeurologicas"`
	DigestiveEnzymeLevels  Number `json:"nivelesEnzimasDigestivas"`
	BirthWeight            Number `json:"pesoNacimiento"`
}

// PatientID returns the referenced patient id, or zero when none was given.
func (r *EvaluationRequest) PatientID() int64 {
	if r.Patient == nil {
		return 0
	}
	return r.Patient.ID
}

// CategoricalValues returns the raw categorical fields keyed by canonical feature.
func (r *EvaluationRequest) CategoricalValues() map[FeatureKey]string {
	return map[FeatureKey]string{
		FeatureGeneticMarkers:          r.GeneticMarkers,
		FeatureAutoantibodies:          r.Autoantibodies,
		FeatureFamilyHistory:           r.FamilyHistory,
		FeatureEnvironmentalFactors:    r.EnvironmentalFactors,
		FeatureEthnicity:               r.Ethnicity,
		FeatureDietaryHabits:           r.DietaryHabits,
		FeatureGlucoseToleranceTest:    r.GlucoseToleranceTest,
		FeatureLiverFunctionTests:      r.LiverFunctionTests,
		FeatureCysticFibrosisDiagnosis: r.CysticFibrosisDiagnosis,
		FeatureSteroidUse:              r.SteroidUse,
		FeatureGeneticTesting:          r.GeneticTesting,
		FeaturePregnancyHistory:        r.PregnancyHistory,
		FeaturePreviousGestational:     r.PreviousGestational,
		FeaturePCOSHistory:             r.PCOSHistory,
		FeatureSmokingStatus:           r.SmokingStatus,
		FeatureEarlyOnsetSymptoms:      r.EarlyOnsetSymptoms,
		FeatureSocioeconomicFactors:    r.SocioeconomicFactors,
		FeatureAlcoholConsumption:      r.AlcoholConsumption,
		FeaturePhysicalActivity:        r.PhysicalActivity,
		FeatureUrineTest:               r.UrineTest,
	}
}

// NumericValues returns the numeric fields keyed by canonical feature.
func (r *EvaluationRequest) NumericValues() map[FeatureKey]Number {
	return map[FeatureKey]Number{
		FeatureInsulinLevels:          r.InsulinLevels,
		FeatureAge:                    r.Age,
		FeatureBMI:                    r.BMI,
		FeatureBloodPressure:          r.BloodPressure,
		FeatureCholesterolLevels:      r.CholesterolLevels,
		FeatureWaistCircumference:     r.WaistCircumference,
		FeatureGlucoseLevels:          r.GlucoseLevels,
		FeaturePregnancyWeightGain:    r.PregnancyWeightGain,
		FeaturePancreaticHealth:       r.PancreaticHealth,
		FeaturePulmonaryFunction:      r.PulmonaryFunction,
		FeatureNeurologicalAssessment: r.NeurologicalAssessment,
		FeatureDigestiveEnzymeLevels:  r.DigestiveEnzymeLevels,
		FeatureBirthWeight:            r.BirthWeight,
	}
}

// DiabetesTypeInfo is the reference record for one diabetes subtype.
type DiabetesTypeInfo struct {
	ID              int64  `json:"idTipoDiabetes,omitempty"`
	NameEn          string `json:"nombreEn"`
	NameEs          string `json:"nombreEs"`
	Description     string `json:"descripcion"`
	Causes          string `json:"causas"`
	Symptoms        string `json:"sintomas"`
	Treatment       string `json:"tratamiento"`
	Recommendations string `json:"recomendaciones"`
	IsCommon        bool   `json:"esComun"`
}

// PredictionResponse is the complete answer to a prediction request.
type PredictionResponse struct {
	DiabetesType    string                 `json:"tipoDiabetes"`
	DiabetesTypeEs  string                 `json:"tipoDiabetesEs"`
	Probability     float64                `json:"probabilidad"`
	Classifications ClinicalClassification `json:"clasificaciones"`
	Explanation     string                 `json:"explicacion"`
	Recommendations string                 `json:"recomendacionesPersonalizadas"`
	TypeInfo        *DiabetesTypeInfo      `json:"informacionTipo"`
	Provenance      Provenance             `json:"provenance"`
	PredictedAt     time.Time              `json:"fechaPrediccion"`
}

// Patient is a stored patient record.
type Patient struct {
	ID        int64      `json:"idPaciente"`
	Code      string     `json:"codigoPaciente"`
	Name      string     `json:"nombre"`
	BirthDate *time.Time `json:"fechaNacimiento,omitempty"`
	Gender    string     `json:"genero"`
	Phone     string     `json:"telefono"`
	Email     string     `json:"email"`
	Address   string     `json:"direccion"`
}

// FieldGuide documents one input field for form builders.
type FieldGuide struct {
	ID               int64  `json:"idGuia,omitempty"`
	FieldName        string `json:"nombreCampo"`
	TitleEs          string `json:"tituloEs"`
	DescriptionEs    string `json:"descripcionEs"`
	Examples         string `json:"ejemplos"`
	RecommendedRange string `json:"rangoRecomendado"`
	Unit             string `json:"unidadMedida"`
}
