package domain

import "math"

// ErrorClass is the predicted class reported when scoring failed outright.
const ErrorClass = "Error"

// Canonical diabetes subtype names. These are the scorer's class labels.
const (
	TypeSteroidInduced  = "Steroid-Induced Diabetes"
	TypePrediabetic     = "Prediabetic"
	TypeOne             = "Type 1 Diabetes"
	TypeWolfram         = "Wolfram Syndrome"
	TypeLADA            = "LADA"
	TypeTwo             = "Type 2 Diabetes"
	TypeWolcottRallison = "Wolcott-Rallison Syndrome"
	TypeSecondary       = "Secondary Diabetes"
	TypeThreeC          = "Type 3c Diabetes (Pancreatogenic Diabetes)"
	TypeGestational     = "Gestational Diabetes"
	TypeCFRD            = "Cystic Fibrosis-Related Diabetes (CFRD)"
	TypeMODY            = "MODY"
)

// DiabetesTypes is the closed class vocabulary in scorer order.
var DiabetesTypes = []string{
	TypeSteroidInduced,
	TypePrediabetic,
	TypeOne,
	TypeWolfram,
	TypeLADA,
	TypeTwo,
	TypeWolcottRallison,
	TypeSecondary,
	TypeThreeC,
	TypeGestational,
	TypeCFRD,
	TypeMODY,
}

// DiabetesTypeNameEs maps canonical names to their Spanish display names.
var DiabetesTypeNameEs = map[string]string{
	TypeSteroidInduced:  "Diabetes Inducida por Esteroides",
	TypePrediabetic:     "Prediabetes",
	TypeOne:             "Diabetes Tipo 1",
	TypeWolfram:         "Síndrome de Wolfram",
	TypeLADA:            "Diabetes Autoinmune Latente en Adultos",
	TypeTwo:             "Diabetes Tipo 2",
	TypeWolcottRallison: "Síndrome de Wolcott-Rallison",
	TypeSecondary:       "Diabetes Secundaria",
	TypeThreeC:          "Diabetes Tipo 3c (Pancreatogénica)",
	TypeGestational:     "Diabetes Gestacional",
	TypeCFRD:            "Diabetes Relacionada con Fibrosis Quística",
	TypeMODY:            "MODY (Diabetes de la Madurez de Inicio Juvenil)",
}

var commonTypes = map[string]bool{
	TypeOne:         true,
	TypeTwo:         true,
	TypePrediabetic: true,
	TypeGestational: true,
}

// IsKnownDiabetesType reports whether name is in the class vocabulary.
func IsKnownDiabetesType(name string) bool {
	_, ok := DiabetesTypeNameEs[name]
	return ok
}

// IsCommonType reports whether name is one of the four common subtypes.
func IsCommonType(name string) bool {
	return commonTypes[name]
}

// SpanishTypeName returns the Spanish name, or name itself when unknown.
func SpanishTypeName(name string) string {
	if es, ok := DiabetesTypeNameEs[name]; ok {
		return es
	}
	return name
}

// NormalizeDistribution returns a distribution over every known class that
// sums to 1. Unknown classes, negative and non-finite values are dropped.
// When nothing usable remains, all mass goes to fallback.
func NormalizeDistribution(in map[string]float64, fallback string) map[string]float64 {
	out := make(map[string]float64, len(DiabetesTypes))
	var total float64
	for _, name := range DiabetesTypes {
		v := in[name]
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		out[name] = v
		total += v
	}

	if total <= 0 {
		if IsKnownDiabetesType(fallback) {
			out[fallback] = 1
		}
		return out
	}

	for name, v := range out {
		out[name] = v / total
	}
	return out
}
