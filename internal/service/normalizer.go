package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/diabetes-prediction-engine/internal/domain"
)

// categoricalSynonyms maps Spanish form values onto the English tokens the
// scorer was trained on.
var categoricalSynonyms = map[string]string{
	"Sí":             "Yes",
	"No":             "No",
	"Positivo":       "Positive",
	"Negativo":       "Negative",
	"Presente":       "Present",
	"Ausente":        "Absent",
	"Alto":           "High",
	"Bajo":           "Low",
	"Moderado":       "Moderate",
	"Saludable":      "Healthy",
	"No saludable":   "Unhealthy",
	"Normal":         "Normal",
	"Anormal":        "Abnormal",
	"Fumador":        "Smoker",
	"No fumador":     "Non-Smoker",
	"Complicaciones": "Complications",
}

// Normalizer turns an EvaluationRequest into the scorer's FeatureSet.
//
// The default policy is fail-open: unparseable numbers become 0.0 and absent
// values become 0.0 or "". NormalizeStrict reports unparseable numbers
// instead.
type Normalizer struct {
	folded map[string]string
}

// NewNormalizer creates a normalizer with the built-in synonym table.
func NewNormalizer() *Normalizer {
	n := &Normalizer{folded: make(map[string]string, len(categoricalSynonyms))}
	for k, v := range categoricalSynonyms {
		n.folded[foldToken(k)] = v
	}
	return n
}

// Normalize builds the FeatureSet. It never fails.
func (n *Normalizer) Normalize(req *domain.EvaluationRequest) domain.FeatureSet {
	categorical := make(map[domain.FeatureKey]string, len(domain.CategoricalFeatures))
	for key, raw := range req.CategoricalValues() {
		categorical[key] = n.Canonicalize(raw)
	}

	numeric := make(map[domain.FeatureKey]float64, len(domain.NumericFeatures))
	for key, num := range req.NumericValues() {
		numeric[key] = num.Value()
	}

	return domain.NewFeatureSet(categorical, numeric)
}

// NormalizeStrict builds the FeatureSet but rejects numeric fields that were
// supplied and could not be parsed.
func (n *Normalizer) NormalizeStrict(req *domain.EvaluationRequest) (domain.FeatureSet, error) {
	errs := &domain.ValidationErrors{}
	values := req.NumericValues()
	for _, key := range domain.NumericFeatures {
		num := values[key]
		if num.Present() && !num.Valid() {
			errs.Add(string(key), "valor numérico inválido", num.Raw())
		}
	}
	if errs.HasErrors() {
		return domain.FeatureSet{}, errs
	}
	return n.Normalize(req), nil
}

// Canonicalize normalizes one categorical value. Unmapped tokens pass
// through after NFKC normalization and trimming.
func (n *Normalizer) Canonicalize(raw string) string {
	value := strings.TrimSpace(norm.NFKC.String(raw))
	if value == "" {
		return ""
	}
	if v, ok := categoricalSynonyms[value]; ok {
		return v
	}
	if v, ok := n.folded[foldToken(value)]; ok {
		return v
	}
	return value
}

// foldToken strips accents and case so "si", "SÍ" and "Sí" compare equal.
func foldToken(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(strings.Join(strings.Fields(stripped), " "))
}
