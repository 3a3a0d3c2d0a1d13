package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/diabetes-prediction-engine/internal/domain"
)

const descriptionLimit = 200

// Synthesizer renders the Spanish explanation and recommendation texts.
// It performs no I/O.
type Synthesizer struct{}

// NewSynthesizer creates a synthesizer.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{}
}

// Explain returns the explanation and the personalized recommendations for
// a score. info may be nil.
func (s *Synthesizer) Explain(result *domain.ScoreResult, classification domain.ClinicalClassification, info *domain.DiabetesTypeInfo) (string, string) {
	return s.explanation(result, classification, info), s.recommendations(result, classification, info)
}

func (s *Synthesizer) explanation(result *domain.ScoreResult, classification domain.ClinicalClassification, info *domain.DiabetesTypeInfo) string {
	var b strings.Builder

	b.WriteString("## 📊 Resultado de la Predicción\n\n")
	fmt.Fprintf(&b, "**Tipo de diabetes predicho:** %s\n", domain.SpanishTypeName(result.PredictedClass))
	fmt.Fprintf(&b, "**Confianza del modelo:** %.1f%%\n\n", result.Probability*100)

	b.WriteString("## 🔍 Factores Clave Identificados\n\n")
	if len(result.FeatureImportance) == 0 {
		b.WriteString("• El modelo no reportó la importancia de los factores.\n")
	}
	for _, e := range topEntries(result.FeatureImportance, 5, "") {
		fmt.Fprintf(&b, "• **%s**: %.0f%%\n", domain.SpanishFeatureName(e.key), e.value*100)
	}

	if len(classification) > 0 {
		b.WriteString("\n## 🩺 Interpretación de Valores\n\n")
		for _, ind := range domain.Indicators {
			band, ok := classification[ind]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "• **%s**: %s\n", domain.IndicatorNameEs[ind], domain.BandLabelEs(ind, band))
		}
	}

	if info != nil && info.Description != "" {
		fmt.Fprintf(&b, "\n## ℹ️ Acerca de %s\n\n", info.NameEs)
		b.WriteString(truncate(info.Description, descriptionLimit))
		b.WriteString("\n")
	}

	if len(result.Probabilities) > 1 {
		b.WriteString("\n## 🎯 Otras Posibilidades\n\n")
		for _, e := range topEntries(result.Probabilities, 3, result.PredictedClass) {
			fmt.Fprintf(&b, "• %s: %.1f%%\n", domain.SpanishTypeName(e.key), e.value*100)
		}
	}

	return b.String()
}

func (s *Synthesizer) recommendations(result *domain.ScoreResult, classification domain.ClinicalClassification, info *domain.DiabetesTypeInfo) string {
	var b strings.Builder

	b.WriteString("## 📋 Recomendaciones Personalizadas\n\n")

	if info != nil && info.Recommendations != "" {
		fmt.Fprintf(&b, "**Recomendaciones específicas para %s:**\n%s\n\n", info.NameEs, info.Recommendations)
	}

	b.WriteString("**Basado en sus valores clínicos:**\n")
	for _, ind := range []domain.Indicator{
		domain.IndicatorGlucose,
		domain.IndicatorInsulin,
		domain.IndicatorPressure,
		domain.IndicatorCholesterol,
	} {
		if advice, ok := bandAdvice[ind][classification[ind]]; ok {
			b.WriteString(advice)
		}
	}

	b.WriteString("\n**Recomendaciones generales:**\n")
	for _, line := range generalChecklist {
		b.WriteString(line)
	}

	if len(result.FeatureImportance) > 0 {
		b.WriteString("\n**Factores críticos identificados por el modelo:**\n")
		for _, e := range topEntries(result.FeatureImportance, 3, "") {
			fmt.Fprintf(&b, "• **%s** fue determinante en el diagnóstico. Mantenga este valor en observación.\n",
				domain.SpanishFeatureName(e.key))
		}
	}

	if note, ok := ageNotes[classification[domain.IndicatorAge]]; ok {
		b.WriteString("\n**Consideraciones según grupo etario:**\n")
		b.WriteString(note)
	}

	return b.String()
}

var bandAdvice = map[domain.Indicator]map[string]string{
	domain.IndicatorGlucose: {
		domain.BandDiabetes:    "• **Niveles de glucosa elevados**: Se recomienda consulta inmediata con endocrinólogo, monitoreo diario de glucosa y ajuste dietético.\n",
		domain.BandPrediabetes: "• **Estado prediabético**: Implementar cambios en estilo de vida, realizar ejercicio regular (30 min/día) y dieta baja en carbohidratos refinados.\n",
		domain.BandNormal:      "• **Glucosa normal**: Mantener hábitos saludables y control anual.\n",
	},
	domain.IndicatorInsulin: {
		domain.BandDiabetes:    "• **Resistencia a la insulina**: Reducir consumo de azúcares simples, aumentar actividad física y considerar evaluación de síndrome metabólico.\n",
		domain.BandPrediabetes: "• **Insulina elevada**: Aumentar consumo de fibra, realizar ejercicio de resistencia y control de peso.\n",
		domain.BandNormal:      "• **Insulina normal**: Mantener una alimentación equilibrada y repetir la medición en el próximo control.\n",
	},
	domain.IndicatorPressure: {
		domain.BandHigh:   "• **Presión arterial elevada**: Reducir consumo de sal, monitoreo periódico de presión y consulta con cardiólogo.\n",
		domain.BandLow:    "• **Presión arterial baja**: Aumentar hidratación, consumir pequeñas porciones frecuentes y evitar cambios bruscos de posición.\n",
		domain.BandNormal: "• **Presión arterial normal**: Mantener bajo el consumo de sal y medir la presión en cada control.\n",
	},
	domain.IndicatorCholesterol: {
		domain.BandHigh:     "• **Colesterol elevado**: Reducir grasas saturadas, aumentar consumo de ácidos grasos omega-3 y ejercicio aeróbico regular.\n",
		domain.BandAbnormal: "• **Colesterol muy elevado**: Consultar con el médico sobre tratamiento hipolipemiante, eliminar grasas trans y repetir el perfil lipídico en 3 meses.\n",
		domain.BandNormal:   "• **Colesterol normal**: Mantener una dieta rica en fibra y controlar el perfil lipídico una vez al año.\n",
	},
}

var generalChecklist = []string{
	"1. **Consulta médica**: Programar cita con especialista para confirmación diagnóstica y plan de tratamiento.\n",
	"2. **Exámenes complementarios**: Realizar hemoglobina glicosilada (HbA1c), perfil lipídico completo y función renal.\n",
	"3. **Educación diabetológica**: Participar en programas de educación sobre manejo de diabetes.\n",
	"4. **Seguimiento**: Control periódico cada 3-6 meses según indicación médica.\n",
	"5. **Emergencias**: Conocer signos de hipoglucemia/hiperglucemia y tener plan de acción.\n",
}

var ageNotes = map[string]string{
	domain.BandInfant:     "• **Niños**: Monitoreo estrecho por pediatra endocrinólogo, atención especial a crecimiento y desarrollo.\n",
	domain.BandAdolescent: "• **Adolescentes**: Educación sobre autocuidado, apoyo psicológico y adaptación escolar.\n",
	domain.BandElderly:    "• **Adulto mayor**: Evaluación de medicamentos concurrentes, prevención de complicaciones y soporte familiar.\n",
}

type entry struct {
	key   string
	value float64
}

// topEntries returns up to n entries sorted by value descending, then key.
// skip is left out of the result.
func topEntries(m map[string]float64, n int, skip string) []entry {
	entries := make([]entry, 0, len(m))
	for k, v := range m {
		if k == skip {
			continue
		}
		entries = append(entries, entry{k, v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].value != entries[j].value {
			return entries[i].value > entries[j].value
		}
		return entries[i].key < entries[j].key
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// truncate cuts s to limit runes and marks the cut with "...".
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
