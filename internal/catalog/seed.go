// Package catalog holds the built-in diabetes type reference data and input
// field guides, plus an in-memory store over them for deployments without a
// database.
package catalog

import (
	"github.com/diabetes-prediction-engine/internal/domain"
)

// DiabetesTypes returns fresh copies of the twelve reference records.
func DiabetesTypes() []*domain.DiabetesTypeInfo {
	out := make([]*domain.DiabetesTypeInfo, 0, len(diabetesTypes))
	for _, t := range diabetesTypes {
		t := t
		out = append(out, &t)
	}
	return out
}

// FieldGuides returns fresh copies of the built-in field guides.
func FieldGuides() []*domain.FieldGuide {
	out := make([]*domain.FieldGuide, 0, len(fieldGuides))
	for _, g := range fieldGuides {
		g := g
		out = append(out, &g)
	}
	return out
}

var diabetesTypes = []domain.DiabetesTypeInfo{
	{
		NameEn:          domain.TypeSteroidInduced,
		NameEs:          "Diabetes Inducida por Esteroides",
		Description:     "Forma de diabetes causada por el uso prolongado de glucocorticoides que afectan la sensibilidad a la insulina.",
		Causes:          "Uso de corticosteroides en altas dosis o por tiempo prolongado.",
		Symptoms:        "Aumento de sed, micción frecuente, fatiga, visión borrosa durante tratamiento con esteroides.",
		Treatment:       "Ajuste de dosis de esteroides si es posible, medicamentos antidiabéticos, posible insulina temporal.",
		Recommendations: "Monitoreo de glucosa durante tratamientos con esteroides, educación sobre interacciones medicamentosas.",
	},
	{
		NameEn:          domain.TypePrediabetic,
		NameEs:          "Prediabetes",
		Description:     "Estado intermedio donde los niveles de glucosa son más altos de lo normal pero no lo suficiente para diagnosticar diabetes.",
		Causes:          "Sobrepeso, sedentarismo, dieta inadecuada, antecedentes familiares de diabetes.",
		Symptoms:        "Generalmente asintomática, puede haber fatiga leve o aumento de sed ocasional.",
		Treatment:       "Cambios en estilo de vida, pérdida de peso del 5-10%, aumento de actividad física.",
		Recommendations: "Control anual, dieta balanceada, ejercicio regular, prevención de progresión a diabetes tipo 2.",
		IsCommon:        true,
	},
	{
		NameEn:          domain.TypeOne,
		NameEs:          "Diabetes Tipo 1",
		Description:     "Enfermedad autoinmune donde el sistema inmunológico ataca y destruye las células beta del páncreas que producen insulina.",
		Causes:          "Factores genéticos y ambientales, posiblemente desencadenados por virus o factores autoinmunes.",
		Symptoms:        "Sed excesiva, hambre constante, micción frecuente, pérdida de peso inexplicable, fatiga extrema.",
		Treatment:       "Insulina inyectable o por bomba de infusión, monitoreo continuo de glucosa, conteo de carbohidratos.",
		Recommendations: "Control estricto de glucosa, educación diabetológica, chequeos médicos regulares, prevención de complicaciones.",
		IsCommon:        true,
	},
	{
		NameEn:          domain.TypeWolfram,
		NameEs:          "Síndrome de Wolfram",
		Description:     "Trastorno genético poco común que combina diabetes mellitus con atrofia óptica, pérdida de audición y problemas neurológicos.",
		Causes:          "Mutaciones en el gen WFS1, herencia autosómica recesiva.",
		Symptoms:        "Diabetes infantil, pérdida progresiva de visión, pérdida de audición, diabetes insípida, problemas neurológicos.",
		Treatment:       "Insulina para la diabetes, tratamiento sintomático para problemas visuales y auditivos, manejo multidisciplinario.",
		Recommendations: "Atención por equipo multidisciplinario, apoyo genético, seguimiento neurológico y oftalmológico regular.",
	},
	{
		NameEn:          domain.TypeLADA,
		NameEs:          "Diabetes Autoinmune Latente en Adultos",
		Description:     "Variante autoinmune de diabetes que se presenta en adultos, con progresión más lenta que la tipo 1.",
		Causes:          "Autoinmunidad pancreática similar a diabetes tipo 1, factores genéticos, generalmente en adultos >30 años.",
		Symptoms:        "Síntomas similares a diabetes tipo 2 pero en personas delgadas, progresión gradual, presencia de autoanticuerpos.",
		Treatment:       "Insulina eventualmente necesaria, posible uso de medicamentos orales en etapas iniciales, similar a tipo 1.",
		Recommendations: "Pruebas de autoanticuerpos para diagnóstico, seguimiento endocrinológico estrecho, educación sobre insulinoterapia.",
	},
	{
		NameEn:          domain.TypeTwo,
		NameEs:          "Diabetes Tipo 2",
		Description:     "Forma más común de diabetes, caracterizada por resistencia a la insulina y disfunción progresiva de las células beta.",
		Causes:          "Obesidad, sedentarismo, dieta poco saludable, factores genéticos, edad avanzada.",
		Symptoms:        "Sed aumentada, hambre constante, micción frecuente, visión borrosa, fatiga, heridas que sanan lentamente.",
		Treatment:       "Cambios en estilo de vida, medicamentos orales (metformina, sulfonilureas), posible insulina en etapas avanzadas.",
		Recommendations: "Pérdida de peso, ejercicio regular, dieta saludable, monitoreo glucémico, prevención de complicaciones cardiovasculares.",
		IsCommon:        true,
	},
	{
		NameEn:          domain.TypeWolcottRallison,
		NameEs:          "Síndrome de Wolcott-Rallison",
		Description:     "Trastorno genético raro caracterizado por diabetes neonatal permanente, displasia epifisaria múltiple y disfunción hepática.",
		Causes:          "Mutaciones en el gen EIF2AK3, herencia autosómica recesiva.",
		Symptoms:        "Diabetes neonatal permanente, problemas esqueléticos (displasia epifisaria), trastornos hepáticos recurrentes.",
		Treatment:       "Insulina desde edad temprana, manejo ortopédico de problemas esqueléticos, tratamiento de disfunción hepática.",
		Recommendations: "Atención especializada multidisciplinaria, consejo genético, manejo neonatal intensivo, seguimiento hepático.",
	},
	{
		NameEn:          domain.TypeSecondary,
		NameEs:          "Diabetes Secundaria",
		Description:     "Diabetes que surge como consecuencia de otra enfermedad o condición médica o uso de ciertos medicamentos.",
		Causes:          "Enfermedades pancreáticas (pancreatitis), endocrinopatías (síndrome de Cushing), medicamentos (antipsicóticos).",
		Symptoms:        "Depende de la condición subyacente, generalmente incluye síntomas clásicos de diabetes.",
		Treatment:       "Tratamiento de la condición subyacente, manejo glucémico con insulina o medicamentos según severidad.",
		Recommendations: "Evaluación completa para identificar causa subyacente, manejo integral de condición primaria y diabetes.",
	},
	{
		NameEn:          domain.TypeThreeC,
		NameEs:          "Diabetes Tipo 3c (Pancreatogénica)",
		Description:     "Diabetes resultante de daño al páncreas exocrino, generalmente por pancreatitis crónica, cáncer o resección pancreática.",
		Causes:          "Pancreatitis crónica, cáncer de páncreas, cirugía pancreática, fibrosis quística, hemocromatosis.",
		Symptoms:        "Diabetes junto con síntomas de insuficiencia pancreática exocrina (esteatorrea, pérdida de peso, dolor abdominal).",
		Treatment:       "Insulina (frecuentemente requerida), enzimas pancreáticas suplementarias, manejo nutricional especializado.",
		Recommendations: "Seguimiento por gastroenterología y endocrinología, soporte nutricional, manejo del dolor, prevención de complicaciones.",
	},
	{
		NameEn:          domain.TypeGestational,
		NameEs:          "Diabetes Gestacional",
		Description:     "Diabetes que se desarrolla durante el embarazo en mujeres que no tenían diabetes previamente.",
		Causes:          "Cambios hormonales del embarazo, predisposición genética, sobrepeso, edad materna avanzada.",
		Symptoms:        "Generalmente asintomática, detectada mediante pruebas de glucosa rutinarias durante el embarazo.",
		Treatment:       "Control dietético, ejercicio moderado, posiblemente insulina si no se controla con dieta y ejercicio.",
		Recommendations: "Monitoreo durante el embarazo, control posparto a las 6-12 semanas, prevención de diabetes tipo 2 futura.",
		IsCommon:        true,
	},
	{
		NameEn:          domain.TypeCFRD,
		NameEs:          "Diabetes Relacionada con Fibrosis Quística",
		Description:     "Diabetes asociada a fibrosis quística, resultante del daño progresivo al páncreas que afecta función endocrina y exocrina.",
		Causes:          "Fibrosis quística, destrucción pancreática progresiva por tapones de moco e inflamación.",
		Symptoms:        "Síntomas diabéticos junto con síntomas respiratorios y digestivos característicos de fibrosis quística.",
		Treatment:       "Insulina (generalmente requerida), manejo nutricional intensivo, tratamiento agresivo de fibrosis quística.",
		Recommendations: "Equipo multidisciplinario (endocrinólogo, neumólogo, nutricionista), monitorización estrecha, educación sobre insulinoterapia.",
	},
	{
		NameEn:          domain.TypeMODY,
		NameEs:          "MODY (Diabetes de la Madurez de Inicio Juvenil)",
		Description:     "Forma monogénica de diabetes hereditaria, generalmente aparece antes de los 25 años, sigue patrón autosómico dominante.",
		Causes:          "Mutaciones genéticas específicas (HNF1A, HNF4A, GCK), herencia autosómica dominante.",
		Symptoms:        "Hiperglucemia leve a moderada, diagnóstico frecuente en jóvenes no obesos, fuerte historia familiar.",
		Treatment:       "Depende del tipo de MODY: desde solo dieta hasta sulfonilureas o insulina, tratamiento personalizado según mutación.",
		Recommendations: "Pruebas genéticas para confirmación y guía de tratamiento, seguimiento familiar, asesoramiento genético.",
	},
}

var fieldGuides = []domain.FieldGuide{
	{
		FieldName:        "edad",
		TitleEs:          "Edad del Paciente",
		DescriptionEs:    "Edad del paciente en años completos. Es un factor crucial en el diagnóstico de diferentes tipos de diabetes.",
		Examples:         "45, 30, 60, 12",
		RecommendedRange: "0-120 años",
		Unit:             "años",
	},
	{
		FieldName:        "niveles_glucosa",
		TitleEs:          "Niveles de Glucosa en Sangre",
		DescriptionEs:    "Medición de glucosa en sangre en ayunas. Valores elevados indican posible diabetes.",
		Examples:         "100, 180, 125, 85",
		RecommendedRange: "70-125 mg/dL",
		Unit:             "mg/dL",
	},
	{
		FieldName:        "niveles_insulina",
		TitleEs:          "Niveles de Insulina",
		DescriptionEs:    "Medición de insulina en sangre. Ayuda a determinar resistencia a la insulina.",
		Examples:         "15, 35, 50, 8",
		RecommendedRange: "2.6-24.9 μIU/mL",
		Unit:             "μIU/mL",
	},
	{
		FieldName:        "autoanticuerpos",
		TitleEs:          "Autoanticuerpos Pancreáticos",
		DescriptionEs:    "Presencia de autoanticuerpos que atacan células beta del páncreas. Marcador de diabetes autoinmune.",
		Examples:         "Positive, Negative",
		RecommendedRange: "Negative/Positive",
	},
	{
		FieldName:        "antecedentes_familiares",
		TitleEs:          "Antecedentes Familiares de Diabetes",
		DescriptionEs:    "Historia de diabetes en familiares de primer grado (padres, hermanos).",
		Examples:         "Yes, No",
		RecommendedRange: "Yes/No",
	},
	{
		FieldName:        "indice_masa_corporal",
		TitleEs:          "Índice de Masa Corporal (IMC)",
		DescriptionEs:    "Relación entre peso y altura. Indica estado nutricional.",
		Examples:         "24.5, 30.2, 18.8, 32.0",
		RecommendedRange: "18.5-24.9 kg/m²",
		Unit:             "kg/m²",
	},
	{
		FieldName:        "presion_arterial",
		TitleEs:          "Presión Arterial Sistólica",
		DescriptionEs:    "Presión arterial sistólica (la superior). La hipertensión es común en diabetes.",
		Examples:         "120, 130, 140, 110",
		RecommendedRange: "90-130 mmHg",
		Unit:             "mmHg",
	},
	{
		FieldName:        "niveles_colesterol",
		TitleEs:          "Niveles de Colesterol Total",
		DescriptionEs:    "Colesterol total en sangre. La diabetes aumenta riesgo cardiovascular.",
		Examples:         "180, 220, 240, 190",
		RecommendedRange: "<200 mg/dL",
		Unit:             "mg/dL",
	},
}
