package history

import (
	"database/sql"

	"github.com/diabetes-prediction-engine/internal/domain"
)

const recordColumns = `id, reference, patient_id,
	age, glucose, insulin, bmi, blood_pressure, cholesterol, input,
	diabetes_type, diabetes_type_es, probability, provenance,
	explanation, recommendations,
	pressure_class, cholesterol_class, insulin_class, glucose_class, age_class,
	evaluated_at, created_at`

const insertColumns = `reference, patient_id,
	age, glucose, insulin, bmi, blood_pressure, cholesterol, input,
	diabetes_type, diabetes_type_es, probability, provenance,
	explanation, recommendations,
	pressure_class, cholesterol_class, insulin_class, glucose_class, age_class,
	evaluated_at, created_at`

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRecord scans a row selected with recordColumns.
func scanRecord(s scanner) (*Record, error) {
	rec := &Record{}
	var patientID sql.NullInt64
	var age, glucose, insulin, bmi, pressure, cholest sql.NullFloat64
	var input sql.NullString
	var provenance string

	err := s.Scan(
		&rec.ID, &rec.Reference, &patientID,
		&age, &glucose, &insulin, &bmi, &pressure, &cholest, &input,
		&rec.DiabetesType, &rec.DiabetesTypeEs, &rec.Probability, &provenance,
		&rec.Explanation, &rec.Recommendations,
		&rec.PressureClass, &rec.CholesterolClass, &rec.InsulinClass, &rec.GlucoseClass, &rec.AgeClass,
		&rec.EvaluatedAt, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if patientID.Valid {
		id := patientID.Int64
		rec.PatientID = &id
	}
	rec.Age = nullable(age)
	rec.Glucose = nullable(glucose)
	rec.Insulin = nullable(insulin)
	rec.BMI = nullable(bmi)
	rec.BloodPressure = nullable(pressure)
	rec.Cholesterol = nullable(cholest)
	if input.Valid && input.String != "" {
		rec.Input = []byte(input.String)
	}
	rec.Provenance = domain.Provenance(provenance)
	return rec, nil
}

func scanRecords(rows *sql.Rows) ([]*Record, error) {
	defer rows.Close()

	result := []*Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// insertArgs returns the values for insertColumns in order.
func (r *Record) insertArgs() []interface{} {
	var patientID interface{}
	if r.PatientID != nil {
		patientID = *r.PatientID
	}
	var input interface{}
	if len(r.Input) > 0 {
		input = string(r.Input)
	}

	return []interface{}{
		r.Reference, patientID,
		floatArg(r.Age), floatArg(r.Glucose), floatArg(r.Insulin),
		floatArg(r.BMI), floatArg(r.BloodPressure), floatArg(r.Cholesterol), input,
		r.DiabetesType, r.DiabetesTypeEs, r.Probability, string(r.Provenance),
		r.Explanation, r.Recommendations,
		r.PressureClass, r.CholesterolClass, r.InsulinClass, r.GlucoseClass, r.AgeClass,
		r.EvaluatedAt, r.CreatedAt,
	}
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func floatArg(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
