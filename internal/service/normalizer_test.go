package service

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diabetes-prediction-engine/internal/domain"
)

func decodeRequest(t *testing.T, body string) *domain.EvaluationRequest {
	t.Helper()
	var req domain.EvaluationRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return &req
}

func TestNormalizer_Canonicalize(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		input    string
		expected string
	}{
		{"Sí", "Yes"},
		{"si", "Yes"},
		{"SÍ", "Yes"},
		{"  Positivo ", "Positive"},
		{"negativo", "Negative"},
		{"No saludable", "Unhealthy"},
		{"no  saludable", "Unhealthy"},
		{"No fumador", "Non-Smoker"},
		{"Complicaciones", "Complications"},
		{"No", "No"},
		{"Positive", "Positive"},
		{"Hispanic", "Hispanic"},
		{"", ""},
		{"   ", ""},
		{"Ｐｏｓｉｔｉｖｏ", "Positive"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, n.Canonicalize(tt.input))
		})
	}
}

func TestNormalizer_Normalize(t *testing.T) {
	n := NewNormalizer()

	req := decodeRequest(t, `{
		"edad": "45",
		"nivelesGlucosa": 180,
		"nivelesInsulina": "abc",
		"autoanticuerpos": "Negativo",
		"antecedentesFamiliares": "Sí",
		"usoEsteroides": true
	}`)

	fs := n.Normalize(req)

	assert.Equal(t, 33, fs.Len())
	assert.Equal(t, 45.0, fs.Numeric(domain.FeatureAge))
	assert.Equal(t, 180.0, fs.Numeric(domain.FeatureGlucoseLevels))
	assert.Equal(t, 0.0, fs.Numeric(domain.FeatureInsulinLevels), "unparseable numbers fail open to zero")
	assert.Equal(t, 0.0, fs.Numeric(domain.FeatureBMI), "absent numbers default to zero")
	assert.Equal(t, "Negative", fs.Categorical(domain.FeatureAutoantibodies))
	assert.Equal(t, "Yes", fs.Categorical(domain.FeatureFamilyHistory))
	assert.Equal(t, "", fs.Categorical(domain.FeatureEthnicity))
}

func TestNormalizer_NormalizeStrict(t *testing.T) {
	n := NewNormalizer()

	t.Run("rejects unparseable numbers", func(t *testing.T) {
		req := decodeRequest(t, `{"edad": 45, "nivelesGlucosa": "alta", "pesoNacimiento": "x"}`)

		_, err := n.NormalizeStrict(req)
		require.Error(t, err)

		var verrs *domain.ValidationErrors
		require.True(t, errors.As(err, &verrs))
		assert.ElementsMatch(t, []string{"niveles_glucosa", "peso_nacimiento"}, verrs.Fields())
	})

	t.Run("accepts absent and numeric strings", func(t *testing.T) {
		req := decodeRequest(t, `{"edad": "45", "nivelesGlucosa": 120}`)

		fs, err := n.NormalizeStrict(req)
		require.NoError(t, err)
		assert.Equal(t, 45.0, fs.Numeric(domain.FeatureAge))
	})
}
