package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diabetes-prediction-engine/internal/domain"
)

func TestSeedCoversVocabulary(t *testing.T) {
	types := DiabetesTypes()
	require.Len(t, types, len(domain.DiabetesTypes))

	for i, info := range types {
		assert.Equal(t, domain.DiabetesTypes[i], info.NameEn)
		assert.Equal(t, domain.SpanishTypeName(info.NameEn), info.NameEs)
		assert.Equal(t, domain.IsCommonType(info.NameEn), info.IsCommon, info.NameEn)
		assert.NotEmpty(t, info.Description)
		assert.NotEmpty(t, info.Recommendations)
	}
}

func TestSeedReturnsCopies(t *testing.T) {
	first := DiabetesTypes()
	first[0].NameEs = "changed"

	second := DiabetesTypes()
	assert.NotEqual(t, "changed", second[0].NameEs)
}

func TestMemoryStore_FindByCanonicalName(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	info, err := store.LookupDiabetesInfo(ctx, domain.TypeTwo)
	require.NoError(t, err)
	assert.Equal(t, "Diabetes Tipo 2", info.NameEs)
	assert.True(t, info.IsCommon)

	_, err = store.FindByCanonicalName(ctx, "Type 4 Diabetes")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestMemoryStore_List(t *testing.T) {
	store := NewMemoryStore()

	types, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 12)
	assert.Equal(t, domain.TypeSteroidInduced, types[0].NameEn)
	assert.Equal(t, int64(1), types[0].ID)
}

func TestMemoryStore_Guides(t *testing.T) {
	guides := NewMemoryStore().Guides()
	ctx := context.Background()

	all, err := guides.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 8)

	glucose, err := guides.FindByField(ctx, "niveles_glucosa")
	require.NoError(t, err)
	assert.Equal(t, "mg/dL", glucose.Unit)

	_, err = guides.FindByField(ctx, "peso")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
