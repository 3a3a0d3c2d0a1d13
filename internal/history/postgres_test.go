package history

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diabetes-prediction-engine/internal/domain"
)

var recordColumnNames = []string{
	"id", "reference", "patient_id",
	"age", "glucose", "insulin", "bmi", "blood_pressure", "cholesterol", "input",
	"diabetes_type", "diabetes_type_es", "probability", "provenance",
	"explanation", "recommendations",
	"pressure_class", "cholesterol_class", "insulin_class", "glucose_class", "age_class",
	"evaluated_at", "created_at",
}

func setupMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	mock.ExpectPing()
	store, err := NewPostgresStore(db)
	require.NoError(t, err)
	return store, mock
}

func TestPostgresStore_RequiresDB(t *testing.T) {
	_, err := NewPostgresStore(nil)
	assert.Error(t, err)
}

func TestPostgresStore_SaveMock(t *testing.T) {
	store, mock := setupMockStore(t)
	defer store.Close()

	rec := sampleRecord(t, domain.TypeTwo, `{"edad": 45, "nivelesGlucosa": 180}`)
	created := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO evaluations").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(42), created))

	require.NoError(t, store.Save(context.Background(), rec))
	assert.Equal(t, int64(42), rec.ID)
	assert.Equal(t, created, rec.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetMock(t *testing.T) {
	store, mock := setupMockStore(t)
	defer store.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM evaluations WHERE id = \\$1").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(recordColumnNames).AddRow(
			int64(5), "ref-5", int64(7),
			45.0, 180.0, nil, nil, nil, nil, []byte(`{"edad":45}`),
			domain.TypeTwo, "Diabetes Tipo 2", 0.9, "remote",
			"explicación", "recomendaciones",
			"", "", "", domain.BandDiabetes, domain.BandAdult,
			now, now,
		))

	rec, err := store.Get(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "ref-5", rec.Reference)
	require.NotNil(t, rec.PatientID)
	assert.Equal(t, int64(7), *rec.PatientID)
	require.NotNil(t, rec.Age)
	assert.Equal(t, 45.0, *rec.Age)
	assert.Nil(t, rec.Insulin)
	assert.Equal(t, domain.ProvenanceRemote, rec.Provenance)
	assert.JSONEq(t, `{"edad":45}`, string(rec.Input))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetNotFoundMock(t *testing.T) {
	store, mock := setupMockStore(t)
	defer store.Close()

	mock.ExpectQuery("SELECT (.+) FROM evaluations WHERE id = \\$1").
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := store.Get(context.Background(), 9)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CountByTypeMock(t *testing.T) {
	store, mock := setupMockStore(t)
	defer store.Close()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM evaluations WHERE diabetes_type = \\$1").
		WithArgs(domain.TypeMODY).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(4)))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM evaluations WHERE diabetes_type = \\$1").
		WithArgs(domain.TypeLADA).
		WillReturnError(errors.New("canceling statement due to statement timeout"))

	n, err := store.CountByType(context.Background(), domain.TypeMODY)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	_, err = store.CountByType(context.Background(), domain.TypeLADA)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteMock(t *testing.T) {
	store, mock := setupMockStore(t)
	defer store.Close()

	mock.ExpectExec("DELETE FROM evaluations WHERE id = \\$1").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM evaluations WHERE id = \\$1").
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Delete(context.Background(), 3))
	assert.True(t, errors.Is(store.Delete(context.Background(), 4), domain.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListByPatientMock(t *testing.T) {
	store, mock := setupMockStore(t)
	defer store.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM evaluations WHERE patient_id = \\$1").
		WithArgs(int64(7), 10, 0).
		WillReturnRows(sqlmock.NewRows(recordColumnNames).
			AddRow(int64(2), "ref-2", int64(7), nil, nil, nil, nil, nil, nil, nil,
				domain.TypeOne, "Diabetes Tipo 1", 0.8, "simulated", "", "", "", "", "", "", "", now, now).
			AddRow(int64(1), "ref-1", int64(7), nil, nil, nil, nil, nil, nil, nil,
				domain.TypeOne, "Diabetes Tipo 1", 0.8, "simulated", "", "", "", "", "", "", "", now, now))

	records, err := store.ListByPatient(context.Background(), 7, 10, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(2), records[0].ID)
	assert.Nil(t, records[0].Input)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// getTestDB returns a database connection for integration testing.
// Skip test if TEST_DATABASE_URL is not set.
func getTestDB(t *testing.T) *sql.DB {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping PostgreSQL tests")
	}

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)

	for _, file := range []string{"000001_create_patients.up.sql", "000004_create_evaluations.up.sql"} {
		schema, err := os.ReadFile("../../migrations/" + file)
		require.NoError(t, err)
		_, err = db.Exec(string(schema))
		require.NoError(t, err)
	}

	_, err = db.Exec("DELETE FROM evaluations")
	require.NoError(t, err)

	return db
}

func TestPostgresStore_Integration(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()

	store, err := NewPostgresStore(db)
	require.NoError(t, err)

	ctx := context.Background()
	rec := sampleRecord(t, domain.TypeMODY, `{"edad": 19, "nivelesGlucosa": 140, "nivelesInsulina": 15}`)
	require.NoError(t, store.Save(ctx, rec))
	assert.NotZero(t, rec.ID)

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Reference, got.Reference)
	assert.Equal(t, domain.TypeMODY, got.DiabetesType)

	n, err := store.CountByType(ctx, domain.TypeMODY)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	existing, err := store.GetByReference(ctx, rec.Reference)
	require.NoError(t, err)
	require.NotNil(t, existing)

	require.NoError(t, store.Delete(ctx, rec.ID))
}
