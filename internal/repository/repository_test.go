package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/diabetes-prediction-engine/internal/catalog"
	"github.com/diabetes-prediction-engine/internal/database"
	"github.com/diabetes-prediction-engine/internal/domain"
)

// generateTestPassword creates a random password for test databases
func generateTestPassword() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "test_fallback_password_123"
	}
	return "test_" + hex.EncodeToString(bytes)
}

func setupTestDB(t *testing.T) (*database.DB, func()) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	testPassword := generateTestPassword()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword(testPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	config := database.Config{
		Host:        host,
		Port:        port.Int(),
		Database:    "testdb",
		Username:    "testuser",
		Password:    testPassword,
		MaxConns:    10,
		MinConns:    2,
		MaxConnLife: time.Hour,
		MaxConnIdle: time.Minute * 30,
		SSLMode:     "disable",
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	migrationRunner, err := database.NewMigrationRunner(config.URL(), "../../migrations", logger)
	if err != nil {
		t.Fatalf("Failed to create migration runner: %v", err)
	}
	if err := migrationRunner.Up(ctx); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	db, err := database.NewConnection(ctx, config, logger)
	if err != nil {
		t.Fatalf("Failed to create database connection: %v", err)
	}

	cleanup := func() {
		migrationRunner.Close()
		db.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate PostgreSQL container: %v", err)
		}
	}

	return db, cleanup
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

func TestRepositories(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("diabetes types", func(t *testing.T) {
		repo := NewDiabetesTypeRepository(db.Pool, testLogger())

		n, err := repo.SeedIfEmpty(ctx, catalog.DiabetesTypes())
		require.NoError(t, err)
		assert.Equal(t, 12, n)

		n, err = repo.SeedIfEmpty(ctx, catalog.DiabetesTypes())
		require.NoError(t, err)
		assert.Zero(t, n, "seeding is skipped when rows exist")

		all, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 12)
		assert.Equal(t, domain.DiabetesTypes[0], all[0].NameEn)

		info, err := repo.FindByCanonicalName(ctx, domain.TypeTwo)
		require.NoError(t, err)
		assert.Equal(t, "Diabetes Tipo 2", info.NameEs)
		assert.True(t, info.IsCommon)

		_, err = repo.FindByCanonicalName(ctx, "Type 9 Diabetes")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("field guides", func(t *testing.T) {
		repo := NewFieldGuideRepository(db.Pool, testLogger())

		n, err := repo.SeedIfEmpty(ctx, catalog.FieldGuides())
		require.NoError(t, err)
		assert.Equal(t, len(catalog.FieldGuides()), n)

		guide, err := repo.FindByField(ctx, "niveles_glucosa")
		require.NoError(t, err)
		assert.NotEmpty(t, guide.TitleEs)

		_, err = repo.FindByField(ctx, "altura")
		assert.True(t, errors.Is(err, domain.ErrNotFound))

		all, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, n)
	})

	t.Run("patients", func(t *testing.T) {
		repo := NewPatientRepository(db.Pool, testLogger())
		birth := time.Date(1980, 4, 12, 0, 0, 0, 0, time.UTC)

		p := &domain.Patient{
			Code:      "PAC-001",
			Name:      "María López",
			BirthDate: &birth,
			Gender:    "F",
			Email:     "maria@example.com",
		}
		require.NoError(t, repo.Create(ctx, p))
		assert.NotZero(t, p.ID)

		byID, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "María López", byID.Name)
		require.NotNil(t, byID.BirthDate)
		assert.True(t, birth.Equal(byID.BirthDate.UTC()))

		byCode, err := repo.GetByCode(ctx, "PAC-001")
		require.NoError(t, err)
		assert.Equal(t, p.ID, byCode.ID)

		byEmail, err := repo.GetByEmail(ctx, "maria@example.com")
		require.NoError(t, err)
		assert.Equal(t, p.ID, byEmail.ID)

		p.Phone = "+34 600 000 000"
		require.NoError(t, repo.Update(ctx, p))
		updated, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "+34 600 000 000", updated.Phone)

		list, err := repo.List(ctx, 10, 0)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		require.NoError(t, repo.Delete(ctx, p.ID))
		_, err = repo.GetByID(ctx, p.ID)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		assert.True(t, errors.Is(repo.Delete(ctx, p.ID), domain.ErrNotFound))
		assert.True(t, errors.Is(repo.Update(ctx, p), domain.ErrNotFound))
	})
}
