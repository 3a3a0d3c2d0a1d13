package archive

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diabetes-prediction-engine/internal/domain"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

func TestFileArchiver_PutGet(t *testing.T) {
	dir := t.TempDir()
	a, err := NewFileArchiver(dir, testLogger())
	require.NoError(t, err)

	ctx := context.Background()
	location, err := a.Put(ctx, "evaluaciones/2026/01/02/export.json", strings.NewReader(`{"count":0}`), "application/json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "evaluaciones", "2026", "01", "02", "export.json"), location)

	_, err = os.Stat(location + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file should be renamed away")

	rc, err := a.Get(ctx, "evaluaciones/2026/01/02/export.json")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, `{"count":0}`, string(body))
}

func TestFileArchiver_GetMissing(t *testing.T) {
	a, err := NewFileArchiver(t.TempDir(), testLogger())
	require.NoError(t, err)

	_, err = a.Get(context.Background(), "missing.json")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestKeyValidation(t *testing.T) {
	a, err := NewFileArchiver(t.TempDir(), testLogger())
	require.NoError(t, err)

	tests := []struct {
		name string
		key  string
		want error
	}{
		{"empty", "", ErrEmptyKey},
		{"traversal", "../etc/passwd", ErrInvalidKey},
		{"embedded traversal", "a/../../b.json", ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Put(context.Background(), tt.key, strings.NewReader("x"), "text/plain")
			assert.True(t, errors.Is(err, tt.want), "got %v", err)

			_, err = a.Get(context.Background(), tt.key)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestNewKey(t *testing.T) {
	now := time.Date(2026, 10, 19, 23, 30, 0, 0, time.FixedZone("UTC-5", -5*3600))

	key := NewKey("evaluaciones", now)
	assert.True(t, strings.HasPrefix(key, "evaluaciones/2026/10/20/"), key)
	assert.True(t, strings.HasSuffix(key, ".json"))
	assert.NotEqual(t, key, NewKey("evaluaciones", now))
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("file is the default", func(t *testing.T) {
		a, err := New(ctx, domain.ArchiveConfig{Directory: t.TempDir()}, testLogger())
		require.NoError(t, err)
		assert.IsType(t, &FileArchiver{}, a)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := New(ctx, domain.ArchiveConfig{Provider: "s3"}, testLogger())
		assert.Error(t, err)
	})
}

func TestNewAzureArchiver(t *testing.T) {
	a, err := NewAzureArchiver(azuriteConnString, "", testLogger())
	require.NoError(t, err)
	assert.Equal(t, "evaluaciones", a.container)

	_, err = NewAzureArchiver("not-a-connection-string", "x", testLogger())
	assert.Error(t, err)

	_, err = a.Put(context.Background(), "", strings.NewReader("x"), "application/json")
	assert.True(t, errors.Is(err, ErrEmptyKey))
}

func TestAzureArchiver_RoundTrip(t *testing.T) {
	connString := os.Getenv("TEST_AZURITE_CONNECTION_STRING")
	if connString == "" {
		t.Skip("TEST_AZURITE_CONNECTION_STRING not set, skipping Azure Blob tests")
	}

	ctx := context.Background()
	a, err := NewAzureArchiver(connString, "evaluaciones-test", testLogger())
	require.NoError(t, err)
	require.NoError(t, a.EnsureContainer(ctx))
	require.NoError(t, a.EnsureContainer(ctx), "existing container is not an error")

	key := NewKey("roundtrip", time.Now())
	location, err := a.Put(ctx, key, strings.NewReader(`{"ok":true}`), "application/json")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(location, "/evaluaciones-test/"+key), location)

	rc, err := a.Get(ctx, key)
	require.NoError(t, err)
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	assert.Equal(t, `{"ok":true}`, string(body))

	_, err = a.Get(ctx, "roundtrip/missing.json")
	assert.True(t, errors.Is(err, ErrNotFound))
}
