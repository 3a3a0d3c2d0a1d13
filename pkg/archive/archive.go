// Package archive writes history exports to long-term storage: a local
// directory or an Azure Blob Storage container.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/diabetes-prediction-engine/internal/domain"
)

var (
	// ErrNotFound indicates the requested object does not exist.
	ErrNotFound = errors.New("archive object not found")
	// ErrEmptyKey indicates an empty key was provided.
	ErrEmptyKey = errors.New("archive key must not be empty")
	// ErrInvalidKey indicates the key contains a path traversal segment.
	ErrInvalidKey = errors.New("archive key contains invalid path segment")
)

// Providers accepted in domain.ArchiveConfig.
const (
	ProviderFile  = "file"
	ProviderAzure = "azure"
)

// Archiver stores and retrieves archived objects.
type Archiver interface {
	// Put streams reader to key and returns where the object was written.
	Put(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
	// Get returns a stream for key. The caller must close the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// New creates the archiver selected by cfg.Provider.
func New(ctx context.Context, cfg domain.ArchiveConfig, logger *logrus.Logger) (Archiver, error) {
	switch cfg.Provider {
	case "", ProviderFile:
		dir := cfg.Directory
		if dir == "" {
			dir = "./data/archive"
		}
		return NewFileArchiver(dir, logger)
	case ProviderAzure:
		a, err := NewAzureArchiver(cfg.ConnectionString, cfg.Container, logger)
		if err != nil {
			return nil, err
		}
		if err := a.EnsureContainer(ctx); err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown archive provider %q", cfg.Provider)
	}
}

// NewKey returns a unique key under prefix, partitioned by day.
func NewKey(prefix string, now time.Time) string {
	return path.Join(prefix, now.UTC().Format("2006/01/02"), uuid.New().String()+".json")
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
