package archive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/sirupsen/logrus"
)

// AzureArchiver writes objects to an Azure Blob Storage container.
type AzureArchiver struct {
	client    *azblob.Client
	container string
	logger    *logrus.Logger
}

// NewAzureArchiver validates the connection string and creates the client.
// No request is made until EnsureContainer or Put is called.
func NewAzureArchiver(connectionString, container string, logger *logrus.Logger) (*AzureArchiver, error) {
	if container == "" {
		container = "evaluaciones"
	}

	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create archive client: %w", err)
	}

	return &AzureArchiver{
		client:    client,
		container: container,
		logger:    logger,
	}, nil
}

// EnsureContainer creates the container when it does not exist yet.
func (a *AzureArchiver) EnsureContainer(ctx context.Context) error {
	_, err := a.client.CreateContainer(ctx, a.container, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return fmt.Errorf("create archive container %s: %w", a.container, err)
	}

	a.logger.WithField("container", a.container).Info("Archive container ready")
	return nil
}

// Put uploads reader as a block blob.
func (a *AzureArchiver) Put(ctx context.Context, key string, reader io.Reader, contentType string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}

	opts := &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	}

	if _, err := a.client.UploadStream(ctx, a.container, key, reader, opts); err != nil {
		return "", fmt.Errorf("upload blob %s: %w", key, err)
	}

	location := strings.TrimSuffix(a.client.URL(), "/") + "/" + a.container + "/" + key
	a.logger.WithFields(logrus.Fields{
		"container": a.container,
		"key":       key,
	}).Info("Archived object")
	return location, nil
}

// Get downloads a blob.
func (a *AzureArchiver) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	resp, err := a.client.DownloadStream(ctx, a.container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("download blob %s: %w", key, err)
	}

	return resp.Body, nil
}
