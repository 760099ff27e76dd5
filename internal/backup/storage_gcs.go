package backup

import (
	"context"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStorageProvider archives dump artifacts in a Google Cloud Storage
// bucket under dumps/<database>/<file>.
type GCSStorageProvider struct {
	client     *storage.Client
	bucketName string
	prefix     string
}

// NewGCSStorageProvider creates a new GCSStorageProvider instance
func NewGCSStorageProvider(ctx context.Context, config *GCSConfig) (*GCSStorageProvider, error) {
	if config == nil {
		return nil, fmt.Errorf("GCS storage configuration is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid GCS storage configuration: %w", err)
	}

	var client *storage.Client
	var err error

	if config.CredentialsPath != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(config.CredentialsPath))
	} else {
		// Default credentials from environment or metadata server
		client, err = storage.NewClient(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStorageProvider{
		client:     client,
		bucketName: config.Bucket,
		prefix:     "dumps/",
	}, nil
}

// Store uploads the artifact and its metadata record to GCS
func (p *GCSStorageProvider) Store(ctx context.Context, path string, meta *ArtifactMetadata) error {
	if meta == nil {
		return fmt.Errorf("artifact metadata is required")
	}
	if err := meta.Validate(); err != nil {
		return fmt.Errorf("invalid artifact metadata: %w", err)
	}

	objectName := p.objectName(meta)
	meta.StorageLocation = fmt.Sprintf("gs://%s/%s", p.bucketName, objectName)

	bucket := p.client.Bucket(p.bucketName)

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open artifact %q: %w", path, err)
	}
	defer file.Close()

	writer := bucket.Object(objectName).NewWriter(ctx)
	writer.ContentType = "application/sql"
	writer.Metadata = map[string]string{
		"artifact-id":   meta.ID,
		"database-name": meta.DatabaseName,
		"compression":   string(meta.Compression),
		"checksum":      meta.Checksum,
	}

	if _, err := io.Copy(writer, file); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write artifact to GCS: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to upload artifact to GCS: %w", err)
	}

	metadataData, err := meta.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize artifact metadata: %w", err)
	}

	metaWriter := bucket.Object(objectName + ".metadata.json").NewWriter(ctx)
	metaWriter.ContentType = "application/json"
	if _, err := metaWriter.Write(metadataData); err != nil {
		metaWriter.Close()
		return fmt.Errorf("failed to write artifact metadata to GCS: %w", err)
	}
	if err := metaWriter.Close(); err != nil {
		return fmt.Errorf("failed to upload artifact metadata to GCS: %w", err)
	}

	return nil
}

// Name returns the provider type
func (p *GCSStorageProvider) Name() StorageProviderType {
	return StorageProviderGCS
}

func (p *GCSStorageProvider) objectName(meta *ArtifactMetadata) string {
	return p.prefix + meta.DatabaseName + "/" + meta.FileName
}
