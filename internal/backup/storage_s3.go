package backup

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3StorageProvider archives dump artifacts in an Amazon S3 bucket under
// dumps/<database>/<file>.
type S3StorageProvider struct {
	client *s3.S3
	bucket string
	prefix string
}

// NewS3StorageProvider creates a new S3StorageProvider instance
func NewS3StorageProvider(config *S3Config) (*S3StorageProvider, error) {
	if config == nil {
		return nil, fmt.Errorf("S3 storage configuration is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid S3 storage configuration: %w", err)
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.Region),
		Credentials: credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"", // token
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3StorageProvider{
		client: s3.New(sess),
		bucket: config.Bucket,
		prefix: "dumps/",
	}, nil
}

// Store uploads the artifact and its metadata record to S3
func (p *S3StorageProvider) Store(ctx context.Context, path string, meta *ArtifactMetadata) error {
	if meta == nil {
		return fmt.Errorf("artifact metadata is required")
	}
	if err := meta.Validate(); err != nil {
		return fmt.Errorf("invalid artifact metadata: %w", err)
	}

	objectKey := p.objectKey(meta)
	meta.StorageLocation = fmt.Sprintf("s3://%s/%s", p.bucket, objectKey)

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open artifact %q: %w", path, err)
	}
	defer file.Close()

	_, err = p.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(objectKey),
		Body:        file,
		ContentType: aws.String("application/sql"),
		Metadata: map[string]*string{
			"artifact-id":   aws.String(meta.ID),
			"database-name": aws.String(meta.DatabaseName),
			"compression":   aws.String(string(meta.Compression)),
			"checksum":      aws.String(meta.Checksum),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload artifact to S3: %w", err)
	}

	metadataData, err := meta.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize artifact metadata: %w", err)
	}

	_, err = p.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(objectKey + ".metadata.json"),
		Body:        bytes.NewReader(metadataData),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload artifact metadata to S3: %w", err)
	}

	return nil
}

// Name returns the provider type
func (p *S3StorageProvider) Name() StorageProviderType {
	return StorageProviderS3
}

func (p *S3StorageProvider) objectKey(meta *ArtifactMetadata) string {
	return p.prefix + meta.DatabaseName + "/" + meta.FileName
}
