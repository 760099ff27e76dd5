package backup

import (
	"context"
	"fmt"
	"os"
)

// StorageProviderType identifies a storage backend
type StorageProviderType string

const (
	// StorageProviderLocal stores artifacts on the local file system
	StorageProviderLocal StorageProviderType = "local"
	// StorageProviderS3 stores artifacts in Amazon S3
	StorageProviderS3 StorageProviderType = "s3"
	// StorageProviderGCS stores artifacts in Google Cloud Storage
	StorageProviderGCS StorageProviderType = "gcs"
	// StorageProviderAzure stores artifacts in Azure Blob Storage
	StorageProviderAzure StorageProviderType = "azure"
)

// StorageProvider archives dump artifacts after a successful backup
type StorageProvider interface {
	// Store uploads the artifact at path together with its metadata record.
	// It sets meta.StorageLocation to the final location.
	Store(ctx context.Context, path string, meta *ArtifactMetadata) error
	// Name returns the provider type
	Name() StorageProviderType
}

// LocalConfig configures local file system archival
type LocalConfig struct {
	BasePath    string      `mapstructure:"base_path" yaml:"base_path"`
	Permissions os.FileMode `mapstructure:"permissions" yaml:"permissions"`
}

// Validate checks the local storage configuration
func (c *LocalConfig) Validate() error {
	if c.BasePath == "" {
		return fmt.Errorf("local storage base path is required")
	}
	if c.Permissions == 0 {
		c.Permissions = 0o755
	}
	return nil
}

// S3Config configures Amazon S3 archival
type S3Config struct {
	Region    string `mapstructure:"region" yaml:"region"`
	Bucket    string `mapstructure:"bucket" yaml:"bucket"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`
}

// Validate checks the S3 storage configuration
func (c *S3Config) Validate() error {
	if c.Region == "" {
		return fmt.Errorf("S3 region is required")
	}
	if c.Bucket == "" {
		return fmt.Errorf("S3 bucket is required")
	}
	if c.AccessKey == "" || c.SecretKey == "" {
		return fmt.Errorf("S3 credentials are required")
	}
	return nil
}

// GCSConfig configures Google Cloud Storage archival
type GCSConfig struct {
	Bucket          string `mapstructure:"bucket" yaml:"bucket"`
	CredentialsPath string `mapstructure:"credentials_path" yaml:"credentials_path"`
}

// Validate checks the GCS storage configuration
func (c *GCSConfig) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("GCS bucket is required")
	}
	return nil
}

// AzureConfig configures Azure Blob Storage archival
type AzureConfig struct {
	AccountName   string `mapstructure:"account_name" yaml:"account_name"`
	AccountKey    string `mapstructure:"account_key" yaml:"account_key"`
	ContainerName string `mapstructure:"container_name" yaml:"container_name"`
}

// Validate checks the Azure storage configuration
func (c *AzureConfig) Validate() error {
	if c.AccountName == "" || c.AccountKey == "" {
		return fmt.Errorf("Azure account credentials are required")
	}
	if c.ContainerName == "" {
		return fmt.Errorf("Azure container name is required")
	}
	return nil
}

// StorageConfig selects and configures a storage provider
type StorageConfig struct {
	Provider StorageProviderType `mapstructure:"provider" yaml:"provider"`
	Local    *LocalConfig        `mapstructure:"local" yaml:"local,omitempty"`
	S3       *S3Config           `mapstructure:"s3" yaml:"s3,omitempty"`
	GCS      *GCSConfig          `mapstructure:"gcs" yaml:"gcs,omitempty"`
	Azure    *AzureConfig        `mapstructure:"azure" yaml:"azure,omitempty"`
}

// Validate checks that the selected provider has a configuration block
func (c *StorageConfig) Validate() error {
	switch c.Provider {
	case StorageProviderLocal:
		if c.Local == nil {
			return fmt.Errorf("local storage configuration is required")
		}
		return c.Local.Validate()
	case StorageProviderS3:
		if c.S3 == nil {
			return fmt.Errorf("S3 storage configuration is required")
		}
		return c.S3.Validate()
	case StorageProviderGCS:
		if c.GCS == nil {
			return fmt.Errorf("GCS storage configuration is required")
		}
		return c.GCS.Validate()
	case StorageProviderAzure:
		if c.Azure == nil {
			return fmt.Errorf("Azure storage configuration is required")
		}
		return c.Azure.Validate()
	default:
		return fmt.Errorf("unsupported storage provider: %s", c.Provider)
	}
}
