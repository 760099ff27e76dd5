package backup

import (
	"context"
	"fmt"
)

// NewStorageProvider creates a storage provider from the storage configuration
func NewStorageProvider(ctx context.Context, config StorageConfig) (StorageProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid storage configuration: %w", err)
	}

	switch config.Provider {
	case StorageProviderLocal:
		return NewLocalStorageProvider(config.Local)
	case StorageProviderS3:
		return NewS3StorageProvider(config.S3)
	case StorageProviderGCS:
		return NewGCSStorageProvider(ctx, config.GCS)
	case StorageProviderAzure:
		return NewAzureStorageProvider(config.Azure)
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", config.Provider)
	}
}

// SupportedStorageProviders returns the storage provider types that can be
// passed to NewStorageProvider.
func SupportedStorageProviders() []StorageProviderType {
	return []StorageProviderType{
		StorageProviderLocal,
		StorageProviderS3,
		StorageProviderGCS,
		StorageProviderAzure,
	}
}
