package backup

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/Azure/azure-storage-blob-go/azblob"
)

// AzureStorageProvider archives dump artifacts in an Azure Blob Storage
// container under dumps/<database>/<file>.
type AzureStorageProvider struct {
	serviceURL    azblob.ServiceURL
	containerName string
	prefix        string
}

// NewAzureStorageProvider creates a new AzureStorageProvider instance
func NewAzureStorageProvider(config *AzureConfig) (*AzureStorageProvider, error) {
	if config == nil {
		return nil, fmt.Errorf("Azure storage configuration is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Azure storage configuration: %w", err)
	}

	credential, err := azblob.NewSharedKeyCredential(config.AccountName, config.AccountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credentials: %w", err)
	}

	pipeline := azblob.NewPipeline(credential, azblob.PipelineOptions{})

	serviceURL, err := url.Parse(fmt.Sprintf("https://%s.blob.core.windows.net", config.AccountName))
	if err != nil {
		return nil, fmt.Errorf("failed to parse Azure service URL: %w", err)
	}

	return &AzureStorageProvider{
		serviceURL:    azblob.NewServiceURL(*serviceURL, pipeline),
		containerName: config.ContainerName,
		prefix:        "dumps/",
	}, nil
}

// Store uploads the artifact and its metadata record to Azure Blob Storage
func (p *AzureStorageProvider) Store(ctx context.Context, path string, meta *ArtifactMetadata) error {
	if meta == nil {
		return fmt.Errorf("artifact metadata is required")
	}
	if err := meta.Validate(); err != nil {
		return fmt.Errorf("invalid artifact metadata: %w", err)
	}

	blobName := p.blobName(meta)
	meta.StorageLocation = fmt.Sprintf("azure://%s/%s", p.containerName, blobName)

	containerURL := p.serviceURL.NewContainerURL(p.containerName)

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open artifact %q: %w", path, err)
	}
	defer file.Close()

	blobURL := containerURL.NewBlockBlobURL(blobName)
	_, err = azblob.UploadFileToBlockBlob(ctx, file, blobURL, azblob.UploadToBlockBlobOptions{
		BlockSize:   4 * 1024 * 1024,
		Parallelism: 16,
		Metadata: azblob.Metadata{
			"artifact_id":   meta.ID,
			"database_name": meta.DatabaseName,
			"compression":   string(meta.Compression),
			"checksum":      meta.Checksum,
		},
		BlobHTTPHeaders: azblob.BlobHTTPHeaders{
			ContentType: "application/sql",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload artifact to Azure: %w", err)
	}

	metadataData, err := meta.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize artifact metadata: %w", err)
	}

	metaBlobURL := containerURL.NewBlockBlobURL(blobName + ".metadata.json")
	_, err = azblob.UploadBufferToBlockBlob(ctx, metadataData, metaBlobURL, azblob.UploadToBlockBlobOptions{
		BlobHTTPHeaders: azblob.BlobHTTPHeaders{
			ContentType: "application/json",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload artifact metadata to Azure: %w", err)
	}

	return nil
}

// Name returns the provider type
func (p *AzureStorageProvider) Name() StorageProviderType {
	return StorageProviderAzure
}

func (p *AzureStorageProvider) blobName(meta *ArtifactMetadata) string {
	return p.prefix + meta.DatabaseName + "/" + meta.FileName
}
