package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStorageProvider archives dump artifacts into a directory tree on
// the local file system: <base>/<database>/<file> plus a metadata JSON.
type LocalStorageProvider struct {
	basePath    string
	permissions os.FileMode
}

// NewLocalStorageProvider creates a new LocalStorageProvider instance
func NewLocalStorageProvider(config *LocalConfig) (*LocalStorageProvider, error) {
	if config == nil {
		return nil, fmt.Errorf("local storage configuration is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid local storage configuration: %w", err)
	}

	provider := &LocalStorageProvider{
		basePath:    config.BasePath,
		permissions: config.Permissions,
	}

	if err := os.MkdirAll(config.BasePath, config.Permissions); err != nil {
		return nil, fmt.Errorf("failed to create storage base directory: %w", err)
	}

	return provider, nil
}

// Store copies the artifact and writes its metadata record
func (lsp *LocalStorageProvider) Store(ctx context.Context, path string, meta *ArtifactMetadata) error {
	if meta == nil {
		return fmt.Errorf("artifact metadata is required")
	}
	if err := meta.Validate(); err != nil {
		return fmt.Errorf("invalid artifact metadata: %w", err)
	}

	destDir := filepath.Join(lsp.basePath, meta.DatabaseName)
	if err := os.MkdirAll(destDir, lsp.permissions); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	destPath := filepath.Join(destDir, meta.FileName)
	if err := copyFile(path, destPath); err != nil {
		return fmt.Errorf("failed to copy artifact: %w", err)
	}
	meta.StorageLocation = destPath

	metadataPath := destPath + ".metadata.json"
	data, err := meta.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize artifact metadata: %w", err)
	}
	if err := os.WriteFile(metadataPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact metadata: %w", err)
	}

	return nil
}

// Name returns the provider type
func (lsp *LocalStorageProvider) Name() StorageProviderType {
	return StorageProviderLocal
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
