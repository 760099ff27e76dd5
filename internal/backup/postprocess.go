package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"mysql-ops/internal/logging"
)

// PostProcessConfig controls what happens to a dump file after mysqldump
// has finished writing it.
type PostProcessConfig struct {
	Compression      CompressionType
	CompressionLevel int
	Encryption       EncryptionConfig
	Storage          *StorageConfig // nil disables archival
}

// PostProcessor applies compression, encryption and archival to finished
// dump files. Each stage is optional; a disabled stage passes the file
// through untouched.
type PostProcessor struct {
	config      PostProcessConfig
	compression *CompressionManager
	encryption  *EncryptionManager
	storage     StorageProvider
	logger      *logging.Logger
}

// NewPostProcessor creates a post-processor, constructing the storage
// provider if archival is configured.
func NewPostProcessor(ctx context.Context, config PostProcessConfig, logger *logging.Logger) (*PostProcessor, error) {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	if err := config.Encryption.Validate(); err != nil {
		return nil, err
	}

	p := &PostProcessor{
		config:      config,
		compression: NewCompressionManager(),
		encryption:  NewEncryptionManager(config.Encryption),
		logger:      logger,
	}

	if config.Storage != nil {
		provider, err := NewStorageProvider(ctx, *config.Storage)
		if err != nil {
			return nil, err
		}
		p.storage = provider
	}

	return p, nil
}

// Process runs the configured stages over one dump file and returns the
// final artifact path plus its metadata record.
func (p *PostProcessor) Process(ctx context.Context, databaseName, path string) (string, *ArtifactMetadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to stat dump file %q: %w", path, err)
	}

	meta := NewArtifactMetadata(databaseName, filepath.Base(path), info.Size())

	if p.config.Compression != "" && p.config.Compression != CompressionTypeNone {
		compressed, stats, err := p.compression.CompressFile(path, p.config.Compression, p.config.CompressionLevel)
		if err != nil {
			return "", nil, fmt.Errorf("compression failed for %q: %w", path, err)
		}
		path = compressed
		meta.FileName = filepath.Base(path)
		meta.Compression = stats.Algorithm
		meta.CompressionRatio = stats.CompressionRatio
		meta.StoredSize = stats.CompressedSize

		p.logger.WithFields(map[string]interface{}{
			"database":  databaseName,
			"algorithm": stats.Algorithm,
			"ratio":     fmt.Sprintf("%.2f", stats.CompressionRatio),
		}).Info("Compressed dump file")
	}

	if p.encryption.Enabled() {
		encrypted, err := p.encryption.EncryptFile(path)
		if err != nil {
			return "", nil, fmt.Errorf("encryption failed for %q: %w", path, err)
		}
		path = encrypted
		meta.FileName = filepath.Base(path)
		meta.Encrypted = true

		if info, err := os.Stat(path); err == nil {
			meta.StoredSize = info.Size()
		}
	}

	checksum, err := FileChecksum(path)
	if err != nil {
		return "", nil, err
	}
	meta.Checksum = checksum

	if p.storage != nil {
		if err := p.storage.Store(ctx, path, meta); err != nil {
			return "", nil, fmt.Errorf("failed to archive %q to %s storage: %w", path, p.storage.Name(), err)
		}
		p.logger.WithFields(map[string]interface{}{
			"database": databaseName,
			"provider": p.storage.Name(),
			"location": meta.StorageLocation,
		}).Info("Archived dump artifact")
	}

	return path, meta, nil
}
