package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
)

// ArtifactMetadata describes one stored dump artifact
type ArtifactMetadata struct {
	ID               string          `json:"id"`
	DatabaseName     string          `json:"database_name"`
	CreatedAt        time.Time       `json:"created_at"`
	FileName         string          `json:"file_name"`
	StorageLocation  string          `json:"storage_location,omitempty"`
	OriginalSize     int64           `json:"original_size"`
	StoredSize       int64           `json:"stored_size"`
	Compression      CompressionType `json:"compression"`
	CompressionRatio float64         `json:"compression_ratio,omitempty"`
	Encrypted        bool            `json:"encrypted"`
	Checksum         string          `json:"checksum,omitempty"`
}

// NewArtifactMetadata creates metadata for a freshly produced dump file
func NewArtifactMetadata(databaseName, fileName string, size int64) *ArtifactMetadata {
	return &ArtifactMetadata{
		ID:           uuid.New().String(),
		DatabaseName: databaseName,
		CreatedAt:    time.Now().UTC(),
		FileName:     fileName,
		OriginalSize: size,
		StoredSize:   size,
		Compression:  CompressionTypeNone,
	}
}

// Validate checks the metadata for required fields
func (m *ArtifactMetadata) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("artifact ID is required")
	}
	if m.DatabaseName == "" {
		return fmt.Errorf("database name is required")
	}
	if m.FileName == "" {
		return fmt.Errorf("file name is required")
	}
	return nil
}

// ToJSON serializes the metadata
func (m *ArtifactMetadata) ToJSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// FileChecksum computes the SHA-256 checksum of a file on disk
func FileChecksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %q for checksum: %w", path, err)
	}
	defer file.Close()

	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", fmt.Errorf("failed to checksum %q: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
