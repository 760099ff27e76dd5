package backup

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/pbkdf2"
)

const (
	encryptedExtension = ".enc"
	saltSize           = 16
	pbkdf2Iterations   = 100_000
	keySize            = 32 // AES-256
)

// EncryptionConfig controls optional dump-file encryption
type EncryptionConfig struct {
	Enabled    bool
	Passphrase string
}

// Validate checks the encryption configuration
func (c *EncryptionConfig) Validate() error {
	if c.Enabled && c.Passphrase == "" {
		return fmt.Errorf("encryption passphrase is required when encryption is enabled")
	}
	return nil
}

// EncryptionManager encrypts dump artifacts with AES-256-GCM. The key is
// derived from the passphrase with PBKDF2-SHA256 and a per-file salt.
// Output layout: salt || nonce || ciphertext.
type EncryptionManager struct {
	config EncryptionConfig
}

// NewEncryptionManager creates a new encryption manager
func NewEncryptionManager(config EncryptionConfig) *EncryptionManager {
	return &EncryptionManager{config: config}
}

// Enabled reports whether encryption is active
func (em *EncryptionManager) Enabled() bool {
	return em.config.Enabled
}

func (em *EncryptionManager) deriveKey(salt []byte) []byte {
	return pbkdf2.Key([]byte(em.config.Passphrase), salt, pbkdf2Iterations, keySize, sha256.New)
}

// Encrypt encrypts data, returning salt || nonce || ciphertext
func (em *EncryptionManager) Encrypt(data []byte) ([]byte, error) {
	if !em.config.Enabled {
		return data, nil
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	block, err := aes.NewCipher(em.deriveKey(salt))
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM cipher: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, saltSize+len(nonce)+len(data)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, data, nil), nil
}

// Decrypt reverses Encrypt
func (em *EncryptionManager) Decrypt(data []byte) ([]byte, error) {
	if !em.config.Enabled {
		return data, nil
	}

	if len(data) < saltSize {
		return nil, fmt.Errorf("encrypted data too short")
	}
	salt, rest := data[:saltSize], data[saltSize:]

	block, err := aes.NewCipher(em.deriveKey(salt))
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM cipher: %w", err)
	}

	if len(rest) < gcm.NonceSize() {
		return nil, fmt.Errorf("encrypted data too short")
	}
	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt data: %w", err)
	}

	return plaintext, nil
}

// EncryptFile encrypts a dump artifact in place, producing <path>.enc and
// removing the original. Returns the new path.
func (em *EncryptionManager) EncryptFile(path string) (string, error) {
	if !em.config.Enabled {
		return path, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %q: %w", path, err)
	}

	encrypted, err := em.Encrypt(data)
	if err != nil {
		return "", err
	}

	outPath := path + encryptedExtension
	if err := os.WriteFile(outPath, encrypted, 0o600); err != nil {
		return "", fmt.Errorf("failed to write encrypted file %q: %w", outPath, err)
	}

	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("failed to remove plaintext file %q: %w", path, err)
	}

	return outPath, nil
}
