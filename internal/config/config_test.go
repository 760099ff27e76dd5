package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Database.Host != DefaultHost {
		t.Errorf("Expected host %s, got %s", DefaultHost, cfg.Database.Host)
	}
	if cfg.Database.Port != DefaultPort {
		t.Errorf("Expected port %d, got %d", DefaultPort, cfg.Database.Port)
	}
	if cfg.Database.Username != DefaultUser {
		t.Errorf("Expected username %s, got %s", DefaultUser, cfg.Database.Username)
	}
	if cfg.Database.Password != DefaultPassword {
		t.Errorf("Expected default password, got %s", cfg.Database.Password)
	}
	if cfg.Database.Database != DefaultDatabase {
		t.Errorf("Expected database %s, got %s", DefaultDatabase, cfg.Database.Database)
	}
	if cfg.Database.Timeout != 30*time.Second {
		t.Errorf("Expected timeout 30s, got %v", cfg.Database.Timeout)
	}
	if cfg.BackupDir != DefaultBackupDir {
		t.Errorf("Expected backup dir %s, got %s", DefaultBackupDir, cfg.BackupDir)
	}
	if cfg.HistoryFile != DefaultHistoryFile {
		t.Errorf("Expected history file %s, got %s", DefaultHistoryFile, cfg.HistoryFile)
	}
	if cfg.BackupLogFile != DefaultBackupLog {
		t.Errorf("Expected backup log %s, got %s", DefaultBackupLog, cfg.BackupLogFile)
	}
	if cfg.DeployLogFile != DefaultDeployLog {
		t.Errorf("Expected deploy log %s, got %s", DefaultDeployLog, cfg.DeployLogFile)
	}
	if cfg.Compression != "none" {
		t.Errorf("Expected compression none, got %s", cfg.Compression)
	}
	if cfg.Encrypt {
		t.Error("Expected encryption to default off")
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("MYSQL_HOST", "db.internal")
	t.Setenv("MYSQL_PORT", "3307")
	t.Setenv("MYSQL_USER", "deployer")
	t.Setenv("MYSQL_PASSWORD", "hunter2")
	t.Setenv("MYSQL_DATABASE", "production")
	t.Setenv("BACKUP_DIR", "/var/backups/mysql")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Database.Host != "db.internal" {
		t.Errorf("Expected host db.internal, got %s", cfg.Database.Host)
	}
	if cfg.Database.Port != 3307 {
		t.Errorf("Expected port 3307, got %d", cfg.Database.Port)
	}
	if cfg.Database.Username != "deployer" {
		t.Errorf("Expected username deployer, got %s", cfg.Database.Username)
	}
	if cfg.Database.Password != "hunter2" {
		t.Errorf("Expected password from environment, got %s", cfg.Database.Password)
	}
	if cfg.Database.Database != "production" {
		t.Errorf("Expected database production, got %s", cfg.Database.Database)
	}
	if cfg.BackupDir != "/var/backups/mysql" {
		t.Errorf("Expected backup dir from environment, got %s", cfg.BackupDir)
	}
}

func TestLoad_EncryptionPassphraseFromEnvironment(t *testing.T) {
	t.Setenv("BACKUP_ENCRYPTION_PASSPHRASE", "correct horse")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.EncryptPassphrase != "correct horse" {
		t.Errorf("Expected passphrase from environment, got %q", cfg.EncryptPassphrase)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `database:
  host: file-host
  port: 3308
backup_dir: file_backups
compression: gzip
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Database.Host != "file-host" {
		t.Errorf("Expected host file-host, got %s", cfg.Database.Host)
	}
	if cfg.Database.Port != 3308 {
		t.Errorf("Expected port 3308, got %d", cfg.Database.Port)
	}
	if cfg.BackupDir != "file_backups" {
		t.Errorf("Expected backup dir file_backups, got %s", cfg.BackupDir)
	}
	if cfg.Compression != "gzip" {
		t.Errorf("Expected compression gzip, got %s", cfg.Compression)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}
