package cmd

import (
	"context"

	"mysql-ops/internal/backup"

	"github.com/spf13/cobra"
)

var (
	flagBackupDir        string
	flagCompress         string
	flagCompressionLevel int
	flagEncrypt          bool
	flagStorage          string
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Dump all user databases to timestamped backup files",
	Long: `Enumerates all user-created databases (system schemas excluded) and
invokes mysqldump once per database, writing each dump to
<name>_<YYYYMMDD_HHMMSS>.sql inside the backup directory.

Individual failures are skipped and the run continues; the command
exits zero even when some backups failed, and logs a warning when
none succeeded. Finished dumps can optionally be compressed,
encrypted, and archived to local, S3, GCS, or Azure storage.`,
	Args: cobra.NoArgs,
	RunE: runBackup,
}

func init() {
	backupCmd.Flags().StringVar(&flagBackupDir, "backup-dir", "", "directory for backup files (default $BACKUP_DIR or mysql_backups)")
	backupCmd.Flags().StringVar(&flagCompress, "compress", "", "compress finished dumps (none, gzip, lz4, zstd)")
	backupCmd.Flags().IntVar(&flagCompressionLevel, "compression-level", 0, "compression level (0 = algorithm default)")
	backupCmd.Flags().BoolVar(&flagEncrypt, "encrypt", false, "encrypt finished dumps (passphrase from $BACKUP_ENCRYPTION_PASSPHRASE)")
	backupCmd.Flags().StringVar(&flagStorage, "storage", "", "archive finished dumps (local, s3, gcs, azure; configured via --config)")

	rootCmd.AddCommand(backupCmd)
}

func runBackup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if flagBackupDir != "" {
		cfg.BackupDir = flagBackupDir
	}
	if flagCompress != "" {
		cfg.Compression = flagCompress
	}
	if cmd.Flags().Changed("compression-level") {
		cfg.CompressionLevel = flagCompressionLevel
	}
	if cmd.Flags().Changed("encrypt") {
		cfg.Encrypt = flagEncrypt
	}
	if flagStorage != "" {
		if cfg.Storage == nil {
			cfg.Storage = &backup.StorageConfig{}
		}
		cfg.Storage.Provider = backup.StorageProviderType(flagStorage)
		if cfg.Storage.Provider == backup.StorageProviderLocal && cfg.Storage.Local == nil {
			cfg.Storage.Local = &backup.LocalConfig{BasePath: cfg.BackupDir + "/archive"}
		}
	}

	logger, err := newLogger(cfg.BackupLogFile)
	if err != nil {
		return err
	}
	defer logger.Close()

	compression, err := backup.ParseCompressionType(cfg.Compression)
	if err != nil {
		return err
	}

	ctx := context.Background()

	var postProcessor *backup.PostProcessor
	if compression != backup.CompressionTypeNone || cfg.Encrypt || cfg.Storage != nil {
		postProcessor, err = backup.NewPostProcessor(ctx, backup.PostProcessConfig{
			Compression:      compression,
			CompressionLevel: cfg.CompressionLevel,
			Encryption: backup.EncryptionConfig{
				Enabled:    cfg.Encrypt,
				Passphrase: cfg.EncryptPassphrase,
			},
			Storage: cfg.Storage,
		}, logger)
		if err != nil {
			return err
		}
	}

	runner := backup.NewRunner(backup.RunnerConfig{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		Username:  cfg.Database.Username,
		Password:  cfg.Database.Password,
		BackupDir: cfg.BackupDir,
	}, logger)

	backupFiles := runner.BackupAll(ctx)

	if postProcessor != nil {
		for _, path := range backupFiles {
			name := backup.DatabaseNameFromPath(path)
			finalPath, _, err := postProcessor.Process(ctx, name, path)
			if err != nil {
				// Post-processing failures follow the same soft-failure
				// policy as individual dumps.
				logger.WithFields(map[string]interface{}{
					"path":  path,
					"error": err.Error(),
				}).Error("Post-processing failed")
				continue
			}
			logger.Infof("Backup artifact ready: %s", finalPath)
		}
	}

	if len(backupFiles) > 0 {
		logger.Infof("Successfully created %d backups", len(backupFiles))
	} else {
		logger.Warn("No backups were created")
	}

	// Per-database failures never fail the run.
	return nil
}
