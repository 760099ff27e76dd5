package config

import (
	"fmt"
	"time"

	"mysql-ops/internal/backup"
	"mysql-ops/internal/database"

	"github.com/spf13/viper"
)

// Defaults applied when neither environment nor config file set a value
const (
	DefaultHost        = "localhost"
	DefaultPort        = 3306
	DefaultUser        = "student"
	DefaultPassword    = "StrongPassword123"
	DefaultDatabase    = "assignment1"
	DefaultBackupDir   = "mysql_backups"
	DefaultHistoryFile = "deployment_history.json"
	DefaultBackupLog   = "backup.log"
	DefaultDeployLog   = "deployment.log"
)

// Config is the process-wide configuration for all three tools. It is
// built once at the entry point and passed into each tool at construction.
type Config struct {
	Database database.Config `mapstructure:"database"`

	BackupDir   string `mapstructure:"backup_dir"`
	HistoryFile string `mapstructure:"history_file"`

	BackupLogFile string `mapstructure:"backup_log_file"`
	DeployLogFile string `mapstructure:"deploy_log_file"`

	Compression      string `mapstructure:"compression"`
	CompressionLevel int    `mapstructure:"compression_level"`

	Encrypt           bool   `mapstructure:"encrypt"`
	EncryptPassphrase string `mapstructure:"encrypt_passphrase"`

	Storage *backup.StorageConfig `mapstructure:"storage"`
}

// bindEnv maps the documented environment variables onto viper keys
func bindEnv(v *viper.Viper) {
	v.BindEnv("database.host", "MYSQL_HOST")
	v.BindEnv("database.port", "MYSQL_PORT")
	v.BindEnv("database.username", "MYSQL_USER")
	v.BindEnv("database.password", "MYSQL_PASSWORD")
	v.BindEnv("database.database", "MYSQL_DATABASE")
	v.BindEnv("backup_dir", "BACKUP_DIR")
	v.BindEnv("encrypt_passphrase", "BACKUP_ENCRYPTION_PASSPHRASE")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", DefaultHost)
	v.SetDefault("database.port", DefaultPort)
	v.SetDefault("database.username", DefaultUser)
	v.SetDefault("database.password", DefaultPassword)
	v.SetDefault("database.database", DefaultDatabase)
	v.SetDefault("database.timeout", 30*time.Second)
	v.SetDefault("backup_dir", DefaultBackupDir)
	v.SetDefault("history_file", DefaultHistoryFile)
	v.SetDefault("backup_log_file", DefaultBackupLog)
	v.SetDefault("deploy_log_file", DefaultDeployLog)
	v.SetDefault("compression", string(backup.CompressionTypeNone))
	v.SetDefault("compression_level", 0)
	v.SetDefault("encrypt", false)
}

// Load builds the configuration from defaults, an optional YAML config
// file, and the documented environment variables, in increasing priority.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	bindEnv(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", cfgFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	cfg.Database.SetDefaults()
	if err := cfg.Database.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
