package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"mysql-ops/internal/logging"
)

// systemSchemas are never backed up
var systemSchemas = map[string]struct{}{
	"information_schema": {},
	"performance_schema": {},
	"mysql":              {},
	"sys":                {},
}

const timestampLayout = "20060102_150405"

// RunnerConfig holds the connection and output settings for a backup run
type RunnerConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	BackupDir string
}

// Runner enumerates user databases and dumps each one to a timestamped
// file via the external mysqldump binary.
type Runner struct {
	config RunnerConfig
	cmd    Commander
	logger *logging.Logger
	now    func() time.Time
}

// NewRunner creates a backup runner using the real mysql/mysqldump binaries
func NewRunner(config RunnerConfig, logger *logging.Logger) *Runner {
	return NewRunnerWithCommander(config, logger, NewExecCommander())
}

// NewRunnerWithCommander creates a backup runner with a custom Commander
func NewRunnerWithCommander(config RunnerConfig, logger *logging.Logger, cmd Commander) *Runner {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Runner{
		config: config,
		cmd:    cmd,
		logger: logger,
		now:    time.Now,
	}
}

// clientArgs returns the connection arguments shared by mysql and mysqldump
func (r *Runner) clientArgs() []string {
	return []string{
		"-h", r.config.Host,
		"-P", strconv.Itoa(r.config.Port),
		"-u", r.config.Username,
	}
}

// clientEnv passes the password to the child via MYSQL_PWD so it never
// appears in the process list.
func (r *Runner) clientEnv() []string {
	return []string{"MYSQL_PWD=" + r.config.Password}
}

// ListDatabases returns all user-created database names, excluding system
// schemas. On any error from the listing command it logs the failure and
// returns an empty slice; an empty result means "nothing to back up".
func (r *Runner) ListDatabases(ctx context.Context) []string {
	args := append(r.clientArgs(), "-e", "SHOW DATABASES;")

	out, err := r.cmd.Output(ctx, r.clientEnv(), "mysql", args...)
	if err != nil {
		r.logger.WithField("error", err.Error()).Error("Failed to list databases")
		return nil
	}

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) <= 1 {
		return nil
	}

	databases := make([]string, 0, len(lines)-1)
	for _, line := range lines[1:] { // first line is the column header
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		if _, system := systemSchemas[name]; system {
			continue
		}
		databases = append(databases, name)
	}

	return databases
}

// BackupDatabase dumps a single database to <name>_<YYYYMMDD_HHMMSS>.sql
// inside the backup directory, creating the directory on first use. On a
// non-zero exit from mysqldump the partially written file is left on disk
// and an error is returned.
func (r *Runner) BackupDatabase(ctx context.Context, name string) (string, error) {
	if err := os.MkdirAll(r.config.BackupDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory %q: %w", r.config.BackupDir, err)
	}

	fileName := fmt.Sprintf("%s_%s.sql", name, r.now().Format(timestampLayout))
	backupPath := filepath.Join(r.config.BackupDir, fileName)

	file, err := os.Create(backupPath)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file %q: %w", backupPath, err)
	}
	defer file.Close()

	args := append(r.clientArgs(),
		"--single-transaction",
		"--routines",
		"--triggers",
		"--events",
		name,
	)

	start := r.now()
	err = r.cmd.Run(ctx, file, r.clientEnv(), "mysqldump", args...)
	r.logger.LogDumpExecution(name, backupPath, time.Since(start), err)

	if err != nil {
		// The truncated file stays in place for inspection.
		return "", fmt.Errorf("mysqldump failed for %q: %w", name, err)
	}

	return backupPath, nil
}

// DatabaseNameFromPath recovers the database name from a dump file path
// produced by BackupDatabase (<name>_<YYYYMMDD_HHMMSS>.sql). The name may
// itself contain underscores, so only the trailing timestamp is stripped.
func DatabaseNameFromPath(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), ".sql")
	parts := strings.Split(base, "_")
	if len(parts) < 3 {
		return base
	}
	return strings.Join(parts[:len(parts)-2], "_")
}

// BackupAll dumps every database from ListDatabases, skipping failures and
// continuing with the remainder. It returns the paths that were produced
// successfully.
func (r *Runner) BackupAll(ctx context.Context) []string {
	start := r.now()
	databases := r.ListDatabases(ctx)

	var backupFiles []string
	for _, name := range databases {
		path, err := r.BackupDatabase(ctx, name)
		if err != nil {
			r.logger.WithFields(map[string]interface{}{
				"database": name,
				"error":    err.Error(),
			}).Error("Skipping failed backup")
			continue
		}
		backupFiles = append(backupFiles, path)
	}

	r.logger.LogBackupRun(len(databases), len(backupFiles), time.Since(start))
	return backupFiles
}
