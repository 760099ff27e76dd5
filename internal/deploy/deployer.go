package deploy

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"mysql-ops/internal/database"
	"mysql-ops/internal/errors"
	"mysql-ops/internal/logging"
)

// Deployer runs a SQL script against the target database and records
// successful attempts in the history document.
//
// Statements execute sequentially in autocommit mode: each statement is
// committed on its own, with no transaction spanning the script. A
// mid-script failure leaves prior statements committed and later ones
// unapplied.
type Deployer struct {
	config  database.Config
	service database.DatabaseService
	history *HistoryStore
	logger  *logging.Logger
	db      *sql.DB
}

// NewDeployer creates a deployer and makes sure the history document exists
func NewDeployer(config database.Config, history *HistoryStore, logger *logging.Logger) (*Deployer, error) {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	d := &Deployer{
		config:  config,
		service: database.NewServiceWithLogger(logger),
		history: history,
		logger:  logger,
	}

	if err := history.Ensure(); err != nil {
		return nil, err
	}

	return d, nil
}

// NewDeployerWithService creates a deployer with a custom database service
func NewDeployerWithService(config database.Config, service database.DatabaseService, history *HistoryStore, logger *logging.Logger) (*Deployer, error) {
	d, err := NewDeployer(config, history, logger)
	if err != nil {
		return nil, err
	}
	d.service = service
	return d, nil
}

// Connect opens the connection to the target database. Failure is logged
// and returned; it is not retried.
func (d *Deployer) Connect() error {
	db, err := d.service.Connect(d.config)
	if err != nil {
		return err
	}
	d.db = db
	return nil
}

// Disconnect closes the connection if one is open. Idempotent; safe to
// call when no connection was ever established.
func (d *Deployer) Disconnect() {
	if d.db == nil {
		return
	}
	if err := d.service.Close(d.db); err != nil {
		d.logger.WithField("error", err.Error()).Warn("Error closing database connection")
	}
	d.db = nil
}

// ExecuteScript reads the SQL file at path, splits it into statements and
// executes each one in sequence, committing per statement. On the first
// execution error the remaining statements are abandoned and no history
// entry is recorded. On full success one entry is appended.
func (d *Deployer) ExecuteScript(path string) error {
	if d.db == nil {
		if err := d.Connect(); err != nil {
			return err
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return errors.NewAppError(errors.ErrorTypeUsage,
			fmt.Sprintf("failed to read SQL file %q", path), err)
	}

	statements := SplitStatements(string(content))
	start := time.Now()

	for i, stmt := range statements {
		stmtStart := time.Now()
		result, execErr := d.db.Exec(stmt)

		var rowsAffected int64
		if result != nil {
			rowsAffected, _ = result.RowsAffected()
		}
		d.logger.LogSQLExecution(stmt, time.Since(stmtStart), rowsAffected, execErr)

		if execErr != nil {
			err := errors.ClassifyError(execErr).
				WithContext("sql_file", path).
				WithContext("statement_index", i)
			d.logger.LogDeployment(path, len(statements), time.Since(start), err)
			return err
		}
	}

	if err := d.history.Append(NewHistoryEntry(path)); err != nil {
		d.logger.LogDeployment(path, len(statements), time.Since(start), err)
		return err
	}

	d.logger.LogDeployment(path, len(statements), time.Since(start), nil)
	return nil
}

// History returns the full ordered sequence of history entries
func (d *Deployer) History() ([]HistoryEntry, error) {
	return d.history.Entries()
}
