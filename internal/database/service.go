package database

import (
	"context"
	"database/sql"
	"time"

	"mysql-ops/internal/errors"
	"mysql-ops/internal/logging"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// DatabaseService defines the interface for database operations
type DatabaseService interface {
	Connect(config Config) (*sql.DB, error)
	TestConnection(db *sql.DB) error
	Close(db *sql.DB) error
	Version(db *sql.DB) (string, error)
	CurrentDatabase(db *sql.DB) (string, error)
}

// Service implements the DatabaseService interface
type Service struct {
	connectionTimeout time.Duration
	logger            *logging.Logger
}

// NewService creates a new database service with default settings
func NewService() *Service {
	return &Service{
		connectionTimeout: 30 * time.Second,
		logger:            logging.NewDefaultLogger(),
	}
}

// NewServiceWithLogger creates a new database service with a custom logger
func NewServiceWithLogger(logger *logging.Logger) *Service {
	return &Service{
		connectionTimeout: 30 * time.Second,
		logger:            logger,
	}
}

// Connect establishes a connection to the MySQL database.
// Failures are logged and returned; there is no retry.
func (s *Service) Connect(config Config) (*sql.DB, error) {
	startTime := time.Now()

	s.logger.WithFields(map[string]interface{}{
		"host":     config.Host,
		"database": config.Database,
		"port":     config.Port,
	}).Debug("Attempting database connection")

	db, err := sql.Open("mysql", config.DSN())
	if err != nil {
		s.logger.LogDatabaseConnection(config.Host, config.Database, false, time.Since(startTime), err)
		return nil, errors.WrapError(err, "failed to open database connection")
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := s.TestConnection(db); err != nil {
		db.Close()
		s.logger.LogDatabaseConnection(config.Host, config.Database, false, time.Since(startTime), err)
		return nil, err
	}

	s.logger.LogDatabaseConnection(config.Host, config.Database, true, time.Since(startTime), nil)
	return db, nil
}

// TestConnection verifies that the database connection is working
func (s *Service) TestConnection(db *sql.DB) error {
	if db == nil {
		return errors.NewAppError(errors.ErrorTypeConnection, "database connection is nil", nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.connectionTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return errors.WrapError(err, "failed to ping database")
	}

	s.logger.Debug("Database connection test successful")
	return nil
}

// Close gracefully closes the database connection.
// Safe to call with a nil connection.
func (s *Service) Close(db *sql.DB) error {
	if db == nil {
		s.logger.Debug("Database connection is nil, nothing to close")
		return nil
	}

	if err := db.Close(); err != nil {
		s.logger.WithField("error", err.Error()).Error("Failed to close database connection")
		return errors.WrapError(err, "failed to close database connection")
	}

	s.logger.Debug("Database connection closed")
	return nil
}

// Version retrieves the MySQL server version
func (s *Service) Version(db *sql.DB) (string, error) {
	return s.queryString(db, "SELECT VERSION()")
}

// CurrentDatabase retrieves the name of the currently selected database.
// Returns an empty string when no database is selected.
func (s *Service) CurrentDatabase(db *sql.DB) (string, error) {
	if db == nil {
		return "", errors.NewAppError(errors.ErrorTypeConnection, "database connection is nil", nil)
	}

	var name sql.NullString
	query := "SELECT DATABASE()"
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), s.connectionTimeout)
	defer cancel()

	err := db.QueryRowContext(ctx, query).Scan(&name)
	s.logger.LogSQLExecution(query, time.Since(startTime), 1, err)

	if err != nil {
		return "", errors.WrapError(err, "failed to get current database")
	}

	return name.String, nil
}

func (s *Service) queryString(db *sql.DB, query string) (string, error) {
	if db == nil {
		return "", errors.NewAppError(errors.ErrorTypeConnection, "database connection is nil", nil)
	}

	var value string
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), s.connectionTimeout)
	defer cancel()

	err := db.QueryRowContext(ctx, query).Scan(&value)
	s.logger.LogSQLExecution(query, time.Since(startTime), 1, err)

	if err != nil {
		return "", errors.WrapError(err, "query failed")
	}

	return value, nil
}
