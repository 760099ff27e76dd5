package deploy

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mysql-ops/internal/database"
	"mysql-ops/internal/errors"
)

// stubService hands out a prepared sqlmock connection instead of dialing
// a real server.
type stubService struct {
	db         *sql.DB
	connectErr error
	closed     int
}

func (s *stubService) Connect(config database.Config) (*sql.DB, error) {
	if s.connectErr != nil {
		return nil, s.connectErr
	}
	return s.db, nil
}

func (s *stubService) TestConnection(db *sql.DB) error { return nil }

func (s *stubService) Close(db *sql.DB) error {
	s.closed++
	return nil
}

func (s *stubService) Version(db *sql.DB) (string, error)         { return "8.0.36", nil }
func (s *stubService) CurrentDatabase(db *sql.DB) (string, error) { return "assignment1", nil }

func newTestDeployer(t *testing.T, service database.DatabaseService) (*Deployer, *HistoryStore) {
	t.Helper()

	store := NewHistoryStore(filepath.Join(t.TempDir(), "deployment_history.json"))
	deployer, err := NewDeployerWithService(database.Config{
		Host: "localhost", Port: 3306, Username: "student", Database: "assignment1",
	}, service, store, nil)
	require.NoError(t, err)

	return deployer, store
}

func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deploy.sql")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExecuteScript_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE alpha").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO alpha VALUES ROW").WillReturnResult(sqlmock.NewResult(1, 1))

	deployer, store := newTestDeployer(t, &stubService{db: db})
	path := writeScript(t, "CREATE TABLE alpha;\nINSERT INTO alpha VALUES ROW;\n")

	require.NoError(t, deployer.ExecuteScript(path))
	require.NoError(t, mock.ExpectationsWereMet())

	entries, err := store.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, path, entries[0].SQLFile)
	assert.Equal(t, StatusSuccess, entries[0].Status)
}

func TestExecuteScript_MidScriptFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// First statement commits, second fails, third is never attempted.
	mock.ExpectExec("CREATE TABLE alpha").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE beta").
		WillReturnError(&mysql.MySQLError{Number: 1064, Message: "You have an error in your SQL syntax"})

	deployer, store := newTestDeployer(t, &stubService{db: db})
	path := writeScript(t, "CREATE TABLE alpha;\nCREATE TABLE beta;\nCREATE TABLE gamma;\n")

	err = deployer.ExecuteScript(path)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeSQL, errors.GetErrorType(err))
	require.NoError(t, mock.ExpectationsWereMet(),
		"execution should stop at the failing statement")

	entries, err := store.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries, "a failed deployment leaves no history entry")
}

func TestExecuteScript_FailureCarriesContext(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE alpha").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DROP TABLE beta").WillReturnError(fmt.Errorf("exec failed"))

	deployer, _ := newTestDeployer(t, &stubService{db: db})
	path := writeScript(t, "CREATE TABLE alpha;\nDROP TABLE beta;\n")

	err = deployer.ExecuteScript(path)
	require.Error(t, err)

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, path, appErr.Context["sql_file"])
	assert.Equal(t, 1, appErr.Context["statement_index"])
}

func TestExecuteScript_MissingFile(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	deployer, store := newTestDeployer(t, &stubService{db: db})

	err = deployer.ExecuteScript(filepath.Join(t.TempDir(), "absent.sql"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeUsage, errors.GetErrorType(err))

	entries, err := store.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExecuteScript_ConnectFailure(t *testing.T) {
	deployer, store := newTestDeployer(t, &stubService{connectErr: fmt.Errorf("dial tcp: connection refused")})
	path := writeScript(t, "CREATE TABLE alpha;\n")

	err := deployer.ExecuteScript(path)
	require.Error(t, err)

	entries, err := store.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries, "history is untouched when the connection fails")
}

func TestExecuteScript_EmptyScript(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	deployer, store := newTestDeployer(t, &stubService{db: db})
	path := writeScript(t, "  \n;\n;  \n")

	require.NoError(t, deployer.ExecuteScript(path))
	require.NoError(t, mock.ExpectationsWereMet())

	// Nothing to execute still counts as a successful deployment.
	entries, err := store.Entries()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDisconnect_Idempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE alpha").WillReturnResult(sqlmock.NewResult(0, 0))

	service := &stubService{db: db}
	deployer, _ := newTestDeployer(t, service)
	path := writeScript(t, "CREATE TABLE alpha;\n")

	require.NoError(t, deployer.ExecuteScript(path))

	deployer.Disconnect()
	deployer.Disconnect()
	assert.Equal(t, 1, service.closed, "a second Disconnect is a no-op")
}

func TestDisconnect_WithoutConnection(t *testing.T) {
	service := &stubService{}
	deployer, _ := newTestDeployer(t, service)

	deployer.Disconnect()
	assert.Zero(t, service.closed)
}

func TestHistory_ReturnsAllEntries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE alpha").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE beta").WillReturnResult(sqlmock.NewResult(0, 0))

	deployer, _ := newTestDeployer(t, &stubService{db: db})
	first := writeScript(t, "CREATE TABLE alpha;\n")
	require.NoError(t, deployer.ExecuteScript(first))

	second := filepath.Join(filepath.Dir(first), "deploy_v2.sql")
	require.NoError(t, os.WriteFile(second, []byte("CREATE TABLE beta;\n"), 0o644))
	require.NoError(t, deployer.ExecuteScript(second))

	entries, err := deployer.History()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first, entries[0].SQLFile)
	assert.Equal(t, second, entries[1].SQLFile)
}
