package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCommander substitutes the mysql/mysqldump binaries in tests
type fakeCommander struct {
	listOutput  string
	listErr     error
	dumpErr     map[string]error
	dumpContent string
	dumpedDBs   []string
}

func (f *fakeCommander) Output(ctx context.Context, env []string, name string, args ...string) ([]byte, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []byte(f.listOutput), nil
}

func (f *fakeCommander) Run(ctx context.Context, w io.Writer, env []string, name string, args ...string) error {
	db := args[len(args)-1]
	f.dumpedDBs = append(f.dumpedDBs, db)
	if err, failed := f.dumpErr[db]; failed {
		// Simulate a partially written dump before the failure.
		io.WriteString(w, "-- partial dump\n")
		return err
	}
	if f.dumpContent != "" {
		io.WriteString(w, f.dumpContent)
	}
	return nil
}

func newTestRunner(t *testing.T, cmd Commander) *Runner {
	t.Helper()
	return NewRunnerWithCommander(RunnerConfig{
		Host:      "localhost",
		Port:      3306,
		Username:  "student",
		Password:  "secret",
		BackupDir: t.TempDir(),
	}, nil, cmd)
}

func TestListDatabases_FiltersSystemSchemas(t *testing.T) {
	fake := &fakeCommander{
		listOutput: "Database\ninformation_schema\nassignment1\nmysql\nperformance_schema\nshop\nsys\n",
	}
	runner := newTestRunner(t, fake)

	databases := runner.ListDatabases(context.Background())
	assert.Equal(t, []string{"assignment1", "shop"}, databases)
}

func TestListDatabases_ExcludesEveryDenylistedSchema(t *testing.T) {
	fake := &fakeCommander{
		listOutput: "Database\ninformation_schema\nperformance_schema\nmysql\nsys\n",
	}
	runner := newTestRunner(t, fake)

	assert.Empty(t, runner.ListDatabases(context.Background()))
}

func TestListDatabases_SoftFailsOnCommandError(t *testing.T) {
	fake := &fakeCommander{listErr: fmt.Errorf("exit status 1")}
	runner := newTestRunner(t, fake)

	assert.Empty(t, runner.ListDatabases(context.Background()))
}

func TestBackupDatabase_FilenamePattern(t *testing.T) {
	fake := &fakeCommander{dumpContent: "-- dump\n"}
	runner := newTestRunner(t, fake)

	path, err := runner.BackupDatabase(context.Background(), "assignment1")
	require.NoError(t, err)

	pattern := regexp.MustCompile(`^assignment1_\d{8}_\d{6}\.sql$`)
	assert.True(t, pattern.MatchString(filepath.Base(path)),
		"filename %q should match name_YYYYMMDD_HHMMSS.sql", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "-- dump\n", string(data))
}

func TestBackupDatabase_DistinctFilenamesAcrossTimes(t *testing.T) {
	fake := &fakeCommander{dumpContent: "-- dump\n"}
	runner := newTestRunner(t, fake)

	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	runner.now = func() time.Time { return base }
	first, err := runner.BackupDatabase(context.Background(), "shop")
	require.NoError(t, err)

	runner.now = func() time.Time { return base.Add(time.Second) }
	second, err := runner.BackupDatabase(context.Background(), "shop")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestBackupDatabase_CreatesBackupDir(t *testing.T) {
	fake := &fakeCommander{dumpContent: "-- dump\n"}
	dir := filepath.Join(t.TempDir(), "nested", "backups")
	runner := NewRunnerWithCommander(RunnerConfig{
		Host: "localhost", Port: 3306, Username: "student", BackupDir: dir,
	}, nil, fake)

	_, err := runner.BackupDatabase(context.Background(), "shop")
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestBackupDatabase_FailureLeavesTruncatedFile(t *testing.T) {
	fake := &fakeCommander{
		dumpErr: map[string]error{"shop": fmt.Errorf("exit status 2")},
	}
	runner := newTestRunner(t, fake)

	_, err := runner.BackupDatabase(context.Background(), "shop")
	require.Error(t, err)

	// The partially written file is not cleaned up.
	entries, err := os.ReadDir(runner.config.BackupDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(runner.config.BackupDir, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, "-- partial dump\n", string(data))
}

func TestBackupAll_PartialFailureTolerant(t *testing.T) {
	fake := &fakeCommander{
		listOutput:  "Database\nalpha\nbeta\ngamma\n",
		dumpContent: "-- dump\n",
		dumpErr:     map[string]error{"beta": fmt.Errorf("exit status 2")},
	}
	runner := newTestRunner(t, fake)

	paths := runner.BackupAll(context.Background())
	assert.Len(t, paths, 2)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, fake.dumpedDBs,
		"all databases should be attempted despite the failure")
}

func TestBackupAll_EmptyListing(t *testing.T) {
	fake := &fakeCommander{listErr: fmt.Errorf("exit status 1")}
	runner := newTestRunner(t, fake)

	assert.Empty(t, runner.BackupAll(context.Background()))
}

func TestDatabaseNameFromPath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"mysql_backups/shop_20260824_120000.sql", "shop"},
		{"shop_orders_20260824_120000.sql", "shop_orders"},
		{"plain.sql", "plain"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, DatabaseNameFromPath(tt.path), "path %q", tt.path)
	}
}
