package deploy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitStatements(t *testing.T) {
	script := "CREATE TABLE alpha;\nINSERT INTO alpha VALUES ROW;\n"

	statements := SplitStatements(script)
	assert.Equal(t, []string{
		"CREATE TABLE alpha",
		"INSERT INTO alpha VALUES ROW",
	}, statements)
}

func TestSplitStatements_DropsEmptyFragments(t *testing.T) {
	script := ";;  ;\nCREATE TABLE alpha;\n\n;  "

	statements := SplitStatements(script)
	assert.Equal(t, []string{"CREATE TABLE alpha"}, statements)
}

func TestSplitStatements_EmptyScript(t *testing.T) {
	assert.Empty(t, SplitStatements(""))
	assert.Empty(t, SplitStatements("   \n\t  "))
}

func TestSplitStatements_NoTrailingSeparator(t *testing.T) {
	statements := SplitStatements("UPDATE alpha SET done = 1")
	assert.Equal(t, []string{"UPDATE alpha SET done = 1"}, statements)
}

func TestSplitStatements_SplitsInsideLiterals(t *testing.T) {
	// Documented limitation: a ';' inside a string literal still splits.
	statements := SplitStatements("INSERT INTO alpha VALUES 'a;b'")
	assert.Equal(t, []string{"INSERT INTO alpha VALUES 'a", "b'"}, statements)
}
