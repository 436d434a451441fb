package journal

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path, nil)
	require.NoError(t, err)
	defer j.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	for i := 0; i < 3; i++ {
		j, err := Open(path, nil)
		require.NoError(t, err, "Open() iteration %d", i)
		require.NoError(t, j.Close())
	}

	j, err := Open(path, nil)
	require.NoError(t, err)
	defer j.Close()

	for _, table := range []string{"sessions", "actions"} {
		ok, err := j.tableExists(context.Background(), table)
		require.NoError(t, err)
		assert.True(t, ok, "table %q missing after idempotent opens", table)
	}
}

func TestOpen_Pragmas(t *testing.T) {
	j := createTestJournal(t)

	assert.NoError(t, j.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, j.verifyPragma("synchronous", "1"))
	assert.NoError(t, j.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, j.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, j.verifyPragma("user_version", "1"))
}

func TestOpen_BadPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "journal.db"), nil)
	assert.Error(t, err)
}

func TestClose_Nil(t *testing.T) {
	var j Journal
	assert.NoError(t, j.Close())
}
