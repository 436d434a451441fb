package journal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/solaris/internal/cart"
	"github.com/roach88/solaris/internal/catalog"
)

// createTestJournal opens a fresh journal in a temp dir.
func createTestJournal(t *testing.T) *Journal {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	j, err := Open(path, nil)
	require.NoError(t, err, "Open() failed")
	t.Cleanup(func() { j.Close() })
	return j
}

func testEngine() *cart.Engine {
	return cart.NewEngine(catalog.Default(), cart.DefaultPolicy())
}

// recordSession runs actions through a journaled session and returns it.
func recordSession(t *testing.T, j *Journal, id string, actions ...string) *cart.Session {
	t.Helper()
	ctx := context.Background()
	engine := testEngine()

	require.NoError(t, j.BeginSession(ctx, id, engine))
	s := cart.NewSession(engine, cart.WithID(id), cart.WithRecorder(j))

	parsed, err := cart.ParseActions(actions)
	require.NoError(t, err)
	_, err = s.ApplyAll(ctx, parsed)
	require.NoError(t, err)
	return s
}
