package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/solaris/internal/cart"
	"github.com/roach88/solaris/internal/journal"
)

const saleCatalog = "../harness/testdata/catalogs/sale.cue"

type snapshotResponse struct {
	Status    string        `json:"status"`
	SessionID string        `json:"session_id"`
	Data      cart.Snapshot `json:"data"`
}

func TestCatalogCommand_Text(t *testing.T) {
	stdout, _, err := execute(t, "catalog")
	require.NoError(t, err)

	assert.Contains(t, stdout, "sg1  Solaris Signature Sunglasses (primary)")
	assert.Contains(t, stdout, "$85.00 USD")
	assert.Contains(t, stdout, "Bundle saving: $10.00")
	assert.Contains(t, stdout, "Catalog hash: ")
}

func TestCatalogCommand_JSON(t *testing.T) {
	stdout, _, err := execute(t, "--format", "json", "--catalog", saleCatalog, "catalog")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   CatalogResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Items, 3)
	assert.Equal(t, "sg1", resp.Data.Items[0].ID)
	assert.Equal(t, "60.00", resp.Data.Items[0].Price)
	assert.Equal(t, "bundle", resp.Data.Items[2].Role)
	assert.Equal(t, "10.00", resp.Data.BundleSaving)
	assert.Len(t, resp.Data.Hash, 64)
}

func TestCatalogCommand_BadCatalog(t *testing.T) {
	_, _, err := execute(t, "--catalog", filepath.Join(t.TempDir(), "missing.cue"), "catalog")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load catalog")
}

func TestQuoteCommand_Text(t *testing.T) {
	stdout, _, err := execute(t, "quote", "add:sg1", "add:ln1", "add sg1")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Cart (2 units)")
	assert.Contains(t, stdout, "Solaris Signature Sunglasses")
	assert.Contains(t, stdout, "Solaris Bundle (Sunglasses + Lenses)")
	assert.Contains(t, stdout, "200.26")
	assert.Contains(t, stdout, "Free shipping unlocked")
	assert.Contains(t, stdout, "Bundle applied")
}

func TestQuoteCommand_DismissedNotice(t *testing.T) {
	stdout, _, err := execute(t, "quote", "add:sg1", "add:ln1", "dismiss")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "Bundle applied")
	assert.Contains(t, stdout, "Cart (1 unit)")
}

func TestQuoteCommand_BelowThreshold(t *testing.T) {
	stdout, _, err := execute(t, "quote", "add:sg1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Add $15.00 for free shipping (85%)")
	assert.Contains(t, stdout, "106.96")
}

func TestQuoteCommand_JSON(t *testing.T) {
	stdout, _, err := execute(t, "--format", "json", "quote", "add:sg1", "add:ln1", "--session", "q-1")
	require.NoError(t, err)

	var resp snapshotResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "q-1", resp.SessionID)
	assert.Equal(t, map[string]int{"bd1": 1}, resp.Data.Quantities())
	assert.True(t, resp.Data.AutoBundled)
	assert.Equal(t, "108.25", resp.Data.Totals.Total)
	assert.Equal(t, 100, resp.Data.FreeShippingProgress)
}

func TestQuoteCommand_InvalidAction(t *testing.T) {
	stdout, _, err := execute(t, "quote", "add:sg1", "buy:ln1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E_INVALID_ACTION]")
}

func TestQuoteCommand_RequiresActions(t *testing.T) {
	_, _, err := execute(t, "quote")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}

func TestQuoteCommand_ReusedSessionID(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cart.db")

	_, _, err := execute(t, "quote", "add:bd1", "--db", db, "--session", "demo")
	require.NoError(t, err)

	stdout, _, err := execute(t, "--format", "json", "quote", "add:sg1", "--db", db, "--session", "demo")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, journal.ErrSessionExists)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeJournal, resp.Error.Code)
	assert.NotContains(t, resp.Error.Message, "UNIQUE")

	_, _, err = execute(t, "--catalog", saleCatalog, "quote", "add:sg1", "--db", db, "--session", "demo")
	assert.ErrorIs(t, err, journal.ErrSessionExists, "a different catalog cannot take over the id")

	stdout, _, err = execute(t, "replay", "--db", db, "demo")
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ demo (1 actions, total 108.25)", "first run left intact")
}

func TestShellCommand_ReusedSessionID(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cart.db")
	_, _, err := execute(t, "quote", "add:ln1", "--db", db, "--session", "sh-dup")
	require.NoError(t, err)

	stdout := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("add sg1\n"))
	cmd.SetArgs([]string{"shell", "--db", db, "--session", "sh-dup"})

	err = cmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, journal.ErrSessionExists)
	assert.Contains(t, stdout.String(), "Error [E_JOURNAL]")
	assert.NotContains(t, stdout.String(), "Cart (", "no action ran")
}

func TestCloseInto(t *testing.T) {
	var err error
	closeInto(&err, func() error { return nil })
	assert.NoError(t, err)

	closeErr := codedExitError(ExitCommandError, CodeJournal, "failed to close journal", errors.New("disk gone"))
	closeInto(&err, func() error { return closeErr })
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to close journal: disk gone")

	first := NewExitError(ExitFailure, "scenario failed")
	err = first
	closeInto(&err, func() error { return closeErr })
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, closeErr)
	assert.Equal(t, ExitFailure, GetExitCode(err), "the command's own error keeps its code")
}

func TestShellCommand(t *testing.T) {
	stdout := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("# demo\nadd sg1\n\nbogus\nadd:ln1\nshow\nquit\nadd sg1\n"))
	cmd.SetArgs([]string{"shell", "--session", "sh-1"})

	require.NoError(t, cmd.Execute())
	out := stdout.String()

	assert.True(t, strings.HasPrefix(out, "Session sh-1\n"))
	assert.Contains(t, out, `Error [E_INVALID_ACTION]: invalid action "bogus"`)
	assert.Equal(t, 2, strings.Count(out, "Bundle applied"), "after add:ln1 and after show")
	assert.NotContains(t, out, "Cart (2 units)", "input after quit is ignored")
}

func TestShellCommand_JSONLines(t *testing.T) {
	stdout := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("add sg1\nadd ln1\n"))
	cmd.SetArgs([]string{"--format", "json", "shell", "--session", "sh-2"})

	require.NoError(t, cmd.Execute())

	dec := json.NewDecoder(stdout)
	var snaps []snapshotResponse
	for dec.More() {
		var resp snapshotResponse
		require.NoError(t, dec.Decode(&resp))
		snaps = append(snaps, resp)
	}
	require.Len(t, snaps, 2)
	assert.Equal(t, "sh-2", snaps[1].SessionID)
	assert.False(t, snaps[0].Data.AutoBundled)
	assert.True(t, snaps[1].Data.AutoBundled)
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("scenarios", "golden", "pair.golden"),
		goldenFilePath(filepath.Join("scenarios", "pair.yaml")))
}

func TestFindScenarioFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.yaml", "b.yml", "c.txt", filepath.Join("golden", "a.yaml")} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, nil, 0644))
	}

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.yaml"), filepath.Join(dir, "b.yml")}, files)

	files, err = findScenarioFiles(dir, "b*")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "b.yml")}, files)

	_, err = findScenarioFiles(dir, "[")
	assert.ErrorContains(t, err, "invalid filter pattern")
}
