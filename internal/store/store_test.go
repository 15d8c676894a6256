package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_AppliesPragmas(t *testing.T) {
	st := setupTestStore(t)

	assert.NoError(t, st.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, st.verifyPragma("synchronous", "1"))
	assert.NoError(t, st.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, st.verifyPragma("foreign_keys", "1"))
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	st, err := Open(path)
	require.NoError(t, err)
	_, _, err = st.WriteSnapshot(t.Context(), "main", encodedChain(t, 1))
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = Open(path)
	require.NoError(t, err)
	defer st.Close()

	var version int
	require.NoError(t, st.DB().QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)

	list, err := st.ListSnapshots(t.Context(), "")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestOpen_MigrationCreatesIndex(t *testing.T) {
	st := setupTestStore(t)

	var name string
	err := st.DB().QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type = 'index' AND name = 'idx_snapshots_name_seq'
	`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "idx_snapshots_name_seq", name)
}

func TestOpen_DefaultIDsAreUUIDv7(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer st.Close()

	id, err := st.StartRun(t.Context(), "run", "")
	require.NoError(t, err)
	require.Len(t, id, 36)
	assert.Equal(t, byte('7'), id[14], "version nibble of %s", id)
}

func TestClose_NilDB(t *testing.T) {
	var st Store
	assert.NoError(t, st.Close())
}
