package store

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSnapshot(t *testing.T) {
	st := setupTestStore(t)
	data := encodedChain(t, 1)
	written, _, err := st.WriteSnapshot(t.Context(), "main", data)
	require.NoError(t, err)

	info, got, err := st.ReadSnapshot(t.Context(), written.ID)
	require.NoError(t, err)
	assert.Equal(t, written, info)
	assert.Equal(t, data, got)
}

func TestReadSnapshot_NotFound(t *testing.T) {
	st := setupTestStore(t)

	_, _, err := st.ReadSnapshot(t.Context(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	_, _, err = st.LatestSnapshot(t.Context(), "main")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestLatestSnapshot(t *testing.T) {
	st := setupTestStore(t)
	first := encodedChain(t, 1)
	second := encodedChain(t, 2)

	_, _, err := st.WriteSnapshot(t.Context(), "main", first)
	require.NoError(t, err)
	_, _, err = st.WriteSnapshot(t.Context(), "other", encodedChain(t, 3))
	require.NoError(t, err)
	want, _, err := st.WriteSnapshot(t.Context(), "main", second)
	require.NoError(t, err)

	info, data, err := st.LatestSnapshot(t.Context(), "main")
	require.NoError(t, err)
	assert.Equal(t, want.ID, info.ID)
	assert.Equal(t, second, data)
}

func TestListSnapshots_Order(t *testing.T) {
	st := setupTestStore(t)
	for i, name := range []string{"b", "a", "b"} {
		_, _, err := st.WriteSnapshot(t.Context(), name, encodedChain(t, float32(i)))
		require.NoError(t, err)
	}

	all, err := st.ListSnapshots(t.Context(), "")
	require.NoError(t, err)
	var names []string
	var seqs []int64
	for _, info := range all {
		names = append(names, info.Name)
		seqs = append(seqs, info.Seq)
	}
	assert.Equal(t, []string{"b", "a", "b"}, names)
	assert.Equal(t, []int64{1, 2, 3}, seqs)

	onlyB, err := st.ListSnapshots(t.Context(), "b")
	require.NoError(t, err)
	require.Len(t, onlyB, 2)
	assert.Equal(t, int64(1), onlyB[0].Seq)
	assert.Equal(t, int64(3), onlyB[1].Seq)
}

func TestReadUpdateReports_Empty(t *testing.T) {
	st := setupTestStore(t)
	runID, err := st.StartRun(t.Context(), "run", "")
	require.NoError(t, err)

	reps, err := st.ReadUpdateReports(t.Context(), runID)
	require.NoError(t, err)
	assert.Empty(t, reps)
}
