package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/parley-dm/parley/internal/domain"
)

func TestSQLiteStore(t *testing.T) {
	st, err := OpenSQLite(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	defer st.Close()

	exerciseStore(t, st)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sessions.db")
	ctx := context.Background()

	st, err := OpenSQLite(path)
	require.NoError(t, err)
	sess := &domain.Session{ID: "persisted", AgentID: "system", State: sampleState("system")}
	require.NoError(t, st.Save(ctx, sess))
	require.NoError(t, st.Close())

	st, err = OpenSQLite(path)
	require.NoError(t, err)
	defer st.Close()

	got, err := st.Get(ctx, "persisted")
	require.NoError(t, err)
	require.Equal(t, sess.State.Summary(), got.State.Summary())
}
