package dbutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFinalizeSQLiteKeepsPlaceholders(t *testing.T) {
	query, args := Finalize("sqlite", "SELECT 1 FROM t WHERE a = ? AND b = ?", []interface{}{1, 2})
	require.Equal(t, "SELECT 1 FROM t WHERE a = ? AND b = ?", query)
	require.Equal(t, []interface{}{1, 2}, args)
}

func TestFinalizePostgresRebinds(t *testing.T) {
	query, _ := Finalize("postgres", "SELECT 1 FROM t WHERE a = ? AND b = ?", nil)
	require.Equal(t, "SELECT 1 FROM t WHERE a = $1 AND b = $2", query)
}

func TestInExpandsSlices(t *testing.T) {
	query, args, err := In("sqlite", "SELECT 1 FROM t WHERE id IN (?)", []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Equal(t, "SELECT 1 FROM t WHERE id IN (?, ?, ?)", query)
	require.Len(t, args, 3)

	query, _, err = In("postgres", "SELECT 1 FROM t WHERE id IN (?)", []string{"a", "b"})
	require.NoError(t, err)
	require.Equal(t, "SELECT 1 FROM t WHERE id IN ($1, $2)", query)
}

func TestIsConflict(t *testing.T) {
	require.False(t, IsConflict(nil))
	require.False(t, IsConflict(errors.New("some other failure")))
	require.True(t, IsConflict(errors.New("constraint failed: UNIQUE constraint failed: chat_sessions.id (1555)")))
}
