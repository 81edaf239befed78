package client

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netpong.db")
	s, err := OpenStore(path)
	require.NoError(t, err)

	id, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "", id)

	require.NoError(t, s.Save("ABCD2345"))
	require.NoError(t, s.Save("EFGH6789"))
	id, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, "EFGH6789", id)
	require.NoError(t, s.Close())

	// Survives a restart.
	s, err = OpenStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	id, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, "EFGH6789", id)

	require.NoError(t, s.Clear())
	id, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, "", id)
	require.NoError(t, s.Clear())
}

func TestMemoryStore(t *testing.T) {
	var s MemoryStore
	require.NoError(t, s.Save("X"))
	id, _ := s.Load()
	assert.Equal(t, "X", id)
	require.NoError(t, s.Clear())
	id, _ = s.Load()
	assert.Equal(t, "", id)
}
