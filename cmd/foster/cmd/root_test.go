package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sayounara/foster-btree/pkg/config"
)

func TestOpenTreeRoundTrip(t *testing.T) {
	cfg = config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	tree, ps, err := openTree()
	require.NoError(t, err)

	require.NoError(t, tree.Put([]byte("alpha"), []byte("1")))
	require.NoError(t, tree.Put([]byte("beta"), []byte("2")))
	require.NoError(t, tree.Snapshot(ps))
	require.NoError(t, ps.Close())

	tree, ps, err = openTree()
	require.NoError(t, err)
	defer ps.Close()

	assert.Equal(t, 2, tree.Len())
	value, err := tree.Get([]byte("alpha"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), value)
}

func TestOpenTreeEmptyDir(t *testing.T) {
	cfg = config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	tree, ps, err := openTree()
	require.NoError(t, err)
	defer ps.Close()

	assert.Equal(t, 0, tree.Len())
}
