package query

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstall_WritesOnlySQL(t *testing.T) {
	fsys := fstest.MapFS{
		"02_b.sql":        {Data: []byte("SELECT 2")},
		"01_a.sql":        {Data: []byte("SELECT 1")},
		"embed.go":        {Data: []byte("package queries")},
		"nested/03_c.sql": {Data: []byte("SELECT 3")},
	}
	dir := filepath.Join(t.TempDir(), "queries")

	written, kept, err := Install(fsys, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"01_a.sql", "02_b.sql"}, written)
	assert.Empty(t, kept)

	data, err := os.ReadFile(filepath.Join(dir, "01_a.sql"))
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", string(data))
	assert.NoFileExists(t, filepath.Join(dir, "embed.go"))
}

func TestInstall_NeverOverwrites(t *testing.T) {
	fsys := fstest.MapFS{
		"01_a.sql": {Data: []byte("SELECT 1")},
		"02_b.sql": {Data: []byte("SELECT 2")},
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "01_a.sql"), []byte("SELECT 'mine'"), 0o644))

	written, kept, err := Install(fsys, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"02_b.sql"}, written)
	assert.Equal(t, []string{"01_a.sql"}, kept)

	data, err := os.ReadFile(filepath.Join(dir, "01_a.sql"))
	require.NoError(t, err)
	assert.Equal(t, "SELECT 'mine'", string(data))

	written, kept, err = Install(fsys, dir)
	require.NoError(t, err)
	assert.Empty(t, written)
	assert.Equal(t, []string{"01_a.sql", "02_b.sql"}, kept)
}
