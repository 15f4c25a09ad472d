package fs

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listDir(t *testing.T, dir string) []string {
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestReplacerAbort(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "obj")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0666))

	r, err := NewFileReplacer(target, 0666)
	require.NoError(t, err)
	assert.Equal(t, target, r.Name())
	_, err = r.Write([]byte("new content"))
	require.NoError(t, err)
	r.Abort()
	require.NoError(t, r.Close())

	b, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "old", string(b))
	assert.Equal(t, []string{"obj"}, listDir(t, dir))
}

func TestReplacerClose(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "sub", "obj")
	require.NoError(t, MkdirParent(target))
	r, err := NewFileReplacer(target, 0644)
	require.NoError(t, err)
	_, err = r.Write([]byte("abc"))
	require.NoError(t, err)
	pos, err := r.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.EqualValues(t, 3, pos)
	_, err = os.Stat(target)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	r.Abort()

	b, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(b))
	assert.Equal(t, []string{"obj"}, listDir(t, filepath.Dir(target)))
	_, err = r.Write([]byte("more"))
	assert.Error(t, err)
}
