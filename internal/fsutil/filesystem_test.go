package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSFileSystem_ReadDir(t *testing.T) {
	dir := t.TempDir()
	osfs := OSFileSystem{}

	require.NoError(t, osfs.WriteFile(filepath.Join(dir, "b.gpx"), []byte("b"), 0o644))
	require.NoError(t, osfs.WriteFile(filepath.Join(dir, "a.gpx"), []byte("a"), 0o644))
	require.NoError(t, osfs.MkdirAll(filepath.Join(dir, "sub"), 0o755))

	entries, err := osfs.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "a.gpx", entries[0].Name())
	assert.True(t, entries[2].IsDir())

	require.NoError(t, osfs.RemoveAll(dir))
	_, err = osfs.Stat(dir)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestMemoryFileSystem_WriteAndRead(t *testing.T) {
	mfs := NewMemoryFileSystem()

	require.NoError(t, mfs.WriteFile("/tracks/run.gpx", []byte("hello"), 0o644))
	data, err := mfs.ReadFile("/tracks/run.gpx")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	info, err := mfs.Stat("/tracks")
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "parent directory should be created implicitly")

	info, err = mfs.Stat("/tracks/run.gpx")
	require.NoError(t, err)
	assert.False(t, info.IsDir())
	assert.EqualValues(t, 5, info.Size())
}

func TestMemoryFileSystem_ReadDir(t *testing.T) {
	mfs := NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("/d/z.fit", nil, 0o644))
	require.NoError(t, mfs.WriteFile("/d/a.gpx", nil, 0o644))
	require.NoError(t, mfs.WriteFile("/d/nested/x.gpx", nil, 0o644))

	entries, err := mfs.ReadDir("/d")
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"a.gpx", "nested", "z.fit"}, names)
	assert.True(t, entries[1].IsDir())

	_, err = mfs.ReadDir("/d/a.gpx")
	assert.Error(t, err)

	_, err = mfs.ReadDir("/missing")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestMemoryFileSystem_ReadErr(t *testing.T) {
	mfs := NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("/d/locked.gpx", []byte("x"), 0o000))
	mfs.ReadErr["/d/locked.gpx"] = fs.ErrPermission

	_, err := mfs.ReadFile("/d/locked.gpx")
	assert.True(t, errors.Is(err, fs.ErrPermission))
}

func TestMemoryFileSystem_RemoveAll(t *testing.T) {
	mfs := NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("/cache/a.json", []byte("{}"), 0o644))
	require.NoError(t, mfs.WriteFile("/cache/b.json", []byte("{}"), 0o644))
	require.NoError(t, mfs.WriteFile("/cachedir/keep.json", []byte("{}"), 0o644))

	require.NoError(t, mfs.RemoveAll("/cache"))

	_, err := mfs.Stat("/cache/a.json")
	assert.Error(t, err)
	_, err = mfs.Stat("/cache")
	assert.Error(t, err)
	_, err = mfs.Stat("/cachedir/keep.json")
	assert.NoError(t, err, "sibling with shared prefix must survive")
}
