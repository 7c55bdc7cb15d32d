package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/banshee-data/trackposter/internal/fsutil"
	"github.com/banshee-data/trackposter/internal/track"
)

// DirStore keeps one JSON record per key at <root>/<key>.json.
type DirStore struct {
	fs   fsutil.FileSystem
	root string
}

// NewDirStore returns a store rooted at root. The directory is created on
// the first Save.
func NewDirStore(fsys fsutil.FileSystem, root string) *DirStore {
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	return &DirStore{fs: fsys, root: root}
}

// Root is the cache directory.
func (s *DirStore) Root() string { return s.root }

// Path is the record file for key.
func (s *DirStore) Path(key string) string {
	return filepath.Join(s.root, key+".json")
}

func (s *DirStore) Load(key string) (*track.Track, error) {
	data, err := s.fs.ReadFile(s.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	return track.UnmarshalRecord(data)
}

func (s *DirStore) Save(key string, t *track.Track) error {
	if err := s.fs.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	data, err := t.MarshalRecord()
	if err != nil {
		return err
	}
	return s.fs.WriteFile(s.Path(key), data, 0o644)
}

// Clear deletes the whole cache directory tree.
func (s *DirStore) Clear() error {
	return s.fs.RemoveAll(s.root)
}

func (s *DirStore) Close() error { return nil }
