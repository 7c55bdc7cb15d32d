// Package cache stores parsed tracks keyed by the SHA-256 of their source
// bytes, so unchanged files skip parsing on later runs.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/banshee-data/trackposter/internal/fsutil"
	"github.com/banshee-data/trackposter/internal/track"
)

// ErrMiss is returned by Load when no record exists for a key.
var ErrMiss = errors.New("cache miss")

// Store persists cache records. Implementations must be safe for concurrent
// use; distinct keys never contend.
type Store interface {
	// Load returns the track stored under key, ErrMiss if there is none, or
	// another error if the record is unreadable.
	Load(key string) (*track.Track, error)
	// Save writes t under key, replacing any previous record.
	Save(key string, t *track.Track) error
	// Clear drops every record.
	Clear() error
	Close() error
}

// Key returns the hex SHA-256 of data.
func Key(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Checksum reads path and returns its cache key alongside the bytes read.
// Read failures come back as a *track.LoadError of kind PermissionDenied or
// ChecksumFailed.
func Checksum(fsys fsutil.FileSystem, path string) (string, []byte, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return "", nil, track.ReadError(path, err)
	}
	return Key(data), data, nil
}
