// Package manifest remembers the fingerprint of every file a build emitted
// so the next build can report what it changed.
package manifest

import (
	"errors"
	bolt "go.etcd.io/bbolt"
	"os"
	"path/filepath"
	"time"
)

var (
	bFiles = []byte("files") // rel path -> fingerprint json
	bMeta  = []byte("meta")

	kBuiltAt = []byte("built_at")
)

type Store struct {
	db *bolt.DB
}

type OpenOptions struct {
	Path string // e.g. ".honours/manifest.db"
}

func Open(opt OpenOptions) (*Store, error) {
	if opt.Path == "" {
		return nil, errors.New("manifest: missing path")
	}
	if err := os.MkdirAll(filepath.Dir(opt.Path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(opt.Path, 0o600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
