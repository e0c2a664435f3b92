package manifest

import (
	"encoding/json"
	"fmt"
	bolt "go.etcd.io/bbolt"
	"honours/internal/domain/build"
	"io/fs"
	"path/filepath"
	"sort"
	"time"
)

type Diff struct {
	Added   []string
	Changed []string
	Removed []string
}

func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Changed) == 0 && len(d.Removed) == 0
}

// Record replaces the stored snapshot with files and returns how it differs
// from the previous one. The first Record reports every file as added.
func (s *Store) Record(files map[string]build.Fingerprint, at time.Time) (Diff, error) {
	var d Diff
	err := s.db.Update(func(tx *bolt.Tx) error {
		prev, err := readFiles(tx)
		if err != nil {
			return err
		}
		d = diff(prev, files)

		if tx.Bucket(bFiles) != nil {
			if err := tx.DeleteBucket(bFiles); err != nil {
				return err
			}
		}
		fb, err := tx.CreateBucket(bFiles)
		if err != nil {
			return err
		}
		for rel, fp := range files {
			v, err := json.Marshal(fp)
			if err != nil {
				return err
			}
			if err := fb.Put([]byte(rel), v); err != nil {
				return err
			}
		}

		mb, err := tx.CreateBucketIfNotExists(bMeta)
		if err != nil {
			return err
		}
		ts, err := at.UTC().MarshalText()
		if err != nil {
			return err
		}
		return mb.Put(kBuiltAt, ts)
	})
	return d, err
}

// Snapshot returns the files of the last Record and when it happened.
// Both are zero before the first Record.
func (s *Store) Snapshot() (map[string]build.Fingerprint, time.Time, error) {
	var (
		files map[string]build.Fingerprint
		at    time.Time
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		files, err = readFiles(tx)
		if err != nil {
			return err
		}
		if mb := tx.Bucket(bMeta); mb != nil {
			if v := mb.Get(kBuiltAt); v != nil {
				return at.UnmarshalText(v)
			}
		}
		return nil
	})
	return files, at, err
}

func readFiles(tx *bolt.Tx) (map[string]build.Fingerprint, error) {
	out := make(map[string]build.Fingerprint)
	b := tx.Bucket(bFiles)
	if b == nil {
		return out, nil
	}
	err := b.ForEach(func(k, v []byte) error {
		var fp build.Fingerprint
		if err := json.Unmarshal(v, &fp); err != nil {
			return fmt.Errorf("manifest entry %s: %w", k, err)
		}
		out[string(k)] = fp
		return nil
	})
	return out, err
}

func diff(prev, cur map[string]build.Fingerprint) Diff {
	var d Diff
	for rel, fp := range cur {
		old, ok := prev[rel]
		switch {
		case !ok:
			d.Added = append(d.Added, rel)
		case old != fp:
			d.Changed = append(d.Changed, rel)
		}
	}
	for rel := range prev {
		if _, ok := cur[rel]; !ok {
			d.Removed = append(d.Removed, rel)
		}
	}
	sort.Strings(d.Added)
	sort.Strings(d.Changed)
	sort.Strings(d.Removed)
	return d
}

// Scan fingerprints every file under dir except the .git directory, keyed by
// slash-separated relative path.
func Scan(dir string) (map[string]build.Fingerprint, error) {
	out := make(map[string]build.Fingerprint)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		fp, err := build.FingerprintFile(path)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = fp
		return nil
	})
	return out, err
}
