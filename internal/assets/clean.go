package assets

import (
	"context"
	"os"
	"path/filepath"
)

// Clean empties the tmp and dist dirs. dist/.git survives so a checked-out
// deploy branch can live there.
func (a *Assets) Clean(ctx context.Context) error {
	if err := emptyDir(a.Cfg.TmpDir, nil); err != nil {
		return err
	}
	return emptyDir(a.Cfg.DistDir, map[string]bool{".git": true})
}

func emptyDir(dir string, keep map[string]bool) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if keep[e.Name()] {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
