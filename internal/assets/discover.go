package assets

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Discover walks root and returns the slash-separated paths, relative to
// root, of every regular file match accepts. A missing root yields nothing.
func Discover(root string, match func(rel string) bool) ([]string, error) {
	var out []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if match == nil || match(rel) {
			out = append(out, rel)
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	sort.Strings(out)
	return out, err
}

// WithExt matches files by extension, case-insensitively.
func WithExt(exts ...string) func(string) bool {
	return func(rel string) bool {
		ext := strings.ToLower(filepath.Ext(rel))
		for _, e := range exts {
			if ext == e {
				return true
			}
		}
		return false
	}
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return writeFile(dst, data)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
