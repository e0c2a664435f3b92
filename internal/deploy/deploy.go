// Package deploy publishes a finished build into the interactive server's
// web root, which is expected to be mounted locally.
package deploy

import (
	"errors"
	"fmt"
	"go.uber.org/zap"
	"honours/internal/domain/config"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var ErrNoTarget = errors.New("please specify a deploy target")

type Deployer struct {
	Cfg config.DeployConfig
	Log *zap.Logger
}

// Deploy copies src into <dest_prefix>/<target> and returns the public URL
// of the deployed site. The .git directory of src is not copied.
func (d *Deployer) Deploy(src string) (string, error) {
	target := strings.Trim(strings.TrimSpace(d.Cfg.Target), "/")
	if target == "" {
		return "", ErrNoTarget
	}
	if strings.TrimSpace(d.Cfg.DestPrefix) == "" {
		return "", errors.New("deploy: dest_prefix is not set")
	}
	if cleaned := path.Clean(target); cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("deploy: target %q escapes dest_prefix", target)
	}
	if st, err := os.Stat(src); err != nil || !st.IsDir() {
		return "", fmt.Errorf("deploy: nothing to deploy at %s (run build first)", src)
	}

	dest := filepath.Join(d.Cfg.DestPrefix, filepath.FromSlash(target))
	n, err := copyTree(src, dest)
	if err != nil {
		return "", fmt.Errorf("deploy: %w", err)
	}

	url := strings.TrimRight(d.Cfg.PublicURL, "/") + "/" + target + "/"
	if d.Log != nil {
		d.Log.Named("deploy").Info("deployed", zap.String("dest", dest), zap.Int("files", n), zap.String("url", url))
	}
	return url, nil
}

func copyTree(src, dest string) (int, error) {
	n := 0
	err := filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" && rel != "." {
				return filepath.SkipDir
			}
			return os.MkdirAll(filepath.Join(dest, rel), 0o755)
		}
		if err := copyFile(p, filepath.Join(dest, rel)); err != nil {
			return err
		}
		n++
		return nil
	})
	return n, err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
