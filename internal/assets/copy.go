package assets

import (
	"context"
	"go.uber.org/zap"
	"path"
	"path/filepath"
	"strings"
)

// extensions other steps own
var handledExts = map[string]bool{
	".html": true, ".tmpl": true, ".scss": true, ".css": true, ".js": true, ".map": true,
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".svg": true,
}

// MiscFiles lists the client files no other step ships, dotfiles included.
func (a *Assets) MiscFiles() ([]string, error) {
	dataRel := ""
	if rel, err := filepath.Rel(a.Cfg.ClientDir, a.Cfg.DataFile); err == nil && !strings.HasPrefix(rel, "..") {
		dataRel = filepath.ToSlash(rel)
	}
	return Discover(a.Cfg.ClientDir, func(rel string) bool {
		if rel == dataRel {
			return false
		}
		return !handledExts[strings.ToLower(path.Ext(rel))]
	})
}

// CopyMisc copies MiscFiles from client into dist unchanged.
func (a *Assets) CopyMisc(ctx context.Context) error {
	files, err := a.MiscFiles()
	if err != nil {
		return err
	}
	err = forEach(ctx, files, func(_ context.Context, rel string) error {
		return copyFile(
			filepath.Join(a.Cfg.ClientDir, filepath.FromSlash(rel)),
			filepath.Join(a.Cfg.DistDir, filepath.FromSlash(rel)),
		)
	})
	if err != nil {
		return err
	}
	a.Log.Debug("copied", zap.Int("files", len(files)))
	return nil
}
