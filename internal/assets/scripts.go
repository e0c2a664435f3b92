package assets

import (
	"context"
	"fmt"
	"github.com/evanw/esbuild/pkg/api"
	"go.uber.org/zap"
	"honours/internal/domain/build"
	"path/filepath"
	"strings"
)

// BundleName maps a script entry to its output name: scripts/main.js -> scripts/main.bundle.js.
func BundleName(entry string) string {
	return strings.TrimSuffix(entry, filepath.Ext(entry)) + ".bundle.js"
}

// Scripts bundles every entry into tmp and copies the standalone scripts
// next to them. Development builds get linked source maps.
func (a *Assets) Scripts(ctx context.Context) error {
	for _, entry := range a.Cfg.ScriptEntries {
		if err := ctx.Err(); err != nil {
			return err
		}
		out := filepath.Join(a.Cfg.TmpDir, filepath.FromSlash(BundleName(entry)))
		opts := api.BuildOptions{
			EntryPoints: []string{filepath.Join(a.Cfg.ClientDir, filepath.FromSlash(entry))},
			Outfile:     out,
			Bundle:      true,
			Write:       true,
			Platform:    api.PlatformBrowser,
			Format:      api.FormatIIFE,
			Target:      api.ES2015,
			LogLevel:    api.LogLevelSilent,
		}
		if a.Mode == build.Development {
			opts.Sourcemap = api.SourceMapLinked
		}

		res := api.Build(opts)
		if len(res.Errors) > 0 {
			return &CompileError{
				Step: "bundle " + entry,
				Messages: api.FormatMessages(res.Errors, api.FormatMessagesOptions{
					Kind: api.ErrorMessage,
				}),
			}
		}
		for _, w := range res.Warnings {
			a.Log.Warn("esbuild", zap.String("entry", entry), zap.String("msg", w.Text))
		}
		a.Log.Debug("bundled", zap.String("entry", entry), zap.String("out", out))
	}

	for _, s := range a.Cfg.OtherScripts {
		src := filepath.Join(a.Cfg.ClientDir, filepath.FromSlash(s))
		dst := filepath.Join(a.Cfg.TmpDir, filepath.FromSlash(s))
		if err := copyFile(src, dst); err != nil {
			return fmt.Errorf("copy %s: %w", s, err)
		}
	}
	return nil
}
