package assets

import (
	"context"
	"fmt"
	"github.com/evanw/esbuild/pkg/api"
	"go.uber.org/zap"
	"honours/internal/domain/build"
	"honours/internal/domain/config"
	"path"
	"path/filepath"
	"strings"
)

var engineNames = map[string]api.EngineName{
	"chrome":  api.EngineChrome,
	"edge":    api.EngineEdge,
	"firefox": api.EngineFirefox,
	"ie":      api.EngineIE,
	"ios":     api.EngineIOS,
	"opera":   api.EngineOpera,
	"safari":  api.EngineSafari,
}

// Engines converts configured browser targets to esbuild engines.
func Engines(targets []config.BrowserTarget) ([]api.Engine, error) {
	out := make([]api.Engine, 0, len(targets))
	for _, t := range targets {
		name, ok := engineNames[strings.ToLower(t.Engine)]
		if !ok {
			return nil, fmt.Errorf("unknown browser engine %q", t.Engine)
		}
		out = append(out, api.Engine{Name: name, Version: t.Version})
	}
	return out, nil
}

// StyleEntries lists the stylesheets under client that are compiled on their
// own. Files whose name starts with "_" are partials, pulled in by @import.
func StyleEntries(clientDir string) ([]string, error) {
	return Discover(clientDir, func(rel string) bool {
		return strings.EqualFold(path.Ext(rel), ".css") && !strings.HasPrefix(path.Base(rel), "_")
	})
}

// Styles compiles every stylesheet entry into tmp, resolving @import and
// adding the vendor prefixes the browser targets need.
func (a *Assets) Styles(ctx context.Context) error {
	entries, err := StyleEntries(a.Cfg.ClientDir)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	engines, err := Engines(a.Cfg.BrowserTargets)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	points := make([]string, len(entries))
	for i, e := range entries {
		points[i] = filepath.Join(a.Cfg.ClientDir, filepath.FromSlash(e))
	}
	opts := api.BuildOptions{
		EntryPoints: points,
		Outbase:     a.Cfg.ClientDir,
		Outdir:      a.Cfg.TmpDir,
		Bundle:      true,
		Write:       true,
		Engines:     engines,
		LogLevel:    api.LogLevelSilent,
		// images and fonts stay where they are; copy-misc and compress-images ship them
		External: []string{"*.png", "*.jpg", "*.jpeg", "*.gif", "*.svg", "*.woff", "*.woff2"},
	}
	if a.Mode == build.Development {
		opts.Sourcemap = api.SourceMapLinked
	}

	res := api.Build(opts)
	if len(res.Errors) > 0 {
		return &CompileError{
			Step:     "styles",
			Messages: api.FormatMessages(res.Errors, api.FormatMessagesOptions{Kind: api.ErrorMessage}),
		}
	}
	a.Log.Debug("styles compiled", zap.Strings("entries", entries))
	return nil
}
