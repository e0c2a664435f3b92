// Package assets implements the file-processing build steps: bundling
// scripts and styles into the tmp dir, then minifying, compressing and
// copying into dist, and finally inlining small assets into the HTML.
package assets

import (
	"context"
	"github.com/tdewolff/minify/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"honours/internal/domain/build"
	"honours/internal/domain/config"
	"runtime"
	"strings"
)

type Assets struct {
	Cfg  config.BuildConfig
	Mode build.Mode
	Log  *zap.Logger

	min *minify.M
}

func New(cfg config.BuildConfig, mode build.Mode, log *zap.Logger) *Assets {
	if log == nil {
		log = zap.NewNop()
	}
	return &Assets{
		Cfg:  cfg,
		Mode: mode,
		Log:  log.Named("assets"),
		min:  newMinifier(),
	}
}

// CompileError carries the diagnostics of a failed bundle.
type CompileError struct {
	Step     string
	Messages []string
}

func (e *CompileError) Error() string {
	var b strings.Builder
	b.WriteString(e.Step)
	b.WriteString(" failed")
	for _, m := range e.Messages {
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(m, "\n"))
	}
	return b.String()
}

// forEach runs fn over files with at most GOMAXPROCS in flight.
func forEach(ctx context.Context, files []string, fn func(ctx context.Context, rel string) error) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for _, rel := range files {
		if ctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			return fn(ctx, rel)
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
