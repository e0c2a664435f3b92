// Package build runs the production build of the site into dist.
package build

import (
	"context"
	"fmt"
	"go.uber.org/zap"
	buildmode "honours/internal/domain/build"
	"honours/internal/domain/config"
	"honours/internal/manifest"
	"honours/internal/pipeline"
	"strings"
	"time"
)

type Builder struct {
	Cfg config.Config
	Log *zap.Logger

	// Fetcher overrides the spreadsheet download, mostly for tests.
	Fetcher Downloader
	Offline bool
}

type Result struct {
	Files int
	Diff  manifest.Diff
	Took  time.Duration
}

func (b *Builder) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	log := b.Log
	if log == nil {
		log = zap.NewNop()
	}

	steps := NewSteps(b.Cfg, buildmode.Production, log)
	steps.Offline = b.Offline
	if b.Fetcher != nil {
		steps.Fetcher = b.Fetcher
	}

	g, err := BuildGraph(steps)
	if err != nil {
		return nil, err
	}
	if err := pipeline.Run(ctx, g, log.Named("build")); err != nil {
		return nil, err
	}

	files, err := manifest.Scan(b.Cfg.Build.DistDir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", b.Cfg.Build.DistDir, err)
	}

	st, err := manifest.Open(manifest.OpenOptions{Path: b.Cfg.Build.ManifestPath})
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer st.Close()

	diff, err := st.Record(files, b.Cfg.Build.Now)
	if err != nil {
		return nil, fmt.Errorf("failed to record manifest: %w", err)
	}

	res := &Result{Files: len(files), Diff: diff, Took: time.Since(start)}
	log.Info("build complete",
		zap.Int("files", res.Files),
		zap.Int("added", len(diff.Added)),
		zap.Int("changed", len(diff.Changed)),
		zap.Int("removed", len(diff.Removed)),
		zap.Duration("took", res.Took),
	)
	return res, nil
}

// RunTask runs a single named step in the given mode, outside any graph.
func RunTask(ctx context.Context, steps *Steps, name string) error {
	run, ok := taskFuncs(steps)[name]
	if !ok {
		return fmt.Errorf("unknown task %q (want one of %s)", name, strings.Join(TaskNames(), ", "))
	}
	return run(ctx)
}

func taskFuncs(steps *Steps) map[string]pipeline.RunFunc {
	return map[string]pipeline.RunFunc{
		TaskClean:          steps.Assets.Clean,
		TaskDownloadData:   steps.DownloadData,
		TaskScripts:        steps.Scripts,
		TaskStyles:         steps.Styles,
		TaskTemplates:      steps.Templates,
		TaskMinifyJS:       steps.Assets.MinifyJS,
		TaskMinifyCSS:      steps.Assets.MinifyCSS,
		TaskCompressImages: steps.Assets.CompressImages,
		TaskCopyMisc:       steps.Assets.CopyMisc,
		TaskFinaliseHTML:   steps.Assets.FinaliseHTML,
	}
}
