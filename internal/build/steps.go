package build

import (
	"context"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"honours/internal/assets"
	buildmode "honours/internal/domain/build"
	"honours/internal/domain/config"
	"honours/internal/domain/sheet"
	"honours/internal/fetch"
	"honours/internal/render"
	"os"
)

// Downloader produces the data file the templates read.
type Downloader interface {
	Download(ctx context.Context, path string) (sheet.Document, error)
}

// Steps are the individual build tasks, shared by the build and serve
// workflows. Compile failures go through Mode.HandleStepError; data and
// filesystem failures are always returned.
type Steps struct {
	Cfg      config.Config
	Mode     buildmode.Mode
	Assets   *assets.Assets
	Fetcher  Downloader
	Reporter buildmode.Reporter
	Log      *zap.Logger

	// Offline reuses the existing data file instead of downloading it.
	Offline bool
}

func NewSteps(cfg config.Config, mode buildmode.Mode, log *zap.Logger) *Steps {
	if log == nil {
		log = zap.NewNop()
	}
	return &Steps{
		Cfg:     cfg,
		Mode:    mode,
		Assets:  assets.New(cfg.Build, mode, log),
		Fetcher: fetch.New(cfg.Data, log),
		Log:     log,
	}
}

func (s *Steps) DownloadData(ctx context.Context) error {
	if s.Offline {
		if _, err := os.Stat(s.Cfg.Build.DataFile); err != nil {
			return fmt.Errorf("offline build needs %s: %w", s.Cfg.Build.DataFile, err)
		}
		s.Log.Info("using existing data", zap.String("path", s.Cfg.Build.DataFile))
		return nil
	}
	if _, err := s.Fetcher.Download(ctx, s.Cfg.Build.DataFile); err != nil {
		return fmt.Errorf("download data: %w", err)
	}
	return nil
}

func (s *Steps) Scripts(ctx context.Context) error {
	return s.handle(ctx, "Error building JavaScript", s.Assets.Scripts(ctx))
}

func (s *Steps) Styles(ctx context.Context) error {
	return s.handle(ctx, "Error building styles", s.Assets.Styles(ctx))
}

func (s *Steps) Templates(ctx context.Context) error {
	_, err := render.Templates(ctx, s.Cfg, s.Mode, s.Log)
	return s.handle(ctx, "Error rendering templates", err)
}

func (s *Steps) handle(ctx context.Context, headline string, err error) error {
	if err == nil {
		return nil
	}
	// cancellation is not a build error
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return err
	}
	if s.Mode == buildmode.Development {
		s.Log.Error(headline, zap.Error(err))
	}
	return s.Mode.HandleStepError(headline, err, s.Reporter)
}
