package render

import (
	"context"
	"encoding/json"
	"fmt"
	"go.uber.org/zap"
	"honours/internal/domain/build"
	"honours/internal/domain/config"
	"honours/internal/domain/sheet"
	"honours/internal/nav"
	"os"
	"path/filepath"
)

// LoadDocument reads the data file written by the fetcher.
func LoadDocument(path string) (sheet.Document, error) {
	var doc sheet.Document
	b, err := os.ReadFile(path)
	if err != nil {
		return doc, err
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return doc, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// Templates renders the main page from the data file into <tmp>/index.html
// and returns the path written.
func Templates(ctx context.Context, cfg config.Config, mode build.Mode, log *zap.Logger) (string, error) {
	r, err := NewTemplateRenderer(cfg.Build.ClientDir)
	if err != nil {
		return "", err
	}
	doc, err := LoadDocument(cfg.Build.DataFile)
	if err != nil {
		return "", err
	}

	page := MainPage{
		Site:         cfg.Site,
		Options:      doc.Options,
		Profiles:     doc.Profiles,
		Orders:       doc.Orders,
		Nav:          nav.Links(doc.Orders),
		ScrollOffset: nav.HeaderHeight,
		TrackingEnv:  mode.TrackingEnv(),
		Generated:    cfg.Build.Now,
	}
	out, err := r.RenderMainPage(ctx, page)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", mainPageTemplate, err)
	}

	if err := os.MkdirAll(cfg.Build.TmpDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(cfg.Build.TmpDir, "index.html")
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return "", err
	}
	if log != nil {
		log.Debug("rendered", zap.String("path", path), zap.Int("bytes", len(out)))
	}
	return path, nil
}
