// Package fetch downloads the published spreadsheet and reshapes it into the
// document the page templates are rendered from.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"honours/internal/domain/config"
	"honours/internal/domain/sheet"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

var ErrMissingKey = errors.New("spreadsheet key is not set")

type Fetcher struct {
	Client      *http.Client
	URLTemplate string
	Sheets      string
	Key         string
	Log         *zap.Logger
}

func New(cfg config.DataConfig, log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{
		Client:      http.DefaultClient,
		URLTemplate: cfg.URLTemplate,
		Sheets:      cfg.Sheets,
		Key:         cfg.SpreadsheetKey,
		Log:         log.Named("fetch"),
	}
}

// URL expands the endpoint template. It fails without a spreadsheet key.
func (f *Fetcher) URL() (string, error) {
	key := strings.TrimSpace(f.Key)
	if key == "" {
		return "", fmt.Errorf("%w (set %s)", ErrMissingKey, config.EnvSpreadsheetKey)
	}
	tmpl := f.URLTemplate
	if tmpl == "" {
		tmpl = config.DefaultURLTemplate
	}
	sheets := f.Sheets
	if sheets == "" {
		sheets = config.DefaultSheets
	}
	return strings.NewReplacer(
		"{key}", url.PathEscape(key),
		"{sheets}", sheets,
	).Replace(tmpl), nil
}

// Fetch performs one GET against the endpoint. There are no retries.
func (f *Fetcher) Fetch(ctx context.Context) (sheet.Payload, error) {
	var p sheet.Payload

	u, err := f.URL()
	if err != nil {
		return p, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return p, err
	}
	req.Header.Set("Accept", "application/json")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return p, fmt.Errorf("fetch spreadsheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return p, fmt.Errorf("fetch spreadsheet: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return p, fmt.Errorf("decode spreadsheet: %w", err)
	}
	f.logger().Debug("fetched",
		zap.Int("orders", len(p.Orders)),
		zap.Int("ranks", len(p.Ranks)),
		zap.Int("recipients", len(p.Recipients)),
		zap.Int("profiles", len(p.Profiles)),
	)
	return p, nil
}

// Download fetches, reshapes and writes the document to path.
func (f *Fetcher) Download(ctx context.Context, path string) (sheet.Document, error) {
	p, err := f.Fetch(ctx)
	if err != nil {
		return sheet.Document{}, err
	}
	doc := Reshape(p)
	if err := WriteDocument(path, doc); err != nil {
		return sheet.Document{}, err
	}
	f.logger().Info("data written", zap.String("path", path), zap.Int("orders", len(doc.Orders)))
	return doc, nil
}

func (f *Fetcher) logger() *zap.Logger {
	if f.Log == nil {
		return zap.NewNop()
	}
	return f.Log
}

// WriteDocument writes doc as 2-space indented JSON. The file is replaced
// atomically so readers never see a partial document.
func WriteDocument(path string, doc sheet.Document) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
