package assets

import (
	"bytes"
	"context"
	"fmt"
	"go.uber.org/zap"
	"image/png"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var imageExts = []string{".jpg", ".jpeg", ".png", ".gif", ".svg"}

// CompressImages copies every image under client into dist. PNGs are
// re-encoded at best compression and SVGs minified; the smaller of the
// original and the result is kept.
func (a *Assets) CompressImages(ctx context.Context) error {
	files, err := Discover(a.Cfg.ClientDir, WithExt(imageExts...))
	if err != nil {
		return err
	}

	var saved int64
	sizes := make(chan int64, len(files))
	err = forEach(ctx, files, func(_ context.Context, rel string) error {
		src, err := os.ReadFile(filepath.Join(a.Cfg.ClientDir, filepath.FromSlash(rel)))
		if err != nil {
			return err
		}
		out, err := a.compress(rel, src)
		if err != nil {
			return fmt.Errorf("compress %s: %w", rel, err)
		}
		sizes <- int64(len(src) - len(out))
		return writeFile(filepath.Join(a.Cfg.DistDir, filepath.FromSlash(rel)), out)
	})
	close(sizes)
	for n := range sizes {
		saved += n
	}
	if err != nil {
		return err
	}
	a.Log.Debug("images", zap.Int("files", len(files)), zap.Int64("saved_bytes", saved))
	return nil
}

func (a *Assets) compress(rel string, src []byte) ([]byte, error) {
	var out []byte
	switch strings.ToLower(path.Ext(rel)) {
	case ".png":
		img, err := png.Decode(bytes.NewReader(src))
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, err
		}
		out = buf.Bytes()
	case ".svg":
		b, err := a.min.Bytes(mimeSVG, src)
		if err != nil {
			return nil, err
		}
		out = b
	default:
		return src, nil
	}
	if len(out) >= len(src) {
		return src, nil
	}
	return out, nil
}
