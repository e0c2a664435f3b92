package assets

import (
	"context"
	"fmt"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/svg"
	"go.uber.org/zap"
	"os"
	"path/filepath"
	"regexp"
)

const (
	mimeCSS  = "text/css"
	mimeHTML = "text/html"
	mimeJS   = "application/javascript"
	mimeSVG  = "image/svg+xml"
)

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc(mimeCSS, css.Minify)
	m.AddFunc(mimeSVG, svg.Minify)
	m.AddFuncRegexp(regexp.MustCompile(`^(application|text)/(x-)?(java|ecma)script$`), js.Minify)
	m.Add(mimeHTML, &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	return m
}

// MinifyJS minifies every script in tmp into dist.
func (a *Assets) MinifyJS(ctx context.Context) error {
	return a.minifyTree(ctx, mimeJS, ".js")
}

// MinifyCSS minifies every stylesheet in tmp into dist.
func (a *Assets) MinifyCSS(ctx context.Context) error {
	return a.minifyTree(ctx, mimeCSS, ".css")
}

func (a *Assets) minifyTree(ctx context.Context, mime, ext string) error {
	files, err := Discover(a.Cfg.TmpDir, WithExt(ext))
	if err != nil {
		return err
	}
	err = forEach(ctx, files, func(_ context.Context, rel string) error {
		src, err := os.ReadFile(filepath.Join(a.Cfg.TmpDir, filepath.FromSlash(rel)))
		if err != nil {
			return err
		}
		out, err := a.min.Bytes(mime, src)
		if err != nil {
			return fmt.Errorf("minify %s: %w", rel, err)
		}
		return writeFile(filepath.Join(a.Cfg.DistDir, filepath.FromSlash(rel)), out)
	})
	if err != nil {
		return err
	}
	a.Log.Debug("minified", zap.String("ext", ext), zap.Int("files", len(files)))
	return nil
}
