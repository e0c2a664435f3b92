package assets

import (
	"bytes"
	"context"
	"fmt"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FinaliseHTML copies the rendered pages from tmp into dist, inlines the
// small local scripts and stylesheets they reference and minifies the result.
// It must run after everything it may inline has reached dist.
func (a *Assets) FinaliseHTML(ctx context.Context) error {
	pages, err := Discover(a.Cfg.TmpDir, WithExt(".html"))
	if err != nil {
		return err
	}
	return forEach(ctx, pages, func(_ context.Context, rel string) error {
		src, err := os.ReadFile(filepath.Join(a.Cfg.TmpDir, filepath.FromSlash(rel)))
		if err != nil {
			return err
		}
		out, n, err := a.Inline(rel, src)
		if err != nil {
			return fmt.Errorf("inline %s: %w", rel, err)
		}
		min, err := a.min.Bytes(mimeHTML, out)
		if err != nil {
			return fmt.Errorf("minify %s: %w", rel, err)
		}
		a.Log.Debug("finalised", zap.String("page", rel), zap.Int("inlined", n))
		return writeFile(filepath.Join(a.Cfg.DistDir, filepath.FromSlash(rel)), min)
	})
}

// Inline replaces <script src> and <link rel=stylesheet> references to files
// in dist with their contents when they are no larger than InlineMaxBytes
// (0 means any size). page is the slash path of the document within dist.
// It returns the rewritten document and how many references it inlined.
func (a *Assets) Inline(page string, src []byte) ([]byte, int, error) {
	doc, err := html.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, 0, err
	}

	inlined := 0
	var walk func(n *html.Node) error
	walk = func(n *html.Node) error {
		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			if c.Type == html.ElementNode {
				ok, err := a.inlineNode(page, c)
				if err != nil {
					return err
				}
				if ok {
					inlined++
				} else if err := walk(c); err != nil {
					return err
				}
			}
			c = next
		}
		return nil
	}
	if err := walk(doc); err != nil {
		return nil, 0, err
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), inlined, nil
}

func (a *Assets) inlineNode(page string, n *html.Node) (bool, error) {
	switch n.DataAtom {
	case atom.Script:
		ref := attr(n, "src")
		if ref == "" || n.FirstChild != nil {
			return false, nil
		}
		body, ok, err := a.readLocal(page, ref, "</script")
		if !ok || err != nil {
			return false, err
		}
		removeAttr(n, "src")
		n.AppendChild(&html.Node{Type: html.TextNode, Data: string(body)})
		return true, nil

	case atom.Link:
		if !strings.EqualFold(attr(n, "rel"), "stylesheet") {
			return false, nil
		}
		body, ok, err := a.readLocal(page, attr(n, "href"), "</style")
		if !ok || err != nil {
			return false, err
		}
		style := &html.Node{Type: html.ElementNode, Data: "style", DataAtom: atom.Style}
		if media := attr(n, "media"); media != "" {
			style.Attr = []html.Attribute{{Key: "media", Val: media}}
		}
		style.AppendChild(&html.Node{Type: html.TextNode, Data: string(body)})
		n.Parent.InsertBefore(style, n)
		n.Parent.RemoveChild(n)
		return true, nil
	}
	return false, nil
}

// readLocal loads the dist file ref points at. ok is false for remote refs,
// missing files, files over the size limit and bodies that would close the
// element they are inlined into.
func (a *Assets) readLocal(page, ref, closer string) ([]byte, bool, error) {
	u, err := url.Parse(ref)
	if err != nil || ref == "" || u.Scheme != "" || u.Host != "" || strings.HasPrefix(ref, "//") {
		return nil, false, nil
	}

	var rel string
	if strings.HasPrefix(u.Path, "/") {
		rel = path.Clean(strings.TrimPrefix(u.Path, "/"))
	} else {
		rel = path.Join(path.Dir(page), u.Path)
	}
	if rel == "." || strings.HasPrefix(rel, "../") {
		return nil, false, nil
	}

	p := filepath.Join(a.Cfg.DistDir, filepath.FromSlash(rel))
	st, err := os.Stat(p)
	if os.IsNotExist(err) {
		a.Log.Warn("not inlining missing file", zap.String("page", page), zap.String("ref", ref))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if st.IsDir() || (a.Cfg.InlineMaxBytes > 0 && st.Size() > a.Cfg.InlineMaxBytes) {
		return nil, false, nil
	}

	body, err := os.ReadFile(p)
	if err != nil {
		return nil, false, err
	}
	if strings.Contains(strings.ToLower(string(body)), closer) {
		return nil, false, nil
	}
	return body, true, nil
}

func attr(n *html.Node, key string) string {
	for _, at := range n.Attr {
		if at.Namespace == "" && strings.EqualFold(at.Key, key) {
			return at.Val
		}
	}
	return ""
}

func removeAttr(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, at := range n.Attr {
		if !strings.EqualFold(at.Key, key) {
			kept = append(kept, at)
		}
	}
	n.Attr = kept
}
