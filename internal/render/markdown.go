package render

import (
	"bytes"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"html/template"
	"strings"
)

// MarkdownRenderer turns editorial copy from the spreadsheet into HTML.
type MarkdownRenderer struct {
	md goldmark.Markdown
}

func NewMarkdownRenderer() *MarkdownRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Linkify,
			extension.Strikethrough,
			extension.Typographer,
		),
	)
	return &MarkdownRenderer{md: md}
}

func (r *MarkdownRenderer) Render(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Inline renders a single line of copy without the wrapping paragraph.
func (r *MarkdownRenderer) Inline(src string) (template.HTML, error) {
	out, err := r.Render([]byte(src))
	if err != nil {
		return "", err
	}
	s := strings.TrimSpace(string(out))
	if strings.Count(s, "<p>") == 1 && strings.HasPrefix(s, "<p>") && strings.HasSuffix(s, "</p>") {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "<p>"), "</p>")
	}
	return template.HTML(s), nil
}
