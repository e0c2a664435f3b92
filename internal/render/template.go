package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

const mainPageTemplate = "main-page.tmpl"

// RequiredTemplates are the files NewTemplateRenderer expects in the client dir.
var RequiredTemplates = []string{"top.tmpl", "bottom.tmpl", mainPageTemplate}

type TemplateRenderer struct {
	tpl *template.Template
}

// NewTemplateRenderer parses every *.tmpl file in dir. top.tmpl and
// bottom.tmpl are available to the page as {{template "top" .}} and
// {{template "bottom" .}}.
func NewTemplateRenderer(dir string) (*TemplateRenderer, error) {
	if err := CheckTemplates(dir); err != nil {
		return nil, err
	}
	md := NewMarkdownRenderer()
	pattern := filepath.Join(dir, "*.tmpl")
	tpl, err := template.New("").Funcs(templateFuncs(md)).ParseGlob(pattern)
	if err != nil {
		return nil, err
	}
	return &TemplateRenderer{tpl: tpl}, nil
}

func templateFuncs(md *MarkdownRenderer) template.FuncMap {
	return template.FuncMap{
		"markdown": md.Inline,
		"field": func(v interface{}, key string) string {
			switch x := v.(type) {
			case nil:
				return ""
			case interface{ Get(string) string }:
				return x.Get(key)
			case map[string]string:
				return x[key]
			default:
				return ""
			}
		},
		"lower": strings.ToLower,
		"slug":  Slug,
		"add":   func(a, b int) int { return a + b },
	}
}

func (r *TemplateRenderer) RenderMainPage(ctx context.Context, page MainPage) ([]byte, error) {
	return r.exec(mainPageTemplate, page)
}

func (r *TemplateRenderer) exec(name string, data interface{}) ([]byte, error) {
	t := r.tpl.Lookup(name)
	if t == nil {
		return nil, fmt.Errorf("template %s not found", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func CheckTemplates(dir string) error {
	for _, name := range RequiredTemplates {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("missing template: %s", name)
		}
	}
	return nil
}

// Slug lower-cases s and joins its letter and digit runs with dashes.
func Slug(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, "-")
}
