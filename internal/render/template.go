package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strings"
	"time"

	"techblog/internal/domain/config"
	"techblog/internal/domain/content"
	"techblog/internal/domain/site"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// StaticFS holds the theme assets served below /static/.
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

var requiredTemplates = []string{
	"home.tmpl",
	"post.tmpl",
	"tag.tmpl",
	"page.tmpl",
	"404.tmpl",
}

type TemplateRenderer struct {
	tpl *template.Template
}

func NewTemplateRenderer() (*TemplateRenderer, error) {
	tpl, err := template.New("").Funcs(templateFuncs()).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	if err := checkTemplates(tpl); err != nil {
		return nil, err
	}
	return &TemplateRenderer{tpl: tpl}, nil
}

type cardView struct {
	Post   content.PostSummary
	Labels config.Labels
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"date":      FormatDate,
		"nowYear":   func() int { return time.Now().Year() },
		"postURL":   site.PostURL,
		"tagURL":    site.TagURL,
		"pageURL":   site.HomePageURL,
		"staticURL": site.StaticURL,
		"card": func(p content.PostSummary, l config.Labels) cardView {
			return cardView{Post: p, Labels: l}
		},
		"plural": func(n int, one, many string) string {
			if n == 1 {
				return one
			}
			return many
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	}
}

// FormatDate renders ISO dates as "January 2, 2006". Anything else is shown
// as written.
func FormatDate(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.DateOnly, time.RFC3339, time.DateTime} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("January 2, 2006")
		}
	}
	return raw
}

func (r *TemplateRenderer) RenderHome(ctx context.Context, page HomePage) ([]byte, error) {
	return r.exec("home.tmpl", page)
}

func (r *TemplateRenderer) RenderPost(ctx context.Context, page PostPage) ([]byte, error) {
	return r.exec("post.tmpl", page)
}

func (r *TemplateRenderer) RenderTag(ctx context.Context, page TagPage) ([]byte, error) {
	return r.exec("tag.tmpl", page)
}

func (r *TemplateRenderer) RenderPage(ctx context.Context, page StaticPage) ([]byte, error) {
	return r.exec("page.tmpl", page)
}

func (r *TemplateRenderer) RenderNotFound(ctx context.Context, page NotFoundPage) ([]byte, error) {
	return r.exec("404.tmpl", page)
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

func checkTemplates(tpl *template.Template) error {
	for _, name := range requiredTemplates {
		if tpl.Lookup(name) == nil {
			return fmt.Errorf("missing template: %s", name)
		}
	}
	return nil
}
