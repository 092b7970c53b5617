package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techblog/internal/app"
	"techblog/internal/assets"
	"techblog/internal/domain/config"
	"techblog/internal/logging"
	"techblog/internal/markdown"
	"techblog/internal/render"
	"techblog/internal/store"
)

func write(t *testing.T, dir, name, data string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func TestRunExportsEveryRoute(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "public")
	write(t, src, "one.md", "---\ntitle: One\ndate: 2024-02-01\ntags: [Go, ../evil]\n---\n## Hi\n")
	write(t, src, "two.md", "---\ntitle: Two\ndate: 2024-01-01\ntags: go\n---\nbody")
	write(t, src, "pages/about.md", "---\ntitle: About\n---\nme")

	cfg := config.Default()
	cfg.Site.PostsPerPage = 1
	cfg.Content = config.ContentConfig{PostsDir: src, PagesDir: filepath.Join(src, "pages")}

	resolver := assets.NewResolver(cfg.Assets)
	repo := store.New(cfg.Content, markdown.New(resolver, nil), resolver, nil)
	tpl, err := render.NewTemplateRenderer()
	require.NoError(t, err)

	b := &Builder{
		Composer:  app.NewComposer(repo, app.ComposerOptions{Site: cfg.Site}),
		Renderer:  tpl,
		Routes:    &app.RouteBuilder{Source: repo, PerPage: cfg.Site.PostsPerPage},
		PublicDir: out,
		Log:       logging.NoOp(),
	}
	res, err := b.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Posts)
	assert.Equal(t, 1, res.Tags)
	assert.Equal(t, 7, res.Pages)

	for _, rel := range []string{
		"index.html",
		"page/2/index.html",
		"posts/one/index.html",
		"posts/two/index.html",
		"tags/Go/index.html",
		"about/index.html",
		"404.html",
		"static/site.css",
	} {
		assert.FileExists(t, filepath.Join(out, rel))
	}
	assert.NoFileExists(t, filepath.Join(filepath.Dir(out), "evil", "index.html"))

	home, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(home), `href="/posts/one"`)
	assert.NotContains(t, string(home), `href="/posts/two"`)

	tag, err := os.ReadFile(filepath.Join(out, "tags", "Go", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(tag), "2 posts")
}

func TestWriteFileStaysInsideRoot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, writeFile(root, "a/b/index.html", []byte("ok")))
	assert.FileExists(t, filepath.Join(root, "a", "b", "index.html"))

	assert.Error(t, writeFile(root, "../escape.html", []byte("no")))
}
