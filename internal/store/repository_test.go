package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techblog/internal/assets"
	"techblog/internal/domain/config"
	"techblog/internal/domain/content"
	domainerr "techblog/internal/domain/errors"
	"techblog/internal/logging"
	"techblog/internal/markdown"
)

func writeFile(t *testing.T, dir, name, data string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func newTestRepo(t *testing.T) (*Repository, string) {
	t.Helper()
	root := t.TempDir()
	cfg := config.ContentConfig{
		PostsDir: root,
		PagesDir: filepath.Join(root, "pages"),
	}
	resolver := assets.NewResolver(config.Default().Assets)
	pipeline := markdown.New(resolver, logging.NoOp())
	return New(cfg, pipeline, resolver, logging.NoOp()), root
}

func TestGetPostEndToEnd(t *testing.T) {
	t.Parallel()

	repo, dir := newTestRepo(t)
	writeFile(t, dir, "pwn-101.md", "---\ntitle: Pwn 101\ndate: 2024-03-01\ntags: \"ctf, pwn\"\nfeatured: cover.png\n---\n"+
		"# Title\n\nSome ![x](img.png) text.\n\n## Setup\n\nbody")

	post, err := repo.GetPost(context.Background(), "pwn-101")
	require.NoError(t, err)

	assert.Equal(t, "pwn-101", post.Slug)
	assert.Equal(t, "Pwn 101", post.Title)
	assert.Equal(t, "2024-03-01", post.Date)
	assert.Equal(t, "https://hackmd.io/_uploads/cover.png", post.Featured)
	assert.Equal(t, []string{"ctf", "pwn"}, post.Tags)
	assert.Equal(t, 1, post.Stats.ImageCount)
	assert.Equal(t, 2, post.Stats.HeadingCount)
	assert.Equal(t, []content.TocEntry{{ID: "setup", Text: "Setup", Level: 2}}, post.TOC)
	assert.Contains(t, post.HTML, `src="https://hackmd.io/_uploads/img.png"`)
	assert.Contains(t, post.RawBody, "## Setup")
}

func TestFeaturedMustBeTrusted(t *testing.T) {
	t.Parallel()

	repo, dir := newTestRepo(t)
	writeFile(t, dir, "remote.md", "---\nfeatured: https://example.com/cover.png\n---\nbody")
	writeFile(t, dir, "inline.md", "---\nfeatured: \"data:image/png;base64,AAAA\"\n---\nbody")
	writeFile(t, dir, "hosted.md", "---\nfeatured: https://tmdpc.vn/media/cover.png\n---\nbody")

	ctx := context.Background()
	for slug, want := range map[string]string{
		"remote": "",
		"inline": "",
		"hosted": "https://tmdpc.vn/media/cover.png",
	} {
		post, err := repo.GetPost(ctx, slug)
		require.NoError(t, err)
		assert.Equal(t, want, post.Featured, slug)
	}
}

func TestGetPostNotFound(t *testing.T) {
	t.Parallel()

	repo, dir := newTestRepo(t)
	writeFile(t, dir, "pages/secret.md", "hidden")

	for _, slug := range []string{"missing", "", "../etc/passwd", "pages/secret", `a\b`, ".hidden"} {
		_, err := repo.GetPost(context.Background(), slug)
		assert.True(t, errors.Is(err, domainerr.ErrNotFound), "slug %q", slug)
	}
}

func TestGetPostMalformedFrontMatter(t *testing.T) {
	t.Parallel()

	repo, dir := newTestRepo(t)
	writeFile(t, dir, "broken.md", "---\ntitle: [unclosed\n---\nStill **rendered**.\n")

	post, err := repo.GetPost(context.Background(), "broken")
	require.NoError(t, err)
	assert.Empty(t, post.Title)
	assert.Equal(t, []string{}, post.Tags)
	assert.Contains(t, post.HTML, "<strong>rendered</strong>")
}

func TestListPostsOrdering(t *testing.T) {
	t.Parallel()

	repo, dir := newTestRepo(t)
	writeFile(t, dir, "old.md", "---\ndate: 2023-01-01\n---\n")
	writeFile(t, dir, "new.md", "---\ndate: 2024-05-01\n---\n")
	writeFile(t, dir, "undated.md", "no header")
	writeFile(t, dir, "b-same.md", "---\ndate: 2023-06-01\n---\n")
	writeFile(t, dir, "a-same.md", "---\ndate: 2023-06-01\n---\n")
	writeFile(t, dir, "pages/about.md", "---\ntitle: About\n---\n")
	writeFile(t, dir, "README.txt", "skip")

	posts, err := repo.ListPosts(context.Background())
	require.NoError(t, err)

	slugs := make([]string, 0, len(posts))
	for _, p := range posts {
		slugs = append(slugs, p.Slug)
	}
	assert.Equal(t, []string{"new", "a-same", "b-same", "old", "undated"}, slugs)
}

func TestListPostsMissingDirectory(t *testing.T) {
	t.Parallel()

	resolver := assets.NewResolver(config.Default().Assets)
	repo := New(config.ContentConfig{
		PostsDir: filepath.Join(t.TempDir(), "nope"),
		PagesDir: filepath.Join(t.TempDir(), "nope"),
	}, markdown.New(resolver, nil), resolver, nil)

	posts, err := repo.ListPosts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)

	pages, err := repo.ListPages(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestListPostsCanceled(t *testing.T) {
	t.Parallel()

	repo, _ := newTestRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.ListPosts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTags(t *testing.T) {
	t.Parallel()

	repo, dir := newTestRepo(t)
	writeFile(t, dir, "a.md", "---\ndate: 2024-02-01\ntags: [Go, ctf]\n---\n")
	writeFile(t, dir, "b.md", "---\ndate: 2024-01-01\ntags: [go, Web]\n---\n")
	writeFile(t, dir, "c.md", "---\ndate: 2023-01-01\ntags: pwn\n---\n")

	tags, err := repo.ListTags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []content.TagCount{
		{Name: "ctf", Count: 1},
		{Name: "Go", Count: 2},
		{Name: "pwn", Count: 1},
		{Name: "Web", Count: 1},
	}, tags)

	canonical, posts, err := repo.PostsByTag(context.Background(), "GO")
	require.NoError(t, err)
	assert.Equal(t, "Go", canonical)
	require.Len(t, posts, 2)
	assert.Equal(t, "a", posts[0].Slug)
	assert.Equal(t, "b", posts[1].Slug)

	_, _, err = repo.PostsByTag(context.Background(), "rust")
	assert.True(t, domainerr.IsNotFound(err))

	_, _, err = repo.PostsByTag(context.Background(), " ")
	assert.True(t, domainerr.IsNotFound(err))
}

func TestPages(t *testing.T) {
	t.Parallel()

	repo, dir := newTestRepo(t)
	writeFile(t, dir, "pages/about.md", "---\ntitle: About\nlastUpdated: 2024-06-01\ntimeline:\n"+
		"  - year: \"2023\"\n    place: KMA\n    role: Student\n  - place: nowhere\n---\n"+
		"## Me\n\n<script>alert(1)</script>\n\nHi.\n")
	writeFile(t, dir, "pages/zeta.md", "plain")

	pages, err := repo.ListPages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []content.PageSummary{
		{Slug: "about", Title: "About"},
		{Slug: "zeta"},
	}, pages)

	page, err := repo.GetPage(context.Background(), "about")
	require.NoError(t, err)
	assert.Equal(t, "About", page.Title)
	assert.Equal(t, "2024-06-01", page.LastUpdated)
	assert.Equal(t, []content.TimelineEntry{{Year: "2023", Place: "KMA", Role: "Student"}}, page.Timeline)
	assert.Equal(t, []content.TocEntry{{ID: "me", Text: "Me", Level: 2}}, page.TOC)
	assert.NotContains(t, page.HTML, "<script")

	_, err = repo.GetPage(context.Background(), "missing")
	assert.True(t, domainerr.IsNotFound(err))
}

type failingRenderer struct{}

func (failingRenderer) Render([]byte) (markdown.Result, error) {
	return markdown.Result{}, errors.New("boom")
}

func TestRenderFailureIsNotFound(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "x.md", "body")
	repo := New(config.ContentConfig{PostsDir: dir, PagesDir: dir}, failingRenderer{}, nil, logging.NoOp())

	_, err := repo.GetPost(context.Background(), "x")
	assert.True(t, domainerr.IsNotFound(err))
	_, err = repo.GetPage(context.Background(), "x")
	assert.True(t, domainerr.IsNotFound(err))
}

func TestSortPostsAndCountTags(t *testing.T) {
	t.Parallel()

	posts := []content.PostSummary{
		{Slug: "b", Date: ""},
		{Slug: "a", Date: ""},
		{Slug: "c", Date: "2024-01-01", Tags: []string{"X", "x"}},
	}
	SortPosts(posts)
	assert.Equal(t, "c", posts[0].Slug)
	assert.Equal(t, "a", posts[1].Slug)
	assert.Equal(t, "b", posts[2].Slug)

	assert.Equal(t, []content.TagCount{{Name: "X", Count: 1}}, CountTags(posts))
	assert.Equal(t, []content.TagCount{}, CountTags(nil))
}
