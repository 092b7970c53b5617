// Package store reads posts and pages from disk and assembles render-ready
// documents. Nothing is cached: every call re-reads the content directories.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"techblog/internal/domain/config"
	"techblog/internal/domain/content"
	domainerr "techblog/internal/domain/errors"
	"techblog/internal/ingest"
	"techblog/internal/logging"
	"techblog/internal/markdown"
)

type Renderer interface {
	Render(src []byte) (markdown.Result, error)
}

type AssetResolver interface {
	Resolve(ref string) string
	Trusted(ref string) bool
}

type Repository struct {
	postsDir string
	pagesDir string
	renderer Renderer
	resolver AssetResolver
	log      logging.Logger
}

func New(cfg config.ContentConfig, renderer Renderer, resolver AssetResolver, logger logging.Logger) *Repository {
	return &Repository{
		postsDir: cfg.PostsDir,
		pagesDir: cfg.PagesDir,
		renderer: renderer,
		resolver: resolver,
		log:      logging.OrNoOp(logger),
	}
}

// ListPosts returns every post newest first. Posts without a date sort last,
// ties are broken by slug.
func (r *Repository) ListPosts(ctx context.Context) ([]content.PostSummary, error) {
	sources, err := r.ingest(ctx, r.postsDir)
	if err != nil {
		return nil, err
	}

	out := make([]content.PostSummary, 0, len(sources))
	for _, src := range sources {
		out = append(out, r.summarize(src))
	}
	SortPosts(out)
	return out, nil
}

func (r *Repository) GetPost(ctx context.Context, slug string) (*content.Post, error) {
	src, err := r.load(ctx, r.postsDir, slug)
	if err != nil {
		return nil, err
	}

	res, err := r.renderer.Render(src.Body)
	if err != nil {
		r.log.Warn("store: render failed", "slug", slug, "error", err)
		return nil, fmt.Errorf("post %q: %w", slug, domainerr.ErrNotFound)
	}

	return &content.Post{
		PostSummary: r.summarize(src),
		RawBody:     string(src.Body),
		HTML:        res.HTML,
		TOC:         res.TOC,
		Stats:       ingest.CalculateStats(string(src.Body)),
	}, nil
}

// ListPages returns the static pages ordered by slug.
func (r *Repository) ListPages(ctx context.Context) ([]content.PageSummary, error) {
	sources, err := r.ingest(ctx, r.pagesDir)
	if err != nil {
		return nil, err
	}

	out := make([]content.PageSummary, 0, len(sources))
	for _, src := range sources {
		out = append(out, content.PageSummary{
			Slug:  src.Slug,
			Title: ingest.String(src.Meta, "title"),
		})
	}
	return out, nil
}

func (r *Repository) GetPage(ctx context.Context, slug string) (*content.Page, error) {
	src, err := r.load(ctx, r.pagesDir, slug)
	if err != nil {
		return nil, err
	}

	res, err := r.renderer.Render(src.Body)
	if err != nil {
		r.log.Warn("store: render failed", "page", slug, "error", err)
		return nil, fmt.Errorf("page %q: %w", slug, domainerr.ErrNotFound)
	}

	return &content.Page{
		PageSummary: content.PageSummary{
			Slug:  slug,
			Title: ingest.String(src.Meta, "title"),
		},
		LastUpdated: ingest.String(src.Meta, "lastUpdated"),
		RawBody:     string(src.Body),
		HTML:        res.HTML,
		TOC:         res.TOC,
		Timeline:    content.NormalizeTimeline(src.Meta["timeline"]),
	}, nil
}

// ListTags counts posts per tag. Tags differing only in case are merged under
// the casing of the newest post that uses them.
func (r *Repository) ListTags(ctx context.Context) ([]content.TagCount, error) {
	posts, err := r.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	return CountTags(posts), nil
}

// PostsByTag matches tags case-insensitively and returns the canonical
// spelling with the matching posts. An unknown tag is not found.
func (r *Repository) PostsByTag(ctx context.Context, tag string) (string, []content.PostSummary, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "", nil, fmt.Errorf("tag: %w", domainerr.ErrNotFound)
	}

	posts, err := r.ListPosts(ctx)
	if err != nil {
		return "", nil, err
	}

	canonical := ""
	var out []content.PostSummary
	for _, p := range posts {
		for _, t := range p.Tags {
			if strings.EqualFold(t, tag) {
				if canonical == "" {
					canonical = t
				}
				out = append(out, p)
				break
			}
		}
	}
	if len(out) == 0 {
		return "", nil, fmt.Errorf("tag %q: %w", tag, domainerr.ErrNotFound)
	}
	return canonical, out, nil
}

func (r *Repository) ingest(ctx context.Context, dir string) ([]ingest.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sources, warns, err := ingest.Ingest(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.log.Debug("store: content directory missing", "dir", dir)
			return nil, nil
		}
		return nil, fmt.Errorf("store: read %s: %w", dir, err)
	}
	for _, w := range warns {
		r.log.Warn("store: "+w.Msg, "path", w.Path)
	}
	return sources, nil
}

// load maps every failure to ErrNotFound so callers render a 404 instead of
// leaking read errors.
func (r *Repository) load(ctx context.Context, dir, slug string) (ingest.Source, error) {
	if err := ctx.Err(); err != nil {
		return ingest.Source{}, err
	}

	path, ok := ingest.SourcePath(dir, slug)
	if !ok {
		return ingest.Source{}, fmt.Errorf("invalid slug %q: %w", slug, domainerr.ErrNotFound)
	}

	src, warns, err := ingest.Load(ingest.SourceFile{Path: path, Slug: slug})
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			r.log.Warn("store: read failed", "path", path, "error", err)
		}
		return ingest.Source{}, fmt.Errorf("%s: %w", slug, domainerr.ErrNotFound)
	}
	for _, w := range warns {
		r.log.Warn("store: "+w.Msg, "path", w.Path)
	}
	return src, nil
}

func (r *Repository) summarize(src ingest.Source) content.PostSummary {
	return content.PostSummary{
		Slug:     src.Slug,
		Title:    ingest.String(src.Meta, "title"),
		Date:     ingest.String(src.Meta, "date"),
		Excerpt:  ingest.String(src.Meta, "excerpt"),
		Featured: r.featured(src.Meta),
		Tags:     content.NormalizeTags(src.Meta["tags"]),
	}
}

func (r *Repository) featured(meta map[string]any) string {
	ref := ingest.String(meta, "featured")
	if ref == "" || r.resolver == nil {
		return ref
	}
	resolved := r.resolver.Resolve(ref)
	if !r.resolver.Trusted(resolved) {
		r.log.Warn("store: featured image dropped, host not trusted", "featured", ref)
		return ""
	}
	return resolved
}

// SortPosts orders posts by date descending. Dates are compared as strings,
// which is correct for the ISO-8601 dates content uses.
func SortPosts(posts []content.PostSummary) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		switch {
		case a.Date == b.Date:
			return a.Slug < b.Slug
		case a.Date == "":
			return false
		case b.Date == "":
			return true
		default:
			return a.Date > b.Date
		}
	})
}

// CountTags merges tags case-insensitively, keeping the first spelling seen,
// and orders the result by name ignoring case.
func CountTags(posts []content.PostSummary) []content.TagCount {
	index := map[string]int{}
	var out []content.TagCount
	for _, p := range posts {
		counted := map[string]bool{}
		for _, t := range p.Tags {
			key := strings.ToLower(t)
			if counted[key] {
				continue
			}
			counted[key] = true
			if i, ok := index[key]; ok {
				out[i].Count++
				continue
			}
			index[key] = len(out)
			out = append(out, content.TagCount{Name: t, Count: 1})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].Name < out[j].Name
	})
	if out == nil {
		out = []content.TagCount{}
	}
	return out
}
