package app

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"techblog/internal/domain/config"
	"techblog/internal/domain/content"
	domainerr "techblog/internal/domain/errors"
	"techblog/internal/render"
)

// ContentSource is the read side of the document repository.
type ContentSource interface {
	ListPosts(ctx context.Context) ([]content.PostSummary, error)
	GetPost(ctx context.Context, slug string) (*content.Post, error)
	ListPages(ctx context.Context) ([]content.PageSummary, error)
	GetPage(ctx context.Context, slug string) (*content.Page, error)
	ListTags(ctx context.Context) ([]content.TagCount, error)
	PostsByTag(ctx context.Context, tag string) (string, []content.PostSummary, error)
}

type ComposerOptions struct {
	Site       config.SiteConfig
	SiteCommit string
	OpenSource bool
	LiveReload bool
}

// Composer turns repository documents into template view models. It holds no
// document state; every call reads through the source.
type Composer struct {
	src  ContentSource
	opts ComposerOptions
}

func NewComposer(src ContentSource, opts ComposerOptions) *Composer {
	return &Composer{src: src, opts: opts}
}

func (c *Composer) layout(title string) render.Layout {
	return render.Layout{
		Site:       c.opts.Site,
		Title:      title,
		SiteCommit: c.opts.SiteCommit,
		OpenSource: c.opts.OpenSource,
		LiveReload: c.opts.LiveReload,
	}
}

func (c *Composer) Home(ctx context.Context, page int) (render.HomePage, error) {
	posts, err := c.src.ListPosts(ctx)
	if err != nil {
		return render.HomePage{}, err
	}
	p, err := Paginate(len(posts), c.opts.Site.PostsPerPage, page)
	if err != nil {
		return render.HomePage{}, err
	}

	title := ""
	if page > 1 {
		title = fmt.Sprintf("%s %d", c.opts.Site.Labels.Page, page)
	}
	return render.HomePage{
		Layout:     c.layout(title),
		Posts:      pageWindow(posts, p),
		Pagination: p,
	}, nil
}

// PageCount reports how many home feed pages exist.
func (c *Composer) PageCount(ctx context.Context) (int, error) {
	posts, err := c.src.ListPosts(ctx)
	if err != nil {
		return 0, err
	}
	p, err := Paginate(len(posts), c.opts.Site.PostsPerPage, 1)
	if err != nil {
		return 0, err
	}
	return p.Total, nil
}

func (c *Composer) Post(ctx context.Context, slug string) (render.PostPage, error) {
	post, err := c.src.GetPost(ctx, slug)
	if err != nil {
		return render.PostPage{}, err
	}
	return render.PostPage{
		Layout: c.layout(firstNonEmpty(post.Title, post.Slug)),
		Post:   post,
		HTML:   template.HTML(post.HTML), // sanitized by the markdown pipeline
	}, nil
}

func (c *Composer) Tag(ctx context.Context, tag string) (render.TagPage, error) {
	canonical, posts, err := c.src.PostsByTag(ctx, tag)
	if err != nil {
		return render.TagPage{}, err
	}
	tags, err := c.src.ListTags(ctx)
	if err != nil {
		return render.TagPage{}, err
	}
	return render.TagPage{
		Layout: c.layout("Tag: " + canonical),
		Tag:    canonical,
		Posts:  posts,
		Tags:   tags,
	}, nil
}

func (c *Composer) Page(ctx context.Context, slug string) (render.StaticPage, error) {
	if strings.TrimSpace(slug) == "" {
		return render.StaticPage{}, fmt.Errorf("page: %w", domainerr.ErrNotFound)
	}
	page, err := c.src.GetPage(ctx, slug)
	if err != nil {
		return render.StaticPage{}, err
	}
	return render.StaticPage{
		Layout: c.layout(firstNonEmpty(page.Title, page.Slug)),
		Page:   page,
		HTML:   template.HTML(page.HTML),
	}, nil
}

func (c *Composer) NotFound(path string) render.NotFoundPage {
	return render.NotFoundPage{
		Layout: c.layout("Not found"),
		Path:   path,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
