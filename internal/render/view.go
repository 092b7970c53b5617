package render

import (
	"html/template"

	"techblog/internal/domain/config"
	"techblog/internal/domain/content"
)

// Layout carries what every page template needs besides its own content.
type Layout struct {
	Site       config.SiteConfig
	Title      string
	SiteCommit string
	OpenSource bool
	LiveReload bool
}

type Pagination struct {
	Current  int
	Total    int
	PrevURL  string
	NextURL  string
	HasPrev  bool
	HasNext  bool
	PageSize int
}

type HomePage struct {
	Layout
	Posts      []content.PostSummary
	Pagination Pagination
}

type PostPage struct {
	Layout
	Post *content.Post
	HTML template.HTML
}

type TagPage struct {
	Layout
	Tag   string
	Posts []content.PostSummary
	Tags  []content.TagCount
}

type StaticPage struct {
	Layout
	Page *content.Page
	HTML template.HTML
}

type NotFoundPage struct {
	Layout
	Path string
}
