package app

import (
	"context"
	"strconv"
	"strings"
	"unicode"

	"techblog/internal/domain/site"
	"techblog/internal/logging"
)

// RouteBuilder enumerates every page a static export has to write.
type RouteBuilder struct {
	Source  ContentSource
	PerPage int
	Log     logging.Logger
}

func (rb *RouteBuilder) Build(ctx context.Context) ([]site.Route, error) {
	posts, err := rb.Source.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	p, err := Paginate(len(posts), rb.PerPage, 1)
	if err != nil {
		return nil, err
	}

	routes := rb.BuildHomeRoutes(p.Total)
	for _, m := range posts {
		routes = append(routes, site.Route{
			Kind:    site.RoutePost,
			Slug:    m.Slug,
			OutPath: site.OutPath("posts", m.Slug),
		})
	}

	tagRoutes, err := rb.BuildTagRoutes(ctx)
	if err != nil {
		return nil, err
	}
	routes = append(routes, tagRoutes...)

	pages, err := rb.Source.ListPages(ctx)
	if err != nil {
		return nil, err
	}
	for _, pg := range pages {
		routes = append(routes, site.Route{
			Kind:    site.RouteStatic,
			Slug:    pg.Slug,
			OutPath: site.OutPath(pg.Slug),
		})
	}

	routes = append(routes, site.Route{Kind: site.RouteNotFound, OutPath: "404.html"})
	return routes, nil
}

// BuildHomeRoutes returns the root plus /page/2 .. /page/total.
func (rb *RouteBuilder) BuildHomeRoutes(total int) []site.Route {
	routes := []site.Route{{Kind: site.RouteIndex, Page: 1, OutPath: "index.html"}}
	for n := 2; n <= total; n++ {
		routes = append(routes, site.Route{
			Kind:    site.RoutePage,
			Page:    n,
			OutPath: site.OutPath("page", strconv.Itoa(n)),
		})
	}
	return routes
}

func (rb *RouteBuilder) BuildTagRoutes(ctx context.Context) ([]site.Route, error) {
	tags, err := rb.Source.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	var routes []site.Route
	for _, t := range tags {
		if !SafePathSegment(t.Name) {
			logging.OrNoOp(rb.Log).Warn("routes: tag skipped, not a safe path segment", "tag", t.Name)
			continue
		}
		routes = append(routes, site.Route{
			Kind:    site.RouteTag,
			Key:     t.Name,
			OutPath: site.OutPath("tags", t.Name),
		})
	}
	return routes, nil
}

// SafePathSegment reports whether s can be used verbatim as one directory
// name below the export root.
func SafePathSegment(s string) bool {
	if strings.TrimSpace(s) == "" || s == "." || s == ".." {
		return false
	}
	for _, r := range s {
		if r == '/' || r == '\\' || unicode.IsControl(r) {
			return false
		}
	}
	return true
}
