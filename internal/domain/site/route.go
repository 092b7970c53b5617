package site

import (
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
)

type RouteKind string

const (
	RouteIndex    RouteKind = "index"
	RoutePage     RouteKind = "page"
	RoutePost     RouteKind = "post"
	RouteTag      RouteKind = "tag"
	RouteStatic   RouteKind = "static"
	RouteNotFound RouteKind = "404"
)

// Route is one addressable page. OutPath is where a static export writes it,
// relative to the public directory.
type Route struct {
	Kind    RouteKind
	Slug    string
	Key     string
	Page    int
	OutPath string
}

func (r Route) String() string {
	var parts []string
	parts = append(parts, string(r.Kind))
	if r.Slug != "" {
		parts = append(parts, "slug="+r.Slug)
	}
	if r.Key != "" {
		parts = append(parts, "key="+r.Key)
	}
	if r.Page > 0 {
		parts = append(parts, fmt.Sprintf("page=%d", r.Page))
	}
	if r.OutPath != "" {
		parts = append(parts, "out="+r.OutPath)
	}
	return strings.Join(parts, " ")
}

// URL is the public path of the route.
func (r Route) URL() string {
	switch r.Kind {
	case RouteIndex:
		return "/"
	case RoutePage:
		return HomePageURL(r.Page)
	case RoutePost:
		return PostURL(r.Slug)
	case RouteTag:
		return TagURL(r.Key)
	case RouteStatic:
		return StaticURL(r.Slug)
	default:
		return "/404"
	}
}

// HomePageURL maps page 1 to the site root.
func HomePageURL(page int) string {
	if page <= 1 {
		return "/"
	}
	return "/page/" + strconv.Itoa(page)
}

func PostURL(slug string) string {
	return "/posts/" + url.PathEscape(slug)
}

func TagURL(tag string) string {
	return "/tags/" + url.PathEscape(tag)
}

func StaticURL(slug string) string {
	return "/" + url.PathEscape(slug)
}

// OutPath builds the export location for a route as a directory index.
func OutPath(segments ...string) string {
	return path.Join(append(segments, "index.html")...)
}
