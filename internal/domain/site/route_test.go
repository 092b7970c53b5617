package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		route Route
		want  string
	}{
		{route: Route{Kind: RouteIndex}, want: "/"},
		{route: Route{Kind: RoutePage, Page: 1}, want: "/"},
		{route: Route{Kind: RoutePage, Page: 3}, want: "/page/3"},
		{route: Route{Kind: RoutePost, Slug: "pwn-101"}, want: "/posts/pwn-101"},
		{route: Route{Kind: RouteTag, Key: "web security"}, want: "/tags/web%20security"},
		{route: Route{Kind: RouteStatic, Slug: "about"}, want: "/about"},
		{route: Route{Kind: RouteNotFound}, want: "/404"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.route.URL(), tt.route.String())
	}
}

func TestRouteString(t *testing.T) {
	t.Parallel()

	r := Route{Kind: RouteTag, Key: "ctf", Page: 2, OutPath: OutPath("tags", "ctf")}
	assert.Equal(t, "tag key=ctf page=2 out=tags/ctf/index.html", r.String())
	assert.Equal(t, "index.html", OutPath())
}
