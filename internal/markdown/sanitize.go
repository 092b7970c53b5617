package markdown

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// newPolicy extends the user generated content allow-list with figures,
// class and title attributes, task list checkboxes and embedded video.
func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("figure", "figcaption")
	p.AllowAttrs("class", "title").Globally()

	p.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")

	p.AllowAttrs("src", "poster", "controls", "muted", "loop", "playsinline", "width", "height").OnElements("video")
	p.AllowAttrs("src", "type").OnElements("source")
	return p
}

func sanitize(policy *bluemonday.Policy) treeStage {
	return func(root *html.Node, _ *renderState) (*html.Node, error) {
		markup, err := renderFragment(root)
		if err != nil {
			return nil, err
		}
		return parseFragment(policy.Sanitize(markup))
	}
}
