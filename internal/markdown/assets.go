package markdown

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// AssetResolver maps a media reference to a trusted absolute URL.
type AssetResolver interface {
	Resolve(ref string) string
}

// assetAttrs lists the attributes that may carry a media reference.
var assetAttrs = map[atom.Atom]string{
	atom.Img:    "src",
	atom.Source: "src",
	atom.Video:  "poster",
}

func rewriteAssets(resolver AssetResolver) treeStage {
	return func(root *html.Node, _ *renderState) (*html.Node, error) {
		if resolver == nil {
			return root, nil
		}
		nodes := collect(root, func(n *html.Node) bool {
			_, ok := assetAttrs[n.DataAtom]
			return ok
		})
		for _, n := range nodes {
			key := assetAttrs[n.DataAtom]
			if val, ok := getAttr(n, key); ok {
				setAttr(n, key, resolver.Resolve(val))
			}
		}
		return root, nil
	}
}
