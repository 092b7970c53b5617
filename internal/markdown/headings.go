package markdown

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"techblog/internal/domain/content"
)

const fallbackSlug = "section"

var (
	slugSpace   = regexp.MustCompile(`\s+`)
	slugInvalid = regexp.MustCompile(`[^A-Za-z0-9_-]`)
)

// AssignHeadingIDs gives every h2, h3 and h4 below root a document-unique id
// and returns the table of contents in reading order. An id already present
// on a heading is kept as the base; repeated bases get -2, -3, ... suffixes.
func AssignHeadingIDs(root *html.Node) []content.TocEntry {
	toc := []content.TocEntry{}
	counts := map[string]int{}
	used := map[string]struct{}{}

	for _, h := range collect(root, func(n *html.Node) bool { return headingLevel(n) > 0 }) {
		text := strings.TrimSpace(textContent(h))

		base, ok := getAttr(h, "id")
		if !ok || strings.TrimSpace(base) == "" {
			base = slugify(text)
		}

		id := nextID(base, counts, used)
		setAttr(h, "id", id)
		toc = append(toc, content.TocEntry{
			ID:    id,
			Text:  text,
			Level: headingLevel(h),
		})
	}
	return toc
}

func headingLevel(n *html.Node) int {
	if n.Type != html.ElementNode {
		return 0
	}
	switch n.DataAtom {
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	default:
		return 0
	}
}

func slugify(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = slugSpace.ReplaceAllString(s, "-")
	s = slugInvalid.ReplaceAllString(s, "")
	if s == "" {
		return fallbackSlug
	}
	return s
}

// nextID counts uses per base. A suffixed id can collide with a literal
// heading of the same text ("Setup 2"), so it keeps counting until free.
func nextID(base string, counts map[string]int, used map[string]struct{}) string {
	counts[base]++
	id := base
	if n := counts[base]; n > 1 {
		id = base + "-" + strconv.Itoa(n)
	}
	for {
		if _, taken := used[id]; !taken {
			break
		}
		counts[base]++
		id = base + "-" + strconv.Itoa(counts[base])
	}
	used[id] = struct{}{}
	return id
}

func assignHeadingIDs(root *html.Node, st *renderState) (*html.Node, error) {
	st.toc = AssignHeadingIDs(root)
	return root, nil
}
