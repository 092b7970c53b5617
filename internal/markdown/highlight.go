package markdown

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	languagePrefix  = "language-"
	defaultLanguage = "text"
)

// highlighter tokenizes fenced code blocks with chroma and emits class based
// markup, leaving colors to the site stylesheet.
type highlighter struct {
	formatter *chromahtml.Formatter
	style     *chroma.Style
}

func newHighlighter() *highlighter {
	return &highlighter{
		formatter: chromahtml.New(
			chromahtml.WithClasses(true),
			chromahtml.PreventSurroundingPre(true),
		),
		style: styles.Fallback,
	}
}

func (h *highlighter) stage(root *html.Node, _ *renderState) (*html.Node, error) {
	blocks := collect(root, func(n *html.Node) bool {
		return n.DataAtom == atom.Code && n.Parent != nil && n.Parent.DataAtom == atom.Pre
	})
	for _, code := range blocks {
		if err := h.highlight(code); err != nil {
			return nil, err
		}
	}
	return root, nil
}

func (h *highlighter) highlight(code *html.Node) error {
	lang := codeLanguage(code)
	source := textContent(code)

	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, source)
	if err != nil {
		return err
	}

	var buf strings.Builder
	if err := h.formatter.Format(&buf, h.style, it); err != nil {
		return err
	}

	nodes, err := html.ParseFragment(strings.NewReader(buf.String()), code)
	if err != nil {
		return err
	}
	replaceChildren(code, nodes...)

	addClass(code.Parent, "chroma", languagePrefix+lang)
	addClass(code, languagePrefix+lang)
	return nil
}

// codeLanguage reads the fence info goldmark stores as a language-* class.
func codeLanguage(code *html.Node) string {
	for _, c := range classes(code) {
		if lang, ok := strings.CutPrefix(c, languagePrefix); ok && lang != "" {
			return strings.ToLower(lang)
		}
	}
	return defaultLanguage
}
