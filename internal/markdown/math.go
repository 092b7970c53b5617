package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"golang.org/x/net/html"
)

const (
	mathInlineClass  = "math-inline"
	mathDisplayClass = "math-display"
)

var (
	KindMathInline = ast.NewNodeKind("MathInline")
	KindMathBlock  = ast.NewNodeKind("MathBlock")
)

// MathInline is TeX delimited by $ or $$ inside a paragraph.
type MathInline struct {
	ast.BaseInline
	Value []byte
}

func (n *MathInline) Kind() ast.NodeKind { return KindMathInline }

func (n *MathInline) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Value": string(n.Value)}, nil)
}

// MathBlock is TeX fenced by $$ lines. Its lines hold the raw source.
type MathBlock struct {
	ast.BaseBlock
	closed bool
}

func (n *MathBlock) Kind() ast.NodeKind { return KindMathBlock }

func (n *MathBlock) IsRaw() bool { return true }

func (n *MathBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

type mathBlockParser struct{}

func (p *mathBlockParser) Trigger() []byte { return []byte{'$'} }

func (p *mathBlockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || pos+1 >= len(line) || line[pos] != '$' || line[pos+1] != '$' {
		return nil, parser.NoChildren
	}

	node := &MathBlock{}
	start := pos + 2
	rest := bytes.TrimRight(line[start:], " \t\r\n")
	switch {
	case len(rest) >= 2 && bytes.HasSuffix(rest, []byte("$$")):
		// $$...$$ on a single line
		node.closed = true
		node.Lines().Append(text.NewSegment(segment.Start+start, segment.Start+start+len(rest)-2))
	case len(bytes.TrimSpace(rest)) > 0:
		node.Lines().Append(text.NewSegment(segment.Start+start, segment.Stop))
	}
	return node, parser.NoChildren
}

func (p *mathBlockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	if node.(*MathBlock).closed {
		return parser.Close
	}

	line, segment := reader.PeekLine()
	trimmed := bytes.TrimRight(line, " \t\r\n")
	if bytes.HasSuffix(trimmed, []byte("$$")) {
		if head := trimmed[:len(trimmed)-2]; len(bytes.TrimSpace(head)) > 0 {
			node.Lines().Append(text.NewSegment(segment.Start, segment.Start+len(head)))
		}
		newline := 1
		if line[len(line)-1] != '\n' {
			newline = 0
		}
		reader.Advance(segment.Stop - segment.Start - newline + segment.Padding)
		return parser.Close
	}

	node.Lines().Append(segment)
	reader.Advance(segment.Len() - 1)
	return parser.Continue | parser.NoChildren
}

func (p *mathBlockParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (p *mathBlockParser) CanInterruptParagraph() bool { return true }

func (p *mathBlockParser) CanAcceptIndentedLine() bool { return false }

type mathInlineParser struct{}

func (p *mathInlineParser) Trigger() []byte { return []byte{'$'} }

// Parse accepts $x$ and $$x$$ on a single line. Single-dollar math must not
// start or end with a space, which keeps prices like "$5 and $10" literal.
func (p *mathInlineParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	open := 0
	for open < len(line) && line[open] == '$' {
		open++
	}
	if open > 2 {
		return nil
	}

	for i := open; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
			continue
		case '$':
		default:
			continue
		}

		j := i
		for j < len(line) && line[j] == '$' {
			j++
		}
		if j-i != open {
			i = j - 1
			continue
		}

		body := line[open:i]
		if len(bytes.TrimSpace(body)) == 0 {
			return nil
		}
		if open == 1 && (util.IsSpace(body[0]) || util.IsSpace(body[len(body)-1])) {
			return nil
		}
		block.Advance(j)
		return &MathInline{Value: append([]byte(nil), body...)}
	}
	return nil
}

type mathHTMLRenderer struct{}

func (r *mathHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindMathInline, r.renderInline)
	reg.Register(KindMathBlock, r.renderBlock)
}

func (r *mathHTMLRenderer) renderInline(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<span class="math ` + mathInlineClass + `">`)
		_, _ = w.Write(util.EscapeHTML(node.(*MathInline).Value))
		_, _ = w.WriteString("</span>")
	}
	return ast.WalkSkipChildren, nil
}

func (r *mathHTMLRenderer) renderBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<div class="math ` + mathDisplayClass + `">`)
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		_, _ = w.Write(util.EscapeHTML(seg.Value(source)))
	}
	_, _ = w.WriteString("</div>\n")
	return ast.WalkSkipChildren, nil
}

type mathExtension struct{}

// Math recognizes $...$ and $$...$$ and emits placeholder elements that
// renderMath later turns into KaTeX auto-render markup.
var Math goldmark.Extender = &mathExtension{}

func (e *mathExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithBlockParsers(util.Prioritized(&mathBlockParser{}, 750)),
		parser.WithInlineParsers(util.Prioritized(&mathInlineParser{}, 150)),
	)
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(util.Prioritized(&mathHTMLRenderer{}, 500)),
	)
}

// renderMath rewrites math placeholders into \(...\) and \[...\] spans for
// the client-side KaTeX renderer.
func renderMath(root *html.Node, _ *renderState) (*html.Node, error) {
	nodes := collect(root, func(n *html.Node) bool {
		return hasClass(n, mathInlineClass) || hasClass(n, mathDisplayClass)
	})
	for _, n := range nodes {
		tex := strings.TrimSpace(textContent(n))
		open, closing, marker := `\(`, `\)`, "katex"
		if hasClass(n, mathDisplayClass) {
			open, closing, marker = `\[`, `\]`, "katex-display"
		}
		replaceChildren(n, &html.Node{Type: html.TextNode, Data: open + tex + closing})
		addClass(n, marker)
		setAttr(n, "role", "math")
		setAttr(n, "aria-label", tex)
	}
	return root, nil
}
