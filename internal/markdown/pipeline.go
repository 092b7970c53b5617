// Package markdown renders post and page bodies into sanitized HTML plus a
// table of contents.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"

	"techblog/internal/domain/content"
	"techblog/internal/logging"
)

type Result struct {
	HTML string
	TOC  []content.TocEntry
}

type renderState struct {
	toc []content.TocEntry
}

// treeStage transforms the markup tree. A stage may return a new root.
type treeStage func(root *html.Node, st *renderState) (*html.Node, error)

type namedStage struct {
	name string
	run  treeStage
}

// Pipeline holds no per-document state and is safe for concurrent use.
type Pipeline struct {
	md     goldmark.Markdown
	stages []namedStage
	log    logging.Logger
}

func New(resolver AssetResolver, logger logging.Logger) *Pipeline {
	md := goldmark.New(
		goldmark.WithExtensions(
			Math,
			extension.Table,
			extension.Strikethrough,
			extension.Linkify,
			extension.TaskList,
			emoji.New(emoji.WithRenderingMethod(emoji.Unicode)),
		),
		goldmark.WithParserOptions(parser.WithHeadingAttribute()),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)

	// order matters: highlighting and math markup are produced after the
	// sanitizer so their classes and attributes survive
	stages := []namedStage{
		{name: "headings", run: assignHeadingIDs},
		{name: "assets", run: rewriteAssets(resolver)},
		{name: "sanitize", run: sanitize(newPolicy())},
		{name: "math", run: renderMath},
		{name: "highlight", run: newHighlighter().stage},
	}

	return &Pipeline{
		md:     md,
		stages: stages,
		log:    logging.OrNoOp(logger),
	}
}

// Render converts a markdown body. Malformed input is tolerated by the
// parser; an error means the document could not be rendered at all.
func (p *Pipeline) Render(src []byte) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("markdown: render panicked", "panic", r)
			res, err = Result{}, fmt.Errorf("markdown: render panicked: %v", r)
		}
	}()

	var buf bytes.Buffer
	if err := p.md.Convert(src, &buf); err != nil {
		return Result{}, fmt.Errorf("markdown: convert: %w", err)
	}

	root, err := parseFragment(buf.String())
	if err != nil {
		return Result{}, fmt.Errorf("markdown: parse html: %w", err)
	}

	st := &renderState{toc: []content.TocEntry{}}
	for _, s := range p.stages {
		root, err = s.run(root, st)
		if err != nil {
			return Result{}, fmt.Errorf("markdown: %s: %w", s.name, err)
		}
	}

	out, err := renderFragment(root)
	if err != nil {
		return Result{}, fmt.Errorf("markdown: serialize: %w", err)
	}
	p.log.Debug("markdown: rendered", "bytes", len(out), "headings", len(st.toc))
	return Result{HTML: out, TOC: st.toc}, nil
}

