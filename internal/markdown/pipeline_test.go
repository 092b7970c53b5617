package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techblog/internal/assets"
	"techblog/internal/domain/config"
	"techblog/internal/domain/content"
	"techblog/internal/logging"
)

func newTestPipeline() *Pipeline {
	return New(assets.NewResolver(config.Default().Assets), logging.NoOp())
}

func TestRenderTableOfContents(t *testing.T) {
	t.Parallel()

	src := "# Title\n\n## Setup\n\ntext\n\n### Install *fast*\n\n## Setup\n\n#### Notes\n\n##### Too deep\n"
	res, err := newTestPipeline().Render([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, []content.TocEntry{
		{ID: "setup", Text: "Setup", Level: 2},
		{ID: "install-fast", Text: "Install fast", Level: 3},
		{ID: "setup-2", Text: "Setup", Level: 2},
		{ID: "notes", Text: "Notes", Level: 4},
	}, res.TOC)
	assert.Contains(t, res.HTML, `<h2 id="setup">Setup</h2>`)
	assert.Contains(t, res.HTML, `<h2 id="setup-2">Setup</h2>`)
	assert.Contains(t, res.HTML, "<h1>Title</h1>")
	assert.Contains(t, res.HTML, "<h5>Too deep</h5>")
}

func TestRenderKeepsExplicitHeadingID(t *testing.T) {
	t.Parallel()

	res, err := newTestPipeline().Render([]byte("## Intro {#start}\n\n## Start\n"))
	require.NoError(t, err)
	assert.Equal(t, []content.TocEntry{
		{ID: "start", Text: "Intro", Level: 2},
		{ID: "start-2", Text: "Start", Level: 2},
	}, res.TOC)
}

func TestRenderEmptyDocument(t *testing.T) {
	t.Parallel()

	res, err := newTestPipeline().Render(nil)
	require.NoError(t, err)
	assert.Empty(t, res.HTML)
	assert.NotNil(t, res.TOC)
	assert.Empty(t, res.TOC)
}

func TestRenderSanitizes(t *testing.T) {
	t.Parallel()

	src := "Hello\n\n<script>alert(1)</script>\n\n<img src=\"x.png\" onerror=\"alert(2)\">\n\n[click](javascript:alert(3))\n"
	res, err := newTestPipeline().Render([]byte(src))
	require.NoError(t, err)

	assert.NotContains(t, res.HTML, "<script")
	assert.NotContains(t, res.HTML, "onerror")
	assert.NotContains(t, res.HTML, "javascript:")
	assert.Contains(t, res.HTML, `src="https://hackmd.io/_uploads/x.png"`)
	assert.Contains(t, res.HTML, "<p>Hello</p>")
}

func TestRenderKeepsFigures(t *testing.T) {
	t.Parallel()

	src := "<figure class=\"wide\" title=\"t\">\n<img src=\"/media/a.png\" alt=\"a\">\n<figcaption>Caption</figcaption>\n</figure>\n"
	res, err := newTestPipeline().Render([]byte(src))
	require.NoError(t, err)

	assert.Contains(t, res.HTML, `<figure class="wide" title="t">`)
	assert.Contains(t, res.HTML, "<figcaption>Caption</figcaption>")
	assert.Contains(t, res.HTML, `src="https://tmdpc.vn/media/a.png"`)
}

func TestRenderRewritesMediaSources(t *testing.T) {
	t.Parallel()

	src := "<video poster=\"poster.jpg\" controls><source src=\"clip.mp4\" type=\"video/mp4\"></video>\n"
	res, err := newTestPipeline().Render([]byte(src))
	require.NoError(t, err)

	assert.Contains(t, res.HTML, `poster="https://hackmd.io/_uploads/poster.jpg"`)
	assert.Contains(t, res.HTML, `src="https://hackmd.io/_uploads/clip.mp4"`)
}

func TestRenderMath(t *testing.T) {
	t.Parallel()

	src := "Euler: $e^{i\\pi}+1=0$ costs $5 and $10.\n\n$$\nx^2 < y\n$$\n\n$$a+b$$\n\nafter\n"
	res, err := newTestPipeline().Render([]byte(src))
	require.NoError(t, err)

	assert.Contains(t, res.HTML, `\(e^{i\pi}+1=0\)`)
	assert.Contains(t, res.HTML, `math-inline katex`)
	assert.Contains(t, res.HTML, `\[x^2 &lt; y\]`)
	assert.Contains(t, res.HTML, `\[a+b\]`)
	assert.Contains(t, res.HTML, `math-display katex-display`)
	assert.Contains(t, res.HTML, "costs $5 and $10.")
	assert.Contains(t, res.HTML, "<p>after</p>")
}

func TestRenderHighlightsCode(t *testing.T) {
	t.Parallel()

	src := "```go\nfunc main() {}\n```\n\n```\nplain words\n```\n\nuse `inline` code\n"
	res, err := newTestPipeline().Render([]byte(src))
	require.NoError(t, err)

	assert.Contains(t, res.HTML, `<pre class="chroma language-go"><code class="language-go">`)
	assert.Contains(t, res.HTML, `<span class="kd">func</span>`)
	assert.Contains(t, res.HTML, `<pre class="chroma language-text"><code class="language-text">`)
	assert.Contains(t, res.HTML, "<code>inline</code>")
}

func TestRenderGFMAndEmoji(t *testing.T) {
	t.Parallel()

	src := "| a | b |\n|---|---|\n| 1 | 2 |\n\n~~gone~~ :smile:\n\n- [x] done\n- [ ] todo\n\nsee https://example.com\n"
	res, err := newTestPipeline().Render([]byte(src))
	require.NoError(t, err)

	assert.Contains(t, res.HTML, "<table>")
	assert.Contains(t, res.HTML, "<del>gone</del>")
	assert.Contains(t, res.HTML, "😄")
	assert.Contains(t, res.HTML, `type="checkbox"`)
	assert.Contains(t, res.HTML, `href="https://example.com"`)
}

func TestRenderToleratesMalformedInput(t *testing.T) {
	t.Parallel()

	tests := []string{
		"```go\nfunc broken(",
		"$$\nunterminated",
		"<div><span>unclosed",
		"## \n\n### \n",
	}
	p := newTestPipeline()
	for _, src := range tests {
		_, err := p.Render([]byte(src))
		assert.NoError(t, err, src)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	t.Parallel()

	src := []byte("## A\n\n```python\nprint('x')\n```\n\n$x$ :tada:\n\n## A\n")
	p := newTestPipeline()

	first, err := p.Render(src)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := p.Render(src)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
