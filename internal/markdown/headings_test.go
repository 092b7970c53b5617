package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techblog/internal/domain/content"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "Setup", want: "setup"},
		{in: "  Hello   World  ", want: "hello-world"},
		{in: "C++ & Go!", want: "c--go"},
		{in: "snake_case-kept", want: "snake_case-kept"},
		{in: "Xin chào", want: "xin-cho"},
		{in: "!!!", want: "section"},
		{in: "", want: "section"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, slugify(tt.in))
		})
	}
}

func TestAssignHeadingIDs(t *testing.T) {
	t.Parallel()

	root, err := parseFragment(`<h2>Setup</h2><h2>Setup 2</h2><div><h3>Setup</h3></div>` +
		`<h4 id="custom">Anything</h4><h2>?</h2><h2>¿</h2><h1>Top</h1><h5>Low</h5>`)
	require.NoError(t, err)

	toc := AssignHeadingIDs(root)
	assert.Equal(t, []content.TocEntry{
		{ID: "setup", Text: "Setup", Level: 2},
		{ID: "setup-2", Text: "Setup 2", Level: 2},
		{ID: "setup-3", Text: "Setup", Level: 3},
		{ID: "custom", Text: "Anything", Level: 4},
		{ID: "section", Text: "?", Level: 2},
		{ID: "section-2", Text: "¿", Level: 2},
	}, toc)

	out, err := renderFragment(root)
	require.NoError(t, err)
	assert.Contains(t, out, `<h3 id="setup-3">Setup</h3>`)
	assert.Contains(t, out, "<h1>Top</h1>")
	assert.Contains(t, out, "<h5>Low</h5>")
}

func TestAssignHeadingIDsUnique(t *testing.T) {
	t.Parallel()

	root, err := parseFragment(`<h2>a</h2><h2>a-2</h2><h2>a</h2><h2>a</h2><h2 id="a">x</h2>`)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, e := range AssignHeadingIDs(root) {
		assert.False(t, seen[e.ID], "duplicate id %q", e.ID)
		seen[e.ID] = true
	}
	assert.Len(t, seen, 5)
}
