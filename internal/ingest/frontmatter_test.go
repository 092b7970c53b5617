package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFrontMatter(t *testing.T) {
	t.Parallel()

	raw := "---\r\ntitle: Hello\r\ndate: 2024-01-15\r\ntags: \"ctf, pwn\"\r\n---\r\n# Body\r\n\r\ntext\r\n"

	meta, body, err := SplitFrontMatter([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "Hello", String(meta, "title"))
	assert.Equal(t, "2024-01-15", String(meta, "date"))
	assert.Equal(t, "ctf, pwn", meta["tags"])
	assert.Equal(t, "# Body\n\ntext", strings.TrimSpace(string(body)))
}

func TestSplitFrontMatterLeadingBOM(t *testing.T) {
	t.Parallel()

	meta, body, err := SplitFrontMatter([]byte("\ufeff---\ntitle: A\n---\nbody"))
	require.NoError(t, err)
	assert.Equal(t, "A", String(meta, "title"))
	assert.Equal(t, "body", strings.TrimSpace(string(body)))
}

func TestSplitFrontMatterWithoutHeader(t *testing.T) {
	t.Parallel()

	raw := "# Just markdown\n\nno header here\n"
	meta, body, err := SplitFrontMatter([]byte(raw))
	require.NoError(t, err)
	assert.Empty(t, meta)
	assert.NotNil(t, meta)
	assert.Equal(t, raw, string(body))
}

func TestSplitFrontMatterMalformedHeader(t *testing.T) {
	t.Parallel()

	raw := "---\ntitle: [unclosed\n---\nbody text\n"
	meta, body, err := SplitFrontMatter([]byte(raw))
	require.Error(t, err)
	assert.Empty(t, meta)
	assert.NotNil(t, meta)
	assert.Equal(t, "body text\n", string(body))
}

func TestSplitFrontMatterNestedList(t *testing.T) {
	t.Parallel()

	raw := "---\ntitle: About\ntimeline:\n  - year: \"2023\"\n    place: KMA\n---\nbody\n"
	meta, _, err := SplitFrontMatter([]byte(raw))
	require.NoError(t, err)

	list, ok := meta["timeline"].([]any)
	require.True(t, ok)
	require.Len(t, list, 1)
	entry, ok := list[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "KMA", entry["place"])
}

func TestString(t *testing.T) {
	t.Parallel()

	meta := map[string]any{
		"s":    "  padded ",
		"day":  time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
		"ts":   time.Date(2024, 3, 9, 10, 30, 0, 0, time.UTC),
		"n":    7,
		"list": []any{"a"},
	}
	assert.Equal(t, "padded", String(meta, "s"))
	assert.Equal(t, "2024-03-09", String(meta, "day"))
	assert.Equal(t, "2024-03-09T10:30:00Z", String(meta, "ts"))
	assert.Equal(t, "7", String(meta, "n"))
	assert.Equal(t, "", String(meta, "list"))
	assert.Equal(t, "", String(meta, "missing"))
}
