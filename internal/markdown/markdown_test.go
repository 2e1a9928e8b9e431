package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFrontmatter(t *testing.T) {
	meta, body, err := SplitFrontmatter([]byte("---\ntitle: Hello\ntags: [a, b]\n---\n# Title\n"))
	require.NoError(t, err)
	assert.Equal(t, "Hello", meta["title"])
	assert.Equal(t, []any{"a", "b"}, meta["tags"])
	assert.Equal(t, "# Title\n", string(body))
}

func TestSplitFrontmatterAbsentOrEmpty(t *testing.T) {
	meta, body, err := SplitFrontmatter([]byte("# Title\n"))
	require.NoError(t, err)
	assert.Empty(t, meta)
	assert.Equal(t, "# Title\n", string(body))

	meta, body, err = SplitFrontmatter([]byte("---\n---\nbody"))
	require.NoError(t, err)
	assert.Empty(t, meta)
	assert.Equal(t, "body", string(body))
}

func TestSplitFrontmatterCRLF(t *testing.T) {
	meta, body, err := SplitFrontmatter([]byte("---\r\nkey: value\r\n---\r\n# Title\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "value", meta["key"])
	assert.Equal(t, "# Title\r\n", string(body))
}

func TestSplitFrontmatterMissingClose(t *testing.T) {
	_, _, err := SplitFrontmatter([]byte("---\nkey: value\n# Title\n"))
	assert.ErrorIs(t, err, ErrMissingClosingDelimiter)
}

func TestConvertExtensions(t *testing.T) {
	c := New()
	src := "---\ntitle: x\n---\n" +
		"# Hello World\n\n" +
		"\"Quoted\" text -- with ~~strike~~ and https://example.com.\n\n" +
		"| a | b |\n|---|---|\n| 1 | 2 |\n\n" +
		"```go\nfmt.Println()\n```\n\n" +
		"Note[^1].\n\n[^1]: The footnote.\n"

	out, err := c.Convert([]byte(src))
	require.NoError(t, err)
	assert.Contains(t, out, `<h1 id="hello-world">Hello World</h1>`)
	assert.Contains(t, out, "&ldquo;Quoted&rdquo;")
	assert.Contains(t, out, "&ndash;")
	assert.Contains(t, out, "<del>strike</del>")
	assert.Contains(t, out, `<a href="https://example.com">`)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, `<code class="language-go">`)
	assert.Contains(t, out, `class="footnotes"`)
	assert.NotContains(t, out, "title: x")
}

func TestParseCollectsHeadingsAndTOC(t *testing.T) {
	doc, err := New().Parse([]byte("# Intro\n\n## Setup *fast*\n\n### Deep\n\n## Usage\n"))
	require.NoError(t, err)
	require.Len(t, doc.Headings, 4)
	assert.Equal(t, Heading{Level: 2, ID: "setup-fast", Text: "Setup fast"}, doc.Headings[1])

	toc := doc.TOC()
	assert.Equal(t,
		`<nav class="toc"><ul><li><a href="#intro">Intro</a>`+
			`<ul><li><a href="#setup-fast">Setup fast</a>`+
			`<ul><li><a href="#deep">Deep</a></li></ul></li>`+
			`<li><a href="#usage">Usage</a></li></ul></li></ul></nav>`,
		toc)
}

func TestRenderTOCEmpty(t *testing.T) {
	assert.Empty(t, RenderTOC(nil))
}

func TestConvertIsDeterministic(t *testing.T) {
	c := New()
	a, err := c.Convert([]byte("# A\n\n# A\n"))
	require.NoError(t, err)
	b, err := c.Convert([]byte("# A\n\n# A\n"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Contains(t, a, `id="a-1"`)
}
