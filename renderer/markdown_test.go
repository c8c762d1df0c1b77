package renderer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderAssignsHeadingIDs(t *testing.T) {
	src := "# Getting Started\n\nSome *text* here.\n\n## Getting Started\n\n## Custom {#custom-id}\n"
	res, err := New().Render([]byte(src))
	require.NoError(t, err)

	require.Len(t, res.Headings, 3)
	assert.Equal(t, Heading{ID: "getting-started", Text: "Getting Started", Level: 1}, res.Headings[0])
	assert.Equal(t, "getting-started-1", res.Headings[1].ID)
	assert.Equal(t, "custom-id", res.Headings[2].ID)

	html := string(res.HTML)
	assert.Contains(t, html, `<h1 id="getting-started">Getting Started</h1>`)
	assert.Contains(t, html, `<em>text</em>`)
	assert.Contains(t, res.PlainText, "Some")
}

func TestRenderSkipsFrontMatter(t *testing.T) {
	res, err := New().Render([]byte("---\ntitle: Hidden\n---\nVisible\n"))
	require.NoError(t, err)
	assert.NotContains(t, string(res.HTML), "Hidden")
	assert.Contains(t, string(res.HTML), "Visible")
}

func TestRenderHighlightsCode(t *testing.T) {
	res, err := New().Render([]byte("```go\nfunc main() {}\n```\n"))
	require.NoError(t, err)
	assert.Contains(t, string(res.HTML), `data-lang="go"`)
	assert.Contains(t, string(res.HTML), `z-chroma`)
}

func TestMinifyHTML(t *testing.T) {
	raw := "<!doctype html>\n<html>\n  <body>\n    <p>   Hello    world   </p>\n  </body>\n</html>\n"
	out, err := New().MinifyHTML([]byte(raw))
	require.NoError(t, err)
	assert.Less(t, len(out), len(raw))
	assert.Contains(t, string(out), "Hello world")
	assert.True(t, strings.Contains(string(out), "<html>") || strings.Contains(string(out), "<html "))
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"  Hello, World! ": "hello-world",
		"???":              "section",
		"a -- b":           "a-b",
		"Über uns":         "über-uns",
		"v1.2_beta":        "v1-2-beta",
	}
	for in, want := range tests {
		assert.Equal(t, want, slug(in), "slug(%q)", in)
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{name: "heading then paragraph", src: "## Install\n\nSteps.", want: "Install Steps."},
		{name: "inline markup", src: "Some *text* and `code`, here.", want: "Some text and code, here."},
		{name: "soft break", src: "one\ntwo", want: "one two"},
		{name: "list items", src: "- a\n- b\n", want: "a b"},
		{name: "link", src: "See [the docs](/docs/).", want: "See the docs."},
		{name: "code block left out", src: "Before\n\n```go\nx := 1\n```\n\nAfter", want: "Before After"},
		{name: "typographer apostrophe", src: "it's fine", want: "it\u2019s fine"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := New().Render([]byte(tt.src))
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.PlainText)
		})
	}
}
