package templatex

import (
	"bytes"
	"context"
	"html/template"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ctxKey struct{}

type stubHelpers struct{}

func (stubHelpers) FuncMap(ctx context.Context) template.FuncMap {
	return template.FuncMap{
		"who": func() string {
			if v, ok := ctx.Value(ctxKey{}).(string); ok {
				return v
			}
			return "nobody"
		},
	}
}

const testLayout = `{{ define "layout" }}<title>{{ .PageTitle }}</title><main>{{ .BodyHTML }}</main>{{ end }}
{{ define "content-default" }}<article>{{ .ContentHTML }}</article><i>{{ who }}</i>{{ end }}
{{ define "content-404" }}<p>missing {{ .RequestedPath }}</p>{{ end }}`

func writeTemplates(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return dir
}

func TestLoadAndRender(t *testing.T) {
	dir := writeTemplates(t, map[string]string{
		"layout.html":          testLayout,
		"partials/custom.html": `{{ define "content-wiki" }}<section>{{ .Title }}</section>{{ end }}`,
		"assets/site.css":      "body{}",
	})
	engine, err := Load(dir, stubHelpers{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "assets"), engine.StaticDir)
	assert.True(t, engine.Has("content-wiki"))
	assert.False(t, engine.Has("content-nope"))

	ctx := context.WithValue(context.Background(), ctxKey{}, "alice")
	var buf bytes.Buffer
	data := &PageData{PageTitle: "Hello - Site", ContentHTML: template.HTML("<b>hi</b>"), URL: "/hello/"}
	require.NoError(t, engine.Render(ctx, &buf, data))
	assert.Equal(t, "<title>Hello - Site</title><main><article><b>hi</b></article><i>alice</i></main>", buf.String())
	assert.Equal(t, "/hello/", data.RequestedPath)

	// A second render with another context sees its own values.
	buf.Reset()
	require.NoError(t, engine.Render(context.Background(), &buf, &PageData{PageTitle: "x"}))
	assert.Contains(t, buf.String(), "<i>nobody</i>")

	buf.Reset()
	require.NoError(t, engine.Render(ctx, &buf, &PageData{Title: "Wiki", ContentTemplate: "content-wiki"}))
	assert.Contains(t, buf.String(), "<section>Wiki</section>")

	buf.Reset()
	data = &PageData{ContentTemplate: "content-unknown"}
	require.NoError(t, engine.Render(ctx, &buf, data))
	assert.Equal(t, DefaultContentTemplate, data.ContentTemplate)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("", nil)
	assert.Error(t, err)

	_, err = Load(t.TempDir(), nil)
	assert.ErrorContains(t, err, "no templates found")

	dir := writeTemplates(t, map[string]string{"layout.html": `{{ define "layout" }}x{{ end }}`})
	_, err = Load(dir, nil)
	assert.ErrorContains(t, err, `"content-default" is not defined`)

	dir = writeTemplates(t, map[string]string{"layout.html": `{{ who }}`})
	_, err = Load(dir, nil)
	assert.ErrorContains(t, err, "parse templates")
}

func TestSafeHTML(t *testing.T) {
	dir := writeTemplates(t, map[string]string{
		"layout.html": `{{ define "layout" }}{{ .BodyHTML }}{{ end }}{{ define "content-default" }}{{ safeHTML .Title }}|{{ .Title }}{{ end }}{{ define "content-404" }}{{ end }}`,
	})
	engine, err := Load(dir, nil)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, engine.Render(context.Background(), &buf, &PageData{Title: "<em>x</em>"}))
	assert.Equal(t, "<em>x</em>|&lt;em&gt;x&lt;/em&gt;", buf.String())
}
