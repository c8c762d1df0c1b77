package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iedon/scutils-go/config"
	"github.com/iedon/scutils-go/flatpage"
	"github.com/iedon/scutils-go/site"
	"github.com/iedon/scutils-go/templatex"
)

const testTemplates = `{{ define "layout" }}<html><body>{{ .BodyHTML }}</body></html>{{ end }}
{{ define "content-default" }}<h1>{{ .Title }}</h1>{{ .ContentHTML }}{{ end }}
{{ define "content-404" }}<p>missing {{ .RequestedPath }}</p>{{ end }}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "layout.html"), []byte(testTemplates), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "site.css"), []byte("body{color:red}"), 0o644))
	engine, err := templatex.Load(dir, nil)
	require.NoError(t, err)

	store, err := flatpage.NewMemoryStore(
		flatpage.Page{URL: "/", Title: "Home", Content: "Welcome", Sites: []int{1}},
		flatpage.Page{URL: "/about/", Title: "About", Content: "About *us*", Sites: []int{1}},
		flatpage.Page{URL: "/hidden/", Title: "Hidden", Content: "x", Sites: []int{2}},
	)
	require.NoError(t, err)

	cfg := config.Default()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := site.NewService(cfg, store, engine, nil, logger)
	srv := New(cfg, svc, logger, "scutils-test/1.0")

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func noRedirect(t *testing.T) *http.Client {
	t.Helper()
	return &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
}

func get(t *testing.T, client *http.Client, url string) (*http.Response, string) {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestPageRoutes(t *testing.T) {
	ts := newTestServer(t)
	client := noRedirect(t)

	resp, body := get(t, client, ts.URL+"/about/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "scutils-test/1.0", resp.Header.Get("Server"))
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "<h1>About</h1>")
	assert.Contains(t, body, "<em>us</em>")

	resp, _ = get(t, client, ts.URL+"/about?x=1")
	assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
	assert.Equal(t, "/about/?x=1", resp.Header.Get("Location"))

	resp, body = get(t, client, ts.URL+"/hidden/")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "missing /hidden")

	resp, _ = get(t, client, ts.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/about/", nil)
	require.NoError(t, err)
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestThemeAssets(t *testing.T) {
	ts := newTestServer(t)
	resp, body := get(t, http.DefaultClient, ts.URL+"/theme/site.css")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "body{color:red}", body)
}

func TestAPI(t *testing.T) {
	ts := newTestServer(t)

	resp, body := get(t, http.DefaultClient, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	resp, body = get(t, http.DefaultClient, ts.URL+"/api/pages")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Items []pageResponse `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	require.Len(t, list.Items, 2)
	assert.Equal(t, "/", list.Items[0].URL)
	assert.Equal(t, "/about/", list.Items[1].URL)
	assert.Empty(t, list.Items[1].Content)

	resp, body = get(t, http.DefaultClient, ts.URL+"/api/page?url=about")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var one pageResponse
	require.NoError(t, json.Unmarshal([]byte(body), &one))
	assert.Equal(t, "About *us*", one.Content)

	resp, _ = get(t, http.DefaultClient, ts.URL+"/api/page?url=/hidden/")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = get(t, http.DefaultClient, ts.URL+"/api/page")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPreview(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/preview", "application/json", strings.NewReader(`{"content":"# Title"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var payload struct {
		HTML string `json:"html"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Contains(t, payload.HTML, `<h1 id="title">Title</h1>`)

	resp2, err := http.Post(ts.URL+"/api/preview", "application/json", strings.NewReader(`{`))
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)

	resp3, body := get(t, http.DefaultClient, ts.URL+"/api/preview")
	assert.Equal(t, http.StatusMethodNotAllowed, resp3.StatusCode)
	assert.Contains(t, body, "method not allowed")
}

func TestSanitizeRequestPath(t *testing.T) {
	tests := map[string]string{
		"":          "/",
		"a/b":       "/a/b",
		"/a/../b/":  "/b",
		"//x//y//":  "/x/y",
		"/../../..": "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeRequestPath(in), "sanitizeRequestPath(%q)", in)
	}
}
