package fsutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyTree(t *testing.T) {
	src := t.TempDir()
	files := map[string]string{
		"site.css":        "body{}",
		"img/logo.svg":    "<svg/>",
		".hidden":         "secret",
		".git/config":     "[core]",
		"fonts/a/b.woff2": "font",
	}
	for name, body := range files {
		path := filepath.Join(src, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	stamp := time.Date(2023, time.March, 4, 5, 6, 7, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(src, "site.css"), stamp, stamp))

	dst := filepath.Join(t.TempDir(), "theme")
	require.NoError(t, CopyTree(src, dst))

	data, err := os.ReadFile(filepath.Join(dst, "img", "logo.svg"))
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(data))
	assert.FileExists(t, filepath.Join(dst, "fonts", "a", "b.woff2"))
	assert.NoFileExists(t, filepath.Join(dst, ".hidden"))
	assert.NoDirExists(t, filepath.Join(dst, ".git"))

	info, err := os.Stat(filepath.Join(dst, "site.css"))
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(stamp))
}

func TestCopyFileErrors(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, CopyFile(filepath.Join(dir, "missing"), filepath.Join(dir, "out")))
	assert.ErrorContains(t, CopyFile(dir, filepath.Join(dir, "out")), "not a regular file")
}
