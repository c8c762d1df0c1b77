package breadcrumb

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iedon/scutils-go/flatpage"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty", input: "", expected: nil},
		{name: "root", input: "/", expected: nil},
		{name: "nested", input: "/a/b/c/", expected: []string{"/a/", "/a/b/", "/a/b/c/"}},
		{name: "no slashes at the ends", input: "a/b", expected: []string{"/a/", "/a/b/"}},
		{name: "doubled slashes", input: "//a///b//", expected: []string{"/a/", "/a/b/"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Segment(tt.input)
			assert.Equal(t, tt.expected, got)
			for i := 1; i < len(got); i++ {
				assert.Greater(t, len(got[i]), len(got[i-1]))
				assert.Equal(t, got[i-1], got[i][:len(got[i-1])])
			}
		})
	}
}

func newRenderer(t *testing.T, pages ...flatpage.Page) *Renderer {
	t.Helper()
	store, err := flatpage.NewMemoryStore(pages...)
	require.NoError(t, err)
	return NewStoreRenderer(store)
}

const (
	home = `<a href="/">Home</a>`
	sep  = Separator
)

func TestRender(t *testing.T) {
	ctx := context.Background()
	pageA := flatpage.Page{URL: "/a/", Title: "A"}
	pageC := flatpage.Page{URL: "/a/b/c/", Title: "C"}

	tests := []struct {
		name     string
		pages    []flatpage.Page
		prefixes []string
		title    string
		showHome bool
		expected string
	}{
		{
			name:     "no prefixes",
			prefixes: nil,
			showHome: true,
			expected: "Title",
		},
		{
			name:     "one resolved prefix with home",
			pages:    []flatpage.Page{pageA},
			prefixes: []string{"/a/"},
			showHome: true,
			expected: home + sep + `<a href="/a/">A</a>` + sep + "Title",
		},
		{
			name:     "one resolved prefix without home",
			pages:    []flatpage.Page{pageA},
			prefixes: []string{"/a/"},
			showHome: false,
			expected: `<a href="/a/">A</a>` + sep + "Title",
		},
		{
			name:     "nothing resolves drops home",
			prefixes: []string{"/a/"},
			showHome: true,
			expected: "Title",
		},
		{
			name:     "missing middle prefix is skipped",
			pages:    []flatpage.Page{pageA, pageC},
			prefixes: []string{"/a/", "/a/b/", "/a/b/c/"},
			showHome: true,
			expected: home + sep + `<a href="/a/">A</a>` + sep + `<a href="/a/b/c/">C</a>` + sep + "Title",
		},
		{
			name:     "titles are not escaped",
			pages:    []flatpage.Page{{URL: "/a/", Title: "<b>A</b>"}},
			prefixes: []string{"/a/"},
			title:    "T & C",
			showHome: false,
			expected: `<a href="/a/"><b>A</b></a>` + sep + "T & C",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title := tt.title
			if title == "" {
				title = "Title"
			}
			got, err := newRenderer(t, tt.pages...).Render(ctx, tt.prefixes, title, tt.showHome)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	ctx := context.Background()
	r := newRenderer(t, flatpage.Page{URL: "/a/", Title: "A"}, flatpage.Page{URL: "/a/b/", Title: "B"})
	prefixes := Segment("/a/b/c/")

	first, err := r.Render(ctx, prefixes, "C", true)
	require.NoError(t, err)
	second, err := r.Render(ctx, prefixes, "C", true)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, home+sep+`<a href="/a/">A</a>`+sep+`<a href="/a/b/">B</a>`+sep+"C", first)
}

type failingResolver struct{ err error }

func (f failingResolver) Resolve(context.Context, string) (flatpage.Page, bool, error) {
	return flatpage.Page{}, false, f.err
}

func TestRenderPropagatesStoreErrors(t *testing.T) {
	boom := errors.New("store unavailable")
	_, err := NewRenderer(failingResolver{err: boom}).Render(context.Background(), []string{"/a/"}, "T", true)
	assert.ErrorIs(t, err, boom)
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "T", Join(nil, "T", true))
	assert.Equal(t, home+sep+`<a href="/x/">X</a>`+sep+"T", Join([]Crumb{{URL: "/x/", Label: "X"}}, "T", true))
}
