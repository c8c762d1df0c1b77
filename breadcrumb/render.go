package breadcrumb

import (
	"context"
	"fmt"
	"strings"

	"github.com/iedon/scutils-go/flatpage"
)

const (
	// Separator is placed between crumbs.
	Separator = "&nbsp;&nbsp;&gt;&nbsp;&nbsp;"
	// HomeURL and HomeLabel make up the leading home crumb.
	HomeURL   = "/"
	HomeLabel = "Home"
)

// Crumb is one linked element of a trail.
type Crumb struct {
	URL   string
	Label string
}

// HTML renders the crumb as an anchor. Neither field is escaped.
func (c Crumb) HTML() string {
	return fmt.Sprintf(`<a href="%s">%s</a>`, c.URL, c.Label)
}

// Resolver finds the page stored at exactly prefix.
type Resolver interface {
	Resolve(ctx context.Context, prefix string) (flatpage.Page, bool, error)
}

// StoreResolver resolves prefixes with exact store lookups.
type StoreResolver struct {
	Store flatpage.Store
}

func (r StoreResolver) Resolve(ctx context.Context, prefix string) (flatpage.Page, bool, error) {
	return r.Store.FindExact(ctx, prefix)
}

// Renderer assembles breadcrumb trails. It holds no per-call state.
type Renderer struct {
	resolver Resolver
}

func NewRenderer(resolver Resolver) *Renderer {
	return &Renderer{resolver: resolver}
}

// NewStoreRenderer is shorthand for NewRenderer(StoreResolver{Store: store}).
func NewStoreRenderer(store flatpage.Store) *Renderer {
	return NewRenderer(StoreResolver{Store: store})
}

// Trail resolves every prefix in order and returns the crumbs for the ones
// that exist. A missing page is skipped; a store error aborts the trail.
func (r *Renderer) Trail(ctx context.Context, prefixes []string) ([]Crumb, error) {
	crumbs := make([]Crumb, 0, len(prefixes))
	for _, prefix := range prefixes {
		page, ok, err := r.resolver.Resolve(ctx, prefix)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", prefix, err)
		}
		if !ok {
			continue
		}
		crumbs = append(crumbs, Crumb{URL: page.URL, Label: page.Title})
	}
	return crumbs, nil
}

// Render resolves prefixes and joins the trail, see Join.
func (r *Renderer) Render(ctx context.Context, prefixes []string, finalTitle string, showHome bool) (string, error) {
	trail, err := r.Trail(ctx, prefixes)
	if err != nil {
		return "", err
	}
	return Join(trail, finalTitle, showHome), nil
}

// Join renders trail followed by the unlinked finalTitle. The home crumb is
// only added in front of a non-empty trail: with nothing resolved the result
// is finalTitle alone, whatever showHome says.
func Join(trail []Crumb, finalTitle string, showHome bool) string {
	if len(trail) == 0 {
		return finalTitle
	}
	parts := make([]string, 0, len(trail)+2)
	if showHome {
		parts = append(parts, Crumb{URL: HomeURL, Label: HomeLabel}.HTML())
	}
	for _, crumb := range trail {
		parts = append(parts, crumb.HTML())
	}
	parts = append(parts, finalTitle)
	return strings.Join(parts, Separator)
}
