package flatpage

import (
	"context"
	"fmt"

	"github.com/iedon/scutils-go/content"
)

// Source exposes a Store to the content registry. Pages are keyed by URL.
type Source struct {
	store Store
}

func NewSource(store Store) *Source {
	return &Source{store: store}
}

// Register publishes store under Label.
func Register(reg *content.Registry, store Store) error {
	return reg.Register(Label, NewSource(store))
}

func (s *Source) Get(ctx context.Context, pk any) (content.Object, error) {
	url := NormalizeURL(fmt.Sprint(pk))
	p, ok, err := s.store.FindExact(ctx, url)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, content.ErrNotFound
	}
	return p, nil
}

func (s *Source) Latest(ctx context.Context, n int) ([]content.Object, error) {
	pages, err := s.store.Latest(ctx, n)
	if err != nil {
		return nil, err
	}
	objects := make([]content.Object, len(pages))
	for i, p := range pages {
		objects[i] = p
	}
	return objects, nil
}
