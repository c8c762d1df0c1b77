package flatpage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	// ErrInvalidPage is returned when a page fails validation on save.
	ErrInvalidPage = errors.New("invalid flat page")
)

// Store is the page collaborator. Misses are reported through the boolean
// result, never as errors.
type Store interface {
	FindExact(ctx context.Context, url string) (Page, bool, error)
	FindForSite(ctx context.Context, url string, siteID int) (Page, bool, error)
	// List returns every page ordered by URL.
	List(ctx context.Context) ([]Page, error)
	// Latest returns up to n pages, most recently updated first.
	Latest(ctx context.Context, n int) ([]Page, error)
	// Save inserts or replaces the page stored under p.URL.
	Save(ctx context.Context, p Page) error
}

func validate(p Page) (Page, error) {
	p.URL = NormalizeURL(p.URL)
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return p, fmt.Errorf("%w: %s: empty title", ErrInvalidPage, p.URL)
	}
	sites := slices.Clone(p.Sites)
	slices.Sort(sites)
	p.Sites = slices.Compact(sites)
	return p, nil
}

// MemoryStore keeps pages in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	pages  map[string]Page
	nextID int64
	now    func() time.Time
}

func NewMemoryStore(pages ...Page) (*MemoryStore, error) {
	s := &MemoryStore{pages: make(map[string]Page), now: time.Now}
	for _, p := range pages {
		if err := s.Save(context.Background(), p); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *MemoryStore) FindExact(_ context.Context, url string) (Page, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pages[url]
	if !ok {
		return Page{}, false, nil
	}
	return clonePage(p), true, nil
}

func (s *MemoryStore) FindForSite(ctx context.Context, url string, siteID int) (Page, bool, error) {
	p, ok, err := s.FindExact(ctx, url)
	if err != nil || !ok || !p.OnSite(siteID) {
		return Page{}, false, err
	}
	return p, true, nil
}

func (s *MemoryStore) List(_ context.Context) ([]Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pages := make([]Page, 0, len(s.pages))
	for _, p := range s.pages {
		pages = append(pages, clonePage(p))
	}
	sort.Slice(pages, func(i, j int) bool {
		return pages[i].URL < pages[j].URL
	})
	return pages, nil
}

func (s *MemoryStore) Latest(ctx context.Context, n int) ([]Page, error) {
	if n <= 0 {
		return []Page{}, nil
	}
	pages, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].Updated.After(pages[j].Updated)
	})
	if len(pages) > n {
		pages = pages[:n]
	}
	return pages, nil
}

func (s *MemoryStore) Save(_ context.Context, p Page) error {
	p, err := validate(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.pages[p.URL]; ok {
		p.ID = existing.ID
	} else {
		s.nextID++
		p.ID = s.nextID
	}
	if p.Updated.IsZero() {
		p.Updated = s.now().UTC()
	}
	s.pages[p.URL] = p
	return nil
}

func clonePage(p Page) Page {
	p.Sites = slices.Clone(p.Sites)
	return p
}
