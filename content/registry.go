package content

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrUnknownLabel is returned when no source is registered for a label.
	ErrUnknownLabel = errors.New("unknown content label")
	// ErrInvalidLabel reports a label that is not of the form "app.Model".
	ErrInvalidLabel = errors.New("invalid content label")
	// ErrDuplicateLabel is returned when a label is registered twice.
	ErrDuplicateLabel = errors.New("content label already registered")
	// ErrNotFound is returned by sources when the requested object does not exist.
	ErrNotFound = errors.New("object not found")
	// ErrInvalidLimit rejects negative "latest" counts.
	ErrInvalidLimit = errors.New("invalid limit")
)

// Object is anything that can be linked to from a template.
type Object interface {
	AbsoluteURL() string
}

// Source gives typed access to one kind of content.
type Source interface {
	// Get returns the object identified by pk or ErrNotFound.
	Get(ctx context.Context, pk any) (Object, error)
	// Latest returns up to n objects, newest first.
	Latest(ctx context.Context, n int) ([]Object, error)
}

// Registry maps "app.Model" labels to their sources. Sources are registered
// once at startup; lookups are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Source
}

func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

// Register binds label to src.
func (r *Registry) Register(label string, src Source) error {
	key, err := normalizeLabel(label)
	if err != nil {
		return err
	}
	if src == nil {
		return fmt.Errorf("register %s: nil source", label)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sources[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateLabel, label)
	}
	r.sources[key] = src
	return nil
}

// Resolve returns the source registered for label.
func (r *Registry) Resolve(label string) (Source, error) {
	key, err := normalizeLabel(label)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	src, ok := r.sources[key]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLabel, label)
	}
	return src, nil
}

// Labels lists registered labels in sorted order.
func (r *Registry) Labels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	labels := make([]string, 0, len(r.sources))
	for key := range r.sources {
		labels = append(labels, key)
	}
	sort.Strings(labels)
	return labels
}

// Get fetches a single object through the source registered for label.
func (r *Registry) Get(ctx context.Context, label string, pk any) (Object, error) {
	src, err := r.Resolve(label)
	if err != nil {
		return nil, err
	}
	obj, err := src.Get(ctx, pk)
	if err != nil {
		return nil, fmt.Errorf("%s %v: %w", label, pk, err)
	}
	return obj, nil
}

// Latest fetches the newest n objects registered under label.
func (r *Registry) Latest(ctx context.Context, label string, n int) ([]Object, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}
	src, err := r.Resolve(label)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return []Object{}, nil
	}
	return src.Latest(ctx, n)
}

// Labels are case-insensitive, matching the usual "app.Model" spelling.
func normalizeLabel(label string) (string, error) {
	trimmed := strings.TrimSpace(label)
	app, model, ok := strings.Cut(trimmed, ".")
	if !ok || strings.TrimSpace(app) == "" || strings.TrimSpace(model) == "" || strings.Contains(model, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	return strings.ToLower(app) + "." + strings.ToLower(model), nil
}
