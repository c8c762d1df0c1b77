// Package filters provides the helper functions available to page templates:
// date formatting, flat page lookups, breadcrumbs, weekday names and content
// registry access. Collaborators are injected through Deps; nothing is
// registered globally.
package filters

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"time"

	"github.com/goodsign/monday"

	"github.com/iedon/scutils-go/breadcrumb"
	"github.com/iedon/scutils-go/content"
	"github.com/iedon/scutils-go/flatpage"
	"github.com/iedon/scutils-go/renderer"
)

// DefaultDateFormat is used when Deps.DateFormat is empty.
const DefaultDateFormat = "Jan 2, 2006"

// Deps are the collaborators template helpers read from.
type Deps struct {
	Pages      flatpage.Store
	Registry   *content.Registry
	Crumbs     *breadcrumb.Renderer
	Markdown   *renderer.Renderer
	SiteID     int
	Location   *time.Location
	DateFormat string
	Locale     monday.Locale
	Logger     *slog.Logger
}

// Set is a bundle of template helpers bound to one context.
type Set struct {
	deps     Deps
	ctx      context.Context
	days     [7]string
	dayAbbrs [7]string
}

// New validates deps and precomputes localized weekday names.
func New(deps Deps) (*Set, error) {
	if deps.Pages == nil {
		return nil, errors.New("filters: page store is required")
	}
	if deps.Registry == nil {
		deps.Registry = content.NewRegistry()
	}
	if deps.Crumbs == nil {
		deps.Crumbs = breadcrumb.NewStoreRenderer(deps.Pages)
	}
	if deps.Markdown == nil {
		deps.Markdown = renderer.New()
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.DateFormat == "" {
		deps.DateFormat = DefaultDateFormat
	}
	if deps.Locale == "" {
		deps.Locale = monday.LocaleEnUS
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	s := &Set{deps: deps, ctx: context.Background()}
	// 2024-01-01 was a Monday; index 0 is Monday as in the calendar module.
	monday0 := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	for i := range s.days {
		day := monday0.AddDate(0, 0, i)
		s.days[i] = monday.Format(day, "Monday", deps.Locale)
		s.dayAbbrs[i] = monday.Format(day, "Mon", deps.Locale)
	}
	return s, nil
}

// WithContext returns a copy of s whose store lookups use ctx.
func (s *Set) WithContext(ctx context.Context) *Set {
	clone := *s
	clone.ctx = ctx
	return &clone
}

// FuncMap satisfies templatex.Helpers.
func (s *Set) FuncMap(ctx context.Context) template.FuncMap {
	bound := s.WithContext(ctx)
	return template.FuncMap{
		"split":        bound.Split,
		"dateTZ":       bound.DateTZ,
		"flatpage":     bound.FlatPage,
		"nologout":     bound.NoLogout,
		"crumbs":       bound.Crumbs,
		"crumbsNoHome": bound.CrumbsNoHome,
		"flatpageTree": bound.FlatPageTree,
		"flatpageMenu": bound.FlatPageMenu,
		"weekday":      bound.Weekday,
		"weekdayAbbr":  bound.WeekdayAbbr,
		"objectURL":    bound.ObjectURL,
		"firstName":    bound.FirstName,
		"latest":       bound.Latest,
		"markdown":     bound.Markdown,
	}
}
