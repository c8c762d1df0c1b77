package site

import (
	"github.com/iedon/scutils-go/breadcrumb"
	"github.com/iedon/scutils-go/templatex"
)

// buildBreadcrumbs mirrors breadcrumb.Join as structured entries: the home
// crumb only leads a non-empty trail and the current title is always last.
func buildBreadcrumbs(trail []breadcrumb.Crumb, title string) []templatex.Breadcrumb {
	crumbs := make([]templatex.Breadcrumb, 0, len(trail)+2)
	if len(trail) > 0 {
		crumbs = append(crumbs, templatex.Breadcrumb{Title: breadcrumb.HomeLabel, Path: breadcrumb.HomeURL})
	}
	for _, crumb := range trail {
		crumbs = append(crumbs, templatex.Breadcrumb{Title: crumb.Label, Path: crumb.URL})
	}
	crumbs = append(crumbs, templatex.Breadcrumb{Title: title, Current: true})
	return crumbs
}
