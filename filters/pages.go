package filters

import (
	"fmt"
	"html/template"
	"reflect"
	"strings"

	"github.com/iedon/scutils-go/breadcrumb"
	"github.com/iedon/scutils-go/flatpage"
)

const treeIndent = "&nbsp;&nbsp;&nbsp;"

// FlatPage returns the content of the page at value on the configured site,
// or "" when there is none. When arg is given and value contains "%s", the
// placeholder is replaced first: {{ flatpage "tags/%s" .Name }}. Blank
// arguments such as "", 0 or false leave value untouched.
func (s *Set) FlatPage(value string, arg ...any) (string, error) {
	if len(arg) > 0 && truthy(arg[0]) && strings.Contains(value, "%s") {
		value = strings.Replace(value, "%s", fmt.Sprint(arg[0]), 1)
	}
	page, ok, err := s.deps.Pages.FindForSite(s.ctx, flatpage.NormalizeURL(value), s.deps.SiteID)
	if err != nil {
		return "", fmt.Errorf("flatpage %s: %w", value, err)
	}
	if !ok {
		return "", nil
	}
	return page.Content, nil
}

// Crumbs renders the breadcrumb trail for url ending in title, led by a
// home link. The result is raw HTML; pipe it through safeHTML.
func (s *Set) Crumbs(url, title string) (string, error) {
	return s.deps.Crumbs.Render(s.ctx, breadcrumb.Segment(url), title, true)
}

// CrumbsNoHome is Crumbs without the home link.
func (s *Set) CrumbsNoHome(url, title string) (string, error) {
	return s.deps.Crumbs.Render(s.ctx, breadcrumb.Segment(url), title, false)
}

// FlatPageTree lists every page nested below a top-level section, indented
// by depth and ordered by URL, after a home link.
func (s *Set) FlatPageTree() (template.HTML, error) {
	pages, err := s.deps.Pages.List(s.ctx)
	if err != nil {
		return "", fmt.Errorf("flatpage tree: %w", err)
	}
	var b strings.Builder
	b.WriteString(`<p><a href="/">Home</a></p>`)
	for _, page := range pages {
		// "/wiki/a/b/" splits into "", "wiki", "a", "b", "": depth 2.
		depth := len(strings.Split(page.URL, "/")) - 3
		if depth <= 0 {
			continue
		}
		title := template.HTMLEscapeString(page.Title)
		fmt.Fprintf(&b, `<p>%s-&nbsp;&nbsp;<a href="%s" title="%s">%s</a></p>`,
			strings.Repeat(treeIndent, depth), template.HTMLEscapeString(page.URL), title, title)
	}
	return template.HTML(b.String()), nil
}

// FlatPageMenu lists every page as an unordered list ordered by URL.
func (s *Set) FlatPageMenu() (template.HTML, error) {
	pages, err := s.deps.Pages.List(s.ctx)
	if err != nil {
		return "", fmt.Errorf("flatpage menu: %w", err)
	}
	var b strings.Builder
	b.WriteString("<ul>")
	for _, page := range pages {
		title := template.HTMLEscapeString(page.Title)
		fmt.Fprintf(&b, `<li><a href="%s" title="%s">%s</a></li>`, template.HTMLEscapeString(page.URL), title, title)
	}
	b.WriteString("</ul>")
	return template.HTML(b.String()), nil
}

// Markdown renders page content to HTML.
func (s *Set) Markdown(src string) (template.HTML, error) {
	res, err := s.deps.Markdown.Render([]byte(src))
	if err != nil {
		return "", err
	}
	return template.HTML(res.HTML), nil
}

// truthy reports whether v is set: non-nil, non-zero and, for collections,
// non-empty.
func truthy(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array, reflect.Chan:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	default:
		return !rv.IsZero()
	}
}
