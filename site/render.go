package site

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"html/template"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/goodsign/monday"

	"github.com/iedon/scutils-go/breadcrumb"
	"github.com/iedon/scutils-go/flatpage"
	"github.com/iedon/scutils-go/templatex"
)

const notFoundTitle = "404 - Not found"

// RenderPage renders a single flat page into layout data.
func (s *Service) RenderPage(ctx context.Context, url string) (*templatex.PageData, error) {
	p, err := s.Page(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := s.renderDocument(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.pageData(doc), nil
}

// RenderFullPage renders and minifies a page ready to be written to the response.
func (s *Service) RenderFullPage(ctx context.Context, url string) ([]byte, error) {
	data, err := s.RenderPage(ctx, url)
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, data)
}

// RenderNotFoundPage renders a themed 404 page.
func (s *Service) RenderNotFoundPage(ctx context.Context, requestedPath string) ([]byte, error) {
	data := &templatex.PageData{
		Title:            notFoundTitle,
		PageTitle:        s.pageTitle(notFoundTitle),
		SiteName:         s.siteName(),
		ContentTemplate:  templatex.NotFoundContentTemplate,
		ServerFooterHTML: template.HTML(s.cfg.ServerFooter),
		Breadcrumbs:      buildBreadcrumbs(nil, notFoundTitle),
		CrumbsHTML:       template.HTML(html.EscapeString(notFoundTitle)),
	}
	sanitized := strings.TrimSpace(requestedPath)
	if sanitized != "" {
		sanitized = sanitizeRequestedPath(sanitized)
	}
	data.RequestedPath = sanitized
	description := "The page you are looking for could not be found."
	if sanitized != "" && sanitized != "/" {
		description = fmt.Sprintf("The requested path %s could not be found.", sanitized)
	}
	data.Meta = s.buildMeta(description, description, "website")
	return s.execute(ctx, data)
}

func sanitizeRequestedPath(raw string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(raw), "/")
	cleaned := path.Clean("/" + trimmed)
	if cleaned == "." || cleaned == "" {
		return "/"
	}
	return cleaned
}

func (s *Service) renderDocument(ctx context.Context, p flatpage.Page) (page, error) {
	result, err := s.renderer.Render([]byte(p.Content))
	if err != nil {
		return page{}, fmt.Errorf("render %s: %w", p.URL, err)
	}
	trail, err := s.crumbs.Trail(ctx, breadcrumb.Segment(p.URL))
	if err != nil {
		return page{}, err
	}

	sections := make([]templatex.TOCEntry, 0, len(result.Headings))
	for _, h := range result.Headings {
		sections = append(sections, templatex.TOCEntry{ID: h.ID, Text: h.Text, Level: h.Level})
	}
	return page{
		Page:     p,
		HTML:     template.HTML(result.HTML),
		Sections: sections,
		Summary:  summarize(result.PlainText),
		Trail:    trail,
	}, nil
}

func (s *Service) pageData(doc page) *templatex.PageData {
	var lastUpdatedISO, lastUpdated string
	if !doc.Updated.IsZero() {
		lastUpdatedISO = doc.Updated.UTC().Format(time.RFC3339)
		lastUpdated = monday.Format(doc.Updated.In(s.cfg.Location()), s.cfg.DateFormat, s.cfg.MondayLocale())
	}

	data := &templatex.PageData{
		Title:            doc.Title,
		PageTitle:        s.pageTitle(doc.Title),
		SiteName:         s.siteName(),
		URL:              doc.URL,
		RequestedPath:    doc.URL,
		ContentHTML:      doc.HTML,
		ContentTemplate:  templateName(doc.Template),
		ServerFooterHTML: template.HTML(s.cfg.ServerFooter),
		Sections:         doc.Sections,
		Breadcrumbs:      buildBreadcrumbs(doc.Trail, doc.Title),
		CrumbsHTML:       template.HTML(escapedTrail(doc.Trail, doc.Title)),
		LastUpdatedISO:   lastUpdatedISO,
		LastUpdated:      lastUpdated,
	}
	data.Meta = s.buildMeta(doc.Summary, doc.Title, "article")
	return data
}

// templateName maps a page's template field to a defined content template.
// Both "wiki" and "content-wiki.html" select "content-wiki".
func templateName(raw string) string {
	name := strings.TrimSuffix(path.Base(strings.TrimSpace(raw)), ".html")
	if name == "" || name == "." || name == "/" {
		return templatex.DefaultContentTemplate
	}
	if !strings.HasPrefix(name, "content-") {
		name = "content-" + name
	}
	return name
}

func escapedTrail(trail []breadcrumb.Crumb, title string) string {
	escaped := make([]breadcrumb.Crumb, len(trail))
	for i, crumb := range trail {
		escaped[i] = breadcrumb.Crumb{URL: html.EscapeString(crumb.URL), Label: html.EscapeString(crumb.Label)}
	}
	return breadcrumb.Join(escaped, html.EscapeString(title), true)
}

func (s *Service) execute(ctx context.Context, data *templatex.PageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.templates.Render(ctx, &buf, data); err != nil {
		return nil, err
	}
	return s.renderer.MinifyHTML(buf.Bytes())
}

func (s *Service) writePage(ctx context.Context, baseDir string, p flatpage.Page) error {
	body, err := s.RenderFullPage(ctx, p.URL)
	if err != nil {
		return fmt.Errorf("render %s: %w", p.URL, err)
	}
	target := outputPath(baseDir, p.URL)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(target, body, 0o644); err != nil {
		return err
	}
	if !p.Updated.IsZero() {
		stamp := p.Updated.UTC()
		if err := os.Chtimes(target, stamp, stamp); err != nil {
			return fmt.Errorf("set mod time %s: %w", p.URL, err)
		}
	}
	return nil
}

func (s *Service) writeNotFoundPage(ctx context.Context, baseDir string) error {
	body, err := s.RenderNotFoundPage(ctx, "")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(baseDir, "404.html"), body, 0o644)
}

func (s *Service) buildMeta(summary, fallback, ogType string) templatex.Meta {
	if ogType == "" {
		ogType = "website"
	}
	description := metaDescription(summary, fallback)
	if description == "" {
		description = s.siteName()
	}
	return templatex.Meta{
		Description:   description,
		OpenGraphType: ogType,
		OpenGraphSite: s.siteName(),
	}
}

func (s *Service) siteName() string {
	if name := strings.TrimSpace(s.cfg.SiteName); name != "" {
		return name
	}
	return "Untitled"
}

func (s *Service) pageTitle(raw string) string {
	title := strings.TrimSpace(raw)
	if title == "" {
		return s.siteName()
	}
	return fmt.Sprintf("%s - %s", title, s.siteName())
}
