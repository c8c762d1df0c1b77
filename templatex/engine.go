package templatex

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	DefaultContentTemplate  = "content-default"
	NotFoundContentTemplate = "content-404"
	LayoutTemplate          = "layout"
)

// Helpers supplies template functions bound to a request context. The map
// returned for context.Background() is used at parse time to declare names.
type Helpers interface {
	FuncMap(ctx context.Context) template.FuncMap
}

// Engine is a thin wrapper around Go templates that rebinds helper functions
// to every render's context.
type Engine struct {
	templates *template.Template
	helpers   Helpers
	StaticDir string
}

// PageData represents the data model expected by the default layout.
type PageData struct {
	Title            string
	PageTitle        string
	SiteName         string
	URL              string
	RequestedPath    string
	ContentHTML      template.HTML
	ContentTemplate  string
	BodyHTML         template.HTML
	ServerFooterHTML template.HTML
	Sections         []TOCEntry
	Breadcrumbs      []Breadcrumb
	CrumbsHTML       template.HTML
	LastUpdatedISO   string
	LastUpdated      string
	Meta             Meta
}

// Meta holds SEO-oriented metadata for the rendered page.
type Meta struct {
	Description   string
	OpenGraphType string
	OpenGraphSite string
}

// TOCEntry models a single heading for sidebar navigation.
type TOCEntry struct {
	ID    string
	Text  string
	Level int
}

// Breadcrumb models a single breadcrumb entry for navigation.
type Breadcrumb struct {
	Title   string
	Path    string
	Current bool
}

func baseFuncs() template.FuncMap {
	return template.FuncMap{
		"safeHTML": func(v any) template.HTML {
			switch value := v.(type) {
			case template.HTML:
				return value
			case string:
				return template.HTML(value)
			default:
				return ""
			}
		},
	}
}

// Load instantiates an engine using files from templateDir. helpers may be nil.
func Load(templateDir string, helpers Helpers) (*Engine, error) {
	if templateDir == "" {
		return nil, fmt.Errorf("template directory not configured")
	}

	engine := &Engine{helpers: helpers}

	files := make([]string, 0)
	mainFiles, err := filepath.Glob(filepath.Join(templateDir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("glob main templates: %w", err)
	}
	files = append(files, mainFiles...)

	partialsDir := filepath.Join(templateDir, "partials")
	if info, err := os.Stat(partialsDir); err == nil && info.IsDir() {
		partialFiles, err := filepath.Glob(filepath.Join(partialsDir, "*.html"))
		if err != nil {
			return nil, fmt.Errorf("glob partial templates: %w", err)
		}
		files = append(files, partialFiles...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found in %s", templateDir)
	}

	sort.Strings(files)

	tpl, err := template.New("root").Funcs(engine.funcs(context.Background())).ParseFiles(files...)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	for _, name := range []string{LayoutTemplate, DefaultContentTemplate, NotFoundContentTemplate} {
		if tpl.Lookup(name) == nil {
			return nil, fmt.Errorf("template %q is not defined", name)
		}
	}

	engine.templates = tpl

	assetsPath := filepath.Join(templateDir, "assets")
	if info, err := os.Stat(assetsPath); err == nil && info.IsDir() {
		engine.StaticDir = assetsPath
	}

	return engine, nil
}

// Has reports whether a template called name is defined.
func (e *Engine) Has(name string) bool {
	return e.templates != nil && strings.TrimSpace(name) != "" && e.templates.Lookup(name) != nil
}

// Render writes the rendered layout into the provided writer.
func (e *Engine) Render(ctx context.Context, w io.Writer, data *PageData) error {
	if e.templates == nil {
		return fmt.Errorf("template engine not initialized")
	}
	if data != nil {
		if !e.Has(data.ContentTemplate) {
			data.ContentTemplate = DefaultContentTemplate
		}
		if strings.TrimSpace(data.RequestedPath) == "" {
			data.RequestedPath = data.URL
		}
	}

	// The parsed set is never executed directly, so it can be cloned for
	// every render.
	tpl, err := e.templates.Clone()
	if err != nil {
		return fmt.Errorf("clone templates: %w", err)
	}
	tpl.Funcs(e.funcs(ctx))

	// Content templates are chosen per page, so they render first and the
	// layout embeds the result as BodyHTML.
	if data != nil {
		var body bytes.Buffer
		if err := tpl.ExecuteTemplate(&body, data.ContentTemplate, data); err != nil {
			return fmt.Errorf("render %s: %w", data.ContentTemplate, err)
		}
		data.BodyHTML = template.HTML(body.String())
	}
	return tpl.ExecuteTemplate(w, LayoutTemplate, data)
}

func (e *Engine) funcs(ctx context.Context) template.FuncMap {
	funcs := baseFuncs()
	if e.helpers != nil {
		maps.Copy(funcs, e.helpers.FuncMap(ctx))
	}
	return funcs
}
