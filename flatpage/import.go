package flatpage

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var frontMatterParser = goldmark.New(goldmark.WithExtensions(meta.Meta))

// ImportDir loads every Markdown file below dir into store. Front matter keys
// title, url, template and sites override the values derived from the file
// path; pages without a sites list are published on defaultSite.
func ImportDir(ctx context.Context, store Store, dir string, defaultSite int) (int, error) {
	imported := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", rel, err)
		}
		info, err := d.Info()
		if err != nil {
			return err
		}

		p, err := parsePageSource(filepath.ToSlash(rel), src, defaultSite)
		if err != nil {
			return err
		}
		p.Updated = info.ModTime().UTC()
		if err := store.Save(ctx, p); err != nil {
			return fmt.Errorf("import %s: %w", rel, err)
		}
		imported++
		return nil
	})
	return imported, err
}

func parsePageSource(rel string, src []byte, defaultSite int) (Page, error) {
	pctx := parser.NewContext()
	frontMatterParser.Parser().Parse(text.NewReader(src), parser.WithContext(pctx))
	fields, err := meta.TryGet(pctx)
	if err != nil {
		return Page{}, fmt.Errorf("front matter %s: %w", rel, err)
	}

	p := Page{
		URL:     urlFromPath(rel),
		Title:   deriveTitle(rel),
		Content: string(stripFrontMatter(src)),
		Sites:   []int{defaultSite},
	}
	if v, ok := fields["title"].(string); ok && strings.TrimSpace(v) != "" {
		p.Title = v
	}
	if v, ok := fields["url"].(string); ok && strings.TrimSpace(v) != "" {
		p.URL = NormalizeURL(v)
	}
	if v, ok := fields["template"].(string); ok {
		p.Template = strings.TrimSpace(v)
	}
	if raw, ok := fields["sites"].([]interface{}); ok {
		sites := make([]int, 0, len(raw))
		for _, item := range raw {
			switch site := item.(type) {
			case int:
				sites = append(sites, site)
			case float64:
				sites = append(sites, int(site))
			default:
				return Page{}, fmt.Errorf("front matter %s: invalid site %v", rel, item)
			}
		}
		p.Sites = sites
	}
	return p, nil
}

// urlFromPath maps "wiki/setup.md" to "/wiki/setup/" and "wiki/index.md" to "/wiki/".
func urlFromPath(rel string) string {
	trimmed := strings.TrimSuffix(rel, filepath.Ext(rel))
	if base := filepath.Base(trimmed); strings.EqualFold(base, "index") {
		trimmed = strings.TrimSuffix(trimmed, base)
	}
	return NormalizeURL(trimmed)
}

func deriveTitle(rel string) string {
	name := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	if strings.EqualFold(name, "index") {
		if dir := filepath.Base(filepath.Dir(rel)); dir != "." && dir != "/" {
			name = dir
		} else {
			name = "Home"
		}
	}
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.TrimSpace(name)
	if name == "" {
		return "Untitled"
	}
	return cases.Title(language.English).String(name)
}

func stripFrontMatter(src []byte) []byte {
	lines := bytes.SplitAfter(src, []byte("\n"))
	if len(lines) == 0 || strings.TrimSpace(string(lines[0])) != "---" {
		return src
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(string(lines[i])) == "---" {
			return bytes.TrimLeft(bytes.Join(lines[i+1:], nil), "\r\n")
		}
	}
	return src
}
