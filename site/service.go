package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/iedon/scutils-go/breadcrumb"
	"github.com/iedon/scutils-go/config"
	"github.com/iedon/scutils-go/flatpage"
	"github.com/iedon/scutils-go/fsutil"
	"github.com/iedon/scutils-go/renderer"
	"github.com/iedon/scutils-go/templatex"
)

// Service renders flat pages of one site through the theme templates.
type Service struct {
	cfg       *config.Config
	pages     flatpage.Store
	templates *templatex.Engine
	renderer  *renderer.Renderer
	crumbs    *breadcrumb.Renderer
	logger    *slog.Logger
}

// NewService constructs a Service instance. rend and logger may be nil.
func NewService(cfg *config.Config, pages flatpage.Store, templates *templatex.Engine, rend *renderer.Renderer, logger *slog.Logger) *Service {
	if rend == nil {
		rend = renderer.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:       cfg,
		pages:     pages,
		templates: templates,
		renderer:  rend,
		crumbs:    breadcrumb.NewStoreRenderer(pages),
		logger:    logger,
	}
}

// Page returns the page stored at url if it belongs to the configured site.
func (s *Service) Page(ctx context.Context, url string) (flatpage.Page, error) {
	p, ok, err := s.pages.FindForSite(ctx, flatpage.NormalizeURL(url), s.cfg.SiteID)
	if err != nil {
		return flatpage.Page{}, err
	}
	if !ok {
		return flatpage.Page{}, ErrPageNotFound
	}
	return p, nil
}

// ListPages returns the pages of the configured site ordered by URL.
func (s *Service) ListPages(ctx context.Context) ([]flatpage.Page, error) {
	all, err := s.pages.List(ctx)
	if err != nil {
		return nil, err
	}
	pages := make([]flatpage.Page, 0, len(all))
	for _, p := range all {
		if p.OnSite(s.cfg.SiteID) {
			pages = append(pages, p)
		}
	}
	return pages, nil
}

// CanonicalURL reports where a request for a URL lacking its trailing slash
// should be redirected. ok is false when no redirect applies.
func (s *Service) CanonicalURL(ctx context.Context, requested string) (string, bool, error) {
	if requested == "" || strings.HasSuffix(requested, "/") {
		return "", false, nil
	}
	_, err := s.Page(ctx, requested)
	if errors.Is(err, ErrPageNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return flatpage.NormalizeURL(requested), true, nil
}

// RenderPreview renders markdown content without persisting it.
func (s *Service) RenderPreview(content []byte) (*renderer.RenderResult, error) {
	return s.renderer.Render(content)
}

// ThemeDir returns the directory containing template assets, if any.
func (s *Service) ThemeDir() string {
	return s.templates.StaticDir
}

// BuildStatic renders every page of the site into static HTML.
func (s *Service) BuildStatic(ctx context.Context) error {
	pages, err := s.ListPages(ctx)
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return ErrNoPages
	}

	finalDir := s.cfg.OutputDir
	parent := filepath.Dir(finalDir)
	if parent == "" {
		parent = "."
	}
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("ensure output parent: %w", err)
	}

	tempDir, err := os.MkdirTemp(parent, ".__build-")
	if err != nil {
		return fmt.Errorf("create temp output dir: %w", err)
	}
	cleanTemp := true
	defer func() {
		if cleanTemp {
			_ = os.RemoveAll(tempDir)
		}
	}()

	for _, p := range pages {
		if err := s.writePage(ctx, tempDir, p); err != nil {
			return err
		}
	}
	if err := s.writeNotFoundPage(ctx, tempDir); err != nil {
		return err
	}

	if s.templates.StaticDir != "" {
		dst := filepath.Join(tempDir, "theme")
		if err := fsutil.CopyTree(s.templates.StaticDir, dst); err != nil {
			return fmt.Errorf("copy theme assets: %w", err)
		}
	}

	backupDir := finalDir + ".old"
	if err := os.RemoveAll(backupDir); err != nil {
		return fmt.Errorf("clean backup dir: %w", err)
	}
	if err := os.Rename(finalDir, backupDir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rotate old output: %w", err)
	}
	if err := os.Rename(tempDir, finalDir); err != nil {
		_ = os.Rename(backupDir, finalDir)
		return fmt.Errorf("activate new output: %w", err)
	}

	_ = os.RemoveAll(backupDir)
	cleanTemp = false
	s.logger.Info("static site built", "pages", len(pages), "output", finalDir)
	return nil
}

// outputPath maps a page URL to its index.html below baseDir.
func outputPath(baseDir, url string) string {
	rel := strings.Trim(flatpage.NormalizeURL(url), "/")
	return filepath.Join(baseDir, filepath.FromSlash(rel), "index.html")
}
