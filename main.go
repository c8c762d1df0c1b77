package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/iedon/scutils-go/config"
	"github.com/iedon/scutils-go/content"
	"github.com/iedon/scutils-go/filters"
	"github.com/iedon/scutils-go/flatpage"
	"github.com/iedon/scutils-go/renderer"
	"github.com/iedon/scutils-go/server"
	"github.com/iedon/scutils-go/site"
	"github.com/iedon/scutils-go/templatex"
)

func main() {
	cfgPath := flag.String("config", "config.json", "path to configuration file")
	buildFlag := flag.Bool("build", false, "export the site as static HTML and exit")
	importDir := flag.String("import", "", "import markdown pages from this directory before starting")
	flag.Parse()

	// .env is optional; real environment variables take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("dotenv", "error", err)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	logger.Info("starting", "version", SERVER_SIGNATURE, "site", cfg.SiteID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *buildFlag, *importDir, logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, build bool, importDir string, logger *slog.Logger) error {
	db, err := flatpage.OpenSQLite(ctx, cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	pages, err := openPageStore(ctx, cfg, db, logger)
	if err != nil {
		return err
	}
	defer pages.Close()

	if dir := firstNonEmpty(importDir, cfg.ImportDir); dir != "" {
		n, err := flatpage.ImportDir(ctx, pages, dir, cfg.SiteID)
		if err != nil {
			return err
		}
		logger.Info("imported pages", "dir", dir, "count", n)
	}

	registry := content.NewRegistry()
	if err := flatpage.Register(registry, pages); err != nil {
		return err
	}

	rend := renderer.New()
	helpers, err := filters.New(filters.Deps{
		Pages:      pages,
		Registry:   registry,
		Markdown:   rend,
		SiteID:     cfg.SiteID,
		Location:   cfg.Location(),
		DateFormat: cfg.DateFormat,
		Locale:     cfg.MondayLocale(),
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	templates, err := templatex.Load(cfg.TemplateDir, helpers)
	if err != nil {
		return err
	}

	svc := site.NewService(cfg, pages, templates, rend, logger)

	if build {
		if err := svc.BuildStatic(ctx); err != nil {
			return err
		}
		logger.Info("static build completed", "output", cfg.OutputDir)
		return nil
	}

	return server.New(cfg, svc, logger, SERVER_SIGNATURE).Start(ctx)
}

// openPageStore fronts the database with Redis when a cache is configured.
func openPageStore(ctx context.Context, cfg *config.Config, db flatpage.Store, logger *slog.Logger) (*flatpage.CachedStore, error) {
	if !cfg.Redis.Enabled() {
		return flatpage.NewCachedStore(db, nil, 0, "", logger), nil
	}
	client, err := flatpage.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		return nil, err
	}
	logger.Info("page cache enabled", "ttl", cfg.Redis.TTL())
	return flatpage.NewCachedStore(db, client, cfg.Redis.TTL(), cfg.Redis.Prefix, logger), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
