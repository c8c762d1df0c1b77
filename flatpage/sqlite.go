package flatpage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS flatpages (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		url           TEXT    NOT NULL UNIQUE,
		title         TEXT    NOT NULL,
		content       TEXT    NOT NULL DEFAULT '',
		template_name TEXT    NOT NULL DEFAULT '',
		updated_at    INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS flatpage_sites (
		flatpage_id INTEGER NOT NULL,
		site_id     INTEGER NOT NULL,
		PRIMARY KEY (flatpage_id, site_id)
	)`,
	`CREATE INDEX IF NOT EXISTS flatpages_updated_at ON flatpages (updated_at)`,
}

const pageColumns = `p.id, p.url, p.title, p.content, p.template_name, p.updated_at`

// SQLiteStore persists pages in a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (and migrates) the database at dsn. Use ":memory:" for a
// throwaway database.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) FindExact(ctx context.Context, url string) (Page, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM flatpages p WHERE p.url = ?`, url)
	return s.scanOne(ctx, row)
}

func (s *SQLiteStore) FindForSite(ctx context.Context, url string, siteID int) (Page, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+pageColumns+`
		FROM flatpages p
		JOIN flatpage_sites fs ON fs.flatpage_id = p.id
		WHERE p.url = ? AND fs.site_id = ?`, url, siteID)
	return s.scanOne(ctx, row)
}

func (s *SQLiteStore) List(ctx context.Context) ([]Page, error) {
	return s.query(ctx, `SELECT `+pageColumns+` FROM flatpages p ORDER BY p.url`)
}

func (s *SQLiteStore) Latest(ctx context.Context, n int) ([]Page, error) {
	if n <= 0 {
		return []Page{}, nil
	}
	return s.query(ctx, `SELECT `+pageColumns+` FROM flatpages p ORDER BY p.updated_at DESC, p.url LIMIT ?`, n)
}

func (s *SQLiteStore) Save(ctx context.Context, p Page) error {
	p, err := validate(p)
	if err != nil {
		return err
	}
	if p.Updated.IsZero() {
		p.Updated = s.now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save %s: %w", p.URL, err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `INSERT INTO flatpages (url, title, content, template_name, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			template_name = excluded.template_name,
			updated_at = excluded.updated_at`,
		p.URL, p.Title, p.Content, p.Template, p.Updated.UTC().UnixNano())
	if err != nil {
		return fmt.Errorf("save %s: %w", p.URL, err)
	}

	var id int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM flatpages WHERE url = ?`, p.URL).Scan(&id); err != nil {
		return fmt.Errorf("save %s: %w", p.URL, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM flatpage_sites WHERE flatpage_id = ?`, id); err != nil {
		return fmt.Errorf("save %s sites: %w", p.URL, err)
	}
	for _, site := range p.Sites {
		if _, err := tx.ExecContext(ctx, `INSERT INTO flatpage_sites (flatpage_id, site_id) VALUES (?, ?)`, id, site); err != nil {
			return fmt.Errorf("save %s sites: %w", p.URL, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) scanOne(ctx context.Context, row *sql.Row) (Page, bool, error) {
	p, err := scanPage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Page{}, false, nil
	}
	if err != nil {
		return Page{}, false, err
	}
	sites, err := s.sitesFor(ctx, p.ID)
	if err != nil {
		return Page{}, false, err
	}
	p.Sites = sites
	return p, true, nil
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]Page, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query flatpages: %w", err)
	}
	pages := make([]Page, 0, 16)
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	// Sites are loaded after the page cursor is closed: the pool holds a single connection.
	for i := range pages {
		sites, err := s.sitesFor(ctx, pages[i].ID)
		if err != nil {
			return nil, err
		}
		pages[i].Sites = sites
	}
	return pages, nil
}

func (s *SQLiteStore) sitesFor(ctx context.Context, id int64) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT site_id FROM flatpage_sites WHERE flatpage_id = ? ORDER BY site_id`, id)
	if err != nil {
		return nil, fmt.Errorf("query sites: %w", err)
	}
	defer rows.Close()
	var sites []int
	for rows.Next() {
		var site int
		if err := rows.Scan(&site); err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPage(row scanner) (Page, error) {
	var (
		p       Page
		updated int64
	)
	if err := row.Scan(&p.ID, &p.URL, &p.Title, &p.Content, &p.Template, &updated); err != nil {
		return Page{}, err
	}
	p.Updated = time.Unix(0, updated).UTC()
	return p, nil
}
