package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/proposal-analyzer/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS reports (
	id           TEXT PRIMARY KEY,
	vendors      TEXT NOT NULL,
	vendor_count INTEGER NOT NULL,
	text_path    TEXT NOT NULL,
	pdf_path     TEXT NOT NULL,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveReport(ctx context.Context, meta *model.ReportMeta) error {
	vendorsJSON, err := json.Marshal(meta.Vendors)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal vendors")
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (id, vendors, vendor_count, text_path, pdf_path, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		meta.ID, string(vendorsJSON), meta.VendorCount, meta.TextPath, meta.PDFPath, meta.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert report %s", meta.ID)
}

func (s *SQLiteStore) GetReport(ctx context.Context, id string) (*model.ReportMeta, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, vendors, vendor_count, text_path, pdf_path, created_at FROM reports WHERE id = ?`, id)
	meta, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: get report %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get report %s", id)
	}
	return meta, nil
}

func (s *SQLiteStore) ListReports(ctx context.Context, filter ReportFilter) ([]model.ReportMeta, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, vendors, vendor_count, text_path, pdf_path, created_at FROM reports
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		limitOrDefault(filter.Limit), offsetOrZero(filter.Offset),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list reports")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.ReportMeta
	for rows.Next() {
		meta, err := scanReport(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan report")
		}
		out = append(out, *meta)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate reports")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanReport(row scannable) (*model.ReportMeta, error) {
	var (
		meta        model.ReportMeta
		vendorsJSON string
	)
	if err := row.Scan(&meta.ID, &vendorsJSON, &meta.VendorCount, &meta.TextPath, &meta.PDFPath, &meta.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(vendorsJSON), &meta.Vendors); err != nil {
		return nil, eris.Wrap(err, "unmarshal vendors")
	}
	return &meta, nil
}
