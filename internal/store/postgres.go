package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/proposal-analyzer/internal/db"
	"github.com/sells-group/proposal-analyzer/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

var reportColumns = []string{"id", "vendors", "vendor_count", "text_path", "pdf_path", "created_at"}

// upsertReportSQL is built once; re-saving an id replaces its paths.
var upsertReportSQL = func() string {
	sql, err := db.UpsertSQL(db.UpsertConfig{
		Table:        "reports",
		Columns:      reportColumns,
		ConflictKeys: []string{"id"},
	})
	if err != nil {
		panic(err)
	}
	return sql
}()

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS reports (
	id           TEXT PRIMARY KEY,
	vendors      JSONB NOT NULL,
	vendor_count INTEGER NOT NULL,
	text_path    TEXT NOT NULL,
	pdf_path     TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveReport(ctx context.Context, meta *model.ReportMeta) error {
	vendorsJSON, err := json.Marshal(meta.Vendors)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal vendors")
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}
	_, err = s.pool.Exec(ctx, upsertReportSQL,
		meta.ID, vendorsJSON, meta.VendorCount, meta.TextPath, meta.PDFPath, meta.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: save report %s", meta.ID)
}

func (s *PostgresStore) GetReport(ctx context.Context, id string) (*model.ReportMeta, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, vendors, vendor_count, text_path, pdf_path, created_at FROM reports WHERE id = $1`, id)
	meta, err := scanPostgresReport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: get report %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get report %s", id)
	}
	return meta, nil
}

func (s *PostgresStore) ListReports(ctx context.Context, filter ReportFilter) ([]model.ReportMeta, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, vendors, vendor_count, text_path, pdf_path, created_at FROM reports
		 ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limitOrDefault(filter.Limit), offsetOrZero(filter.Offset),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list reports")
	}
	defer rows.Close()

	var out []model.ReportMeta
	for rows.Next() {
		meta, err := scanPostgresReport(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan report")
		}
		out = append(out, *meta)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate reports")
}

func scanPostgresReport(row pgx.Row) (*model.ReportMeta, error) {
	var (
		meta        model.ReportMeta
		vendorsJSON []byte
	)
	if err := row.Scan(&meta.ID, &vendorsJSON, &meta.VendorCount, &meta.TextPath, &meta.PDFPath, &meta.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(vendorsJSON, &meta.Vendors); err != nil {
		return nil, eris.Wrap(err, "unmarshal vendors")
	}
	return &meta, nil
}
