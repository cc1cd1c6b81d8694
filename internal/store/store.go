// Package store indexes generated report artifacts so they can be listed and
// downloaded by id.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/proposal-analyzer/internal/config"
	"github.com/sells-group/proposal-analyzer/internal/model"
)

// ErrNotFound is returned when a report id is not indexed.
var ErrNotFound = eris.New("store: report not found")

// ReportFilter specifies criteria for listing reports.
type ReportFilter struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Store defines the persistence interface for the report index.
type Store interface {
	SaveReport(ctx context.Context, meta *model.ReportMeta) error
	GetReport(ctx context.Context, id string) (*model.ReportMeta, error)
	ListReports(ctx context.Context, filter ReportFilter) ([]model.ReportMeta, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

const defaultListLimit = 100

func limitOrDefault(n int) int {
	if n <= 0 {
		return defaultListLimit
	}
	return n
}

// offsetOrZero keeps negative offsets out of SQL; Postgres rejects them.
func offsetOrZero(n int) int {
	return max(n, 0)
}

// Open creates the Store described by cfg and runs its migration.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	var (
		st  Store
		err error
	)
	switch cfg.Driver {
	case "sqlite", "":
		st, err = NewSQLite(cfg.DatabaseURL)
	case "postgres":
		st, err = NewPostgres(ctx, cfg.DatabaseURL, &PoolConfig{MaxConns: cfg.MaxConns})
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}
