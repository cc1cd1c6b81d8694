package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/proposal-analyzer/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return &PostgresStore{pool: mock}, mock
}

var reportCols = []string{"id", "vendors", "vendor_count", "text_path", "pdf_path", "created_at"}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS reports`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveReport_Upsert(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	created := time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO "reports" .* ON CONFLICT \("id"\) DO UPDATE`).
		WithArgs("relatorio_1", []byte(`["Alfa","Beta"]`), 2, "r/relatorio_1.md", "r/relatorio_1.pdf", created).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.SaveReport(context.Background(), &model.ReportMeta{
		ID:          "relatorio_1",
		Vendors:     []string{"Alfa", "Beta"},
		VendorCount: 2,
		TextPath:    "r/relatorio_1.md",
		PDFPath:     "r/relatorio_1.pdf",
		CreatedAt:   created,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetReport(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	created := time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, vendors, vendor_count, text_path, pdf_path, created_at FROM reports WHERE id = \$1`).
		WithArgs("relatorio_1").
		WillReturnRows(pgxmock.NewRows(reportCols).
			AddRow("relatorio_1", []byte(`["Alfa"]`), 1, "a.md", "a.pdf", created))

	got, err := s.GetReport(context.Background(), "relatorio_1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alfa"}, got.Vendors)
	assert.Equal(t, 1, got.VendorCount)
	assert.Equal(t, "a.pdf", got.PDFPath)
	assert.Equal(t, created, got.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetReport_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM reports WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetReport(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListReports(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`ORDER BY created_at DESC, id DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(defaultListLimit, 0).
		WillReturnRows(pgxmock.NewRows(reportCols).
			AddRow("b", []byte(`["Beta"]`), 1, "b.md", "b.pdf", now).
			AddRow("a", []byte(`["Alfa","Gama"]`), 2, "a.md", "a.pdf", now.Add(-time.Hour)))

	got, err := s.ListReports(context.Background(), ReportFilter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, []string{"Alfa", "Gama"}, got[1].Vendors)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListReports_QueryError(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM reports`).
		WithArgs(5, 10).
		WillReturnError(assert.AnError)

	_, err := s.ListReports(context.Background(), ReportFilter{Limit: 5, Offset: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: list reports")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListReports_NegativePaging(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM reports`).
		WithArgs(defaultListLimit, 0).
		WillReturnRows(pgxmock.NewRows(reportCols))

	got, err := s.ListReports(context.Background(), ReportFilter{Limit: -5, Offset: -3})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Close(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	mock.ExpectClose()
	require.NoError(t, s.Close())
}

func TestUpsertReportSQL(t *testing.T) {
	assert.Contains(t, upsertReportSQL, `"vendors" = EXCLUDED."vendors"`)
	assert.Contains(t, upsertReportSQL, "$6")
}
