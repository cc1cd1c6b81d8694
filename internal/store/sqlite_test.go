package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/proposal-analyzer/internal/config"
	"github.com/sells-group/proposal-analyzer/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func sampleMeta(id string, created time.Time) *model.ReportMeta {
	return &model.ReportMeta{
		ID:          id,
		Vendors:     []string{"Alfa", "Beta"},
		VendorCount: 2,
		TextPath:    "reports/" + id + ".md",
		PDFPath:     "reports/" + id + ".pdf",
		CreatedAt:   created,
	}
}

func TestSQLite_SaveAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	created := time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)

	require.NoError(t, st.SaveReport(ctx, sampleMeta("relatorio_1", created)))

	got, err := st.GetReport(ctx, "relatorio_1")
	require.NoError(t, err)
	assert.Equal(t, "relatorio_1", got.ID)
	assert.Equal(t, []string{"Alfa", "Beta"}, got.Vendors)
	assert.Equal(t, 2, got.VendorCount)
	assert.Equal(t, "reports/relatorio_1.md", got.TextPath)
	assert.Equal(t, "reports/relatorio_1.pdf", got.PDFPath)
	assert.True(t, created.Equal(got.CreatedAt), "created_at round trip: %v", got.CreatedAt)
}

func TestSQLite_GetMissing(t *testing.T) {
	st := newTestSQLiteStore(t)
	_, err := st.GetReport(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_SaveDuplicateID(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	require.NoError(t, st.SaveReport(ctx, sampleMeta("dup", time.Now().UTC())))
	err := st.SaveReport(ctx, sampleMeta("dup", time.Now().UTC()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite: insert report dup")
}

func TestSQLite_SaveSetsCreatedAt(t *testing.T) {
	st := newTestSQLiteStore(t)
	meta := sampleMeta("stamp", time.Time{})
	require.NoError(t, st.SaveReport(context.Background(), meta))
	assert.False(t, meta.CreatedAt.IsZero())
}

func TestSQLite_ListNewestFirst(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, st.SaveReport(ctx, sampleMeta(id, base.Add(time.Duration(i)*time.Hour))))
	}

	all, err := st.ListReports(ctx, ReportFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)
	assert.Equal(t, "b", all[1].ID)
	assert.Equal(t, "a", all[2].ID)

	page, err := st.ListReports(ctx, ReportFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "b", page[0].ID)
}

func TestSQLite_ListEmpty(t *testing.T) {
	st := newTestSQLiteStore(t)
	all, err := st.ListReports(context.Background(), ReportFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	require.NoError(t, st.Migrate(context.Background()))
}

func TestOpen_SQLite(t *testing.T) {
	st, err := Open(context.Background(), config.StoreConfig{
		Driver:      "sqlite",
		DatabaseURL: filepath.Join(t.TempDir(), "open.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck

	require.NoError(t, st.SaveReport(context.Background(), sampleMeta("x", time.Now().UTC())))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Driver: "mongo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown driver "mongo"`)
}

func TestOpen_PostgresBadURL(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Driver: "postgres", DatabaseURL: "::not a url::"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: parse config")
}

func TestLimitOrDefault(t *testing.T) {
	assert.Equal(t, defaultListLimit, limitOrDefault(0))
	assert.Equal(t, defaultListLimit, limitOrDefault(-5))
	assert.Equal(t, 7, limitOrDefault(7))
}
