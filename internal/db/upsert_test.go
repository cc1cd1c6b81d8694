package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertSQL(t *testing.T) {
	sql, err := UpsertSQL(UpsertConfig{
		Table:        "reports",
		Columns:      []string{"id", "vendors", "pdf_path"},
		ConflictKeys: []string{"id"},
	})
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT INTO "reports" ("id", "vendors", "pdf_path") VALUES ($1, $2, $3) ON CONFLICT ("id") DO UPDATE SET "vendors" = EXCLUDED."vendors", "pdf_path" = EXCLUDED."pdf_path"`,
		sql)
}

func TestUpsertSQL_ExplicitUpdateCols(t *testing.T) {
	sql, err := UpsertSQL(UpsertConfig{
		Table:        "public.reports",
		Columns:      []string{"id", "a", "b"},
		ConflictKeys: []string{"id"},
		UpdateCols:   []string{"b"},
	})
	require.NoError(t, err)
	assert.Contains(t, sql, `INSERT INTO "public"."reports"`)
	assert.Contains(t, sql, `DO UPDATE SET "b" = EXCLUDED."b"`)
	assert.NotContains(t, sql, `"a" = EXCLUDED`)
}

func TestUpsertSQL_OnlyKeys(t *testing.T) {
	sql, err := UpsertSQL(UpsertConfig{
		Table:        "tags",
		Columns:      []string{"id"},
		ConflictKeys: []string{"id"},
	})
	require.NoError(t, err)
	assert.Contains(t, sql, "ON CONFLICT (\"id\") DO NOTHING")
}

func TestUpsertSQL_Errors(t *testing.T) {
	_, err := UpsertSQL(UpsertConfig{Columns: []string{"id"}, ConflictKeys: []string{"id"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no table specified")

	_, err = UpsertSQL(UpsertConfig{Table: "t", ConflictKeys: []string{"id"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns specified")

	_, err = UpsertSQL(UpsertConfig{Table: "t", Columns: []string{"id"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no conflict keys specified")
}

func TestSanitizeTable(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", `"simple"`},
		{"public.reports", `"public"."reports"`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeTable(tt.input))
		})
	}
}

func TestQuoteAndJoin(t *testing.T) {
	assert.Equal(t, `"id", "name", "value"`, quoteAndJoin([]string{"id", "name", "value"}))
}
