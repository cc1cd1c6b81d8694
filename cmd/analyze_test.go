package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/proposal-analyzer/internal/analysis"
	"github.com/sells-group/proposal-analyzer/internal/model"
)

func TestUploadsFromFlags(t *testing.T) {
	uploads, err := uploadsFromFlags(
		[]string{"in/alfa_precos.xlsx", "in/proposta.pdf", "outro/proposta.pdf"},
		[]string{"proposta.pdf=Beta Ltda", "outro/proposta.pdf = Gama"},
	)
	require.NoError(t, err)
	assert.Equal(t, []analysis.Upload{
		{Filename: "alfa_precos.xlsx", Path: "in/alfa_precos.xlsx"},
		{Filename: "proposta.pdf", Path: "in/proposta.pdf", Vendor: "Beta Ltda"},
		{Filename: "proposta.pdf", Path: "outro/proposta.pdf", Vendor: "Gama"},
	}, uploads)
}

func TestUploadsFromFlags_Errors(t *testing.T) {
	_, err := uploadsFromFlags(nil, nil)
	require.Error(t, err)

	for _, bad := range []string{"semvendor", "arquivo=", "=Vendor"} {
		_, err := uploadsFromFlags([]string{"a.pdf"}, []string{bad})
		assert.Error(t, err, bad)
	}
}

func TestFormatAnalysisResult(t *testing.T) {
	var buf bytes.Buffer
	formatAnalysisResult(&buf, &model.AnalysisResult{
		ReportID:    "relatorio_1",
		VendorCount: 2,
		Vendors:     []string{"Alfa", "Beta"},
		Meta:        &model.ReportMeta{TextPath: "out/relatorio_1.md", PDFPath: "out/relatorio_1.pdf"},
		Skipped:     []model.SkippedInput{{Filename: "x.csv", Reason: "unsupported file type"}},
	})

	out := buf.String()
	assert.Contains(t, out, "relatorio_1")
	assert.Contains(t, out, "2 (Alfa, Beta)")
	assert.Contains(t, out, "out/relatorio_1.pdf")
	assert.Contains(t, out, "x.csv (unsupported file type)")
}

func TestWriteInspection(t *testing.T) {
	vendors := model.Vendors{}
	vendors.Get("Alfa").Technical.DurationDays = 90

	var buf bytes.Buffer
	require.NoError(t, writeInspection(&buf, vendors, nil))

	var decoded struct {
		Vendors map[string]model.VendorRecords `json:"vendors"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 90, decoded.Vendors["Alfa"].Technical.DurationDays)
	assert.NotContains(t, buf.String(), "skipped")
}

func TestRenderFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "relatorio.md")
	require.NoError(t, os.WriteFile(in, []byte("# Título\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"), 0o644))

	pdfPath, err := renderFile(in, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "relatorio.pdf"), pdfPath)
	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	htmlPath, err := renderFile(in, filepath.Join(dir, "relatorio.html"))
	require.NoError(t, err)
	page, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<table>")
}

func TestRenderFile_MissingInput(t *testing.T) {
	_, err := renderFile(filepath.Join(t.TempDir(), "nada.md"), "")
	require.Error(t, err)
}

func TestFormatReportsList(t *testing.T) {
	var buf bytes.Buffer
	formatReportsList(&buf, []model.ReportMeta{{
		ID:        "relatorio_20240510_143000_abcdef01",
		Vendors:   []string{"Construtora Ômega Engenharia", "Sigma Serviços Técnicos Especializados"},
		PDFPath:   "reports/relatorio_20240510_143000_abcdef01.pdf",
		CreatedAt: time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC),
	}})

	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "relatorio_20240510_143000_abcdef01")
	assert.Contains(t, out, "2024-05-10 14:30")
	assert.Contains(t, out, "Construtora Ômega Engenharia, Sigma S...")
}
