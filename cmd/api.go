package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/proposal-analyzer/internal/analysis"
	"github.com/sells-group/proposal-analyzer/internal/model"
	"github.com/sells-group/proposal-analyzer/internal/render"
	"github.com/sells-group/proposal-analyzer/internal/store"
)

// multipartMemory is how much of a multipart body is held in memory before
// parts spill to disk.
const multipartMemory = 8 << 20

// analyzer runs one analysis over a set of uploads.
type analyzer interface {
	Run(ctx context.Context, uploads []analysis.Upload) (*model.AnalysisResult, error)
}

// api serves the HTTP boundary.
type api struct {
	analyzer  analyzer
	store     store.Store
	uploadDir string
	maxUpload int64
	limiter   *rate.Limiter // nil disables throttling
}

type analysisResponse struct {
	ReportID    string               `json:"report_id"`
	VendorCount int                  `json:"vendor_count"`
	Vendors     []string             `json:"vendors"`
	Skipped     []model.SkippedInput `json:"skipped,omitempty"`
}

// newLimiter allows perMin submissions per minute with a burst of the same
// size. perMin <= 0 disables throttling.
func newLimiter(perMin int) *rate.Limiter {
	if perMin <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMin)), perMin)
}

// buildRouter wires the routes and middleware.
func buildRouter(a *api, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/analyses", a.createAnalysis)
	r.Get("/reports", a.listReports)
	r.Get("/reports/{id}/text", a.downloadText)
	r.Get("/reports/{id}/pdf", a.downloadPDF)
	r.Get("/reports/{id}/html", a.previewHTML)

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (a *api) createAnalysis(w http.ResponseWriter, r *http.Request) {
	if a.limiter != nil && !a.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "too many analyses, retry later")
		return
	}
	if a.maxUpload > 0 {
		if r.ContentLength > a.maxUpload {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", a.maxUpload))
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, a.maxUpload)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", a.maxUpload))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	vendors := map[string]string{}
	if raw := r.FormValue("vendors"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &vendors); err != nil {
			writeError(w, http.StatusBadRequest, "vendors must be a JSON object of filename to vendor")
			return
		}
	}

	dir, err := newUploadDir(a.uploadDir)
	if err != nil {
		zap.L().Error("api: create upload dir", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not store uploads")
		return
	}
	defer os.RemoveAll(dir) //nolint:errcheck

	uploads := make([]analysis.Upload, 0, len(files))
	for i, fh := range files {
		name := filepath.Base(fh.Filename)
		path := filepath.Join(dir, fmt.Sprintf("%03d_%s", i, name))
		if err := saveUpload(fh, path); err != nil {
			zap.L().Error("api: save upload", zap.String("filename", name), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "could not store uploads")
			return
		}
		uploads = append(uploads, analysis.Upload{
			Filename:  name,
			Path:      path,
			Vendor:    vendors[name],
			Transient: true,
		})
	}

	res, err := a.analyzer.Run(r.Context(), uploads)
	if err != nil {
		if errors.Is(err, analysis.ErrNoUsableFiles) {
			writeError(w, http.StatusUnprocessableEntity, "no usable files: upload .xlsx, .pdf, .docx, .txt or .md")
			return
		}
		zap.L().Error("api: analysis failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	writeJSON(w, http.StatusCreated, analysisResponse{
		ReportID:    res.ReportID,
		VendorCount: res.VendorCount,
		Vendors:     res.Vendors,
		Skipped:     res.Skipped,
	})
}

func (a *api) listReports(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	reports, err := a.store.ListReports(r.Context(), store.ReportFilter{
		Limit:  max(limit, 0),
		Offset: max(offset, 0),
	})
	if err != nil {
		zap.L().Error("api: list reports", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list reports")
		return
	}
	if reports == nil {
		reports = []model.ReportMeta{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

func (a *api) downloadText(w http.ResponseWriter, r *http.Request) {
	meta, ok := a.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	serveArtifact(w, r, meta.TextPath, meta.ID+analysis.TextExt)
}

func (a *api) downloadPDF(w http.ResponseWriter, r *http.Request) {
	meta, ok := a.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	serveArtifact(w, r, meta.PDFPath, meta.ID+analysis.PDFExt)
}

func (a *api) previewHTML(w http.ResponseWriter, r *http.Request) {
	meta, ok := a.lookup(w, r)
	if !ok {
		return
	}
	text, err := os.ReadFile(meta.TextPath)
	if err != nil {
		writeError(w, http.StatusNotFound, "report artifact missing")
		return
	}
	page, err := render.RenderHTML(string(text))
	if err != nil {
		zap.L().Error("api: render html", zap.String("report_id", meta.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not render report")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

func (a *api) lookup(w http.ResponseWriter, r *http.Request) (*model.ReportMeta, bool) {
	id := chi.URLParam(r, "id")
	meta, err := a.store.GetReport(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "report not found")
			return nil, false
		}
		zap.L().Error("api: get report", zap.String("report_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load report")
		return nil, false
	}
	return meta, true
}

func serveArtifact(w http.ResponseWriter, r *http.Request, path, filename string) {
	f, err := os.Open(path)
	if err != nil {
		writeError(w, http.StatusNotFound, "report artifact missing")
		return
	}
	defer f.Close() //nolint:errcheck

	info, err := f.Stat()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not read report artifact")
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeContent(w, r, filename, info.ModTime(), f)
}

func newUploadDir(root string) (string, error) {
	if root == "" {
		root = os.TempDir()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", eris.Wrapf(err, "api: create upload root %s", root)
	}
	dir, err := os.MkdirTemp(root, "upload-*")
	if err != nil {
		return "", eris.Wrap(err, "api: create request upload dir")
	}
	return dir, nil
}

func saveUpload(fh *multipart.FileHeader, path string) error {
	src, err := fh.Open()
	if err != nil {
		return eris.Wrapf(err, "api: open upload %s", fh.Filename)
	}
	defer src.Close() //nolint:errcheck

	dst, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "api: create %s", path)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return eris.Wrapf(err, "api: write %s", path)
	}
	return eris.Wrapf(dst.Close(), "api: close %s", path)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
