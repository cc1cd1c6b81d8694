// Package doctext pulls raw text out of proposal documents (PDF, DOCX and
// plain text).
package doctext

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/proposal-analyzer/internal/config"
)

// Extractor extracts text content from a document file.
type Extractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// ErrUnsupported is returned for file extensions no extractor handles.
var ErrUnsupported = eris.New("doctext: unsupported document type")

// NewExtractor creates the extension-routing Extractor described by cfg.
func NewExtractor(cfg config.ExtractConfig) (*Router, error) {
	var pdf Extractor
	switch cfg.PDFProvider {
	case "native", "":
		pdf = NewNativePDF()
	case "pdftotext":
		pdf = NewPopplerPDF(cfg.PdfToTextPath)
	default:
		return nil, eris.Errorf("doctext: unknown pdf provider %q", cfg.PDFProvider)
	}

	return NewRouter(map[string]Extractor{
		".pdf":  pdf,
		".docx": NewDOCX(),
		".txt":  Plain{},
		".md":   Plain{},
	}), nil
}

// Router dispatches to an Extractor by lower-cased file extension.
type Router struct {
	byExt map[string]Extractor
}

// NewRouter creates a Router from an extension (with leading dot) map.
func NewRouter(byExt map[string]Extractor) *Router {
	m := make(map[string]Extractor, len(byExt))
	for ext, e := range byExt {
		m[strings.ToLower(ext)] = e
	}
	return &Router{byExt: m}
}

// Supports reports whether path has an extension the router handles.
func (r *Router) Supports(path string) bool {
	_, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ExtractText routes path to the extractor registered for its extension.
func (r *Router) ExtractText(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	e, ok := r.byExt[ext]
	if !ok {
		return "", eris.Wrapf(ErrUnsupported, "doctext: %s", filepath.Base(path))
	}
	return e.ExtractText(ctx, path)
}
