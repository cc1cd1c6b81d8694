package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/proposal-analyzer/internal/render"
)

// Artifact extensions.
const (
	TextExt = ".md"
	PDFExt  = ".pdf"
)

// NewReportID returns "relatorio_<YYYYMMDD_HHMMSS>_<8 hex>".
func NewReportID(t time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("relatorio_%s_%s", t.Format("20060102_150405"), suffix)
}

// ArtifactPaths returns the text and PDF paths for a report id.
func ArtifactPaths(dir, id string) (textPath, pdfPath string) {
	return filepath.Join(dir, id+TextExt), filepath.Join(dir, id+PDFExt)
}

// writeArtifacts writes both artifacts or neither.
func writeArtifacts(dir, id, text string) (textPath, pdfPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", eris.Wrapf(err, "analysis: create output dir %s", dir)
	}
	textPath, pdfPath = ArtifactPaths(dir, id)

	if err := writeFileAtomic(textPath, []byte(text)); err != nil {
		return "", "", err
	}
	if err := render.RenderPDFFile(text, pdfPath); err != nil {
		os.Remove(textPath) //nolint:errcheck
		return "", "", eris.Wrap(err, "analysis: render pdf")
	}
	return textPath, pdfPath, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".artifact-*")
	if err != nil {
		return eris.Wrapf(err, "analysis: create temp file for %s", path)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return eris.Wrapf(err, "analysis: write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrapf(err, "analysis: close %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return eris.Wrapf(err, "analysis: move %s into place", path)
	}
	return nil
}

func removeArtifacts(paths ...string) {
	for _, p := range paths {
		if p != "" {
			os.Remove(p) //nolint:errcheck
		}
	}
}
