package doctext

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/rotisserie/eris"
)

// PopplerPDF shells out to poppler's pdftotext. Its output follows the
// NativePDF layout: one block per non-empty page, blocks separated by a
// blank line.
type PopplerPDF struct {
	binPath string
}

// NewPopplerPDF creates a PopplerPDF extractor. An empty binPath means
// "pdftotext" on PATH.
func NewPopplerPDF(binPath string) *PopplerPDF {
	if binPath == "" {
		binPath = "pdftotext"
	}
	return &PopplerPDF{binPath: binPath}
}

// ExtractText converts pdfPath in reading order. Label lines such as
// "Prazo: 90 dias" stay on one line, which -layout would split into columns.
func (p *PopplerPDF) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	cmd := exec.CommandContext(ctx, p.binPath, "-enc", "UTF-8", "-eol", "unix", pdfPath, "-")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", eris.Wrapf(err, "doctext: pdftotext not found at %s", p.binPath)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", eris.Wrapf(err, "doctext: pdftotext %s: %s", pdfPath, msg)
		}
		return "", eris.Wrapf(err, "doctext: pdftotext %s", pdfPath)
	}
	return joinPages(stdout.String()), nil
}

// joinPages turns pdftotext's form-feed page breaks into blank lines and
// drops pages with no text.
func joinPages(out string) string {
	var pages []string
	for _, page := range strings.Split(out, "\f") {
		if page = strings.TrimSpace(page); page != "" {
			pages = append(pages, page)
		}
	}
	return strings.Join(pages, "\n\n")
}
