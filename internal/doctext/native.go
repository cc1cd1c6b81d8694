package doctext

import (
	"bytes"
	"context"
	"os"
	"strings"

	"github.com/dslipak/pdf"
	"github.com/rotisserie/eris"
)

// NativePDF extracts the text layer of a PDF without external tools.
// Scanned (image-only) pages yield no text.
type NativePDF struct{}

// NewNativePDF creates a NativePDF extractor.
func NewNativePDF() *NativePDF {
	return &NativePDF{}
}

// ExtractText reads every page's plain text, one page per block.
func (n *NativePDF) ExtractText(ctx context.Context, pdfPath string) (text string, err error) {
	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return "", eris.Wrapf(err, "doctext: read PDF %s", pdfPath)
	}

	// The pdf reader panics on some malformed object streams.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", eris.Errorf("doctext: malformed PDF %s: %v", pdfPath, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", eris.Wrapf(err, "doctext: open PDF %s", pdfPath)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", eris.Wrap(err, "doctext: native PDF")
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pageText, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(pageText)
	}
	return sb.String(), nil
}
