// Package render turns report text into a paginated PDF and an HTML
// preview.
package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

const (
	fontFamily = "Arial"
	margin     = 15.0
	bodySize   = 10.0
	bodyLine   = 5.0
)

// headingSizes are font sizes for "#" through "####".
var headingSizes = [...]float64{16, 14, 12, 11}

var glyphs = strings.NewReplacer(
	"✅", "[x]",
	"❌", "[ ]",
	"🥇 ", "", "🥈 ", "", "🥉 ", "",
	"🥇", "", "🥈", "", "🥉", "",
)

// cp1252Extras are the non-Latin-1 runes the core fonts still encode.
var cp1252Extras = map[rune]bool{
	'€': true, '‚': true, 'ƒ': true, '„': true, '…': true, '†': true, '‡': true,
	'ˆ': true, '‰': true, 'Š': true, '‹': true, 'Œ': true, 'Ž': true, '‘': true,
	'’': true, '“': true, '”': true, '•': true, '–': true, '—': true, '˜': true,
	'™': true, 'š': true, '›': true, 'œ': true, 'ž': true, 'Ÿ': true,
}

var dropUnencodable = runes.Remove(runes.Predicate(func(r rune) bool {
	return r > 0xFF && !cp1252Extras[r]
}))

// sanitize maps report glyphs the core fonts cannot draw and drops the
// rest.
func sanitize(s string) string {
	s = glyphs.Replace(s)
	out, _, err := transform.String(dropUnencodable, s)
	if err != nil {
		return s
	}
	return out
}

// RenderPDF draws text onto A4 pages and writes the document to w.
func RenderPDF(text string, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont(fontFamily, "I", 8)
		pdf.CellFormat(0, 5, tr(fmt.Sprintf("Página %d/{nb}", pdf.PageNo())), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	for i, line := range strings.Split(text, "\n") {
		drawLine(pdf, tr, line, i+1)
	}

	if err := pdf.Output(w); err != nil {
		return eris.Wrap(err, "render: write pdf")
	}
	return nil
}

// RenderPDFFile renders into a temporary file next to path and renames it
// into place. On failure no file is left at path.
func RenderPDFFile(text, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".render-*.pdf")
	if err != nil {
		return eris.Wrapf(err, "render: create temp file for %s", path)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if err := RenderPDF(text, tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "render: close temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return eris.Wrapf(err, "render: move pdf into %s", path)
	}
	return nil
}

// drawLine renders one line of report text. A panic skips the line.
func drawLine(pdf *gofpdf.Fpdf, tr func(string) string, line string, lineNo int) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Warn("render: skipping malformed line",
				zap.Int("line", lineNo),
				zap.Any("panic", r),
			)
		}
	}()

	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		pdf.Ln(3)

	case headingLevel(trimmed) > 0:
		level := headingLevel(trimmed)
		size := headingSizes[level-1]
		pdf.Ln(2)
		pdf.SetFont(fontFamily, "B", size)
		pdf.MultiCell(0, size*0.5, tr(sanitize(strings.TrimSpace(trimmed[level:]))), "", "L", false)
		pdf.Ln(1)

	case strings.HasPrefix(trimmed, "|"):
		if isSeparatorRow(trimmed) {
			return
		}
		pdf.SetFont(fontFamily, "", bodySize-1)
		pdf.MultiCell(0, bodyLine-0.5, tr(sanitize(tableRow(trimmed))), "", "L", false)

	case isBoldLine(trimmed):
		pdf.SetFont(fontFamily, "B", bodySize)
		pdf.MultiCell(0, bodyLine, tr(sanitize(strings.Trim(trimmed, "*"))), "", "L", false)

	default:
		body := strings.ReplaceAll(trimmed, "**", "")
		if strings.HasPrefix(body, "- ") {
			body = "• " + strings.TrimPrefix(body, "- ")
		}
		pdf.SetFont(fontFamily, "", bodySize)
		pdf.MultiCell(0, bodyLine, tr(sanitize(body)), "", "L", false)
	}
}

// headingLevel returns 1-4 for "# " through "#### " lines, else 0.
func headingLevel(line string) int {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	if n == 0 || n > len(headingSizes) || n >= len(line) || line[n] != ' ' {
		return 0
	}
	return n
}

// isSeparatorRow reports whether a table line is a "|---|:--|" rule.
func isSeparatorRow(line string) bool {
	return strings.Trim(line, "|-: ") == "" && strings.Contains(line, "-")
}

func isBoldLine(line string) bool {
	if len(line) <= 4 || !strings.HasPrefix(line, "**") || !strings.HasSuffix(line, "**") {
		return false
	}
	return !strings.Contains(line[2:len(line)-2], "**")
}

// tableRow flattens "| a | b |" into "a | b".
func tableRow(line string) string {
	cells := strings.Split(strings.Trim(line, "|"), "|")
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return strings.Join(cells, "  |  ")
}
