package doctext

import (
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/proposal-analyzer/internal/fetcher"
)

const docxBody = "word/document.xml"

// DOCX extracts paragraph text from Office Open XML word documents.
type DOCX struct {
	readEntry func(zipPath, name string) ([]byte, error)
}

// NewDOCX creates a DOCX extractor.
func NewDOCX() *DOCX {
	return &DOCX{readEntry: fetcher.ReadZIPEntry}
}

// ExtractText returns the document body with one line per paragraph.
func (d *DOCX) ExtractText(_ context.Context, path string) (string, error) {
	data, err := d.readEntry(path, docxBody)
	if err != nil {
		return "", eris.Wrapf(err, "doctext: open docx %s", path)
	}
	text, err := documentXMLText(data)
	if err != nil {
		return "", eris.Wrapf(err, "doctext: parse docx %s", path)
	}
	return text, nil
}

// documentXMLText walks WordprocessingML tokens: w:t carries text, w:p ends
// a paragraph, w:tab and w:br are whitespace.
func documentXMLText(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var sb strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}
