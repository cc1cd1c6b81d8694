package render

import (
	"bytes"

	"github.com/rotisserie/eris"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const (
	htmlHead = `<!doctype html><html lang="pt-BR"><head><meta charset="utf-8"><title>Relatório Comparativo</title>` +
		`<style>body{font-family:Arial,sans-serif;max-width:1000px;margin:0 auto;padding:1rem;}` +
		`table{border-collapse:collapse;width:100%;font-size:0.85rem;}th,td{border:1px solid #a8a29e;padding:0.3rem 0.45rem;text-align:left;}` +
		`thead th{background:#f1f5f9;}</style></head><body>`
	htmlTail = `</body></html>`
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderHTML converts report text into a standalone HTML page.
func RenderHTML(text string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(htmlHead)
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return nil, eris.Wrap(err, "render: convert markdown")
	}
	buf.WriteString(htmlTail)
	return buf.Bytes(), nil
}
