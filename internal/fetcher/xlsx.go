package fetcher

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Cell is a workbook cell. Numeric cells keep their number so callers never
// re-parse a locale-formatted rendering of it.
type Cell struct {
	Text    string
	Number  float64
	Numeric bool
	Percent bool // numeric cell with a percent number format
}

// Empty reports whether the cell holds nothing.
func (c Cell) Empty() bool {
	return !c.Numeric && strings.TrimSpace(c.Text) == ""
}

// Sheet is one worksheet in workbook order.
type Sheet struct {
	Name string
	Rows [][]Cell
}

// ReadWorkbook reads every sheet of an XLSX file, preserving sheet order.
func ReadWorkbook(path string) ([]Sheet, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	return convertWorkbook(f), nil
}

// ReadWorkbookBytes is ReadWorkbook for in-memory content.
func ReadWorkbookBytes(data []byte) ([]Sheet, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open binary")
	}
	return convertWorkbook(f), nil
}

func convertWorkbook(f *xlsx.File) []Sheet {
	sheets := make([]Sheet, 0, len(f.Sheets))
	for _, sh := range f.Sheets {
		if sh == nil {
			continue
		}
		s := Sheet{Name: sh.Name, Rows: make([][]Cell, 0, len(sh.Rows))}
		for _, row := range sh.Rows {
			s.Rows = append(s.Rows, rowToCells(row))
		}
		sheets = append(sheets, s)
	}
	return sheets
}

func rowToCells(row *xlsx.Row) []Cell {
	if row == nil {
		return nil
	}
	cells := make([]Cell, len(row.Cells))
	for j, c := range row.Cells {
		if c == nil {
			continue
		}
		cells[j] = toCell(c)
	}
	return cells
}

func toCell(c *xlsx.Cell) Cell {
	out := Cell{Text: strings.TrimSpace(c.String())}
	switch c.Type() {
	case xlsx.CellTypeNumeric:
		if v, err := c.Float(); err == nil {
			out.Number = v
			out.Numeric = true
			out.Percent = strings.Contains(c.GetNumberFormat(), "%")
		}
	}
	return out
}
