// Package extract turns vendor documents into canonical commercial and
// technical records. Extraction is total: malformed input yields zero-value
// records, never an error.
package extract

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/proposal-analyzer/internal/fetcher"
	"github.com/sells-group/proposal-analyzer/internal/model"
	"github.com/sells-group/proposal-analyzer/internal/normalize"
)

type sheetKind int

const (
	sheetCover sheetKind = iota
	sheetItems
	sheetBDI
	sheetCost
)

func (k sheetKind) String() string {
	switch k {
	case sheetCover:
		return "cover"
	case sheetItems:
		return "items"
	case sheetBDI:
		return "bdi"
	case sheetCost:
		return "cost"
	default:
		return fmt.Sprintf("sheet(%d)", int(k))
	}
}

// sheetRoutes is evaluated in order; the first match classifies a sheet.
var sheetRoutes = []struct {
	kind     sheetKind
	keywords []string
}{
	{sheetCover, []string{"carta"}},
	{sheetItems, []string{"serviço", "item"}},
	{sheetBDI, []string{"bdi"}},
	{sheetCost, []string{"custo", "comp"}},
}

func classifySheet(name string) (sheetKind, bool) {
	for _, r := range sheetRoutes {
		if normalize.ContainsAny(name, r.keywords...) {
			return r.kind, true
		}
	}
	return 0, false
}

// coverFields maps cover-letter labels (column 0) to record fields. Order
// matters: "CNPJ da empresa" must resolve to the tax id, not the company.
var coverFields = []struct {
	keywords []string
	set      func(rec *model.CommercialRecord, c fetcher.Cell)
}{
	{[]string{"cnpj"}, func(rec *model.CommercialRecord, c fetcher.Cell) { setText(&rec.TaxID, c) }},
	{[]string{"preço total", "valor total", "valor global", "preço global"}, func(rec *model.CommercialRecord, c fetcher.Cell) {
		if rec.TotalPrice == 0 {
			rec.TotalPrice, _ = cellNumber(c)
		}
	}},
	{[]string{"empresa", "razão social", "proponente"}, func(rec *model.CommercialRecord, c fetcher.Cell) { setText(&rec.CompanyName, c) }},
	{[]string{"pagamento"}, func(rec *model.CommercialRecord, c fetcher.Cell) { setText(&rec.PaymentTerms, c) }},
	{[]string{"garantia"}, func(rec *model.CommercialRecord, c fetcher.Cell) { setText(&rec.WarrantyTerms, c) }},
	{[]string{"treinamento", "capacitação"}, func(rec *model.CommercialRecord, c fetcher.Cell) { setText(&rec.TrainingTerms, c) }},
	{[]string{"seguro"}, func(rec *model.CommercialRecord, c fetcher.Cell) { setText(&rec.InsuranceTerms, c) }},
	{[]string{"observ"}, func(rec *model.CommercialRecord, c fetcher.Cell) { setText(&rec.Notes, c) }},
}

// TabularExtractor reads a vendor pricing workbook into a CommercialRecord.
type TabularExtractor struct {
	read func(path string) ([]fetcher.Sheet, error)
}

// NewTabularExtractor creates a TabularExtractor backed by the XLSX reader.
func NewTabularExtractor() *TabularExtractor {
	return &TabularExtractor{read: fetcher.ReadWorkbook}
}

// Extract reads the workbook at path. Unreadable workbooks yield the zero
// record.
func (e *TabularExtractor) Extract(path string) model.CommercialRecord {
	sheets, err := e.read(path)
	if err != nil {
		zap.L().Warn("extract: unreadable workbook, using defaults",
			zap.String("path", path),
			zap.Error(err),
		)
		return model.CommercialRecord{}
	}
	return e.ExtractSheets(sheets)
}

// ExtractSheets maps already-loaded sheets into a CommercialRecord.
func (e *TabularExtractor) ExtractSheets(sheets []fetcher.Sheet) (rec model.CommercialRecord) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("extract: workbook mapping panicked, using defaults",
				zap.Any("panic", r),
			)
			rec = model.CommercialRecord{}
		}
	}()

	for _, sh := range sheets {
		kind, ok := classifySheet(sh.Name)
		if !ok {
			zap.L().Debug("extract: skipping unclassified sheet", zap.String("sheet", sh.Name))
			continue
		}
		switch kind {
		case sheetCover:
			readCover(&rec, sh.Rows)
		case sheetItems:
			rec.Items = append(rec.Items, readItems(sh.Rows)...)
		case sheetBDI:
			readBDI(&rec, sh.Rows)
		case sheetCost:
			readCost(&rec, sh.Rows)
		}
	}

	if rec.TotalPrice <= 0 {
		rec.TotalPrice = rec.ItemsTotal()
	}
	if rec.TotalPrice < 0 || math.IsNaN(rec.TotalPrice) || math.IsInf(rec.TotalPrice, 0) {
		rec.TotalPrice = 0
	}
	return rec
}

func readCover(rec *model.CommercialRecord, rows [][]fetcher.Cell) {
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		label := row[0].Text
		if label == "" {
			continue
		}
		for _, f := range coverFields {
			if normalize.ContainsAny(label, f.keywords...) {
				f.set(rec, row[1])
				break
			}
		}
	}
}

// readItems keeps rows with at least six populated cells whose order and
// line total are numeric. Header and subtotal rows fall out naturally.
func readItems(rows [][]fetcher.Cell) []model.ServiceLineItem {
	var items []model.ServiceLineItem
	for _, row := range rows {
		if len(row) < 6 || populated(row) < 6 {
			continue
		}
		order, ok := cellNumber(row[0])
		if !ok {
			continue
		}
		total, ok := cellNumber(row[5])
		if !ok {
			continue
		}
		qty, _ := cellNumber(row[3])
		unitPrice, _ := cellNumber(row[4])
		items = append(items, model.ServiceLineItem{
			Order:       int(order),
			Description: row[1].Text,
			Unit:        row[2].Text,
			Quantity:    qty,
			UnitPrice:   unitPrice,
			Total:       total,
		})
	}
	return items
}

func readBDI(rec *model.CommercialRecord, rows [][]fetcher.Cell) {
	for _, row := range rows {
		if len(row) < 2 || !normalize.ContainsAny(row[0].Text, "total") {
			continue
		}
		c, ok := firstNumeric(row[1:])
		if !ok {
			continue
		}
		v, _ := cellNumber(c)
		if c.Percent {
			v *= 100
		}
		rec.BDIPercent = v
		return
	}
}

func readCost(rec *model.CommercialRecord, rows [][]fetcher.Cell) {
	cc := &rec.CostComposition
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		label := row[0].Text
		var dst *float64
		switch {
		case normalize.ContainsAny(label, "mão de obra"):
			dst = &cc.Labor
		case normalize.ContainsAny(label, "material", "materiais"):
			dst = &cc.Materials
		case normalize.ContainsAny(label, "equipamento"):
			dst = &cc.Equipment
		default:
			continue
		}
		if *dst != 0 {
			continue
		}
		if c, ok := firstNumeric(row[1:]); ok {
			*dst, _ = cellNumber(c)
		}
	}
}

func cellNumber(c fetcher.Cell) (float64, bool) {
	if c.Numeric {
		return c.Number, true
	}
	return normalize.TryBRL(c.Text)
}

func firstNumeric(cells []fetcher.Cell) (fetcher.Cell, bool) {
	for _, c := range cells {
		if _, ok := cellNumber(c); ok {
			return c, true
		}
	}
	return fetcher.Cell{}, false
}

func populated(row []fetcher.Cell) int {
	n := 0
	for _, c := range row {
		if !c.Empty() {
			n++
		}
	}
	return n
}

func setText(dst *string, c fetcher.Cell) {
	if *dst != "" {
		return
	}
	*dst = strings.TrimSpace(c.Text)
}
