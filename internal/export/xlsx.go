package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"docrecon/internal/reconcile"
)

const sheetName = "Extracted Data"

// Column group boundaries (1-based, inclusive).
const (
	invoiceFirst  = 1
	invoiceLast   = reconcile.InvoiceWidth
	deliveryFirst = invoiceLast + 1
	deliveryLast  = invoiceLast + reconcile.DeliveryWidth
	anomalyCol    = reconcile.TableWidth
)

var colWidths = []float64{14, 16, 20, 20, 12, 14, 18, 20, 16, 14, 20, 26}

func thinBorder() []excelize.Border {
	sides := []string{"top", "bottom", "left", "right"}
	out := make([]excelize.Border, 0, len(sides))
	for _, s := range sides {
		out = append(out, excelize.Border{Type: s, Style: 1, Color: "000000"})
	}
	return out
}

// BuildXLSX returns an XLSX workbook (as bytes) for the reconciled rows: bold
// frozen header, invoice columns tinted green, delivery columns blue, and the
// anomaly cell highlighted amber only when non-empty.
func (s *Service) BuildXLSX(rows [][]string) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	headerStyle := func(color string) (int, error) {
		return f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Font:      &excelize.Font{Bold: true},
			Border:    thinBorder(),
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		})
	}
	bodyStyle := func(color string) (int, error) {
		return f.NewStyle(&excelize.Style{
			Fill:   excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Border: thinBorder(),
		})
	}

	headerInvoice, err := headerStyle("D9EAD3")
	if err != nil {
		return nil, err
	}
	headerDelivery, err := headerStyle("DCE6F1")
	if err != nil {
		return nil, err
	}
	headerAnomaly, err := headerStyle("FDE9D9")
	if err != nil {
		return nil, err
	}
	bodyInvoice, err := bodyStyle("F6FBF4")
	if err != nil {
		return nil, err
	}
	bodyDelivery, err := bodyStyle("F4F8FD")
	if err != nil {
		return nil, err
	}
	anomalyPlain, err := f.NewStyle(&excelize.Style{Border: thinBorder()})
	if err != nil {
		return nil, err
	}
	anomalyFilled, err := f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"FFF6DD"}, Pattern: 1},
		Font:   &excelize.Font{Bold: true, Color: "9C6500"},
		Border: thinBorder(),
	})
	if err != nil {
		return nil, err
	}

	setCell := func(col, row int, v string) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(sheetName, cell, v)
	}
	setStyle := func(fromCol, toCol, row, style int) error {
		from, err := excelize.CoordinatesToCellName(fromCol, row)
		if err != nil {
			return err
		}
		to, err := excelize.CoordinatesToCellName(toCol, row)
		if err != nil {
			return err
		}
		return f.SetCellStyle(sheetName, from, to, style)
	}

	for i, h := range headers {
		if err := setCell(i+1, 1, h); err != nil {
			return nil, fmt.Errorf("xlsx header: %w", err)
		}
	}
	if err := setStyle(invoiceFirst, invoiceLast, 1, headerInvoice); err != nil {
		return nil, err
	}
	if err := setStyle(deliveryFirst, deliveryLast, 1, headerDelivery); err != nil {
		return nil, err
	}
	if err := setStyle(anomalyCol, anomalyCol, 1, headerAnomaly); err != nil {
		return nil, err
	}

	for i, r := range rows {
		rowNum := i + 2
		for c, v := range r {
			if err := setCell(c+1, rowNum, v); err != nil {
				return nil, fmt.Errorf("xlsx row %d: %w", rowNum, err)
			}
		}
		if err := setStyle(invoiceFirst, invoiceLast, rowNum, bodyInvoice); err != nil {
			return nil, err
		}
		if err := setStyle(deliveryFirst, deliveryLast, rowNum, bodyDelivery); err != nil {
			return nil, err
		}
		anomaly := anomalyPlain
		if len(r) == reconcile.TableWidth && strings.TrimSpace(r[anomalyCol-1]) != "" {
			anomaly = anomalyFilled
		}
		if err := setStyle(anomalyCol, anomalyCol, rowNum, anomaly); err != nil {
			return nil, err
		}
	}

	for i, w := range colWidths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheetName, name, name, w); err != nil {
			return nil, err
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("xlsx freeze header: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.log.Info("export.xlsx.ok", "rows", len(rows), "elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}
