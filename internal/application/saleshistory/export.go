package saleshistory

import (
	"bytes"
	"fmt"
	"time"

	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Transactions"

var exportHeaders = []string{
	"Reference", "Date", "Customer", "Phone", "Payment", "Items",
	"Subtotal", "Discount", "Tax", "Total", "Profit", "Voided",
}

// ExportXLSX writes transactions, in the given order, to a workbook.
func ExportXLSX(items []entity.Transaction, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.Local
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("export: rename sheet: %w", err)
	}

	header := make([]interface{}, len(exportHeaders))
	for i, h := range exportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("export: write header: %w", err)
	}

	for i := range items {
		t := &items[i]
		name, phone := t.Customer()
		row := []interface{}{
			t.Reference,
			t.CreatedAt.In(loc).Format(timeLayout),
			name,
			phone,
			t.PaymentMethod.Label(),
			t.ItemCount,
			t.Subtotal.InexactFloat64(),
			t.Discount.InexactFloat64(),
			t.Tax.InexactFloat64(),
			t.Total.InexactFloat64(),
			t.Profit.InexactFloat64(),
			t.Voided,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("export: write row %d: %w", i+2, err)
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetRowStyle(exportSheet, 1, 1, style)
	}
	_ = f.SetPanes(exportSheet, &excelize.Panes{Freeze: true, Split: false, XSplit: 0, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("export: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
