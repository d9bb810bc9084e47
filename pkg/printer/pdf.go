package printer

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMarginMM    = 3.0
	pdfMaxFontPt   = 9.0
	pdfLineFactor  = 1.25
	mmPerPt        = 25.4 / 72
	courierAdvance = 0.6 // glyph advance of Courier, in ems
)

// PaperMM returns the physical roll width for a characters-per-line value.
func PaperMM(width int) float64 {
	if width > Width58mm {
		return 80
	}
	return 58
}

// PDF packages monospace lines as a single-page PDF sized to the receipt
// roll, so it can be opened and printed by hand. Courier keeps the column
// budgets of the thermal layout intact.
func PDF(lines []string, width int) ([]byte, error) {
	if width <= 0 {
		width = Width58mm
	}
	paper := PaperMM(width)
	usable := paper - 2*pdfMarginMM

	fontPt := usable / mmPerPt / (float64(width) * courierAdvance)
	if fontPt > pdfMaxFontPt {
		fontPt = pdfMaxFontPt
	}
	lineMM := fontPt * mmPerPt * pdfLineFactor
	height := 2*pdfMarginMM + float64(len(lines)+1)*lineMM

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: paper, Ht: height},
	})
	pdf.SetMargins(pdfMarginMM, pdfMarginMM, pdfMarginMM)
	pdf.SetAutoPageBreak(false, pdfMarginMM)
	pdf.AddPage()
	pdf.SetFont("Courier", "", fontPt)

	for _, line := range lines {
		pdf.CellFormat(usable, lineMM, line, "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("printer: package pdf: %w", err)
	}
	return buf.Bytes(), nil
}
