package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders datasets into a tabular PDF with a title block.
type PDFExporter struct {
	// ColumnWidths optionally overrides the relative width of each column.
	ColumnWidths []float64
}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a landscape A4 document. Long cells wrap inside their column.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate("pdf"); err != nil {
		return nil, err
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	if data.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, data.Title, "", 1, "C", false, 0, "")
	}
	if data.Subtitle != "" {
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(0, 6, data.Subtitle, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	widths := e.widths(len(data.Headers), 277.0)

	pdf.SetFont("Arial", "B", 10)
	for i, header := range data.Headers {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	const lineHeight = 6.0
	for _, row := range data.Rows {
		lines := 1
		for i, value := range row {
			if n := len(pdf.SplitLines([]byte(value), widths[i]-2)); n > lines {
				lines = n
			}
		}
		height := float64(lines) * lineHeight
		if pdf.GetY()+height > 195 {
			pdf.AddPage()
		}
		x, y := pdf.GetXY()
		for i, value := range row {
			pdf.Rect(x, y, widths[i], height, "D")
			pdf.MultiCell(widths[i], lineHeight, value, "", "L", false)
			x += widths[i]
			pdf.SetXY(x, y)
		}
		pdf.SetXY(10, y+height)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) widths(columns int, total float64) []float64 {
	widths := make([]float64, columns)
	if len(e.ColumnWidths) == columns {
		sum := 0.0
		for _, w := range e.ColumnWidths {
			sum += w
		}
		if sum > 0 {
			for i, w := range e.ColumnWidths {
				widths[i] = total * w / sum
			}
			return widths
		}
	}
	for i := range widths {
		widths[i] = total / float64(columns)
	}
	return widths
}
