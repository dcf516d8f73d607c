package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth   = 190.0
	headerLine  = 8.0
	bodyLine    = 7.0
	sectionLine = 8.0
)

// PDFExporter renders a dataset as an A4 report, one bordered table per section.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render lays out the title block, then the table. When GroupBy is set each change of
// the group value starts a shaded section heading.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate("pdf"); err != nil {
		return nil, err
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	if data.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, data.Title, "", 1, "C", false, 0, "")
	}
	if data.Subtitle != "" {
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(0, 6, data.Subtitle, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	columns := data.columns()
	skip := ""
	if len(columns) < len(data.Headers) {
		skip = data.GroupBy
	}
	widths := columnWidths(len(columns))

	pdf.SetFont("Arial", "B", 10)
	for i, header := range columns {
		pdf.CellFormat(widths[i], headerLine, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	current := ""
	pdf.SetFillColor(230, 236, 245)
	for idx, row := range data.Rows {
		if skip != "" && (idx == 0 || row[skip] != current) {
			current = row[skip]
			pdf.SetFont("Arial", "B", 10)
			pdf.CellFormat(pageWidth, sectionLine, current, "1", 1, "L", true, 0, "")
		}
		pdf.SetFont("Arial", "", 9)
		for i, value := range data.record(row, skip) {
			align := "L"
			if i == len(columns)-1 && len(columns) > 1 {
				align = "R"
			}
			pdf.CellFormat(widths[i], bodyLine, value, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// columnWidths gives the first column the remainder so labels have room.
func columnWidths(n int) []float64 {
	widths := make([]float64, n)
	if n == 1 {
		widths[0] = pageWidth
		return widths
	}
	rest := pageWidth * 0.35 / float64(n-1)
	widths[0] = pageWidth - rest*float64(n-1)
	for i := 1; i < n; i++ {
		widths[i] = rest
	}
	return widths
}
