package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth  = 277.0
	pdfRowHeight  = 7.0
	pdfHeadHeight = 8.0
)

// PDFExporter renders datasets into a landscape table. Wide columns receive
// a larger share of the page width.
type PDFExporter struct {
	wide map[string]float64
}

// NewPDFExporter constructs a PDF exporter. wideColumns maps header names to
// relative weights; unlisted headers weigh 1.
func NewPDFExporter(wideColumns ...string) *PDFExporter {
	wide := map[string]float64{}
	for _, col := range wideColumns {
		wide[col] = 3
	}
	return &PDFExporter{wide: wide}
}

func (e *PDFExporter) widths(headers []string) []float64 {
	total := 0.0
	weights := make([]float64, len(headers))
	for i, header := range headers {
		weights[i] = 1
		if w, ok := e.wide[header]; ok {
			weights[i] = w
		}
		total += weights[i]
	}
	for i := range weights {
		weights[i] = pdfPageWidth * weights[i] / total
	}
	return weights
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 12, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 13)
		pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
		pdf.Ln(3)
	}

	widths := e.widths(data.Headers)
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, header := range data.Headers {
		pdf.CellFormat(widths[i], pdfHeadHeight, tr(header), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range data.Rows {
		for i, header := range data.Headers {
			align := "C"
			if _, wide := e.wide[header]; wide {
				align = "L"
			}
			pdf.CellFormat(widths[i], pdfRowHeight, tr(row[header]), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
