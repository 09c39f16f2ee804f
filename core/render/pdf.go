// Package render: PDF renderer.
// Lays the sitemap out as a printable table using gofpdf: one row per
// entry with its priority, change frequency and last-modified date.
package render

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/gaurav-prasanna/sitemapgen/core"
)

// Column widths in mm; A4 portrait with 10mm margins leaves 190mm.
const (
	colLoc      = 118.0
	colPriority = 20.0
	colFreq     = 25.0
	colLastMod  = 27.0
	rowHeight   = 6.0
)

// PDFRenderer renders the sitemap as a PDF table.
type PDFRenderer struct{}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render converts the sitemap into PDF bytes.
func (r *PDFRenderer) Render(sitemap core.Sitemap) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 8, "Sitemap for "+sitemap.BaseURL, "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(100, 100, 100)
	summary := fmt.Sprintf("Generated %s - %d URLs from %d fetched pages",
		sitemap.GeneratedAt.Format("2006-01-02"), len(sitemap.Entries), sitemap.PagesFetched)
	pdf.MultiCell(0, 5, summary, "", "L", false)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	renderHeaderRow(pdf)

	pdf.SetFont("Helvetica", "", 9)
	for i, e := range sitemap.Entries {
		fill := i%2 == 1
		pdf.SetFillColor(245, 245, 245)
		pdf.CellFormat(colLoc, rowHeight, truncate(pdf, e.Loc, colLoc-2), "1", 0, "L", fill, 0, "")
		pdf.CellFormat(colPriority, rowHeight, e.Priority, "1", 0, "C", fill, 0, "")
		pdf.CellFormat(colFreq, rowHeight, string(e.ChangeFreq), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(colLastMod, rowHeight, e.LastModDate(), "1", 1, "C", fill, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

func renderHeaderRow(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(220, 220, 220)
	pdf.CellFormat(colLoc, rowHeight+1, "URL", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colPriority, rowHeight+1, "Priority", "1", 0, "C", true, 0, "")
	pdf.CellFormat(colFreq, rowHeight+1, "Change freq", "1", 0, "C", true, 0, "")
	pdf.CellFormat(colLastMod, rowHeight+1, "Last modified", "1", 1, "C", true, 0, "")
}

// truncate shortens text with an ellipsis until it fits in width mm.
func truncate(pdf *gofpdf.Fpdf, text string, width float64) string {
	if pdf.GetStringWidth(text) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
