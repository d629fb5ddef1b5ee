package infra

// pdf.go renders the read-only ficha of a negocio as an A5 PDF using
// go-pdf/fpdf: a title, then one label/value row per field.

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/juliosincable/infourbi/internal/negocio"
)

// FichaPDF renders titulo and lineas into an in-memory PDF.
func FichaPDF(titulo string, lineas []negocio.Linea) ([]byte, error) {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		SizeStr:        "A5",
	})
	pdf.SetMargins(10, 10, 10)
	pdf.SetCreator("infourbi", true)
	pdf.SetTitle(titulo, true)
	pdf.AddPage()
	// core fonts are cp1252; accents in the data need the translator
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.MultiCell(contentW, 7, tr(titulo), "", "C", false)
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, time.Now().Format("02/01/2006 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(2)
	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(3)

	// ── Rows ─────────────────────────────────────────────────────────────────
	colEtiqueta := contentW * 0.35
	colValor := contentW - colEtiqueta
	for _, l := range lineas {
		y := pdf.GetY()
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(colEtiqueta, 5, tr(l.Etiqueta+":"), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetXY(10+colEtiqueta, y)
		pdf.MultiCell(colValor, 5, tr(l.Valor), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render ficha: %w", err)
	}
	return buf.Bytes(), nil
}
