package infra

// pdf.go — closing-report generation using go-pdf/fpdf.
// One A5 page per session close: float, sales/expenses/purchases by payment
// method, expected vs declared cash and the resulting difference.

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cajacore/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GenerateCierrePDF renders the closing report of a closed session.
// storagePath is the directory where the PDF will be written (created if
// needed). Returns the absolute path to the generated file.
func GenerateCierrePDF(sesion *model.SesionCaja, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("cierre_%s.pdf", sesion.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "Cierre de Caja", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, sesion.Nombre, "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Responsable: "+sesion.Responsable, "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, "Apertura: "+sesion.FechaApertura.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	if sesion.FechaCierre != nil {
		pdf.CellFormat(contentW, 5, "Cierre: "+sesion.FechaCierre.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(2)

	col1 := contentW * 0.62
	col2 := contentW * 0.38

	row := func(label string, monto decimal.Decimal, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 8)
		pdf.CellFormat(col1, 5, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, "$"+monto.StringFixed(2), "", 1, "R", false, 0, "")
	}
	section := func(titulo string, total decimal.Decimal, desglose model.Desglose) {
		row(titulo, total, true)
		metodos := make([]string, 0, len(desglose))
		for metodo := range desglose {
			metodos = append(metodos, metodo)
		}
		sort.Strings(metodos)
		for _, metodo := range metodos {
			row("    "+metodo, desglose[metodo], false)
		}
		pdf.Ln(1)
	}

	section("Fondo inicial", sesion.FondoInicial, sesion.FondoInicialDesglosado)
	section("Ventas", sesion.TotalVentas, sesion.VentasDesglosadas)
	if !sesion.TotalPropinas.IsZero() {
		row("Propinas", sesion.TotalPropinas, false)
		pdf.Ln(1)
	}
	section("Gastos", sesion.TotalGastos, sesion.GastosDesglosados)
	section("Compras", sesion.TotalCompras, sesion.ComprasDesglosadas)
	if sesion.CantidadAnulados > 0 {
		row(fmt.Sprintf("Anulados (%d)", sesion.CantidadAnulados), sesion.TotalAnulados, false)
		pdf.Ln(1)
	}

	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(2)

	if sesion.EfectivoEsperado != nil {
		row("Efectivo esperado", *sesion.EfectivoEsperado, true)
	}
	if sesion.EfectivoDeclarado != nil {
		row("Efectivo declarado", *sesion.EfectivoDeclarado, true)
	}
	if sesion.Diferencia != nil {
		row("Diferencia", *sesion.Diferencia, true)
	}
	if sesion.Cuadrado != nil {
		estado := "NO CUADRA"
		if *sesion.Cuadrado {
			estado = "CUADRA"
		}
		pdf.Ln(1)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(contentW, 6, estado, "", 1, "C", false, 0, "")
	}

	if sesion.Observaciones != nil && *sesion.Observaciones != "" {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "I", 7)
		pdf.MultiCell(contentW, 4, "Observaciones: "+*sesion.Observaciones, "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
