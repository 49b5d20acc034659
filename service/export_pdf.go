package service

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/alvarogf/pyg-dashboard/dto"
	"github.com/alvarogf/pyg-dashboard/utils"
)

// BuildPDFReport renders the printable executive summary for one fiscal
// year: the headline KPI table and the cost structure table.
func BuildPDFReport(kpis dto.KPISet, year, company string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("Dashboard P&G - %s", company)), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Resumen Ejecutivo - Año %s", year)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generado: %s", time.Now().Format("02/01/2006 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(8)

	ingresos := kpis.Value("ingresos", year)
	ebit := kpis.Value("ebitda", year)
	neto := kpis.Value("resultado_neto", year)

	margin := func(v float64) string {
		if ingresos == 0 {
			return utils.FormatPercentage(0, 1)
		}
		return utils.FormatPercentage(v/ingresos*100, 1)
	}

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "KPIs Principales", "", 1, "L", false, 0, "")
	pdf.Ln(2)
	writePDFTable(pdf, tr,
		[]string{"Indicador", "Valor", "Margen"},
		[][]string{
			{"Ingresos Netos", utils.FormatCurrency(ingresos, 0), "-"},
			{"EBIT", utils.FormatCurrency(ebit, 0), margin(ebit)},
			{"Resultado Neto", utils.FormatCurrency(neto, 0), margin(neto)},
		},
		false,
	)
	pdf.Ln(10)

	aprov := kpis.Value("aprovisionamientos", year)
	personal := kpis.Value("gastos_personal", year)
	otros := kpis.Value("otros_gastos", year)
	amort := kpis.Value("amortizacion", year)
	total := aprov + personal + otros + amort

	share := func(v float64) string {
		if total == 0 {
			return utils.FormatPercentage(0, 1)
		}
		return utils.FormatPercentage(v/total*100, 1)
	}

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Estructura de Costes", "", 1, "L", false, 0, "")
	pdf.Ln(2)
	writePDFTable(pdf, tr,
		[]string{"Concepto", "Importe", "% s/Total"},
		[][]string{
			{"Aprovisionamientos", utils.FormatCurrency(aprov, 0), share(aprov)},
			{"Gastos de Personal", utils.FormatCurrency(personal, 0), share(personal)},
			{"Otros Gastos", utils.FormatCurrency(otros, 0), share(otros)},
			{"Amortización", utils.FormatCurrency(amort, 0), share(amort)},
			{"TOTAL", utils.FormatCurrency(total, 0), "100%"},
		},
		true,
	)

	if pdf.Err() {
		return nil, &dto.ExportError{Format: "pdf", Err: pdf.Error()}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &dto.ExportError{Format: "pdf", Err: err}
	}
	return buf.Bytes(), nil
}

func writePDFTable(pdf *fpdf.Fpdf, tr func(string) string, header []string, rows [][]string, boldLast bool) {
	widths := []float64{60, 50, 40}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(31, 119, 180)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range header {
		pdf.CellFormat(widths[i], 9, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetTextColor(0, 0, 0)
	for r, row := range rows {
		if boldLast && r == len(rows)-1 {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.SetFillColor(232, 232, 232)
		} else {
			pdf.SetFont("Helvetica", "", 10)
			pdf.SetFillColor(255, 255, 255)
		}
		for i, cell := range row {
			align := "L"
			if i > 0 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 8, tr(cell), "1", 0, align, true, 0, "")
		}
		pdf.Ln(-1)
	}
}
