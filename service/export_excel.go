package service

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/alvarogf/pyg-dashboard/config"
	"github.com/alvarogf/pyg-dashboard/dto"
)

const (
	summarySheet = "Resumen Ejecutivo"
	marginsSheet = "Márgenes"

	headerColor = "1F77B4"
)

// exportedKPIs is the fixed row order of the summary sheet.
var exportedKPIs = []string{
	"ingresos",
	"aprovisionamientos",
	"gastos_personal",
	"otros_gastos",
	"amortizacion",
	"ebitda",
	"resultado_financiero",
	"resultado_neto",
}

// BuildExcelReport renders the extracted KPI set into a downloadable
// workbook: the executive summary table plus a margin analysis sheet.
func BuildExcelReport(kpis dto.KPISet, years []string, registry *config.Registry, company string) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, &dto.ExportError{Format: "excel", Err: err}
	}
	if _, err := f.NewSheet(marginsSheet); err != nil {
		return nil, &dto.ExportError{Format: "excel", Err: err}
	}

	styles, err := newExportStyles(f)
	if err != nil {
		return nil, &dto.ExportError{Format: "excel", Err: err}
	}

	if err := fillSummarySheet(f, styles, kpis, years, registry, company); err != nil {
		return nil, &dto.ExportError{Format: "excel", Err: err}
	}
	if err := fillMarginsSheet(f, styles, kpis, years); err != nil {
		return nil, &dto.ExportError{Format: "excel", Err: err}
	}

	f.SetActiveSheet(0)
	return f, nil
}

type exportStyles struct {
	title    int
	header   int
	text     int
	currency int
	percent  int
}

func newExportStyles(f *excelize.File) (*exportStyles, error) {
	s := &exportStyles{}
	var err error

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}

	if s.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	}); err != nil {
		return nil, err
	}

	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerColor}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    border,
	}); err != nil {
		return nil, err
	}

	if s.text, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "left"},
		Border:    border,
	}); err != nil {
		return nil, err
	}

	currencyFmt := `#,##0 "EUR"`
	if s.currency, err = f.NewStyle(&excelize.Style{
		CustomNumFmt: &currencyFmt,
		Alignment:    &excelize.Alignment{Horizontal: "right"},
		Border:       border,
	}); err != nil {
		return nil, err
	}

	percentFmt := "0.0%"
	if s.percent, err = f.NewStyle(&excelize.Style{
		CustomNumFmt: &percentFmt,
		Alignment:    &excelize.Alignment{Horizontal: "right"},
		Border:       border,
	}); err != nil {
		return nil, err
	}

	return s, nil
}

func fillSummarySheet(f *excelize.File, styles *exportStyles, kpis dto.KPISet, years []string, registry *config.Registry, company string) error {
	if err := f.SetColWidth(summarySheet, "A", "A", 30); err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(1 + len(years))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "B", lastCol, 15); err != nil {
		return err
	}

	f.SetCellValue(summarySheet, "A1", fmt.Sprintf("Dashboard P&G - %s", company))
	f.SetCellStyle(summarySheet, "A1", "A1", styles.title)
	f.SetCellValue(summarySheet, "A2", fmt.Sprintf("Generado: %s", time.Now().Format("02/01/2006 15:04")))

	headerRow := 5
	if err := setStyledCell(f, summarySheet, 1, headerRow, "Concepto", styles.header); err != nil {
		return err
	}
	for i, year := range years {
		if err := setStyledCell(f, summarySheet, 2+i, headerRow, year, styles.header); err != nil {
			return err
		}
	}

	row := headerRow + 1
	for _, name := range exportedKPIs {
		values, ok := kpis[name]
		if !ok {
			continue
		}
		if err := setStyledCell(f, summarySheet, 1, row, registry.Label(name), styles.text); err != nil {
			return err
		}
		for i, year := range years {
			if err := setStyledCell(f, summarySheet, 2+i, row, values[year], styles.currency); err != nil {
				return err
			}
		}
		row++
	}

	return nil
}

// marginRows computes the margin block for one year. EBITDA is approximated
// as EBIT plus amortization, the way the source statements report it.
func marginRows(kpis dto.KPISet, year string) []struct {
	Label string
	Value float64
} {
	ingresos := kpis.Value("ingresos", year)
	ebit := kpis.Value("ebitda", year)
	neto := kpis.Value("resultado_neto", year)
	aprov := kpis.Value("aprovisionamientos", year)
	amort := kpis.Value("amortizacion", year)

	div := func(n float64) float64 {
		if ingresos == 0 {
			return 0
		}
		return n / ingresos
	}

	return []struct {
		Label string
		Value float64
	}{
		{"Margen Bruto", div(ingresos - aprov)},
		{"Margen EBITDA", div(ebit + amort)},
		{"Margen EBIT", div(ebit)},
		{"Margen Neto", div(neto)},
	}
}

func fillMarginsSheet(f *excelize.File, styles *exportStyles, kpis dto.KPISet, years []string) error {
	if err := f.SetColWidth(marginsSheet, "A", "A", 25); err != nil {
		return err
	}

	f.SetCellValue(marginsSheet, "A1", "Análisis de Márgenes")
	f.SetCellStyle(marginsSheet, "A1", "A1", styles.title)

	headerRow := 3
	if err := setStyledCell(f, marginsSheet, 1, headerRow, "Indicador", styles.header); err != nil {
		return err
	}
	for i, year := range years {
		if err := setStyledCell(f, marginsSheet, 2+i, headerRow, year, styles.header); err != nil {
			return err
		}
	}

	for col, year := range years {
		for i, m := range marginRows(kpis, year) {
			if col == 0 {
				if err := setStyledCell(f, marginsSheet, 1, headerRow+1+i, m.Label, styles.text); err != nil {
					return err
				}
			}
			if err := setStyledCell(f, marginsSheet, 2+col, headerRow+1+i, m.Value, styles.percent); err != nil {
				return err
			}
		}
	}

	return nil
}

func setStyledCell(f *excelize.File, sheet string, col, row int, value interface{}, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return err
	}
	return f.SetCellStyle(sheet, cell, cell, style)
}
