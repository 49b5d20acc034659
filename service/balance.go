package service

import (
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/alvarogf/pyg-dashboard/config"
	"github.com/alvarogf/pyg-dashboard/dto"
	"github.com/alvarogf/pyg-dashboard/utils"
)

// BalanceLoader reads a balance sheet workbook. The shape is the same as the
// P&L statement; headings live spread over several text columns, so matching
// happens against the concatenation of all text cells in a row.
type BalanceLoader struct {
	registry *config.Registry
}

func NewBalanceLoader(registry *config.Registry) *BalanceLoader {
	return &BalanceLoader{registry: registry}
}

func (l *BalanceLoader) Load(r io.Reader) (*dto.StatementTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &dto.MalformedInputError{
			Reason: fmt.Sprintf("could not read the balance sheet, make sure it is a valid .xlsx file: %v", err),
		}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &dto.MalformedInputError{Reason: "the workbook contains no sheets"}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &dto.MalformedInputError{
			Reason: fmt.Sprintf("could not read sheet %s: %v", sheets[0], err),
		}
	}

	table, err := (&StatementLoader{registry: l.registry}).buildTable(rows)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"rows": len(table.Rows), "years": table.Years}).
		Info("balance sheet loaded")

	return table, nil
}

// balanceHeadings maps a balance KPI name to the normalized substring that
// identifies its row. Substrings, not patterns: balance headings are stable
// PGC captions, unlike the free-form P&L labels.
var balanceHeadings = []struct {
	name    string
	needle  string
	exclude string
}{
	{name: "activo_no_corriente", needle: "a) activo no corriente"},
	{name: "activo_corriente", needle: "b) activo corriente"},
	{name: "total_activo", needle: "total activo (a+b)"},
	{name: "existencias", needle: "i. existencias", exclude: "activo"},
	{name: "deudores", needle: "ii. deudores comerciales y otras cuentas a cobrar"},
	{name: "efectivo", needle: "vi. efectivo y otros activos liquidos"},
	{name: "inmovilizado_intangible", needle: "i. inmovilizado intangible"},
	{name: "inmovilizado_material", needle: "ii. inmovilizado material"},
	{name: "patrimonio_neto", needle: "a) patrimonio neto", exclude: "total"},
	{name: "fondos_propios", needle: "a-1) fondos propios"},
	{name: "capital", needle: "i. capital", exclude: "social"},
	{name: "reservas", needle: "iii. reservas"},
	{name: "resultado_ejercicio_balance", needle: "vii. resultado del ejercicio"},
	{name: "pasivo_no_corriente", needle: "b) pasivo no corriente"},
	{name: "pasivo_corriente", needle: "c) pasivo corriente"},
	{name: "total_pasivo_patrimonio", needle: "total patrimonio neto y pasivo"},
	{name: "deudas_largo_plazo", needle: "ii. deudas a largo plazo"},
	{name: "deudas_corto_plazo", needle: "ii. deudas a corto plazo"},
	{name: "acreedores", needle: "iv. acreedores comerciales y otras cuentas a pagar"},
}

// asset account details, matched by PGC account code.
var assetAccounts = []struct{ code, label string }{
	{"210 terrenos", "Terrenos"},
	{"211 construcciones", "Construcciones"},
	{"212 instalaciones", "Instalaciones Técnicas"},
	{"213 maquinaria", "Maquinaria"},
	{"214 utillaje", "Utillaje"},
	{"215 otras instalaciones", "Otras Instalaciones"},
	{"216 mobiliario", "Mobiliario"},
	{"217 equipos", "Equipos Informáticos"},
	{"218 elementos de transporte", "Elementos de Transporte"},
}

var liabilityAccounts = []struct{ code, label string }{
	{"100 capital social", "Capital Social"},
	{"113 reservas voluntarias", "Reservas Voluntarias"},
	{"170 deudas a largo", "Deudas LP Entidades Crédito"},
	{"520 deudas corto plazo", "Deudas CP Entidades Crédito"},
	{"524 acreedores arrendamiento", "Arrendamiento Financiero CP"},
}

// BalanceExtractor resolves the balance sheet KPIs and detail accounts.
type BalanceExtractor struct {
	table *dto.StatementTable
}

func NewBalanceExtractor(table *dto.StatementTable) *BalanceExtractor {
	return &BalanceExtractor{table: table}
}

// ExtractAll scans the full heading text of every row for the known balance
// captions. First matching row wins per caption.
func (e *BalanceExtractor) ExtractAll() dto.KPISet {
	kpis := make(dto.KPISet)

	for _, row := range e.table.Rows {
		heading := rowHeading(row)
		if heading == "" {
			continue
		}

		for _, h := range balanceHeadings {
			if _, done := kpis[h.name]; done {
				continue
			}
			if !strings.Contains(heading, h.needle) {
				continue
			}
			if h.exclude != "" && strings.Contains(heading, h.exclude) {
				continue
			}
			kpis[h.name] = yearValues(row, e.table.Years, false)
		}
	}

	return kpis
}

// ExtractAssetDetail returns the asset accounts (210..218) found in the
// sheet.
func (e *BalanceExtractor) ExtractAssetDetail() dto.DetailSet {
	detail := make(dto.DetailSet)
	for _, row := range e.table.Rows {
		heading := rowHeading(row)
		for _, acc := range assetAccounts {
			if strings.Contains(heading, acc.code) {
				detail[acc.label] = yearValues(row, e.table.Years, false)
				break
			}
		}
	}
	return detail
}

// ExtractLiabilityDetail returns the equity and debt accounts found in the
// sheet.
func (e *BalanceExtractor) ExtractLiabilityDetail() dto.DetailSet {
	detail := make(dto.DetailSet)
	for _, row := range e.table.Rows {
		heading := rowHeading(row)
		for _, acc := range liabilityAccounts {
			if strings.Contains(heading, acc.code) {
				detail[acc.label] = yearValues(row, e.table.Years, false)
				break
			}
		}
	}
	return detail
}

func rowHeading(row dto.StatementRow) string {
	if len(row.Labels) == 0 {
		return utils.Normalize(row.Concept)
	}
	return utils.Normalize(strings.Join(row.Labels, " "))
}

// CalculateRatios combines balance sheet and P&L KPIs into the financial
// ratio set, per year. Ratios whose denominator is zero resolve to 0.
func CalculateRatios(balanceKPIs, pygKPIs dto.KPISet, years []string) map[string]map[string]float64 {
	ratios := make(map[string]map[string]float64, len(years))

	for _, year := range years {
		r := make(map[string]float64)

		activoTotal := balanceKPIs.Value("total_activo", year)
		activoCorriente := balanceKPIs.Value("activo_corriente", year)
		pasivoCorriente := balanceKPIs.Value("pasivo_corriente", year)
		pasivoNoCorriente := balanceKPIs.Value("pasivo_no_corriente", year)
		patrimonioNeto := balanceKPIs.Value("patrimonio_neto", year)
		existencias := balanceKPIs.Value("existencias", year)
		efectivo := balanceKPIs.Value("efectivo", year)

		resultadoNeto := pygKPIs.Value("resultado_neto", year)
		ingresos := pygKPIs.Value("ingresos", year)

		pasivoTotal := pasivoCorriente + pasivoNoCorriente

		if pasivoCorriente > 0 {
			r["ratio_liquidez"] = activoCorriente / pasivoCorriente
			r["ratio_acid_test"] = (activoCorriente - existencias) / pasivoCorriente
			r["ratio_tesoreria"] = efectivo / pasivoCorriente
		}

		if activoTotal > 0 {
			r["ratio_endeudamiento"] = pasivoTotal / activoTotal
			r["ratio_autonomia"] = patrimonioNeto / activoTotal
			r["roa"] = resultadoNeto / activoTotal * 100
			r["rotacion_activos"] = ingresos / activoTotal
		}

		if patrimonioNeto > 0 {
			r["ratio_apalancamiento"] = pasivoTotal / patrimonioNeto
			r["roe"] = resultadoNeto / patrimonioNeto * 100
		}

		if ingresos > 0 {
			r["margen_neto"] = resultadoNeto / ingresos * 100
		}

		if pasivoTotal > 0 {
			r["ratio_solvencia"] = activoTotal / pasivoTotal
		}

		r["fondo_maniobra"] = activoCorriente - pasivoCorriente
		if activoTotal > 0 {
			r["capital_circulante_ratio"] = r["fondo_maniobra"] / activoTotal
		}

		ratios[year] = r
	}

	return ratios
}
