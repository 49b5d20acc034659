package service

import (
	"fmt"
	"io"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/alvarogf/pyg-dashboard/config"
	"github.com/alvarogf/pyg-dashboard/dto"
	"github.com/alvarogf/pyg-dashboard/utils"
)

// Dashboard owns the state of the active session: the loaded statement
// tables and the KPI sets derived from them. Every upload replaces the
// corresponding table and recomputes its KPI set from scratch; nothing is
// persisted.
type Dashboard struct {
	mu sync.Mutex

	registry *config.Registry
	company  string

	statementLoader *StatementLoader
	pdfLoader       *PDFStatementLoader
	balanceLoader   *BalanceLoader

	statement *dto.StatementTable
	kpis      dto.KPISet
	details   *dto.StatementDetails
	warnings  []dto.Warning

	balance     *dto.StatementTable
	balanceKPIs dto.KPISet
}

func NewDashboard(registry *config.Registry, company string) *Dashboard {
	return &Dashboard{
		registry:        registry,
		company:         company,
		statementLoader: NewStatementLoader(registry),
		pdfLoader:       NewPDFStatementLoader(registry),
		balanceLoader:   NewBalanceLoader(registry),
	}
}

// LoadStatement ingests a P&L workbook and recomputes the KPI set.
func (d *Dashboard) LoadStatement(r io.Reader) (*dto.UploadResponse, error) {
	table, err := d.statementLoader.Load(r)
	if err != nil {
		return nil, err
	}
	return d.installStatement(table), nil
}

// LoadStatementPDF ingests a text-layer P&L PDF export.
func (d *Dashboard) LoadStatementPDF(data []byte, password string) (*dto.UploadResponse, error) {
	table, err := d.pdfLoader.Load(data, password)
	if err != nil {
		return nil, err
	}
	return d.installStatement(table), nil
}

func (d *Dashboard) installStatement(table *dto.StatementTable) *dto.UploadResponse {
	extractor := NewKPIExtractor(table, d.registry)
	kpis := extractor.ExtractAll()
	details := extractor.ExtractDetails()
	warnings := extractor.Warnings()

	d.mu.Lock()
	d.statement = table
	d.kpis = kpis
	d.details = details
	d.warnings = warnings
	d.mu.Unlock()

	log.WithFields(log.Fields{
		"kpis_found": len(extractor.Found()),
		"warnings":   len(warnings),
	}).Info("statement installed")

	if warnings == nil {
		warnings = []dto.Warning{}
	}
	return &dto.UploadResponse{
		Years:     table.Years,
		Rows:      len(table.Rows),
		KPIsFound: len(extractor.Found()),
		Warnings:  warnings,
	}
}

// LoadBalance ingests the optional balance sheet workbook.
func (d *Dashboard) LoadBalance(r io.Reader) (*dto.UploadResponse, error) {
	table, err := d.balanceLoader.Load(r)
	if err != nil {
		return nil, err
	}

	kpis := NewBalanceExtractor(table).ExtractAll()

	d.mu.Lock()
	d.balance = table
	d.balanceKPIs = kpis
	d.mu.Unlock()

	return &dto.UploadResponse{
		Years:     table.Years,
		Rows:      len(table.Rows),
		KPIsFound: len(kpis),
		Warnings:  []dto.Warning{},
	}, nil
}

// Years returns the fiscal years of the loaded statement, newest first.
func (d *Dashboard) Years() ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.statement == nil {
		return nil, dto.ErrNoStatement
	}
	return d.statement.Years, nil
}

// HasBalance reports whether a balance sheet is loaded.
func (d *Dashboard) HasBalance() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.balance != nil
}

// ResolveYears validates the selected and comparison years, defaulting to
// the newest and second newest loaded years.
func (d *Dashboard) ResolveYears(year, compare string) (string, string, error) {
	years, err := d.Years()
	if err != nil {
		return "", "", err
	}

	if year == "" {
		year = years[0]
	} else if !containsYear(years, year) {
		return "", "", fmt.Errorf("year %s is not present in the loaded statement", year)
	}

	if compare == "" {
		compare = year
		for _, y := range years {
			if y != year {
				compare = y
				break
			}
		}
	} else if !containsYear(years, compare) {
		return "", "", fmt.Errorf("year %s is not present in the loaded statement", compare)
	}

	return year, compare, nil
}

func containsYear(years []string, year string) bool {
	for _, y := range years {
		if y == year {
			return true
		}
	}
	return false
}

// snapshot returns the current statement state; callers must treat it as
// read only.
func (d *Dashboard) snapshot() (dto.KPISet, []string, *dto.StatementDetails, []dto.Warning, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.statement == nil {
		return nil, nil, nil, nil, dto.ErrNoStatement
	}
	return d.kpis, d.statement.Years, d.details, d.warnings, nil
}

// ascendingYears returns the loaded years oldest first, for time axes.
func ascendingYears(years []string) []string {
	asc := append([]string(nil), years...)
	sort.Strings(asc)
	return asc
}

// Summary builds the executive summary section.
func (d *Dashboard) Summary(year, compare string) (*dto.SummarySection, error) {
	year, compare, err := d.ResolveYears(year, compare)
	if err != nil {
		return nil, err
	}
	kpis, years, _, warnings, err := d.snapshot()
	if err != nil {
		return nil, err
	}

	s := &dto.SummarySection{Year: year, CompareYear: compare, Warnings: warnings}

	netMargin := func(y string) float64 {
		ing := kpis.Value("ingresos", y)
		if ing == 0 {
			return 0
		}
		return kpis.Value("resultado_neto", y) / ing * 100
	}

	s.Cards = []dto.MetricCard{
		currencyCard("Ingresos Netos", kpis.Value("ingresos", year), kpis.Value("ingresos", compare), compare),
		currencyCard("EBIT", kpis.Value("ebitda", year), kpis.Value("ebitda", compare), compare),
		currencyCard("Resultado Neto", kpis.Value("resultado_neto", year), kpis.Value("resultado_neto", compare), compare),
		percentCard("Margen Neto", netMargin(year), netMargin(compare), compare),
	}

	asc := ascendingYears(years)
	s.Evolution = dto.ChartData{
		Labels: asc,
		Series: []dto.Series{
			kpiSeries("Ingresos", kpis, "ingresos", asc),
			kpiSeries("EBIT", kpis, "ebitda", asc),
			kpiSeries("Resultado Neto", kpis, "resultado_neto", asc),
		},
	}

	for _, exp := range []struct{ label, name string }{
		{"Aprovisionamientos", "aprovisionamientos"},
		{"Personal", "gastos_personal"},
		{"Otros Gastos", "otros_gastos"},
		{"Amortización", "amortizacion"},
		{"Gastos Financieros", "gastos_financieros"},
	} {
		v := kpis.Value(exp.name, year)
		if v == 0 {
			continue
		}
		s.ExpenseStructure = append(s.ExpenseStructure, dto.NamedValue{
			Name:      exp.label,
			Value:     v,
			Formatted: utils.FormatCurrency(v, 0),
		})
	}

	margins := dto.ChartData{Labels: asc}
	bruto := dto.Series{Name: "Margen Bruto %"}
	ebitS := dto.Series{Name: "Margen EBIT %"}
	neto := dto.Series{Name: "Margen Neto %"}
	for _, y := range asc {
		ing := kpis.Value("ingresos", y)
		pct := func(n float64) float64 {
			if ing == 0 {
				return 0
			}
			return n / ing * 100
		}
		bruto.Values = append(bruto.Values, pct(ing-kpis.Value("aprovisionamientos", y)))
		ebitS.Values = append(ebitS.Values, pct(kpis.Value("ebitda", y)))
		neto.Values = append(neto.Values, pct(kpis.Value("resultado_neto", y)))
	}
	margins.Series = []dto.Series{bruto, ebitS, neto}
	s.Margins = margins

	return s, nil
}

// Revenue builds the revenue analysis section.
func (d *Dashboard) Revenue(year string) (*dto.RevenueSection, error) {
	year, compare, err := d.ResolveYears(year, "")
	if err != nil {
		return nil, err
	}
	kpis, years, details, _, err := d.snapshot()
	if err != nil {
		return nil, err
	}

	s := &dto.RevenueSection{Year: year}
	s.Cards = []dto.MetricCard{
		currencyCard("Ingresos Netos", kpis.Value("ingresos", year), kpis.Value("ingresos", compare), compare),
		currencyCard("Otros Ingresos", kpis.Value("otros_ingresos", year), kpis.Value("otros_ingresos", compare), compare),
	}

	asc := ascendingYears(years)
	s.Evolution = dto.ChartData{
		Labels: asc,
		Series: []dto.Series{
			kpiSeries("Ingresos", kpis, "ingresos", asc),
			kpiSeries("Otros Ingresos", kpis, "otros_ingresos", asc),
		},
	}
	s.Services = detailRows(details.Services)

	return s, nil
}

// Expenses builds the expense analysis section.
func (d *Dashboard) Expenses(year string) (*dto.ExpensesSection, error) {
	year, _, err := d.ResolveYears(year, "")
	if err != nil {
		return nil, err
	}
	kpis, _, details, _, err := d.snapshot()
	if err != nil {
		return nil, err
	}

	s := &dto.ExpensesSection{Year: year}
	for _, exp := range []struct{ label, name string }{
		{"Aprovisionamientos", "aprovisionamientos"},
		{"Gastos de Personal", "gastos_personal"},
		{"Otros Gastos", "otros_gastos"},
		{"Amortización", "amortizacion"},
		{"Gastos Financieros", "gastos_financieros"},
	} {
		v := kpis.Value(exp.name, year)
		s.Categories = append(s.Categories, dto.NamedValue{
			Name:      exp.label,
			Value:     v,
			Formatted: utils.FormatCurrency(v, 0),
		})
	}
	s.Procurement = detailRows(details.Procurement)
	s.Payroll = detailRows(details.Payroll)
	s.Operating = detailRows(details.Operating)

	return s, nil
}

// comparativeLines is the fixed P&L bridge of the comparison page. Expense
// lines flip back to negative so the bridge reads like the statement.
var comparativeLines = []struct {
	label string
	name  string
	sign  float64
}{
	{"Ingresos", "ingresos", 1},
	{"Aprovisionamientos", "aprovisionamientos", -1},
	{"Otros Ingresos", "otros_ingresos", 1},
	{"Gastos de Personal", "gastos_personal", -1},
	{"Otros Gastos", "otros_gastos", -1},
	{"Amortización", "amortizacion", -1},
	{"EBIT", "ebitda", 1},
	{"Resultado Financiero", "resultado_financiero", 1},
	{"Resultado Neto", "resultado_neto", 1},
}

// Comparative builds the year-on-year comparison section.
func (d *Dashboard) Comparative(year, compare string) (*dto.ComparativeSection, error) {
	year, compare, err := d.ResolveYears(year, compare)
	if err != nil {
		return nil, err
	}
	kpis, _, _, _, err := d.snapshot()
	if err != nil {
		return nil, err
	}

	s := &dto.ComparativeSection{Year: year, CompareYear: compare}
	for _, line := range comparativeLines {
		current := line.sign * kpis.Value(line.name, year)
		previous := line.sign * kpis.Value(line.name, compare)
		deltaPct := utils.Variation(current, previous)
		s.Lines = append(s.Lines, dto.ComparativeLine{
			Label:          line.label,
			Current:        current,
			Previous:       previous,
			Delta:          current - previous,
			DeltaPct:       deltaPct,
			FormattedDelta: utils.FormatVariation(deltaPct, 1),
		})
	}

	return s, nil
}

// AdvancedKPIs builds the derived ratio table, one row per year.
func (d *Dashboard) AdvancedKPIs() (*dto.AdvancedKPIsSection, error) {
	kpis, years, _, _, err := d.snapshot()
	if err != nil {
		return nil, err
	}

	s := &dto.AdvancedKPIsSection{Years: years}
	for _, year := range years {
		ing := kpis.Value("ingresos", year)
		ebit := kpis.Value("ebitda", year)
		neto := kpis.Value("resultado_neto", year)
		personal := kpis.Value("gastos_personal", year)
		aprov := kpis.Value("aprovisionamientos", year)
		amort := kpis.Value("amortizacion", year)

		row := dto.AdvancedKPIRow{Year: year}
		if ing > 0 {
			row.GrossMargin = (ing - aprov) / ing * 100
			row.EBITDAMargin = (ebit + amort) / ing * 100
			row.EBITMargin = ebit / ing * 100
			row.NetMargin = neto / ing * 100
			row.PayrollRatio = personal / ing * 100
			row.CostPerEuro = (aprov + personal) / ing
		}
		s.Rows = append(s.Rows, row)
	}

	return s, nil
}

// Balance builds the balance sheet structure section.
func (d *Dashboard) Balance() (*dto.BalanceSection, error) {
	d.mu.Lock()
	balance := d.balance
	balanceKPIs := d.balanceKPIs
	d.mu.Unlock()
	if balance == nil {
		return nil, dto.ErrNoBalance
	}

	extractor := NewBalanceExtractor(balance)
	year := balance.Years[0]

	s := &dto.BalanceSection{Years: balance.Years}
	s.Assets = detailRows(extractor.ExtractAssetDetail())
	s.Liabilities = detailRows(extractor.ExtractLiabilityDetail())

	for _, card := range []struct{ label, name string }{
		{"Total Activo", "total_activo"},
		{"Patrimonio Neto", "patrimonio_neto"},
		{"Activo Corriente", "activo_corriente"},
		{"Pasivo Corriente", "pasivo_corriente"},
	} {
		v := balanceKPIs.Value(card.name, year)
		s.Cards = append(s.Cards, dto.MetricCard{
			Label:     card.label,
			Value:     v,
			Formatted: utils.FormatCurrency(v, 0),
		})
	}

	return s, nil
}

// Ratios builds the financial ratio section; it needs both statements.
func (d *Dashboard) Ratios() (*dto.RatiosSection, error) {
	d.mu.Lock()
	balance := d.balance
	balanceKPIs := d.balanceKPIs
	statement := d.statement
	kpis := d.kpis
	d.mu.Unlock()

	if statement == nil {
		return nil, dto.ErrNoStatement
	}
	if balance == nil {
		return nil, dto.ErrNoBalance
	}

	return &dto.RatiosSection{
		Years:  balance.Years,
		Ratios: CalculateRatios(balanceKPIs, kpis, balance.Years),
	}, nil
}

// ExportExcel renders the current KPI set into a workbook.
func (d *Dashboard) ExportExcel() (*excelize.File, error) {
	kpis, years, _, _, err := d.snapshot()
	if err != nil {
		return nil, err
	}
	return BuildExcelReport(kpis, years, d.registry, d.company)
}

// ExportPDF renders the printable executive summary for one year.
func (d *Dashboard) ExportPDF(year string) ([]byte, error) {
	year, _, err := d.ResolveYears(year, "")
	if err != nil {
		return nil, err
	}
	kpis, _, _, _, err := d.snapshot()
	if err != nil {
		return nil, err
	}
	return BuildPDFReport(kpis, year, d.company)
}

func currencyCard(label string, value, previous float64, compareYear string) dto.MetricCard {
	return dto.MetricCard{
		Label:       label,
		Value:       value,
		Formatted:   utils.FormatCurrency(value, 0),
		Variation:   utils.FormatVariation(utils.Variation(value, previous), 1),
		CompareYear: compareYear,
	}
}

func percentCard(label string, value, previous float64, compareYear string) dto.MetricCard {
	return dto.MetricCard{
		Label:       label,
		Value:       value,
		Formatted:   utils.FormatPercentage(value, 1),
		Variation:   utils.FormatVariation(value-previous, 1),
		CompareYear: compareYear,
	}
}

func kpiSeries(name string, kpis dto.KPISet, kpi string, years []string) dto.Series {
	s := dto.Series{Name: name}
	for _, y := range years {
		s.Values = append(s.Values, kpis.Value(kpi, y))
	}
	return s
}

func detailRows(set dto.DetailSet) []dto.DetailRow {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]dto.DetailRow, 0, len(names))
	for _, name := range names {
		rows = append(rows, dto.DetailRow{Name: name, Values: set[name]})
	}
	return rows
}
