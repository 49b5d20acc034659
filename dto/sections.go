package dto

// MetricCard is a single headline figure with an optional variation against
// the comparison year. Formatted strings are final display values; consumers
// must not re-derive them.
type MetricCard struct {
	Label       string  `json:"label"`
	Value       float64 `json:"value"`
	Formatted   string  `json:"formatted"`
	Variation   string  `json:"variation,omitempty"`
	CompareYear string  `json:"compare_year,omitempty"`
}

// Series is one named line/bar of a chart.
type Series struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// ChartData carries x-axis labels plus one or more series over them.
type ChartData struct {
	Labels []string `json:"labels"`
	Series []Series `json:"series"`
}

// NamedValue is a labeled amount, used for pie slices and category bars.
type NamedValue struct {
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Formatted string  `json:"formatted"`
}

// DetailRow is one detail line (service, payroll category, ...) across all
// years.
type DetailRow struct {
	Name   string             `json:"name"`
	Values map[string]float64 `json:"values"`
}

// SummarySection is the executive summary page.
type SummarySection struct {
	Year             string       `json:"year"`
	CompareYear      string       `json:"compare_year"`
	Cards            []MetricCard `json:"cards"`
	Evolution        ChartData    `json:"evolution"`
	ExpenseStructure []NamedValue `json:"expense_structure"`
	Margins          ChartData    `json:"margins"`
	Warnings         []Warning    `json:"warnings,omitempty"`
}

// RevenueSection is the revenue analysis page.
type RevenueSection struct {
	Year      string       `json:"year"`
	Cards     []MetricCard `json:"cards"`
	Evolution ChartData    `json:"evolution"`
	Services  []DetailRow  `json:"services"`
}

// ExpensesSection is the expense analysis page.
type ExpensesSection struct {
	Year        string       `json:"year"`
	Categories  []NamedValue `json:"categories"`
	Procurement []DetailRow  `json:"procurement"`
	Payroll     []DetailRow  `json:"payroll"`
	Operating   []DetailRow  `json:"operating"`
}

// ComparativeLine is one P&L line compared across the two selected years.
type ComparativeLine struct {
	Label          string  `json:"label"`
	Current        float64 `json:"current"`
	Previous       float64 `json:"previous"`
	Delta          float64 `json:"delta"`
	DeltaPct       float64 `json:"delta_pct"`
	FormattedDelta string  `json:"formatted_delta"`
}

// ComparativeSection is the year-on-year comparison page.
type ComparativeSection struct {
	Year        string            `json:"year"`
	CompareYear string            `json:"compare_year"`
	Lines       []ComparativeLine `json:"lines"`
}

// AdvancedKPIRow holds the derived ratios for one fiscal year.
type AdvancedKPIRow struct {
	Year         string  `json:"year"`
	GrossMargin  float64 `json:"gross_margin_pct"`
	EBITDAMargin float64 `json:"ebitda_margin_pct"`
	EBITMargin   float64 `json:"ebit_margin_pct"`
	NetMargin    float64 `json:"net_margin_pct"`
	PayrollRatio float64 `json:"payroll_ratio_pct"`
	CostPerEuro  float64 `json:"cost_per_euro"`
}

// AdvancedKPIsSection is the derived-ratio page.
type AdvancedKPIsSection struct {
	Years []string         `json:"years"`
	Rows  []AdvancedKPIRow `json:"rows"`
}

// BalanceSection is the balance sheet structure page.
type BalanceSection struct {
	Years       []string     `json:"years"`
	Assets      []DetailRow  `json:"assets"`
	Liabilities []DetailRow  `json:"liabilities"`
	Cards       []MetricCard `json:"cards"`
}

// RatiosSection carries the financial ratios per year, combining balance
// sheet and P&L figures.
type RatiosSection struct {
	Years  []string                      `json:"years"`
	Ratios map[string]map[string]float64 `json:"ratios"`
}
