package dto

// KPISet maps canonical KPI name -> year -> resolved value. It is rebuilt
// from scratch every time a statement is loaded.
type KPISet map[string]map[string]float64

// Value returns the resolved value for a KPI and year, 0 when either is
// absent.
func (s KPISet) Value(kpi, year string) float64 {
	return s[kpi][year]
}

// DetailSet maps a detail line name (e.g. a service or a payroll category)
// -> year -> value.
type DetailSet map[string]map[string]float64

// StatementDetails groups the detail breakdowns extracted alongside the
// canonical KPIs.
type StatementDetails struct {
	Services    DetailSet `json:"services"`
	Procurement DetailSet `json:"procurement"`
	Payroll     DetailSet `json:"payroll"`
	Operating   DetailSet `json:"operating"`
}

// Warning records a required KPI that matched no row and the default that
// was substituted for it.
type Warning struct {
	KPI     string  `json:"kpi"`
	Default float64 `json:"default"`
	Message string  `json:"message"`
}
