package dto

// StatementRow is a single line of a financial statement: the concept label,
// any additional text cells found on the same row, and one amount per year.
type StatementRow struct {
	Concept string             `json:"concept"`
	Labels  []string           `json:"-"`
	Values  map[string]float64 `json:"values"`
}

// StatementTable is the row-labeled, year-keyed view of an uploaded
// spreadsheet. Years are sorted newest first.
type StatementTable struct {
	Rows  []StatementRow `json:"rows"`
	Years []string       `json:"years"`
}

// Value returns the amount for a given row index and year, 0 when the year
// column is absent.
func (t *StatementTable) Value(row int, year string) float64 {
	if row < 0 || row >= len(t.Rows) {
		return 0
	}
	return t.Rows[row].Values[year]
}
