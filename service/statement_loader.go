package service

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/alvarogf/pyg-dashboard/config"
	"github.com/alvarogf/pyg-dashboard/dto"
)

var yearRegex = regexp.MustCompile(`^(19|20)\d{2}$`)

// StatementLoader reads an uploaded P&L workbook into a StatementTable.
type StatementLoader struct {
	registry *config.Registry
}

func NewStatementLoader(registry *config.Registry) *StatementLoader {
	return &StatementLoader{registry: registry}
}

// Load reads the first sheet of an xlsx workbook, detects the concept and
// year columns and returns the cleaned table. Missing columns are reported
// as a MalformedInputError naming them; no extraction should be attempted
// after a failed load.
func (l *StatementLoader) Load(r io.Reader) (*dto.StatementTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &dto.MalformedInputError{
			Reason: fmt.Sprintf("could not read the spreadsheet, make sure it is a valid .xlsx file: %v", err),
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

	table, err := l.buildTable(rows)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"sheet": sheets[0],
		"rows":  len(table.Rows),
		"years": table.Years,
	}).Info("statement loaded")

	return table, nil
}

type yearColumn struct {
	index int
	year  string
}

type columnLayout struct {
	conceptCol int
	yearCols   []yearColumn
	headerRow  int // data starts below it; -1 when every row is data
}

func (l *StatementLoader) buildTable(rows [][]string) (*dto.StatementTable, error) {
	if len(rows) == 0 {
		return nil, &dto.MalformedInputError{Reason: "the file is empty or contains no data"}
	}

	layout, err := l.detectLayout(rows)
	if err != nil {
		return nil, err
	}

	return assembleTable(rows, layout)
}

// detectLayout finds the year columns (header cells shaped like a year,
// falling back to a scan of the first rows, then to the fixed legacy export
// layout) and the concept column (the non-year column holding mostly text).
func (l *StatementLoader) detectLayout(rows [][]string) (columnLayout, error) {
	layout := columnLayout{headerRow: 0}

	scanLimit := len(rows)
	if scanLimit > 5 {
		scanLimit = 5
	}
	for i := 0; i < scanLimit; i++ {
		layout.yearCols = yearColumns(rows[i])
		if len(layout.yearCols) > 0 {
			layout.headerRow = i
			break
		}
	}

	if len(layout.yearCols) == 0 {
		width := 0
		for _, row := range rows {
			if len(row) > width {
				width = len(row)
			}
		}
		if width < 10 {
			return layout, &dto.MalformedInputError{Missing: append([]string{"Concepto"}, l.registry.Years...)}
		}
		// Fixed legacy export: concept in the second column, years newest
		// to oldest in columns 7..10.
		log.Warn("no year columns detected, assuming legacy statement layout")
		layout.headerRow = -1
		layout.conceptCol = 1
		for i, year := range []string{"2025", "2024", "2023", "2022"} {
			layout.yearCols = append(layout.yearCols, yearColumn{index: 6 + i, year: year})
		}
		return layout, nil
	}

	layout.conceptCol = detectConceptColumn(rows, layout)
	return layout, nil
}

func yearColumns(header []string) []yearColumn {
	var cols []yearColumn
	seen := make(map[string]bool)
	for i, cell := range header {
		cell = strings.TrimSpace(cell)
		if yearRegex.MatchString(cell) && !seen[cell] {
			cols = append(cols, yearColumn{index: i, year: cell})
			seen[cell] = true
		}
	}
	return cols
}

func detectConceptColumn(rows [][]string, layout columnLayout) int {
	isYearCol := make(map[int]bool)
	width := 0
	for _, yc := range layout.yearCols {
		isYearCol[yc.index] = true
	}
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	for col := 0; col < width; col++ {
		if isYearCol[col] {
			continue
		}
		sampled, textual := 0, 0
		for i := layout.headerRow + 1; i < len(rows) && sampled < 20; i++ {
			if col >= len(rows[i]) {
				continue
			}
			cell := strings.TrimSpace(rows[i][col])
			if cell == "" {
				continue
			}
			sampled++
			if len(cell) > 5 {
				if _, err := strconv.ParseFloat(cell, 64); err != nil {
					textual++
				}
			}
		}
		if sampled > 0 && textual*2 > sampled {
			return col
		}
	}

	if width > 1 {
		return 1
	}
	return 0
}

func assembleTable(rows [][]string, layout columnLayout) (*dto.StatementTable, error) {
	isYearCol := make(map[int]bool)
	for _, yc := range layout.yearCols {
		isYearCol[yc.index] = true
	}

	table := &dto.StatementTable{}
	for _, yc := range layout.yearCols {
		table.Years = append(table.Years, yc.year)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(table.Years)))

	nonZero := 0
	for i := layout.headerRow + 1; i < len(rows); i++ {
		raw := rows[i]
		row := dto.StatementRow{Values: make(map[string]float64)}

		if layout.conceptCol < len(raw) {
			row.Concept = strings.TrimSpace(raw[layout.conceptCol])
		}
		for col, cell := range raw {
			if isYearCol[col] {
				continue
			}
			if cell = strings.TrimSpace(cell); cell != "" {
				row.Labels = append(row.Labels, cell)
			}
		}
		for _, yc := range layout.yearCols {
			var v float64
			if yc.index < len(raw) {
				v = parseAmount(raw[yc.index])
			}
			row.Values[yc.year] = v
			if v != 0 {
				nonZero++
			}
		}

		table.Rows = append(table.Rows, row)
	}

	if len(table.Rows) == 0 {
		return nil, &dto.MalformedInputError{Reason: "the file contains no data rows"}
	}
	if nonZero == 0 {
		return nil, &dto.MalformedInputError{
			Reason: "the year columns contain no numeric values",
		}
	}

	return table, nil
}

// parseAmount coerces a cell to a number. Blank and textual cells resolve
// to 0 rather than an error.
func parseAmount(s string) float64 {
	v, _ := parseAmountToken(s)
	return v
}

// parseAmountToken parses a numeric token, accepting both "1.234,56" and
// "1,234.56" separator styles.
func parseAmountToken(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")

	if strings.Contains(s, ",") {
		if strings.LastIndex(s, ".") > strings.LastIndex(s, ",") {
			// 1,234.56 with comma as thousands separator.
			s = strings.ReplaceAll(s, ",", "")
		} else {
			// 1.234,56 with dot as thousands separator.
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		}
	} else if strings.Count(s, ".") > 1 {
		// 1.234.567 without decimals.
		s = strings.ReplaceAll(s, ".", "")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
