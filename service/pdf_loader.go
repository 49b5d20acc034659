package service

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	log "github.com/sirupsen/logrus"

	"github.com/alvarogf/pyg-dashboard/config"
	"github.com/alvarogf/pyg-dashboard/dto"
)

// PDFStatementLoader reads text-layer P&L exports: each statement line is a
// concept label followed by one amount per year column.
type PDFStatementLoader struct {
	registry *config.Registry
}

func NewPDFStatementLoader(registry *config.Registry) *PDFStatementLoader {
	return &PDFStatementLoader{registry: registry}
}

// Load extracts the text rows of a PDF statement and assembles them into a
// StatementTable. Encrypted files are decrypted with the given password
// before extraction. Scanned PDFs (no text layer) are rejected.
func (l *PDFStatementLoader) Load(data []byte, password string) (*dto.StatementTable, error) {
	if password != "" {
		decrypted, err := decryptPDF(data, password)
		if err != nil {
			return nil, &dto.MalformedInputError{
				Reason: fmt.Sprintf("could not decrypt the PDF: %v", err),
			}
		}
		data = decrypted
	}

	lines, err := extractPDFLines(data)
	if err != nil {
		return nil, &dto.MalformedInputError{
			Reason: fmt.Sprintf("could not read the PDF: %v", err),
		}
	}
	if len(lines) == 0 {
		return nil, &dto.MalformedInputError{
			Reason: "the PDF has no extractable text layer",
		}
	}

	table, err := l.linesToTable(lines)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"lines": len(lines),
		"rows":  len(table.Rows),
		"years": table.Years,
	}).Info("PDF statement loaded")

	return table, nil
}

func decryptPDF(data []byte, password string) ([]byte, error) {
	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password

	var out bytes.Buffer
	if err := api.Decrypt(bytes.NewReader(data), &out, conf); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func extractPDFLines(data []byte) ([]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	var lines []string
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		p := r.Page(pageIndex)
		if p.V.IsNull() {
			continue
		}

		rows, err := p.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			var sb strings.Builder
			for _, word := range row.Content {
				if sb.Len() > 0 {
					sb.WriteString(" ")
				}
				sb.WriteString(word.S)
			}
			if line := strings.TrimSpace(sb.String()); line != "" {
				lines = append(lines, line)
			}
		}
	}
	return lines, nil
}

// linesToTable turns text lines into statement rows. A header line made of
// year tokens fixes the column order; without one the registry's year list
// is assumed, newest first. Trailing numeric tokens of each line are the
// per-year amounts, left to right.
func (l *PDFStatementLoader) linesToTable(lines []string) (*dto.StatementTable, error) {
	years := l.detectYearHeader(lines)
	if len(years) == 0 {
		years = l.registry.Years
	}

	table := &dto.StatementTable{Years: years}
	nonZero := 0

	for _, line := range lines {
		label, amounts := splitStatementLine(line, len(years))
		if label == "" {
			continue
		}

		row := dto.StatementRow{
			Concept: label,
			Labels:  []string{label},
			Values:  make(map[string]float64, len(years)),
		}
		for i, year := range years {
			if i < len(amounts) {
				row.Values[year] = amounts[i]
				if amounts[i] != 0 {
					nonZero++
				}
			} else {
				row.Values[year] = 0
			}
		}
		table.Rows = append(table.Rows, row)
	}

	if len(table.Rows) == 0 {
		return nil, &dto.MalformedInputError{Reason: "the PDF contains no statement rows"}
	}
	if nonZero == 0 {
		return nil, &dto.MalformedInputError{Reason: "the PDF rows contain no numeric values"}
	}

	return table, nil
}

func (l *PDFStatementLoader) detectYearHeader(lines []string) []string {
	limit := len(lines)
	if limit > 10 {
		limit = 10
	}
	for _, line := range lines[:limit] {
		var years []string
		allYears := true
		for _, tok := range strings.Fields(line) {
			if yearRegex.MatchString(tok) {
				years = append(years, tok)
			} else {
				allYears = false
			}
		}
		if allYears && len(years) > 0 {
			return years
		}
	}
	return nil
}

// splitStatementLine separates the concept label from the trailing amount
// tokens, at most one per year column.
func splitStatementLine(line string, maxAmounts int) (string, []float64) {
	tokens := strings.Fields(line)

	var amounts []float64
	end := len(tokens)
	for end > 0 && len(amounts) < maxAmounts {
		v, ok := parseAmountToken(tokens[end-1])
		if !ok {
			break
		}
		amounts = append([]float64{v}, amounts...)
		end--
	}

	return strings.Join(tokens[:end], " "), amounts
}
