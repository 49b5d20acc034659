package service

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/alvarogf/pyg-dashboard/config"
	"github.com/alvarogf/pyg-dashboard/dto"
	"github.com/alvarogf/pyg-dashboard/utils"
)

// KPIExtractor resolves the canonical KPIs of a loaded statement table
// against the pattern registry.
type KPIExtractor struct {
	table    *dto.StatementTable
	registry *config.Registry

	warnings []dto.Warning
	found    []string
}

func NewKPIExtractor(table *dto.StatementTable, registry *config.Registry) *KPIExtractor {
	return &KPIExtractor{table: table, registry: registry}
}

// ExtractAll resolves every KPI in the registry. Patterns are evaluated in
// declaration order and, within a pattern, rows in sheet order; the first
// match is authoritative. A required KPI with no match records a warning
// and falls back to its default; optional KPIs fall back silently.
func (e *KPIExtractor) ExtractAll() dto.KPISet {
	kpis := make(dto.KPISet, len(e.registry.KPIs))

	for i := range e.registry.KPIs {
		def := &e.registry.KPIs[i]
		values, ok := e.findKPI(def)
		if ok {
			kpis[def.Name] = values
			e.found = append(e.found, def.Name)
			continue
		}

		defaults := make(map[string]float64, len(e.table.Years))
		for _, year := range e.table.Years {
			defaults[year] = def.Default
		}
		kpis[def.Name] = defaults

		if def.Required {
			w := dto.Warning{
				KPI:     def.Name,
				Default: def.Default,
				Message: fmt.Sprintf("required KPI %q matched no row, using default %g", def.Name, def.Default),
			}
			e.warnings = append(e.warnings, w)
			log.WithFields(log.Fields{"kpi": def.Name, "default": def.Default}).
				Warn("required KPI not found")
		}
	}

	return kpis
}

// findKPI scans for the first row matching the definition. The matched row
// supplies the value for every year, with the definition's sign applied.
func (e *KPIExtractor) findKPI(def *config.KPIDefinition) (map[string]float64, bool) {
	for _, re := range def.Regexps() {
		for _, row := range e.table.Rows {
			if !rowMatches(row, re) {
				continue
			}
			values := make(map[string]float64, len(e.table.Years))
			for _, year := range e.table.Years {
				v := row.Values[year]
				if def.Sign == -1 {
					v = math.Abs(v)
				}
				values[year] = v
			}
			return values, true
		}
	}
	return nil, false
}

// Warnings returns the required-KPI misses recorded by ExtractAll.
func (e *KPIExtractor) Warnings() []dto.Warning {
	return e.warnings
}

// Found returns the canonical names that matched a row.
func (e *KPIExtractor) Found() []string {
	return e.found
}

// ExtractDetails collects the detail breakdowns: per-service revenue,
// procurement lines, payroll categories and operating expense categories.
func (e *KPIExtractor) ExtractDetails() *dto.StatementDetails {
	return &dto.StatementDetails{
		Services:    e.extractServices(),
		Procurement: e.extractProcurement(),
		Payroll:     e.extractCategories(e.registry.Details.Payroll),
		Operating:   e.extractCategories(e.registry.Details.Operating),
	}
}

// extractServices walks the block of per-service revenue lines: rows between
// the parent heading and the stop line whose concept carries the item code
// prefix.
func (e *KPIExtractor) extractServices() dto.DetailSet {
	services := make(dto.DetailSet)
	d := e.registry.Details.Services
	if d.ParentRegex == nil {
		return services
	}

	inBlock := false
	for _, row := range e.table.Rows {
		concept := utils.Normalize(row.Concept)
		if concept == "" {
			continue
		}

		if d.ParentRegex.MatchString(concept) {
			inBlock = true
			continue
		}
		if !inBlock {
			continue
		}
		if d.StopRegex.MatchString(concept) {
			inBlock = false
			continue
		}
		if d.ItemRegex.MatchString(concept) {
			services[detailName(row.Concept, d.ItemRegex)] = yearValues(row, e.table.Years, false)
		}
	}
	return services
}

func (e *KPIExtractor) extractProcurement() dto.DetailSet {
	procurement := make(dto.DetailSet)
	d := e.registry.Details.Procurement
	if d.ItemRegex == nil {
		return procurement
	}

	for _, row := range e.table.Rows {
		concept := utils.Normalize(row.Concept)
		if concept == "" || !d.ItemRegex.MatchString(concept) {
			continue
		}
		procurement[detailName(row.Concept, d.ItemRegex)] = yearValues(row, e.table.Years, true)
	}
	return procurement
}

func (e *KPIExtractor) extractCategories(categories []config.DetailCategory) dto.DetailSet {
	out := make(dto.DetailSet)
	for _, row := range e.table.Rows {
		concept := utils.Normalize(row.Concept)
		if concept == "" {
			continue
		}
		for _, cat := range categories {
			if cat.Regex.MatchString(concept) {
				out[cat.Label] = yearValues(row, e.table.Years, true)
				break
			}
		}
	}
	return out
}

func yearValues(row dto.StatementRow, years []string, abs bool) map[string]float64 {
	values := make(map[string]float64, len(years))
	for _, year := range years {
		v := row.Values[year]
		if abs {
			v = math.Abs(v)
		}
		values[year] = v
	}
	return values
}

// detailName strips the item code prefix and the residual line number,
// e.g. "705.0.0.1 TRANSPORTE REGULAR" -> "TRANSPORTE REGULAR".
func detailName(concept string, itemRegex *regexp.Regexp) string {
	name := strings.TrimSpace(itemRegex.ReplaceAllString(strings.TrimSpace(concept), ""))
	if i := strings.Index(name, " "); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSpace(name)
}

func rowMatches(row dto.StatementRow, re *regexp.Regexp) bool {
	for _, label := range row.Labels {
		if re.MatchString(utils.Normalize(label)) {
			return true
		}
	}
	if len(row.Labels) == 0 && row.Concept != "" {
		return re.MatchString(utils.Normalize(row.Concept))
	}
	return false
}
