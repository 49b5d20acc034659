package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alvarogf/pyg-dashboard/dto"
)

func testBalanceTable() *dto.StatementTable {
	years := []string{"2024"}
	rows := [][2]interface{}{
		{"A) ACTIVO NO CORRIENTE", map[string]float64{"2024": 600000}},
		{"II. Inmovilizado material", map[string]float64{"2024": 550000}},
		{"218 Elementos de transporte", map[string]float64{"2024": 400000}},
		{"B) ACTIVO CORRIENTE", map[string]float64{"2024": 400000}},
		{"II. Deudores comerciales y otras cuentas a cobrar", map[string]float64{"2024": 250000}},
		{"VI. Efectivo y otros activos líquidos equivalentes", map[string]float64{"2024": 120000}},
		{"TOTAL ACTIVO (A+B)", map[string]float64{"2024": 1000000}},
		{"A) Patrimonio neto", map[string]float64{"2024": 450000}},
		{"100 Capital social", map[string]float64{"2024": 60000}},
		{"B) PASIVO NO CORRIENTE", map[string]float64{"2024": 350000}},
		{"C) PASIVO CORRIENTE", map[string]float64{"2024": 200000}},
		{"TOTAL PATRIMONIO NETO Y PASIVO", map[string]float64{"2024": 1000000}},
	}
	return testTable(years, rows...)
}

func TestBalanceExtractAll(t *testing.T) {
	kpis := NewBalanceExtractor(testBalanceTable()).ExtractAll()

	assert.Equal(t, 600000.0, kpis.Value("activo_no_corriente", "2024"))
	assert.Equal(t, 400000.0, kpis.Value("activo_corriente", "2024"))
	assert.Equal(t, 1000000.0, kpis.Value("total_activo", "2024"))
	assert.Equal(t, 450000.0, kpis.Value("patrimonio_neto", "2024"))
	assert.Equal(t, 200000.0, kpis.Value("pasivo_corriente", "2024"))
	assert.Equal(t, 120000.0, kpis.Value("efectivo", "2024"))
}

func TestBalanceHeadingFirstMatchWins(t *testing.T) {
	table := testTable([]string{"2024"},
		[2]interface{}{"C) PASIVO CORRIENTE", map[string]float64{"2024": 111}},
		[2]interface{}{"C) Pasivo corriente (duplicado)", map[string]float64{"2024": 222}},
	)

	kpis := NewBalanceExtractor(table).ExtractAll()
	assert.Equal(t, 111.0, kpis.Value("pasivo_corriente", "2024"))
}

func TestBalanceHeadingExclusion(t *testing.T) {
	// "I. Existencias" inside the asset block must not be shadowed by a
	// heading that also carries the excluded word.
	table := testTable([]string{"2024"},
		[2]interface{}{"I. Existencias del activo", map[string]float64{"2024": 999}},
		[2]interface{}{"I. Existencias", map[string]float64{"2024": 80000}},
	)

	kpis := NewBalanceExtractor(table).ExtractAll()
	assert.Equal(t, 80000.0, kpis.Value("existencias", "2024"))
}

func TestBalanceDetailAccounts(t *testing.T) {
	extractor := NewBalanceExtractor(testBalanceTable())

	assets := extractor.ExtractAssetDetail()
	require.Contains(t, assets, "Elementos de Transporte")
	assert.Equal(t, 400000.0, assets["Elementos de Transporte"]["2024"])

	liabilities := extractor.ExtractLiabilityDetail()
	require.Contains(t, liabilities, "Capital Social")
	assert.Equal(t, 60000.0, liabilities["Capital Social"]["2024"])
}

func TestCalculateRatios(t *testing.T) {
	balanceKPIs := dto.KPISet{
		"total_activo":        {"2024": 1000000},
		"activo_corriente":    {"2024": 400000},
		"pasivo_corriente":    {"2024": 200000},
		"pasivo_no_corriente": {"2024": 350000},
		"patrimonio_neto":     {"2024": 450000},
		"existencias":         {"2024": 50000},
		"efectivo":            {"2024": 120000},
	}
	pygKPIs := dto.KPISet{
		"resultado_neto": {"2024": 90000},
		"ingresos":       {"2024": 2500000},
	}

	ratios := CalculateRatios(balanceKPIs, pygKPIs, []string{"2024"})
	r := ratios["2024"]

	assert.InDelta(t, 2.0, r["ratio_liquidez"], 0.001)
	assert.InDelta(t, 1.75, r["ratio_acid_test"], 0.001)
	assert.InDelta(t, 0.6, r["ratio_tesoreria"], 0.001)
	assert.InDelta(t, 0.55, r["ratio_endeudamiento"], 0.001)
	assert.InDelta(t, 0.45, r["ratio_autonomia"], 0.001)
	assert.InDelta(t, 20.0, r["roe"], 0.001)
	assert.InDelta(t, 9.0, r["roa"], 0.001)
	assert.InDelta(t, 2.5, r["rotacion_activos"], 0.001)
	assert.InDelta(t, 3.6, r["margen_neto"], 0.001)
	assert.InDelta(t, 1000000.0/550000.0, r["ratio_solvencia"], 0.001)
	assert.InDelta(t, 200000.0, r["fondo_maniobra"], 0.001)
	assert.InDelta(t, 0.2, r["capital_circulante_ratio"], 0.001)
}

func TestCalculateRatiosZeroDenominators(t *testing.T) {
	ratios := CalculateRatios(dto.KPISet{}, dto.KPISet{}, []string{"2024"})
	r := ratios["2024"]

	assert.Zero(t, r["ratio_liquidez"])
	assert.Zero(t, r["ratio_endeudamiento"])
	assert.Zero(t, r["roe"])
	assert.Zero(t, r["margen_neto"])
	assert.Zero(t, r["fondo_maniobra"])
}
