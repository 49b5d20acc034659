package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRegistryEmbedded(t *testing.T) {
	reg, err := LoadRegistry("")
	require.NoError(t, err)

	assert.Equal(t, []string{"2025", "2024", "2023", "2022"}, reg.Years)
	assert.Len(t, reg.KPIs, 10)

	ingresos := reg.Definition("ingresos")
	require.NotNil(t, ingresos)
	assert.Equal(t, 1, ingresos.Sign)
	assert.True(t, ingresos.Required)
	assert.True(t, ingresos.Match("1. importe neto de la cifra de negocios"))
	assert.True(t, ingresos.Match("cifra de negocios"))
	assert.False(t, ingresos.Match("gastos de personal"))

	personal := reg.Definition("gastos_personal")
	require.NotNil(t, personal)
	assert.Equal(t, -1, personal.Sign)
	assert.True(t, personal.Match("6. gastos de personal"))

	// Optional KPIs fall back to their default.
	financiero := reg.Definition("resultado_financiero")
	require.NotNil(t, financiero)
	assert.False(t, financiero.Required)
	assert.Equal(t, 0.0, financiero.Default)
}

func TestLoadRegistryPatternOrder(t *testing.T) {
	reg, err := LoadRegistry("")
	require.NoError(t, err)

	ebit := reg.Definition("ebitda")
	require.NotNil(t, ebit)
	// The lettered heading form outranks the bare word forms.
	assert.Equal(t, 0, ebit.MatchAt("a) resultado de explotacion"))
	assert.Greater(t, ebit.MatchAt("ebitda"), 0)
	assert.Equal(t, -1, ebit.MatchAt("aprovisionamientos"))
}

func TestLoadRegistryDetails(t *testing.T) {
	reg, err := LoadRegistry("")
	require.NoError(t, err)

	assert.True(t, reg.Details.Services.ItemRegex.MatchString("705.0.0.1 transporte regular"))
	assert.True(t, reg.Details.Services.ParentRegex.MatchString("705 prestaciones de servicios"))
	assert.True(t, reg.Details.Procurement.ItemRegex.MatchString("602.0.0.3 combustible"))
	require.NotEmpty(t, reg.Details.Payroll)
	assert.Equal(t, "Sueldos y Salarios", reg.Details.Payroll[0].Label)
	assert.True(t, reg.Details.Payroll[0].Regex.MatchString("640 sueldos"))
	assert.Len(t, reg.Details.Operating, 7)
}

func TestLoadRegistryFileOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.yaml")
	override := `
years: ["2024", "2023"]
kpis:
  - name: ingresos
    label: Ingresos
    patterns: ['ventas']
    sign: 1
    required: true
`
	require.NoError(t, os.WriteFile(path, []byte(override), 0o644))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024", "2023"}, reg.Years)
	assert.Len(t, reg.KPIs, 1)
}

func TestLoadRegistryRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"bad sign": `
years: ["2024"]
kpis:
  - {name: x, patterns: ['a'], sign: 2, required: true}
`,
		"no patterns": `
years: ["2024"]
kpis:
  - {name: x, patterns: [], sign: 1, required: true}
`,
		"bad regex": `
years: ["2024"]
kpis:
  - {name: x, patterns: ['(unclosed'], sign: 1, required: true}
`,
		"no years": `
years: []
kpis:
  - {name: x, patterns: ['a'], sign: 1, required: true}
`,
	}

	for name, body := range cases {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		_, err := LoadRegistry(path)
		assert.Error(t, err, name)
	}
}

func TestLoadRegistryMissingFile(t *testing.T) {
	_, err := LoadRegistry("/nonexistent/registry.yaml")
	assert.Error(t, err)
}
