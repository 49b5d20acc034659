package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "resultado de explotacion", Normalize("Resultado de Explotación"))
	assert.Equal(t, "resultado de explotacion", Normalize("RESULTADO DE EXPLOTACION"))
	assert.Equal(t, "6. gastos de personal", Normalize("  6.   Gastos  de\tPersonal "))
	assert.Equal(t, "perdidas y ganancias", Normalize("Pérdidas y Ganancias"))
	assert.Equal(t, "", Normalize("   "))
}

func TestNormalizeIdempotent(t *testing.T) {
	labels := []string{
		"Resultado de Explotación",
		"AMORTIZACIÓN DEL INMOVILIZADO",
		"Importe neto de la cifra de negocios",
		"705.0.0.1 TRANSPORTE REGULAR",
	}
	for _, label := range labels {
		once := Normalize(label)
		assert.Equal(t, once, Normalize(once), "normalization must be idempotent for %q", label)
	}
}
