package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcabrerapy/concilia-be/internal/domain"
)

const deferredRecordLine = "0012 CHE  DIF 00123 01/15/2024 45120 E PANADERIA SAN JOSE LTDA 1.500.000,00"

func TestDeferredRegistry_RecordLine(t *testing.T) {
	records, err := DeferredRegistry(strings.NewReader(deferredRecordLine + "\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "45120", rec.Number)
	assert.Equal(t, "1500000", rec.Amount.String())
	assert.Equal(t, "PANADERIA SAN JOSE LTDA", rec.Payee)
	require.NotNil(t, rec.Date)
	assert.Equal(t, "2024-01-15", rec.Date.Format("2006-01-02"))
	assert.Equal(t, domain.CheckSourceDeferred, rec.Source)
}

func TestDeferredRegistry_IgnoresNonRecordLines(t *testing.T) {
	input := strings.Join([]string{
		"LISTADO DE CHEQUES DIFERIDOS AL 31/01/2024",
		"",
		// Marker present but no lone-letter token.
		"0012 CHE  DIF 00123 01/15/2024 45120 PANADERIA SAN JOSE LTDA PAGO 1.500.000,00",
		// Lone-letter token but no marker.
		"0012 CHEQUE 00123 01/15/2024 45120 E PANADERIA SAN JOSE LTDA 1.500.000,00",
		deferredRecordLine,
	}, "\n")

	records, err := DeferredRegistry(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "45120", records[0].Number)
}

func TestParseDeferredLine_SkipsShortLines(t *testing.T) {
	_, ok := parseDeferredLine("CHE  DIF E 45120 100,00")
	assert.False(t, ok)
}

func TestParseDeferredLine_SkipsNonPositiveAmount(t *testing.T) {
	line := "0012 CHE  DIF 00123 01/15/2024 45120 E PANADERIA SAN JOSE LTDA 0,00"
	_, ok := parseDeferredLine(line)
	assert.False(t, ok)

	line = "0012 CHE  DIF 00123 01/15/2024 45120 E PANADERIA SAN JOSE LTDA -500,00"
	_, ok = parseDeferredLine(line)
	assert.False(t, ok)
}

func TestParseDeferredLine_SkipsUnparseableAmount(t *testing.T) {
	line := "0012 CHE  DIF 00123 01/15/2024 45120 E PANADERIA SAN JOSE LTDA SINMONTO"
	_, ok := parseDeferredLine(line)
	assert.False(t, ok)
}

func TestParseDeferredLine_BadDateKeepsRecord(t *testing.T) {
	line := "0012 CHE  DIF 00123 99/99/9999 45120 E PANADERIA SAN JOSE LTDA 1.500.000,00"
	rec, ok := parseDeferredLine(line)
	require.True(t, ok)
	assert.Nil(t, rec.Date)
	assert.Equal(t, "45120", rec.Number)
}
