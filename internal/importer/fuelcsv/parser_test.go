package fuelcsv_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/fuelctl/internal/importer/fuelcsv"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestParser_Planilha(t *testing.T) {
	csv := `Controle de combustível;;;;;
Veículo;Onix 1.0;;;;

Data;Posto;Valor;Litros;KM;Observação
02/10/2026;AUTO POSTO IPIRANGA;150,00;28,500;125.430;aditivada
09/10/2026 18:45;Shell Centro;R$ 1.080,55;180,1;125.910;
;;;;;
Total;;1.230,55;208,6;;
`

	rows, err := fuelcsv.NewParser(time.UTC).Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, date(2026, 10, 2), rows[0].Timestamp)
	assert.Equal(t, "AUTO POSTO IPIRANGA", rows[0].Station)
	assert.Equal(t, int64(15000), rows[0].Amount)
	assert.Equal(t, int64(28500), rows[0].Volume)
	assert.Equal(t, int64(125430), rows[0].Odometer)
	assert.Equal(t, "aditivada", rows[0].Note)
	assert.Equal(t, 5, rows[0].Line)

	assert.Equal(t, time.Date(2026, 10, 9, 18, 45, 0, 0, time.UTC), rows[1].Timestamp)
	assert.Equal(t, int64(108055), rows[1].Amount)
	assert.Equal(t, int64(180100), rows[1].Volume)
	assert.Equal(t, int64(125910), rows[1].Odometer)
	assert.Empty(t, rows[1].Note)
}

func TestParser_Sheet(t *testing.T) {
	csv := `Date,Station,Amount,Volume,Odometer,Note,Vendor
2026-10-02,Ipiranga Rodovia,150.00,28.5,125430,,primary
2026-10-17 07:30,"Shell, Downtown","1,080.55",180.1,125910,long trip,other
`

	rows, err := fuelcsv.NewParser(time.UTC).Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, date(2026, 10, 2), rows[0].Timestamp)
	assert.Equal(t, int64(15000), rows[0].Amount)
	assert.Equal(t, int64(28500), rows[0].Volume)
	assert.Equal(t, "primary", rows[0].Vendor)

	assert.Equal(t, "Shell, Downtown", rows[1].Station)
	assert.Equal(t, int64(108055), rows[1].Amount)
	assert.Equal(t, "long trip", rows[1].Note)
	assert.Equal(t, "other", rows[1].Vendor)
}

func TestParser_Location(t *testing.T) {
	brt := time.FixedZone("BRT", -3*60*60)
	csv := "Date,Station,Amount,Volume,Odometer\n2026-10-15 23:30,X,10.00,2,100\n"

	rows, err := fuelcsv.NewParser(brt).Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, time.Date(2026, 10, 16, 2, 30, 0, 0, time.UTC), rows[0].Timestamp.UTC())
}

func TestParser_Latin1Encoding(t *testing.T) {
	utf8CSV := "Data;Posto;Valor;Litros;KM;Observação\n02/10/2026;POSTO SÃO JOSÉ;100,00;20;1000;gasolina comum\n"

	latin1Bytes, err := charmap.Windows1252.NewEncoder().Bytes([]byte(utf8CSV))
	require.NoError(t, err)

	rows, err := fuelcsv.NewParser(time.UTC).Parse(bytes.NewReader(latin1Bytes))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "POSTO SÃO JOSÉ", rows[0].Station)
}

func TestParser_DifferentColumnOrder(t *testing.T) {
	csv := `KM;Litros;Valor;Data
1000;10;50,00;01/10/2026
`

	rows, err := fuelcsv.NewParser(time.UTC).Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, int64(1000), rows[0].Odometer)
	assert.Equal(t, int64(10000), rows[0].Volume)
	assert.Equal(t, int64(5000), rows[0].Amount)
	assert.Empty(t, rows[0].Station)
}

func TestParser_Errors(t *testing.T) {
	type testCase struct {
		name    string
		csv     string
		wantErr string
	}

	tests := []testCase{
		{
			name:    "EmptyFile",
			csv:     "",
			wantErr: "no matching fuel log layout",
		},
		{
			name:    "UnknownHeader",
			csv:     "Data mov.;Descrição;Montante\n30-01-2026;X;-10,00\n",
			wantErr: "no matching fuel log layout",
		},
		{
			name:    "BadAmount",
			csv:     "Data;Valor;Litros;KM\n01/10/2026;abc;10;1000\n",
			wantErr: "row 2: amount",
		},
		{
			name:    "MissingVolume",
			csv:     "Data;Valor;Litros;KM\n01/10/2026;50,00;;1000\n",
			wantErr: "row 2: volume",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fuelcsv.NewParser(time.UTC).Parse(strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParser_HeaderOnly(t *testing.T) {
	rows, err := fuelcsv.NewParser(time.UTC).Parse(strings.NewReader("Date,Station,Amount,Volume,Odometer"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}
