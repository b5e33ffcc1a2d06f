package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/MrJamesThe3rd/fuelctl/internal/encoding"
)

const header = "Data;Posto;Valor;Litros;KM;Observação\n"

func readAll(t *testing.T, input []byte) string {
	t.Helper()

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got)
}

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	input := header + "02/10/2026;Posto São João;150,00;28,5;125430;\n"

	assert.Equal(t, input, readAll(t, []byte(input)))
}

func TestNewUTF8Reader_Windows1252(t *testing.T) {
	latin, err := charmap.Windows1252.NewEncoder().String(header)
	require.NoError(t, err)

	assert.Equal(t, header, readAll(t, []byte(latin)))
}

func TestNewUTF8Reader_UTF8BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, header...)

	assert.Equal(t, header, readAll(t, input))
}

func TestNewUTF8Reader_UTF16LE(t *testing.T) {
	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(header)
	require.NoError(t, err)

	assert.Equal(t, header, readAll(t, []byte(utf16)))
}

func TestDetect(t *testing.T) {
	type testCase struct {
		name   string
		sample []byte
		want   encoding.Charset
	}

	// A multi-byte rune split by the sniff window must still read as UTF-8.
	split := []byte(strings.Repeat("a", 4095) + "ç")[:4096]

	tests := []testCase{
		{name: "Empty", sample: nil, want: encoding.UTF8},
		{name: "ASCII", sample: []byte("Date,Station,Amount\n"), want: encoding.UTF8},
		{name: "BOM", sample: []byte{0xEF, 0xBB, 0xBF, 'a'}, want: encoding.UTF8BOM},
		{name: "UTF16BE", sample: []byte{0xFE, 0xFF, 0x00, 'a'}, want: encoding.UTF16BE},
		{name: "TruncatedRune", sample: split, want: encoding.UTF8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, encoding.Detect(tt.sample))
		})
	}
}
