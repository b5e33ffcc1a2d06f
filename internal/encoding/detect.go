// Package encoding normalises spreadsheet exports to UTF-8. Brazilian
// spreadsheet tools still save CSV files as Windows-1252 or UTF-16.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	textenc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Charset names a supported source encoding.
type Charset string

const (
	UTF8        Charset = "UTF-8"
	UTF8BOM     Charset = "UTF-8-BOM"
	UTF16LE     Charset = "UTF-16LE"
	UTF16BE     Charset = "UTF-16BE"
	Windows1252 Charset = "windows-1252"
	ISO88599    Charset = "ISO-8859-9"
)

const sniffLen = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Detect guesses the charset of a sample taken from the start of a file.
// BOMs win, then UTF-8 validity, then chardet, then Windows-1252.
func Detect(sample []byte) Charset {
	switch {
	case bytes.HasPrefix(sample, bomUTF8):
		return UTF8BOM
	case bytes.HasPrefix(sample, bomUTF16LE):
		return UTF16LE
	case bytes.HasPrefix(sample, bomUTF16BE):
		return UTF16BE
	}

	if validUTF8Prefix(sample) {
		return UTF8
	}

	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err == nil {
		switch result.Charset {
		case "UTF-8":
			return UTF8
		case "ISO-8859-9":
			return ISO88599
		}
	}

	return Windows1252
}

// validUTF8Prefix is utf8.Valid that tolerates a rune cut at the end of a
// full sample.
func validUTF8Prefix(b []byte) bool {
	if utf8.Valid(b) {
		return true
	}

	if len(b) < sniffLen {
		return false
	}

	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			return !utf8.FullRune(b[i:]) && utf8.Valid(b[:i])
		}
	}

	return false
}

// NewUTF8Reader returns a reader that yields r decoded to UTF-8, with any
// BOM removed.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, sniffLen)

	sample, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	var dec *textenc.Decoder

	switch Detect(sample) {
	case UTF8:
		return br, nil
	case UTF8BOM:
		_, _ = br.Discard(len(bomUTF8))
		return br, nil
	case UTF16LE:
		dec = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	case UTF16BE:
		dec = unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
	case ISO88599:
		dec = charmap.ISO8859_9.NewDecoder()
	default:
		dec = charmap.Windows1252.NewDecoder()
	}

	return transform.NewReader(br, dec), nil
}
