package hojson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSniffBOM(t *testing.T) {
	cases := []struct {
		name    string
		window  []byte
		enc     Encoding
		bomLen  int
		decided bool
	}{
		{"empty", nil, EncodingUnknown, 0, false},
		{"utf8 full", []byte{0xEF, 0xBB, 0xBF, 'x'}, EncodingUTF8, 3, true},
		{"utf8 partial waits", []byte{0xEF, 0xBB}, EncodingUnknown, 0, false},
		{"utf8 lead but not a bom", []byte{0xEF, 0x00, 0x00}, EncodingUnknown, 0, true},
		{"utf16be full", []byte{0xFE, 0xFF, 'x'}, EncodingUTF16BE, 2, true},
		{"utf16be partial waits", []byte{0xFE}, EncodingUnknown, 0, false},
		{"fe not followed by ff", []byte{0xFE, 0x01}, EncodingUnknown, 0, true},
		{"utf16le full", []byte{0xFF, 0xFE, 'x'}, EncodingUTF16LE, 2, true},
		{"ff followed by second byte that rules it out", []byte{0xFF, 0xAB}, EncodingUnknown, 0, true},
		{"ordinary ascii", []byte{'{', '"'}, EncodingUnknown, 0, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			enc, bomLen, decided := sniffBOM(c.window)
			assert.Equal(t, c.enc, enc)
			assert.Equal(t, c.bomLen, bomLen)
			assert.Equal(t, c.decided, decided)
		})
	}
}

func TestDecodeRuneUTF8(t *testing.T) {
	_, r, n := decodeRuneUTF8([]byte{'A'})
	assert.Equal(t, rune('A'), r)
	assert.Equal(t, 1, n)

	_, r, n = decodeRuneUTF8([]byte{0xC3, 0xA9}) // é
	assert.Equal(t, rune(0xE9), r)
	assert.Equal(t, 2, n)

	_, r, n = decodeRuneUTF8([]byte{0xE2, 0x82, 0xAC}) // €
	assert.Equal(t, rune(0x20AC), r)
	assert.Equal(t, 3, n)

	_, r, n = decodeRuneUTF8([]byte{0xF0, 0x9F, 0x98, 0x80}) // 😀
	assert.Equal(t, rune(0x1F600), r)
	assert.Equal(t, 4, n)

	_, r, n = decodeRuneUTF8([]byte{0xE2, 0x82})
	assert.Equal(t, needMoreBytes, r)
	assert.Equal(t, 0, n)
}

func TestDecodeRuneUTF16SurrogatePair(t *testing.T) {
	// U+1F600 as a UTF-16LE surrogate pair: D83D DE00
	window := []byte{0x3D, 0xD8, 0x00, 0xDE}
	_, r, n := decodeRuneUTF16(window, EncodingUTF16LE)
	assert.Equal(t, rune(0x1F600), r)
	assert.Equal(t, 4, n)

	_, r, n = decodeRuneUTF16(window[:2], EncodingUTF16LE)
	assert.Equal(t, needMoreBytes, r)
	assert.Equal(t, 0, n)

	_, r, n = decodeRuneUTF16([]byte{0x41, 0x00}, EncodingUTF16LE) // 'A'
	assert.Equal(t, rune('A'), r)
	assert.Equal(t, 2, n)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	encs := []Encoding{EncodingUnknown, EncodingUTF8, EncodingUTF16LE, EncodingUTF16BE}
	scalars := []rune{'A', 0xE9, 0x20AC, 0x1F600}
	for _, enc := range encs {
		for _, s := range scalars {
			var buf [maxCodeUnitBytes]byte
			n := encodeRune(s, enc, buf[:])
			require.NotZero(t, n)
			_, got, used := decodeRune(buf[:n], enc)
			assert.Equal(t, s, got)
			assert.Equal(t, n, used)
		}
	}
}

func TestEncodeRuneRejectsSurrogatesAndOutOfRange(t *testing.T) {
	var buf [maxCodeUnitBytes]byte
	assert.Equal(t, 0, encodeRune(0xD800, EncodingUTF8, buf[:]))
	assert.Equal(t, 0, encodeRune(0x110000, EncodingUTF8, buf[:]))
}

func TestEncodeSurrogateHalfRaw(t *testing.T) {
	var buf [maxCodeUnitBytes]byte
	n := encodeSurrogateHalfRaw(0xD83D, EncodingUTF16LE, buf[:])
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0x3D, 0xD8}, buf[:2])

	n = encodeSurrogateHalfRaw(0xD83D, EncodingUTF8, buf[:])
	assert.Equal(t, 3, n)
}
