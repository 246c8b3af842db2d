package hojson

// This file implements the Codec component (spec §4.1): detecting or
// assuming an encoding from a byte-order mark, decoding one code point
// from a 1-4 byte window, and encoding one code point back into the
// active encoding. Grounded in jibby's handleBOM (other_examples) for
// the BOM byte sequences, and in the spec's own encoding table for the
// UTF-16 surrogate-pair arithmetic.

// needMoreBytes is returned as the decoded scalar when the supplied
// window is shorter than the code point it starts needs; the caller
// must retain the partial bytes and retry once more input arrives.
const needMoreBytes rune = -1

var (
	bomUTF8    = [3]byte{0xEF, 0xBB, 0xBF}
	bomUTF16BE = [2]byte{0xFE, 0xFF}
	bomUTF16LE = [2]byte{0xFF, 0xFE}
)

// sniffBOM inspects the first bytes of a document and reports the
// encoding they imply, plus how many of those bytes belong to the BOM
// itself (and so must be consumed without contributing to column).
// It returns (EncodingUnknown, 0, false) if there are not yet enough
// bytes to decide, so the caller can wait for more input.
func sniffBOM(window []byte) (enc Encoding, bomLen int, decided bool) {
	if len(window) == 0 {
		return EncodingUnknown, 0, false
	}
	switch window[0] {
	case bomUTF8[0]: // 0xEF: only a UTF-8 BOM starts this way
		for i := 1; i < len(window) && i < 3; i++ {
			if window[i] != bomUTF8[i] {
				return EncodingUnknown, 0, true
			}
		}
		if len(window) < 3 {
			return EncodingUnknown, 0, false
		}
		return EncodingUTF8, 3, true
	case bomUTF16BE[0]: // 0xFE: only a UTF-16BE BOM starts this way
		if len(window) < 2 {
			return EncodingUnknown, 0, false
		}
		if window[1] == bomUTF16BE[1] {
			return EncodingUTF16BE, 2, true
		}
		return EncodingUnknown, 0, true
	case bomUTF16LE[0]: // 0xFF: only a UTF-16LE BOM starts this way
		if len(window) < 2 {
			return EncodingUnknown, 0, false
		}
		if window[1] == bomUTF16LE[1] {
			return EncodingUTF16LE, 2, true
		}
		return EncodingUnknown, 0, true
	default:
		return EncodingUnknown, 0, true
	}
}

// decodeRune decodes one code point from window under encoding enc.
// It returns the raw code-unit bits (useful for UTF-16 surrogate
// detection upstream), the decoded scalar value, and the number of
// bytes consumed. A returned n of 0 with scalar 0 means the window is
// empty (terminator/no input). A returned scalar of needMoreBytes
// means the window holds a valid-looking lead but not enough trailing
// bytes to complete the code point; none of window was consumed and
// the caller should retain it in the carry-over stream.
func decodeRune(window []byte, enc Encoding) (raw uint32, scalar rune, n int) {
	switch enc {
	case EncodingUTF16LE, EncodingUTF16BE:
		return decodeRuneUTF16(window, enc)
	default:
		return decodeRuneUTF8(window)
	}
}

func decodeRuneUTF8(window []byte) (raw uint32, scalar rune, n int) {
	if len(window) == 0 {
		return 0, 0, 0
	}
	lead := window[0]
	switch {
	case lead&0x80 == 0x00: // 0xxxxxxx
		return uint32(lead), rune(lead), 1
	case lead&0xE0 == 0xC0: // 110xxxxx
		if len(window) < 2 {
			return 0, needMoreBytes, 0
		}
		r := (rune(lead&0x1F) << 6) | rune(window[1]&0x3F)
		return uint32(lead), r, 2
	case lead&0xF0 == 0xE0: // 1110xxxx
		if len(window) < 3 {
			return 0, needMoreBytes, 0
		}
		r := (rune(lead&0x0F) << 12) | (rune(window[1]&0x3F) << 6) | rune(window[2]&0x3F)
		return uint32(lead), r, 3
	case lead&0xF8 == 0xF0: // 11110xxx
		if len(window) < 4 {
			return 0, needMoreBytes, 0
		}
		r := (rune(lead&0x07) << 18) | (rune(window[1]&0x3F) << 12) | (rune(window[2]&0x3F) << 6) | rune(window[3]&0x3F)
		return uint32(lead), r, 4
	default:
		// Not a valid UTF-8 lead byte; treat as a single opaque byte so
		// the state machine can reject it with the correct line/column.
		return uint32(lead), rune(lead), 1
	}
}

func decodeRuneUTF16(window []byte, enc Encoding) (raw uint32, scalar rune, n int) {
	if len(window) < 2 {
		if len(window) == 0 {
			return 0, 0, 0
		}
		return 0, needMoreBytes, 0
	}
	first := codeUnit16(window[0], window[1], enc)
	if first&0xFC00 == 0xD800 { // 110110xxxxxxxxxx: high surrogate
		if len(window) < 4 {
			return 0, needMoreBytes, 0
		}
		second := codeUnit16(window[2], window[3], enc)
		if second&0xFC00 != 0xDC00 { // not 110111xxxxxxxxxx
			return uint32(first), rune(first), 2
		}
		r := 0x10000 + ((rune(first&0x3FF) << 10) | rune(second&0x3FF))
		return uint32(first)<<16 | uint32(second), r, 4
	}
	return uint32(first), rune(first), 2
}

func codeUnit16(b0, b1 byte, enc Encoding) uint16 {
	if enc == EncodingUTF16BE {
		return uint16(b0)<<8 | uint16(b1)
	}
	return uint16(b1)<<8 | uint16(b0)
}

// encodeRune encodes scalar into out under encoding enc, returning the
// number of bytes written. It returns 0 for scalars in the surrogate
// range (0xD800-0xDFFF) or above 0x10FFFF, which are invalid Unicode
// scalar values and cannot be encoded.
func encodeRune(scalar rune, enc Encoding, out []byte) int {
	if scalar >= 0xD800 && scalar <= 0xDFFF {
		return 0
	}
	if scalar > 0x10FFFF {
		return 0
	}
	switch enc {
	case EncodingUTF16LE, EncodingUTF16BE:
		return encodeRuneUTF16(scalar, enc, out)
	default:
		return encodeRuneUTF8(scalar, out)
	}
}

func encodeRuneUTF8(scalar rune, out []byte) int {
	switch {
	case scalar <= 0x7F:
		out[0] = byte(scalar)
		return 1
	case scalar <= 0x7FF:
		out[0] = 0xC0 | byte(scalar>>6)
		out[1] = 0x80 | byte(scalar&0x3F)
		return 2
	case scalar <= 0xFFFF:
		out[0] = 0xE0 | byte(scalar>>12)
		out[1] = 0x80 | byte((scalar>>6)&0x3F)
		out[2] = 0x80 | byte(scalar&0x3F)
		return 3
	default:
		out[0] = 0xF0 | byte(scalar>>18)
		out[1] = 0x80 | byte((scalar>>12)&0x3F)
		out[2] = 0x80 | byte((scalar>>6)&0x3F)
		out[3] = 0x80 | byte(scalar&0x3F)
		return 4
	}
}

func encodeRuneUTF16(scalar rune, enc Encoding, out []byte) int {
	putUnit := func(u uint16, at int) {
		if enc == EncodingUTF16BE {
			out[at] = byte(u >> 8)
			out[at+1] = byte(u)
		} else {
			out[at] = byte(u)
			out[at+1] = byte(u >> 8)
		}
	}
	if scalar <= 0xFFFF {
		putUnit(uint16(scalar), 0)
		return 2
	}
	v := scalar - 0x10000
	high := uint16(0xD800 + (v >> 10))
	low := uint16(0xDC00 + (v & 0x3FF))
	putUnit(high, 0)
	putUnit(low, 2)
	return 4
}

// encodeSurrogateHalfRaw writes the raw 16-bit value of an unpaired
// UTF-16 surrogate half, bypassing encodeRune's surrogate-range
// rejection. A lone \uXXXX escape naming a surrogate value reaches
// here because this port preserves the source's behavior of encoding
// each half of a "\uXXXX\uXXXX" pair independently rather than
// coalescing them into one scalar (see DESIGN.md Open Question 3) —
// under UTF-8 this intentionally produces a byte sequence that isn't
// valid UTF-8 on its own, exactly as the source does.
func encodeSurrogateHalfRaw(scalar rune, enc Encoding, out []byte) int {
	v := uint16(scalar)
	switch enc {
	case EncodingUTF16LE:
		out[0] = byte(v)
		out[1] = byte(v >> 8)
		return 2
	case EncodingUTF16BE:
		out[0] = byte(v >> 8)
		out[1] = byte(v)
		return 2
	default:
		out[0] = 0xE0 | byte(v>>12)
		out[1] = 0x80 | byte((v>>6)&0x3F)
		out[2] = 0x80 | byte(v&0x3F)
		return 3
	}
}

// maxCodeUnitBytes is the largest window decodeRune/encodeRune ever
// needs for any supported encoding (a UTF-8 4-byte sequence or a
// UTF-16 surrogate pair).
const maxCodeUnitBytes = 4
