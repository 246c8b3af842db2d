package hojson

// This file implements the state enumeration of spec §4.3 (the
// deferred actions of spec §3 are Context fields run by parser.go's
// runDeferredActions). The teacher (mcvoid-json) encodes
// its grammar as a dense [state][charClass]state transition table;
// this port keeps the flat state enum and per-state dispatch idea but
// switches on the decoded rune directly inside parser.go's step
// function, since this grammar's states each expect a much narrower,
// state-specific set of characters (unicode-escape hex digits,
// keyword letter chains) than a shared dense class table would
// usefully compress.
//
// BOM detection does not get its own sub-states (UTF8_BOM1/2,
// UTF16BE_BOM, UTF16LE_BOM from spec §4.3): a byte that coincidentally
// matches a BOM lead byte (e.g. 0xEF, a valid UTF-8 3-byte lead for
// U+E000-U+FFFF) but isn't followed by the rest of the mark has to be
// reinterpreted as ordinary content, which needs the same 3-byte
// lookahead a dedicated state chain would need anyway. parser.go's
// Parse does this once, up front, as a lookahead over the combined
// carry-over+input window (see sniffBOM in codec.go) instead of
// threading it through the state machine one byte at a time; the
// observable behavior (BOM bytes consumed without contributing to
// Column, encoding fixed thereafter) is unchanged.

// state is the parser's current position in the grammar. Negative
// values are terminal/error states mirroring the Event codes they
// produce.
type state int8

const (
	stateNone state = iota
	stateNameExpected
	stateName
	statePostName
	stateValueExpected
	stateStringValue
	stateEscape
	stateUnicode1
	stateUnicode2
	stateUnicode3
	stateUnicode4
	stateNumberValue
	stateTrueT
	stateTrueR
	stateTrueU
	stateFalseF
	stateFalseA
	stateFalseL
	stateFalseS
	stateNullN
	stateNullU
	stateNullL
	statePostValue
	stateDone
)

// Terminal error states, mirroring the negative Event codes. A
// Context that reaches one of these (other than the two recoverable
// ones) stays there: every subsequent Parse call returns the same
// event without consuming input.
const (
	stateErrorInvalidInput state = -1 - iota
	stateErrorInsufficientMemory
	stateErrorUnexpectedEOF
	stateErrorTokenMismatch
	stateErrorSyntax
	stateErrorInternal
)

func (s state) event() Event {
	switch s {
	case stateErrorInvalidInput:
		return EventInvalidInput
	case stateErrorInsufficientMemory:
		return EventInsufficientMemory
	case stateErrorUnexpectedEOF:
		return EventUnexpectedEOF
	case stateErrorTokenMismatch:
		return EventTokenMismatch
	case stateErrorSyntax:
		return EventSyntax
	case stateErrorInternal:
		return EventInternal
	default:
		return EventNone
	}
}

func (s state) isError() bool { return s < 0 }

// isRecoverable reports whether s is one of the two states a
// caller can heal (more input, or a larger buffer).
func (s state) isRecoverable() bool {
	return s == stateErrorInsufficientMemory || s == stateErrorUnexpectedEOF
}

func isJSONWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func hexValue(r rune) uint16 {
	switch {
	case r >= '0' && r <= '9':
		return uint16(r - '0')
	case r >= 'a' && r <= 'f':
		return uint16(r-'a') + 10
	default: // 'A'-'F'
		return uint16(r-'A') + 10
	}
}
