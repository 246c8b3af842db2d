// Package hojson is an incremental, pull-style JSON parser for
// constrained environments. Callers feed bytes in arbitrary-sized
// chunks, the parser emits one semantic event per call, and all
// working memory — including the nesting stack itself — lives inside
// a single caller-supplied buffer whose size the caller controls and
// can grow on demand. The core performs no internal allocation beyond
// a handful of carry-over bytes for a multi-byte character split
// across two chunks.
//
// A session looks like:
//
//	var ctx hojson.Context
//	buf := make([]byte, 4096)
//	ctx.Initialize(buf)
//	for {
//		ev := ctx.Parse(&chunk)
//		switch ev {
//		case hojson.EventInsufficientMemory:
//			buf = append(buf, make([]byte, len(buf))...)
//			ctx.Reallocate(buf)
//		case hojson.EventUnexpectedEOF:
//			chunk = nextChunk()
//		case hojson.EventEndOfDocument:
//			return
//		default:
//			// inspect ctx.Name, ctx.ValueType, ctx.StringValue, ...
//		}
//	}
//
// UTF-8, UTF-16 little-endian, and UTF-16 big-endian input are
// accepted; the encoding is sniffed from a byte-order mark at the
// start of the document and held fixed for its remainder. JSON
// writing, schema validation, and duplicate-key detection are out of
// scope; comments, trailing commas, and JSON5 extensions are rejected.
package hojson

// Encoding is the character encoding a Context has detected (or
// assumed) for the document it is parsing. It is set once, by BOM
// sniffing at the start of the document, and is invariant thereafter.
type Encoding int8

// Supported encodings.
const (
	EncodingUnknown Encoding = iota // no BOM seen; treated as ASCII-compatible passthrough
	EncodingUTF8
	EncodingUTF16LE
	EncodingUTF16BE
	numEncodings
)

var encodingStrings = [numEncodings]string{
	"unknown",
	"utf-8",
	"utf-16le",
	"utf-16be",
}

// String returns a human-readable name for the encoding.
func (e Encoding) String() string {
	if e < 0 || e >= numEncodings {
		return "<unknown>"
	}
	return encodingStrings[e]
}

// ValueType tags the kind of scalar currently held by a Context after
// an EventValue. Adapted from the teacher's defensive enum-with-table
// texture (see mcvoid-json's Type).
type ValueType int8

// Possible scalar types. ValueTypeNone means no value is currently
// published (e.g. immediately after Initialize, or during a
// container-only event such as EventObjectBegin).
const (
	ValueTypeNone ValueType = iota
	ValueTypeNull
	ValueTypeInteger
	ValueTypeFloat
	ValueTypeString
	ValueTypeBoolean
	numValueTypes
	valueTypeUnknown ValueType = -1
)

var valueTypeStrings = [numValueTypes]string{
	"<none>",
	"<null>",
	"<integer>",
	"<float>",
	"<string>",
	"<boolean>",
}

// String returns a human-readable name for the value type.
func (t ValueType) String() string {
	if t < 0 || t >= numValueTypes {
		return "<unknown>"
	}
	return valueTypeStrings[t]
}

// Event is the sole output channel of Parse: the return value
// communicates everything the caller needs to know about what just
// happened, with no side channels. Negative values are errors.
type Event int8

// Event codes. See package doc and spec §4.4 for the full semantics
// of each.
const (
	EventNone           Event = 0 // internal only; never returned to a caller
	EventEndOfDocument  Event = 1
	EventName           Event = 2
	EventValue          Event = 3
	EventObjectBegin    Event = 4
	EventArrayBegin     Event = 5
	EventObjectEnd      Event = 6
	EventArrayEnd       Event = 7
	EventInvalidInput   Event = -1
	EventInsufficientMemory Event = -2
	EventUnexpectedEOF  Event = -3
	EventTokenMismatch  Event = -4
	EventSyntax         Event = -5
	EventInternal       Event = -6
)

var eventStrings = map[Event]string{
	EventNone:               "<none>",
	EventEndOfDocument:      "end-of-document",
	EventName:               "name",
	EventValue:              "value",
	EventObjectBegin:        "object-begin",
	EventArrayBegin:         "array-begin",
	EventObjectEnd:          "object-end",
	EventArrayEnd:           "array-end",
	EventInvalidInput:       "error:invalid-input",
	EventInsufficientMemory: "error:insufficient-memory",
	EventUnexpectedEOF:      "error:unexpected-eof",
	EventTokenMismatch:      "error:token-mismatch",
	EventSyntax:             "error:syntax",
	EventInternal:           "error:internal",
}

// String returns a human-readable name for the event, suitable for
// logging (see cmd/hojson-dump).
func (e Event) String() string {
	if s, ok := eventStrings[e]; ok {
		return s
	}
	return "<unknown>"
}

// IsError reports whether the event is one of the six negative error
// codes.
func (e Event) IsError() bool {
	return e < 0
}

// IsRecoverable reports whether the event is one of the two
// recoverable error codes (insufficient memory, unexpected EOF) that a
// caller heals by supplying a larger buffer or more input,
// respectively.
func (e Event) IsRecoverable() bool {
	return e == EventInsufficientMemory || e == EventUnexpectedEOF
}
