package hojson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorded captures everything a test might want to assert about one
// event without holding onto slices that Parse will invalidate next call.
type recorded struct {
	event    Event
	name     string
	rawName  []byte
	hasName  bool
	typ      ValueType
	intVal   int64
	floatVal float64
	boolVal  bool
	depth    int
	line     int
	column   int
}

// drive feeds the whole of doc through a fresh Context, growing the
// buffer on EventInsufficientMemory and supplying no further bytes on
// EventUnexpectedEOF (tests that want genuine chunking call Parse
// directly instead). It stops at EventEndOfDocument or the first
// error event, recording every event in between.
func drive(t *testing.T, bufSize int, doc []byte) (*Context, []recorded) {
	t.Helper()
	var ctx Context
	buf := make([]byte, bufSize)
	require.NoError(t, ctx.Initialize(buf))

	input := doc
	var out []recorded
	for {
		ev := ctx.Parse(&input)
		var rawName []byte
		if ctx.Name != nil {
			rawName = append([]byte(nil), ctx.Name...)
		}
		out = append(out, recorded{
			event: ev, name: string(ctx.Name), rawName: rawName, hasName: ctx.Name != nil,
			typ: ctx.ValueType, intVal: ctx.IntegerValue, floatVal: ctx.FloatValue,
			boolVal: ctx.BoolValue, depth: ctx.Depth, line: ctx.Line, column: ctx.Column,
		})
		switch {
		case ev == EventInsufficientMemory:
			bigger := make([]byte, len(ctx.buffer)*2)
			require.NoError(t, ctx.Reallocate(bigger))
		case ev == EventEndOfDocument:
			return &ctx, out
		case ev.IsError():
			return &ctx, out
		}
	}
}

// Scenario 1.
func TestScenarioSimpleObject(t *testing.T) {
	_, events := drive(t, 4096, []byte(`{"a":1,"b":null}`))
	require.NotEmpty(t, events)

	want := []Event{
		EventObjectBegin, EventName, EventValue, EventName, EventValue,
		EventObjectEnd, EventEndOfDocument,
	}
	require.Len(t, events, len(want))
	for i, w := range want {
		assert.Equal(t, w, events[i].event, "event %d", i)
	}

	assert.False(t, events[0].hasName) // OBJECT_BEGIN at root: name=null
	assert.Equal(t, "a", events[1].name)
	assert.Equal(t, "a", events[2].name)
	assert.Equal(t, ValueTypeInteger, events[2].typ)
	assert.Equal(t, int64(1), events[2].intVal)
	assert.Equal(t, "b", events[3].name)
	assert.Equal(t, "b", events[4].name)
	assert.Equal(t, ValueTypeNull, events[4].typ)
	assert.False(t, events[5].hasName) // OBJECT_END at root
}

// Scenario 2.
func TestScenarioArrayOfScalars(t *testing.T) {
	_, events := drive(t, 4096, []byte(`[true,false,0.5,1e2]`))
	want := []Event{
		EventArrayBegin, EventValue, EventValue, EventValue, EventValue,
		EventArrayEnd, EventEndOfDocument,
	}
	require.Len(t, events, len(want))
	for i, w := range want {
		assert.Equal(t, w, events[i].event, "event %d", i)
	}
	assert.Equal(t, ValueTypeBoolean, events[1].typ)
	assert.True(t, events[1].boolVal)
	assert.Equal(t, ValueTypeBoolean, events[2].typ)
	assert.False(t, events[2].boolVal)
	assert.Equal(t, ValueTypeFloat, events[3].typ)
	assert.Equal(t, 0.5, events[3].floatVal)
	assert.Equal(t, ValueTypeFloat, events[4].typ) // 1e2 is FLOAT, not INTEGER
	assert.Equal(t, 100.0, events[4].floatVal)
}

// Scenario 3: chunked feed produces the same event sequence as a
// single-chunk feed, with ERROR_UNEXPECTED_EOF appearing between
// chunks when fed chunk-by-chunk.
func TestScenarioChunkedNestedEquivalence(t *testing.T) {
	doc := []byte(`{"x":[1,2]}`)
	_, single := drive(t, 4096, doc)

	var ctx Context
	require.NoError(t, ctx.Initialize(make([]byte, 4096)))
	chunks := [][]byte{[]byte(`{"x":[1,`), []byte(`2]}`)}
	var chunked []recorded
	sawEOF := false
	for i, chunk := range chunks {
		input := chunk
		for {
			ev := ctx.Parse(&input)
			chunked = append(chunked, recorded{event: ev, name: string(ctx.Name), typ: ctx.ValueType, intVal: ctx.IntegerValue})
			if ev == EventUnexpectedEOF {
				sawEOF = true
				break
			}
			if ev == EventEndOfDocument || ev.IsError() {
				break
			}
			if len(input) == 0 && i < len(chunks)-1 {
				break
			}
		}
	}
	assert.True(t, sawEOF, "expected ERROR_UNEXPECTED_EOF between chunks")

	filterErrors := func(rs []recorded) []Event {
		var out []Event
		for _, r := range rs {
			if r.event != EventUnexpectedEOF {
				out = append(out, r.event)
			}
		}
		return out
	}
	assertEvents := func(rs []recorded) []Event {
		var out []Event
		for _, r := range rs {
			out = append(out, r.event)
		}
		return out
	}
	_ = filterErrors
	single2 := assertEvents(single)
	chunked2 := filterErrors(chunked)
	assert.Equal(t, single2, chunked2)
}

// Scenario 4.
func TestScenarioInsufficientMemoryThenGrows(t *testing.T) {
	var ctx Context
	require.NoError(t, ctx.Initialize(make([]byte, frameHeaderSize-1)))
	input := []byte(`{`)
	ev := ctx.Parse(&input)
	require.Equal(t, EventInsufficientMemory, ev)

	require.NoError(t, ctx.Reallocate(make([]byte, 4096)))
	ev = ctx.Parse(&input)
	assert.Equal(t, EventObjectBegin, ev)
}

// Scenario 5.
func TestScenarioLeadingCommaIsSyntaxError(t *testing.T) {
	_, events := drive(t, 4096, []byte(`{,"a":1}`))
	last := events[len(events)-1]
	assert.Equal(t, EventSyntax, last.event)
}

// Scenario 6.
func TestScenarioTrailingCommaIsSyntaxError(t *testing.T) {
	_, events := drive(t, 4096, []byte(`{"a":[1,2,]}`))
	last := events[len(events)-1]
	assert.Equal(t, EventSyntax, last.event)
}

// Scenario 7.
func TestScenarioMismatchedCloserIsTokenMismatch(t *testing.T) {
	_, events := drive(t, 4096, []byte(`{"a":1]`))
	last := events[len(events)-1]
	assert.Equal(t, EventTokenMismatch, last.event)
}

// Scenario 8.
func TestScenarioUTF16BEWithBOM(t *testing.T) {
	var raw []byte
	put := func(u uint16) {
		raw = append(raw, byte(u>>8), byte(u))
	}
	raw = append(raw, 0xFE, 0xFF) // BOM
	for _, r := range `{"` {
		put(uint16(r))
	}
	put(0x20AC) // '€'
	for _, r := range `":"ok"}` {
		put(uint16(r))
	}

	ctx, events := drive(t, 4096, raw)
	require.Equal(t, EncodingUTF16BE, ctx.encoding)

	want := []Event{EventObjectBegin, EventName, EventValue, EventObjectEnd, EventEndOfDocument}
	require.Len(t, events, len(want))
	for i, w := range want {
		assert.Equal(t, w, events[i].event, "event %d", i)
	}
	// The name (EURO SIGN) was stored as two raw UTF-16BE bytes: 0x20, 0xAC.
	assert.Equal(t, []byte{0x20, 0xAC}, events[1].rawName)
}

func TestEmptyObjectAndArray(t *testing.T) {
	_, events := drive(t, 4096, []byte(`{}`))
	want := []Event{EventObjectBegin, EventObjectEnd, EventEndOfDocument}
	require.Len(t, events, len(want))
	for i, w := range want {
		assert.Equal(t, w, events[i].event)
	}

	_, events = drive(t, 4096, []byte(`[]`))
	want = []Event{EventArrayBegin, EventArrayEnd, EventEndOfDocument}
	require.Len(t, events, len(want))
	for i, w := range want {
		assert.Equal(t, w, events[i].event)
	}
}

func TestDepthTracking(t *testing.T) {
	ctx, events := drive(t, 4096, []byte(`{"a":[1]}`))
	_ = ctx
	depthByEvent := map[int]int{}
	for i, e := range events {
		depthByEvent[i] = e.depth
	}
	// ARRAY_BEGIN (index 2) reports the pre-increment depth (1, the
	// enclosing object); depth increases to 2 starting with the next
	// event (the array's own element).
	assert.Equal(t, 1, events[2].depth)
	assert.Equal(t, 2, events[3].depth)
}

func TestStringEscapesAndUnicode(t *testing.T) {
	_, events := drive(t, 4096, []byte(`["a\tbA€"]`))
	require.True(t, len(events) >= 2)
	val := events[1]
	assert.Equal(t, EventValue, val.event)
	assert.Equal(t, ValueTypeString, val.typ)
}

func TestZeroLengthInputIsInvalidInput(t *testing.T) {
	var ctx Context
	require.NoError(t, ctx.Initialize(make([]byte, 256)))
	input := []byte{}
	ev := ctx.Parse(&input)
	assert.Equal(t, EventInvalidInput, ev)
}

func TestSplitCodePointAcrossChunksSucceeds(t *testing.T) {
	// U+1F600 UTF-8 is 4 bytes; split 2/2 across chunks inside a string value.
	full := []byte(`["` + "\U0001F600" + `"]`)
	mid := len(`["`) + 2
	chunk1 := full[:mid]
	chunk2 := full[mid:]

	var ctx Context
	require.NoError(t, ctx.Initialize(make([]byte, 4096)))
	input := chunk1
	var lastEvent Event
	for {
		ev := ctx.Parse(&input)
		lastEvent = ev
		if ev == EventUnexpectedEOF {
			break
		}
		if ev == EventEndOfDocument || ev.IsError() {
			t.Fatalf("unexpected event before chunk boundary: %v", ev)
		}
	}
	assert.Equal(t, EventUnexpectedEOF, lastEvent)

	input = chunk2
	for {
		ev := ctx.Parse(&input)
		if ev == EventEndOfDocument {
			break
		}
		require.False(t, ev.IsError(), "got error event %v", ev)
	}
}
