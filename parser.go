package hojson

import "strconv"

// This file implements the Lexer/State machine and Event gate
// (spec §4.3, §4.4): Parse, the deferred-action preamble, and the
// per-state transition logic. Adapted from the teacher's
// consumeCharacter dispatch loop, rescoped from "parse a whole
// document into one *Value" to "advance one code point and maybe
// emit one event."
//
// Parse(input *[]byte) Event resolves spec.md's Open Question 4 (see
// DESIGN.md): it consumes a prefix of *input and reslices it forward
// by exactly the bytes used, the same way a frame decoder's
// `buf = buf[n:]` idiom works, instead of comparing pointer identity.
// A character is "rewound" (the number-terminator lookahead, or a
// retry after ERROR_INSUFFICIENT_MEMORY) simply by not consuming it:
// *input is left pointing at the same bytes, and the next Parse call
// redecodes them fresh under whatever new state was set this call.

// Parse advances the parser by decoding and dispatching code points
// from *input (plus any carry-over from a prior split code unit)
// until a state handler produces an event, then returns that event.
// *input is reslices forward by the number of bytes consumed; callers
// resuming after EventUnexpectedEOF must assign a new, non-empty
// chunk to it before calling again, and callers resuming after
// EventInsufficientMemory should call Reallocate and then call Parse
// again with the same *input (still holding the unconsumed trigger
// byte).
func (ctx *Context) Parse(input *[]byte) Event {
	if !ctx.initialized {
		return EventInvalidInput
	}
	ctx.runDeferredActions()
	if ctx.state == stateDone {
		return EventEndOfDocument
	}
	if ctx.state.isError() && !ctx.state.isRecoverable() {
		return ctx.state.event()
	}
	if ctx.state == stateErrorUnexpectedEOF {
		ctx.state = ctx.errorReturnState
	}
	if input == nil {
		return EventInvalidInput
	}

	if !ctx.encodingDecided {
		win, n := ctx.combinedWindow(*input, 3)
		enc, bomLen, decided := sniffBOM(win[:n])
		if !decided {
			if n == 0 {
				return EventInvalidInput
			}
			ctx.stashAll(input, win, n)
			ctx.errorReturnState = ctx.state
			ctx.state = stateErrorUnexpectedEOF
			return EventUnexpectedEOF
		}
		ctx.encoding = enc
		ctx.encodingDecided = true
		if bomLen > 0 {
			ctx.consumeLogical(input, bomLen)
		}
	}

	for {
		win, n := ctx.combinedWindow(*input, maxCodeUnitBytes)
		if n == 0 {
			ctx.errorReturnState = ctx.state
			ctx.state = stateErrorUnexpectedEOF
			return EventUnexpectedEOF
		}
		_, scalar, used := decodeRune(win[:n], ctx.encoding)
		if used == 0 {
			if scalar == needMoreBytes {
				ctx.stashAll(input, win, n)
				ctx.errorReturnState = ctx.state
				ctx.state = stateErrorUnexpectedEOF
				return EventUnexpectedEOF
			}
			ctx.state = stateErrorInternal
			return EventInternal
		}

		ev, consumed := ctx.step(scalar, win[:used])
		if consumed {
			ctx.consumeLogical(input, used)
			ctx.advanceLineColumn(scalar)
		}
		if ev != EventNone {
			return ev
		}
	}
}

// runDeferredActions executes the INCREMENT_DEPTH/DECREMENT_DEPTH,
// MUST_POP, and POST_VALUE_CLEANUP actions scheduled by the previous
// call's event, in that order, then clears the public name/value
// fields so each event's fields are observable for exactly one call
// (spec §3/§4.3's deferred-action preamble).
func (ctx *Context) runDeferredActions() {
	if ctx.pendingDepthDelta != 0 {
		ctx.Depth += ctx.pendingDepthDelta
		ctx.pendingDepthDelta = 0
	}
	if ctx.pendingPop {
		parent := popFrame(ctx.buffer, ctx.topOffset)
		ctx.topOffset = parent
		ctx.pendingPop = false
		if ctx.topOffset == noOffset {
			ctx.state = stateDone
		}
	}
	if ctx.pendingCleanupFrame != noOffset {
		clearFrameNameAndValue(ctx.buffer, ctx.pendingCleanupFrame)
		ctx.pendingCleanupFrame = noOffset
	}
	ctx.Name = nil
	ctx.StringValue = nil
	ctx.ValueType = ValueTypeNone
}

// combinedWindow builds a peek (non-consuming) view of up to max bytes
// across the carry-over stream followed by input.
func (ctx *Context) combinedWindow(input []byte, max int) (win [maxCodeUnitBytes]byte, n int) {
	n = copy(win[:], ctx.stream[:ctx.streamLen])
	room := max - n
	if room > len(input) {
		room = len(input)
	}
	if room > 0 {
		n += copy(win[n:n+room], input)
	}
	return win, n
}

// stashAll saves every byte currently visible (win[:n], which by
// construction is everything the carry-over stream and *input
// together held) into the carry-over stream and drains *input, ready
// for the next Parse call to pick up where this one left off.
func (ctx *Context) stashAll(input *[]byte, win [maxCodeUnitBytes]byte, n int) {
	copy(ctx.stream[:], win[:n])
	ctx.streamLen = n
	*input = (*input)[len(*input):]
}

// consumeLogical removes the first used bytes of the logical window
// (stream followed by *input), shrinking whichever holds them.
func (ctx *Context) consumeLogical(input *[]byte, used int) {
	if used <= ctx.streamLen {
		copy(ctx.stream[:], ctx.stream[used:ctx.streamLen])
		ctx.streamLen -= used
		return
	}
	fromInput := used - ctx.streamLen
	ctx.streamLen = 0
	*input = (*input)[fromInput:]
}

// advanceLineColumn applies spec invariant 6: column counts code
// points on the current line; line advances on whichever of \r or \n
// appears first, and the other half of a CRLF/LFCR pair does not
// double-increment.
func (ctx *Context) advanceLineColumn(r rune) {
	ctx.Column++
	if r == '\n' || r == '\r' {
		if ctx.lastLineChar != 0 && ctx.lastLineChar != byte(r) {
			ctx.lastLineChar = 0
			ctx.Column = 0
		} else {
			ctx.Line++
			ctx.Column = 0
			ctx.lastLineChar = byte(r)
		}
	} else {
		ctx.lastLineChar = 0
	}
}

// step dispatches one decoded code point under the current state.
// consumed is false only when the code point must be left unconsumed
// for a later call to redecode — a memory-overflow retry, or the
// terminator that ends a number.
func (ctx *Context) step(r rune, rawBytes []byte) (Event, bool) {
	switch ctx.state {
	case stateErrorInsufficientMemory, stateErrorUnexpectedEOF:
		return ctx.state.event(), false
	case stateNone:
		return ctx.stepNone(r)
	case stateNameExpected:
		return ctx.stepNameExpected(r)
	case stateName:
		return ctx.stepName(r, rawBytes)
	case statePostName:
		return ctx.stepPostName(r)
	case stateValueExpected:
		return ctx.stepValueExpected(r, rawBytes)
	case stateStringValue:
		return ctx.stepStringValue(r, rawBytes)
	case stateEscape:
		return ctx.stepEscape(r)
	case stateUnicode1:
		return ctx.stepUnicode(r, stateUnicode2, false)
	case stateUnicode2:
		return ctx.stepUnicode(r, stateUnicode3, false)
	case stateUnicode3:
		return ctx.stepUnicode(r, stateUnicode4, false)
	case stateUnicode4:
		return ctx.stepUnicode(r, stateUnicode4, true)
	case stateNumberValue:
		return ctx.stepNumberValue(r, rawBytes)
	case stateTrueT:
		return ctx.stepLiteralChain(r, 'r', stateTrueR)
	case stateTrueR:
		return ctx.stepLiteralChain(r, 'u', stateTrueU)
	case stateTrueU:
		return ctx.stepLiteralLast(r, 'e', true, false)
	case stateFalseF:
		return ctx.stepLiteralChain(r, 'a', stateFalseA)
	case stateFalseA:
		return ctx.stepLiteralChain(r, 'l', stateFalseL)
	case stateFalseL:
		return ctx.stepLiteralChain(r, 's', stateFalseS)
	case stateFalseS:
		return ctx.stepLiteralLast(r, 'e', false, false)
	case stateNullN:
		return ctx.stepLiteralChain(r, 'u', stateNullU)
	case stateNullU:
		return ctx.stepLiteralChain(r, 'l', stateNullL)
	case stateNullL:
		return ctx.stepLiteralLast(r, 'l', false, true)
	case statePostValue:
		return ctx.stepPostValue(r)
	default:
		ctx.state = stateErrorInternal
		return EventInternal, true
	}
}

func (ctx *Context) stepNone(r rune) (Event, bool) {
	switch r {
	case '{':
		return ctx.openContainer(false)
	case '[':
		return ctx.openContainer(true)
	default:
		if isJSONWhitespace(r) {
			return EventNone, true
		}
		ctx.state = stateErrorSyntax
		return EventSyntax, true
	}
}

// openContainer implements the `{`/`[` transitions shared by NONE
// (root) and VALUE_EXPECTED (nested): push a frame, publish its name
// if its parent is an object with one staged, schedule the deferred
// depth increment, and emit the BEGIN event.
func (ctx *Context) openContainer(isArray bool) (Event, bool) {
	parent := ctx.topOffset
	offset, ok := pushFrame(ctx.buffer, parent, isArray)
	if !ok {
		ctx.errorReturnState = ctx.state
		ctx.state = stateErrorInsufficientMemory
		return EventInsufficientMemory, false
	}
	if parent != noOffset {
		ctx.Name = frameName(ctx.buffer, parent)
	}
	ctx.topOffset = offset
	ctx.pendingDepthDelta = 1
	if isArray {
		ctx.state = stateValueExpected
		return EventArrayBegin, true
	}
	ctx.state = stateNameExpected
	return EventObjectBegin, true
}

// closeContainer implements the `}`/`]` transition shared by
// NAME_EXPECTED, VALUE_EXPECTED, and POST_VALUE (spec §4.3
// "Closing"): verify the bracket matches IS_ARRAY, reject a trailing
// comma, publish the closed container's name from its parent, and
// schedule the deferred pop/depth-decrement/cleanup.
func (ctx *Context) closeContainer(closerIsArray bool) (Event, bool) {
	top := ctx.topFrame()
	if top.has(flagIsArray) != closerIsArray {
		ctx.state = stateErrorTokenMismatch
		return EventTokenMismatch, true
	}
	if top.has(flagCommaPending) {
		ctx.state = stateErrorSyntax
		return EventSyntax, true
	}
	if top.parentOffset != noOffset {
		ctx.Name = frameName(ctx.buffer, int(top.parentOffset))
		ctx.pendingCleanupFrame = int(top.parentOffset)
	}
	ctx.pendingPop = true
	ctx.pendingDepthDelta = -1
	ctx.state = statePostValue
	if closerIsArray {
		return EventArrayEnd, true
	}
	return EventObjectEnd, true
}

func (ctx *Context) stepNameExpected(r rune) (Event, bool) {
	switch r {
	case '"':
		ctx.clearTopFlag(flagCommaPending)
		ctx.valueStart = int(ctx.topFrame().end) + 1
		ctx.state = stateName
		return EventNone, true
	case '}':
		return ctx.closeContainer(false)
	case ']':
		return ctx.closeContainer(true)
	default:
		if isJSONWhitespace(r) {
			return EventNone, true
		}
		ctx.state = stateErrorSyntax
		return EventSyntax, true
	}
}

func (ctx *Context) stepName(r rune, rawBytes []byte) (Event, bool) {
	switch r {
	case '"':
		top := ctx.topOffset
		length := int(ctx.topFrame().end) - ctx.valueStart + 1
		if !appendTerminator(ctx.buffer, top, ctx.encoding) {
			ctx.errorReturnState = stateName
			ctx.state = stateErrorInsufficientMemory
			return EventInsufficientMemory, false
		}
		stageFrameName(ctx.buffer, top, length)
		ctx.Name = frameName(ctx.buffer, top)
		ctx.state = statePostName
		return EventName, true
	case '\\':
		ctx.escapeReturnState = stateName
		ctx.state = stateEscape
		return EventNone, true
	default:
		if !appendBytes(ctx.buffer, ctx.topOffset, rawBytes) {
			ctx.errorReturnState = stateName
			ctx.state = stateErrorInsufficientMemory
			return EventInsufficientMemory, false
		}
		return EventNone, true
	}
}

func (ctx *Context) stepPostName(r rune) (Event, bool) {
	switch r {
	case ':':
		ctx.state = stateValueExpected
		return EventNone, true
	default:
		if isJSONWhitespace(r) {
			return EventNone, true
		}
		ctx.state = stateErrorSyntax
		return EventSyntax, true
	}
}

func (ctx *Context) stepValueExpected(r rune, rawBytes []byte) (Event, bool) {
	switch {
	case r == '"':
		ctx.clearTopFlag(flagCommaPending)
		ctx.valueStart = int(ctx.topFrame().end) + 1
		ctx.state = stateStringValue
		return EventNone, true
	case r == '-' || isDigit(r):
		// Leading zeros (e.g. 00, 01) are not rejected.
		ctx.clearTopFlag(flagCommaPending)
		ctx.valueStart = int(ctx.topFrame().end) + 1
		ctx.numberDecimalSeen = false
		ctx.numberExponentSeen = false
		ctx.numberSignSeen = false
		ctx.numberAtExponent = false
		if !appendByte(ctx.buffer, ctx.topOffset, byte(r)) {
			ctx.errorReturnState = stateValueExpected
			ctx.state = stateErrorInsufficientMemory
			return EventInsufficientMemory, false
		}
		ctx.state = stateNumberValue
		return EventNone, true
	case r == 't':
		ctx.clearTopFlag(flagCommaPending)
		ctx.state = stateTrueT
		return EventNone, true
	case r == 'f':
		ctx.clearTopFlag(flagCommaPending)
		ctx.state = stateFalseF
		return EventNone, true
	case r == 'n':
		ctx.clearTopFlag(flagCommaPending)
		ctx.state = stateNullN
		return EventNone, true
	case r == '{':
		ctx.clearTopFlag(flagCommaPending)
		return ctx.openContainer(false)
	case r == '[':
		ctx.clearTopFlag(flagCommaPending)
		return ctx.openContainer(true)
	case r == '}':
		return ctx.closeContainer(false)
	case r == ']':
		return ctx.closeContainer(true)
	case isJSONWhitespace(r):
		return EventNone, true
	default:
		ctx.state = stateErrorSyntax
		return EventSyntax, true
	}
}

func (ctx *Context) stepStringValue(r rune, rawBytes []byte) (Event, bool) {
	switch r {
	case '"':
		top := ctx.topOffset
		length := int(ctx.topFrame().end) - ctx.valueStart + 1
		if !appendTerminator(ctx.buffer, top, ctx.encoding) {
			ctx.errorReturnState = stateStringValue
			ctx.state = stateErrorInsufficientMemory
			return EventInsufficientMemory, false
		}
		ctx.ValueType = ValueTypeString
		ctx.StringValue = ctx.buffer[ctx.valueStart : ctx.valueStart+length]
		ctx.publishScalarName()
		ctx.pendingCleanupFrame = top
		ctx.state = statePostValue
		return EventValue, true
	case '\\':
		ctx.escapeReturnState = stateStringValue
		ctx.state = stateEscape
		return EventNone, true
	default:
		if !appendBytes(ctx.buffer, ctx.topOffset, rawBytes) {
			ctx.errorReturnState = stateStringValue
			ctx.state = stateErrorInsufficientMemory
			return EventInsufficientMemory, false
		}
		return EventNone, true
	}
}

// publishScalarName sets ctx.Name for a scalar VALUE event from
// whatever name (if any) is staged on the current top frame — the
// object the value is a member of, or nil if the top is an array.
func (ctx *Context) publishScalarName() {
	if ctx.topOffset != noOffset {
		ctx.Name = frameName(ctx.buffer, ctx.topOffset)
	}
}

func (ctx *Context) stepEscape(r rune) (Event, bool) {
	var mapped rune
	switch r {
	case '"':
		mapped = '"'
	case '\\':
		mapped = '\\'
	case '/':
		mapped = '/'
	case 'b':
		mapped = '\b'
	case 'f':
		mapped = '\f'
	case 'n':
		mapped = '\n'
	case 'r':
		mapped = '\r'
	case 't':
		mapped = '\t'
	case 'u':
		ctx.unicodeAccum = 0
		ctx.state = stateUnicode1
		return EventNone, true
	default:
		ctx.state = stateErrorSyntax
		return EventSyntax, true
	}
	var out [maxCodeUnitBytes]byte
	n := encodeRune(mapped, ctx.encoding, out[:])
	if !appendBytes(ctx.buffer, ctx.topOffset, out[:n]) {
		ctx.errorReturnState = stateEscape
		ctx.state = stateErrorInsufficientMemory
		return EventInsufficientMemory, false
	}
	ctx.state = ctx.escapeReturnState
	return EventNone, true
}

// stepUnicode accumulates one hex digit of a \uXXXX escape (most
// significant nibble first). On the fourth digit it encodes the
// accumulated scalar under the active encoding — independently of any
// adjacent \uXXXX, per spec.md's Open Question 3 and
// encodeSurrogateHalfRaw's doc comment — and resumes escapeReturnState.
func (ctx *Context) stepUnicode(r rune, next state, isLast bool) (Event, bool) {
	if !isHexDigit(r) {
		ctx.state = stateErrorSyntax
		return EventSyntax, true
	}
	accum := ctx.unicodeAccum<<4 | hexValue(r)
	if !isLast {
		ctx.unicodeAccum = accum
		ctx.state = next
		return EventNone, true
	}
	scalar := rune(accum)
	var out [maxCodeUnitBytes]byte
	n := encodeRune(scalar, ctx.encoding, out[:])
	if n == 0 {
		n = encodeSurrogateHalfRaw(scalar, ctx.encoding, out[:])
	}
	if !appendBytes(ctx.buffer, ctx.topOffset, out[:n]) {
		ctx.errorReturnState = stateUnicode4
		ctx.state = stateErrorInsufficientMemory
		return EventInsufficientMemory, false
	}
	ctx.state = ctx.escapeReturnState
	return EventNone, true
}

func (ctx *Context) stepNumberValue(r rune, rawBytes []byte) (Event, bool) {
	switch {
	case isDigit(r):
		ctx.numberAtExponent = false
		if !appendByte(ctx.buffer, ctx.topOffset, byte(r)) {
			ctx.errorReturnState = stateNumberValue
			ctx.state = stateErrorInsufficientMemory
			return EventInsufficientMemory, false
		}
		return EventNone, true
	case r == '.':
		if ctx.numberDecimalSeen {
			ctx.state = stateErrorSyntax
			return EventSyntax, true
		}
		ctx.numberDecimalSeen = true
		ctx.numberAtExponent = false
		if !appendByte(ctx.buffer, ctx.topOffset, byte(r)) {
			ctx.errorReturnState = stateNumberValue
			ctx.state = stateErrorInsufficientMemory
			return EventInsufficientMemory, false
		}
		return EventNone, true
	case r == 'e' || r == 'E':
		if ctx.numberExponentSeen {
			ctx.state = stateErrorSyntax
			return EventSyntax, true
		}
		ctx.numberExponentSeen = true
		ctx.numberAtExponent = true
		if !appendByte(ctx.buffer, ctx.topOffset, byte(r)) {
			ctx.errorReturnState = stateNumberValue
			ctx.state = stateErrorInsufficientMemory
			return EventInsufficientMemory, false
		}
		return EventNone, true
	case r == '+' || r == '-':
		if !ctx.numberAtExponent || ctx.numberSignSeen {
			ctx.state = stateErrorSyntax
			return EventSyntax, true
		}
		ctx.numberSignSeen = true
		ctx.numberAtExponent = false
		if !appendByte(ctx.buffer, ctx.topOffset, byte(r)) {
			ctx.errorReturnState = stateNumberValue
			ctx.state = stateErrorInsufficientMemory
			return EventInsufficientMemory, false
		}
		return EventNone, true
	case isJSONWhitespace(r) || r == ',' || r == ']' || r == '}':
		return ctx.finishNumber()
	default:
		ctx.state = stateErrorSyntax
		return EventSyntax, true
	}
}

// finishNumber parses the accumulated ASCII digits as a float or
// integer depending on DECIMAL_SEEN/EXPONENT_SEEN, publishes the
// value, and leaves the terminating character unconsumed so the next
// Parse call redecodes it fresh under POST_VALUE (spec §4.3's
// "NUMBER_VALUE ... the terminating character is rewound one code
// point so the outer state sees it").
func (ctx *Context) finishNumber() (Event, bool) {
	length := int(ctx.topFrame().end) - ctx.valueStart + 1
	text := string(ctx.buffer[ctx.valueStart : ctx.valueStart+length])
	if ctx.numberDecimalSeen || ctx.numberExponentSeen {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			ctx.state = stateErrorSyntax
			return EventSyntax, false
		}
		ctx.FloatValue = f
		ctx.ValueType = ValueTypeFloat
	} else {
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			ctx.state = stateErrorSyntax
			return EventSyntax, false
		}
		ctx.IntegerValue = i
		ctx.ValueType = ValueTypeInteger
	}
	ctx.publishScalarName()
	ctx.pendingCleanupFrame = ctx.topOffset
	ctx.state = statePostValue
	return EventValue, false
}

func (ctx *Context) stepLiteralChain(r rune, want rune, next state) (Event, bool) {
	if r != want {
		ctx.state = stateErrorSyntax
		return EventSyntax, true
	}
	ctx.state = next
	return EventNone, true
}

func (ctx *Context) stepLiteralLast(r rune, want rune, boolVal bool, isNull bool) (Event, bool) {
	if r != want {
		ctx.state = stateErrorSyntax
		return EventSyntax, true
	}
	if isNull {
		ctx.ValueType = ValueTypeNull
	} else {
		ctx.ValueType = ValueTypeBoolean
		ctx.BoolValue = boolVal
	}
	ctx.publishScalarName()
	ctx.pendingCleanupFrame = ctx.topOffset
	ctx.state = statePostValue
	return EventValue, true
}

func (ctx *Context) stepPostValue(r rune) (Event, bool) {
	switch r {
	case ',':
		ctx.setTopFlag(flagCommaPending)
		if ctx.topFrame().has(flagIsArray) {
			ctx.state = stateValueExpected
		} else {
			ctx.state = stateNameExpected
		}
		return EventNone, true
	case '}':
		return ctx.closeContainer(false)
	case ']':
		return ctx.closeContainer(true)
	default:
		if isJSONWhitespace(r) {
			return EventNone, true
		}
		ctx.state = stateErrorSyntax
		return EventSyntax, true
	}
}

func (ctx *Context) setTopFlag(f frameFlags) {
	h := ctx.topFrame()
	h.set(f)
	ctx.writeTopFrame(h)
}

func (ctx *Context) clearTopFlag(f frameFlags) {
	h := ctx.topFrame()
	h.clear(f)
	ctx.writeTopFrame(h)
}
