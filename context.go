package hojson

// Context holds all parsing state for one document. Its public fields
// are observable between calls to Parse; its private fields hold the
// input window, the active encoding, the top-of-stack frame, the
// carry-over stream for a code unit split across chunks, and the
// current/saved state identifiers (spec §3).
//
// A zero Context is not ready to use; call Initialize first.
type Context struct {
	// Name holds the key of the current name/value pair, or nil if the
	// current event is not named (e.g. an array element, or the event
	// is EventEndOfDocument). Valid only until the next call to Parse
	// or Reallocate.
	Name []byte

	// StringValue holds the current string value's bytes when
	// ValueType == ValueTypeString. Valid only until the next call to
	// Parse or Reallocate.
	StringValue []byte

	// IntegerValue holds the current value when ValueType ==
	// ValueTypeInteger.
	IntegerValue int64

	// FloatValue holds the current value when ValueType ==
	// ValueTypeFloat.
	FloatValue float64

	// BoolValue holds the current value when ValueType ==
	// ValueTypeBoolean.
	BoolValue bool

	// ValueType tags which of the above fields (if any) is meaningful
	// after the most recent event.
	ValueType ValueType

	// Line is the 1-based line number of the most recent event.
	Line int

	// Column is the 1-based code-point column of the most recent
	// event on its line. BOM bytes do not contribute to Column.
	Column int

	// Depth is the container nesting depth at the most recent event;
	// changes take effect one call after the BEGIN/END event that
	// triggered them (spec §3 invariant 3).
	Depth int

	buffer      []byte
	initialized bool

	encoding        Encoding
	encodingDecided bool

	topOffset int // noOffset (-1) when the stack is empty

	state             state
	escapeReturnState state // where to resume after a simple \ escape
	errorReturnState  state // where to resume after a recoverable error heals

	stream    [maxCodeUnitBytes]byte // carry-over bytes of a split code unit
	streamLen int

	lastLineChar byte // '\r' or '\n', whichever last advanced Line; 0 if neither yet

	// Deferred actions (spec §3/§4.3): applied at the very start of the
	// next Parse call, one call after the event that scheduled them, so
	// the scheduling event's own Name/Value/Depth stay observable for
	// exactly that one call.
	pendingPop         bool
	pendingCleanupFrame int // noOffset if nothing is scheduled
	pendingDepthDelta  int

	// valueStart is the buffer offset where the value currently being
	// accumulated (string or number) began, so it can be sliced out
	// once a terminator or terminating character is seen.
	valueStart int

	// Transient number-literal flags (spec §3's DECIMAL_SEEN/
	// EXPONENT_SEEN/SIGN_SEEN), reset each time a new number begins.
	numberDecimalSeen  bool
	numberExponentSeen bool
	numberSignSeen     bool
	numberAtExponent   bool // true only immediately after appending e/E, until the next byte

	// unicodeAccum accumulates the four hex digits of an in-progress
	// \uXXXX escape.
	unicodeAccum uint16
}

// Initialize zeroes ctx and buf, adopts buf as the working arena, and
// readies the Context to parse a new document starting at Line 1. It
// returns ErrNilBuffer if buf is empty.
func (ctx *Context) Initialize(buf []byte) error {
	if len(buf) == 0 {
		return ErrNilBuffer
	}
	for i := range buf {
		buf[i] = 0
	}
	*ctx = Context{
		buffer:              buf,
		topOffset:           noOffset,
		state:               stateNone,
		Line:                1,
		pendingCleanupFrame: noOffset,
		initialized:         true,
	}
	return nil
}

// Reallocate adopts newBuf as the working arena in place of the
// current buffer. newBuf must be strictly larger than the current
// buffer. The old bytes are copied verbatim into the prefix of newBuf;
// because frames are addressed by offset rather than by pointer (see
// DESIGN.md), no further rebasing is required. If the Context was
// suspended on EventInsufficientMemory, the saved error-return state
// is reinstated so the next Parse call resumes the interrupted token.
//
// Name and StringValue, if set from a prior event, are cleared: they
// pointed into the old buffer and are documented as valid only until
// the next call to Parse or Reallocate.
func (ctx *Context) Reallocate(newBuf []byte) error {
	if !ctx.initialized {
		return ErrNotInitialized
	}
	if len(newBuf) <= len(ctx.buffer) {
		return ErrBufferNotLarger
	}
	copy(newBuf, ctx.buffer)
	for i := len(ctx.buffer); i < len(newBuf); i++ {
		newBuf[i] = 0
	}
	ctx.buffer = newBuf
	if ctx.state == stateErrorInsufficientMemory {
		ctx.state = ctx.errorReturnState
	}
	ctx.Name = nil
	ctx.StringValue = nil
	return nil
}

// topFrame returns the header of the current top-of-stack frame.
// Callers must check topOffset != noOffset first; an empty stack with
// a pending frame operation is an ERROR_INTERNAL condition, never a
// normal control-flow path.
func (ctx *Context) topFrame() frameHeader {
	return readFrameHeader(ctx.buffer, ctx.topOffset)
}

func (ctx *Context) writeTopFrame(h frameHeader) {
	writeFrameHeader(ctx.buffer, ctx.topOffset, h)
}

// NameString returns Name converted to a string, assuming the input
// document is UTF-8 (or ASCII-compatible). Callers parsing UTF-16
// input should read Name directly instead.
func (ctx *Context) NameString() string {
	return string(ctx.Name)
}

// StringValueString returns StringValue converted to a string, assuming
// the input document is UTF-8 (or ASCII-compatible). Callers parsing
// UTF-16 input should read StringValue directly instead.
func (ctx *Context) StringValueString() string {
	return string(ctx.StringValue)
}
