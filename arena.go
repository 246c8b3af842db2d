package hojson

import "encoding/binary"

// This file implements the Buffer/stack manager (spec §4.2). Per the
// spec's own Design Notes (§9) and DESIGN.md, the nesting stack is a
// contiguous byte arena — the caller's buffer — addressed by integer
// offset rather than by pointer. Each frame's header is written
// directly into the buffer at the frame's own starting offset, so
// reallocation is a plain copy with no pointer-rebase pass.

// frameHeaderSize is the number of bytes a frame header occupies at
// the start of its region: parentOffset (int32), end (int32), flags
// (uint16), and nameLen (uint16) — the length, in bytes, of the
// published name currently staged in this frame's data (0 if none).
const frameHeaderSize = 12

const noOffset = -1

// Frame flags (spec §3 "Flags on a frame"). The deferred-action flags
// (INCREMENT_DEPTH/DECREMENT_DEPTH/MUST_POP/POST_VALUE_CLEANUP) and the
// number-literal flags (DECIMAL_SEEN/EXPONENT_SEEN/SIGN_SEEN) described
// in spec §3 are tracked as plain Context fields instead (see
// context.go and parser.go): Go already gives a struct extra fields for
// free, so there is no need to steal bits on a frame to smuggle
// one-shot, single-Context state across a call boundary the way a
// tighter C struct would. Only the flags below are genuinely per-frame,
// persistent grammar state.
type frameFlags uint16

const (
	flagIsArray frameFlags = 1 << iota
	flagHasName
	flagCommaPending
)

// frameHeader is the decoded, in-memory view of a frame's header
// bytes. It is always written back to the buffer immediately after
// being mutated; nothing about frame state persists outside the
// buffer.
type frameHeader struct {
	parentOffset int32 // noOffset for the root frame
	end          int32 // offset of the last used data byte, or of the header's own last byte if empty
	flags        frameFlags
	nameLen      uint16 // length of the name currently staged in this frame, 0 if none
}

func readFrameHeader(buf []byte, at int) frameHeader {
	return frameHeader{
		parentOffset: int32(binary.LittleEndian.Uint32(buf[at : at+4])),
		end:          int32(binary.LittleEndian.Uint32(buf[at+4 : at+8])),
		flags:        frameFlags(binary.LittleEndian.Uint16(buf[at+8 : at+10])),
		nameLen:      binary.LittleEndian.Uint16(buf[at+10 : at+12]),
	}
}

func writeFrameHeader(buf []byte, at int, h frameHeader) {
	binary.LittleEndian.PutUint32(buf[at:at+4], uint32(h.parentOffset))
	binary.LittleEndian.PutUint32(buf[at+4:at+8], uint32(h.end))
	binary.LittleEndian.PutUint16(buf[at+8:at+10], uint16(h.flags))
	binary.LittleEndian.PutUint16(buf[at+10:at+12], h.nameLen)
}

func (h frameHeader) has(f frameFlags) bool { return h.flags&f != 0 }
func (h *frameHeader) set(f frameFlags)     { h.flags |= f }
func (h *frameHeader) clear(f frameFlags)   { h.flags &^= f }

// dataStart returns the offset of the first data byte owned by the
// frame starting at frameOffset.
func dataStart(frameOffset int) int { return frameOffset + frameHeaderSize }

// pushFrame places a new frame header either at the buffer start
// (root, parentOffset == noOffset) or immediately after the current
// top's last data byte. It returns the new frame's offset, or
// ok == false if the buffer cannot hold a header-sized region (the
// caller transitions to EventInsufficientMemory).
func pushFrame(buf []byte, parentOffset int, isArray bool) (offset int, ok bool) {
	var start int
	if parentOffset == noOffset {
		start = 0
	} else {
		parent := readFrameHeader(buf, parentOffset)
		start = int(parent.end) + 1
	}
	if start+frameHeaderSize > len(buf) {
		return 0, false
	}
	h := frameHeader{
		parentOffset: int32(parentOffset),
		end:          int32(start + frameHeaderSize - 1), // empty: end points at header's own last byte
	}
	if isArray {
		h.set(flagIsArray)
	}
	writeFrameHeader(buf, start, h)
	return start, true
}

// popFrame zeros every byte the frame at offset owns (header and
// data) and returns the parent's offset (noOffset if this was the
// root).
func popFrame(buf []byte, offset int) (parentOffset int) {
	h := readFrameHeader(buf, offset)
	for i := offset; i <= int(h.end); i++ {
		buf[i] = 0
	}
	return int(h.parentOffset)
}

// appendByte appends one byte to the frame's data region. ok is false
// if doing so would overrun the buffer, in which case the caller must
// rewind one code point of input and transition to
// EventInsufficientMemory; nothing is written in that case.
func appendByte(buf []byte, frameOffset int, b byte) (ok bool) {
	h := readFrameHeader(buf, frameOffset)
	newEnd := int(h.end) + 1
	if newEnd >= len(buf) {
		return false
	}
	buf[newEnd] = b
	h.end = int32(newEnd)
	writeFrameHeader(buf, frameOffset, h)
	return true
}

// appendBytes appends all of data to the frame's data region atomically:
// either every byte lands or none does, so a rejected append never
// leaves the frame half-written for a retry to double-count.
func appendBytes(buf []byte, frameOffset int, data []byte) (ok bool) {
	h := readFrameHeader(buf, frameOffset)
	newEnd := int(h.end) + len(data)
	if newEnd >= len(buf) {
		return false
	}
	copy(buf[int(h.end)+1:newEnd+1], data)
	h.end = int32(newEnd)
	writeFrameHeader(buf, frameOffset, h)
	return true
}

// appendTerminator appends a null terminator sized for the active
// encoding (one byte for UTF-8/unknown, two for UTF-16, so a
// downstream consumer reading wide code units sees a proper null).
func appendTerminator(buf []byte, frameOffset int, enc Encoding) (ok bool) {
	n := 1
	if enc == EncodingUTF16LE || enc == EncodingUTF16BE {
		n = 2
	}
	var zeros [2]byte
	return appendBytes(buf, frameOffset, zeros[:n])
}

// frameDataLen returns the number of content bytes (including the
// terminator, if any has been appended) a frame currently owns.
func frameDataLen(buf []byte, frameOffset int) int {
	h := readFrameHeader(buf, frameOffset)
	start := dataStart(frameOffset)
	if int(h.end) < start {
		return 0
	}
	return int(h.end) - start + 1
}

// frameData returns the raw data bytes currently owned by the frame
// (including any terminator bytes already appended).
func frameData(buf []byte, frameOffset int) []byte {
	start := dataStart(frameOffset)
	n := frameDataLen(buf, frameOffset)
	return buf[start : start+n]
}

// stageFrameName records that the frame's data currently begins with a
// freshly-terminated name of nameLen content bytes (not counting the
// terminator). The name's bytes stay put; only the header changes.
func stageFrameName(buf []byte, frameOffset int, nameLen int) {
	h := readFrameHeader(buf, frameOffset)
	h.nameLen = uint16(nameLen)
	h.set(flagHasName)
	writeFrameHeader(buf, frameOffset, h)
}

// frameName returns the bytes of the name currently staged in the
// frame at frameOffset, or nil if none is staged.
func frameName(buf []byte, frameOffset int) []byte {
	h := readFrameHeader(buf, frameOffset)
	if h.nameLen == 0 {
		return nil
	}
	start := dataStart(frameOffset)
	return buf[start : start+int(h.nameLen)]
}

// clearFrameNameAndValue zeros everything a frame's data region
// currently holds (a staged name, a staged value, or both) and resets
// the frame to empty, reclaiming the space for the next name/value
// pair. This is the POST_VALUE_CLEANUP deferred action from spec §3,
// applied to whichever frame (see Context.pendingCleanupFrame) just
// fully surrendered its name and/or value.
func clearFrameNameAndValue(buf []byte, frameOffset int) {
	h := readFrameHeader(buf, frameOffset)
	start := dataStart(frameOffset)
	for i := start; i <= int(h.end); i++ {
		buf[i] = 0
	}
	h.end = int32(frameOffset + frameHeaderSize - 1)
	h.nameLen = 0
	h.clear(flagHasName)
	writeFrameHeader(buf, frameOffset, h)
}
