package hojson

import "github.com/pkg/errors"

// Boundary errors for Initialize and Reallocate: these two functions
// sit outside the Parse state machine and check caller-programming-
// error preconditions before any parsing state exists, so they return
// idiomatic Go errors rather than Event codes (see DESIGN.md and
// SPEC_FULL.md §6). Wrapped with github.com/pkg/errors so a caller
// (e.g. cmd/hojson-dump) can log a stack-annotated cause.
var (
	// ErrNilBuffer is returned by Initialize when given a nil or
	// zero-length buffer.
	ErrNilBuffer = errors.New("hojson: buffer must be non-nil and non-empty")

	// ErrBufferNotLarger is returned by Reallocate when the new buffer
	// is not strictly larger than the current one.
	ErrBufferNotLarger = errors.New("hojson: new buffer must be strictly larger than the current buffer")

	// ErrNotInitialized is returned by Reallocate when called on a
	// Context that Initialize has not yet been called on. (Parse reports
	// the same condition as EventInvalidInput.)
	ErrNotInitialized = errors.New("hojson: context not initialized")
)
