package summarizer

import (
	"errors"
	"fmt"
)

// FailureKind classifies orchestration failures that reach the caller.
// Map-phase failures never surface here; they degrade to placeholder text.
type FailureKind string

const (
	// FailureInput indicates the input file was missing, unreadable,
	// unparsable, or yielded zero chunk contents. Raised before any
	// backend call is made.
	FailureInput FailureKind = "input"

	// FailureReduce indicates the single reduce-phase backend call failed.
	// No partial or degraded summary is synthesized.
	FailureReduce FailureKind = "reduce"
)

// Error is a tagged orchestration failure. Callers (the HTTP layer) map
// Kind to their own status codes instead of inspecting message prefixes.
type Error struct {
	Kind FailureKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("summarization %s failure: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the failure kind from err, returning ok=false when err is
// not a summarizer failure.
func KindOf(err error) (FailureKind, bool) {
	var serr *Error
	if errors.As(err, &serr) {
		return serr.Kind, true
	}
	return "", false
}
