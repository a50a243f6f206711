package markdown

import (
	"errors"
	"fmt"
)

var (
	// ErrParseFailure marks an internal invariant violation in a parse result.
	ErrParseFailure = errors.New("parse failure")
	// ErrStaleReference is returned when a node id no longer exists.
	ErrStaleReference = errors.New("stale node reference")
	// ErrOutOfBounds is returned for offsets or line indexes outside the valid range.
	ErrOutOfBounds = errors.New("out of bounds")
)

// ParseFailure describes a structural invariant that a parse result broke.
type ParseFailure struct {
	Reason string
}

func (e *ParseFailure) Error() string {
	return "parse failure: " + e.Reason
}

func (e *ParseFailure) Is(target error) bool {
	return target == ErrParseFailure
}

func parseFailuref(format string, args ...any) error {
	return &ParseFailure{Reason: fmt.Sprintf(format, args...)}
}

// BoundsError reports a value outside [0, Limit].
type BoundsError struct {
	What  string
	Value int
	Limit int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%s %d out of bounds [0,%d]", e.What, e.Value, e.Limit)
}

func (e *BoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}

// StaleReference wraps ErrStaleReference with the node id that vanished.
func StaleReference(id NodeID) error {
	return fmt.Errorf("node %s: %w", id, ErrStaleReference)
}
