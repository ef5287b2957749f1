// Package cvcerr defines the tiered error taxonomy for internal
// invariant violations.
//
// CvcError is a small typed error value that the engine packages
// return ordinarily; cvc.Database.Run passes it through unchanged, and
// only the cmd/cvc entry point prints it and exits with a nonzero code. Package-level sentinels plus %w wrapping keep
// errors.Is branching available throughout; github.com/pkg/errors
// attaches a stack trace on the fatal path, where a trace genuinely
// helps a maintainer locate a database invariant violation.
package cvcerr

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies a CvcError.
type Kind int

const (
	// KindFatal marks a violated internal invariant (unknown model
	// tag, dequeue of a non-pending device). The run aborts.
	KindFatal Kind = iota
	// KindEquivalence marks a union-find canonical chain exceeding
	// the net count, signaling a parser bug rather than user error.
	KindEquivalence
	// KindPower marks a power-consistency conflict that
	// the caller chose to escalate rather than recover (most power
	// conflicts are tier-2 recoverable LEAK findings, not this).
	KindPower
)

// String renders a Kind for log fields.
func (k Kind) String() string {
	switch k {
	case KindFatal:
		return "fatal"
	case KindEquivalence:
		return "equivalence"
	case KindPower:
		return "power"
	default:
		return "unknown"
	}
}

// Sentinel errors for errors.Is branching.
var (
	// ErrEquivalenceOverflow signals a canonical chain longer than the
	// net count.
	ErrEquivalenceOverflow = errors.New("cvcerr: equivalence chain exceeds net count")
	// ErrUnknownModelTag signals propagation reached a model tag the
	// classifier does not recognize.
	ErrUnknownModelTag = errors.New("cvcerr: unknown model tag in propagation classifier")
	// ErrDequeueNotPending signals a device was dequeued while not
	// marked pending.
	ErrDequeueNotPending = errors.New("cvcerr: dequeue of a device not currently pending")
	// ErrPowerConflict signals an escalated (not merely logged)
	// power-declaration conflict.
	ErrPowerConflict = errors.New("cvcerr: incompatible power declarations")
)

// CvcError wraps an inner error with a Kind, implementing error and
// Unwrap so callers can still errors.Is/As through to the sentinel.
type CvcError struct {
	Kind Kind
	Err  error
}

// Error satisfies the error interface.
func (e *CvcError) Error() string {
	return fmt.Sprintf("cvc[%s]: %v", e.Kind, e.Err)
}

// Unwrap exposes the wrapped error for errors.Is/As.
func (e *CvcError) Unwrap() error { return e.Err }

// Fatal builds a KindFatal CvcError with a stack trace attached via
// github.com/pkg/errors, for the invariant-violation path where a
// trace helps a maintainer locate the bug.
func Fatal(err error) *CvcError {
	return &CvcError{Kind: KindFatal, Err: pkgerrors.WithStack(err)}
}

// Equivalence builds a KindEquivalence CvcError.
func Equivalence(err error) *CvcError {
	return &CvcError{Kind: KindEquivalence, Err: pkgerrors.WithStack(err)}
}

// Power builds a KindPower CvcError.
func Power(err error) *CvcError {
	return &CvcError{Kind: KindPower, Err: pkgerrors.WithStack(err)}
}
