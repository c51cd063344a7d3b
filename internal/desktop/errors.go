package desktop

import (
	"errors"
	"fmt"
	"strings"

	"github.com/1broseidon/deskctl/internal/platform"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeUnknown            Code = "UNKNOWN"
	CodeSessionUnavailable Code = "SESSION_UNAVAILABLE"
	CodeSessionClosed      Code = "SESSION_CLOSED"
	CodeStaleHandle        Code = "STALE_HANDLE"
	CodeOutOfBounds        Code = "OUT_OF_BOUNDS"
	CodeLengthMismatch     Code = "LENGTH_MISMATCH"
	CodeCrossContext       Code = "CROSS_CONTEXT_ACCESS"
	CodeHostTimeout        Code = "HOST_TIMEOUT"
	CodePartialFailure     Code = "PARTIAL_FAILURE"
	CodeNotFound           Code = "NOT_FOUND"
)

// Error is the engine error type. Errors compare equal under errors.Is when
// their codes match, so wrapped instances still match the sentinels below.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target carries the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

func wrap(sentinel *Error, cause error) *Error {
	return &Error{Code: sentinel.Code, Message: sentinel.Message, Cause: cause}
}

var (
	ErrSessionUnavailable = &Error{Code: CodeSessionUnavailable, Message: "desktop session unavailable"}
	ErrSessionClosed      = &Error{Code: CodeSessionClosed, Message: "desktop session closed"}
	ErrStaleHandle        = &Error{Code: CodeStaleHandle, Message: "icon handle is stale"}
	ErrOutOfBounds        = &Error{Code: CodeOutOfBounds, Message: "point outside desktop bounds"}
	ErrLengthMismatch     = &Error{Code: CodeLengthMismatch, Message: "handles and points differ in length"}
	ErrCrossContextAccess = &Error{Code: CodeCrossContext, Message: "session is in use by another caller"}
	ErrHostTimeout        = &Error{Code: CodeHostTimeout, Message: "desktop host did not respond"}
	ErrPartialFailure     = &Error{Code: CodePartialFailure, Message: "batch partially failed"}
	ErrNotFound           = &Error{Code: CodeNotFound, Message: "icon not found"}
)

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var be *BatchError
	if errors.As(err, &be) {
		return CodePartialFailure
	}
	return CodeUnknown
}

// PointError pins a precondition failure to one entry of a batch.
type PointError struct {
	Index int
	Point platform.Point
	Err   error
}

func (e *PointError) Error() string {
	return fmt.Sprintf("point %d (%s): %v", e.Index, e.Point, e.Err)
}

func (e *PointError) Unwrap() error {
	return e.Err
}

// IndexError records one pair of a batch the host refused.
type IndexError struct {
	Index int   `json:"index"`
	Err   error `json:"-"`
}

// BatchError reports the indices of a batch that could not be applied.
// It matches ErrPartialFailure.
type BatchError struct {
	Failed []IndexError
}

func (e *BatchError) Error() string {
	parts := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		parts = append(parts, fmt.Sprintf("%d: %v", f.Index, f.Err))
	}
	return fmt.Sprintf("%s (%d failed: %s)", ErrPartialFailure.Message, len(e.Failed), strings.Join(parts, "; "))
}

func (e *BatchError) Is(target error) bool {
	return target == ErrPartialFailure
}

// Indices returns the failed indices in order.
func (e *BatchError) Indices() []int {
	out := make([]int, len(e.Failed))
	for i, f := range e.Failed {
		out[i] = f.Index
	}
	return out
}
