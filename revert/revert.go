// Package revert defines the reasons a registry call is aborted.
//
// A reverted call leaves no trace: every check runs before the first write,
// and the state store discards staged writes when a call returns an error.
package revert

import (
	"errors"
	"fmt"
)

// Kinds of aborted calls.
var (
	ErrAuthorization   = errors.New("caller not authorized")
	ErrPayment         = errors.New("payment rejected")
	ErrNoOpenBatch     = errors.New("no open batch")
	ErrIneligibleAsset = errors.New("asset not eligible")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrBatchConflict   = errors.New("another batch is open")
)

// Error is returned by every aborted registry call.
type Error struct {
	Op   string
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Msg)
}

// Unwrap returns the kind so callers can match it with errors.Is.
func (e *Error) Unwrap() error {
	return e.Kind
}

// New creates an aborted call error of the given kind.
func New(op string, kind error, format string, args ...interface{}) error {
	return &Error{
		Op:   op,
		Kind: kind,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Is reports whether err aborted a call, as opposed to failing in storage or transport.
func Is(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
