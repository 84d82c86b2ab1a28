package types

import (
	"errors"
	"fmt"
)

// The three error categories handlers care about. Category is checked with
// errors.As; the sentinel inside with errors.Is.

// InputError marks a malformed or out-of-context inbound reference: a stale
// or foreign query token, an out-of-range option index, a payload that does
// not decode. Recoverable by user retry, never mutates session state.
type InputError struct {
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid input: %s: %v", e.Reason, e.Err)
	}
	return "invalid input: " + e.Reason
}

func (e *InputError) Unwrap() error { return e.Err }

// UpstreamError marks a weather or POI provider failure.
type UpstreamError struct {
	Provider string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s provider: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// PersistenceError marks a store read/write failure. The operation is
// treated as not committed.
type PersistenceError struct {
	Store string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s store: %v", e.Store, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Sentinels for the common input rejections.
var (
	ErrStaleQuery   = errors.New("query data is stale")
	ErrBadReference = errors.New("malformed reference")
	ErrOutOfRange   = errors.New("option index out of range")
	ErrNoSession    = errors.New("no active session data")
	ErrNotFound     = errors.New("not found")
)

// NewInputError wraps a sentinel into the input category.
func NewInputError(reason string, err error) error {
	return &InputError{Reason: reason, Err: err}
}

// IsInputError reports whether err belongs to the input category.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// IsUpstreamError reports whether err belongs to the upstream category.
func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// IsPersistenceError reports whether err belongs to the persistence category.
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
