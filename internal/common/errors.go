// Package common defines the error taxonomy and small helpers shared by the
// session gate, the remote store and the front-ends. Callers should use
// errors.Is for the sentinels and errors.As for *QueryError.
package common

import (
	"errors"
	"fmt"
)

var (
	// Auth errors.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Session errors. Both trigger a silent sign-out.
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionInvalid  = errors.New("session invalid")

	// Remote store errors.
	ErrNotFound         = errors.New("not found")
	ErrUnknownResource  = errors.New("unknown resource")
	ErrUnknownColumn    = errors.New("unknown column")
	ErrUnsupportedOp    = errors.New("unsupported filter operator")
	ErrMalformedRecord  = errors.New("malformed record")
	ErrUnknownProcedure = errors.New("unknown procedure")

	// Input validation.
	ErrValidation = errors.New("validation error")
)

// QueryError wraps any failure of a remote read, update or procedure call.
// The underlying message is passed through unchanged.
type QueryError struct {
	Op       string
	Resource string
	Err      error
}

func (e *QueryError) Error() string {
	if e.Resource == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Resource, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// NewQueryError returns nil when err is nil, err itself when it already is a
// *QueryError, and a new *QueryError otherwise.
func NewQueryError(op, resource string, err error) error {
	if err == nil {
		return nil
	}
	var qe *QueryError
	if errors.As(err, &qe) {
		return err
	}
	return &QueryError{Op: op, Resource: resource, Err: err}
}

// IsSessionError reports whether err should end the session silently.
func IsSessionError(err error) bool {
	return errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionInvalid)
}
