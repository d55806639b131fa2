// Package apperr is the error taxonomy shared by usecases and the HTTP boundary.
package apperr

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
)

type Kind string

const (
	KindValidation       Kind = "VALIDATION"
	KindCapacity         Kind = "CAPACITY"
	KindUnauthorized     Kind = "UNAUTHORIZED"
	KindForbidden        Kind = "FORBIDDEN"
	KindNotFound         Kind = "NOT_FOUND"
	KindConflict         Kind = "CONFLICT"
	KindPartialFailure   Kind = "PARTIAL_FAILURE"
	KindStoreUnavailable Kind = "STORE_UNAVAILABLE"
	KindInternal         Kind = "INTERNAL"
)

type Error struct {
	Kind  Kind
	Field string
	Err   error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Err)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, err error) *Error { return &Error{Kind: kind, Err: err} }

func Validation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Err: errors.New(msg)}
}

func Capacity(field, msg string) *Error {
	return &Error{Kind: KindCapacity, Field: field, Err: errors.New(msg)}
}

func Forbidden(reason error) *Error     { return New(KindForbidden, reason) }
func NotFound(err error) *Error         { return New(KindNotFound, err) }
func Conflict(err error) *Error         { return New(KindConflict, err) }
func Unauthorized(err error) *Error     { return New(KindUnauthorized, err) }
func PartialFailure(err error) *Error   { return New(KindPartialFailure, err) }
func Internal(err error) *Error         { return New(KindInternal, err) }
func StoreUnavailable(err error) *Error { return New(KindStoreUnavailable, err) }

// Store classifies an error coming out of the entity store. Errors that already carry a
// Kind are returned untouched; timeouts, cancellation and broken connections become
// STORE_UNAVAILABLE; anything else is INTERNAL.
func Store(err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	if IsUnavailable(err) {
		return StoreUnavailable(err)
	}
	return Internal(err)
}

func IsUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}

// KindOf returns INTERNAL for untyped errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

func FieldOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Field
	}
	return ""
}

// Retryable marks errors a client may retry unchanged.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindStoreUnavailable, KindConflict:
		return true
	}
	return false
}
