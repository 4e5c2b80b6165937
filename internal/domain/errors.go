package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure so callers can branch (and the API layer can
// pick a status code) without parsing message text.
type ErrorKind string

const (
	KindNotFound            ErrorKind = "NOT_FOUND"
	KindInvalidState        ErrorKind = "INVALID_STATE"
	KindResourceConflict    ErrorKind = "RESOURCE_CONFLICT"
	KindCapacityExceeded    ErrorKind = "CAPACITY_EXCEEDED"
	KindSeatConflict        ErrorKind = "SEAT_CONFLICT"
	KindInsufficientBalance ErrorKind = "INSUFFICIENT_BALANCE"
	KindTemporalViolation   ErrorKind = "TEMPORAL_VIOLATION"
	KindPermissionDenied    ErrorKind = "PERMISSION_DENIED"
	KindValidation          ErrorKind = "VALIDATION"
	KindStorage             ErrorKind = "STORAGE"
)

type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

func InvalidStatef(format string, args ...any) *Error {
	return newError(KindInvalidState, format, args...)
}

func ResourceConflictf(format string, args ...any) *Error {
	return newError(KindResourceConflict, format, args...)
}

func CapacityExceededf(format string, args ...any) *Error {
	return newError(KindCapacityExceeded, format, args...)
}

func SeatConflictf(format string, args ...any) *Error {
	return newError(KindSeatConflict, format, args...)
}

func InsufficientBalancef(format string, args ...any) *Error {
	return newError(KindInsufficientBalance, format, args...)
}

func TemporalViolationf(format string, args ...any) *Error {
	return newError(KindTemporalViolation, format, args...)
}

func PermissionDeniedf(format string, args ...any) *Error {
	return newError(KindPermissionDenied, format, args...)
}

func Validationf(format string, args ...any) *Error {
	return newError(KindValidation, format, args...)
}

// StorageError wraps an unexpected persistence failure.
func StorageError(op string, err error) *Error {
	return &Error{Kind: KindStorage, Msg: fmt.Sprintf("%s failed", op), Err: err}
}

// KindOf extracts the error kind; unclassified errors report KindStorage.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

func isKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func IsNotFound(err error) bool            { return isKind(err, KindNotFound) }
func IsInvalidState(err error) bool        { return isKind(err, KindInvalidState) }
func IsResourceConflict(err error) bool    { return isKind(err, KindResourceConflict) }
func IsCapacityExceeded(err error) bool    { return isKind(err, KindCapacityExceeded) }
func IsSeatConflict(err error) bool        { return isKind(err, KindSeatConflict) }
func IsInsufficientBalance(err error) bool { return isKind(err, KindInsufficientBalance) }
func IsTemporalViolation(err error) bool   { return isKind(err, KindTemporalViolation) }
func IsPermissionDenied(err error) bool    { return isKind(err, KindPermissionDenied) }
func IsValidation(err error) bool          { return isKind(err, KindValidation) }
