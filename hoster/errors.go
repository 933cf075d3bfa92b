package hoster

import (
	"errors"
	"fmt"
	"net/http"

	"mapnav-server/shared"
)

// ErrorKind classifies hoster failures. Every error a Client returns carries
// exactly one kind.
type ErrorKind string

const (
	ErrorKindTransport    ErrorKind = "transport"
	ErrorKindAuth         ErrorKind = "auth"
	ErrorKindMissingScope ErrorKind = "missing_scope"
	ErrorKindValidation   ErrorKind = "validation"
	ErrorKindConflict     ErrorKind = "conflict"
	ErrorKindUnknown      ErrorKind = "unknown"
)

type Error struct {
	Kind ErrorKind
	Msg  string

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func WrapError(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, cause: cause}
}

// AsError extracts the hoster error from err, classifying anything else as
// unknown so the caller always has a kind to render.
func AsError(err error) *Error {
	var hosterErr *Error
	if errors.As(err, &hosterErr) {
		return hosterErr
	}
	return &Error{Kind: ErrorKindUnknown, Msg: err.Error(), cause: err}
}

func (e *Error) ToApi() *shared.ApiError {
	var apiType shared.ApiErrorType
	var status int

	switch e.Kind {
	case ErrorKindTransport:
		apiType = shared.ApiErrorTypeTransport
		status = http.StatusBadGateway
	case ErrorKindAuth:
		apiType = shared.ApiErrorTypeAuth
		status = http.StatusUnauthorized
	case ErrorKindMissingScope:
		apiType = shared.ApiErrorTypeMissingScope
		status = http.StatusForbidden
	case ErrorKindValidation:
		apiType = shared.ApiErrorTypeValidation
		status = http.StatusUnprocessableEntity
	case ErrorKindConflict:
		apiType = shared.ApiErrorTypeConflict
		status = http.StatusConflict
	default:
		apiType = shared.ApiErrorTypeOther
		status = http.StatusInternalServerError
	}

	return &shared.ApiError{
		Type:   apiType,
		Status: status,
		Msg:    e.Msg,
	}
}
