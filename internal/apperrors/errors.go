// Package apperrors defines the error taxonomy of agreement operations and
// maps each kind to transport status codes.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
)

// Kind classifies an application error.
type Kind string

const (
	KindUnauthenticated Kind = "UNAUTHENTICATED"
	KindUnauthorized    Kind = "UNAUTHORIZED"
	KindNotFound        Kind = "NOT_FOUND"
	KindInvalidState    Kind = "INVALID_STATE"
	KindInvalidArgument Kind = "INVALID_ARGUMENT"
	KindConflict        Kind = "CONFLICT"
	KindStorageFailure  Kind = "STORAGE_FAILURE"
	KindRemoteFailure   Kind = "REMOTE_FAILURE"
	KindInternal        Kind = "INTERNAL"
)

// Error is an application error with a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// works for every not-found error regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// HTTPStatus returns the HTTP status code for the error kind.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindUnauthorized:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidState, KindConflict:
		return http.StatusConflict
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindRemoteFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// GRPCCode returns the gRPC status code for the error kind.
func (e *Error) GRPCCode() codes.Code {
	switch e.Kind {
	case KindUnauthenticated:
		return codes.Unauthenticated
	case KindUnauthorized:
		return codes.PermissionDenied
	case KindNotFound:
		return codes.NotFound
	case KindInvalidState:
		return codes.FailedPrecondition
	case KindInvalidArgument:
		return codes.InvalidArgument
	case KindConflict:
		return codes.AlreadyExists
	case KindRemoteFailure:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// Sentinels for errors.Is checks.
var (
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}
	ErrUnauthorized    = &Error{Kind: KindUnauthorized}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrInvalidState    = &Error{Kind: KindInvalidState}
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	ErrConflict        = &Error{Kind: KindConflict}
	ErrStorageFailure  = &Error{Kind: KindStorageFailure}
	ErrRemoteFailure   = &Error{Kind: KindRemoteFailure}
)

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NewErrUnauthenticated() *Error {
	return New(KindUnauthenticated, "You must be logged in")
}

func NewErrInvalidCredentials() *Error {
	return New(KindUnauthenticated, "Invalid email or password")
}

func NewErrUnauthorized(message string) *Error {
	return New(KindUnauthorized, message)
}

func NewErrAgreementNotFound(id string) *Error {
	return New(KindNotFound, fmt.Sprintf("agreement %s not found", id))
}

func NewErrUserNotFound(id string) *Error {
	return New(KindNotFound, fmt.Sprintf("user %s not found", id))
}

func NewErrInvalidState(message string) *Error {
	return New(KindInvalidState, message)
}

func NewErrInvalidArgument(message string) *Error {
	return New(KindInvalidArgument, message)
}

func NewErrEmailTaken(email string) *Error {
	return New(KindConflict, fmt.Sprintf("user with email %s already exists", email))
}

func NewErrRemoteFailure(err error) *Error {
	return Wrap(KindRemoteFailure, "remote storage is unavailable", err)
}

func NewErrStorageFailure(err error) *Error {
	return Wrap(KindStorageFailure, "local storage failed", err)
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
