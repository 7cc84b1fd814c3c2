// Package apperr provides the typed error kinds shared by the domain, the
// orchestrators and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind represents the category of error.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation indicates malformed input; nothing was attempted.
	KindValidation
	// KindAlreadyExists indicates a duplicate email at onboarding/provisioning.
	KindAlreadyExists
	// KindNotFound indicates a referenced user, tenant or unit does not exist locally.
	KindNotFound
	// KindInsufficientPrivileges indicates a role-hierarchy violation.
	KindInsufficientPrivileges
	// KindScopeViolation indicates a tenant or unit boundary was crossed.
	KindScopeViolation
	// KindConflict indicates a stale write (version mismatch).
	KindConflict
	// KindInvalidCredentials indicates the identity provider rejected the credentials.
	KindInvalidCredentials
	// KindAccountLocked indicates the provider rate-limited or locked the account.
	KindAccountLocked
	// KindIdentityProvider indicates a generic identity provider failure.
	KindIdentityProvider
	// KindUnauthorized indicates a missing or invalid access token.
	KindUnauthorized
	// KindInternal indicates an unexpected internal error.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindAlreadyExists:
		return "already_exists"
	case KindNotFound:
		return "not_found"
	case KindInsufficientPrivileges:
		return "insufficient_privileges"
	case KindScopeViolation:
		return "scope_violation"
	case KindConflict:
		return "conflict"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindAccountLocked:
		return "account_locked"
	case KindIdentityProvider:
		return "identity_provider_error"
	case KindUnauthorized:
		return "unauthorized"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is a domain error with a typed Kind for HTTP mapping.
type Error struct {
	Kind    Kind
	Message string
	Op      string // operation that failed (optional)
	Err     error  // underlying error (optional)
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status code for this error kind.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAlreadyExists, KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindInsufficientPrivileges, KindScopeViolation:
		return http.StatusForbidden
	case KindInvalidCredentials, KindUnauthorized:
		return http.StatusUnauthorized
	case KindAccountLocked:
		return http.StatusLocked
	case KindIdentityProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WithOp sets the operation and returns the same error.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error { return New(KindValidation, message) }

func AlreadyExists(message string) *Error { return New(KindAlreadyExists, message) }

func NotFound(message string) *Error { return New(KindNotFound, message) }

func InsufficientPrivileges(message string) *Error {
	return New(KindInsufficientPrivileges, message)
}

func ScopeViolation(message string) *Error { return New(KindScopeViolation, message) }

func Conflict(message string) *Error { return New(KindConflict, message) }

func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }

// GetKind extracts the error kind anywhere in the chain.
// Returns KindUnknown if the chain holds no *Error.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && GetKind(err) == kind
}
