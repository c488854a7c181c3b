package domain

import "errors"

// Error kinds. Every error surfaced by the core unwraps to exactly one of these,
// which is what the HTTP layer maps to a status code.
var (
	ErrValidation       = errors.New("validation failed")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrForbidden        = errors.New("access forbidden")
	ErrConflict         = errors.New("conflict")
	ErrNotFound         = errors.New("not found")
	ErrRateLimited      = errors.New("too many attempts")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Error is a specific failure tagged with its kind.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

// NewValidationError builds an ad-hoc validation failure with the given message.
func NewValidationError(msg string) error {
	return &Error{Kind: ErrValidation, Msg: msg}
}

var (
	ErrInvalidCredentials     = &Error{Kind: ErrUnauthenticated, Msg: "invalid credentials"}
	ErrInvalidToken           = &Error{Kind: ErrUnauthenticated, Msg: "invalid token"}
	ErrExpiredToken           = &Error{Kind: ErrUnauthenticated, Msg: "token expired"}
	ErrMalformedToken         = &Error{Kind: ErrUnauthenticated, Msg: "malformed token"}
	ErrAdminSelfRegistration  = &Error{Kind: ErrForbidden, Msg: "admin accounts cannot be self-registered"}
	ErrAdminsCannotSelfUpdate = &Error{Kind: ErrForbidden, Msg: "admins cannot update profile"}
	ErrDuplicateEmail         = &Error{Kind: ErrConflict, Msg: "email already registered"}
	ErrPendingRequestExists   = &Error{Kind: ErrConflict, Msg: "a profile update is already pending approval"}
	ErrUserNotFound           = &Error{Kind: ErrNotFound, Msg: "user not found"}
	ErrRequestNotFound        = &Error{Kind: ErrNotFound, Msg: "profile request not found"}
	ErrTooManyLoginAttempts   = &Error{Kind: ErrRateLimited, Msg: "too many login attempts, try again later"}
)
