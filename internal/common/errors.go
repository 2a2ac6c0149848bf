// Package common holds the error taxonomy shared by repositories, services
// and HTTP handlers.
package common

import "errors"

var (

	// repository specific errors
	ErrNotFound = errors.New("not found")

	// authentication errors
	ErrUnauthenticated = errors.New("not authenticated")
	ErrBadCredentials  = errors.New("incorrect password")
	ErrNotVerified     = errors.New("please verify your account before logging in")
	ErrInvalidToken    = errors.New("invalid token")

	// registration / verification errors
	ErrUsernameTaken = errors.New("username is already taken")
	ErrEmailInUse    = errors.New("user already exists with this email")
	ErrCodeExpired   = errors.New("verification code has expired")
	ErrCodeMismatch  = errors.New("incorrect verification code")

	// message errors
	ErrNotAccepting    = errors.New("user is not accepting messages")
	ErrInvalidID       = errors.New("invalid message id")
	ErrMessageNotFound = errors.New("message not found or already deleted")

	// input validation
	ErrValidation = errors.New("validation error")

	// upstream collaborators
	ErrEmailDelivery = errors.New("failed to send verification email")
	ErrUpstream      = errors.New("upstream dependency failure")

	ErrInternal = errors.New("internal error")
)

// Kind groups errors by how callers are expected to react to them.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindUnauthenticated
	KindForbidden
	KindValidation
	KindConflict
	KindUpstream
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrNotFound, KindNotFound},
	{ErrMessageNotFound, KindNotFound},
	{ErrUnauthenticated, KindUnauthenticated},
	{ErrBadCredentials, KindUnauthenticated},
	{ErrInvalidToken, KindUnauthenticated},
	{ErrNotVerified, KindForbidden},
	{ErrNotAccepting, KindForbidden},
	{ErrValidation, KindValidation},
	{ErrInvalidID, KindValidation},
	{ErrCodeExpired, KindValidation},
	{ErrCodeMismatch, KindValidation},
	{ErrUsernameTaken, KindConflict},
	{ErrEmailInUse, KindConflict},
	{ErrEmailDelivery, KindUpstream},
	{ErrUpstream, KindUpstream},
}

// KindOf classifies err. Unknown errors are internal.
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError for field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
